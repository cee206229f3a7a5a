// Package blockstream defines the block-event ingress contract the Event
// Pipeline consumes (§4.5/§6): an ordered stream of block messages, each
// carrying a monotone cursor and the arrays of on-chain events the sink's
// handlers dispatch on.
package blockstream

import (
	"context"
	"time"
)

// Cursor is an opaque, monotone position in the block stream. Persisted
// after each successfully processed block so the stream can resume from
// the same point on restart.
type Cursor string

// Clock is the block timestamp triple a block message carries.
type Clock struct {
	Number    uint64
	Timestamp time.Time
	Nanos     uint32
}

// SpaceCreated is emitted when a new DAO-backed space is deployed.
type SpaceCreated struct {
	DAOAddress    string
	PluginAddress string
	Network       string
	IsPersonal    bool
}

// GovernancePluginCreated is emitted when a space's voting plugin is
// deployed, independently of SpaceCreated (§3.4 Design Note).
type GovernancePluginCreated struct {
	DAOAddress                string
	VotingPluginAddress       string
	MemberAccessPluginAddress string
}

// PersonalSpaceAdminPluginCreated mirrors GovernancePluginCreated for
// personal (single-editor) spaces.
type PersonalSpaceAdminPluginCreated struct {
	DAOAddress                 string
	PersonalAdminPluginAddress string
	InitialEditorAddress       string
}

// SubspaceAdded/Removed record parent-space relation mutations.
type SubspaceAdded struct {
	ParentDAOAddress string
	ChildDAOAddress  string
}

type SubspaceRemoved struct {
	ParentDAOAddress string
	ChildDAOAddress  string
}

// EditorAdded/Removed and MemberAdded/Removed record space membership
// mutations applied directly (outside the proposal flow, e.g. the space's
// initial editor).
type EditorAdded struct {
	DAOAddress string
	Editor     string
}

type EditorRemoved struct {
	DAOAddress string
	Editor     string
}

type MemberAdded struct {
	DAOAddress string
	Member     string
}

type MemberRemoved struct {
	DAOAddress string
	Member     string
}

// ProposalCreated/Executed and VoteCast record governance lifecycle events.
type ProposalCreated struct {
	ProposalID string
	DAOAddress string
	Creator    string
	ActionType string
	ContentURI string
	StartDate  time.Time
	EndDate    time.Time
}

type ProposalExecuted struct {
	ProposalID string
	DAOAddress string
}

type VoteCast struct {
	ProposalID string
	Voter      string
	Support    bool
}

// EditPublished is emitted when a space's content (an edit or a space
// import) is published; ContentURI resolves through pkg/ipfs to a
// length-prefixed protobuf payload decoded by pkg/wire.
type EditPublished struct {
	DAOAddress    string
	PluginAddress string
	ContentURI    string
}

// BlockEvent is one decoded block message: a cursor, a clock, and the
// event arrays a block may carry (any may be empty; a block with no
// relevant events still advances the cursor).
type BlockEvent struct {
	Cursor Cursor
	Clock  Clock

	SpacesCreated                    []SpaceCreated
	GovernancePluginsCreated         []GovernancePluginCreated
	PersonalSpaceAdminPluginsCreated []PersonalSpaceAdminPluginCreated
	SubspacesAdded                   []SubspaceAdded
	SubspacesRemoved                 []SubspaceRemoved
	EditorsAdded                     []EditorAdded
	EditorsRemoved                   []EditorRemoved
	MembersAdded                     []MemberAdded
	MembersRemoved                   []MemberRemoved
	ProposalsCreated                 []ProposalCreated
	ProposalsExecuted                []ProposalExecuted
	VotesCast                        []VoteCast
	EditsPublished                   []EditPublished
}

// Client receives decoded block events in order. Recv blocks until the next
// block is available, ctx is cancelled, or the stream ends (io.EOF-style
// termination is implementation-defined: concrete clients document their
// own end-of-stream error).
type Client interface {
	// Recv returns the next block event. Returns a non-nil error exactly
	// once, after which the client is no longer usable.
	Recv(ctx context.Context) (*BlockEvent, error)

	// Close releases the underlying connection.
	Close() error
}
