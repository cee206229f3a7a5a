package kg

import "time"

// ProposalStatus is the lifecycle state of a governance proposal.
type ProposalStatus string

const (
	ProposalStatusProposed ProposalStatus = "Proposed"
	ProposalStatusAccepted ProposalStatus = "Accepted"
	ProposalStatusRejected ProposalStatus = "Rejected"
	ProposalStatusCanceled ProposalStatus = "Canceled"
	ProposalStatusExecuted ProposalStatus = "Executed"
)

// ProposalType enumerates the proposal kinds emitted by governance plugins.
type ProposalType string

const (
	ProposalAddEdit        ProposalType = "AddEdit"
	ProposalAddSubspace    ProposalType = "AddSubspace"
	ProposalRemoveSubspace ProposalType = "RemoveSubspace"
	ProposalAddMember      ProposalType = "AddMember"
	ProposalRemoveMember   ProposalType = "RemoveMember"
	ProposalAddEditor      ProposalType = "AddEditor"
	ProposalRemoveEditor   ProposalType = "RemoveEditor"
	ProposalImportSpace    ProposalType = "ImportSpace"
	ProposalArchiveSpace   ProposalType = "ArchiveSpace"
)

// EditReference names the content-hashed edit payload a proposal proposes,
// along with the proposing account. Supplemental data grounded on
// grc20-sdk's proposal model (SPEC_FULL.md §3.8) — dropped from the
// distilled spec but required to answer "which edit does this proposal
// apply" without a second round-trip to the content store.
type EditReference struct {
	ContentHash string
	ProposerID  EntityID
}

// Proposal is the typed attribute bag for a governance proposal entity.
type Proposal struct {
	SpaceID    EntityID
	Type       ProposalType
	Status     ProposalStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time

	// Edits holds the edit payload references this proposal proposes.
	// Populated only for ProposalAddEdit/ProposalImportSpace proposals.
	Edits []EditReference
}

// VoteChoice is the recorded outcome of a single account's vote.
type VoteChoice string

const (
	VoteAccept VoteChoice = "Accept"
	VoteReject VoteChoice = "Reject"
)

// Vote is a standalone governance record — not merely an event payload —
// so that voting history can be queried directly.
type Vote struct {
	ProposalID EntityID
	AccountID  EntityID
	CastAt     time.Time
	Choice     VoteChoice
}

// Account is a lazily-created entity representing a chain address that has
// acted as an editor, member, proposer, or voter.
type Account struct {
	Address string
}

// TypeAccount, TypeProposal, and TypeVote are the bootstrap type ids
// assigned to Account, Proposal, and Vote entities respectively.
const (
	TypeAccount  EntityID = "system:type:account"
	TypeProposal EntityID = "system:type:proposal"
	TypeVote     EntityID = "system:type:vote"
)

// Attribute ids for governance entities.
const (
	AttrProposalType        EntityID = "system:attribute:proposal-type"
	AttrProposalStatus      EntityID = "system:attribute:proposal-status"
	AttrProposalCreatedAt   EntityID = "system:attribute:proposal-created-at"
	AttrProposalContentHash EntityID = "system:attribute:proposal-content-hash"
	AttrVoteChoice          EntityID = "system:attribute:vote-choice"
	AttrVoteCastAt          EntityID = "system:attribute:vote-cast-at"
	AttrAccountAddress      EntityID = "system:attribute:account-address"
)

// IntoAttributes hand-maps Proposal to its attribute bag, following the same
// convention as Space.IntoAttributes. The first Edits entry's content hash
// is written only when Edits is non-empty (our event model never proposes
// more than one edit per proposal); SpaceID, ResolvedAt and the proposer
// id are not written.
func (p Proposal) IntoAttributes() map[EntityID]Value {
	attrs := map[EntityID]Value{
		AttrProposalType:      NewTextValue(string(p.Type)),
		AttrProposalStatus:    NewTextValue(string(p.Status)),
		AttrProposalCreatedAt: {Raw: p.CreatedAt.Format(timeLayout), Type: ValueTypeTime},
	}
	if len(p.Edits) > 0 {
		attrs[AttrProposalContentHash] = NewTextValue(p.Edits[0].ContentHash)
	}
	return attrs
}

// ProposalFromAttributes reconstructs a Proposal's scalar fields from its
// attribute bag. Edits is not reconstructed: the proposer id is stored
// neither as a triple nor on a relation (the PROPOSED_ACCOUNT relation
// links the space to the proposal).
func ProposalFromAttributes(attrs map[EntityID]Value) Proposal {
	p := Proposal{
		Type:   ProposalType(attrs[AttrProposalType].Raw),
		Status: ProposalStatus(attrs[AttrProposalStatus].Raw),
	}
	if v, ok := attrs[AttrProposalCreatedAt]; ok {
		if t, err := time.Parse(timeLayout, v.Raw); err == nil {
			p.CreatedAt = t
		}
	}
	return p
}

// IntoAttributes hand-maps Vote to its attribute bag.
func (v Vote) IntoAttributes() map[EntityID]Value {
	return map[EntityID]Value{
		AttrVoteChoice: NewTextValue(string(v.Choice)),
		AttrVoteCastAt: {Raw: v.CastAt.Format(timeLayout), Type: ValueTypeTime},
	}
}

// VoteFromAttributes reconstructs a Vote's scalar fields from its attribute
// bag. ProposalID/AccountID are not reconstructed: callers already know
// them from the relation they traversed to find this vote.
func VoteFromAttributes(attrs map[EntityID]Value) Vote {
	v := Vote{Choice: VoteChoice(attrs[AttrVoteChoice].Raw)}
	if raw, ok := attrs[AttrVoteCastAt]; ok {
		if t, err := time.Parse(timeLayout, raw.Raw); err == nil {
			v.CastAt = t
		}
	}
	return v
}

const timeLayout = time.RFC3339Nano
