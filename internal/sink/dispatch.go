package sink

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kgraph/sink/internal/sink/events"
	"github.com/kgraph/sink/pkg/blockstream"
	"github.com/kgraph/sink/pkg/kg"
)

// dispatchBlock runs every handler a block's populated event arrays call
// for, in a fixed category order: spaces, plugins, membership, subspaces,
// proposals and votes, edits, then proposal executions. Categories run one
// at a time, since spaces must
// exist before plugins reference them, editors before proposals reference
// voters, and so on. Within a single category the handlers are commutative
// across distinct entity ids — each element of evt.SpacesCreated creates an
// independent space, each evt.VotesCast element touches an independent
// (proposal, voter) pair — so elements of the same category run concurrently
// via concurrentEach rather than one at a time.
func dispatchBlock(ctx context.Context, h *events.Handler, evt *blockstream.BlockEvent) error {
	meta := kg.BlockMetadata{Timestamp: evt.Clock.Timestamp, BlockNumber: evt.Clock.Number}
	version := kg.BlockVersion(evt.Clock.Number)

	if err := concurrentEach(ctx, evt.SpacesCreated, func(ctx context.Context, e blockstream.SpaceCreated) error {
		return h.HandleSpaceCreated(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: space_created: %w", err)
	}
	if err := concurrentEach(ctx, evt.GovernancePluginsCreated, func(ctx context.Context, e blockstream.GovernancePluginCreated) error {
		return h.HandleGovernancePluginCreated(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: governance_plugin_created: %w", err)
	}
	if err := concurrentEach(ctx, evt.PersonalSpaceAdminPluginsCreated, func(ctx context.Context, e blockstream.PersonalSpaceAdminPluginCreated) error {
		return h.HandlePersonalSpaceAdminPluginCreated(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: personal_space_admin_plugin_created: %w", err)
	}
	if err := concurrentEach(ctx, evt.EditorsAdded, func(ctx context.Context, e blockstream.EditorAdded) error {
		return h.HandleEditorAdded(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: editor_added: %w", err)
	}
	if err := concurrentEach(ctx, evt.EditorsRemoved, func(ctx context.Context, e blockstream.EditorRemoved) error {
		return h.HandleEditorRemoved(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: editor_removed: %w", err)
	}
	if err := concurrentEach(ctx, evt.MembersAdded, func(ctx context.Context, e blockstream.MemberAdded) error {
		return h.HandleMemberAdded(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: member_added: %w", err)
	}
	if err := concurrentEach(ctx, evt.MembersRemoved, func(ctx context.Context, e blockstream.MemberRemoved) error {
		return h.HandleMemberRemoved(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: member_removed: %w", err)
	}
	if err := concurrentEach(ctx, evt.SubspacesAdded, func(ctx context.Context, e blockstream.SubspaceAdded) error {
		return h.HandleSubspaceAdded(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: subspace_added: %w", err)
	}
	if err := concurrentEach(ctx, evt.SubspacesRemoved, func(ctx context.Context, e blockstream.SubspaceRemoved) error {
		return h.HandleSubspaceRemoved(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: subspace_removed: %w", err)
	}
	if err := concurrentEach(ctx, evt.ProposalsCreated, func(ctx context.Context, e blockstream.ProposalCreated) error {
		return h.HandleProposalCreated(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: proposal_created: %w", err)
	}
	if err := concurrentEach(ctx, evt.VotesCast, func(ctx context.Context, e blockstream.VoteCast) error {
		return h.HandleVoteCast(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: vote_cast: %w", err)
	}
	if err := concurrentEach(ctx, evt.EditsPublished, func(ctx context.Context, e blockstream.EditPublished) error {
		return h.HandleEditsPublished(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: edit_published: %w", err)
	}
	if err := concurrentEach(ctx, evt.ProposalsExecuted, func(ctx context.Context, e blockstream.ProposalExecuted) error {
		return h.HandleProposalExecuted(ctx, e, meta, version)
	}); err != nil {
		return fmt.Errorf("sink: proposal_executed: %w", err)
	}
	return nil
}

// concurrentEach runs fn over every element of items concurrently and waits
// for all of them, returning the first error encountered (errgroup cancels
// the shared context on the first failure, so sibling calls to fn observe
// ctx.Err() promptly rather than running to completion against a doomed
// block). Safe to call with an empty or single-element slice, which runs
// inline with no goroutine overhead beyond errgroup's own bookkeeping.
func concurrentEach[T any](ctx context.Context, items []T, fn func(context.Context, T) error) error {
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return fn(ctx, items[0])
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, item := range items {
		item := item
		g.Go(func() error { return fn(gctx, item) })
	}
	return g.Wait()
}
