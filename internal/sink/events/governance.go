package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/kgraph/sink/pkg/blockstream"
	"github.com/kgraph/sink/pkg/ids"
	"github.com/kgraph/sink/pkg/kg"
)

// HandleProposalCreated upserts a Proposal entity keyed by its on-chain id,
// lazily creates the proposer's Account, and links the proposal to the
// proposing space (the account is referenced from the proposal's edit
// reference, not linked to the space). No-ops (WARN) if the DAO address does not resolve to a known
// space.
func (h *Handler) HandleProposalCreated(ctx context.Context, evt blockstream.ProposalCreated, meta kg.BlockMetadata, version kg.Version) error {
	spaceID, err := h.findSpaceByDAOAddress(ctx, evt.DAOAddress, version)
	if errors.Is(err, kg.ErrNotFound) {
		h.Log.WarnContext(ctx, "proposal created for unknown space", "dao_address", evt.DAOAddress)
		h.recordOutcome(ctx, "proposal_created", "unknown_space")
		return nil
	}
	if err != nil {
		h.recordStoreError(ctx, "FindOneRelation")
		return fmt.Errorf("events: proposal_created: look up %s: %w", evt.DAOAddress, err)
	}

	proposerID, err := h.lazyAccount(ctx, evt.Creator, meta, version)
	if err != nil {
		h.recordStoreError(ctx, "lazyAccount")
		return fmt.Errorf("events: proposal_created: upsert proposer account: %w", err)
	}

	proposal := kg.Proposal{
		SpaceID:   spaceID,
		Type:      kg.ProposalType(evt.ActionType),
		Status:    kg.ProposalStatusProposed,
		CreatedAt: evt.StartDate,
	}
	if evt.ContentURI != "" {
		proposal.Edits = []kg.EditReference{{ContentHash: evt.ContentURI, ProposerID: proposerID}}
	}

	proposalID := kg.EntityID(evt.ProposalID)
	if err := h.Store.InsertEntity(ctx, proposalID, []kg.EntityID{kg.TypeProposal}, proposal.IntoAttributes(), meta, h.RootSpaceID, version); err != nil {
		h.recordStoreError(ctx, "InsertEntity")
		return fmt.Errorf("events: proposal_created: insert %s: %w", proposalID, err)
	}
	if err := h.Store.CreateRelation(ctx, kg.Relation{
		ID:                 membershipRelationID(spaceID, kg.RelationProposedAccount, proposalID),
		FromEntity:         spaceID,
		ToEntity:           proposalID,
		RelationTypeEntity: kg.RelationProposedAccount,
		Index:              ids.FirstIndex(),
		SpaceID:            h.RootSpaceID,
		MinVersion:         version,
		Props:              kg.NewSystemProperties(meta),
	}); err != nil {
		h.recordStoreError(ctx, "CreateRelation")
		return fmt.Errorf("events: proposal_created: link %s to space: %w", proposalID, err)
	}

	h.recordOutcome(ctx, "proposal_created", "applied")
	return nil
}

// HandleProposalExecuted sets a proposal's status to Executed. A reference
// error (unknown proposal) is logged at WARN, not treated as fatal.
func (h *Handler) HandleProposalExecuted(ctx context.Context, evt blockstream.ProposalExecuted, meta kg.BlockMetadata, version kg.Version) error {
	proposalID := kg.EntityID(evt.ProposalID)
	if _, _, err := h.Store.FindOne(ctx, proposalID, h.RootSpaceID, version); errors.Is(err, kg.ErrNotFound) {
		h.Log.WarnContext(ctx, "execution reported for unknown proposal", "proposal_id", evt.ProposalID)
		h.recordOutcome(ctx, "proposal_executed", "unknown_proposal")
		return nil
	} else if err != nil {
		h.recordStoreError(ctx, "FindOne")
		return fmt.Errorf("events: proposal_executed: look up %s: %w", proposalID, err)
	}

	attrs := map[kg.EntityID]kg.Value{kg.AttrProposalStatus: kg.NewTextValue(string(kg.ProposalStatusExecuted))}
	if err := h.Store.SetAttributes(ctx, proposalID, attrs, meta, h.RootSpaceID, version); err != nil {
		h.recordStoreError(ctx, "SetAttributes")
		return fmt.Errorf("events: proposal_executed: update %s: %w", proposalID, err)
	}

	h.recordOutcome(ctx, "proposal_executed", "applied")
	return nil
}

// HandleVoteCast upserts a Vote entity for (proposal, voter), lazily
// creating the voter's Account. A reference error (unknown proposal) is
// logged at WARN.
func (h *Handler) HandleVoteCast(ctx context.Context, evt blockstream.VoteCast, meta kg.BlockMetadata, version kg.Version) error {
	proposalID := kg.EntityID(evt.ProposalID)
	if _, _, err := h.Store.FindOne(ctx, proposalID, h.RootSpaceID, version); errors.Is(err, kg.ErrNotFound) {
		h.Log.WarnContext(ctx, "vote cast for unknown proposal", "proposal_id", evt.ProposalID)
		h.recordOutcome(ctx, "vote_cast", "unknown_proposal")
		return nil
	} else if err != nil {
		h.recordStoreError(ctx, "FindOne")
		return fmt.Errorf("events: vote_cast: look up %s: %w", proposalID, err)
	}

	voterID, err := h.lazyAccount(ctx, evt.Voter, meta, version)
	if err != nil {
		h.recordStoreError(ctx, "lazyAccount")
		return fmt.Errorf("events: vote_cast: upsert voter account: %w", err)
	}

	choice := kg.VoteReject
	if evt.Support {
		choice = kg.VoteAccept
	}
	vote := kg.Vote{ProposalID: proposalID, AccountID: voterID, CastAt: meta.Timestamp, Choice: choice}
	voteID := kg.EntityID(string(proposalID) + "|vote|" + string(voterID))

	if err := h.Store.InsertEntity(ctx, voteID, []kg.EntityID{kg.TypeVote}, vote.IntoAttributes(), meta, h.RootSpaceID, version); err != nil {
		h.recordStoreError(ctx, "InsertEntity")
		return fmt.Errorf("events: vote_cast: insert %s: %w", voteID, err)
	}

	h.recordOutcome(ctx, "vote_cast", "applied")
	return nil
}
