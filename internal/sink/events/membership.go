package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/kgraph/sink/pkg/blockstream"
	"github.com/kgraph/sink/pkg/ids"
	"github.com/kgraph/sink/pkg/kg"
)

func membershipRelationID(space kg.EntityID, relationType kg.EntityID, account kg.EntityID) kg.EntityID {
	return kg.EntityID(string(space) + "|" + string(relationType) + "|" + string(account))
}

// addMembership grants account a relationType edge from spaceID, looking the
// space up by DAO address first. Shared by HandleEditorAdded/HandleMemberAdded.
func (h *Handler) addMembership(ctx context.Context, kind string, daoAddress, accountAddress string, relationType kg.EntityID, meta kg.BlockMetadata, version kg.Version) error {
	spaceID, err := h.findSpaceByDAOAddress(ctx, daoAddress, version)
	if errors.Is(err, kg.ErrNotFound) {
		h.Log.WarnContext(ctx, kind+" for unknown space", "dao_address", daoAddress)
		h.recordOutcome(ctx, kind, "unknown_space")
		return nil
	}
	if err != nil {
		h.recordStoreError(ctx, "FindOneRelation")
		return fmt.Errorf("events: %s: look up %s: %w", kind, daoAddress, err)
	}

	accountID, err := h.lazyAccount(ctx, accountAddress, meta, version)
	if err != nil {
		h.recordStoreError(ctx, "lazyAccount")
		return fmt.Errorf("events: %s: upsert account: %w", kind, err)
	}

	if err := h.Store.CreateRelation(ctx, kg.Relation{
		ID:                 membershipRelationID(spaceID, relationType, accountID),
		FromEntity:         spaceID,
		ToEntity:           accountID,
		RelationTypeEntity: relationType,
		Index:              ids.FirstIndex(),
		SpaceID:            h.RootSpaceID,
		MinVersion:         version,
		Props:              kg.NewSystemProperties(meta),
	}); err != nil {
		h.recordStoreError(ctx, "CreateRelation")
		return fmt.Errorf("events: %s: create relation: %w", kind, err)
	}

	h.recordOutcome(ctx, kind, "applied")
	return nil
}

// removeMembership retracts a relationType edge between spaceID and
// account, looking the space up by DAO address first.
func (h *Handler) removeMembership(ctx context.Context, kind string, daoAddress, accountAddress string, relationType kg.EntityID, meta kg.BlockMetadata, version kg.Version) error {
	spaceID, err := h.findSpaceByDAOAddress(ctx, daoAddress, version)
	if errors.Is(err, kg.ErrNotFound) {
		h.Log.WarnContext(ctx, kind+" for unknown space", "dao_address", daoAddress)
		h.recordOutcome(ctx, kind, "unknown_space")
		return nil
	}
	if err != nil {
		h.recordStoreError(ctx, "FindOneRelation")
		return fmt.Errorf("events: %s: look up %s: %w", kind, daoAddress, err)
	}

	accountID := kg.EntityID(ids.AccountID(accountAddress))
	relID := membershipRelationID(spaceID, relationType, accountID)
	if err := h.Store.DeleteRelation(ctx, relID, meta, h.RootSpaceID, version); err != nil {
		if errors.Is(err, kg.ErrNotFound) {
			h.recordOutcome(ctx, kind, "already_removed")
			return nil
		}
		h.recordStoreError(ctx, "DeleteRelation")
		return fmt.Errorf("events: %s: delete relation %s: %w", kind, relID, err)
	}

	h.recordOutcome(ctx, kind, "applied")
	return nil
}

func (h *Handler) HandleEditorAdded(ctx context.Context, evt blockstream.EditorAdded, meta kg.BlockMetadata, version kg.Version) error {
	return h.addMembership(ctx, "editor_added", evt.DAOAddress, evt.Editor, kg.RelationEditor, meta, version)
}

func (h *Handler) HandleEditorRemoved(ctx context.Context, evt blockstream.EditorRemoved, meta kg.BlockMetadata, version kg.Version) error {
	return h.removeMembership(ctx, "editor_removed", evt.DAOAddress, evt.Editor, kg.RelationEditor, meta, version)
}

func (h *Handler) HandleMemberAdded(ctx context.Context, evt blockstream.MemberAdded, meta kg.BlockMetadata, version kg.Version) error {
	return h.addMembership(ctx, "member_added", evt.DAOAddress, evt.Member, kg.RelationMember, meta, version)
}

func (h *Handler) HandleMemberRemoved(ctx context.Context, evt blockstream.MemberRemoved, meta kg.BlockMetadata, version kg.Version) error {
	return h.removeMembership(ctx, "member_removed", evt.DAOAddress, evt.Member, kg.RelationMember, meta, version)
}
