package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/kgraph/sink/pkg/blockstream"
	"github.com/kgraph/sink/pkg/ids"
	"github.com/kgraph/sink/pkg/kg"
)

func parentSpaceRelationID(parent, child kg.EntityID) kg.EntityID {
	return kg.EntityID(string(child) + "|" + string(kg.RelationParentSpace) + "|" + string(parent))
}

// HandleSubspaceAdded looks up the parent and child spaces by DAO address
// and creates a PARENT_SPACE relation from child to parent. No-ops (with a
// WARN log) if either side is unknown.
func (h *Handler) HandleSubspaceAdded(ctx context.Context, evt blockstream.SubspaceAdded, meta kg.BlockMetadata, version kg.Version) error {
	parentID, err := h.findSpaceByDAOAddress(ctx, evt.ParentDAOAddress, version)
	if errors.Is(err, kg.ErrNotFound) {
		h.Log.WarnContext(ctx, "subspace added with unknown parent space", "parent_dao_address", evt.ParentDAOAddress)
		h.recordOutcome(ctx, "subspace_added", "unknown_parent")
		return nil
	}
	if err != nil {
		h.recordStoreError(ctx, "FindOneRelation")
		return fmt.Errorf("events: subspace_added: look up parent %s: %w", evt.ParentDAOAddress, err)
	}
	childID, err := h.findSpaceByDAOAddress(ctx, evt.ChildDAOAddress, version)
	if errors.Is(err, kg.ErrNotFound) {
		h.Log.WarnContext(ctx, "subspace added with unknown child space", "child_dao_address", evt.ChildDAOAddress)
		h.recordOutcome(ctx, "subspace_added", "unknown_child")
		return nil
	}
	if err != nil {
		h.recordStoreError(ctx, "FindOneRelation")
		return fmt.Errorf("events: subspace_added: look up child %s: %w", evt.ChildDAOAddress, err)
	}

	if err := h.Store.CreateRelation(ctx, kg.Relation{
		ID:                 parentSpaceRelationID(parentID, childID),
		FromEntity:         childID,
		ToEntity:           parentID,
		RelationTypeEntity: kg.RelationParentSpace,
		Index:              ids.FirstIndex(),
		SpaceID:            h.RootSpaceID,
		MinVersion:         version,
		Props:              kg.NewSystemProperties(meta),
	}); err != nil {
		h.recordStoreError(ctx, "CreateRelation")
		return fmt.Errorf("events: subspace_added: create relation %s -> %s: %w", childID, parentID, err)
	}

	h.recordOutcome(ctx, "subspace_added", "applied")
	return nil
}

// HandleSubspaceRemoved retracts the PARENT_SPACE relation added by
// HandleSubspaceAdded. No-ops if either side is unknown.
func (h *Handler) HandleSubspaceRemoved(ctx context.Context, evt blockstream.SubspaceRemoved, meta kg.BlockMetadata, version kg.Version) error {
	parentID, err := h.findSpaceByDAOAddress(ctx, evt.ParentDAOAddress, version)
	if errors.Is(err, kg.ErrNotFound) {
		h.Log.WarnContext(ctx, "subspace removed with unknown parent space", "parent_dao_address", evt.ParentDAOAddress)
		h.recordOutcome(ctx, "subspace_removed", "unknown_parent")
		return nil
	}
	if err != nil {
		h.recordStoreError(ctx, "FindOneRelation")
		return fmt.Errorf("events: subspace_removed: look up parent %s: %w", evt.ParentDAOAddress, err)
	}
	childID, err := h.findSpaceByDAOAddress(ctx, evt.ChildDAOAddress, version)
	if errors.Is(err, kg.ErrNotFound) {
		h.Log.WarnContext(ctx, "subspace removed with unknown child space", "child_dao_address", evt.ChildDAOAddress)
		h.recordOutcome(ctx, "subspace_removed", "unknown_child")
		return nil
	}
	if err != nil {
		h.recordStoreError(ctx, "FindOneRelation")
		return fmt.Errorf("events: subspace_removed: look up child %s: %w", evt.ChildDAOAddress, err)
	}

	relID := parentSpaceRelationID(parentID, childID)
	if err := h.Store.DeleteRelation(ctx, relID, meta, h.RootSpaceID, version); err != nil {
		if errors.Is(err, kg.ErrNotFound) {
			h.recordOutcome(ctx, "subspace_removed", "already_removed")
			return nil
		}
		h.recordStoreError(ctx, "DeleteRelation")
		return fmt.Errorf("events: subspace_removed: delete relation %s: %w", relID, err)
	}

	h.recordOutcome(ctx, "subspace_removed", "applied")
	return nil
}
