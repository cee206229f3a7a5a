package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/kgraph/sink/pkg/blockstream"
	"github.com/kgraph/sink/pkg/ids"
	"github.com/kgraph/sink/pkg/kg"
)

// HandleSpaceCreated computes space_id = id(network, dao_address) and
// upserts a Space entity with GovernancePublic, then records the
// DAO-address index entry later handlers resolve the space through.
// Idempotent: re-applying the same event for an already-known DAO address
// leaves the space's governance type untouched rather than clobbering a
// later handle_personal_space_created's GovernancePersonal.
func (h *Handler) HandleSpaceCreated(ctx context.Context, evt blockstream.SpaceCreated, meta kg.BlockMetadata, version kg.Version) error {
	spaceID := kg.EntityID(ids.SpaceID(evt.Network, evt.DAOAddress))

	space := kg.Space{
		Network:            evt.Network,
		DAOAddress:         evt.DAOAddress,
		GovernanceType:     kg.GovernancePublic,
		SpacePluginAddress: &evt.PluginAddress,
	}
	if _, _, err := h.Store.FindOne(ctx, spaceID, h.RootSpaceID, version); err == nil {
		h.recordOutcome(ctx, "space_created", "duplicate")
		return nil
	} else if !errors.Is(err, kg.ErrNotFound) {
		h.recordStoreError(ctx, "FindOne")
		return fmt.Errorf("events: space_created: look up %s: %w", spaceID, err)
	}

	if err := h.Store.InsertEntity(ctx, spaceID, []kg.EntityID{kg.TypeSpace}, space.IntoAttributes(), meta, h.RootSpaceID, version); err != nil {
		h.recordStoreError(ctx, "InsertEntity")
		return fmt.Errorf("events: space_created: insert %s: %w", spaceID, err)
	}
	if err := h.indexSpaceByDAOAddress(ctx, evt.DAOAddress, spaceID, meta, version); err != nil {
		h.recordStoreError(ctx, "CreateRelation")
		return fmt.Errorf("events: space_created: index %s: %w", spaceID, err)
	}

	h.recordOutcome(ctx, "space_created", "applied")
	return nil
}

// HandlePersonalSpaceAdminPluginCreated looks up the space by DAO address
// and, if found, sets GovernancePersonal, the admin plugin address, and
// grants the initial editor. Unknown DAO addresses are a reference error:
// logged at WARN, handler becomes a no-op (§7).
func (h *Handler) HandlePersonalSpaceAdminPluginCreated(ctx context.Context, evt blockstream.PersonalSpaceAdminPluginCreated, meta kg.BlockMetadata, version kg.Version) error {
	spaceID, err := h.findSpaceByDAOAddress(ctx, evt.DAOAddress, version)
	if errors.Is(err, kg.ErrNotFound) {
		h.Log.WarnContext(ctx, "personal space admin plugin created for unknown space", "dao_address", evt.DAOAddress)
		h.recordOutcome(ctx, "personal_space_admin_plugin_created", "unknown_space")
		return nil
	}
	if err != nil {
		h.recordStoreError(ctx, "FindOneRelation")
		return fmt.Errorf("events: personal_space_admin_plugin_created: look up %s: %w", evt.DAOAddress, err)
	}

	attrs := map[kg.EntityID]kg.Value{
		kg.AttrGovernanceType:             kg.NewTextValue(string(kg.GovernancePersonal)),
		kg.AttrPersonalAdminPluginAddress: kg.NewTextValue(evt.PersonalAdminPluginAddress),
	}
	if err := h.Store.SetAttributes(ctx, spaceID, attrs, meta, h.RootSpaceID, version); err != nil {
		h.recordStoreError(ctx, "SetAttributes")
		return fmt.Errorf("events: personal_space_admin_plugin_created: update %s: %w", spaceID, err)
	}

	accountID, err := h.lazyAccount(ctx, evt.InitialEditorAddress, meta, version)
	if err != nil {
		h.recordStoreError(ctx, "lazyAccount")
		return fmt.Errorf("events: personal_space_admin_plugin_created: upsert editor account: %w", err)
	}
	if err := h.Store.CreateRelation(ctx, kg.Relation{
		ID:                 kg.EntityID(string(spaceID) + "|" + string(kg.RelationEditor) + "|" + string(accountID)),
		FromEntity:         spaceID,
		ToEntity:           accountID,
		RelationTypeEntity: kg.RelationEditor,
		Index:              ids.FirstIndex(),
		SpaceID:            h.RootSpaceID,
		MinVersion:         version,
		Props:              kg.NewSystemProperties(meta),
	}); err != nil {
		h.recordStoreError(ctx, "CreateRelation")
		return fmt.Errorf("events: personal_space_admin_plugin_created: add initial editor: %w", err)
	}

	h.recordOutcome(ctx, "personal_space_admin_plugin_created", "applied")
	return nil
}

// HandleGovernancePluginCreated looks up the space by DAO address and sets
// the voting/member-access plugin addresses. No-ops on an unknown address.
func (h *Handler) HandleGovernancePluginCreated(ctx context.Context, evt blockstream.GovernancePluginCreated, meta kg.BlockMetadata, version kg.Version) error {
	spaceID, err := h.findSpaceByDAOAddress(ctx, evt.DAOAddress, version)
	if errors.Is(err, kg.ErrNotFound) {
		h.Log.WarnContext(ctx, "governance plugin created for unknown space", "dao_address", evt.DAOAddress)
		h.recordOutcome(ctx, "governance_plugin_created", "unknown_space")
		return nil
	}
	if err != nil {
		h.recordStoreError(ctx, "FindOneRelation")
		return fmt.Errorf("events: governance_plugin_created: look up %s: %w", evt.DAOAddress, err)
	}

	attrs := map[kg.EntityID]kg.Value{
		kg.AttrVotingPluginAddress:       kg.NewTextValue(evt.VotingPluginAddress),
		kg.AttrMemberAccessPluginAddress: kg.NewTextValue(evt.MemberAccessPluginAddress),
	}
	if err := h.Store.SetAttributes(ctx, spaceID, attrs, meta, h.RootSpaceID, version); err != nil {
		h.recordStoreError(ctx, "SetAttributes")
		return fmt.Errorf("events: governance_plugin_created: update %s: %w", spaceID, err)
	}

	h.recordOutcome(ctx, "governance_plugin_created", "applied")
	return nil
}
