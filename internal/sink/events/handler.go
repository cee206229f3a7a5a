// Package events implements the per-event-kind handlers of the Event
// Pipeline (§4.5): one function per on-chain event, each translating a
// blockstream payload into Store writes. One file per event family, around
// the shared Handler defined here.
package events

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kgraph/sink/internal/observe"
	"github.com/kgraph/sink/pkg/ids"
	"github.com/kgraph/sink/pkg/ipfs"
	"github.com/kgraph/sink/pkg/kg"
)

// Handler owns the dependencies every event handler needs: the graph store,
// the content-store client edits are fetched through, and the metrics sink.
// A single Handler is safe for sequential reuse across blocks; it carries no
// per-block state (§5: shared resources, not per-call state).
type Handler struct {
	Store   kg.Store
	Content ipfs.Client
	Metrics *observe.Metrics
	Log     *slog.Logger

	// RootSpaceID scopes cross-space governance bookkeeping that has no
	// natural owning space of its own: Space entities, the DAO-address
	// index, Account, Proposal, and Vote entities. Content an individual
	// space publishes through handle_edits_published is scoped to that
	// space's own id instead.
	RootSpaceID kg.EntityID
}

// NewHandler builds a Handler. log defaults to slog.Default() if nil.
func NewHandler(store kg.Store, content ipfs.Client, metrics *observe.Metrics, rootSpaceID kg.EntityID, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Store: store, Content: content, Metrics: metrics, RootSpaceID: rootSpaceID, Log: log}
}

// findSpaceByDAOAddress resolves a DAO address to the space id
// handle_space_created derived for it, via the DAO-address index relation.
// Returns kg.ErrNotFound if the address is unknown (a reference error per
// §7: the caller logs at WARN and no-ops the handler).
func (h *Handler) findSpaceByDAOAddress(ctx context.Context, daoAddress string, version kg.Version) (kg.EntityID, error) {
	indexID := kg.EntityID(ids.DAOIndexID(daoAddress))
	rel, err := h.Store.FindOneRelation(ctx, indexID, "", kg.RelationDAOIndex, h.RootSpaceID, version)
	if err != nil {
		return "", err
	}
	return rel.ToEntity, nil
}

// indexSpaceByDAOAddress records the DAO-address -> space id mapping
// handle_space_created establishes, so later events (which carry only the
// DAO address) can resolve the space.
func (h *Handler) indexSpaceByDAOAddress(ctx context.Context, daoAddress string, spaceID kg.EntityID, meta kg.BlockMetadata, version kg.Version) error {
	indexID := kg.EntityID(ids.DAOIndexID(daoAddress))
	return h.Store.CreateRelation(ctx, kg.Relation{
		ID:                 indexID,
		FromEntity:         indexID,
		ToEntity:           spaceID,
		RelationTypeEntity: kg.RelationDAOIndex,
		Index:              ids.FirstIndex(),
		SpaceID:            h.RootSpaceID,
		MinVersion:         version,
		Props:              kg.NewSystemProperties(meta),
	})
}

// lazyAccount upserts an Account entity for address if one does not already
// exist, returning its id either way (documented on kg.Account).
func (h *Handler) lazyAccount(ctx context.Context, address string, meta kg.BlockMetadata, version kg.Version) (kg.EntityID, error) {
	id := kg.EntityID(ids.AccountID(address))
	if _, _, err := h.Store.FindOne(ctx, id, h.RootSpaceID, version); err == nil {
		return id, nil
	} else if !errors.Is(err, kg.ErrNotFound) {
		return "", err
	}

	account := kg.Account{Address: address}
	attrs := map[kg.EntityID]kg.Value{kg.AttrAccountAddress: kg.NewTextValue(account.Address)}
	if err := h.Store.InsertEntity(ctx, id, []kg.EntityID{kg.TypeAccount}, attrs, meta, h.RootSpaceID, version); err != nil {
		return "", err
	}
	return id, nil
}

func (h *Handler) recordOutcome(ctx context.Context, kind, outcome string) {
	if h.Metrics != nil {
		h.Metrics.RecordEvent(ctx, kind, outcome)
	}
}

func (h *Handler) recordStoreError(ctx context.Context, operation string) {
	if h.Metrics != nil {
		h.Metrics.RecordStoreError(ctx, operation)
	}
}
