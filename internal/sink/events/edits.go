package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kgraph/sink/pkg/blockstream"
	"github.com/kgraph/sink/pkg/kg"
	"github.com/kgraph/sink/pkg/wire"
)

// HandleEditsPublished fetches the published content, decodes it, and
// applies its ops against the space that published it. Reference errors
// (unknown DAO address) are logged at WARN and the handler no-ops.
// Transport errors from the content store are retriable and propagate,
// wrapped with %w so errors.Is still matches them, so the caller can retry
// the block without advancing the cursor (§7); decode errors are scoped to the offending payload and are
// logged and skipped rather than failing the whole block.
func (h *Handler) HandleEditsPublished(ctx context.Context, evt blockstream.EditPublished, meta kg.BlockMetadata, version kg.Version) error {
	spaceID, err := h.findSpaceByDAOAddress(ctx, evt.DAOAddress, version)
	if errors.Is(err, kg.ErrNotFound) {
		h.Log.WarnContext(ctx, "edit published for unknown space", "dao_address", evt.DAOAddress)
		h.recordOutcome(ctx, "edits_published", "unknown_space")
		return nil
	}
	if err != nil {
		h.recordStoreError(ctx, "FindOneRelation")
		return fmt.Errorf("events: edits_published: look up %s: %w", evt.DAOAddress, err)
	}

	if err := h.applyContentURI(ctx, spaceID, evt.ContentURI, meta, version); err != nil {
		return fmt.Errorf("events: edits_published: %w", err)
	}

	h.recordOutcome(ctx, "edits_published", "applied")
	return nil
}

// applyContentURI fetches and decodes one content-store payload, routing
// between a plain edit and a space import. Called recursively for each
// edit an import replays.
func (h *Handler) applyContentURI(ctx context.Context, spaceID kg.EntityID, uri string, meta kg.BlockMetadata, version kg.Version) error {
	raw, err := h.fetchContent(ctx, uri)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", uri, err)
	}

	frames, err := wire.SplitFrames(raw)
	if err != nil {
		h.Log.WarnContext(ctx, "edit payload framing error, skipping", "uri", uri, "error", err)
		return nil
	}
	if len(frames) == 0 {
		return nil
	}

	envelope, err := wire.DecodeIpfsMetadata(frames[0])
	if err != nil {
		h.Log.WarnContext(ctx, "edit payload decode error, skipping", "uri", uri, "error", err)
		return nil
	}

	if envelope.Type == wire.ActionTypeImportSpace {
		imp, err := wire.DecodeImport(frames[0])
		if err != nil {
			h.Log.WarnContext(ctx, "import payload decode error, skipping", "uri", uri, "error", err)
			return nil
		}
		for _, editURI := range imp.Edits {
			if err := h.applyContentURI(ctx, spaceID, editURI, meta, version); err != nil {
				return err
			}
		}
		return nil
	}

	edit, err := wire.DecodeEdit(frames[0])
	if err != nil {
		h.Log.WarnContext(ctx, "edit payload decode error, skipping", "uri", uri, "error", err)
		return nil
	}

	ops := BuildRelationOps(opsFromEdit(edit))
	for entityID, entityOps := range kg.GroupOpsByEntity(ops) {
		if err := kg.ApplyOps(ctx, h.Store, entityOps, meta, spaceID, version); err != nil {
			h.recordStoreError(ctx, "ApplyOps")
			return fmt.Errorf("apply ops for %s: %w", entityID, err)
		}
	}
	return nil
}

func (h *Handler) fetchContent(ctx context.Context, uri string) ([]byte, error) {
	start := time.Now()
	raw, err := h.Content.Fetch(ctx, uri)
	if h.Metrics != nil {
		h.Metrics.ContentStoreFetchDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordContentStoreFetch(ctx, "error")
		}
		return nil, err
	}
	if h.Metrics != nil {
		h.Metrics.RecordContentStoreFetch(ctx, "ok")
	}
	return raw, nil
}
