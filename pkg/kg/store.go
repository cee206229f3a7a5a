package kg

import (
	"context"
	"errors"
)

// ErrNotFound is returned by read operations when the requested entity,
// triple, or relation does not exist (or is not live in the requested
// version window).
var ErrNotFound = errors.New("kg: not found")

// ErrCyclicParentSpace reports a parent-space cycle. The space-hierarchy
// traversals in pkg/query do not return it: they prune cycles with a
// visited set. Invariant I5 treats cycles as a traversal-time concern, not
// a write-time rejection.
var ErrCyclicParentSpace = errors.New("kg: cyclic parent-space reference")

// RelationQueryOpt configures a relation read (GetOutboundRelations,
// GetInboundRelations). Functional options.
type RelationQueryOpt func(*relationQueryOpts)

type relationQueryOpts struct {
	relationTypes []EntityID
	limit         int
	skip          int
	spaceIDs      []EntityID
}

// WithRelationTypes restricts results to relations whose RelationTypeEntity
// is in types.
func WithRelationTypes(types ...EntityID) RelationQueryOpt {
	return func(o *relationQueryOpts) { o.relationTypes = types }
}

// WithRelationLimit caps the number of relations returned. Zero means
// unlimited.
func WithRelationLimit(n int) RelationQueryOpt {
	return func(o *relationQueryOpts) { o.limit = n }
}

// WithRelationSkip skips the first n matching relations before returning
// results.
func WithRelationSkip(n int) RelationQueryOpt {
	return func(o *relationQueryOpts) { o.skip = n }
}

// WithSpaceIDs restricts a relation query to the union of spaceIDs instead
// of the single spaceID passed to GetOutboundRelations/GetInboundRelations,
// which is ignored when this option is supplied. pkg/inherit uses this to
// merge relations across an entire candidate space set in one query rather
// than probing each candidate space in turn.
func WithSpaceIDs(spaceIDs []EntityID) RelationQueryOpt {
	return func(o *relationQueryOpts) { o.spaceIDs = spaceIDs }
}

// ResolveRelationQueryOpts applies opts to a zero-valued options struct and
// returns the exported fields postgres.Store needs: relation type filter,
// limit, skip, and an optional space-id set overriding the single spaceID
// argument. Exported as a function (not a type) because internal fields
// stay package-private while postgres still needs to read them when
// compiling a query.
func ResolveRelationQueryOpts(opts []RelationQueryOpt) (relationTypes []EntityID, limit, skip int, spaceIDs []EntityID) {
	var o relationQueryOpts
	for _, opt := range opts {
		opt(&o)
	}
	return o.relationTypes, o.limit, o.skip, o.spaceIDs
}

// Store is the mapping layer's backing contract: typed write/read
// operations over entities, triples, and relations, all space- and
// version-scoped. pkg/kg/postgres.Store is the concrete implementation.
type Store interface {
	// InsertEntity creates the entity node (if absent), records types as the
	// node's type ids (not as relations), and writes attrs as live triples
	// at meta/spaceID/version.
	// Idempotent: re-applying with identical arguments yields the same
	// end-state (no duplicate triples, no version bump beyond the no-op
	// check in NoopInsert).
	InsertEntity(ctx context.Context, id EntityID, types []EntityID, attrs map[EntityID]Value, meta BlockMetadata, spaceID EntityID, version Version) error

	// DeleteEntity closes every live triple and relation for id in spaceID
	// at version.
	DeleteEntity(ctx context.Context, id EntityID, meta BlockMetadata, spaceID EntityID, version Version) error

	// SetAttribute closes the currently-live triple for (id, attr, spaceID)
	// if any, then writes a new live triple at version — unless NoopInsert
	// would apply, in which case it is a no-op.
	SetAttribute(ctx context.Context, id, attr EntityID, value Value, meta BlockMetadata, spaceID EntityID, version Version) error

	// SetAttributes applies SetAttribute for every entry in bag.
	SetAttributes(ctx context.Context, id EntityID, bag map[EntityID]Value, meta BlockMetadata, spaceID EntityID, version Version) error

	// DeleteAttribute closes the currently-live triple for (id, attr,
	// spaceID), if any. A no-op if no live triple exists.
	DeleteAttribute(ctx context.Context, id, attr EntityID, meta BlockMetadata, spaceID EntityID, version Version) error

	// FindOne returns the live (or as-of-version) entity node and its
	// attribute bag for id in spaceID. Returns ErrNotFound if the entity
	// node does not exist; an existing entity with no triple live in the
	// window yields an empty bag.
	FindOne(ctx context.Context, id EntityID, spaceID EntityID, version Version) (EntityNode, map[EntityID]Value, error)

	// CreateRelation inserts a new live relation. Idempotent by RelationID.
	CreateRelation(ctx context.Context, rel Relation) error

	// DeleteRelation closes the relation identified by id in spaceID at
	// version.
	DeleteRelation(ctx context.Context, id EntityID, meta BlockMetadata, spaceID EntityID, version Version) error

	// FindOneRelation returns the first live relation matching the given
	// from/to/type filter (any of which may be empty to mean "any"), or
	// ErrNotFound.
	FindOneRelation(ctx context.Context, from, to, relationType EntityID, spaceID EntityID, version Version) (Relation, error)

	// GetOutboundRelations returns the live relations where FromEntity ==
	// id, ordered by Index ascending. spaceID is ignored if WithSpaceIDs is
	// among opts, in which case the query spans the union of that space set
	// instead of a single space.
	GetOutboundRelations(ctx context.Context, id EntityID, spaceID EntityID, version Version, opts ...RelationQueryOpt) ([]Relation, error)

	// GetInboundRelations returns the live relations where ToEntity == id.
	// spaceID is ignored if WithSpaceIDs is among opts, same as
	// GetOutboundRelations.
	GetInboundRelations(ctx context.Context, id EntityID, spaceID EntityID, version Version, opts ...RelationQueryOpt) ([]Relation, error)

	// SentinelVersion reads the bootstrap migration sentinel triple's
	// value. Returns ErrNotFound before the first bootstrap.
	SentinelVersion(ctx context.Context) (string, error)

	// SetSentinelVersion writes the bootstrap migration sentinel triple.
	SetSentinelVersion(ctx context.Context, version string, meta BlockMetadata) error

	// Cursor returns the last persisted block-stream cursor, or
	// ErrNotFound before the first successful block.
	Cursor(ctx context.Context) (string, error)

	// SetCursor persists the block-stream cursor. Called once per block,
	// only after every handler for that block has returned successfully.
	SetCursor(ctx context.Context, cursor string, meta BlockMetadata) error

	// ResetAll drops every node, edge, triple, and index, and the sentinel
	// and cursor rows — the only erase path, used by the bootstrap
	// migration gate and --reset-db.
	ResetAll(ctx context.Context) error

	// Ping verifies connectivity to the backing store, for health checks.
	Ping(ctx context.Context) error

	// Close releases the store's connection pool.
	Close()
}

// ApplyOps applies a single entity's grouped ops against store, in the
// four-bucket order process_ops specifies: SetTriple, DeleteTriple,
// CreateRelation, DeleteRelation. Order within a bucket is preserved
// exactly as emitted by the caller (Design Note "Ops ordering").
func ApplyOps(ctx context.Context, store Store, ops []Op, meta BlockMetadata, spaceID EntityID, version Version) error {
	setTriples, deleteTriples, createRelations, deleteRelations := SplitByKind(ops)

	for _, op := range setTriples {
		if err := store.SetAttribute(ctx, op.EntityID, op.AttributeID, op.Value, meta, spaceID, version); err != nil {
			return err
		}
	}
	for _, op := range deleteTriples {
		if err := store.DeleteAttribute(ctx, op.EntityID, op.AttributeID, meta, spaceID, version); err != nil {
			return err
		}
	}
	for _, op := range createRelations {
		rel := Relation{
			ID:                 op.RelationID,
			FromEntity:         op.EntityID,
			ToEntity:           op.ToEntity,
			RelationTypeEntity: op.RelationTypeEntity,
			Index:              op.RelationIndex,
			SpaceID:            spaceID,
			MinVersion:         version,
			Props:              NewSystemProperties(meta),
		}
		if err := store.CreateRelation(ctx, rel); err != nil {
			return err
		}
	}
	for _, op := range deleteRelations {
		if err := store.DeleteRelation(ctx, op.RelationID, meta, spaceID, version); err != nil {
			return err
		}
	}
	return nil
}
