package inherit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kgraph/sink/pkg/kg"
)

// Resolver answers property and relation reads against a space hierarchy,
// consulting each property's aggregation direction.
type Resolver struct {
	Store kg.Store
	Pool  *pgxpool.Pool

	// IndexerSpaceID is the space system entities (including property
	// definitions and their AGGREGATION_DIRECTION triples) are written to.
	// It is a deployment-time constant (internal/config's bootstrap.
	// root_space_id), not a compiled-in one, so the caller supplies it.
	IndexerSpaceID kg.EntityID
}

// NewResolver returns a Resolver backed by store for triple/entity reads
// and pool for the space-hierarchy BFS pkg/query performs.
func NewResolver(store kg.Store, pool *pgxpool.Pool, indexerSpaceID kg.EntityID) *Resolver {
	return &Resolver{Store: store, Pool: pool, IndexerSpaceID: indexerSpaceID}
}

// Direction returns property's aggregation direction: the live
// AGGREGATION_DIRECTION triple on the property entity if one exists,
// otherwise the bootstrap default table, otherwise "absent" (ok == false).
func (r *Resolver) Direction(ctx context.Context, property kg.EntityID) (Direction, bool, error) {
	_, bag, err := r.Store.FindOne(ctx, property, r.IndexerSpaceID, kg.RootVersion)
	if err != nil && err != kg.ErrNotFound {
		return "", false, fmt.Errorf("inherit: direction: %w", err)
	}
	if err == nil {
		if v, ok := bag[kg.AttrAggregationDirection]; ok {
			if d, ok := directionFromTriple(v.Raw); ok {
				return d, true, nil
			}
		}
	}
	d, ok := DefaultDirection(property)
	return d, ok, nil
}

// ResolveProperty answers "what is the value of property P on entity E in
// space S?" at version. When strict is true, only S itself is
// searched. Otherwise the candidate space set is computed from P's
// aggregation direction, sorted nearest-first, and the first space with a
// live value wins. Returns kg.ErrNotFound if no candidate space has the
// property set. The aggregation direction itself is always read at
// kg.RootVersion: it is bootstrap metadata, not versioned graph data.
func (r *Resolver) ResolveProperty(ctx context.Context, property, entity, space kg.EntityID, version kg.Version, strict bool) (kg.Value, kg.EntityID, error) {
	if strict {
		_, bag, err := r.Store.FindOne(ctx, entity, space, version)
		if err != nil {
			return kg.Value{}, "", err
		}
		v, ok := bag[property]
		if !ok {
			return kg.Value{}, "", kg.ErrNotFound
		}
		return v, space, nil
	}

	direction, ok, err := r.Direction(ctx, property)
	if err != nil {
		return kg.Value{}, "", err
	}
	var candidates []kg.EntityID
	if !ok {
		candidates = []kg.EntityID{space}
	} else {
		candidates, err = CandidateSpaces(ctx, r.Pool, space, direction)
		if err != nil {
			return kg.Value{}, "", err
		}
	}

	for _, s := range candidates {
		_, bag, err := r.Store.FindOne(ctx, entity, s, version)
		if err != nil {
			if err == kg.ErrNotFound {
				continue
			}
			return kg.Value{}, "", err
		}
		if v, ok := bag[property]; ok {
			return v, s, nil
		}
	}
	return kg.Value{}, "", kg.ErrNotFound
}

// ResolveRelations applies the same algorithm to a relation query, but
// unlike ResolveProperty it does not stop at the first candidate space with
// a match: a relation is not a single value, so an ancestor with two
// relations and a farther ancestor with three more should surface all five,
// merged into one ordered, limit/skip-respecting result. It builds the full
// candidate space set up front and issues a single query restricted to that
// whole set via kg.WithSpaceIDs, rather than probing each candidate space in
// turn.
func (r *Resolver) ResolveRelations(ctx context.Context, property, entity, space kg.EntityID, version kg.Version, strict bool, opts ...kg.RelationQueryOpt) ([]kg.Relation, error) {
	if strict {
		return r.Store.GetOutboundRelations(ctx, entity, space, version, opts...)
	}

	direction, ok, err := r.Direction(ctx, property)
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.Store.GetOutboundRelations(ctx, entity, space, version, opts...)
	}

	candidates, err := CandidateSpaces(ctx, r.Pool, space, direction)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	merged := make([]kg.RelationQueryOpt, len(opts), len(opts)+1)
	copy(merged, opts)
	merged = append(merged, kg.WithSpaceIDs(candidates))
	return r.Store.GetOutboundRelations(ctx, entity, candidates[0], version, merged...)
}
