// Package inherit answers "what is the value of property P on entity E in
// space S?" when the value may have been asserted in a parent or
// descendant space — the Inheritance Resolver (§4.4).
package inherit

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kgraph/sink/pkg/kg"
	"github.com/kgraph/sink/pkg/query"
)

// Direction is a property's aggregation policy: whether a read should fall
// back to parent spaces, descendant spaces, both, or neither.
type Direction string

const (
	Up            Direction = "Up"
	Down          Direction = "Down"
	Bidirectional Direction = "Bidirectional"
)

// directionFromTriple parses the AGGREGATION_DIRECTION triple's raw value,
// reporting ok == false for anything but Up, Down or Bidirectional (the
// bootstrap default table fallback is Resolver.Direction's).
func directionFromTriple(raw string) (Direction, bool) {
	switch Direction(raw) {
	case Up, Down, Bidirectional:
		return Direction(raw), true
	default:
		return "", false
	}
}

// candidateSpace is one entry of the ordered candidate set Σ the
// resolution algorithm builds before reading triples.
type candidateSpace struct {
	id    kg.EntityID
	depth int
}

// CandidateSpaces computes Σ for (direction, space) per §4.4 step 2: the
// starting space plus its descendants and/or ancestors depending on
// direction, sorted by depth ascending so nearer spaces win (step 3). An
// absent direction (ok == false at the call site) yields Σ = {S}.
func CandidateSpaces(ctx context.Context, pool *pgxpool.Pool, space kg.EntityID, direction Direction) ([]kg.EntityID, error) {
	candidates := []candidateSpace{{id: space, depth: 0}}

	switch direction {
	case Up:
		descendants, err := query.SubspacesQuery(ctx, pool, space, query.UnboundedDepth)
		if err != nil {
			return nil, fmt.Errorf("inherit: candidate spaces: %w", err)
		}
		for _, d := range descendants {
			candidates = append(candidates, candidateSpace{id: d.SpaceID, depth: d.Depth})
		}
	case Down:
		ancestors, err := query.ParentSpacesQuery(ctx, pool, space, query.UnboundedDepth)
		if err != nil {
			return nil, fmt.Errorf("inherit: candidate spaces: %w", err)
		}
		for _, a := range ancestors {
			candidates = append(candidates, candidateSpace{id: a.SpaceID, depth: a.Depth})
		}
	case Bidirectional:
		descendants, err := query.SubspacesQuery(ctx, pool, space, query.UnboundedDepth)
		if err != nil {
			return nil, fmt.Errorf("inherit: candidate spaces: %w", err)
		}
		ancestors, err := query.ParentSpacesQuery(ctx, pool, space, query.UnboundedDepth)
		if err != nil {
			return nil, fmt.Errorf("inherit: candidate spaces: %w", err)
		}
		for _, d := range descendants {
			candidates = append(candidates, candidateSpace{id: d.SpaceID, depth: d.Depth})
		}
		for _, a := range ancestors {
			candidates = append(candidates, candidateSpace{id: a.SpaceID, depth: a.Depth})
		}
	default:
		// direction absent or unrecognised: Σ = {S}.
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].depth < candidates[j].depth })

	seen := make(map[kg.EntityID]bool, len(candidates))
	ordered := make([]kg.EntityID, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.id] {
			continue
		}
		seen[c.id] = true
		ordered = append(ordered, c.id)
	}
	return ordered, nil
}
