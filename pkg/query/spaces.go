package query

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kgraph/sink/pkg/kg"
)

// SpaceDepth pairs a space id with its BFS hop count from the query's
// starting space, the (space_id, depth) shape §4.3 names.
type SpaceDepth struct {
	SpaceID kg.EntityID
	Depth   int
}

// UnboundedDepth disables DefaultMaxDepth's cap for ParentSpacesQuery/
// SubspacesQuery.
const UnboundedDepth = -1

// DefaultMaxDepth is the default traversal bound when a caller does not
// request UnboundedDepth, per §4.3 ("configurable max_depth, default 1").
const DefaultMaxDepth = 1

// ParentSpacesQuery walks PARENT_SPACE relations outward from spaceID
// (child -> parent) up to maxDepth hops, as an iterative in-process walk
// rather than a single recursive SQL statement: each hop is one query
// against the relations table for the whole frontier. Cycles are pruned
// with a visited set.
func ParentSpacesQuery(ctx context.Context, pool *pgxpool.Pool, spaceID kg.EntityID, maxDepth int) ([]SpaceDepth, error) {
	return bfsSpaces(ctx, pool, spaceID, maxDepth, "from_entity", "to_entity")
}

// SubspacesQuery walks PARENT_SPACE relations inward to spaceID (parent ->
// child) up to maxDepth hops.
func SubspacesQuery(ctx context.Context, pool *pgxpool.Pool, spaceID kg.EntityID, maxDepth int) ([]SpaceDepth, error) {
	return bfsSpaces(ctx, pool, spaceID, maxDepth, "to_entity", "from_entity")
}

// bfsSpaces walks live PARENT_SPACE relations one hop at a time. startColumn
// names the relation endpoint matching the current frontier; nextColumn
// names the endpoint to add to the next frontier.
func bfsSpaces(ctx context.Context, pool *pgxpool.Pool, spaceID kg.EntityID, maxDepth int, startColumn, nextColumn string) ([]SpaceDepth, error) {
	visited := map[kg.EntityID]bool{spaceID: true}
	frontier := []kg.EntityID{spaceID}
	var results []SpaceDepth

	for depth := 1; maxDepth == UnboundedDepth || depth <= maxDepth; depth++ {
		if len(frontier) == 0 {
			break
		}

		q := fmt.Sprintf(`
			SELECT DISTINCT %s
			FROM   relations
			WHERE  %s = ANY($1) AND relation_type = $2 AND max_version IS NULL`, nextColumn, startColumn)

		ids := make([]string, len(frontier))
		for i, id := range frontier {
			ids[i] = string(id)
		}

		rows, err := pool.Query(ctx, q, ids, string(kg.RelationParentSpace))
		if err != nil {
			return nil, fmt.Errorf("query: space traversal: %w", err)
		}

		var next []kg.EntityID
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("query: space traversal: scan: %w", err)
			}
			eid := kg.EntityID(id)
			if visited[eid] {
				continue
			}
			visited[eid] = true
			next = append(next, eid)
			results = append(results, SpaceDepth{SpaceID: eid, Depth: depth})
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query: space traversal: %w", err)
		}
		frontier = next
	}

	return results, nil
}
