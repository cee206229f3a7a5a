package query

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/kgraph/sink/pkg/kg"
	"github.com/kgraph/sink/pkg/querybuilder"
)

// Default tunables for semantic search, per §4.3.
const (
	DefaultThreshold      = 0.0
	DefaultLimit          = 100
	DefaultSearchRatio    = 3.0
	maxSemanticSearchScan = 10000 // hard ceiling on an over-fetch, never silently exceeded
)

// SemanticSearchResult pairs a matched entity with its similarity score
// (1 - cosine distance; higher is better).
type SemanticSearchResult struct {
	Entity kg.EntityID
	Score  float64
}

// SemanticSearchOptions tunes every search shape in this file.
type SemanticSearchOptions struct {
	// Threshold is the minimum score (1 - cosine distance) a result must
	// reach. Zero value uses DefaultThreshold.
	Threshold float64
	// Limit caps the number of results returned. Zero uses DefaultLimit.
	Limit int
	// EffectiveSearchRatio over-fetches from the ANN index by this factor
	// to compensate for post-filter pruning (SearchFromRestrictions,
	// SearchWithTraversals). Zero uses DefaultSearchRatio.
	EffectiveSearchRatio float64
}

func (o SemanticSearchOptions) withDefaults() SemanticSearchOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.EffectiveSearchRatio <= 0 {
		o.EffectiveSearchRatio = DefaultSearchRatio
	}
	return o
}

func (o SemanticSearchOptions) overFetchLimit() int {
	n := int(float64(o.Limit) * o.EffectiveSearchRatio)
	if n > maxSemanticSearchScan {
		n = maxSemanticSearchScan
	}
	if n < o.Limit {
		n = o.Limit
	}
	return n
}

func scanSemanticResult(row pgx.Rows) (SemanticSearchResult, error) {
	var (
		id    string
		score float64
	)
	err := row.Scan(&id, &score)
	return SemanticSearchResult{Entity: kg.EntityID(id), Score: score}, err
}

// SemanticSearch performs the simplest shape (§4.3 table): vector-index
// k-NN, joined against entities, returned in ANN order, using pgvector's
// `<=>` cosine-distance operator.
func SemanticSearch(pool *pgxpool.Pool, embedding []float32, spaceID kg.EntityID, opts SemanticSearchOptions) QueryStream[SemanticSearchResult] {
	opts = opts.withDefaults()
	vec := pgvector.NewVector(embedding)

	const q = `
		SELECT an.entity_id, 1 - (an.embedding <=> $1) AS score
		FROM   attribute_nodes an
		JOIN   entities e ON e.id = an.entity_id
		WHERE  an.embedding IS NOT NULL AND an.space_id = $2
		  AND  1 - (an.embedding <=> $1) >= $3
		ORDER  BY an.embedding <=> $1
		LIMIT  $4`

	return SQLStream[SemanticSearchResult]{
		Pool:    pool,
		SQL:     q,
		Args:    []any{vec, string(spaceID), opts.Threshold, opts.Limit},
		Scanner: scanSemanticResult,
	}
}

// PrefilteredSemanticSearch applies an entity filter first, then computes
// cosine similarity only over the surviving rows (brute-force, since the
// candidate set is already narrow enough that an ANN index offers no
// benefit), applies the threshold, and sorts.
func PrefilteredSemanticSearch(pool *pgxpool.Pool, embedding []float32, filter querybuilder.EntityFilter, opts SemanticSearchOptions) QueryStream[SemanticSearchResult] {
	opts = opts.withDefaults()
	vec := pgvector.NewVector(embedding)

	binder := querybuilder.NewParamBinder()
	vecArg := binder.Bind(vec)
	entityCond := filter.Compile("an.entity_id", binder)
	if entityCond == "" {
		entityCond = "TRUE"
	}
	thresholdArg := binder.Bind(opts.Threshold)
	limitArg := binder.Bind(opts.Limit)

	q := fmt.Sprintf(`
		SELECT an.entity_id, 1 - (an.embedding <=> %s) AS score
		FROM   attribute_nodes an
		WHERE  an.embedding IS NOT NULL AND (%s)
		  AND  1 - (an.embedding <=> %s) >= %s
		ORDER  BY score DESC
		LIMIT  %s`, vecArg, entityCond, vecArg, thresholdArg, limitArg)

	return SQLStream[SemanticSearchResult]{
		Pool:    pool,
		SQL:     q,
		Args:    binder.Args(),
		Scanner: scanSemanticResult,
	}
}

// SearchFromRestrictions over-fetches from the ANN index by
// EffectiveSearchRatio, applies the threshold, then filters by entity
// restrictions — trading a larger initial scan for an index-accelerated
// first pass.
func SearchFromRestrictions(pool *pgxpool.Pool, embedding []float32, filter querybuilder.EntityFilter, opts SemanticSearchOptions) QueryStream[SemanticSearchResult] {
	opts = opts.withDefaults()
	vec := pgvector.NewVector(embedding)

	binder := querybuilder.NewParamBinder()
	vecArg := binder.Bind(vec)
	overFetchArg := binder.Bind(opts.overFetchLimit())
	thresholdArg := binder.Bind(opts.Threshold)

	entityCond := filter.Compile("c.entity_id", binder)
	if entityCond == "" {
		entityCond = "TRUE"
	}
	limitArg := binder.Bind(opts.Limit)

	q := fmt.Sprintf(`
		WITH candidates AS (
		    SELECT an.entity_id, 1 - (an.embedding <=> %s) AS score
		    FROM   attribute_nodes an
		    WHERE  an.embedding IS NOT NULL
		    ORDER  BY an.embedding <=> %s
		    LIMIT  %s
		)
		SELECT c.entity_id, c.score
		FROM   candidates c
		WHERE  c.score >= %s AND (%s)
		ORDER  BY c.score DESC
		LIMIT  %s`, vecArg, vecArg, overFetchArg, thresholdArg, entityCond, limitArg)

	return SQLStream[SemanticSearchResult]{
		Pool:    pool,
		SQL:     q,
		Args:    binder.Args(),
		Scanner: scanSemanticResult,
	}
}

// SearchWithTraversals performs k-NN, applies the threshold, then applies
// chained entity filters (multi-hop, via filter.TraverseRelation) over the
// surviving candidates — the same over-fetch-then-filter shape as
// SearchFromRestrictions, but filter is expected to carry one or more
// TraverseRelation hops.
func SearchWithTraversals(pool *pgxpool.Pool, embedding []float32, filter querybuilder.EntityFilter, opts SemanticSearchOptions) QueryStream[SemanticSearchResult] {
	return SearchFromRestrictions(pool, embedding, filter, opts)
}
