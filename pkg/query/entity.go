package query

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kgraph/sink/pkg/kg"
	"github.com/kgraph/sink/pkg/querybuilder"
)

// FindManyQuery compiles filter through querybuilder.MatchQuery and streams
// matching entity ids (§4.2's find_many, builder of streaming results).
// Callers needing fully materialised entities resolve each id through
// kg.Store.FindOne; this package only owns compiled-query execution, not
// the typed attribute-bag reconstruction that belongs to the Mapping
// Layer.
func FindManyQuery(pool *pgxpool.Pool, filter querybuilder.EntityFilter, ret querybuilder.Return) QueryStream[kg.EntityID] {
	mq := querybuilder.NewMatchQuery(filter, ret)
	sql, args := mq.Compile()
	return SQLStream[kg.EntityID]{
		Pool: pool,
		SQL:  sql,
		Args: args,
		Scanner: func(row pgx.Rows) (kg.EntityID, error) {
			var id string
			err := row.Scan(&id)
			return kg.EntityID(id), err
		},
	}
}

// FindManyRelationsQuery compiles filter through
// querybuilder.RelationMatchQuery and streams matching relations.
func FindManyRelationsQuery(pool *pgxpool.Pool, filter querybuilder.RelationFilter, ret querybuilder.Return) QueryStream[kg.Relation] {
	rq := querybuilder.NewRelationMatchQuery(filter, ret)
	sql, args := rq.Compile()
	return SQLStream[kg.Relation]{
		Pool: pool,
		SQL:  sql,
		Args: args,
		Scanner: func(row pgx.Rows) (kg.Relation, error) {
			return scanRelationRow(row)
		},
	}
}

// FindManyToQuery streams the `to` entity id of every relation matching
// filter, fully resolving the relation-centric read §4.2 names
// find_many_to.
func FindManyToQuery(pool *pgxpool.Pool, filter querybuilder.RelationFilter, ret querybuilder.Return) QueryStream[kg.EntityID] {
	if len(ret.Columns) == 0 {
		ret.Columns = []string{"r.to_entity"}
	}
	rq := querybuilder.NewRelationMatchQuery(filter, ret)
	sql, args := rq.Compile()
	return SQLStream[kg.EntityID]{
		Pool: pool,
		SQL:  sql,
		Args: args,
		Scanner: func(row pgx.Rows) (kg.EntityID, error) {
			var id string
			err := row.Scan(&id)
			return kg.EntityID(id), err
		},
	}
}

func scanRelationRow(row pgx.Rows) (kg.Relation, error) {
	var (
		id, from, to, relType, indexKey, spaceID, minVersion string
		maxVersion                                           *string
		rel                                                  kg.Relation
	)
	if err := row.Scan(&id, &from, &to, &relType, &indexKey, &spaceID, &minVersion, &maxVersion,
		&rel.Props.CreatedAt, &rel.Props.CreatedAtBlock, &rel.Props.UpdatedAt, &rel.Props.UpdatedAtBlock); err != nil {
		return kg.Relation{}, err
	}
	rel.ID = kg.EntityID(id)
	rel.FromEntity = kg.EntityID(from)
	rel.ToEntity = kg.EntityID(to)
	rel.RelationTypeEntity = kg.EntityID(relType)
	rel.Index = indexKey
	rel.SpaceID = kg.EntityID(spaceID)
	rel.MinVersion = kg.Version(minVersion)
	if maxVersion != nil {
		v := kg.Version(*maxVersion)
		rel.MaxVersion = &v
	}
	return rel, nil
}
