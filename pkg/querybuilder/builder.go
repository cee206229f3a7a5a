// Package querybuilder composes parameterized graph queries from filter and
// ordering primitives (§4.1) and compiles them to parameterized SQL against
// the tables pkg/kg/postgres defines. It has no pgx dependency of its own —
// pkg/query executes the (sql, args) pairs this package produces.
package querybuilder

import "fmt"

// MatchQuery compiles an EntityFilter plus a trailing Return clause into a
// SQL statement selecting entity ids, following the fluent-assembly style
// §9 Design Notes calls for in place of hand-rolled string concatenation.
type MatchQuery struct {
	Filter  EntityFilter
	Return  Return
	alias   string
	binder  *ParamBinder
}

// NewMatchQuery starts a builder over the entities table, with "e" as the
// outer entity row's SQL alias.
func NewMatchQuery(filter EntityFilter, ret Return) *MatchQuery {
	return &MatchQuery{Filter: filter, Return: ret, alias: "e", binder: NewParamBinder()}
}

// Compile renders the full SQL statement and its parameter slice. Columns
// default to "id" when Return.Columns is empty.
func (q *MatchQuery) Compile() (string, []any) {
	columns := q.Return.Columns
	if len(columns) == 0 {
		columns = []string{q.alias + ".id"}
	}

	var where WhereClause
	where.Add(q.Filter.Compile(q.alias+".id", q.binder))

	sql := fmt.Sprintf("SELECT %s FROM entities %s %s%s", joinColumns(columns), q.alias, where.SQL(), q.Return.SQL())
	return sql, q.binder.Args()
}

func joinColumns(cols []string) string {
	out := cols[0]
	for _, c := range cols[1:] {
		out += ", " + c
	}
	return out
}

// RelationMatchQuery compiles a RelationFilter into a SQL statement
// selecting relation rows, for reads that need filters beyond the plain
// RelationQueryOpt functional options. pkg/query's FindManyRelationsQuery
// and FindManyToQuery use it; the Inheritance Resolver's space-set reads go
// through kg.WithSpaceIDs instead.
type RelationMatchQuery struct {
	Filter RelationFilter
	Return Return
	binder *ParamBinder
}

// NewRelationMatchQuery starts a builder over the relations table.
func NewRelationMatchQuery(filter RelationFilter, ret Return) *RelationMatchQuery {
	return &RelationMatchQuery{Filter: filter, Return: ret, binder: NewParamBinder()}
}

const relationMatchColumns = "r.id, r.from_entity, r.to_entity, r.relation_type, r.index_key, r.space_id, r.min_version, r.max_version, r.created_at, r.created_at_block, r.updated_at, r.updated_at_block"

// Compile renders the full SQL statement and its parameter slice.
func (q *RelationMatchQuery) Compile() (string, []any) {
	var where WhereClause
	where.Add(q.Filter.compileAlias("r", q.binder))

	columns := q.Return.Columns
	if len(columns) == 0 {
		columns = []string{relationMatchColumns}
	}
	sql := fmt.Sprintf("SELECT %s FROM relations r %s%s", joinColumns(columns), where.SQL(), q.Return.SQL())
	return sql, q.binder.Args()
}

// compileAlias is RelationFilter.compileCommon exposed for a top-level
// (non-EXISTS-wrapped) query, where the relation row itself is the outer
// row rather than a correlated subquery.
func (f RelationFilter) compileAlias(alias string, p *ParamBinder) string {
	return joinAnd(f.compileCommon(alias, p))
}
