package querybuilder

import "fmt"

// SortDirection is the trailing ORDER BY direction.
type SortDirection string

const (
	Ascending  SortDirection = "ASC"
	Descending SortDirection = "DESC"
)

// OrderBy names a trailing sort column and direction.
type OrderBy struct {
	Column    string
	Direction SortDirection
}

// WhereClause is an ordered list of predicate fragments. The first is
// emitted with WHERE, subsequent ones with AND, matching §4.1's WhereClause
// contract. Fragments are expected to already be fully compiled (i.e.
// produced by a Filter's Compile method), so WhereClause itself does no
// parameter binding.
type WhereClause struct {
	conditions []string
}

// Add appends a non-empty condition fragment.
func (w *WhereClause) Add(condition string) {
	if condition == "" {
		return
	}
	w.conditions = append(w.conditions, condition)
}

// SQL renders the clause, including the leading WHERE keyword, or "" if
// empty.
func (w WhereClause) SQL() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return "WHERE " + joinAnd(w.conditions)
}

// Return describes the trailing clauses shared by most compiled queries:
// ordering, pagination, and the projected columns.
type Return struct {
	Columns []string
	OrderBy []OrderBy
	Skip    int
	Limit   int
}

// SQL renders the ORDER BY/LIMIT/OFFSET tail. Limit == 0 means "unbounded":
// no LIMIT clause is emitted, and pkg/query does not turn a zero limit into
// an empty result either.
func (r Return) SQL() string {
	sql := ""
	if len(r.OrderBy) > 0 {
		sql += " ORDER BY "
		for i, o := range r.OrderBy {
			if i > 0 {
				sql += ", "
			}
			sql += fmt.Sprintf("%s %s", o.Column, o.Direction)
		}
	}
	if r.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", r.Limit)
	}
	if r.Skip > 0 {
		sql += fmt.Sprintf(" OFFSET %d", r.Skip)
	}
	return sql
}
