package querybuilder

import "fmt"

// ValueFilter is the canonical leaf predicate (§4.1): equality, inequality,
// ordered comparison, membership, and existence, against a single SQL
// column. Exists is only applied when no value-predicate is set, per the
// spec's "exists(true/false) — only applied when no value-predicate set"
// rule.
type ValueFilter[T any] struct {
	Value      *T
	ValueNot   *T
	ValueGT    *T
	ValueGTE   *T
	ValueLT    *T
	ValueLTE   *T
	ValueIn    []T
	ValueNotIn []T
	Exists     *bool
}

// IsZero reports whether f carries no predicate at all.
func (f ValueFilter[T]) IsZero() bool {
	return f.Value == nil && f.ValueNot == nil && f.ValueGT == nil && f.ValueGTE == nil &&
		f.ValueLT == nil && f.ValueLTE == nil && len(f.ValueIn) == 0 && len(f.ValueNotIn) == 0 && f.Exists == nil
}

// Compile returns the SQL condition fragment for column, binding any
// literals through p. Returns "" when f is zero (no filter to apply).
func (f ValueFilter[T]) Compile(column string, p *ParamBinder) string {
	var hasValuePredicate bool
	var conditions []string

	add := func(cond string) {
		conditions = append(conditions, cond)
		hasValuePredicate = true
	}

	if f.Value != nil {
		add(fmt.Sprintf("%s = %s", column, p.Bind(*f.Value)))
	}
	if f.ValueNot != nil {
		add(fmt.Sprintf("%s != %s", column, p.Bind(*f.ValueNot)))
	}
	if f.ValueGT != nil {
		add(fmt.Sprintf("%s > %s", column, p.Bind(*f.ValueGT)))
	}
	if f.ValueGTE != nil {
		add(fmt.Sprintf("%s >= %s", column, p.Bind(*f.ValueGTE)))
	}
	if f.ValueLT != nil {
		add(fmt.Sprintf("%s < %s", column, p.Bind(*f.ValueLT)))
	}
	if f.ValueLTE != nil {
		add(fmt.Sprintf("%s <= %s", column, p.Bind(*f.ValueLTE)))
	}
	if len(f.ValueIn) > 0 {
		add(fmt.Sprintf("%s = ANY(%s)", column, p.Bind(f.ValueIn)))
	}
	if len(f.ValueNotIn) > 0 {
		add(fmt.Sprintf("NOT (%s = ANY(%s))", column, p.Bind(f.ValueNotIn)))
	}

	if hasValuePredicate {
		return joinAnd(conditions)
	}
	if f.Exists != nil {
		if *f.Exists {
			return column + " IS NOT NULL"
		}
		return column + " IS NULL"
	}
	return ""
}

func joinAnd(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	out := conditions[0]
	for _, c := range conditions[1:] {
		out += " AND " + c
	}
	return out
}
