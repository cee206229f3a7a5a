package querybuilder

import "fmt"

// PropertyFilter attaches a ValueFilter to a named attribute, optionally
// constrained by space and version (§4.1). It compiles to an EXISTS
// subquery over the triples table rather than a literal Cypher
// MATCH/ATTRIBUTE traversal, since the backing store is PostgreSQL
// (pkg/kg/postgres) rather than a native property graph — the compiled
// shape is equivalent: one row must exist linking the outer entity to a
// triple satisfying the attribute id, value, space, and version
// constraints.
type PropertyFilter struct {
	AttributeID string
	Value       ValueFilter[string]
	SpaceID     string // empty means "any space"
	Version     VersionFilter
}

// Compile returns the EXISTS(...) fragment testing entityColumn (e.g.
// "e.id") against this property filter.
func (f PropertyFilter) Compile(entityColumn string, p *ParamBinder) string {
	alias := newAlias("pf")
	conditions := []string{
		fmt.Sprintf("%s.entity_id = %s", alias, entityColumn),
		fmt.Sprintf("%s.attribute_id = %s", alias, p.Bind(f.AttributeID)),
	}
	if f.SpaceID != "" {
		conditions = append(conditions, fmt.Sprintf("%s.space_id = %s", alias, p.Bind(f.SpaceID)))
	}
	if v := f.Version.Compile(alias, p); v != "" {
		conditions = append(conditions, v)
	}
	if v := f.Value.Compile(alias+".value_raw", p); v != "" {
		conditions = append(conditions, v)
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM triples %s WHERE %s)", alias, joinAnd(conditions))
}
