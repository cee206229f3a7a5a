package querybuilder

import "fmt"

// EntityFilter composes an id filter, property filters, a must-have-all/
// must-have-none types filter, and an optional outgoing relation
// constraint (§4.1). TraverseRelation lets a caller chain through a
// relation to filter on the entity at the far end (multi-hop matching),
// used by pkg/query's SearchWithTraversals shape.
type EntityFilter struct {
	ID    ValueFilter[string]
	Props []PropertyFilter

	TypesAllOf  []string
	TypesNoneOf []string

	OutgoingRelation *RelationFilter

	// TraverseRelation, when set, requires a relation matching it to exist
	// from this entity, and further requires TraverseRelation.ToEntity (if
	// set) to match the entity at the far end — the "chained entity
	// filters (multi-hop)" SearchWithTraversals applies (§4.3).
	TraverseRelation *RelationFilter
}

// Compile returns the SQL condition fragment testing entityColumn against
// f, plus any parameters bound along the way.
func (f EntityFilter) Compile(entityColumn string, p *ParamBinder) string {
	var conditions []string

	if idCond := f.ID.Compile(entityColumn, p); idCond != "" {
		conditions = append(conditions, idCond)
	}
	for _, pf := range f.Props {
		conditions = append(conditions, pf.Compile(entityColumn, p))
	}
	for _, t := range f.TypesAllOf {
		alias := newAlias("tf")
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM entity_types %s WHERE %s.entity_id = %s AND %s.type_id = %s)",
			alias, alias, entityColumn, alias, p.Bind(t)))
	}
	for _, t := range f.TypesNoneOf {
		alias := newAlias("tf")
		conditions = append(conditions, fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM entity_types %s WHERE %s.entity_id = %s AND %s.type_id = %s)",
			alias, alias, entityColumn, alias, p.Bind(t)))
	}
	if f.OutgoingRelation != nil {
		conditions = append(conditions, f.OutgoingRelation.CompileFrom(entityColumn, p))
	}
	if f.TraverseRelation != nil {
		conditions = append(conditions, f.TraverseRelation.CompileFrom(entityColumn, p))
	}

	return joinAnd(conditions)
}
