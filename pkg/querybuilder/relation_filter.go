package querybuilder

import "fmt"

// RelationFilter selects relations by id, type, endpoints, space, and
// version (§4.1).
type RelationFilter struct {
	ID           ValueFilter[string]
	RelationType *EntityFilter // matched against relation_type
	FromEntity   *EntityFilter
	ToEntity     *EntityFilter
	SpaceID      string
	Version      VersionFilter
}

// CompileFrom returns an EXISTS(...) fragment requiring a relation matching
// f to exist with from_entity = fromColumn.
func (f RelationFilter) CompileFrom(fromColumn string, p *ParamBinder) string {
	alias := newAlias("rf")
	conditions := []string{fmt.Sprintf("%s.from_entity = %s", alias, fromColumn)}
	conditions = append(conditions, f.compileCommon(alias, p)...)
	return fmt.Sprintf("EXISTS (SELECT 1 FROM relations %s WHERE %s)", alias, joinAnd(conditions))
}

// CompileTo mirrors CompileFrom for the inbound direction.
func (f RelationFilter) CompileTo(toColumn string, p *ParamBinder) string {
	alias := newAlias("rf")
	conditions := []string{fmt.Sprintf("%s.to_entity = %s", alias, toColumn)}
	conditions = append(conditions, f.compileCommon(alias, p)...)
	return fmt.Sprintf("EXISTS (SELECT 1 FROM relations %s WHERE %s)", alias, joinAnd(conditions))
}

func (f RelationFilter) compileCommon(alias string, p *ParamBinder) []string {
	var conditions []string
	if idCond := f.ID.Compile(alias+".id", p); idCond != "" {
		conditions = append(conditions, idCond)
	}
	if f.SpaceID != "" {
		conditions = append(conditions, fmt.Sprintf("%s.space_id = %s", alias, p.Bind(f.SpaceID)))
	}
	if v := f.Version.Compile(alias, p); v != "" {
		conditions = append(conditions, v)
	}
	if f.RelationType != nil {
		if t := f.RelationType.Compile(alias+".relation_type", p); t != "" {
			conditions = append(conditions, t)
		}
	}
	if f.FromEntity != nil {
		if t := f.FromEntity.Compile(alias+".from_entity", p); t != "" {
			conditions = append(conditions, t)
		}
	}
	if f.ToEntity != nil {
		if t := f.ToEntity.Compile(alias+".to_entity", p); t != "" {
			conditions = append(conditions, t)
		}
	}
	return conditions
}
