package querybuilder

import "fmt"

// VersionFilter selects the bi-temporal window a triple or relation must be
// live in: either "live only" (max_version IS NULL) or "as of version V"
// (min_version <= V AND (max_version IS NULL OR max_version > V)), per
// §4.1.
type VersionFilter struct {
	LiveOnly bool
	AsOf     string // only read when LiveOnly is false
}

// Live returns a VersionFilter matching only currently-live rows.
func Live() VersionFilter {
	return VersionFilter{LiveOnly: true}
}

// AsOfVersion returns a VersionFilter matching rows live at version v.
func AsOfVersion(v string) VersionFilter {
	return VersionFilter{AsOf: v}
}

// Compile returns the SQL condition fragment for a table alias's
// min_version/max_version columns.
func (f VersionFilter) Compile(alias string, p *ParamBinder) string {
	if f.LiveOnly {
		return alias + ".max_version IS NULL"
	}
	arg := p.Bind(f.AsOf)
	return fmt.Sprintf("%s.min_version <= %s AND (%s.max_version IS NULL OR %s.max_version > %s)", alias, arg, alias, alias, arg)
}
