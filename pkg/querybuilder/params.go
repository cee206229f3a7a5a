package querybuilder

import "fmt"

// ParamBinder accumulates query parameters and hands back the `$N`
// placeholder pgx expects, guaranteeing every placeholder emitted by a
// compiled query has a corresponding entry in Args (§9 Design Notes).
type ParamBinder struct {
	args []any
}

// NewParamBinder returns an empty binder.
func NewParamBinder() *ParamBinder {
	return &ParamBinder{}
}

// Bind appends v to the parameter list and returns its placeholder.
func (p *ParamBinder) Bind(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

// Args returns the accumulated parameter slice, in placeholder order.
func (p *ParamBinder) Args() []any {
	return p.args
}
