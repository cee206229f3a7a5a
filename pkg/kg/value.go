// Package kg defines the typed data model of the knowledge graph: values,
// entities, triples, relations, spaces, and governance records.
package kg

// ValueType enumerates the primitive value kinds a triple may carry.
// Numeric, boolean, and temporal values are stored as their string
// representation and parsed on demand by callers; comparisons made by the
// store itself are string-lexical unless the type says otherwise.
type ValueType string

const (
	ValueTypeText     ValueType = "Text"
	ValueTypeNumber   ValueType = "Number"
	ValueTypeCheckbox ValueType = "Checkbox"
	ValueTypeURL      ValueType = "Url"
	ValueTypeTime     ValueType = "Time"
	ValueTypePoint    ValueType = "Point"
)

// IsValid reports whether t is one of the known value types.
func (t ValueType) IsValid() bool {
	switch t {
	case ValueTypeText, ValueTypeNumber, ValueTypeCheckbox, ValueTypeURL, ValueTypeTime, ValueTypePoint:
		return true
	default:
		return false
	}
}

// ValueOptions carries type-specific formatting hints that travel alongside
// a Value without affecting its identity or comparisons.
type ValueOptions struct {
	// Format is a Number format hint (e.g. "currency", "percent").
	Format string `json:"format,omitempty"`

	// Unit is a Number unit hint (e.g. "USD", "km").
	Unit string `json:"unit,omitempty"`

	// Language is a Text/language hint as a BCP-47 tag.
	Language string `json:"language,omitempty"`
}

// Value is a primitive fact value: a raw string representation tagged with
// a type and optional formatting metadata. Time values are RFC-3339
// strings; Number/Checkbox values are their decimal/"true"/"false" string
// forms.
type Value struct {
	Raw     string       `json:"raw"`
	Type    ValueType    `json:"type"`
	Options ValueOptions `json:"options,omitempty"`
}

// NewTextValue builds a Text value with no options.
func NewTextValue(raw string) Value {
	return Value{Raw: raw, Type: ValueTypeText}
}

// NewNumberValue builds a Number value with an optional unit.
func NewNumberValue(raw, unit string) Value {
	return Value{Raw: raw, Type: ValueTypeNumber, Options: ValueOptions{Unit: unit}}
}

// Equal reports whether two values carry the same raw representation and
// type. Options are not considered part of value identity.
func (v Value) Equal(other Value) bool {
	return v.Raw == other.Raw && v.Type == other.Type
}
