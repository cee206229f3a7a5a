// Package attrs provides a generic runtime-reflection fallback for
// converting between typed Go records and the attribute-bag representation
// the knowledge graph stores triples in.
//
// Hand-mapped conversions (as in pkg/kg's Space/Proposal types) remain the
// default for hot paths and for types with non-trivial conversion logic.
// This package
// exists for call sites — ad-hoc query projections, test fixtures — that
// want struct-tag-driven mapping without writing IntoAttributes/
// FromAttributes by hand, the same tradeoff encoding/json makes for the
// standard library's own marshaling problem.
package attrs

import (
	"fmt"
	"reflect"

	"github.com/kgraph/sink/pkg/kg"
)

// Tag is the struct tag key this package reads: `attr:"attribute-id"`.
// A field tagged `attr:"-"` is skipped. An `attr:",optional"` suffix marks
// a field as optional — conversion does not fail when the attribute is
// absent and the field is left at its zero value (or nil, for pointers).
const Tag = "attr"

// IntoAttributes converts v (a struct or pointer to struct) into an
// attribute bag keyed by the `attr` struct tags on its fields.
func IntoAttributes(v any) (map[kg.EntityID]kg.Value, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("attrs: IntoAttributes: %T is not a struct", v)
	}

	bag := make(map[kg.EntityID]kg.Value)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		attrID, optional, ok := parseTag(field)
		if !ok {
			continue
		}

		fv := rv.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				if optional {
					continue
				}
				return nil, &kg.TriplesConversionError{Field: field.Name, AttributeID: attrID, Reason: "required field is nil"}
			}
			fv = fv.Elem()
		}

		bag[attrID] = kg.NewTextValue(fmt.Sprint(fv.Interface()))
	}
	return bag, nil
}

// FromAttributes populates the struct pointed to by dst from bag, using the
// same `attr` struct tags IntoAttributes reads. Required (non-optional)
// fields whose attribute is missing from bag produce a
// *kg.TriplesConversionError.
func FromAttributes(dst any, bag map[kg.EntityID]kg.Value) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("attrs: FromAttributes: dst must be a non-nil pointer, got %T", dst)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("attrs: FromAttributes: dst must point to a struct, got %T", dst)
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		attrID, optional, ok := parseTag(field)
		if !ok {
			continue
		}

		val, present := bag[attrID]
		fv := rv.Field(i)

		if !present {
			if optional {
				continue
			}
			return &kg.TriplesConversionError{Field: field.Name, AttributeID: attrID, Reason: "required attribute missing"}
		}

		if fv.Kind() == reflect.Pointer {
			elem := reflect.New(fv.Type().Elem())
			if err := setScalar(elem.Elem(), val.Raw); err != nil {
				return &kg.TriplesConversionError{Field: field.Name, AttributeID: attrID, Reason: err.Error()}
			}
			fv.Set(elem)
			continue
		}

		if err := setScalar(fv, val.Raw); err != nil {
			return &kg.TriplesConversionError{Field: field.Name, AttributeID: attrID, Reason: err.Error()}
		}
	}
	return nil
}

// parseTag extracts the attribute id and optional flag from a struct
// field's `attr` tag. ok is false when the field has no tag or is
// explicitly excluded with `attr:"-"`.
func parseTag(field reflect.StructField) (id kg.EntityID, optional bool, ok bool) {
	tag, present := field.Tag.Lookup(Tag)
	if !present || tag == "-" {
		return "", false, false
	}
	name := tag
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			name = tag[:i]
			if tag[i:] == ",optional" {
				optional = true
			}
			break
		}
	}
	if name == "" {
		return "", false, false
	}
	return kg.EntityID(name), optional, true
}

// setScalar assigns raw into dst according to dst's kind, covering the
// scalar kinds attribute values commonly round-trip through.
func setScalar(dst reflect.Value, raw string) error {
	switch dst.Kind() {
	case reflect.String:
		dst.SetString(raw)
		return nil
	case reflect.Bool:
		dst.SetBool(raw == "true")
		return nil
	default:
		return fmt.Errorf("unsupported field kind %s for attribute value", dst.Kind())
	}
}
