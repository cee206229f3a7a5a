package bootstrap

import (
	"errors"
	"fmt"

	"github.com/kgraph/sink/pkg/inherit"
	"github.com/kgraph/sink/pkg/kg"
)

// Validate checks a Catalogue for required fields, valid value types, and
// dangling references between its sections, accumulating every problem
// found and returning them joined rather than failing fast.
func Validate(cat *Catalogue) error {
	var errs []error

	typeIDs := make(map[kg.EntityID]bool, len(cat.Types))
	for i, t := range cat.Types {
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("types[%d]: id must not be empty", i))
			continue
		}
		if typeIDs[t.ID] {
			errs = append(errs, fmt.Errorf("types[%d]: duplicate type id %q", i, t.ID))
		}
		typeIDs[t.ID] = true
	}

	attrIDs := make(map[kg.EntityID]bool, len(cat.Attributes))
	for i, a := range cat.Attributes {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("attributes[%d]: id must not be empty", i))
			continue
		}
		if attrIDs[a.ID] {
			errs = append(errs, fmt.Errorf("attributes[%d]: duplicate attribute id %q", i, a.ID))
		}
		attrIDs[a.ID] = true
		if !a.ValueType.IsValid() {
			errs = append(errs, fmt.Errorf("attributes[%d] (%s): value_type %q is not recognised", i, a.ID, a.ValueType))
		}
		if a.Direction != "" {
			switch inherit.Direction(a.Direction) {
			case inherit.Up, inherit.Down, inherit.Bidirectional:
			default:
				errs = append(errs, fmt.Errorf("attributes[%d] (%s): direction %q is not recognised", i, a.ID, a.Direction))
			}
		}
	}

	for i, s := range cat.Schemas {
		if !typeIDs[s.TypeID] {
			errs = append(errs, fmt.Errorf("schemas[%d]: type_id %q is not declared in types", i, s.TypeID))
		}
		for _, p := range s.Properties {
			if !attrIDs[p] {
				errs = append(errs, fmt.Errorf("schemas[%d] (%s): property %q is not declared in attributes", i, s.TypeID, p))
			}
		}
	}

	for i, seed := range cat.Seeds {
		if seed.ID == "" {
			errs = append(errs, fmt.Errorf("seeds[%d]: id must not be empty", i))
			continue
		}
		for _, t := range seed.Types {
			if !typeIDs[t] {
				errs = append(errs, fmt.Errorf("seeds[%d] (%s): type %q is not declared in types", i, seed.ID, t))
			}
		}
		for attr := range seed.Attributes {
			if !attrIDs[attr] {
				errs = append(errs, fmt.Errorf("seeds[%d] (%s): attribute %q is not declared in attributes", i, seed.ID, attr))
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
