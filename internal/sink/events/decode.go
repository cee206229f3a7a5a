package events

import (
	"github.com/kgraph/sink/pkg/kg"
	"github.com/kgraph/sink/pkg/wire"
)

// valueFromWire converts a decoded wire.Value into the kg.Value
// representation, preserving the unit/language formatting hints wire
// carries alongside Number/Text values.
func valueFromWire(v *wire.Value) kg.Value {
	if v == nil {
		return kg.Value{}
	}

	opts := kg.ValueOptions{}
	if v.TextOptions != nil {
		opts.Language = v.TextOptions.Language
	}
	if v.NumberOptions != nil {
		opts.Unit = v.NumberOptions.Unit
	}

	var kind kg.ValueType
	switch v.Type {
	case wire.ValueTypeNumber:
		kind = kg.ValueTypeNumber
	case wire.ValueTypeURI:
		kind = kg.ValueTypeURL
	case wire.ValueTypeCheckbox:
		kind = kg.ValueTypeCheckbox
	case wire.ValueTypeTime:
		kind = kg.ValueTypeTime
	case wire.ValueTypeGeoLocation:
		kind = kg.ValueTypePoint
	case wire.ValueTypeEntity:
		// An Entity-typed value carries another entity's id as its raw
		// string; it has no kg.ValueType of its own because the mapping
		// layer treats entity-valued facts as relations, not triples (see
		// BuildRelationOps). Callers never read a bare OpSetTriple carrying
		// this kind; it exists only so the switch stays exhaustive.
		kind = kg.ValueTypeText
	default:
		kind = kg.ValueTypeText
	}

	return kg.Value{Raw: v.Value, Type: kind, Options: opts}
}

// opsFromEdit converts every triple op a decoded wire.Edit carries into a
// kg.Op. The relation pattern among these (AttrRelationFromEntity/ToEntity/
// Type triples sharing an entity id) is not resolved here: BuildRelationOps
// runs as a second pass over the returned slice.
func opsFromEdit(edit *wire.Edit) []kg.Op {
	ops := make([]kg.Op, 0, len(edit.Ops))
	for _, op := range edit.Ops {
		if op == nil || op.Triple == nil {
			continue
		}
		switch op.Type {
		case wire.OpTypeSetTriple:
			ops = append(ops, kg.Op{
				Kind:        kg.OpSetTriple,
				EntityID:    kg.EntityID(op.Triple.Entity),
				AttributeID: kg.EntityID(op.Triple.Attribute),
				Value:       valueFromWire(op.Triple.Value),
			})
		case wire.OpTypeDeleteTriple:
			ops = append(ops, kg.Op{
				Kind:        kg.OpDeleteTriple,
				EntityID:    kg.EntityID(op.Triple.Entity),
				AttributeID: kg.EntityID(op.Triple.Attribute),
			})
		}
	}
	return ops
}
