package bootstrap

import (
	"github.com/kgraph/sink/pkg/ids"
	"github.com/kgraph/sink/pkg/kg"
)

// Compile translates a validated Catalogue into the same SetTriple/
// CreateRelation op vocabulary live edits use, so bootstrap data flows
// through process_ops' ApplyOps exactly like any other edit (§4.6). The
// caller is responsible for calling Validate first; Compile does not
// re-validate.
func Compile(cat *Catalogue) []kg.Op {
	var ops []kg.Op

	for _, t := range cat.Types {
		ops = append(ops, kg.Op{
			Kind:        kg.OpSetTriple,
			EntityID:    t.ID,
			AttributeID: kg.AttrName,
			Value:       kg.NewTextValue(t.Name),
		})
		ops = append(ops, relationOp(t.ID, kg.RelationTypes, kg.TypeType, ids.FirstIndex()))
	}

	for _, a := range cat.Attributes {
		ops = append(ops, kg.Op{
			Kind:        kg.OpSetTriple,
			EntityID:    a.ID,
			AttributeID: kg.AttrName,
			Value:       kg.NewTextValue(a.Name),
		})
		ops = append(ops, kg.Op{
			Kind:        kg.OpSetTriple,
			EntityID:    a.ID,
			AttributeID: kg.AttrValueType,
			Value:       kg.NewTextValue(string(a.ValueType)),
		})
		if a.Direction != "" {
			ops = append(ops, kg.Op{
				Kind:        kg.OpSetTriple,
				EntityID:    a.ID,
				AttributeID: kg.AttrAggregationDirection,
				Value:       kg.NewTextValue(a.Direction),
			})
		}
		ops = append(ops, relationOp(a.ID, kg.RelationTypes, kg.TypeAttribute, ids.FirstIndex()))
	}

	for _, s := range cat.Schemas {
		index := ids.FirstIndex()
		for _, prop := range s.Properties {
			ops = append(ops, relationOp(s.TypeID, kg.RelationProperties, prop, index))
			index = ids.IndexBetween(index, "")
		}
	}

	for _, seed := range cat.Seeds {
		index := ids.FirstIndex()
		for _, typeID := range seed.Types {
			ops = append(ops, relationOp(seed.ID, kg.RelationTypes, typeID, index))
			index = ids.IndexBetween(index, "")
		}
		for attr, raw := range seed.Attributes {
			ops = append(ops, kg.Op{
				Kind:        kg.OpSetTriple,
				EntityID:    seed.ID,
				AttributeID: attr,
				Value:       kg.NewTextValue(raw),
			})
		}
	}

	return ops
}

// relationOp builds a synthetic CreateRelation op. RelationID is derived
// deterministically from its endpoints and type so re-running Compile
// against an already-bootstrapped store is idempotent (CreateRelation is
// idempotent by RelationID, per the Store contract).
func relationOp(from, relationType, to kg.EntityID, index string) kg.Op {
	return kg.Op{
		Kind:               kg.OpCreateRelation,
		EntityID:           from,
		RelationID:         kg.EntityID(string(from) + "|" + string(relationType) + "|" + string(to)),
		ToEntity:           to,
		RelationTypeEntity: relationType,
		RelationIndex:      index,
	}
}
