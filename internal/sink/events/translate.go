package events

import "github.com/kgraph/sink/pkg/kg"

// relationPattern accumulates the triples an edit sets on a candidate
// relation entity: RELATION_FROM_ENTITY, RELATION_TO_ENTITY, RELATION_TYPE,
// and the optional RELATION_INDEX. A triple group only counts as a relation
// once from/to/type are all present.
type relationPattern struct {
	from, to, relType       kg.EntityID
	index                   string
	hasFrom, hasTo, hasType bool
	isDelete                bool
	ops                     []kg.Op
}

func (p relationPattern) complete() bool { return p.hasFrom && p.hasTo && p.hasType }

// BuildRelationOps translates the flat op list a wire-decoded edit produces
// into the op vocabulary process_ops applies: triples that merely describe
// a relation (the RELATION_FROM_ENTITY/RELATION_TO_ENTITY/RELATION_TYPE/
// RELATION_INDEX pattern sharing one entity id) are consumed and replaced by
// a single OpCreateRelation or OpDeleteRelation; every other triple passes
// through unchanged. A pattern group missing from, to or type is not a
// relation, and its triples pass through unchanged after the other ops.
func BuildRelationOps(ops []kg.Op) []kg.Op {
	patterns := make(map[kg.EntityID]*relationPattern)
	order := make([]kg.EntityID, 0)

	out := make([]kg.Op, 0, len(ops))
	for _, op := range ops {
		if op.Kind != kg.OpSetTriple && op.Kind != kg.OpDeleteTriple {
			out = append(out, op)
			continue
		}

		p, matched := patterns[op.EntityID]
		switch op.AttributeID {
		case kg.AttrRelationFromEntity, kg.AttrRelationToEntity, kg.AttrRelationType, kg.AttrRelationIndex:
			if !matched {
				p = &relationPattern{}
				patterns[op.EntityID] = p
				order = append(order, op.EntityID)
			}
			p.isDelete = op.Kind == kg.OpDeleteTriple
			p.ops = append(p.ops, op)
			switch op.AttributeID {
			case kg.AttrRelationFromEntity:
				p.from, p.hasFrom = kg.EntityID(op.Value.Raw), true
			case kg.AttrRelationToEntity:
				p.to, p.hasTo = kg.EntityID(op.Value.Raw), true
			case kg.AttrRelationType:
				p.relType, p.hasType = kg.EntityID(op.Value.Raw), true
			case kg.AttrRelationIndex:
				p.index = op.Value.Raw
			}
		default:
			out = append(out, op)
		}
	}

	for _, entityID := range order {
		p := patterns[entityID]
		if !p.complete() {
			out = append(out, p.ops...)
			continue
		}
		relOp := kg.Op{
			EntityID:           p.from,
			RelationID:         entityID,
			ToEntity:           p.to,
			RelationTypeEntity: p.relType,
			RelationIndex:      p.index,
		}
		if p.isDelete {
			relOp.Kind = kg.OpDeleteRelation
		} else {
			relOp.Kind = kg.OpCreateRelation
		}
		out = append(out, relOp)
	}

	return out
}
