package kg

// OpKind discriminates the four mutation buckets process_ops groups edit
// payloads into (§4.5).
type OpKind string

const (
	OpSetTriple      OpKind = "SetTriple"
	OpDeleteTriple   OpKind = "DeleteTriple"
	OpCreateRelation OpKind = "CreateRelation"
	OpDeleteRelation OpKind = "DeleteRelation"
)

// Op is a single graph mutation decoded from an edit payload. Exactly one
// of the Triple-shaped or Relation-shaped fields is populated, selected by
// Kind. EntityID is the op's grouping key for process_ops: for triple ops
// it is the triple's subject; for relation ops it is the relation's
// FromEntity.
type Op struct {
	Kind     OpKind
	EntityID EntityID

	// Triple-shaped fields (OpSetTriple, OpDeleteTriple).
	AttributeID EntityID
	Value       Value

	// Relation-shaped fields (OpCreateRelation, OpDeleteRelation).
	RelationID         EntityID
	ToEntity           EntityID
	RelationTypeEntity EntityID
	RelationIndex      string
}

// GroupOpsByEntity buckets ops by their grouping entity id while preserving
// per-entity op order, matching process_ops's "one batched write per bucket
// per entity, preserving per-entity order" contract (§4.5, Design Note
// "Ops ordering").
func GroupOpsByEntity(ops []Op) map[EntityID][]Op {
	grouped := make(map[EntityID][]Op)
	for _, op := range ops {
		grouped[op.EntityID] = append(grouped[op.EntityID], op)
	}
	return grouped
}

// SplitByKind partitions a per-entity op slice into the four process_ops
// buckets, preserving within-bucket order.
func SplitByKind(ops []Op) (setTriples, deleteTriples, createRelations, deleteRelations []Op) {
	for _, op := range ops {
		switch op.Kind {
		case OpSetTriple:
			setTriples = append(setTriples, op)
		case OpDeleteTriple:
			deleteTriples = append(deleteTriples, op)
		case OpCreateRelation:
			createRelations = append(createRelations, op)
		case OpDeleteRelation:
			deleteRelations = append(deleteRelations, op)
		}
	}
	return
}
