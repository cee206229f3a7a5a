package kg

// Generic system attribute/type ids that don't belong to any single domain
// file (space.go, governance.go): the catalogue entities internal/bootstrap
// compiles reference these directly.
const (
	AttrName      EntityID = "system:attribute:name"
	AttrValueType EntityID = "system:attribute:value-type"
)

const (
	TypeType      EntityID = "system:type:type"
	TypeAttribute EntityID = "system:type:attribute"
	TypeNetwork   EntityID = "system:type:network"
)

// Attribute ids forming the relation pattern a wire-decoded edit uses to
// describe a relation, in lieu of a dedicated CreateRelation op type: a
// SetTriple on all three of AttrRelationFromEntity/ToEntity/Type sharing one
// entity id describes a relation from that entity's perspective.
// internal/sink/events.BuildRelationOps groups such triples into a single
// OpCreateRelation/OpDeleteRelation.
const (
	AttrRelationFromEntity EntityID = "system:attribute:relation-from-entity"
	AttrRelationToEntity   EntityID = "system:attribute:relation-to-entity"
	AttrRelationType       EntityID = "system:attribute:relation-type"
	AttrRelationIndex      EntityID = "system:attribute:relation-index"
)

// The bootstrap migration gate and the block-stream cursor are both
// persisted as ordinary triples on a single well-known entity, rather than
// through a bespoke side table: CursorEntityID is the entity, scoped to
// IndexerSpaceID (the indexer's own bookkeeping space, distinct from any
// on-chain space), carrying a live VersionAttribute triple (the sentinel
// migration gate compares against the compiled-in version tag) and a live
// CursorValueAttribute triple (the last persisted block-stream cursor).
// Reading and writing both goes through the exact same Store.SetAttribute/
// live-triple path every other piece of graph state uses.
const (
	CursorEntityID EntityID = "system:entity:cursor"
	IndexerSpaceID EntityID = "system:space:indexer"

	VersionAttribute     EntityID = "system:attribute:sentinel-version"
	CursorValueAttribute EntityID = "system:attribute:block-cursor"
)
