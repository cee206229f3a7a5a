package kg

// Structural relation types with dedicated semantics in the mapping layer.
// These are entity ids from the bootstrap system-id catalogue, re-declared
// here as typed constants for compile-time reference from handlers and
// queries (see internal/bootstrap for their catalogue definitions).
const (
	RelationTypes            EntityID = "system:relation-type:types"
	RelationProperties       EntityID = "system:relation-type:properties"
	RelationParentSpace      EntityID = "system:relation-type:parent-space"
	RelationProposedAccount  EntityID = "system:relation-type:proposed-account"
	RelationProposedSubspace EntityID = "system:relation-type:proposed-subspace"
	RelationEditor           EntityID = "system:relation-type:editor"
	RelationMember           EntityID = "system:relation-type:member"

	// RelationDAOIndex links a DAO-address index entity (pkg/ids.DAOIndexID)
	// to the space it governs. Maintained by internal/sink/events so later
	// events, which carry only a DAO address and not the network, can find
	// the space handle_space_created derived from (network, dao_address).
	RelationDAOIndex EntityID = "system:relation-type:dao-index"
)

// Relation is a first-class labelled edge: it has its own id and may carry
// attribute triples (Relation.ID is used as the subject entity id for such
// triples). Relations participate in the same versioning scheme as
// triples.
type Relation struct {
	ID                 EntityID
	FromEntity         EntityID
	ToEntity           EntityID
	RelationTypeEntity EntityID

	// Index is a lexicographic fractional key ordering this relation among
	// siblings sharing (FromEntity, RelationTypeEntity). See pkg/ids for
	// fractional-index generation.
	Index string

	SpaceID    EntityID
	MinVersion Version
	MaxVersion *Version

	Props SystemProperties
}

// IsLive reports whether r has not been closed.
func (r Relation) IsLive() bool {
	return r.MaxVersion == nil
}

// LiveAt reports whether r is live in the given version window.
func (r Relation) LiveAt(v Version) bool {
	if r.MinVersion > v {
		return false
	}
	if r.MaxVersion == nil {
		return true
	}
	return *r.MaxVersion > v
}

// Close returns a copy of r closed at closeAt. A no-op if already closed.
func (r Relation) Close(closeAt Version) Relation {
	if r.MaxVersion != nil {
		return r
	}
	v := closeAt
	r.MaxVersion = &v
	return r
}
