package kg

// GovernanceType classifies a space's governance model.
type GovernanceType string

const (
	GovernancePublic   GovernanceType = "Public"
	GovernancePersonal GovernanceType = "Personal"
)

// Well-known attribute ids carried by Space entities. Declared here rather
// than in internal/bootstrap because handlers in internal/sink/events
// reference them directly when building SetTriple ops.
const (
	AttrNetwork                    EntityID = "system:attribute:network"
	AttrGovernanceType             EntityID = "system:attribute:governance-type"
	AttrDAOAddress                 EntityID = "system:attribute:dao-address"
	AttrSpacePluginAddress         EntityID = "system:attribute:space-plugin-address"
	AttrVotingPluginAddress        EntityID = "system:attribute:voting-plugin-address"
	AttrMemberAccessPluginAddress  EntityID = "system:attribute:member-access-plugin-address"
	AttrPersonalAdminPluginAddress EntityID = "system:attribute:personal-space-admin-plugin-address"
	AttrAggregationDirection       EntityID = "system:attribute:aggregation-direction"
)

// TypeSpace is the entity type id assigned to every Space entity.
const TypeSpace EntityID = "system:type:space"

// Space is the typed attribute bag for a Space entity (§3.4). Plugin
// addresses are independently-nullable: a space may exist with only
// Network/DAOAddress/GovernanceType populated and plugin addresses filled
// in later by separate handlers (handle_governance_plugin_created,
// handle_personal_space_created), matching the original source's
// incremental-population behaviour rather than a single opaque blob.
type Space struct {
	Network        string
	DAOAddress     string
	GovernanceType GovernanceType

	SpacePluginAddress         *string
	VotingPluginAddress        *string
	MemberAccessPluginAddress  *string
	PersonalAdminPluginAddress *string
}

// IntoAttributes implements the hand-mapped conversion from Space to an
// attribute bag rather than the reflection fallback (space attributes are
// few and individually significant to handler logic, so an explicit
// mapping stays readable).
func (s Space) IntoAttributes() map[EntityID]Value {
	attrs := map[EntityID]Value{
		AttrNetwork:        NewTextValue(s.Network),
		AttrDAOAddress:     NewTextValue(s.DAOAddress),
		AttrGovernanceType: NewTextValue(string(s.GovernanceType)),
	}
	if s.SpacePluginAddress != nil {
		attrs[AttrSpacePluginAddress] = NewTextValue(*s.SpacePluginAddress)
	}
	if s.VotingPluginAddress != nil {
		attrs[AttrVotingPluginAddress] = NewTextValue(*s.VotingPluginAddress)
	}
	if s.MemberAccessPluginAddress != nil {
		attrs[AttrMemberAccessPluginAddress] = NewTextValue(*s.MemberAccessPluginAddress)
	}
	if s.PersonalAdminPluginAddress != nil {
		attrs[AttrPersonalAdminPluginAddress] = NewTextValue(*s.PersonalAdminPluginAddress)
	}
	return attrs
}

// SpaceFromAttributes reconstructs a Space from its attribute bag. Missing
// optional plugin-address attributes map to nil, not an error.
func SpaceFromAttributes(attrs map[EntityID]Value) Space {
	s := Space{
		Network:        attrs[AttrNetwork].Raw,
		DAOAddress:     attrs[AttrDAOAddress].Raw,
		GovernanceType: GovernanceType(attrs[AttrGovernanceType].Raw),
	}
	if v, ok := attrs[AttrSpacePluginAddress]; ok {
		raw := v.Raw
		s.SpacePluginAddress = &raw
	}
	if v, ok := attrs[AttrVotingPluginAddress]; ok {
		raw := v.Raw
		s.VotingPluginAddress = &raw
	}
	if v, ok := attrs[AttrMemberAccessPluginAddress]; ok {
		raw := v.Raw
		s.MemberAccessPluginAddress = &raw
	}
	if v, ok := attrs[AttrPersonalAdminPluginAddress]; ok {
		raw := v.Raw
		s.PersonalAdminPluginAddress = &raw
	}
	return s
}
