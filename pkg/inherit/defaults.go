package inherit

import "github.com/kgraph/sink/pkg/kg"

// bootstrapDirections hardcodes the aggregation direction for properties
// whose AGGREGATION_DIRECTION triple predates the mechanism (§9 Design
// Notes: "long-term policy — seed the triples, or keep the table — is not
// specified"; this table is the interim answer, not a settled one).
//
// Resolver.Direction consults this table only when no AGGREGATION_DIRECTION
// triple exists for the property at all; a triple, even one asserting a
// direction also listed here, always wins.
var bootstrapDirections = map[kg.EntityID]Direction{
	kg.AttrNetwork:        Down,
	kg.AttrGovernanceType: Down,
	kg.AttrDAOAddress:     Down,
}

// DefaultDirection returns the hardcoded bootstrap direction for attr, and
// whether one is defined.
func DefaultDirection(attr kg.EntityID) (Direction, bool) {
	d, ok := bootstrapDirections[attr]
	return d, ok
}
