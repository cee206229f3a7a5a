package kg

// Triple is a versioned, space-scoped fact: entity carries attribute with
// value, asserted from min_version and, once superseded or deleted, closed
// at max_version. A triple with no MaxVersion is "live".
//
// State machine (see spec design notes):
//
//	absent --insert--> live(min=V) --insert at V'>V--> closed(min=V,max=V') + live(min=V')
//	                               --delete at V'>V--> closed(min=V,max=V')
//
// Closed triples are never reopened; a later insert always creates a new
// row, preserving full history (invariant: append-only).
type Triple struct {
	EntityID    EntityID
	AttributeID EntityID
	Value       Value
	SpaceID     EntityID
	MinVersion  Version
	MaxVersion  *Version
}

// IsLive reports whether t has no MaxVersion — i.e. it is the currently
// asserted fact for (EntityID, AttributeID, SpaceID).
func (t Triple) IsLive() bool {
	return t.MaxVersion == nil
}

// LiveAt reports whether t is live in the given version window: asserted at
// or before v, and not yet closed, or closed strictly after v.
func (t Triple) LiveAt(v Version) bool {
	if t.MinVersion > v {
		return false
	}
	if t.MaxVersion == nil {
		return true
	}
	return *t.MaxVersion > v
}

// Close returns a copy of t with MaxVersion set to closeAt. Closing an
// already-closed triple is a no-op that returns t unchanged — closed
// triples are never reopened or re-closed.
func (t Triple) Close(closeAt Version) Triple {
	if t.MaxVersion != nil {
		return t
	}
	v := closeAt
	t.MaxVersion = &v
	return t
}

// SameFact reports whether two triples identify the same (entity,
// attribute, space) slot, irrespective of version or value — used to find
// the triple a new write would supersede.
func (t Triple) SameFact(other Triple) bool {
	return t.EntityID == other.EntityID &&
		t.AttributeID == other.AttributeID &&
		t.SpaceID == other.SpaceID
}

// NoopInsert reports whether inserting newValue at minVersion against the
// currently-live triple live would be a no-op: the live triple already
// carries minVersion as its MinVersion (boundary behaviour from spec §8:
// "inserting a triple with min_version equal to the currently-live triple's
// min_version is a no-op").
func NoopInsert(live *Triple, minVersion Version) bool {
	return live != nil && live.IsLive() && live.MinVersion == minVersion
}
