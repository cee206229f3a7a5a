package kg

import (
	"fmt"
	"time"
)

// EntityID is an opaque, stable identifier for a graph node. Origin
// determines its shape: deterministically-derived ids for spaces and
// accounts (see pkg/ids), caller-supplied content hashes for entities
// created from edit payloads.
type EntityID string

// Version is a monotone, per-space marker used to window triples and
// relations bi-temporally. Versions are opaque strings (not necessarily
// numeric) to match the upstream block-derived version tags.
type Version string

// RootVersion is the version bootstrap data is written at.
const RootVersion Version = "0"

// BlockVersion derives the Version tag a block's writes are scoped at, from
// its block number. Zero-padded to a fixed width so that lexical string
// comparison (Relation.LiveAt, the triple "live" window) agrees with
// numeric block order; RootVersion sorts before every block version since
// it is a proper prefix of the zero-padded form.
func BlockVersion(blockNumber uint64) Version {
	return Version(fmt.Sprintf("%020d", blockNumber))
}

// BlockMetadata accompanies every write operation: the timestamp and block
// number the mutation originated from, used to populate SystemProperties.
type BlockMetadata struct {
	Timestamp   time.Time
	BlockNumber uint64
}

// SystemProperties are the bookkeeping fields every entity, triple, and
// relation carries: when it was first observed and last touched, and at
// which block.
type SystemProperties struct {
	CreatedAt      time.Time
	CreatedAtBlock uint64
	UpdatedAt      time.Time
	UpdatedAtBlock uint64
}

// touch advances UpdatedAt/UpdatedAtBlock from the given metadata, setting
// CreatedAt fields too when this is the first observation (zero CreatedAt).
func (s *SystemProperties) touch(meta BlockMetadata) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = meta.Timestamp
		s.CreatedAtBlock = meta.BlockNumber
	}
	s.UpdatedAt = meta.Timestamp
	s.UpdatedAtBlock = meta.BlockNumber
}

// NewSystemProperties returns SystemProperties initialised from meta as a
// freshly-created record.
func NewSystemProperties(meta BlockMetadata) SystemProperties {
	sp := SystemProperties{}
	sp.touch(meta)
	return sp
}

// Touch returns a copy of sp with UpdatedAt/UpdatedAtBlock advanced to meta.
func (s SystemProperties) Touch(meta BlockMetadata) SystemProperties {
	s.touch(meta)
	return s
}

// EntityNode is the untyped, storage-level view of an entity: its id,
// system properties, and the ids of its type entities. Attribute values are
// not embedded here — they are fetched separately as Triples, matching the
// store's triple-per-attribute layout.
type EntityNode struct {
	ID    EntityID
	Props SystemProperties
	Types []EntityID
}

// HasType reports whether the entity carries the given type id.
func (e EntityNode) HasType(typeID EntityID) bool {
	for _, t := range e.Types {
		if t == typeID {
			return true
		}
	}
	return false
}

// Entity is a strongly-typed view over an EntityNode: the user-defined
// record T plus the underlying node and its types. Conversions between T
// and the attribute-triple representation are performed by IntoAttributes/
// FromAttributes, implemented either by hand (preferred for hot paths) or
// via the generic reflection fallback in pkg/kg/attrs.
type Entity[T any] struct {
	Node       EntityNode
	Attributes T
}

// TriplesConversionError is returned when a typed record cannot be
// round-tripped through the attribute-bag representation: a required
// attribute is missing, or present with the wrong scalar type.
type TriplesConversionError struct {
	// Field is the struct field name that failed to convert.
	Field string
	// AttributeID is the attribute the field maps to.
	AttributeID EntityID
	// Reason describes what went wrong.
	Reason string
}

func (e *TriplesConversionError) Error() string {
	return fmt.Sprintf("kg: convert field %q (attribute %q): %s", e.Field, e.AttributeID, e.Reason)
}
