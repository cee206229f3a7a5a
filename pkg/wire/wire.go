// Package wire decodes the length-prefixed protobuf payloads the content
// store (IPFS) serves: edit proposals and the triple/value ops they carry.
// Decoding is hand-rolled against google.golang.org/protobuf/encoding/
// protowire rather than generated from a .proto file, because no .proto
// schema for these messages was available to generate against — only the
// field tags observable in the upstream Rust decoder. Every message here
// mirrors a struct from that decoder field-for-field (see the per-type doc
// comments for the tag numbers each field was grounded on).
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ActionType discriminates the kind of mutation an Edit-shaped payload
// carries, mirroring the upstream ActionType enum.
type ActionType int32

const (
	ActionTypeDefault        ActionType = 0
	ActionTypeAddEdit        ActionType = 1
	ActionTypeImportSpace    ActionType = 2
	ActionTypeAddSubspace    ActionType = 3
	ActionTypeRemoveSubspace ActionType = 4
	ActionTypeAddEditor      ActionType = 5
	ActionTypeRemoveEditor   ActionType = 6
	ActionTypeAddMember      ActionType = 7
	ActionTypeRemoveMember   ActionType = 8
)

// OpType discriminates a triple mutation. The wire format only ever carries
// these two kinds: relation creation/deletion is reconstructed afterwards
// from the pattern of triples an edit sets on a relation entity (see
// internal/sink/events.BuildRelationOps), not encoded as its own op type.
type OpType int32

const (
	OpTypeDefault      OpType = 0
	OpTypeSetTriple    OpType = 1
	OpTypeDeleteTriple OpType = 2
)

// ValueType mirrors the wire ValueType enum.
type ValueType int32

const (
	ValueTypeDefault     ValueType = 0
	ValueTypeText        ValueType = 1
	ValueTypeNumber      ValueType = 2
	ValueTypeEntity      ValueType = 3
	ValueTypeURI         ValueType = 4
	ValueTypeCheckbox    ValueType = 5
	ValueTypeTime        ValueType = 6
	ValueTypeGeoLocation ValueType = 7
)

// TextOptions carries a Text value's language tag. Field 1: language (bytes).
type TextOptions struct {
	Language string
}

// NumberOptions carries a Number value's unit. Field 1: unit (bytes).
type NumberOptions struct {
	Unit string
}

// Value is a primitive fact value. Field 1: type (enum), field 2: value
// (string), field 3: text options, field 4: number options (the upstream
// oneof is decoded as two optional fields; at most one is set per Type).
type Value struct {
	Type          ValueType
	Value         string
	TextOptions   *TextOptions
	NumberOptions *NumberOptions
}

// Triple is an (entity, attribute, value) fact assertion. Field 1: entity,
// field 2: attribute, field 3: value.
type Triple struct {
	Entity    string
	Attribute string
	Value     *Value
}

// Op is a single triple mutation. Field 1: type, field 2: triple.
type Op struct {
	Type   OpType
	Triple *Triple
}

// Edit is a full edit proposal payload. Field 1: type, field 2: version,
// field 3: id, field 4: name, field 5: ops (repeated), field 6: authors
// (repeated string).
type Edit struct {
	Type    ActionType
	Version string
	ID      string
	Name    string
	Ops     []*Op
	Authors []string
}

// ImportEdit has the identical wire shape to Edit; it is the payload type
// used for each edit referenced from an Import's edit list.
type ImportEdit = Edit

// Import lists the content hashes of the edits a space import replays.
// Field 1: edits (repeated string, "ipfs://..." URIs). The payload also
// carries its ActionType as a varint under field 1, which DecodeImport
// skips.
type Import struct {
	Edits []string
}

// IpfsMetadata is the minimal envelope every content-store payload starts
// with: just enough to route the rest of the bytes to the right decoder
// (Edit vs Import) by ActionType. Field 1: type.
type IpfsMetadata struct {
	Type ActionType
}

// DecodeError wraps a protowire-level decode failure with the message type
// being decoded, so callers logging a bad payload know what to report.
type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("wire: decode %s: %v", e.Message, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(message string, err error) error {
	return &DecodeError{Message: message, Err: err}
}

var errTruncated = fmt.Errorf("truncated message")
var errUnknownWireType = fmt.Errorf("unknown wire type")

// consumeFields walks buf as a sequence of (tag, value) pairs, calling visit
// for each field with its number, wire type, and raw (not yet interpreted)
// bytes for length-delimited fields or the raw varint otherwise. Unknown
// field numbers are skipped via protowire.ConsumeFieldValue.
func consumeFields(buf []byte, visit func(num protowire.Number, typ protowire.Type, b []byte) (consumed int, err error)) error {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return errTruncated
		}
		buf = buf[n:]

		consumed, err := visit(num, typ, buf)
		if err != nil {
			return err
		}
		if consumed < 0 {
			skip := protowire.ConsumeFieldValue(num, typ, buf)
			if skip < 0 {
				return errUnknownWireType
			}
			consumed = skip
		}
		buf = buf[consumed:]
	}
	return nil
}

func consumeString(typ protowire.Type, b []byte) (string, int, error) {
	if typ != protowire.BytesType {
		return "", -1, errUnknownWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return "", -1, errTruncated
	}
	return string(v), n, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, -1, errUnknownWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, -1, errTruncated
	}
	return v, n, nil
}

func consumeMessage(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, -1, errUnknownWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, -1, errTruncated
	}
	return v, n, nil
}

// DecodeValue decodes a Value message from buf.
func DecodeValue(buf []byte) (*Value, error) {
	v := &Value{}
	err := consumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			raw, n, err := consumeVarint(typ, b)
			if err != nil {
				return -1, err
			}
			v.Type = ValueType(raw)
			return n, nil
		case 2:
			s, n, err := consumeString(typ, b)
			if err != nil {
				return -1, err
			}
			v.Value = s
			return n, nil
		case 3:
			msg, n, err := consumeMessage(typ, b)
			if err != nil {
				return -1, err
			}
			opts, err := decodeTextOptions(msg)
			if err != nil {
				return -1, err
			}
			v.TextOptions = opts
			return n, nil
		case 4:
			msg, n, err := consumeMessage(typ, b)
			if err != nil {
				return -1, err
			}
			opts, err := decodeNumberOptions(msg)
			if err != nil {
				return -1, err
			}
			v.NumberOptions = opts
			return n, nil
		default:
			return -1, nil
		}
	})
	if err != nil {
		return nil, decodeErr("Value", err)
	}
	return v, nil
}

func decodeTextOptions(buf []byte) (*TextOptions, error) {
	o := &TextOptions{}
	err := consumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return -1, nil
		}
		s, n, err := consumeString(typ, b)
		if err != nil {
			return -1, err
		}
		o.Language = s
		return n, nil
	})
	if err != nil {
		return nil, decodeErr("TextOptions", err)
	}
	return o, nil
}

func decodeNumberOptions(buf []byte) (*NumberOptions, error) {
	o := &NumberOptions{}
	err := consumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return -1, nil
		}
		s, n, err := consumeString(typ, b)
		if err != nil {
			return -1, err
		}
		o.Unit = s
		return n, nil
	})
	if err != nil {
		return nil, decodeErr("NumberOptions", err)
	}
	return o, nil
}

// DecodeTriple decodes a Triple message from buf.
func DecodeTriple(buf []byte) (*Triple, error) {
	t := &Triple{}
	err := consumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			s, n, err := consumeString(typ, b)
			if err != nil {
				return -1, err
			}
			t.Entity = s
			return n, nil
		case 2:
			s, n, err := consumeString(typ, b)
			if err != nil {
				return -1, err
			}
			t.Attribute = s
			return n, nil
		case 3:
			msg, n, err := consumeMessage(typ, b)
			if err != nil {
				return -1, err
			}
			v, err := DecodeValue(msg)
			if err != nil {
				return -1, err
			}
			t.Value = v
			return n, nil
		default:
			return -1, nil
		}
	})
	if err != nil {
		return nil, decodeErr("Triple", err)
	}
	return t, nil
}

// DecodeOp decodes an Op message from buf.
func DecodeOp(buf []byte) (*Op, error) {
	o := &Op{}
	err := consumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			raw, n, err := consumeVarint(typ, b)
			if err != nil {
				return -1, err
			}
			o.Type = OpType(raw)
			return n, nil
		case 2:
			msg, n, err := consumeMessage(typ, b)
			if err != nil {
				return -1, err
			}
			t, err := DecodeTriple(msg)
			if err != nil {
				return -1, err
			}
			o.Triple = t
			return n, nil
		default:
			return -1, nil
		}
	})
	if err != nil {
		return nil, decodeErr("Op", err)
	}
	return o, nil
}

// DecodeEdit decodes an Edit (or, identically, an ImportEdit) message from
// buf.
func DecodeEdit(buf []byte) (*Edit, error) {
	e := &Edit{}
	err := consumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			raw, n, err := consumeVarint(typ, b)
			if err != nil {
				return -1, err
			}
			e.Type = ActionType(raw)
			return n, nil
		case 2:
			s, n, err := consumeString(typ, b)
			if err != nil {
				return -1, err
			}
			e.Version = s
			return n, nil
		case 3:
			s, n, err := consumeString(typ, b)
			if err != nil {
				return -1, err
			}
			e.ID = s
			return n, nil
		case 4:
			s, n, err := consumeString(typ, b)
			if err != nil {
				return -1, err
			}
			e.Name = s
			return n, nil
		case 5:
			msg, n, err := consumeMessage(typ, b)
			if err != nil {
				return -1, err
			}
			op, err := DecodeOp(msg)
			if err != nil {
				return -1, err
			}
			e.Ops = append(e.Ops, op)
			return n, nil
		case 6:
			s, n, err := consumeString(typ, b)
			if err != nil {
				return -1, err
			}
			e.Authors = append(e.Authors, s)
			return n, nil
		default:
			return -1, nil
		}
	})
	if err != nil {
		return nil, decodeErr("Edit", err)
	}
	return e, nil
}

// DecodeImport decodes an Import message from buf.
func DecodeImport(buf []byte) (*Import, error) {
	i := &Import{}
	err := consumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 || typ != protowire.BytesType {
			return -1, nil
		}
		s, n, err := consumeString(typ, b)
		if err != nil {
			return -1, err
		}
		i.Edits = append(i.Edits, s)
		return n, nil
	})
	if err != nil {
		return nil, decodeErr("Import", err)
	}
	return i, nil
}

// DecodeIpfsMetadata decodes just enough of a content payload to route it:
// every Edit and Import payload also parses successfully as IpfsMetadata,
// since all three carry the ActionType as a varint under field 1. An
// Import's edit URIs, which share field 1 as bytes, are skipped.
func DecodeIpfsMetadata(buf []byte) (*IpfsMetadata, error) {
	m := &IpfsMetadata{}
	err := consumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 || typ != protowire.VarintType {
			return -1, nil
		}
		raw, n, err := consumeVarint(typ, b)
		if err != nil {
			return -1, err
		}
		m.Type = ActionType(raw)
		return n, nil
	})
	if err != nil {
		return nil, decodeErr("IpfsMetadata", err)
	}
	return m, nil
}
