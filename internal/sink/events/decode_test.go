package events

import (
	"testing"

	"github.com/kgraph/sink/pkg/kg"
	"github.com/kgraph/sink/pkg/wire"
)

func TestValueFromWire_Number(t *testing.T) {
	v := valueFromWire(&wire.Value{Type: wire.ValueTypeNumber, Value: "42", NumberOptions: &wire.NumberOptions{Unit: "USD"}})
	if v.Type != kg.ValueTypeNumber || v.Raw != "42" || v.Options.Unit != "USD" {
		t.Fatalf("unexpected value: %+v", v)
	}
}

func TestValueFromWire_TextWithLanguage(t *testing.T) {
	v := valueFromWire(&wire.Value{Type: wire.ValueTypeText, Value: "Hello", TextOptions: &wire.TextOptions{Language: "en"}})
	if v.Type != kg.ValueTypeText || v.Options.Language != "en" {
		t.Fatalf("unexpected value: %+v", v)
	}
}

func TestOpsFromEdit_ConvertsSetAndDeleteTriples(t *testing.T) {
	edit := &wire.Edit{
		Ops: []*wire.Op{
			{Type: wire.OpTypeSetTriple, Triple: &wire.Triple{Entity: "e1", Attribute: "a1", Value: &wire.Value{Type: wire.ValueTypeText, Value: "v1"}}},
			{Type: wire.OpTypeDeleteTriple, Triple: &wire.Triple{Entity: "e1", Attribute: "a2"}},
			{Type: wire.OpTypeDefault, Triple: nil},
		},
	}
	ops := opsFromEdit(edit)
	if len(ops) != 2 {
		t.Fatalf("expected 2 ops (nil-triple op skipped), got %d: %+v", len(ops), ops)
	}
	if ops[0].Kind != kg.OpSetTriple || ops[0].Value.Raw != "v1" {
		t.Fatalf("unexpected first op: %+v", ops[0])
	}
	if ops[1].Kind != kg.OpDeleteTriple || ops[1].AttributeID != "a2" {
		t.Fatalf("unexpected second op: %+v", ops[1])
	}
}
