package bootstrap

import (
	"testing"

	"github.com/kgraph/sink/pkg/kg"
)

func TestCompile_TypeProducesNameTripleAndTypesRelation(t *testing.T) {
	cat := &Catalogue{
		Types: []TypeDef{{ID: "system:type:widget", Name: "Widget"}},
	}
	ops := Compile(cat)

	var sawName, sawTypesRelation bool
	for _, op := range ops {
		if op.Kind == kg.OpSetTriple && op.EntityID == "system:type:widget" && op.AttributeID == kg.AttrName {
			if op.Value.Raw != "Widget" {
				t.Fatalf("expected name 'Widget', got %q", op.Value.Raw)
			}
			sawName = true
		}
		if op.Kind == kg.OpCreateRelation && op.EntityID == "system:type:widget" && op.RelationTypeEntity == kg.RelationTypes && op.ToEntity == kg.TypeType {
			sawTypesRelation = true
		}
	}
	if !sawName || !sawTypesRelation {
		t.Fatalf("missing expected ops: %+v", ops)
	}
}

func TestCompile_AttributeWithDirectionEmitsAggregationDirectionTriple(t *testing.T) {
	cat := &Catalogue{
		Attributes: []AttributeDef{
			{ID: "system:attribute:network", Name: "Network", ValueType: kg.ValueTypeText, Direction: "Down"},
		},
	}
	ops := Compile(cat)

	var found bool
	for _, op := range ops {
		if op.Kind == kg.OpSetTriple && op.AttributeID == kg.AttrAggregationDirection {
			if op.Value.Raw != "Down" {
				t.Fatalf("expected direction 'Down', got %q", op.Value.Raw)
			}
			found = true
		}
	}
	if !found {
		t.Fatal("expected an AGGREGATION_DIRECTION triple for an attribute with a direction")
	}
}

func TestCompile_AttributeWithoutDirectionEmitsNoAggregationTriple(t *testing.T) {
	cat := &Catalogue{
		Attributes: []AttributeDef{
			{ID: "system:attribute:name", Name: "Name", ValueType: kg.ValueTypeText},
		},
	}
	ops := Compile(cat)

	for _, op := range ops {
		if op.AttributeID == kg.AttrAggregationDirection {
			t.Fatal("did not expect an AGGREGATION_DIRECTION triple for an attribute with no declared direction")
		}
	}
}

func TestCompile_SchemaProducesPropertiesRelationsInOrder(t *testing.T) {
	cat := &Catalogue{
		Schemas: []SchemaDef{
			{TypeID: "system:type:space", Properties: []kg.EntityID{"attr:a", "attr:b"}},
		},
	}
	ops := Compile(cat)

	var rels []kg.Op
	for _, op := range ops {
		if op.Kind == kg.OpCreateRelation && op.RelationTypeEntity == kg.RelationProperties {
			rels = append(rels, op)
		}
	}
	if len(rels) != 2 {
		t.Fatalf("expected 2 properties relations, got %d", len(rels))
	}
	if rels[0].ToEntity != "attr:a" || rels[1].ToEntity != "attr:b" {
		t.Fatalf("unexpected property order: %+v", rels)
	}
	if rels[0].RelationIndex >= rels[1].RelationIndex {
		t.Fatalf("expected ascending fractional index, got %q then %q", rels[0].RelationIndex, rels[1].RelationIndex)
	}
}

func TestCompile_SeedProducesTypesRelationAndAttributeTriples(t *testing.T) {
	cat := &Catalogue{
		Seeds: []SeedEntity{
			{
				ID:         "system:seed:network:ethereum",
				Types:      []kg.EntityID{"system:type:network"},
				Attributes: map[kg.EntityID]string{"system:attribute:name": "Ethereum"},
			},
		},
	}
	ops := Compile(cat)

	var sawType, sawAttr bool
	for _, op := range ops {
		if op.Kind == kg.OpCreateRelation && op.EntityID == "system:seed:network:ethereum" && op.ToEntity == "system:type:network" {
			sawType = true
		}
		if op.Kind == kg.OpSetTriple && op.EntityID == "system:seed:network:ethereum" && op.AttributeID == "system:attribute:name" && op.Value.Raw == "Ethereum" {
			sawAttr = true
		}
	}
	if !sawType || !sawAttr {
		t.Fatalf("missing expected seed ops: %+v", ops)
	}
}

func TestCompile_IsDeterministicAcrossRuns(t *testing.T) {
	cat := &Catalogue{
		Types: []TypeDef{{ID: "system:type:widget", Name: "Widget"}},
	}
	first := Compile(cat)
	second := Compile(cat)

	relID := func(ops []kg.Op) kg.EntityID {
		for _, op := range ops {
			if op.Kind == kg.OpCreateRelation {
				return op.RelationID
			}
		}
		return ""
	}
	if relID(first) != relID(second) {
		t.Fatalf("expected a stable relation id across runs: %q vs %q", relID(first), relID(second))
	}
}
