package bootstrap

import (
	"strings"
	"testing"

	"github.com/kgraph/sink/pkg/kg"
)

func TestLoadDefaultCatalogue(t *testing.T) {
	cat, err := LoadDefaultCatalogue()
	if err != nil {
		t.Fatalf("LoadDefaultCatalogue: %v", err)
	}
	if len(cat.Types) == 0 || len(cat.Attributes) == 0 {
		t.Fatalf("expected the embedded catalogue to declare types and attributes")
	}
	if err := Validate(cat); err != nil {
		t.Fatalf("the embedded catalogue must validate cleanly: %v", err)
	}
}

func TestLoadCatalogueFromReader_RejectsUnknownFields(t *testing.T) {
	yaml := `
types:
  - id: system:type:space
    name: Space
    bogus_field: oops
`
	if _, err := LoadCatalogueFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected an error for an unknown key in a type entry")
	}
}

func TestLoadCatalogueFromReader_Minimal(t *testing.T) {
	yaml := `
types:
  - id: system:type:widget
    name: Widget
attributes:
  - id: system:attribute:widget-color
    name: Color
    value_type: Text
schemas:
  - type_id: system:type:widget
    properties:
      - system:attribute:widget-color
seeds:
  - id: system:seed:widget:red
    types:
      - system:type:widget
    attributes:
      system:attribute:widget-color: red
`
	cat, err := LoadCatalogueFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadCatalogueFromReader: %v", err)
	}
	if len(cat.Types) != 1 || cat.Types[0].ID != kg.EntityID("system:type:widget") {
		t.Fatalf("unexpected types: %+v", cat.Types)
	}
	if err := Validate(cat); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
