// Package bootstrap loads the well-known system-id catalogue (type labels,
// attribute catalogue, canonical type schemas, seed entities) and compiles
// it into the same op vocabulary live edits use, applying it against the
// ROOT space at version 0 (§4.6). A yaml.v3 decoder with KnownFields(true),
// an explicit Validate pass returning errors.Join, and a bulk-import step.
package bootstrap

import (
	"embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kgraph/sink/pkg/kg"
)

//go:embed catalogue.yaml
var defaultCatalogueFS embed.FS

// TypeDef declares one canonical entity type (e.g. "Space", "Network").
type TypeDef struct {
	ID   kg.EntityID `yaml:"id"`
	Name string      `yaml:"name"`
}

// AttributeDef declares one canonical attribute, its scalar value type, and
// optionally its hardcoded aggregation direction (§4.4, §9 Design Note:
// bootstrap properties predate the AGGREGATION_DIRECTION mechanism, so most
// leave Direction empty and fall through to pkg/inherit's hardcoded table).
type AttributeDef struct {
	ID        kg.EntityID  `yaml:"id"`
	Name      string       `yaml:"name"`
	ValueType kg.ValueType `yaml:"value_type"`
	Direction string       `yaml:"direction,omitempty"`
}

// SchemaDef declares the attribute set a canonical type's instances carry,
// realised as RelationProperties edges from TypeID to each property.
type SchemaDef struct {
	TypeID     kg.EntityID   `yaml:"type_id"`
	Properties []kg.EntityID `yaml:"properties"`
}

// SeedEntity declares a concrete bootstrap-seeded entity (e.g. the Ethereum
// network), its types, and its literal attribute values.
type SeedEntity struct {
	ID         kg.EntityID            `yaml:"id"`
	Types      []kg.EntityID          `yaml:"types"`
	Attributes map[kg.EntityID]string `yaml:"attributes"`
}

// Catalogue is the top-level structure of a bootstrap catalogue YAML file.
type Catalogue struct {
	Types      []TypeDef      `yaml:"types"`
	Attributes []AttributeDef `yaml:"attributes"`
	Schemas    []SchemaDef    `yaml:"schemas"`
	Seeds      []SeedEntity   `yaml:"seeds"`
}

// LoadDefaultCatalogue loads the catalogue embedded in the binary.
func LoadDefaultCatalogue() (*Catalogue, error) {
	f, err := defaultCatalogueFS.Open("catalogue.yaml")
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open embedded catalogue: %w", err)
	}
	defer f.Close()
	return LoadCatalogueFromReader(f)
}

// LoadCatalogue reads and parses a catalogue YAML file from disk, used when
// BootstrapConfig.CataloguePath overrides the embedded default.
func LoadCatalogue(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open catalogue file %q: %w", path, err)
	}
	defer f.Close()

	cat, err := LoadCatalogueFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: parse catalogue file %q: %w", path, err)
	}
	return cat, nil
}

// LoadCatalogueFromReader parses catalogue YAML from an io.Reader, rejecting
// unknown keys at any nesting level to catch typos early.
func LoadCatalogueFromReader(r io.Reader) (*Catalogue, error) {
	var cat Catalogue
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("bootstrap: decode catalogue yaml: %w", err)
	}
	return &cat, nil
}
