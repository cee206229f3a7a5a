// Package postgres provides the PostgreSQL+pgvector backing implementation
// of pkg/kg.Store: an append-only, space- and version-scoped triple and
// relation store, plus a semantic index over attribute values (attribute_nodes)
// for pkg/query's vector search.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlEntities = `
CREATE TABLE IF NOT EXISTS entities (
    id               TEXT        PRIMARY KEY,
    created_at       TIMESTAMPTZ NOT NULL,
    created_at_block BIGINT      NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL,
    updated_at_block BIGINT      NOT NULL
);

CREATE TABLE IF NOT EXISTS entity_types (
    entity_id TEXT NOT NULL REFERENCES entities (id) ON DELETE CASCADE,
    type_id   TEXT NOT NULL,
    PRIMARY KEY (entity_id, type_id)
);

CREATE INDEX IF NOT EXISTS idx_entity_types_type ON entity_types (type_id);
`

const ddlTriples = `
CREATE TABLE IF NOT EXISTS triples (
    id               BIGSERIAL   PRIMARY KEY,
    entity_id        TEXT        NOT NULL,
    attribute_id     TEXT        NOT NULL,
    value_raw        TEXT        NOT NULL,
    value_type       TEXT        NOT NULL,
    value_options    JSONB       NOT NULL DEFAULT '{}',
    space_id         TEXT        NOT NULL,
    min_version      TEXT        NOT NULL,
    max_version      TEXT,
    created_at       TIMESTAMPTZ NOT NULL,
    created_at_block BIGINT      NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL,
    updated_at_block BIGINT      NOT NULL
);

-- One live (max_version IS NULL) triple per (entity, attribute, space):
-- this is the invariant SetAttribute/DeleteAttribute maintain by closing the
-- previous live triple before inserting a new one.
CREATE UNIQUE INDEX IF NOT EXISTS idx_triples_live
    ON triples (entity_id, attribute_id, space_id)
    WHERE max_version IS NULL;

CREATE INDEX IF NOT EXISTS idx_triples_entity_space
    ON triples (entity_id, space_id);

CREATE INDEX IF NOT EXISTS idx_triples_attribute
    ON triples (attribute_id);
`

const ddlRelations = `
CREATE TABLE IF NOT EXISTS relations (
    id                  TEXT        PRIMARY KEY,
    from_entity         TEXT        NOT NULL,
    to_entity           TEXT        NOT NULL,
    relation_type       TEXT        NOT NULL,
    index_key           TEXT        NOT NULL,
    space_id            TEXT        NOT NULL,
    min_version         TEXT        NOT NULL,
    max_version         TEXT,
    created_at          TIMESTAMPTZ NOT NULL,
    created_at_block    BIGINT      NOT NULL,
    updated_at          TIMESTAMPTZ NOT NULL,
    updated_at_block    BIGINT      NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_relations_from
    ON relations (from_entity, space_id) WHERE max_version IS NULL;

CREATE INDEX IF NOT EXISTS idx_relations_to
    ON relations (to_entity, space_id) WHERE max_version IS NULL;

CREATE INDEX IF NOT EXISTS idx_relations_type
    ON relations (relation_type);
`

// ddlAttributeNodes returns the attribute_nodes DDL with the embedding
// vector dimension substituted. attribute_nodes denormalises the live
// Text-typed triples into a
// search-optimised shape: one row per (entity, attribute) carrying both the
// raw text (for prefiltering) and its embedding (for pkg/query's
// pgvector-backed semantic search shapes).
func ddlAttributeNodes(embeddingDimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS attribute_nodes (
    entity_id    TEXT        NOT NULL,
    attribute_id TEXT        NOT NULL,
    space_id     TEXT        NOT NULL,
    text         TEXT        NOT NULL,
    embedding    vector(%d),
    updated_at   TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (entity_id, attribute_id, space_id)
);

CREATE INDEX IF NOT EXISTS idx_attribute_nodes_embedding
    ON attribute_nodes USING hnsw (embedding vector_cosine_ops);

CREATE INDEX IF NOT EXISTS idx_attribute_nodes_space
    ON attribute_nodes (space_id);
`, embeddingDimensions)
}

// Migrate creates every table, index, and extension this package needs, if
// not already present. Idempotent and safe to call on every process start.
//
// There is deliberately no dedicated sentinel/cursor table: both are
// ordinary triples on kg.CursorEntityID (see pkg/kg/system.go), stored in
// the same triples table as every other attribute.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	statements := []string{
		ddlEntities,
		ddlTriples,
		ddlRelations,
		ddlAttributeNodes(embeddingDimensions),
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}

// dropAllTables is used by ResetAll. Tables are dropped in dependency order;
// CASCADE handles the entity_types foreign key. Dropping triples also wipes
// the sentinel/cursor triples, which is exactly what the migration gate
// wants on a version mismatch.
const dropAllTables = `
DROP TABLE IF EXISTS entity_types CASCADE;
DROP TABLE IF EXISTS entities CASCADE;
DROP TABLE IF EXISTS triples CASCADE;
DROP TABLE IF EXISTS relations CASCADE;
DROP TABLE IF EXISTS attribute_nodes CASCADE;
`
