package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/kgraph/sink/pkg/embeddings"
	"github.com/kgraph/sink/pkg/kg"
)

var _ kg.Store = (*Store)(nil)

// Store is the PostgreSQL+pgvector implementation of kg.Store. A single
// pgxpool.Pool backs every table this package defines.
type Store struct {
	pool       *pgxpool.Pool
	embeddings embeddings.Provider // nil disables attribute_nodes embedding population
	log        *slog.Logger
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithEmbeddings attaches an embeddings provider used to populate
// attribute_nodes.embedding for Text-typed attributes as they are written.
// Without one, attribute_nodes still tracks text (for prefiltering) but
// semantic search over it returns no rows.
func WithEmbeddings(p embeddings.Provider) Option {
	return func(s *Store) { s.embeddings = p }
}

// WithLogger overrides the default discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore connects to dsn, registers pgvector types on every connection,
// runs Migrate, and returns a ready Store.
func NewStore(ctx context.Context, dsn string, embeddingDimensions int, opts ...Option) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if err := Migrate(ctx, pool, embeddingDimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	s := &Store{pool: pool, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Pool exposes the underlying connection pool for packages that need to run
// their own queries against these tables (pkg/querybuilder, pkg/query).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Close() { s.pool.Close() }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

// InsertEntity creates the entity row (if absent), records its types, and
// writes every attribute as a live triple at meta/spaceID/version.
func (s *Store) InsertEntity(ctx context.Context, id kg.EntityID, types []kg.EntityID, attrs map[kg.EntityID]kg.Value, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: insert entity: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const qEntity = `
		INSERT INTO entities (id, created_at, created_at_block, updated_at, updated_at_block)
		VALUES ($1, $2, $3, $2, $3)
		ON CONFLICT (id) DO UPDATE SET updated_at = $2, updated_at_block = $3`
	if _, err := tx.Exec(ctx, qEntity, string(id), meta.Timestamp, int64(meta.BlockNumber)); err != nil {
		return fmt.Errorf("postgres: insert entity: %w", err)
	}

	const qType = `
		INSERT INTO entity_types (entity_id, type_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	for _, t := range types {
		if _, err := tx.Exec(ctx, qType, string(id), string(t)); err != nil {
			return fmt.Errorf("postgres: insert entity: type: %w", err)
		}
	}

	for attr, val := range attrs {
		if err := s.setAttributeTx(ctx, tx, id, attr, val, meta, spaceID, version); err != nil {
			return fmt.Errorf("postgres: insert entity: attribute %s: %w", attr, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: insert entity: commit: %w", err)
	}
	return nil
}

// DeleteEntity closes every live triple and relation touching id in spaceID.
func (s *Store) DeleteEntity(ctx context.Context, id kg.EntityID, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: delete entity: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const qCloseTriples = `
		UPDATE triples SET max_version = $4, updated_at = $2, updated_at_block = $3
		WHERE entity_id = $1 AND space_id = $5 AND max_version IS NULL`
	if _, err := tx.Exec(ctx, qCloseTriples, string(id), meta.Timestamp, int64(meta.BlockNumber), string(version), string(spaceID)); err != nil {
		return fmt.Errorf("postgres: delete entity: close triples: %w", err)
	}

	const qCloseRelations = `
		UPDATE relations SET max_version = $4, updated_at = $2, updated_at_block = $3
		WHERE (from_entity = $1 OR to_entity = $1) AND space_id = $5 AND max_version IS NULL`
	if _, err := tx.Exec(ctx, qCloseRelations, string(id), meta.Timestamp, int64(meta.BlockNumber), string(version), string(spaceID)); err != nil {
		return fmt.Errorf("postgres: delete entity: close relations: %w", err)
	}

	const qAttrNode = `DELETE FROM attribute_nodes WHERE entity_id = $1 AND space_id = $2`
	if _, err := tx.Exec(ctx, qAttrNode, string(id), string(spaceID)); err != nil {
		return fmt.Errorf("postgres: delete entity: attribute nodes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: delete entity: commit: %w", err)
	}
	return nil
}

func (s *Store) SetAttribute(ctx context.Context, id, attr kg.EntityID, value kg.Value, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: set attribute: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.setAttributeTx(ctx, tx, id, attr, value, meta, spaceID, version); err != nil {
		return fmt.Errorf("postgres: set attribute: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: set attribute: commit: %w", err)
	}
	return nil
}

func (s *Store) SetAttributes(ctx context.Context, id kg.EntityID, bag map[kg.EntityID]kg.Value, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: set attributes: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for attr, val := range bag {
		if err := s.setAttributeTx(ctx, tx, id, attr, val, meta, spaceID, version); err != nil {
			return fmt.Errorf("postgres: set attributes: attribute %s: %w", attr, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: set attributes: commit: %w", err)
	}
	return nil
}

// setAttributeTx implements the close-then-insert sequence SetAttribute
// describes, skipping the write entirely when kg.NoopInsert applies.
func (s *Store) setAttributeTx(ctx context.Context, tx pgx.Tx, id, attr kg.EntityID, value kg.Value, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	live, err := s.liveTripleTx(ctx, tx, id, attr, spaceID)
	if err != nil {
		return err
	}
	if kg.NoopInsert(live, version) {
		return nil
	}

	const qClose = `
		UPDATE triples SET max_version = $1, updated_at = $2, updated_at_block = $3
		WHERE entity_id = $4 AND attribute_id = $5 AND space_id = $6 AND max_version IS NULL`
	if _, err := tx.Exec(ctx, qClose, string(version), meta.Timestamp, int64(meta.BlockNumber), string(id), string(attr), string(spaceID)); err != nil {
		return fmt.Errorf("close live triple: %w", err)
	}

	const qInsert = `
		INSERT INTO triples
		    (entity_id, attribute_id, value_raw, value_type, value_options, space_id, min_version, created_at, created_at_block, updated_at, updated_at_block)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $8, $9)`
	optsJSON, err := marshalOptions(value.Options)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, qInsert, string(id), string(attr), value.Raw, string(value.Type), optsJSON, string(spaceID), string(version), meta.Timestamp, int64(meta.BlockNumber)); err != nil {
		return fmt.Errorf("insert triple: %w", err)
	}

	if value.Type == kg.ValueTypeText {
		if err := s.upsertAttributeNodeTx(ctx, tx, id, attr, spaceID, value.Raw); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteAttribute(ctx context.Context, id, attr kg.EntityID, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: delete attribute: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const qClose = `
		UPDATE triples SET max_version = $1, updated_at = $2, updated_at_block = $3
		WHERE entity_id = $4 AND attribute_id = $5 AND space_id = $6 AND max_version IS NULL`
	if _, err := tx.Exec(ctx, qClose, string(version), meta.Timestamp, int64(meta.BlockNumber), string(id), string(attr), string(spaceID)); err != nil {
		return fmt.Errorf("postgres: delete attribute: %w", err)
	}

	const qAttrNode = `DELETE FROM attribute_nodes WHERE entity_id = $1 AND attribute_id = $2 AND space_id = $3`
	if _, err := tx.Exec(ctx, qAttrNode, string(id), string(attr), string(spaceID)); err != nil {
		return fmt.Errorf("postgres: delete attribute: attribute node: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: delete attribute: commit: %w", err)
	}
	return nil
}

// upsertAttributeNodeTx refreshes the attribute_nodes row for (id, attr,
// spaceID), recomputing its embedding through s.embeddings when configured.
// Embedding failures are logged, not propagated: a missing embedding only
// degrades semantic search recall for this one attribute, it should not
// fail the triple write that is the system of record.
func (s *Store) upsertAttributeNodeTx(ctx context.Context, tx pgx.Tx, id, attr kg.EntityID, spaceID kg.EntityID, text string) error {
	var vec *pgvector.Vector
	if s.embeddings != nil {
		embedding, err := s.embeddings.Embed(ctx, text)
		if err != nil {
			s.log.WarnContext(ctx, "attribute embedding failed", "entity", id, "attribute", attr, "error", err)
		} else {
			v := pgvector.NewVector(embedding)
			vec = &v
		}
	}

	const q = `
		INSERT INTO attribute_nodes (entity_id, attribute_id, space_id, text, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (entity_id, attribute_id, space_id) DO UPDATE SET
		    text       = EXCLUDED.text,
		    embedding  = COALESCE(EXCLUDED.embedding, attribute_nodes.embedding),
		    updated_at = now()`
	if _, err := tx.Exec(ctx, q, string(id), string(attr), string(spaceID), text, vec); err != nil {
		return fmt.Errorf("upsert attribute node: %w", err)
	}
	return nil
}

// liveTripleTx returns the currently-live triple for (id, attr, spaceID), or
// nil if none exists.
func (s *Store) liveTripleTx(ctx context.Context, tx pgx.Tx, id, attr kg.EntityID, spaceID kg.EntityID) (*kg.Triple, error) {
	const q = `
		SELECT value_raw, value_type, min_version
		FROM   triples
		WHERE  entity_id = $1 AND attribute_id = $2 AND space_id = $3 AND max_version IS NULL`
	row := tx.QueryRow(ctx, q, string(id), string(attr), string(spaceID))

	var (
		raw, valType, minVersion string
	)
	if err := row.Scan(&raw, &valType, &minVersion); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("live triple: %w", err)
	}
	return &kg.Triple{
		EntityID:    id,
		AttributeID: attr,
		Value:       kg.Value{Raw: raw, Type: kg.ValueType(valType)},
		SpaceID:     spaceID,
		MinVersion:  kg.Version(minVersion),
	}, nil
}

// FindOne returns the entity node and its live attribute bag in spaceID at
// version.
func (s *Store) FindOne(ctx context.Context, id kg.EntityID, spaceID kg.EntityID, version kg.Version) (kg.EntityNode, map[kg.EntityID]kg.Value, error) {
	const qNode = `
		SELECT created_at, created_at_block, updated_at, updated_at_block
		FROM   entities WHERE id = $1`
	row := s.pool.QueryRow(ctx, qNode, string(id))

	var node kg.EntityNode
	node.ID = id
	if err := row.Scan(&node.Props.CreatedAt, &node.Props.CreatedAtBlock, &node.Props.UpdatedAt, &node.Props.UpdatedAtBlock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kg.EntityNode{}, nil, kg.ErrNotFound
		}
		return kg.EntityNode{}, nil, fmt.Errorf("postgres: find one: %w", err)
	}

	const qTypes = `SELECT type_id FROM entity_types WHERE entity_id = $1`
	typeRows, err := s.pool.Query(ctx, qTypes, string(id))
	if err != nil {
		return kg.EntityNode{}, nil, fmt.Errorf("postgres: find one: types: %w", err)
	}
	types, err := pgx.CollectRows(typeRows, func(row pgx.CollectableRow) (kg.EntityID, error) {
		var t string
		err := row.Scan(&t)
		return kg.EntityID(t), err
	})
	if err != nil {
		return kg.EntityNode{}, nil, fmt.Errorf("postgres: find one: types: %w", err)
	}
	node.Types = types

	const qAttrs = `
		SELECT attribute_id, value_raw, value_type, value_options
		FROM   triples
		WHERE  entity_id = $1 AND space_id = $2 AND min_version <= $3
		  AND  (max_version IS NULL OR max_version > $3)`
	attrRows, err := s.pool.Query(ctx, qAttrs, string(id), string(spaceID), string(version))
	if err != nil {
		return kg.EntityNode{}, nil, fmt.Errorf("postgres: find one: attributes: %w", err)
	}
	bag := make(map[kg.EntityID]kg.Value)
	for attrRows.Next() {
		var (
			attrID, raw, valType string
			optsJSON             []byte
		)
		if err := attrRows.Scan(&attrID, &raw, &valType, &optsJSON); err != nil {
			attrRows.Close()
			return kg.EntityNode{}, nil, fmt.Errorf("postgres: find one: scan attribute: %w", err)
		}
		opts, err := unmarshalOptions(optsJSON)
		if err != nil {
			attrRows.Close()
			return kg.EntityNode{}, nil, err
		}
		bag[kg.EntityID(attrID)] = kg.Value{Raw: raw, Type: kg.ValueType(valType), Options: opts}
	}
	if err := attrRows.Err(); err != nil {
		return kg.EntityNode{}, nil, fmt.Errorf("postgres: find one: attributes: %w", err)
	}

	return node, bag, nil
}

func (s *Store) CreateRelation(ctx context.Context, rel kg.Relation) error {
	const q = `
		INSERT INTO relations
		    (id, from_entity, to_entity, relation_type, index_key, space_id, min_version, created_at, created_at_block, updated_at, updated_at_block)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $8, $9)
		ON CONFLICT (id) DO NOTHING`
	_, err := s.pool.Exec(ctx, q,
		string(rel.ID), string(rel.FromEntity), string(rel.ToEntity), string(rel.RelationTypeEntity),
		rel.Index, string(rel.SpaceID), string(rel.MinVersion), rel.Props.CreatedAt, int64(rel.Props.CreatedAtBlock))
	if err != nil {
		return fmt.Errorf("postgres: create relation: %w", err)
	}
	return nil
}

func (s *Store) DeleteRelation(ctx context.Context, id kg.EntityID, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	const q = `
		UPDATE relations SET max_version = $1, updated_at = $2, updated_at_block = $3
		WHERE id = $4 AND space_id = $5 AND max_version IS NULL`
	if _, err := s.pool.Exec(ctx, q, string(version), meta.Timestamp, int64(meta.BlockNumber), string(id), string(spaceID)); err != nil {
		return fmt.Errorf("postgres: delete relation: %w", err)
	}
	return nil
}

func (s *Store) FindOneRelation(ctx context.Context, from, to, relationType kg.EntityID, spaceID kg.EntityID, version kg.Version) (kg.Relation, error) {
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	conditions := []string{
		"space_id = " + next(string(spaceID)),
		"min_version <= " + next(string(version)),
		"(max_version IS NULL OR max_version > " + next(string(version)) + ")",
	}
	if from != "" {
		conditions = append(conditions, "from_entity = "+next(string(from)))
	}
	if to != "" {
		conditions = append(conditions, "to_entity = "+next(string(to)))
	}
	if relationType != "" {
		conditions = append(conditions, "relation_type = "+next(string(relationType)))
	}

	q := "SELECT " + relationColumns + " FROM relations WHERE " + joinAnd(conditions) + " ORDER BY index_key LIMIT 1"
	row := s.pool.QueryRow(ctx, q, args...)
	rel, err := scanRelation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kg.Relation{}, kg.ErrNotFound
		}
		return kg.Relation{}, fmt.Errorf("postgres: find one relation: %w", err)
	}
	return rel, nil
}

func (s *Store) GetOutboundRelations(ctx context.Context, id kg.EntityID, spaceID kg.EntityID, version kg.Version, opts ...kg.RelationQueryOpt) ([]kg.Relation, error) {
	return s.getRelations(ctx, "from_entity", id, spaceID, version, opts...)
}

func (s *Store) GetInboundRelations(ctx context.Context, id kg.EntityID, spaceID kg.EntityID, version kg.Version, opts ...kg.RelationQueryOpt) ([]kg.Relation, error) {
	return s.getRelations(ctx, "to_entity", id, spaceID, version, opts...)
}

func (s *Store) getRelations(ctx context.Context, directionColumn string, id kg.EntityID, spaceID kg.EntityID, version kg.Version, opts ...kg.RelationQueryOpt) ([]kg.Relation, error) {
	relationTypes, limit, skip, spaceIDs := kg.ResolveRelationQueryOpts(opts)

	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	conditions := []string{
		directionColumn + " = " + next(string(id)),
		"min_version <= " + next(string(version)),
		"(max_version IS NULL OR max_version > " + next(string(version)) + ")",
	}
	if len(spaceIDs) > 0 {
		ids := make([]string, len(spaceIDs))
		for i, s := range spaceIDs {
			ids[i] = string(s)
		}
		conditions = append(conditions, "space_id = ANY("+next(ids)+"::text[])")
	} else {
		conditions = append(conditions, "space_id = "+next(string(spaceID)))
	}
	if len(relationTypes) > 0 {
		types := make([]string, len(relationTypes))
		for i, t := range relationTypes {
			types[i] = string(t)
		}
		conditions = append(conditions, "relation_type = ANY("+next(types)+"::text[])")
	}

	q := "SELECT " + relationColumns + " FROM relations WHERE " + joinAnd(conditions) + " ORDER BY index_key"
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if skip > 0 {
		args = append(args, skip)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: get relations: %w", err)
	}
	rels, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (kg.Relation, error) {
		return scanRelation(row)
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: get relations: %w", err)
	}
	return rels, nil
}

const relationColumns = "id, from_entity, to_entity, relation_type, index_key, space_id, min_version, max_version, created_at, created_at_block, updated_at, updated_at_block"

func scanRelation(row pgx.Row) (kg.Relation, error) {
	var (
		id, from, to, relType, indexKey, spaceID, minVersion string
		maxVersion                                           *string
		rel                                                  kg.Relation
	)
	if err := row.Scan(&id, &from, &to, &relType, &indexKey, &spaceID, &minVersion, &maxVersion,
		&rel.Props.CreatedAt, &rel.Props.CreatedAtBlock, &rel.Props.UpdatedAt, &rel.Props.UpdatedAtBlock); err != nil {
		return kg.Relation{}, err
	}
	rel.ID = kg.EntityID(id)
	rel.FromEntity = kg.EntityID(from)
	rel.ToEntity = kg.EntityID(to)
	rel.RelationTypeEntity = kg.EntityID(relType)
	rel.Index = indexKey
	rel.SpaceID = kg.EntityID(spaceID)
	rel.MinVersion = kg.Version(minVersion)
	if maxVersion != nil {
		v := kg.Version(*maxVersion)
		rel.MaxVersion = &v
	}
	return rel, nil
}

func joinAnd(conditions []string) string {
	out := conditions[0]
	for _, c := range conditions[1:] {
		out += " AND " + c
	}
	return out
}

// SentinelVersion and Cursor both read a live triple on kg.CursorEntityID in
// kg.IndexerSpaceID — the same (entity, attribute, space) triple shape every
// other piece of graph state is stored as, rather than a side table.
// SetSentinelVersion/SetCursor write through Store.SetAttribute, the same
// close-then-insert path InsertEntity/ApplyOps use for live edits. The
// sentinel is written at kg.RootVersion; the cursor is written at its
// block's own version, so each block's write closes the previous cursor
// triple.

func (s *Store) SentinelVersion(ctx context.Context) (string, error) {
	return s.liveTripleValue(ctx, kg.CursorEntityID, kg.VersionAttribute, kg.IndexerSpaceID)
}

func (s *Store) SetSentinelVersion(ctx context.Context, version string, meta kg.BlockMetadata) error {
	if err := s.SetAttribute(ctx, kg.CursorEntityID, kg.VersionAttribute, kg.NewTextValue(version), meta, kg.IndexerSpaceID, kg.RootVersion); err != nil {
		return fmt.Errorf("postgres: set sentinel version: %w", err)
	}
	return nil
}

func (s *Store) Cursor(ctx context.Context) (string, error) {
	return s.liveTripleValue(ctx, kg.CursorEntityID, kg.CursorValueAttribute, kg.IndexerSpaceID)
}

func (s *Store) SetCursor(ctx context.Context, cursor string, meta kg.BlockMetadata) error {
	if err := s.SetAttribute(ctx, kg.CursorEntityID, kg.CursorValueAttribute, kg.NewTextValue(cursor), meta, kg.IndexerSpaceID, kg.BlockVersion(meta.BlockNumber)); err != nil {
		return fmt.Errorf("postgres: set cursor: %w", err)
	}
	return nil
}

// liveTripleValue reads a single live triple's raw value directly off the
// pool, for callers (SentinelVersion, Cursor) that want one attribute's
// value rather than FindOne's full entity-node-plus-attribute-bag shape.
func (s *Store) liveTripleValue(ctx context.Context, id, attr, spaceID kg.EntityID) (string, error) {
	const q = `
		SELECT value_raw
		FROM   triples
		WHERE  entity_id = $1 AND attribute_id = $2 AND space_id = $3 AND max_version IS NULL`
	var raw string
	if err := s.pool.QueryRow(ctx, q, string(id), string(attr), string(spaceID)).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", kg.ErrNotFound
		}
		return "", fmt.Errorf("postgres: live triple value: %w", err)
	}
	return raw, nil
}

func (s *Store) ResetAll(ctx context.Context) error {
	// The embedding dimension is read back from the existing attribute_nodes
	// column so Migrate can recreate the schema at the same width.
	var dims int
	const qDims = `SELECT atttypmod FROM pg_attribute WHERE attrelid = 'attribute_nodes'::regclass AND attname = 'embedding'`
	if err := s.pool.QueryRow(ctx, qDims).Scan(&dims); err != nil {
		return fmt.Errorf("postgres: reset all: read embedding dimension: %w", err)
	}
	if _, err := s.pool.Exec(ctx, dropAllTables); err != nil {
		return fmt.Errorf("postgres: reset all: %w", err)
	}
	if err := Migrate(ctx, s.pool, dims); err != nil {
		return fmt.Errorf("postgres: reset all: %w", err)
	}
	return nil
}

func marshalOptions(o kg.ValueOptions) ([]byte, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal value options: %w", err)
	}
	return b, nil
}

func unmarshalOptions(b []byte) (kg.ValueOptions, error) {
	if len(b) == 0 {
		return kg.ValueOptions{}, nil
	}
	var o kg.ValueOptions
	if err := json.Unmarshal(b, &o); err != nil {
		return kg.ValueOptions{}, fmt.Errorf("unmarshal value options: %w", err)
	}
	return o, nil
}
