package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/kgraph/sink/pkg/kg"
	"github.com/kgraph/sink/pkg/kg/postgres"
)

const testEmbeddingDim = 4

// testDSN returns the test database DSN from the environment, or skips the
// test if KGSINK_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("KGSINK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("KGSINK_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}
	return dsn
}

// newTestStore creates a fresh postgres.Store with a clean schema.
func newTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := testDSN(t)
	ctx := context.Background()

	cleanPool := mustPool(t, ctx, dsn)
	t.Cleanup(cleanPool.Close)
	dropSchema(t, ctx, cleanPool)

	store, err := postgres.NewStore(ctx, dsn, testEmbeddingDim)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func mustPool(t *testing.T, ctx context.Context, dsn string) *pgxpool.Pool {
	t.Helper()
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_ = pgxvec.RegisterTypes(ctx, conn)
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	return pool
}

func dropSchema(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS entity_types CASCADE",
		"DROP TABLE IF EXISTS entities CASCADE",
		"DROP TABLE IF EXISTS triples CASCADE",
		"DROP TABLE IF EXISTS relations CASCADE",
		"DROP TABLE IF EXISTS attribute_nodes CASCADE",
	} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("dropSchema %q: %v", stmt, err)
		}
	}
}

func testMeta(block uint64) kg.BlockMetadata {
	return kg.BlockMetadata{Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), BlockNumber: block}
}

func TestStore_InsertEntityAndFindOne(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := kg.EntityID("entity-1")
	space := kg.EntityID("space-1")
	attrs := map[kg.EntityID]kg.Value{
		"attr:name": kg.NewTextValue("Alice"),
	}

	if err := store.InsertEntity(ctx, id, []kg.EntityID{"type:person"}, attrs, testMeta(1), space, "1"); err != nil {
		t.Fatalf("InsertEntity: %v", err)
	}

	node, bag, err := store.FindOne(ctx, id, space, "1")
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if !node.HasType("type:person") {
		t.Errorf("expected node to have type:person, got %v", node.Types)
	}
	if bag["attr:name"].Raw != "Alice" {
		t.Errorf("expected attr:name=Alice, got %q", bag["attr:name"].Raw)
	}
}

func TestStore_FindOne_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.FindOne(ctx, "missing", "space-1", "1")
	if err != kg.ErrNotFound {
		t.Fatalf("expected kg.ErrNotFound, got %v", err)
	}
}

func TestStore_SetAttribute_ClosesOldTripleAndOpensNew(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id, space := kg.EntityID("entity-1"), kg.EntityID("space-1")

	if err := store.InsertEntity(ctx, id, nil, nil, testMeta(1), space, "1"); err != nil {
		t.Fatalf("InsertEntity: %v", err)
	}
	if err := store.SetAttribute(ctx, id, "attr:name", kg.NewTextValue("v1"), testMeta(1), space, "1"); err != nil {
		t.Fatalf("SetAttribute v1: %v", err)
	}
	if err := store.SetAttribute(ctx, id, "attr:name", kg.NewTextValue("v2"), testMeta(2), space, "2"); err != nil {
		t.Fatalf("SetAttribute v2: %v", err)
	}

	_, bagAtV1, err := store.FindOne(ctx, id, space, "1")
	if err != nil {
		t.Fatalf("FindOne at v1: %v", err)
	}
	if bagAtV1["attr:name"].Raw != "v1" {
		t.Errorf("expected v1 at version 1, got %q", bagAtV1["attr:name"].Raw)
	}

	_, bagAtV2, err := store.FindOne(ctx, id, space, "2")
	if err != nil {
		t.Fatalf("FindOne at v2: %v", err)
	}
	if bagAtV2["attr:name"].Raw != "v2" {
		t.Errorf("expected v2 at version 2, got %q", bagAtV2["attr:name"].Raw)
	}
}

func TestStore_DeleteAttribute(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id, space := kg.EntityID("entity-1"), kg.EntityID("space-1")

	if err := store.InsertEntity(ctx, id, nil, map[kg.EntityID]kg.Value{"attr:name": kg.NewTextValue("v1")}, testMeta(1), space, "1"); err != nil {
		t.Fatalf("InsertEntity: %v", err)
	}
	if err := store.DeleteAttribute(ctx, id, "attr:name", testMeta(2), space, "2"); err != nil {
		t.Fatalf("DeleteAttribute: %v", err)
	}

	_, bag, err := store.FindOne(ctx, id, space, "2")
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if _, ok := bag["attr:name"]; ok {
		t.Error("expected attr:name to be absent after delete")
	}

	_, bagAtV1, err := store.FindOne(ctx, id, space, "1")
	if err != nil {
		t.Fatalf("FindOne at v1: %v", err)
	}
	if bagAtV1["attr:name"].Raw != "v1" {
		t.Error("expected attr:name to still be visible at version 1 (bi-temporal history preserved)")
	}
}

func TestStore_RelationsAndOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	space := kg.EntityID("space-1")

	rels := []kg.Relation{
		{ID: "r1", FromEntity: "a", ToEntity: "b", RelationTypeEntity: "likes", Index: "a1", SpaceID: space, MinVersion: "1", Props: kg.NewSystemProperties(testMeta(1))},
		{ID: "r2", FromEntity: "a", ToEntity: "c", RelationTypeEntity: "likes", Index: "a0", SpaceID: space, MinVersion: "1", Props: kg.NewSystemProperties(testMeta(1))},
	}
	for _, r := range rels {
		if err := store.CreateRelation(ctx, r); err != nil {
			t.Fatalf("CreateRelation %s: %v", r.ID, err)
		}
	}

	out, err := store.GetOutboundRelations(ctx, "a", space, "1")
	if err != nil {
		t.Fatalf("GetOutboundRelations: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 outbound relations, got %d", len(out))
	}
	if out[0].ID != "r2" || out[1].ID != "r1" {
		t.Errorf("expected relations ordered by Index (r2 before r1), got %s, %s", out[0].ID, out[1].ID)
	}

	if err := store.DeleteRelation(ctx, "r1", testMeta(2), space, "2"); err != nil {
		t.Fatalf("DeleteRelation: %v", err)
	}
	outAfter, err := store.GetOutboundRelations(ctx, "a", space, "2")
	if err != nil {
		t.Fatalf("GetOutboundRelations after delete: %v", err)
	}
	if len(outAfter) != 1 || outAfter[0].ID != "r2" {
		t.Fatalf("expected only r2 to remain live, got %v", outAfter)
	}
}

func TestStore_GetOutboundRelations_WithSpaceIDs_MergesAcrossSpaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	spaceA, spaceB, spaceC := kg.EntityID("space-a"), kg.EntityID("space-b"), kg.EntityID("space-c")

	rels := []kg.Relation{
		{ID: "a1", FromEntity: "e1", ToEntity: "t1", RelationTypeEntity: "likes", Index: "a0", SpaceID: spaceA, MinVersion: "1", Props: kg.NewSystemProperties(testMeta(1))},
		{ID: "b1", FromEntity: "e1", ToEntity: "t2", RelationTypeEntity: "likes", Index: "a1", SpaceID: spaceB, MinVersion: "1", Props: kg.NewSystemProperties(testMeta(1))},
		{ID: "b2", FromEntity: "e1", ToEntity: "t3", RelationTypeEntity: "likes", Index: "a2", SpaceID: spaceB, MinVersion: "1", Props: kg.NewSystemProperties(testMeta(1))},
		{ID: "c1", FromEntity: "e1", ToEntity: "t4", RelationTypeEntity: "likes", Index: "a3", SpaceID: spaceC, MinVersion: "1", Props: kg.NewSystemProperties(testMeta(1))},
	}
	for _, r := range rels {
		if err := store.CreateRelation(ctx, r); err != nil {
			t.Fatalf("CreateRelation %s: %v", r.ID, err)
		}
	}

	out, err := store.GetOutboundRelations(ctx, "e1", spaceA, "1", kg.WithSpaceIDs([]kg.EntityID{spaceA, spaceB}))
	if err != nil {
		t.Fatalf("GetOutboundRelations: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 merged relations from space-a and space-b, got %d (%v)", len(out), out)
	}
	for _, id := range []string{"a1", "b1", "b2"} {
		found := false
		for _, r := range out {
			if string(r.ID) == id {
				found = true
			}
		}
		if !found {
			t.Errorf("expected relation %s in merged result, got %v", id, out)
		}
	}
	for _, r := range out {
		if r.ID == "c1" {
			t.Errorf("space-c relation leaked into a space-a/space-b query: %v", out)
		}
	}
}

func TestStore_CursorAndSentinel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Cursor(ctx); err != kg.ErrNotFound {
		t.Fatalf("expected ErrNotFound before first cursor write, got %v", err)
	}
	if err := store.SetCursor(ctx, "cursor-abc", testMeta(10)); err != nil {
		t.Fatalf("SetCursor: %v", err)
	}
	got, err := store.Cursor(ctx)
	if err != nil {
		t.Fatalf("Cursor: %v", err)
	}
	if got != "cursor-abc" {
		t.Errorf("expected cursor-abc, got %q", got)
	}

	if _, err := store.SentinelVersion(ctx); err != kg.ErrNotFound {
		t.Fatalf("expected ErrNotFound before first sentinel write, got %v", err)
	}
	if err := store.SetSentinelVersion(ctx, "catalogue-v1", testMeta(0)); err != nil {
		t.Fatalf("SetSentinelVersion: %v", err)
	}
	sv, err := store.SentinelVersion(ctx)
	if err != nil {
		t.Fatalf("SentinelVersion: %v", err)
	}
	if sv != "catalogue-v1" {
		t.Errorf("expected catalogue-v1, got %q", sv)
	}
}

func TestStore_ResetAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetCursor(ctx, "cursor-1", testMeta(1)); err != nil {
		t.Fatalf("SetCursor: %v", err)
	}
	if err := store.ResetAll(ctx); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	if err := postgres.Migrate(ctx, store.Pool(), testEmbeddingDim); err != nil {
		t.Fatalf("re-migrate after ResetAll: %v", err)
	}
	if _, err := store.Cursor(ctx); err != kg.ErrNotFound {
		t.Fatalf("expected ErrNotFound after ResetAll, got %v", err)
	}
}
