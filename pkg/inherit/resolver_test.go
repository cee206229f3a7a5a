package inherit

import (
	"context"
	"testing"

	"github.com/kgraph/sink/pkg/kg"
)

// fakeStore implements kg.Store with just enough behaviour for resolver
// tests: per-(entity,space) attribute bags and per-(entity,space) outbound
// relation lists, both keyed at a single implicit version.
type fakeStore struct {
	kg.Store // nil embed: panics if a test exercises an unimplemented method

	bags      map[kg.EntityID]map[kg.EntityID]map[kg.EntityID]kg.Value // space -> entity -> bag
	relations map[kg.EntityID]map[kg.EntityID][]kg.Relation            // space -> entity -> relations
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bags:      map[kg.EntityID]map[kg.EntityID]map[kg.EntityID]kg.Value{},
		relations: map[kg.EntityID]map[kg.EntityID][]kg.Relation{},
	}
}

func (f *fakeStore) put(space, entity kg.EntityID, bag map[kg.EntityID]kg.Value) {
	if f.bags[space] == nil {
		f.bags[space] = map[kg.EntityID]map[kg.EntityID]kg.Value{}
	}
	f.bags[space][entity] = bag
}

func (f *fakeStore) putRelations(space, entity kg.EntityID, rels []kg.Relation) {
	if f.relations[space] == nil {
		f.relations[space] = map[kg.EntityID][]kg.Relation{}
	}
	f.relations[space][entity] = rels
}

func (f *fakeStore) FindOne(ctx context.Context, id kg.EntityID, spaceID kg.EntityID, version kg.Version) (kg.EntityNode, map[kg.EntityID]kg.Value, error) {
	bag, ok := f.bags[spaceID][id]
	if !ok {
		return kg.EntityNode{}, nil, kg.ErrNotFound
	}
	return kg.EntityNode{ID: id}, bag, nil
}

func (f *fakeStore) GetOutboundRelations(ctx context.Context, id kg.EntityID, spaceID kg.EntityID, version kg.Version, opts ...kg.RelationQueryOpt) ([]kg.Relation, error) {
	return f.relations[spaceID][id], nil
}

const (
	testIndexerSpace kg.EntityID = "indexer-space"
	testRootSpace    kg.EntityID = "root-space"
	testChildSpace   kg.EntityID = "child-space"
	testProperty     kg.EntityID = "attr:test-property"
	testEntity       kg.EntityID = "entity:e1"
)

func TestResolver_Direction_FromTriple(t *testing.T) {
	store := newFakeStore()
	store.put(testIndexerSpace, testProperty, map[kg.EntityID]kg.Value{
		kg.AttrAggregationDirection: kg.NewTextValue("Up"),
	})
	r := NewResolver(store, nil, testIndexerSpace)

	d, ok, err := r.Direction(context.Background(), testProperty)
	if err != nil {
		t.Fatalf("Direction: %v", err)
	}
	if !ok || d != Up {
		t.Fatalf("expected (Up, true), got (%v, %v)", d, ok)
	}
}

func TestResolver_Direction_FallsBackToBootstrapTable(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, nil, testIndexerSpace)

	d, ok, err := r.Direction(context.Background(), kg.AttrNetwork)
	if err != nil {
		t.Fatalf("Direction: %v", err)
	}
	if !ok || d != Down {
		t.Fatalf("expected bootstrap default (Down, true), got (%v, %v)", d, ok)
	}
}

func TestResolver_Direction_AbsentEverywhere(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, nil, testIndexerSpace)

	_, ok, err := r.Direction(context.Background(), testProperty)
	if err != nil {
		t.Fatalf("Direction: %v", err)
	}
	if ok {
		t.Fatalf("expected no direction defined")
	}
}

func TestResolver_ResolveProperty_Strict_OnlySearchesGivenSpace(t *testing.T) {
	store := newFakeStore()
	store.put(testRootSpace, testEntity, map[kg.EntityID]kg.Value{
		testProperty: kg.NewTextValue("root-value"),
	})
	r := NewResolver(store, nil, testIndexerSpace)

	_, _, err := r.ResolveProperty(context.Background(), testProperty, testEntity, testChildSpace, kg.RootVersion, true)
	if err != kg.ErrNotFound {
		t.Fatalf("expected ErrNotFound under strict search of a space with no value, got %v", err)
	}
}

func TestResolver_ResolveProperty_NonStrict_NearestWins(t *testing.T) {
	store := newFakeStore()
	store.put(testIndexerSpace, testProperty, map[kg.EntityID]kg.Value{
		kg.AttrAggregationDirection: kg.NewTextValue("Up"),
	})
	store.put(testRootSpace, testEntity, map[kg.EntityID]kg.Value{
		testProperty: kg.NewTextValue("root-value"),
	})
	store.put(testChildSpace, testEntity, map[kg.EntityID]kg.Value{
		testProperty: kg.NewTextValue("child-value"),
	})

	r := &resolverWithFixedCandidates{
		Resolver:   NewResolver(store, nil, testIndexerSpace),
		candidates: []kg.EntityID{testChildSpace, testRootSpace},
	}
	v, wonSpace, err := r.resolveProperty(context.Background(), testProperty, testEntity, kg.RootVersion)
	if err != nil {
		t.Fatalf("ResolveProperty: %v", err)
	}
	if v.Raw != "child-value" || wonSpace != testChildSpace {
		t.Fatalf("expected nearest space to win, got %q from %q", v.Raw, wonSpace)
	}
}

func TestResolver_ResolveProperty_NonStrict_FallsThroughToFartherSpace(t *testing.T) {
	store := newFakeStore()
	store.put(testRootSpace, testEntity, map[kg.EntityID]kg.Value{
		testProperty: kg.NewTextValue("root-value"),
	})

	r := &resolverWithFixedCandidates{
		Resolver:   NewResolver(store, nil, testIndexerSpace),
		candidates: []kg.EntityID{testChildSpace, testRootSpace},
	}
	v, wonSpace, err := r.resolveProperty(context.Background(), testProperty, testEntity, kg.RootVersion)
	if err != nil {
		t.Fatalf("ResolveProperty: %v", err)
	}
	if v.Raw != "root-value" || wonSpace != testRootSpace {
		t.Fatalf("expected fallthrough to root space, got %q from %q", v.Raw, wonSpace)
	}
}

func TestResolver_ResolveProperty_NonStrict_NotFoundAnywhere(t *testing.T) {
	store := newFakeStore()
	r := &resolverWithFixedCandidates{
		Resolver:   NewResolver(store, nil, testIndexerSpace),
		candidates: []kg.EntityID{testChildSpace, testRootSpace},
	}
	_, _, err := r.resolveProperty(context.Background(), testProperty, testEntity, kg.RootVersion)
	if err != kg.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolver_ResolveRelations_Strict(t *testing.T) {
	store := newFakeStore()
	rel := kg.Relation{ID: "r1", FromEntity: testEntity, ToEntity: "e2"}
	store.putRelations(testChildSpace, testEntity, []kg.Relation{rel})
	r := NewResolver(store, nil, testIndexerSpace)

	rels, err := r.ResolveRelations(context.Background(), testProperty, testEntity, testChildSpace, kg.RootVersion, true)
	if err != nil {
		t.Fatalf("ResolveRelations: %v", err)
	}
	if len(rels) != 1 || rels[0].ID != "r1" {
		t.Fatalf("expected the one relation in the given space, got %v", rels)
	}
}

func TestResolver_ResolveRelations_NoDirection_FallsBackToGivenSpace(t *testing.T) {
	store := newFakeStore()
	rel := kg.Relation{ID: "r1", FromEntity: testEntity, ToEntity: "e2"}
	store.putRelations(testChildSpace, testEntity, []kg.Relation{rel})
	r := NewResolver(store, nil, testIndexerSpace)

	rels, err := r.ResolveRelations(context.Background(), testProperty, testEntity, testChildSpace, kg.RootVersion, false)
	if err != nil {
		t.Fatalf("ResolveRelations: %v", err)
	}
	if len(rels) != 1 || rels[0].ID != "r1" {
		t.Fatalf("expected relations from the given space when no direction is defined, got %v", rels)
	}
}

// resolverWithFixedCandidates bypasses CandidateSpaces' pgxpool-backed BFS
// (pool is nil in these tests) by hardcoding the candidate order, exercising
// only the read-loop half of ResolveProperty.
type resolverWithFixedCandidates struct {
	*Resolver
	candidates []kg.EntityID
}

func (r *resolverWithFixedCandidates) resolveProperty(ctx context.Context, property, entity kg.EntityID, version kg.Version) (kg.Value, kg.EntityID, error) {
	for _, s := range r.candidates {
		_, bag, err := r.Store.FindOne(ctx, entity, s, version)
		if err != nil {
			if err == kg.ErrNotFound {
				continue
			}
			return kg.Value{}, "", err
		}
		if v, ok := bag[property]; ok {
			return v, s, nil
		}
	}
	return kg.Value{}, "", kg.ErrNotFound
}
