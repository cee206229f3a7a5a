package events

import (
	"context"

	"github.com/kgraph/sink/pkg/kg"
)

// fakeStore is a minimal in-memory kg.Store double, following the
// nil-embedded-interface convention used by pkg/inherit's and
// internal/bootstrap's test doubles: methods this package's handlers never
// call panic on the embedded nil Store rather than silently succeeding.
type fakeStore struct {
	kg.Store

	entities  map[kg.EntityID]map[kg.EntityID]kg.Value
	types     map[kg.EntityID][]kg.EntityID
	relations []kg.Relation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entities: map[kg.EntityID]map[kg.EntityID]kg.Value{},
		types:    map[kg.EntityID][]kg.EntityID{},
	}
}

func (f *fakeStore) InsertEntity(ctx context.Context, id kg.EntityID, types []kg.EntityID, attrs map[kg.EntityID]kg.Value, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	bag := map[kg.EntityID]kg.Value{}
	for k, v := range attrs {
		bag[k] = v
	}
	f.entities[id] = bag
	f.types[id] = types
	return nil
}

func (f *fakeStore) FindOne(ctx context.Context, id kg.EntityID, spaceID kg.EntityID, version kg.Version) (kg.EntityNode, map[kg.EntityID]kg.Value, error) {
	bag, ok := f.entities[id]
	if !ok {
		return kg.EntityNode{}, nil, kg.ErrNotFound
	}
	return kg.EntityNode{ID: id, Types: f.types[id]}, bag, nil
}

func (f *fakeStore) SetAttribute(ctx context.Context, id, attr kg.EntityID, value kg.Value, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	if f.entities[id] == nil {
		f.entities[id] = map[kg.EntityID]kg.Value{}
	}
	f.entities[id][attr] = value
	return nil
}

func (f *fakeStore) SetAttributes(ctx context.Context, id kg.EntityID, bag map[kg.EntityID]kg.Value, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	for attr, v := range bag {
		if err := f.SetAttribute(ctx, id, attr, v, meta, spaceID, version); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) DeleteAttribute(ctx context.Context, id, attr kg.EntityID, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	delete(f.entities[id], attr)
	return nil
}

func (f *fakeStore) CreateRelation(ctx context.Context, rel kg.Relation) error {
	f.relations = append(f.relations, rel)
	return nil
}

func (f *fakeStore) DeleteRelation(ctx context.Context, id kg.EntityID, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	for i, r := range f.relations {
		if r.ID == id && r.IsLive() {
			f.relations[i] = r.Close(version)
			return nil
		}
	}
	return kg.ErrNotFound
}

func (f *fakeStore) FindOneRelation(ctx context.Context, from, to, relationType kg.EntityID, spaceID kg.EntityID, version kg.Version) (kg.Relation, error) {
	for _, r := range f.relations {
		if !r.IsLive() {
			continue
		}
		if from != "" && r.FromEntity != from {
			continue
		}
		if to != "" && r.ToEntity != to {
			continue
		}
		if relationType != "" && r.RelationTypeEntity != relationType {
			continue
		}
		return r, nil
	}
	return kg.Relation{}, kg.ErrNotFound
}

func (f *fakeStore) liveRelationsByType(relationType kg.EntityID) []kg.Relation {
	var out []kg.Relation
	for _, r := range f.relations {
		if r.IsLive() && r.RelationTypeEntity == relationType {
			out = append(out, r)
		}
	}
	return out
}
