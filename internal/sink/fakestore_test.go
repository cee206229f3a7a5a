package sink

import (
	"context"
	"sync"

	"github.com/kgraph/sink/pkg/kg"
)

// fakeStore is a minimal in-memory kg.Store double exercising exactly what
// dispatchBlock's handlers and Sink's cursor bookkeeping call.
type fakeStore struct {
	kg.Store

	mu        sync.Mutex
	entities  map[kg.EntityID]map[kg.EntityID]kg.Value
	relations []kg.Relation
	cursor    string
	hasCursor bool

	failInsert bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{entities: map[kg.EntityID]map[kg.EntityID]kg.Value{}}
}

func (f *fakeStore) InsertEntity(ctx context.Context, id kg.EntityID, types []kg.EntityID, attrs map[kg.EntityID]kg.Value, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return errInsertFailed
	}
	bag := map[kg.EntityID]kg.Value{}
	for k, v := range attrs {
		bag[k] = v
	}
	f.entities[id] = bag
	return nil
}

func (f *fakeStore) FindOne(ctx context.Context, id kg.EntityID, spaceID kg.EntityID, version kg.Version) (kg.EntityNode, map[kg.EntityID]kg.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bag, ok := f.entities[id]
	if !ok {
		return kg.EntityNode{}, nil, kg.ErrNotFound
	}
	return kg.EntityNode{ID: id}, bag, nil
}

func (f *fakeStore) SetAttribute(ctx context.Context, id, attr kg.EntityID, value kg.Value, meta kg.BlockMetadata, spaceID kg.EntityID, version kg.Version) error {
	f.mu.Lock()
	defer f.mu.Unlock()
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

func (f *fakeStore) CreateRelation(ctx context.Context, rel kg.Relation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relations = append(f.relations, rel)
	return nil
}

func (f *fakeStore) FindOneRelation(ctx context.Context, from, to, relationType kg.EntityID, spaceID kg.EntityID, version kg.Version) (kg.Relation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.relations {
		if from != "" && r.FromEntity != from {
			continue
		}
		if relationType != "" && r.RelationTypeEntity != relationType {
			continue
		}
		return r, nil
	}
	return kg.Relation{}, kg.ErrNotFound
}

func (f *fakeStore) Cursor(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasCursor {
		return "", kg.ErrNotFound
	}
	return f.cursor, nil
}

func (f *fakeStore) SetCursor(ctx context.Context, cursor string, meta kg.BlockMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursor = cursor
	f.hasCursor = true
	return nil
}

func (f *fakeStore) lastCursor() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor, f.hasCursor
}
