package repository

import (
	"context"
	"sync"

	"github.com/atinyakov/itemgate/internal/models"
)

// MemItemRepository is the volatile, process-lifetime item collection.
// Reads take the shared lock and writes the exclusive one, so it is safe
// for concurrent use by any number of listeners.
type MemItemRepository struct {
	mu     sync.RWMutex
	items  map[int64]models.Item
	lastID int64
}

// NewMemItemRepository returns an empty repository. The first created item
// receives identifier 1.
func NewMemItemRepository() *MemItemRepository {
	return &MemItemRepository{items: make(map[int64]models.Item)}
}

// Create stores a copy of item under the next identifier. Identifiers grow
// strictly and are never handed out twice, even after deletes.
func (r *MemItemRepository) Create(_ context.Context, item models.Item) (models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	id := r.lastID
	r.items[id] = item.Clone()
	return models.Record{ID: id, Item: item.Clone()}, nil
}

// List returns a snapshot of the whole collection. The returned map and its
// items may be modified freely by the caller.
func (r *MemItemRepository) List(_ context.Context) (map[int64]models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int64]models.Item, len(r.items))
	for id, item := range r.items {
		out[id] = item.Clone()
	}
	return out, nil
}

// Get returns a copy of the item stored under id, or models.ErrNotFound.
func (r *MemItemRepository) Get(_ context.Context, id int64) (models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return item.Clone(), nil
}

// Replace overwrites the item stored under id. Fields of the previous value
// are not merged.
func (r *MemItemRepository) Replace(_ context.Context, id int64, item models.Item) (models.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return models.Record{}, models.ErrNotFound
	}
	r.items[id] = item.Clone()
	return models.Record{ID: id, Item: item.Clone()}, nil
}

// Delete removes the item stored under id, or returns models.ErrNotFound.
func (r *MemItemRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
