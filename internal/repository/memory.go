package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/octobees/campsites/api/internal/query"
)

// MemoryRepository keeps rows in a map and evaluates filters in process with
// the same semantics as the SQL translation.
type MemoryRepository[T any] struct {
	schema *query.Schema[T]

	mu    sync.RWMutex
	items map[uuid.UUID]T
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository[T any](schema *query.Schema[T]) *MemoryRepository[T] {
	return &MemoryRepository[T]{schema: schema, items: make(map[uuid.UUID]T)}
}

// Get returns a copy of the stored row.
func (r *MemoryRepository[T]) Get(_ context.Context, id uuid.UUID) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

// List filters, sorts and pages the stored rows.
func (r *MemoryRepository[T]) List(_ context.Context, filter query.Filter) ([]T, int, error) {
	r.mu.RLock()
	all := make([]T, 0, len(r.items))
	for _, item := range r.items {
		all = append(all, item)
	}
	r.mu.RUnlock()

	page, total := r.schema.Apply(all, filter)
	return page, total, nil
}

// Create stores one row; an existing id is a write conflict.
func (r *MemoryRepository[T]) Create(_ context.Context, item *T) error {
	if item == nil {
		return fmt.Errorf("%s payload is nil", r.schema.Table)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.schema.ID(item)
	if _, exists := r.items[id]; exists {
		return fmt.Errorf("insert %s: %w: duplicate id %s", r.schema.Table, ErrWriteConflict, id)
	}
	r.items[id] = *item
	return nil
}

// BulkCreate stores all items or none of them.
func (r *MemoryRepository[T]) BulkCreate(_ context.Context, items []T) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]struct{}, len(items))
	for i := range items {
		id := r.schema.ID(&items[i])
		if _, exists := r.items[id]; exists {
			return 0, fmt.Errorf("bulk insert %s: %w: duplicate id %s", r.schema.Table, ErrWriteConflict, id)
		}
		if _, dup := seen[id]; dup {
			return 0, fmt.Errorf("bulk insert %s: %w: duplicate id %s", r.schema.Table, ErrWriteConflict, id)
		}
		seen[id] = struct{}{}
	}
	for i := range items {
		r.items[r.schema.ID(&items[i])] = items[i]
	}
	return len(items), nil
}

// Update replaces the stored row. The stored id is kept regardless of the
// id carried by item.
func (r *MemoryRepository[T]) Update(_ context.Context, id uuid.UUID, item *T) (*T, error) {
	if item == nil {
		return nil, fmt.Errorf("%s payload is nil", r.schema.Table)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return nil, ErrNotFound
	}
	if r.schema.ID(item) != id {
		return nil, fmt.Errorf("update %s: id mismatch %s != %s", r.schema.Table, r.schema.ID(item), id)
	}
	r.items[id] = *item
	stored := *item
	return &stored, nil
}

// Delete removes a row by id.
func (r *MemoryRepository[T]) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}
