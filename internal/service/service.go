package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/octobees/campsites/api/internal/entity"
	"github.com/octobees/campsites/api/internal/query"
	"github.com/octobees/campsites/api/internal/repository"
)

// Page is one window of a filtered list plus the number of matches ignoring
// limit and offset.
type Page[T any] struct {
	Items           []T `json:"items"`
	NumTotalResults int `json:"num_total_results"`
}

// Service implements get/list/create/update/delete for one entity type.
type Service[T any, P entity.Record[T]] struct {
	repo   repository.Repository[T]
	schema *query.Schema[T]
	newID  func() uuid.UUID
}

// NewService wires a generic service over repo.
func NewService[T any, P entity.Record[T]](repo repository.Repository[T], schema *query.Schema[T]) *Service[T, P] {
	return &Service[T, P]{repo: repo, schema: schema, newID: uuid.New}
}

// Schema returns the filter table used by List.
func (s *Service[T, P]) Schema() *query.Schema[T] {
	return s.schema
}

// Get returns one record or repository.ErrNotFound.
func (s *Service[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.repo.Get(ctx, id)
}

// List applies filter and returns the requested page.
func (s *Service[T, P]) List(ctx context.Context, filter query.Filter) (Page[T], error) {
	if filter.PartialDistance {
		zerolog.Ctx(ctx).Debug().Str("table", s.schema.Table).Msg("incomplete distance parameters ignored")
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return Page[T]{}, err
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, NumTotalResults: total}, nil
}

// Create assigns a fresh id, derives geo and inserts the record.
func (s *Service[T, P]) Create(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, fmt.Errorf("%s payload is nil", s.schema.Table)
	}
	p := P(item)
	p.SetIdentity(s.newID())
	if err := p.Prepare(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// BulkCreate inserts all items in one transaction. Each item gets a fresh id.
func (s *Service[T, P]) BulkCreate(ctx context.Context, items []T) (int, error) {
	for i := range items {
		p := P(&items[i])
		p.SetIdentity(s.newID())
		if err := p.Prepare(); err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return s.repo.BulkCreate(ctx, items)
}

// Update replaces every field of the record with id. An id carried by item is
// ignored.
func (s *Service[T, P]) Update(ctx context.Context, id uuid.UUID, item *T) (*T, error) {
	if item == nil {
		return nil, fmt.Errorf("%s payload is nil", s.schema.Table)
	}
	p := P(item)
	p.SetIdentity(id)
	if err := p.Prepare(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, item)
}

// Delete removes the record with id.
func (s *Service[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
