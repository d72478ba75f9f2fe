package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/atinyakov/itemgate/internal/models"
)

// ItemRepository defines the storage operations needed by the ItemService.
type ItemRepository interface {
	// Create stores item under a fresh identifier.
	Create(ctx context.Context, item models.Item) (models.Record, error)
	// List returns a snapshot of all stored items keyed by identifier.
	List(ctx context.Context) (map[int64]models.Item, error)
	// Get returns the item stored under id.
	Get(ctx context.Context, id int64) (models.Item, error)
	// Replace overwrites the item stored under id.
	Replace(ctx context.Context, id int64, item models.Item) (models.Record, error)
	// Delete removes the item stored under id.
	Delete(ctx context.Context, id int64) error
}

// ItemService validates raw payloads and forwards them to the repository.
type ItemService struct {
	// repo is the underlying item collection.
	repo ItemRepository
}

// NewItemService constructs an ItemService over repo.
func NewItemService(repo ItemRepository) *ItemService {
	return &ItemService{repo: repo}
}

// Create decodes body and stores it as a new item.
func (s *ItemService) Create(ctx context.Context, body []byte) (models.Record, error) {
	item, err := DecodeItem(body)
	if err != nil {
		return models.Record{}, err
	}
	return s.repo.Create(ctx, item)
}

// List returns every stored item.
func (s *ItemService) List(ctx context.Context) (map[int64]models.Item, error) {
	return s.repo.List(ctx)
}

// Get returns the item stored under id.
func (s *ItemService) Get(ctx context.Context, id int64) (models.Item, error) {
	return s.repo.Get(ctx, id)
}

// Replace overwrites the item stored under id with body. A missing id is
// reported before the body is inspected.
func (s *ItemService) Replace(ctx context.Context, id int64, body []byte) (models.Record, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return models.Record{}, err
	}
	item, err := DecodeItem(body)
	if err != nil {
		return models.Record{}, err
	}
	return s.repo.Replace(ctx, id, item)
}

// Delete removes the item stored under id.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// DecodeItem parses body as a single non-empty JSON object. Empty bodies,
// malformed JSON, trailing data, non-object values and {} all yield
// models.ErrInvalidPayload. Numbers are kept as json.Number so they
// re-encode exactly.
func DecodeItem(body []byte) (models.Item, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("empty body: %w", models.ErrInvalidPayload)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var item models.Item
	if err := dec.Decode(&item); err != nil {
		return nil, fmt.Errorf("decode item: %w", models.ErrInvalidPayload)
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after item: %w", models.ErrInvalidPayload)
	}
	if len(item) == 0 {
		return nil, fmt.Errorf("item has no fields: %w", models.ErrInvalidPayload)
	}
	return item, nil
}
