package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/feirinha-uesb/storefront/pkg/storage"
)

// StorageKey is where a session keeps its cart
const StorageKey = "cart"

// ErrInvalidQuantity is returned when adding an item with quantity <= 0
var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// persisted is the envelope written under StorageKey
type persisted struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

type persistedState struct {
	Items []Item `json:"items"`
}

// Store is the cart of one session. Every operation reads the persisted
// cart, applies the change and writes it back; callers serialize concurrent
// operations of the same session.
type Store struct {
	storage storage.Storage
}

// NewStore creates a cart store over a session storage
func NewStore(s storage.Storage) *Store {
	return &Store{storage: s}
}

// Items returns the current cart lines
func (s *Store) Items(ctx context.Context) ([]Item, error) {
	var p persisted
	if _, err := storage.GetJSON(ctx, s.storage, StorageKey, &p); err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if p.State.Items == nil {
		return []Item{}, nil
	}
	return p.State.Items, nil
}

// Add merges item into the cart
func (s *Store) Add(ctx context.Context, item Item) ([]Item, error) {
	if item.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	items = AddItem(items, item)
	return items, s.save(ctx, items)
}

// Remove takes one unit of code out of the cart
func (s *Store) Remove(ctx context.Context, code int) ([]Item, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	items = RemoveItem(items, code)
	return items, s.save(ctx, items)
}

// Clear empties the cart
func (s *Store) Clear(ctx context.Context) error {
	return s.save(ctx, []Item{})
}

// Count returns the number of units in the cart
func (s *Store) Count(ctx context.Context) (int, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return 0, err
	}
	return Count(items), nil
}

// Total returns the cart total rounded to cents
func (s *Store) Total(ctx context.Context) (decimal.Decimal, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return Total(items), nil
}

func (s *Store) save(ctx context.Context, items []Item) error {
	if err := storage.SetJSON(ctx, s.storage, StorageKey, persisted{State: persistedState{Items: items}}); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
