package storage

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shinmori2020/shop-portfolio-sub000/internal/cart/domain"
)

// CartStorage mirrors a cart store to a backend using the versioned envelope.
type CartStorage struct {
	backend Backend
}

func NewCartStorage(backend Backend) *CartStorage {
	return &CartStorage{backend: backend}
}

// Load returns the persisted line items, or an empty cart when nothing usable
// is stored. Corruption is recovered here and logged, never surfaced.
func (s *CartStorage) Load(ctx context.Context) []domain.LineItem {
	data, err := s.backend.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		log.Printf("cart storage load error: %v", err)
		return nil
	}
	return decodeCart(data)
}

// Save serializes the full current cart state plus the schema version. The
// aggregate write makes persistence idempotent: a retried write can only
// repeat the same state, never apply a stale delta.
func (s *CartStorage) Save(ctx context.Context, items []domain.LineItem) error {
	data, err := encodeCart(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.backend.Store(ctx, data); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}
	return nil
}
