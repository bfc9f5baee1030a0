package store

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/shinmori2020/shop-portfolio-sub000/internal/cart/domain"
)

// ErrInvalidQuantity is returned when AddItem is called with a quantity below
// one. Rejecting instead of clamping keeps caller bugs visible.
var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// CartStorage persists the full cart state. Consumers define this interface,
// not the storage implementation.
type CartStorage interface {
	Load(ctx context.Context) []domain.LineItem
	Save(ctx context.Context, items []domain.LineItem) error
}

// Store holds one session's cart and is its single source of truth. Every
// mutation is mirrored to storage before the call returns; storage failures
// degrade to memory-only operation for the rest of the session.
type Store struct {
	mu      sync.Mutex
	items   []domain.LineItem
	storage CartStorage
}

// New creates a store seeded from whatever usable state the storage holds.
func New(ctx context.Context, storage CartStorage) *Store {
	return &Store{
		items:   storage.Load(ctx),
		storage: storage,
	}
}

// AddItem inserts a new line item or, when the product is already in the
// cart, increments the existing quantity.
func (s *Store) AddItem(ctx context.Context, product domain.ProductSnapshot, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == product.ID {
			s.items[i].Quantity += quantity
			s.persist(ctx)
			return nil
		}
	}

	s.items = append(s.items, domain.LineItem{Product: product, Quantity: quantity})
	s.persist(ctx)
	return nil
}

// RemoveItem deletes the line item for the product. Removing an absent
// product is a no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.Product.ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// UpdateQuantity replaces the quantity for the product. A quantity of zero or
// less removes the line item; the cart never holds a zero-quantity entry.
// Stock limits are not enforced here, that check belongs to checkout.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int64) {
	if quantity <= 0 {
		s.RemoveItem(ctx, productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items[i].Quantity = quantity
			s.persist(ctx)
			return
		}
	}
}

// Clear empties the cart. Used after a successful order and available to the
// user directly.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.LineItem, len(s.items))
	copy(items, s.items)
	return items
}

// TotalItems sums quantities across all line items. Recomputed on demand,
// never cached.
func (s *Store) TotalItems() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums the snapshot subtotals. This is a display-only estimate and
// is never used for the checkout total.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, item := range s.items {
		total += item.Subtotal()
	}
	return total
}

// persist must be called with the lock held. A failed write is logged and
// swallowed so the in-memory cart keeps working when storage is unavailable.
func (s *Store) persist(ctx context.Context) {
	if err := s.storage.Save(ctx, s.items); err != nil {
		log.Printf("cart persist error: %v", err)
	}
}
