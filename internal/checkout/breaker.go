package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	catalog "github.com/shinmori2020/shop-portfolio-sub000/internal/catalog/domain"
)

// BreakerGetter wraps a ProductGetter with a circuit breaker so a failing
// catalog trips fast instead of timing out on every line item. A rejected
// call surfaces as a fetch error, which the validator treats as fail-closed.
type BreakerGetter struct {
	next ProductGetter
	cb   *gobreaker.CircuitBreaker[*catalog.Product]
}

func NewBreakerGetter(next ProductGetter) *BreakerGetter {
	settings := gobreaker.Settings{
		Name:    "catalog",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Not-found is a definitive catalog answer, not a catalog failure.
			return err == nil || errors.Is(err, catalog.ErrProductNotFound)
		},
	}
	return &BreakerGetter{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*catalog.Product](settings),
	}
}

func (b *BreakerGetter) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	return b.cb.Execute(func() (*catalog.Product, error) {
		return b.next.GetProduct(ctx, id)
	})
}
