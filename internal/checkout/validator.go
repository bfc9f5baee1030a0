package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	cart "github.com/shinmori2020/shop-portfolio-sub000/internal/cart/domain"
	catalog "github.com/shinmori2020/shop-portfolio-sub000/internal/catalog/domain"
)

// ProductGetter is the slice of the catalog the validator needs. Consumers
// define this interface, not the catalog implementation.
type ProductGetter interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// ValidatedItem is the only shape allowed to flow into an order record. The
// unit price is the authoritative catalog price, never the cart snapshot.
type ValidatedItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// ValidationResult is the whole-cart outcome. Valid is true only when every
// line item passed the stock check; price drift alone does not invalidate,
// but its message still lands in Errors so the UI can show it.
type ValidationResult struct {
	Valid  bool            `json:"valid"`
	Items  []ValidatedItem `json:"items"`
	Errors []string        `json:"errors,omitempty"`
}

// StockCheck reports whether a requested quantity can be fulfilled.
// AvailableStock is nil for products without stock tracking.
type StockCheck struct {
	HasStock       bool   `json:"has_stock"`
	AvailableStock *int64 `json:"available_stock,omitempty"`
	Message        string `json:"message,omitempty"`
}

// Validator re-checks a cart against the authoritative catalog before an
// order may be created. It never mutates the cart.
type Validator struct {
	catalog ProductGetter
}

func NewValidator(catalog ProductGetter) *Validator {
	return &Validator{catalog: catalog}
}

// itemOutcome is the per-line result. failure blocks checkout; message is a
// non-blocking notice (price drift).
type itemOutcome struct {
	item    *ValidatedItem
	message string
	failure string
}

// ValidateCart checks every line item independently: items are fetched
// concurrently and one failing item never aborts the others.
func (v *Validator) ValidateCart(ctx context.Context, items []cart.LineItem) ValidationResult {
	if len(items) == 0 {
		return ValidationResult{Errors: []string{ErrEmptyCart.Error()}}
	}

	outcomes := make([]itemOutcome, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item cart.LineItem) {
			defer wg.Done()
			outcomes[i] = v.checkItem(ctx, item)
		}(i, item)
	}
	wg.Wait()

	result := ValidationResult{Valid: true}
	for _, o := range outcomes {
		if o.failure != "" {
			result.Valid = false
			result.Errors = append(result.Errors, o.failure)
			continue
		}
		if o.message != "" {
			result.Errors = append(result.Errors, o.message)
		}
		result.Items = append(result.Items, *o.item)
	}
	return result
}

func (v *Validator) checkItem(ctx context.Context, item cart.LineItem) itemOutcome {
	product, err := v.catalog.GetProduct(ctx, item.Product.ID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return itemOutcome{failure: fmt.Sprintf("%s: product not found", item.Product.ID)}
	}
	if err != nil {
		// Fail closed: an unreachable catalog must never let a possibly
		// oversold item through.
		return itemOutcome{failure: fmt.Sprintf("%s: could not verify item: %v", item.Product.ID, err)}
	}

	authoritative := product.CurrentPrice()
	var message string
	if authoritative != item.Product.DisplayPrice() {
		// The authoritative price wins silently; the notice lets the UI tell
		// the user prices changed without blocking checkout.
		message = fmt.Sprintf("%s: price changed from %d to %d", product.Name, item.Product.DisplayPrice(), authoritative)
	}

	// Products without a stock field predate inventory tracking and are
	// treated as unconstrained.
	if product.Stock != nil && item.Quantity > *product.Stock {
		return itemOutcome{failure: fmt.Sprintf("%s: only %d in stock, %d requested", product.Name, *product.Stock, item.Quantity)}
	}

	return itemOutcome{
		item: &ValidatedItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: authoritative,
			Quantity:  item.Quantity,
			Subtotal:  authoritative * item.Quantity,
		},
		message: message,
	}
}

// CheckStock reports whether the requested quantity of a product can be
// fulfilled right now. A catalog fetch failure is returned as an error and
// must be treated as "no stock" by callers.
func (v *Validator) CheckStock(ctx context.Context, productID string, quantity int64) (StockCheck, error) {
	product, err := v.catalog.GetProduct(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return StockCheck{Message: "product not found"}, nil
	}
	if err != nil {
		return StockCheck{}, fmt.Errorf("failed to check stock for %s: %w", productID, err)
	}

	if product.Stock == nil {
		return StockCheck{HasStock: true}, nil
	}

	if quantity > *product.Stock {
		return StockCheck{
			AvailableStock: product.Stock,
			Message:        fmt.Sprintf("%s: only %d in stock", product.Name, *product.Stock),
		}, nil
	}

	return StockCheck{HasStock: true, AvailableStock: product.Stock}, nil
}
