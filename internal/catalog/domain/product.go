package domain

import (
	"errors"
	"time"
)

// ErrProductNotFound is returned when a product ID has no catalog record.
var ErrProductNotFound = errors.New("product not found")

// Product is the authoritative catalog record. Price and stock fetched from
// here always win over whatever a cart snapshot claims.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       int64 // smallest currency unit
	SalePrice   *int64
	OnSale      bool
	Stock       *int64 // nil when stock is not tracked for this product
	ImageURL    string
	CreatedAt   time.Time
}

// CurrentPrice is the authoritative unit price: the sale price while the
// product is on sale, the regular price otherwise.
func (p Product) CurrentPrice() int64 {
	if p.OnSale && p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}
