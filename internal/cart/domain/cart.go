package domain

// ProductSnapshot is a copy of catalog data taken at the moment the product
// entered the cart. It is only used for display and optimistic UI; checkout
// re-fetches the authoritative record and never trusts these prices.
type ProductSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"` // smallest currency unit
	SalePrice *int64 `json:"sale_price,omitempty"`
	OnSale    bool   `json:"on_sale,omitempty"`
	Stock     *int64 `json:"stock,omitempty"` // nil when stock is not tracked
	ImageURL  string `json:"image_url,omitempty"`
}

// DisplayPrice returns the price shown in the cart: the sale price when one
// was captured, otherwise the regular price.
func (p ProductSnapshot) DisplayPrice() int64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// LineItem pairs a product snapshot with a quantity. Quantity is always >= 1;
// a mutation that would bring it to zero removes the line item instead.
type LineItem struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int64           `json:"quantity"`
}

// Subtotal is the display-only estimate for this line, based on the snapshot
// price. The authoritative subtotal is computed at validation time.
func (li LineItem) Subtotal() int64 {
	return li.Product.DisplayPrice() * li.Quantity
}
