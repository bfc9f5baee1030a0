package checkout

import "github.com/shopspring/decimal"

// FeeSchedule is the fixed fee configuration applied at checkout.
type FeeSchedule struct {
	FreeShippingThreshold int64
	FlatShippingFee       int64
	TaxRate               float64
}

// Totals are the order totals in the smallest currency unit.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// CalculateTotal turns validated items into order totals. Pure and
// deterministic: tax is floor(subtotal * rate), done in decimal arithmetic so
// float noise cannot shift a total by one unit and break reconciliation with
// recorded orders.
func CalculateTotal(items []ValidatedItem, schedule FeeSchedule) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.Subtotal
	}

	shipping := schedule.FlatShippingFee
	if subtotal >= schedule.FreeShippingThreshold {
		shipping = 0
	}

	tax := decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromFloat(schedule.TaxRate)).
		Floor().
		IntPart()

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
