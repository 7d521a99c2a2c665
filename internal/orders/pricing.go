package orders

import "github.com/shopspring/decimal"

// TotalPolicy decides what PlaceOrder does with the caller's total.
type TotalPolicy int

const (
	// TrustCaller stores the submitted total as given.
	TrustCaller TotalPolicy = iota
	// VerifyTotal rejects a total that differs from Pricing.Quote.
	VerifyTotal
)

// Pricing holds the storefront's flat checkout rates.
type Pricing struct {
	Shipping decimal.Decimal
	TaxRate  decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		Shipping: decimal.RequireFromString("5.00"),
		TaxRate:  decimal.RequireFromString("0.08"),
	}
}

type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Quote prices items the way checkout does: shipping is charged once and
// tax is rounded to cents. An empty cart costs nothing.
func (p Pricing) Quote(items []Item) Summary {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if subtotal.IsZero() {
		return Summary{Subtotal: decimal.Zero, Shipping: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	}

	tax := subtotal.Mul(p.TaxRate).Round(2)
	return Summary{
		Subtotal: subtotal,
		Shipping: p.Shipping,
		Tax:      tax,
		Total:    subtotal.Add(p.Shipping).Add(tax),
	}
}

// WholeCents reports whether d fits a decimal(10,2) column without rounding.
func WholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
