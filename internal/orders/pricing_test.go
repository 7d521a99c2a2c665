package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuoteMatchesCheckout(t *testing.T) {
	items := []Item{
		{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("4.99")},
		{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("6.99")},
	}

	s := DefaultPricing().Quote(items)

	assert.Equal(t, "16.97", s.Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", s.Shipping.StringFixed(2))
	assert.Equal(t, "1.36", s.Tax.StringFixed(2))
	assert.Equal(t, "23.33", s.Total.StringFixed(2))
}

func TestQuoteEmptyCart(t *testing.T) {
	s := DefaultPricing().Quote(nil)
	assert.True(t, s.Total.IsZero())
	assert.True(t, s.Shipping.IsZero())
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := invalid("items", "at least one item is required")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "items: at least one item is required", err.Error())
}
