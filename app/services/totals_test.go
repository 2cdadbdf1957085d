package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/services"
)

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name      string
		items     []models.Product
		subtotal  string
		shipping  string
		tax       string
		total     string
		remaining string
	}{
		{
			name:      "below threshold pays shipping",
			items:     []models.Product{product("a", 10, 2), product("b", 5, 1)},
			subtotal:  "25.00",
			shipping:  "9.99",
			tax:       "2.00",
			total:     "36.99",
			remaining: "25.00",
		},
		{
			name:      "above threshold ships free",
			items:     []models.Product{product("a", 60, 1)},
			subtotal:  "60.00",
			shipping:  "0.00",
			tax:       "4.80",
			total:     "64.80",
			remaining: "0.00",
		},
		{
			name:      "exactly at threshold still pays",
			items:     []models.Product{product("a", 25, 2)},
			subtotal:  "50.00",
			shipping:  "9.99",
			tax:       "4.00",
			total:     "63.99",
			remaining: "0.00",
		},
		{
			name:      "absent quantity counts as one",
			items:     []models.Product{product("a", 12.99, 0)},
			subtotal:  "12.99",
			shipping:  "9.99",
			tax:       "1.04",
			total:     "24.02",
			remaining: "37.01",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view := services.ComputeTotals(tc.items, services.DefaultPricing()).Display()
			assert.Equal(t, tc.subtotal, view.Subtotal)
			assert.Equal(t, tc.shipping, view.Shipping)
			assert.Equal(t, tc.tax, view.Tax)
			assert.Equal(t, tc.total, view.Total)
			assert.Equal(t, tc.remaining, view.FreeShippingRemaining)
			assert.Equal(t, "50.00", view.FreeShippingOver)
		})
	}
}

func TestComputeTotalsIsPure(t *testing.T) {
	items := []models.Product{product("a", 12.99, 3), product("b", 8.49, 0)}
	snapshot := append([]models.Product(nil), items...)

	first := services.ComputeTotals(items, services.DefaultPricing())
	second := services.ComputeTotals(items, services.DefaultPricing())

	assert.Equal(t, first.Display(), second.Display())
	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, snapshot, items, "inputs are not modified")
}

func TestComputeTotalsKeepsFullPrecision(t *testing.T) {
	totals := services.ComputeTotals([]models.Product{product("a", 12.99, 0)}, services.DefaultPricing())
	assert.Equal(t, "1.0392", totals.Tax.String())
	assert.Equal(t, 1, totals.Units)
}

func TestComputeTotalsCustomPricing(t *testing.T) {
	pricing := services.Pricing{
		FlatFee:  decimal.NewFromInt(5),
		FreeOver: decimal.NewFromInt(100),
		TaxRate:  decimal.Zero,
	}
	view := services.ComputeTotals([]models.Product{product("a", 60, 1)}, pricing).Display()
	assert.Equal(t, "5.00", view.Shipping)
	assert.Equal(t, "65.00", view.Total)
	assert.False(t, view.FreeShipping)
}
