package services

import (
	"github.com/shopspring/decimal"

	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/config"
	"github.com/diybuddy/projectbuddy/pkg/collection"
)

// Pricing holds the shipping and tax parameters used by ComputeTotals.
type Pricing struct {
	FlatFee  decimal.Decimal // charged while the subtotal is at or below FreeOver
	FreeOver decimal.Decimal
	TaxRate  decimal.Decimal
}

// DefaultPricing is 9.99 shipping, free over 50, 8% tax.
func DefaultPricing() Pricing {
	return Pricing{
		FlatFee:  decimal.RequireFromString("9.99"),
		FreeOver: decimal.NewFromInt(50),
		TaxRate:  decimal.RequireFromString("0.08"),
	}
}

// PricingFromConfig reads SHIPPING_FLAT_FEE, FREE_SHIPPING_OVER and TAX_RATE.
func PricingFromConfig() Pricing {
	return Pricing{
		FlatFee:  config.ShippingFlatFee(),
		FreeOver: config.FreeShippingOver(),
		TaxRate:  config.TaxRate(),
	}
}

// Totals are exact; round only through Display.
type Totals struct {
	Subtotal              decimal.Decimal
	Shipping              decimal.Decimal
	Tax                   decimal.Decimal
	Total                 decimal.Decimal
	FreeShippingOver      decimal.Decimal // shipping is free once Subtotal exceeds this
	FreeShippingRemaining decimal.Decimal // FreeShippingOver minus Subtotal while shipping is charged
	Units                 int
}

// ComputeTotals prices items. It has no side effects.
func ComputeTotals(items []models.Product, pricing Pricing) Totals {
	subtotal := collection.Reduce(items, decimal.Zero, func(acc decimal.Decimal, p models.Product) decimal.Decimal {
		return acc.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Units()))))
	})

	t := Totals{
		Subtotal:         subtotal,
		Shipping:         pricing.FlatFee,
		Tax:              subtotal.Mul(pricing.TaxRate),
		FreeShippingOver: pricing.FreeOver,
		Units: collection.Reduce(items, 0, func(acc int, p models.Product) int {
			return acc + p.Units()
		}),
	}
	if subtotal.GreaterThan(pricing.FreeOver) {
		t.Shipping = decimal.Zero
	} else {
		t.FreeShippingRemaining = pricing.FreeOver.Sub(subtotal)
	}
	t.Total = t.Subtotal.Add(t.Shipping).Add(t.Tax)

	return t
}

// TotalsView is the presentation form of Totals, two decimals per amount.
type TotalsView struct {
	Subtotal              string `json:"subtotal"`
	Shipping              string `json:"shipping"`
	Tax                   string `json:"tax"`
	Total                 string `json:"total"`
	FreeShipping          bool   `json:"freeShipping"`
	FreeShippingOver      string `json:"freeShippingOver"`
	FreeShippingRemaining string `json:"freeShippingRemaining"`
	Units                 int    `json:"units"`
}

// Display rounds every amount to cents.
func (t Totals) Display() TotalsView {
	return TotalsView{
		Subtotal:              t.Subtotal.StringFixed(2),
		Shipping:              t.Shipping.StringFixed(2),
		Tax:                   t.Tax.StringFixed(2),
		Total:                 t.Total.StringFixed(2),
		FreeShipping:          t.Shipping.IsZero(),
		FreeShippingOver:      t.FreeShippingOver.StringFixed(2),
		FreeShippingRemaining: t.FreeShippingRemaining.StringFixed(2),
		Units:                 t.Units,
	}
}
