package pricing

import (
	"github.com/Pixel0001/Nutopia-sub001/models"
	"github.com/shopspring/decimal"
)

// Shipping policy: a flat fee below the free-shipping threshold, zero above.
// Amounts are MDL.
var (
	ShippingFee           = decimal.NewFromInt(100)
	FreeShippingThreshold = decimal.NewFromInt(500)
)

type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Total        decimal.Decimal `json:"total"`
}

// ComputeTotals derives the trusted order totals from persisted cart lines.
// It uses the price frozen on each line, never a fresh catalog price, and is
// the only producer of amounts sent to the payment gateway. Totals submitted
// by clients are discarded and recomputed here.
func ComputeTotals(lines []models.CartLine) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	shipping := decimal.Zero
	if subtotal.LessThan(FreeShippingThreshold) {
		shipping = ShippingFee
	}

	return Totals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Total:        subtotal.Add(shipping),
	}
}
