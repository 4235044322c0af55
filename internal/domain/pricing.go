package domain

import "github.com/shopspring/decimal"

// DefaultTaxRate is the base tax policy (8%). The rate is injectable via
// NewPricer so jurisdictions can vary it.
var DefaultTaxRate = decimal.NewFromFloat(0.08)

// Totals carries the priced-out figures for a cart.
//
// Rounding rule: each figure is rounded to cents with banker's rounding,
// once — the subtotal after summation, the tax after the multiply. Per-line
// extensions are summed exactly, so rounding error never compounds across
// lines.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Pricer computes cart totals under a fixed tax rate. It is a pure function
// of the cart; it reads captured unit prices, never the live catalog.
type Pricer struct {
	rate decimal.Decimal
}

func NewPricer(taxRate decimal.Decimal) Pricer {
	return Pricer{rate: taxRate}
}

func (p Pricer) Price(cart Cart) Totals {
	subtotal := decimal.Zero
	for _, l := range cart.Lines {
		extension := decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
		subtotal = subtotal.Add(extension)
	}
	subtotal = subtotal.RoundBank(2)
	tax := subtotal.Mul(p.rate).RoundBank(2)
	total := subtotal.Add(tax)

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}
