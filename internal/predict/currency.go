package predict

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// DefaultUSDToINR is the fixed exchange rate used for USD estimates.
const DefaultUSDToINR = 80.0

var (
	lakh    = decimal.NewFromInt(100_000)
	crore   = decimal.NewFromInt(10_000_000)
	million = decimal.NewFromInt(1_000_000)
	billion = decimal.NewFromInt(1_000_000_000)
	hundred = decimal.NewFromInt(100)
)

// Price is a predicted property price in lakhs of rupees, as returned by the
// prediction model.
type Price struct {
	lakhs decimal.Decimal
}

// PriceFromLakhs wraps a model output.
func PriceFromLakhs(v float64) Price {
	return Price{lakhs: decimal.NewFromFloat(v)}
}

// Lakhs returns the price in lakhs.
func (p Price) Lakhs() decimal.Decimal { return p.lakhs }

// Crores returns the price in crores (100 lakhs).
func (p Price) Crores() decimal.Decimal { return p.lakhs.Div(hundred) }

// Rupees returns the price in rupees.
func (p Price) Rupees() decimal.Decimal { return p.lakhs.Mul(lakh) }

// USD converts the price at the given rupees-per-dollar rate. A non-positive
// rate falls back to DefaultUSDToINR.
func (p Price) USD(inrPerUSD float64) decimal.Decimal {
	if inrPerUSD <= 0 {
		inrPerUSD = DefaultUSDToINR
	}
	return p.Rupees().Div(decimal.NewFromFloat(inrPerUSD))
}

// FormatINR renders a rupee amount in the Indian short scale: crores above
// 1 Cr, lakhs above 1 L, whole rupees otherwise.
func FormatINR(rupees decimal.Decimal) string {
	switch abs := rupees.Abs(); {
	case abs.GreaterThanOrEqual(crore):
		return "₹" + commas(rupees.Div(crore), 2) + " Cr"
	case abs.GreaterThanOrEqual(lakh):
		return "₹" + commas(rupees.Div(lakh), 2) + " L"
	default:
		return "₹" + commas(rupees, 0)
	}
}

// FormatUSD renders a dollar amount with M and Bn suffixes.
func FormatUSD(usd decimal.Decimal) string {
	switch abs := usd.Abs(); {
	case abs.GreaterThanOrEqual(billion):
		return "$" + commas(usd.Div(billion), 2) + " Bn"
	case abs.GreaterThanOrEqual(million):
		return "$" + commas(usd.Div(million), 2) + " M"
	default:
		return "$" + commas(usd, 0)
	}
}

// commas rounds d to places and inserts thousands separators.
func commas(d decimal.Decimal, places int32) string {
	f := d.Round(places).InexactFloat64()
	if places == 0 {
		return humanize.FormatFloat("#,###.", f)
	}
	return humanize.FormatFloat("#,###.##", f)
}
