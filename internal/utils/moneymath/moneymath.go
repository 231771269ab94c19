// Package moneymath holds the fixed-precision arithmetic helpers shared by every
// financial computation in the application. All money is represented as
// decimal.Decimal; binary floats never enter a calculation, so rounded values can
// be compared for exact equality without an epsilon.
package moneymath

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// RoundCents rounds a monetary value to 2 decimals, half away from zero.
func RoundCents(x decimal.Decimal) decimal.Decimal {
	return x.Round(2)
}

// ApplyPercentage computes base × pct / 100 rounded to the given number of
// decimals. Each line-level product must be rounded to its intermediate
// precision (4 decimals for withholdings) before summation; summing unrounded
// products yields different totals than summing pre-rounded ones.
func ApplyPercentage(base, pct decimal.Decimal, precision int32) decimal.Decimal {
	return base.Mul(pct).Div(oneHundred).Round(precision)
}

// IsValidPercentage reports whether pct lies in [0, 100].
func IsValidPercentage(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(oneHundred)
}
