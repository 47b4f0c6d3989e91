// Package money holds the decimal helpers shared by pricing, orders and reports.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is the zero amount.
var Zero = decimal.Zero

// Round2 rounds to two places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MustParse parses a decimal literal and panics on malformed input. Intended for constants and tests.
func MustParse(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// Percent converts a whole percentage (e.g. 5) into a rate (0.05).
func Percent(p int64) decimal.Decimal {
	return decimal.New(p, -2)
}

// Format renders an amount for display, e.g. "R$ 1234,56".
func Format(d decimal.Decimal) string {
	return "R$ " + strings.Replace(Round2(d).StringFixed(2), ".", ",", 1)
}
