// Package coupon resolves coupon codes into pricing effects.
package coupon

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/money"
)

// Recognized coupon codes.
const (
	CodePercent10    = "ETIC10"
	CodeFreeShipping = "FRETEGRATIS"
	CodeNoVIP        = "SEM-VIP"
)

// Kind describes what a coupon does.
type Kind string

const (
	KindPercent      Kind = "percent"
	KindFreeShipping Kind = "free_shipping"
	KindSuppressVIP  Kind = "suppress_vip"
)

// Rule captures the effect of a coupon.
type Rule struct {
	Code        string
	Kind        Kind
	Rate        decimal.Decimal
	Description string
}

// IsPercent reports whether the rule takes a percentage off the running amount.
func (r Rule) IsPercent() bool { return r.Kind == KindPercent }

// WaivesShipping reports whether the rule zeroes the shipping fee.
func (r Rule) WaivesShipping() bool { return r.Kind == KindFreeShipping }

// SuppressesVIP reports whether the rule disables the VIP discount.
func (r Rule) SuppressesVIP() bool { return r.Kind == KindSuppressVIP }

var rules = map[string]Rule{
	CodePercent10:    {Code: CodePercent10, Kind: KindPercent, Rate: money.Percent(10), Description: "Coupon 10% off"},
	CodeFreeShipping: {Code: CodeFreeShipping, Kind: KindFreeShipping, Description: "Free shipping"},
	CodeNoVIP:        {Code: CodeNoVIP, Kind: KindSuppressVIP, Description: "VIP discount disabled"},
}

// Lookup resolves a coupon code. An empty code means no coupon and returns ok=false.
func Lookup(code string) (rule Rule, ok bool, err error) {
	if code == "" {
		return Rule{}, false, nil
	}
	r, found := rules[code]
	if !found {
		appErr := common.InvalidCoupon("invalid coupon: %s", code)
		appErr.Details = map[string]any{"accepted": Codes()}
		return Rule{}, false, appErr
	}
	return r, true, nil
}

// Codes returns the recognized codes.
func Codes() []string {
	return []string{CodePercent10, CodeFreeShipping, CodeNoVIP}
}

// Normalize trims surrounding whitespace. Codes stay case-sensitive.
func Normalize(code string) string {
	return strings.TrimSpace(code)
}
