package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/money"
)

// Config holds the rates and thresholds the engine applies.
type Config struct {
	ShippingFee       decimal.Decimal
	MinSpendThreshold decimal.Decimal
	MinSpendDiscount  decimal.Decimal
	VIPRate           decimal.Decimal
	BundleCategory    catalog.Category
	BundleSize        int
	TaxRates          map[catalog.Category]decimal.Decimal
}

// DefaultTaxRates returns the flat per-category rate table.
func DefaultTaxRates() map[catalog.Category]decimal.Decimal {
	return map[catalog.Category]decimal.Decimal{
		catalog.CategoryAppliances:   money.Percent(23),
		catalog.CategoryDecor:        money.Percent(23),
		catalog.CategoryConstruction: money.Percent(23),
		catalog.CategoryApparel:      money.Percent(23),
		catalog.CategoryFood:         money.Percent(6),
	}
}

// DefaultConfig returns the standard store rules.
func DefaultConfig() Config {
	return Config{
		ShippingFee:       money.MustParse("20.00"),
		MinSpendThreshold: money.MustParse("500.00"),
		MinSpendDiscount:  money.MustParse("30.00"),
		VIPRate:           money.Percent(5),
		BundleCategory:    catalog.CategoryApparel,
		BundleSize:        3,
		TaxRates:          DefaultTaxRates(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ShippingFee.IsNegative() {
		c.ShippingFee = def.ShippingFee
	}
	if !c.MinSpendThreshold.IsPositive() {
		c.MinSpendThreshold = def.MinSpendThreshold
	}
	if c.MinSpendDiscount.IsNegative() || c.MinSpendDiscount.IsZero() {
		c.MinSpendDiscount = def.MinSpendDiscount
	}
	if !c.VIPRate.IsPositive() {
		c.VIPRate = def.VIPRate
	}
	if c.BundleCategory == "" {
		c.BundleCategory = def.BundleCategory
	}
	if c.BundleSize <= 0 {
		c.BundleSize = def.BundleSize
	}
	if len(c.TaxRates) == 0 {
		c.TaxRates = def.TaxRates
	}
	return c
}
