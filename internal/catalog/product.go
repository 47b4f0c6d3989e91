package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/money"
)

// Category is one of the fixed product categories.
type Category string

const (
	CategoryAppliances   Category = "appliances"
	CategoryDecor        Category = "decor"
	CategoryConstruction Category = "construction"
	CategoryApparel      Category = "apparel"
	CategoryFood         Category = "food"
)

// MaxInstallmentsCap bounds Product.MaxInstallments.
const MaxInstallmentsCap = 24

// Categories returns the known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryAppliances,
		CategoryDecor,
		CategoryConstruction,
		CategoryApparel,
		CategoryFood,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory validates a raw category name.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		names := make([]string, 0, len(Categories()))
		for _, known := range Categories() {
			names = append(names, string(known))
		}
		return "", common.Validation("unknown category %q, accepted: %s", raw, strings.Join(names, ", "))
	}
	return c, nil
}

// Product is a sellable catalog entry.
type Product struct {
	ID              string          `json:"id" validate:"required"`
	Name            string          `json:"name" validate:"required"`
	Price           decimal.Decimal `json:"price"`
	Manufacturer    string          `json:"manufacturer"`
	Category        Category        `json:"category" validate:"required,oneof=appliances decor construction apparel food"`
	MaxInstallments int             `json:"maxInstallments" validate:"min=1,max=24"`
}

// Validate checks product invariants.
func (p Product) Validate() error {
	if err := common.ValidateStruct(p); err != nil {
		return err
	}
	if !p.Price.IsPositive() {
		return common.Validation("product %s: price must be positive, got %s", p.ID, p.Price.String())
	}
	return nil
}

// InstallmentValue returns the price of one installment when paying in n parts.
func (p Product) InstallmentValue(n int) (decimal.Decimal, error) {
	if n < 1 || n > p.MaxInstallments {
		return decimal.Zero, common.Validation("invalid installment count %d for %s: must be between 1 and %d", n, p.ID, p.MaxInstallments)
	}
	return money.Round2(p.Price.Div(decimal.NewFromInt(int64(n)))), nil
}

func (p Product) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}
