package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/coupon"
	"github.com/noah-isme/toko-checkout/internal/customer"
	"github.com/noah-isme/toko-checkout/internal/money"
)

// Discount line codes produced by the engine. Coupon lines use the coupon code.
const (
	DiscountBundle   = "BUNDLE3"
	DiscountVIP      = "VIP5"
	DiscountMinSpend = "MINSPEND30"
)

// LineItem is a cart line with its unit price frozen when it entered the cart.
type LineItem struct {
	ProductID string          `json:"productId"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Total returns qty x unit price.
func (it LineItem) Total() decimal.Decimal {
	return money.Round2(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Qty))))
}

// Discount is one applied discount.
type Discount struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
}

// CategoryTax is the tax accumulated for one category.
type CategoryTax struct {
	Category catalog.Category `json:"category"`
	Amount   decimal.Decimal  `json:"amount"`
}

// Breakdown aggregates computed pricing components.
type Breakdown struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discounts     []Discount      `json:"discounts"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	TaxBase       decimal.Decimal `json:"taxBase"`
	Taxes         []CategoryTax   `json:"taxes"`
	TotalTax      decimal.Decimal `json:"totalTax"`
	Shipping      decimal.Decimal `json:"shipping"`
	Total         decimal.Decimal `json:"total"`
}

// TaxFor returns the tax booked for a category, zero when absent.
func (b Breakdown) TaxFor(category catalog.Category) decimal.Decimal {
	for _, t := range b.Taxes {
		if t.Category == category {
			return t.Amount
		}
	}
	return decimal.Zero
}

// DiscountFor returns the discount line with the given code.
func (b Breakdown) DiscountFor(code string) (Discount, bool) {
	for _, d := range b.Discounts {
		if d.Code == code {
			return d, true
		}
	}
	return Discount{}, false
}

// ProductLookup resolves catalog products.
type ProductLookup interface {
	Get(id string) (catalog.Product, error)
}

// Engine prices line items for a customer and optional coupon.
type Engine struct {
	products ProductLookup
	cfg      Config
}

// NewEngine constructs an Engine. Unset rates, thresholds, bundle settings and
// tax table fall back to DefaultConfig; a zero ShippingFee is honoured and only
// a negative one is replaced.
func NewEngine(products ProductLookup, cfg Config) *Engine {
	return &Engine{products: products, cfg: cfg.withDefaults()}
}

type unit struct {
	price    decimal.Decimal
	category catalog.Category
}

// Price computes the full breakdown. Rules run in a fixed order: bundle, VIP,
// coupon, minimum spend; every percentage applies to the running amount left
// after the rules before it.
func (e *Engine) Price(c customer.Customer, items []LineItem, couponCode string) (Breakdown, error) {
	if len(items) == 0 {
		return Breakdown{}, common.EmptyCart("cannot price an empty cart")
	}
	rule, hasCoupon, err := coupon.Lookup(couponCode)
	if err != nil {
		return Breakdown{}, err
	}

	subtotal := decimal.Zero
	categories := make([]catalog.Category, len(items))
	units := make([]unit, 0, len(items))
	for i, it := range items {
		if it.Qty < 1 {
			return Breakdown{}, common.Validation("quantity for %s must be >= 1, got %d", it.ProductID, it.Qty)
		}
		if !it.UnitPrice.IsPositive() {
			return Breakdown{}, common.Validation("unit price for %s must be positive, got %s", it.ProductID, it.UnitPrice.String())
		}
		p, err := e.products.Get(it.ProductID)
		if err != nil {
			return Breakdown{}, err
		}
		categories[i] = p.Category
		subtotal = subtotal.Add(it.Total())
		for n := 0; n < it.Qty; n++ {
			units = append(units, unit{price: it.UnitPrice, category: p.Category})
		}
	}
	subtotal = money.Round2(subtotal)

	var discounts []Discount
	applied := decimal.Zero
	add := func(d Discount) {
		discounts = append(discounts, d)
		applied = applied.Add(d.Value)
	}
	running := func() decimal.Decimal { return subtotal.Sub(applied) }

	if v := e.bundleDiscount(units); v.IsPositive() {
		add(Discount{Code: DiscountBundle, Description: "Buy 3 pay 2 (apparel)", Value: v})
	}

	if c.IsVIP() && !(hasCoupon && rule.SuppressesVIP()) {
		add(Discount{Code: DiscountVIP, Description: "VIP customer discount", Value: money.Round2(running().Mul(e.cfg.VIPRate))})
	}

	shipping := e.cfg.ShippingFee
	if hasCoupon {
		switch {
		case rule.IsPercent():
			add(Discount{Code: rule.Code, Description: rule.Description, Value: money.Round2(running().Mul(rule.Rate))})
		case rule.WaivesShipping():
			shipping = decimal.Zero
			add(Discount{Code: rule.Code, Description: rule.Description, Value: decimal.Zero})
		}
	}

	if running().GreaterThanOrEqual(e.cfg.MinSpendThreshold) {
		add(Discount{Code: DiscountMinSpend, Description: "Minimum spend discount", Value: e.cfg.MinSpendDiscount})
	}

	totalDiscount := money.Round2(decimal.Min(applied, subtotal))
	taxBase := subtotal.Sub(totalDiscount)

	var taxes []CategoryTax
	index := make(map[catalog.Category]int)
	totalTax := decimal.Zero
	for i, it := range items {
		rate := e.cfg.TaxRates[categories[i]]
		lineTax := money.Round2(taxBase.Mul(it.Total()).Mul(rate).Div(subtotal))
		pos, ok := index[categories[i]]
		if !ok {
			pos = len(taxes)
			index[categories[i]] = pos
			taxes = append(taxes, CategoryTax{Category: categories[i], Amount: decimal.Zero})
		}
		taxes[pos].Amount = taxes[pos].Amount.Add(lineTax)
		totalTax = totalTax.Add(lineTax)
	}

	shipping = money.Round2(shipping)
	return Breakdown{
		Subtotal:      subtotal,
		Discounts:     discounts,
		TotalDiscount: totalDiscount,
		TaxBase:       taxBase,
		Taxes:         taxes,
		TotalTax:      totalTax,
		Shipping:      shipping,
		Total:         money.Round2(taxBase.Add(totalTax).Add(shipping)),
	}, nil
}

// bundleDiscount frees the floor(n/size) cheapest units of the bundle category.
func (e *Engine) bundleDiscount(units []unit) decimal.Decimal {
	eligible := make([]decimal.Decimal, 0, len(units))
	for _, u := range units {
		if u.category == e.cfg.BundleCategory {
			eligible = append(eligible, u.price)
		}
	}
	free := len(eligible) / e.cfg.BundleSize
	if free == 0 {
		return decimal.Zero
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].LessThan(eligible[j]) })
	total := decimal.Zero
	for _, price := range eligible[:free] {
		total = total.Add(price)
	}
	return money.Round2(total)
}
