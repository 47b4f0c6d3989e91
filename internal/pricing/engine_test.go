package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/customer"
	"github.com/noah-isme/toko-checkout/internal/money"
)

type stubProducts map[string]catalog.Product

func (s stubProducts) Get(id string) (catalog.Product, error) {
	p, ok := s[id]
	if !ok {
		return catalog.Product{}, common.NotFound("product %s not found in catalog", id)
	}
	return p, nil
}

func testEngine() *Engine {
	products := stubProducts{
		"SHIRT": {ID: "SHIRT", Name: "Shirt", Price: money.MustParse("30"), Category: catalog.CategoryApparel, MaxInstallments: 3},
		"SOCKS": {ID: "SOCKS", Name: "Socks", Price: money.MustParse("10"), Category: catalog.CategoryApparel, MaxInstallments: 1},
		"JEANS": {ID: "JEANS", Name: "Jeans", Price: money.MustParse("120"), Category: catalog.CategoryApparel, MaxInstallments: 6},
		"RICE":  {ID: "RICE", Name: "Rice", Price: money.MustParse("25"), Category: catalog.CategoryFood, MaxInstallments: 1},
		"TV":    {ID: "TV", Name: "TV", Price: money.MustParse("100"), Category: catalog.CategoryAppliances, MaxInstallments: 12},
		"SOFA":  {ID: "SOFA", Name: "Sofa", Price: money.MustParse("500"), Category: catalog.CategoryDecor, MaxInstallments: 10},
		"LAMP":  {ID: "LAMP", Name: "Lamp", Price: money.MustParse("499.99"), Category: catalog.CategoryDecor, MaxInstallments: 10},
	}
	return NewEngine(products, DefaultConfig())
}

func line(id string, qty int, price string) LineItem {
	return LineItem{ProductID: id, Qty: qty, UnitPrice: money.MustParse(price)}
}

var (
	regular = customer.Customer{ID: "c1", Name: "Ana", Tier: customer.TierRegular}
	vip     = customer.Customer{ID: "c2", Name: "Bia", Tier: customer.TierVIP}
)

func requireAmount(t *testing.T, want string, got interface{ StringFixed(int32) string }) {
	t.Helper()
	require.Equal(t, want, got.StringFixed(2))
}

func TestPriceVIPWithBundle(t *testing.T) {
	items := []LineItem{line("SHIRT", 2, "30"), line("SOCKS", 1, "10"), line("JEANS", 1, "120")}
	b, err := testEngine().Price(vip, items, "")
	require.NoError(t, err)

	requireAmount(t, "190.00", b.Subtotal)
	require.Len(t, b.Discounts, 2)
	require.Equal(t, DiscountBundle, b.Discounts[0].Code)
	requireAmount(t, "10.00", b.Discounts[0].Value)
	require.Equal(t, DiscountVIP, b.Discounts[1].Code)
	requireAmount(t, "9.00", b.Discounts[1].Value)
	requireAmount(t, "19.00", b.TotalDiscount)
	requireAmount(t, "171.00", b.TaxBase)
	requireAmount(t, "39.33", b.TotalTax)
	requireAmount(t, "39.33", b.TaxFor(catalog.CategoryApparel))
	requireAmount(t, "20.00", b.Shipping)
	requireAmount(t, "230.33", b.Total)
}

func TestBundleFreesCheapestUnits(t *testing.T) {
	items := []LineItem{line("SHIRT", 1, "30"), line("JEANS", 1, "120"), line("SOCKS", 1, "10")}
	b, err := testEngine().Price(regular, items, "")
	require.NoError(t, err)
	d, ok := b.DiscountFor(DiscountBundle)
	require.True(t, ok)
	requireAmount(t, "10.00", d.Value)

	b, err = testEngine().Price(regular, []LineItem{line("SHIRT", 2, "30"), line("RICE", 4, "25")}, "")
	require.NoError(t, err)
	_, ok = b.DiscountFor(DiscountBundle)
	require.False(t, ok, "two apparel units never trigger the bundle")

	b, err = testEngine().Price(regular, []LineItem{line("SHIRT", 6, "30")}, "")
	require.NoError(t, err)
	d, _ = b.DiscountFor(DiscountBundle)
	requireAmount(t, "60.00", d.Value)
}

func TestCouponAppliesAfterVIP(t *testing.T) {
	b, err := testEngine().Price(vip, []LineItem{line("TV", 1, "100")}, "ETIC10")
	require.NoError(t, err)
	require.Len(t, b.Discounts, 2)
	requireAmount(t, "5.00", b.Discounts[0].Value)
	require.Equal(t, "ETIC10", b.Discounts[1].Code)
	requireAmount(t, "9.50", b.Discounts[1].Value)
	requireAmount(t, "14.50", b.TotalDiscount)
}

func TestNoVIPCouponSuppressesVIP(t *testing.T) {
	b, err := testEngine().Price(vip, []LineItem{line("TV", 1, "100")}, "SEM-VIP")
	require.NoError(t, err)
	require.Empty(t, b.Discounts)
	requireAmount(t, "0.00", b.TotalDiscount)
	requireAmount(t, "143.00", b.Total)
}

func TestFreeShippingKeepsVIP(t *testing.T) {
	b, err := testEngine().Price(vip, []LineItem{line("TV", 1, "100")}, "FRETEGRATIS")
	require.NoError(t, err)
	requireAmount(t, "0.00", b.Shipping)
	_, ok := b.DiscountFor(DiscountVIP)
	require.True(t, ok)
	d, ok := b.DiscountFor("FRETEGRATIS")
	require.True(t, ok)
	requireAmount(t, "0.00", d.Value)
	requireAmount(t, "95.00", b.TaxBase)
	requireAmount(t, "21.85", b.TotalTax)
	requireAmount(t, "116.85", b.Total)
}

func TestInvalidCouponRejected(t *testing.T) {
	_, err := testEngine().Price(regular, []LineItem{line("TV", 1, "100")}, "BOGUS")
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrInvalidCoupon))
}

func TestMinSpendThreshold(t *testing.T) {
	b, err := testEngine().Price(regular, []LineItem{line("SOFA", 1, "500")}, "")
	require.NoError(t, err)
	d, ok := b.DiscountFor(DiscountMinSpend)
	require.True(t, ok)
	requireAmount(t, "30.00", d.Value)
	requireAmount(t, "470.00", b.TaxBase)

	b, err = testEngine().Price(regular, []LineItem{line("LAMP", 1, "499.99")}, "")
	require.NoError(t, err)
	_, ok = b.DiscountFor(DiscountMinSpend)
	require.False(t, ok)
}

func TestMinSpendUsesRunningAmount(t *testing.T) {
	// VIP takes 25.00 off 500.00, leaving the running amount under the threshold.
	b, err := testEngine().Price(vip, []LineItem{line("SOFA", 1, "500")}, "")
	require.NoError(t, err)
	_, ok := b.DiscountFor(DiscountMinSpend)
	require.False(t, ok)
}

func TestEmptyCartRejected(t *testing.T) {
	_, err := testEngine().Price(regular, nil, "")
	require.True(t, errors.Is(err, common.ErrEmptyCart))
}

func TestUnknownProductRejected(t *testing.T) {
	_, err := testEngine().Price(regular, []LineItem{line("NOPE", 1, "10")}, "")
	require.True(t, errors.Is(err, common.ErrNotFound))
}

func TestMixedCategoryTaxes(t *testing.T) {
	b, err := testEngine().Price(regular, []LineItem{line("TV", 1, "100"), line("RICE", 2, "25")}, "")
	require.NoError(t, err)
	require.Len(t, b.Taxes, 2)
	require.Equal(t, catalog.CategoryAppliances, b.Taxes[0].Category)
	require.Equal(t, catalog.CategoryFood, b.Taxes[1].Category)
	requireAmount(t, "23.00", b.TaxFor(catalog.CategoryAppliances))
	requireAmount(t, "3.00", b.TaxFor(catalog.CategoryFood))
	requireAmount(t, "26.00", b.TotalTax)
}

func TestTotalsAreConsistent(t *testing.T) {
	cases := []struct {
		name   string
		c      customer.Customer
		items  []LineItem
		coupon string
	}{
		{"regular", regular, []LineItem{line("RICE", 3, "25")}, ""},
		{"vip coupon", vip, []LineItem{line("SHIRT", 4, "30"), line("SOFA", 1, "500")}, "ETIC10"},
		{"free shipping", regular, []LineItem{line("JEANS", 3, "120")}, "FRETEGRATIS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := testEngine().Price(tc.c, tc.items, tc.coupon)
			require.NoError(t, err)
			require.True(t, b.TotalDiscount.LessThanOrEqual(b.Subtotal))
			require.False(t, b.TaxBase.IsNegative())
			require.True(t, b.Total.Equal(b.TaxBase.Add(b.TotalTax).Add(b.Shipping)))

			again, err := testEngine().Price(tc.c, tc.items, tc.coupon)
			require.NoError(t, err)
			require.Equal(t, b.Total.String(), again.Total.String())
		})
	}
}

func TestMinSpendAfterBundle(t *testing.T) {
	// 510.00 of apparel; the bundle frees the 10.00 unit and leaves exactly 500.00.
	b, err := testEngine().Price(regular, []LineItem{line("SOCKS", 1, "10"), line("JEANS", 2, "250")}, "")
	require.NoError(t, err)
	bundle, ok := b.DiscountFor(DiscountBundle)
	require.True(t, ok)
	requireAmount(t, "10.00", bundle.Value)
	minSpend, ok := b.DiscountFor(DiscountMinSpend)
	require.True(t, ok)
	requireAmount(t, "30.00", minSpend.Value)
	requireAmount(t, "40.00", b.TotalDiscount)
	requireAmount(t, "470.00", b.TaxBase)
}

func TestZeroConfigKeepsFreeShippingButDefaultsTheRest(t *testing.T) {
	products := stubProducts{"TV": {ID: "TV", Name: "TV", Price: money.MustParse("100"), Category: catalog.CategoryAppliances, MaxInstallments: 12}}
	b, err := NewEngine(products, Config{}).Price(vip, []LineItem{line("TV", 1, "100")}, "")
	require.NoError(t, err)
	requireAmount(t, "0.00", b.Shipping)
	vipLine, ok := b.DiscountFor(DiscountVIP)
	require.True(t, ok)
	requireAmount(t, "5.00", vipLine.Value)
	requireAmount(t, "21.85", b.TaxFor(catalog.CategoryAppliances))
}
