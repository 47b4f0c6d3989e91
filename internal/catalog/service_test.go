package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/money"
)

func shirt() catalog.Product {
	return catalog.Product{
		ID:              "SHIRT",
		Name:            "T-shirt",
		Price:           money.MustParse("30.00"),
		Manufacturer:    "Hering",
		Category:        catalog.CategoryApparel,
		MaxInstallments: 6,
	}
}

func TestAddAndGet(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.Add(shirt()))

	got, err := c.Get("SHIRT")
	require.NoError(t, err)
	require.Equal(t, "T-shirt", got.Name)

	_, err = c.Get("MISSING")
	require.ErrorIs(t, err, common.ErrNotFound)
	require.Contains(t, err.Error(), "MISSING")
}

func TestAddRejectsInvalidProducts(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.Add(shirt()))
	require.ErrorIs(t, c.Add(shirt()), common.ErrValidation)

	zeroPrice := shirt()
	zeroPrice.ID = "ZERO"
	zeroPrice.Price = money.Zero
	require.ErrorIs(t, c.Add(zeroPrice), common.ErrValidation)

	badCategory := shirt()
	badCategory.ID = "BAD"
	badCategory.Category = "toys"
	require.ErrorIs(t, c.Add(badCategory), common.ErrValidation)

	noInstallments := shirt()
	noInstallments.ID = "NOINST"
	noInstallments.MaxInstallments = 0
	require.ErrorIs(t, c.Add(noInstallments), common.ErrValidation)
}

func TestListByCategory(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.Add(shirt()))
	rice := catalog.Product{ID: "RICE", Name: "Rice 1kg", Price: money.MustParse("6.00"), Category: catalog.CategoryFood, MaxInstallments: 1}
	require.NoError(t, c.Add(rice))

	food, err := c.ListByCategory(catalog.CategoryFood)
	require.NoError(t, err)
	require.Len(t, food, 1)
	require.Equal(t, "RICE", food[0].ID)

	_, err = c.ListByCategory("toys")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdatePrice(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.Add(shirt()))
	require.NoError(t, c.UpdatePrice("SHIRT", money.MustParse("35.50")))
	got, err := c.Get("SHIRT")
	require.NoError(t, err)
	require.Equal(t, "35.50", got.Price.StringFixed(2))

	require.ErrorIs(t, c.UpdatePrice("SHIRT", money.MustParse("-1")), common.ErrValidation)
	require.ErrorIs(t, c.UpdatePrice("NOPE", money.MustParse("1")), common.ErrNotFound)
}

func TestInstallmentValue(t *testing.T) {
	p := shirt()
	v, err := p.InstallmentValue(4)
	require.NoError(t, err)
	require.Equal(t, "7.50", v.StringFixed(2))

	_, err = p.InstallmentValue(7)
	require.ErrorIs(t, err, common.ErrValidation)
	_, err = p.InstallmentValue(0)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestParseCategory(t *testing.T) {
	c, err := catalog.ParseCategory(" Apparel ")
	require.NoError(t, err)
	require.Equal(t, catalog.CategoryApparel, c)

	_, err = catalog.ParseCategory("toys")
	require.ErrorIs(t, err, common.ErrValidation)
}
