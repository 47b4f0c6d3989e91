package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/inventory"
	"github.com/noah-isme/toko-checkout/internal/money"
)

func fixtures(t *testing.T) (*catalog.Catalog, *inventory.Ledger) {
	t.Helper()
	cat := catalog.New()
	require.NoError(t, cat.Add(catalog.Product{ID: "SHIRT", Name: "T-shirt", Price: money.MustParse("30"), Category: catalog.CategoryApparel, MaxInstallments: 3}))
	require.NoError(t, cat.Add(catalog.Product{ID: "RICE", Name: "Rice 5kg", Price: money.MustParse("25.90"), Category: catalog.CategoryFood, MaxInstallments: 1}))
	ledger := inventory.NewLedger()
	require.NoError(t, ledger.Set("SHIRT", 5))
	require.NoError(t, ledger.Set("RICE", 2))
	return cat, ledger
}

func TestAddItemConsolidatesLines(t *testing.T) {
	cat, ledger := fixtures(t)
	c := New("c1", cat, ledger)

	require.NoError(t, c.AddItem("SHIRT", 2))
	require.NoError(t, c.AddItem("RICE", 1))
	require.NoError(t, c.AddItem("SHIRT", 1))

	items := c.Items()
	require.Len(t, items, 2)
	require.Equal(t, "SHIRT", items[0].ProductID)
	require.Equal(t, 3, items[0].Qty)
	require.Equal(t, "115.90", c.Subtotal().StringFixed(2))
}

func TestAddItemChecksConsolidatedStock(t *testing.T) {
	cat, ledger := fixtures(t)
	c := New("c1", cat, ledger)

	require.NoError(t, c.AddItem("SHIRT", 4))
	err := c.AddItem("SHIRT", 2)
	require.ErrorIs(t, err, common.ErrInsufficientStock)
	require.Equal(t, 4, c.Items()[0].Qty)
	require.Equal(t, 5, ledger.Available("SHIRT"), "adding to a cart never reserves stock")
}

func TestAddItemRejectsBadInput(t *testing.T) {
	cat, ledger := fixtures(t)
	c := New("c1", cat, ledger)

	require.ErrorIs(t, c.AddItem("SHIRT", 0), common.ErrValidation)
	require.ErrorIs(t, c.AddItem("GHOST", 1), common.ErrNotFound)
	require.True(t, c.IsEmpty())
}

func TestUnitPriceFrozenAtFirstAdd(t *testing.T) {
	cat, ledger := fixtures(t)
	c := New("c1", cat, ledger)

	require.NoError(t, c.AddItem("SHIRT", 1))
	require.NoError(t, cat.UpdatePrice("SHIRT", money.MustParse("45")))
	require.NoError(t, c.AddItem("SHIRT", 1))

	items := c.Items()
	require.Equal(t, "30.00", items[0].UnitPrice.StringFixed(2))
	require.Equal(t, "60.00", items[0].Total().StringFixed(2))
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	cat, ledger := fixtures(t)
	c := New("c1", cat, ledger)
	require.NoError(t, c.AddItem("SHIRT", 1))
	require.NoError(t, c.AddItem("RICE", 1))

	require.NoError(t, c.UpdateQuantity("SHIRT", 5))
	require.ErrorIs(t, c.UpdateQuantity("SHIRT", 6), common.ErrInsufficientStock)
	require.ErrorIs(t, c.UpdateQuantity("SHIRT", 0), common.ErrValidation)
	require.ErrorIs(t, c.UpdateQuantity("GHOST", 1), common.ErrNotFound)

	require.NoError(t, c.RemoveItem("RICE"))
	require.ErrorIs(t, c.RemoveItem("RICE"), common.ErrNotFound)
	items := c.Items()
	require.Len(t, items, 1)
	require.Equal(t, 5, items[0].Qty)

	c.Clear()
	require.True(t, c.IsEmpty())
}

func TestItemsReturnsCopy(t *testing.T) {
	cat, ledger := fixtures(t)
	c := New("c1", cat, ledger)
	require.NoError(t, c.AddItem("SHIRT", 1))

	items := c.Items()
	items[0].Qty = 99
	require.Equal(t, 1, c.Items()[0].Qty)
}

func TestStoreExpiresIdleCarts(t *testing.T) {
	cat, ledger := fixtures(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(cat, ledger, time.Hour)
	store.Now = func() time.Time { return now }

	c := store.Create("cust-1")
	got, err := store.Get(c.ID)
	require.NoError(t, err)
	require.Equal(t, "cust-1", got.CustomerID)

	now = now.Add(30 * time.Minute)
	require.NoError(t, c.AddItem("SHIRT", 1))
	now = now.Add(45 * time.Minute)
	_, err = store.Get(c.ID)
	require.NoError(t, err, "adding an item refreshes the idle timer")

	now = now.Add(2 * time.Hour)
	_, err = store.Get(c.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
	require.Equal(t, 0, store.Len())
}

func TestRemoveOrderedKeepsLaterAdditions(t *testing.T) {
	cat, ledger := fixtures(t)
	c := New("c1", cat, ledger)
	require.NoError(t, c.AddItem("SHIRT", 2))
	ordered := c.Items()

	require.NoError(t, c.AddItem("SHIRT", 1))
	require.NoError(t, c.AddItem("RICE", 1))
	c.RemoveOrdered(ordered)

	items := c.Items()
	require.Len(t, items, 2)
	require.Equal(t, "SHIRT", items[0].ProductID)
	require.Equal(t, 1, items[0].Qty)
	require.Equal(t, "RICE", items[1].ProductID)

	c.RemoveOrdered(c.Items())
	require.True(t, c.IsEmpty())
}
