// Package seed loads the sample store used by the demo and by SEED_DEMO_DATA.
package seed

import (
	"fmt"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/customer"
	"github.com/noah-isme/toko-checkout/internal/inventory"
	"github.com/noah-isme/toko-checkout/internal/money"
)

// Products returns the sample catalog.
func Products() []catalog.Product {
	items := []struct {
		ID, Name, Price, Manufacturer string
		Category                      catalog.Category
		MaxInstallments               int
	}{
		{"ARROZ", "Arroz 1kg", "6.00", "Marca A", catalog.CategoryFood, 1},
		{"FEIJAO", "Feijao 1kg", "7.50", "Marca B", catalog.CategoryFood, 1},
		{"OLEO", "Oleo 900ml", "8.00", "Marca C", catalog.CategoryFood, 1},
		{"CAMISETA", "Camiseta", "30.00", "Hering", catalog.CategoryApparel, 6},
		{"CALCA", "Calca Jeans", "120.00", "Levis", catalog.CategoryApparel, 6},
		{"MEIA", "Meia", "10.00", "Puket", catalog.CategoryApparel, 6},
		{"MICRO", "Micro-ondas", "499.90", "LG", catalog.CategoryAppliances, 12},
		{"LIQUID", "Liquidificador", "199.90", "Philco", catalog.CategoryAppliances, 10},
		{"VASO", "Vaso Decorativo", "89.90", "Tok&Stok", catalog.CategoryDecor, 5},
		{"CIMENTO", "Cimento 25kg", "35.00", "Holcim", catalog.CategoryConstruction, 3},
	}
	out := make([]catalog.Product, 0, len(items))
	for _, it := range items {
		out = append(out, catalog.Product{
			ID:              it.ID,
			Name:            it.Name,
			Price:           money.MustParse(it.Price),
			Manufacturer:    it.Manufacturer,
			Category:        it.Category,
			MaxInstallments: it.MaxInstallments,
		})
	}
	return out
}

// Stock returns opening quantities by product id.
func Stock() map[string]int {
	return map[string]int{
		"ARROZ":    50,
		"FEIJAO":   50,
		"OLEO":     50,
		"CAMISETA": 20,
		"CALCA":    10,
		"MEIA":     30,
		"MICRO":    5,
		"LIQUID":   8,
		"VASO":     10,
		"CIMENTO":  100,
	}
}

// Customers returns the sample shoppers: C1 is VIP, C2 is regular.
func Customers() []customer.Customer {
	return []customer.Customer{
		{ID: "C1", Name: "Ana", Tier: customer.TierVIP},
		{ID: "C2", Name: "Bruno", Tier: customer.TierRegular},
	}
}

// Load fills the catalog, ledger and directory with the sample data.
func Load(cat *catalog.Catalog, ledger *inventory.Ledger, dir *customer.Directory) error {
	for _, p := range Products() {
		if err := cat.Add(p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	for id, qty := range Stock() {
		if err := ledger.Set(id, qty); err != nil {
			return fmt.Errorf("seed stock %s: %w", id, err)
		}
	}
	if dir != nil {
		for _, c := range Customers() {
			dir.Put(c)
		}
	}
	return nil
}
