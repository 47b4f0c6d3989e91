package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/common"
)

// Catalog keeps product definitions keyed by id.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]Product
}

// New constructs an empty catalog.
func New() *Catalog {
	return &Catalog{products: make(map[string]Product)}
}

// Add registers a new product. Duplicate ids are rejected.
func (c *Catalog) Add(p Product) error {
	p.ID = strings.TrimSpace(p.ID)
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.products[p.ID]; exists {
		return common.Validation("product %s already exists in catalog", p.ID)
	}
	c.products[p.ID] = p
	return nil
}

// Get returns the product with the given id.
func (c *Catalog) Get(id string) (Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return Product{}, common.NotFound("product %s not found in catalog", id)
	}
	return p, nil
}

// List returns every product ordered by id.
func (c *Catalog) List() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListByCategory returns the products of one category ordered by id.
func (c *Catalog) ListByCategory(category Category) ([]Product, error) {
	if !category.Valid() {
		return nil, common.Validation("unknown category %q", category)
	}
	out := make([]Product, 0)
	for _, p := range c.List() {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// UpdatePrice changes the catalog price. Items already in carts keep their frozen price.
func (c *Catalog) UpdatePrice(id string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return common.Validation("new price for %s must be positive, got %s", id, price.String())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return common.NotFound("product %s not found in catalog", id)
	}
	p.Price = price
	c.products[id] = p
	return nil
}
