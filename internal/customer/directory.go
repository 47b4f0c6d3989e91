package customer

import (
	"sync"

	"github.com/noah-isme/toko-checkout/internal/common"
)

// Directory is an in-memory customer registry.
type Directory struct {
	mu        sync.RWMutex
	customers map[string]Customer
}

// NewDirectory constructs an empty directory.
func NewDirectory() *Directory {
	return &Directory{customers: make(map[string]Customer)}
}

// Put inserts or replaces a customer.
func (d *Directory) Put(c Customer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.customers[c.ID] = c
}

// Get returns a copy of the customer.
func (d *Directory) Get(id string) (Customer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.customers[id]
	if !ok {
		return Customer{}, common.NotFound("customer %s not found", id)
	}
	return c, nil
}

// Update applies fn to the stored customer and saves the result only when fn succeeds.
func (d *Directory) Update(id string, fn func(*Customer) error) (Customer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.customers[id]
	if !ok {
		return Customer{}, common.NotFound("customer %s not found", id)
	}
	if err := fn(&c); err != nil {
		return Customer{}, err
	}
	d.customers[id] = c
	return c, nil
}
