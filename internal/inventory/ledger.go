// Package inventory tracks available stock per product.
package inventory

import (
	"sort"
	"sync"

	"github.com/noah-isme/toko-checkout/internal/common"
)

// Movement is a stock change for one product.
type Movement struct {
	ProductID string
	Qty       int
}

// Ledger holds the available quantity for each product id.
type Ledger struct {
	mu    sync.Mutex
	stock map[string]int
}

// NewLedger constructs an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{stock: make(map[string]int)}
}

// Set overwrites the available quantity of a product.
func (l *Ledger) Set(productID string, qty int) error {
	if qty < 0 {
		return common.Validation("quantity for %s must be >= 0, got %d", productID, qty)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[productID] = qty
	return nil
}

// Available returns the quantity on hand; unknown products have zero.
func (l *Ledger) Available(productID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stock[productID]
}

// EnsureAvailable fails when fewer than qty units are on hand.
func (l *Ledger) EnsureAvailable(productID string, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ensureLocked(productID, qty)
}

// Increment adds stock.
func (l *Ledger) Increment(productID string, qty int) error {
	if qty < 0 {
		return common.Validation("quantity to add for %s must be >= 0, got %d", productID, qty)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[productID] += qty
	return nil
}

// Decrement removes stock after checking availability.
func (l *Ledger) Decrement(productID string, qty int) error {
	if qty < 0 {
		return common.Validation("quantity to remove for %s must be >= 0, got %d", productID, qty)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ensureLocked(productID, qty); err != nil {
		return err
	}
	l.stock[productID] -= qty
	return nil
}

// Commit applies every decrement or none of them. Movements for the same
// product are summed before the availability check.
func (l *Ledger) Commit(moves []Movement) error {
	totals := make(map[string]int, len(moves))
	for _, m := range moves {
		if m.Qty < 0 {
			return common.Validation("quantity to remove for %s must be >= 0, got %d", m.ProductID, m.Qty)
		}
		totals[m.ProductID] += m.Qty
	}
	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		if err := l.ensureLocked(id, totals[id]); err != nil {
			return err
		}
	}
	for _, id := range ids {
		l.stock[id] -= totals[id]
	}
	return nil
}

// Release returns stock for every movement, e.g. after an order is canceled.
func (l *Ledger) Release(moves []Movement) error {
	for _, m := range moves {
		if m.Qty < 0 {
			return common.Validation("quantity to add for %s must be >= 0, got %d", m.ProductID, m.Qty)
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range moves {
		l.stock[m.ProductID] += m.Qty
	}
	return nil
}

func (l *Ledger) ensureLocked(productID string, qty int) error {
	available := l.stock[productID]
	if available < qty {
		return common.InsufficientStock("insufficient stock for %s: available %d, requested %d", productID, available, qty)
	}
	return nil
}
