package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/money"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// LineItem is a cart line; pricing owns the type so the engine can consume it directly.
type LineItem = pricing.LineItem

// ProductReader resolves catalog products.
type ProductReader interface {
	Get(id string) (catalog.Product, error)
}

// StockChecker verifies availability without reserving anything.
type StockChecker interface {
	EnsureAvailable(productID string, qty int) error
}

// Cart accumulates line items for a shopper. Lines keep the order in which
// products were first added.
type Cart struct {
	ID         string
	CustomerID string
	CreatedAt  time.Time

	mu       sync.Mutex
	items    []LineItem
	products ProductReader
	stock    StockChecker
	touched  time.Time
	clock    func() time.Time
}

// New constructs an empty cart bound to a catalog and a stock source.
func New(id string, products ProductReader, stock StockChecker) *Cart {
	now := time.Now().UTC()
	return &Cart{ID: id, CreatedAt: now, touched: now, products: products, stock: stock}
}

// AddItem adds qty units of a product. Repeated additions of the same product
// consolidate into one line; availability is checked for the consolidated
// quantity and the unit price stays the one captured on first addition.
func (c *Cart) AddItem(productID string, qty int) error {
	if qty < 1 {
		return common.Validation("quantity must be >= 1, got %d", qty)
	}
	product, err := c.products.Get(productID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(productID)
	total := qty
	if idx >= 0 {
		total += c.items[idx].Qty
	}
	if err := c.stock.EnsureAvailable(productID, total); err != nil {
		return err
	}
	if idx >= 0 {
		c.items[idx].Qty = total
	} else {
		c.items = append(c.items, LineItem{ProductID: product.ID, Qty: qty, UnitPrice: product.Price})
	}
	c.touched = c.now()
	return nil
}

// UpdateQuantity replaces the quantity of an existing line.
func (c *Cart) UpdateQuantity(productID string, qty int) error {
	if qty < 1 {
		return common.Validation("quantity must be >= 1, got %d", qty)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(productID)
	if idx < 0 {
		return common.NotFound("product %s is not in cart %s", productID, c.ID)
	}
	if err := c.stock.EnsureAvailable(productID, qty); err != nil {
		return err
	}
	c.items[idx].Qty = qty
	c.touched = c.now()
	return nil
}

// RemoveItem drops the line for a product.
func (c *Cart) RemoveItem(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(productID)
	if idx < 0 {
		return common.NotFound("product %s is not in cart %s", productID, c.ID)
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	c.touched = c.now()
	return nil
}

// Items returns a copy of the lines.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

// Subtotal sums the line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Total())
	}
	return money.Round2(total)
}

// RemoveOrdered subtracts the ordered quantities from the matching lines and
// drops lines that reach zero. Lines added or grown after the order snapshot
// keep the difference.
func (c *Cart) RemoveOrdered(ordered []LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range ordered {
		idx := c.indexLocked(it.ProductID)
		if idx < 0 {
			continue
		}
		if c.items[idx].Qty > it.Qty {
			c.items[idx].Qty -= it.Qty
			continue
		}
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
	c.touched = c.now()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.touched = c.now()
}

func (c *Cart) now() time.Time {
	if c.clock != nil {
		return c.clock()
	}
	return time.Now().UTC()
}

func (c *Cart) lastTouched() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

func (c *Cart) indexLocked(productID string) int {
	for i, it := range c.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Store keeps carts by id. Carts idle for longer than TTL are treated as gone.
type Store struct {
	Products ProductReader
	Stock    StockChecker
	TTL      time.Duration
	Now      func() time.Time

	mu    sync.RWMutex
	carts map[string]*Cart
}

// NewStore constructs an empty cart store.
func NewStore(products ProductReader, stock StockChecker, ttl time.Duration) *Store {
	return &Store{Products: products, Stock: stock, TTL: ttl, carts: make(map[string]*Cart)}
}

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Store) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Create opens a new cart, optionally bound to a customer.
func (s *Store) Create(customerID string) *Cart {
	c := New(uuid.NewString(), s.Products, s.Stock)
	c.CustomerID = customerID
	c.clock = s.now
	now := s.now()
	c.CreatedAt, c.touched = now, now
	s.mu.Lock()
	s.carts[c.ID] = c
	s.mu.Unlock()
	return c
}

// Get returns a live cart.
func (s *Store) Get(id string) (*Cart, error) {
	s.mu.RLock()
	c, ok := s.carts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, common.NotFound("cart %s not found", id)
	}
	if s.now().Sub(c.lastTouched()) > s.ttl() {
		s.Delete(id)
		return nil, common.NotFound("cart %s expired", id)
	}
	return c, nil
}

// Delete forgets a cart.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
}

// Len returns the number of tracked carts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}
