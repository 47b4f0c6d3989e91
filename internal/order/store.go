package order

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/noah-isme/toko-checkout/internal/common"
)

// Store keeps orders in memory and hands out process-unique ids.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*Order
	seq    []string
	next   atomic.Int64
	now    func() time.Time
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{orders: make(map[string]*Order), now: func() time.Time { return time.Now().UTC() }}
}

// NextID returns ORD-1, ORD-2, ...
func (s *Store) NextID() string {
	return fmt.Sprintf("ORD-%d", s.next.Add(1))
}

// Add stores a new order.
func (s *Store) Add(o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[o.ID]; exists {
		return common.Validation("order %s already exists", o.ID)
	}
	s.orders[o.ID] = o
	s.seq = append(s.seq, o.ID)
	return nil
}

// Get returns a snapshot of the order.
func (s *Store) Get(id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, common.NotFound("order %s not found", id)
	}
	return o.Snapshot(), nil
}

// Update applies fn to the stored order under the store lock.
func (s *Store) Update(id string, fn func(*Order) error) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, common.NotFound("order %s not found", id)
	}
	if err := fn(o); err != nil {
		return Order{}, err
	}
	o.UpdatedAt = s.now()
	return o.Snapshot(), nil
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	CustomerID string
	Status     Status
}

// List returns matching orders in creation order, paginated, plus the total match count.
func (s *Store) List(filter ListFilter, page, perPage int) ([]Order, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*Order, 0, len(s.seq))
	for _, id := range s.seq {
		o := s.orders[id]
		if filter.CustomerID != "" && o.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		matched = append(matched, o)
	}
	start := (page - 1) * perPage
	if start >= len(matched) {
		return []Order{}, len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]Order, 0, end-start)
	for _, o := range matched[start:end] {
		out = append(out, o.Snapshot())
	}
	return out, len(matched)
}
