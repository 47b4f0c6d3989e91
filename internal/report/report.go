// Package report aggregates paid orders into sales figures.
package report

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/money"
	"github.com/noah-isme/toko-checkout/internal/order"
)

// ProductReader resolves product categories.
type ProductReader interface {
	Get(id string) (catalog.Product, error)
}

// ProductSales is units sold for one product.
type ProductSales struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// CategoryRevenue is gross line revenue for one category.
type CategoryRevenue struct {
	Category catalog.Category `json:"category"`
	Revenue  decimal.Decimal  `json:"revenue"`
}

// Summary is a point-in-time view of the report.
type Summary struct {
	Orders            int               `json:"orders"`
	TotalRevenue      decimal.Decimal   `json:"totalRevenue"`
	TotalTax          decimal.Decimal   `json:"totalTax"`
	TotalDiscount     decimal.Decimal   `json:"totalDiscount"`
	TopProducts       []ProductSales    `json:"topProducts"`
	RevenueByCategory []CategoryRevenue `json:"revenueByCategory"`
}

// Sales accumulates PAID orders. Orders in any other status are ignored.
type Sales struct {
	catalog ProductReader

	mu   sync.RWMutex
	paid []order.Order
	seen map[string]struct{}
}

// New constructs an empty report.
func New(products ProductReader) *Sales {
	return &Sales{catalog: products, seen: make(map[string]struct{})}
}

// Record adds a PAID order once. It reports whether the order was added.
func (s *Sales) Record(o order.Order) bool {
	if o.Status != order.StatusPaid {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[o.ID]; dup {
		return false
	}
	s.seen[o.ID] = struct{}{}
	s.paid = append(s.paid, o)
	return true
}

// Len returns the number of recorded orders.
func (s *Sales) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.paid)
}

// TotalRevenue sums order totals.
func (s *Sales) TotalRevenue() decimal.Decimal {
	return s.sum(func(o order.Order) decimal.Decimal { return o.Breakdown.Total })
}

// TotalTax sums order taxes.
func (s *Sales) TotalTax() decimal.Decimal {
	return s.sum(func(o order.Order) decimal.Decimal { return o.Breakdown.TotalTax })
}

// TotalDiscount sums order discounts.
func (s *Sales) TotalDiscount() decimal.Decimal {
	return s.sum(func(o order.Order) decimal.Decimal { return o.Breakdown.TotalDiscount })
}

func (s *Sales) sum(pick func(order.Order) decimal.Decimal) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, o := range s.paid {
		total = total.Add(pick(o))
	}
	return money.Round2(total)
}

// TopProducts ranks products by units sold, descending, ties broken by id.
func (s *Sales) TopProducts(n int) []ProductSales {
	s.mu.RLock()
	counts := make(map[string]int)
	for _, o := range s.paid {
		for _, it := range o.Items {
			counts[it.ProductID] += it.Qty
		}
	}
	s.mu.RUnlock()

	out := make([]ProductSales, 0, len(counts))
	for id, qty := range counts {
		out = append(out, ProductSales{ProductID: id, Qty: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Qty != out[j].Qty {
			return out[i].Qty > out[j].Qty
		}
		return out[i].ProductID < out[j].ProductID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RevenueByCategory sums gross line totals (before discounts and taxes) per
// category, in catalog category order. Categories without sales are omitted.
func (s *Sales) RevenueByCategory() ([]CategoryRevenue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sums := make(map[catalog.Category]decimal.Decimal)
	for _, o := range s.paid {
		for _, it := range o.Items {
			p, err := s.catalog.Get(it.ProductID)
			if err != nil {
				return nil, err
			}
			sums[p.Category] = sums[p.Category].Add(it.Total())
		}
	}
	out := make([]CategoryRevenue, 0, len(sums))
	for _, c := range catalog.Categories() {
		if v, ok := sums[c]; ok {
			out = append(out, CategoryRevenue{Category: c, Revenue: money.Round2(v)})
		}
	}
	return out, nil
}

// Summary gathers every figure at once.
func (s *Sales) Summary(top int) (Summary, error) {
	byCategory, err := s.RevenueByCategory()
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Orders:            s.Len(),
		TotalRevenue:      s.TotalRevenue(),
		TotalTax:          s.TotalTax(),
		TotalDiscount:     s.TotalDiscount(),
		TopProducts:       s.TopProducts(top),
		RevenueByCategory: byCategory,
	}, nil
}
