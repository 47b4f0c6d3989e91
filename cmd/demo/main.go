// Command demo runs the reference checkout scenarios against the seeded
// catalog and prints receipts and the sales report to stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/checkout"
	"github.com/noah-isme/toko-checkout/internal/customer"
	"github.com/noah-isme/toko-checkout/internal/events"
	"github.com/noah-isme/toko-checkout/internal/inventory"
	"github.com/noah-isme/toko-checkout/internal/lock"
	"github.com/noah-isme/toko-checkout/internal/money"
	"github.com/noah-isme/toko-checkout/internal/obs"
	"github.com/noah-isme/toko-checkout/internal/order"
	"github.com/noah-isme/toko-checkout/internal/pricing"
	"github.com/noah-isme/toko-checkout/internal/receipt"
	"github.com/noah-isme/toko-checkout/internal/report"
	"github.com/noah-isme/toko-checkout/internal/seed"
)

func main() {
	logger := obs.NewLoggerTo(os.Stderr, "console", "warn")
	if err := run(context.Background(), os.Stdout, logger); err != nil {
		logger.Fatal().Err(err).Msg("demo failed")
	}
}

type store struct {
	catalog   *catalog.Catalog
	ledger    *inventory.Ledger
	customers *customer.Directory
	carts     *cart.Store
	proc      *checkout.Processor
	orders    *order.Service
	sales     *report.Sales
}

func newStore(logger zerolog.Logger) (*store, error) {
	s := &store{
		catalog:   catalog.New(),
		ledger:    inventory.NewLedger(),
		customers: customer.NewDirectory(),
	}
	if err := seed.Load(s.catalog, s.ledger, s.customers); err != nil {
		return nil, err
	}
	bus := &events.Bus{Store: events.NewMemoryStore()}
	orders := order.NewStore()
	s.sales = report.New(s.catalog)
	bus.Subscribe(report.Notifier{Sales: s.sales, Orders: orders})

	s.carts = cart.NewStore(s.catalog, s.ledger, 0)
	s.proc = &checkout.Processor{
		Catalog: s.catalog,
		Stock:   s.ledger,
		Pricing: pricing.NewEngine(s.catalog, pricing.DefaultConfig()),
		Orders:  orders,
		Events:  bus,
		Locker:  lock.NewLocal(),
		Logger:  logger,
	}
	s.orders = &order.Service{Store: orders, Events: bus, Stock: s.ledger, Logger: logger}
	return s, nil
}

type line struct {
	productID string
	qty       int
}

// buy fills a fresh cart, checks it out and pays the resulting order.
func (s *store) buy(ctx context.Context, customerID, coupon string, installments int, lines ...line) (order.Order, error) {
	c, err := s.customers.Get(customerID)
	if err != nil {
		return order.Order{}, err
	}
	ct := s.carts.Create(customerID)
	for _, l := range lines {
		if err := ct.AddItem(l.productID, l.qty); err != nil {
			return order.Order{}, err
		}
	}
	o, err := s.proc.Checkout(ctx, c, ct, coupon, installments)
	if err != nil {
		return order.Order{}, err
	}
	return s.orders.Pay(ctx, o.ID)
}

func run(ctx context.Context, out io.Writer, logger zerolog.Logger) error {
	s, err := newStore(logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\n--- Scenario A (VIP + buy 3 pay 2) ---")
	a, err := s.buy(ctx, "C1", "", 3, line{"CAMISETA", 2}, line{"MEIA", 1}, line{"CALCA", 1})
	if err != nil {
		return fmt.Errorf("scenario A: %w", err)
	}
	if err := receipt.Print(out, receipt.Lines(a, s.catalog)); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n--- Scenario B (regular + ETIC10) ---")
	b, err := s.buy(ctx, "C2", "ETIC10", 5, line{"MICRO", 1}, line{"VASO", 1})
	if err != nil {
		return fmt.Errorf("scenario B: %w", err)
	}
	if err := receipt.Print(out, receipt.Lines(b, s.catalog)); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n--- Scenario C (invalid coupon) ---")
	if _, err := s.buy(ctx, "C2", "INVALIDO", 1, line{"ARROZ", 1}); err != nil {
		fmt.Fprintf(out, "(OK) invalid coupon rejected: %v\n", err)
	} else {
		return errors.New("scenario C: invalid coupon was accepted")
	}

	fmt.Fprintln(out, "\n--- Scenario D (insufficient stock) ---")
	if err := s.carts.Create("C2").AddItem("MICRO", 999); err != nil {
		fmt.Fprintf(out, "(OK) insufficient stock rejected: %v\n", err)
	} else {
		return errors.New("scenario D: oversized quantity was accepted")
	}

	fmt.Fprintln(out, "\n--- Scenario E (report) ---")
	fmt.Fprintln(out, "Total revenue:", money.Format(s.sales.TotalRevenue()))
	fmt.Fprintln(out, "Total tax:", money.Format(s.sales.TotalTax()))
	fmt.Fprintln(out, "Total discount:", money.Format(s.sales.TotalDiscount()))
	fmt.Fprintln(out, "Top products:")
	for _, p := range s.sales.TopProducts(0) {
		fmt.Fprintf(out, "  %-10s %d\n", p.ProductID, p.Qty)
	}
	byCategory, err := s.sales.RevenueByCategory()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Revenue by category:")
	for _, c := range byCategory {
		fmt.Fprintf(out, "  %-13s %s\n", c.Category, money.Format(c.Revenue))
	}
	return nil
}
