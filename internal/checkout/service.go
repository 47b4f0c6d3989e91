// Package checkout turns a cart into a priced, stock-committed order.
package checkout

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/coupon"
	"github.com/noah-isme/toko-checkout/internal/customer"
	"github.com/noah-isme/toko-checkout/internal/events"
	"github.com/noah-isme/toko-checkout/internal/inventory"
	"github.com/noah-isme/toko-checkout/internal/lock"
	"github.com/noah-isme/toko-checkout/internal/obs"
	"github.com/noah-isme/toko-checkout/internal/order"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// ProductReader resolves catalog products.
type ProductReader interface {
	Get(id string) (catalog.Product, error)
}

// StockCommitter applies all-or-nothing stock movements.
type StockCommitter interface {
	Commit(moves []inventory.Movement) error
	Release(moves []inventory.Movement) error
}

// Processor finalizes carts into orders.
type Processor struct {
	Catalog ProductReader
	Stock   StockCommitter
	Pricing *pricing.Engine
	Orders  *order.Store
	Events  order.Publisher
	Locker  lock.Locker
	LockTTL time.Duration
	Logger  zerolog.Logger
	Now     func() time.Time
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

// Checkout validates installments, prices the cart, commits stock and
// records an OPEN order. On any failure nothing is committed and the cart is
// left as it was; on success the ordered lines are removed from the cart. Concurrent checkouts of the
// same cart are serialized on the cart id.
func (p *Processor) Checkout(ctx context.Context, c customer.Customer, ct *cart.Cart, couponCode string, installments int) (*order.Order, error) {
	if p == nil || p.Catalog == nil || p.Stock == nil || p.Pricing == nil || p.Orders == nil {
		return nil, errors.New("checkout processor not configured")
	}
	if ct == nil {
		return nil, common.EmptyCart("cart is empty")
	}
	couponCode = coupon.Normalize(couponCode)
	ctx, span := obs.StartSpan(ctx, "checkout", "checkout.process",
		attribute.String("cart.id", ct.ID),
		attribute.String("customer.id", c.ID),
		attribute.Int("installments", installments),
	)
	start := time.Now()

	var placed *order.Order
	run := func(ctx context.Context) error {
		o, err := p.process(ctx, c, ct, couponCode, installments)
		placed = o
		return err
	}
	var err error
	if p.Locker != nil {
		err = p.Locker.WithLock(ctx, "checkout:"+ct.ID, p.LockTTL, run)
		if errors.Is(err, lock.ErrBusy) {
			err = common.NewAppError("CHECKOUT_IN_PROGRESS", "cart "+ct.ID+" is already being checked out", http.StatusConflict, err)
		}
	} else {
		err = run(ctx)
	}

	result := resultLabel(err)
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
	if obs.CheckoutDuration != nil {
		obs.CheckoutDuration.WithLabelValues(result).Observe(obs.DurationMillis(time.Since(start)))
	}
	obs.EndSpan(span, err)
	if err != nil {
		p.Logger.Info().Err(err).
			Str("cart_id", ct.ID).
			Str("customer_id", c.ID).
			Str("coupon", couponCode).
			Str("result", result).
			Msg("checkout_rejected")
		return nil, err
	}
	p.Logger.Info().
		Str("order_id", placed.ID).
		Str("cart_id", ct.ID).
		Str("customer_id", c.ID).
		Str("total", placed.Total().StringFixed(2)).
		Int("installments", placed.Installments).
		Msg("checkout_completed")
	return placed, nil
}

func (p *Processor) process(ctx context.Context, c customer.Customer, ct *cart.Cart, couponCode string, installments int) (*order.Order, error) {
	items := ct.Items()
	if len(items) == 0 {
		return nil, common.EmptyCart("cart %s is empty", ct.ID)
	}
	if installments < 1 {
		return nil, common.Validation("installments must be >= 1, got %d", installments)
	}
	for _, it := range items {
		product, err := p.Catalog.Get(it.ProductID)
		if err != nil {
			return nil, err
		}
		if installments > product.MaxInstallments {
			return nil, common.InstallmentLimitExceeded("product %s allows at most %d installments, requested %d", product.ID, product.MaxInstallments, installments)
		}
	}

	breakdown, err := p.Pricing.Price(c, items, couponCode)
	if err != nil {
		return nil, err
	}

	moves := order.Movements(items)
	if err := p.Stock.Commit(moves); err != nil {
		return nil, err
	}
	var placed order.Order
	o, err := order.New(p.Orders.NextID(), c.ID, items, breakdown, couponCode, installments, p.now())
	if err == nil {
		// the store owns o from here on; callers get a copy
		placed = o.Snapshot()
		err = p.Orders.Add(o)
	}
	if err != nil {
		if releaseErr := p.Stock.Release(moves); releaseErr != nil {
			p.Logger.Error().Err(releaseErr).Str("cart_id", ct.ID).Msg("checkout_release_failed")
		}
		return nil, err
	}
	ct.RemoveOrdered(items)

	if obs.DiscountAppliedTotal != nil {
		for _, d := range breakdown.Discounts {
			obs.DiscountAppliedTotal.WithLabelValues(d.Code).Inc()
		}
	}
	if obs.OrderTransitionsTotal != nil {
		obs.OrderTransitionsTotal.WithLabelValues(string(order.StatusOpen)).Inc()
	}
	if p.Events != nil {
		payload := map[string]any{
			"orderId":    o.ID,
			"customerId": c.ID,
			"total":      breakdown.Total,
			"items":      len(items),
		}
		if _, err := p.Events.Emit(ctx, events.TopicOrderCreated, o.ID, payload); err != nil {
			p.Logger.Warn().Err(err).Str("order_id", o.ID).Msg("checkout_event_failed")
		}
	}
	return &placed, nil
}

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return strings.ToLower(appErr.Code)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}
