package order

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-checkout/internal/events"
	"github.com/noah-isme/toko-checkout/internal/inventory"
	"github.com/noah-isme/toko-checkout/internal/obs"
)

// Publisher emits domain events.
type Publisher interface {
	Emit(ctx context.Context, topic string, aggregateID string, payload any) (events.Event, error)
}

// StockReleaser returns committed stock to the ledger.
type StockReleaser interface {
	Release(moves []inventory.Movement) error
}

// Service drives order status changes and their side effects.
type Service struct {
	Store  *Store
	Events Publisher
	Stock  StockReleaser
	Logger zerolog.Logger
}

// Get returns an order snapshot.
func (s *Service) Get(id string) (Order, error) {
	return s.Store.Get(id)
}

// Pay marks an OPEN order as PAID and emits order.paid.
func (s *Service) Pay(ctx context.Context, id string) (Order, error) {
	o, err := s.Store.Update(id, (*Order).Pay)
	if err != nil {
		return Order{}, err
	}
	if obs.OrderRevenue != nil {
		obs.OrderRevenue.Add(o.Total().InexactFloat64())
	}
	s.afterTransition(ctx, o, events.TopicOrderPaid)
	return o, nil
}

// Cancel marks an OPEN order as CANCELED, returns its stock and emits order.canceled.
func (s *Service) Cancel(ctx context.Context, id string) (Order, error) {
	o, err := s.Store.Update(id, (*Order).Cancel)
	if err != nil {
		return Order{}, err
	}
	if s.Stock != nil {
		if err := s.Stock.Release(Movements(o.Items)); err != nil {
			s.Logger.Error().Err(err).Str("order_id", o.ID).Msg("order_cancel_release_failed")
			return o, err
		}
	}
	s.afterTransition(ctx, o, events.TopicOrderCanceled)
	return o, nil
}

func (s *Service) afterTransition(ctx context.Context, o Order, topic string) {
	if obs.OrderTransitionsTotal != nil {
		obs.OrderTransitionsTotal.WithLabelValues(string(o.Status)).Inc()
	}
	s.Logger.Info().
		Str("order_id", o.ID).
		Str("customer_id", o.CustomerID).
		Str("status", string(o.Status)).
		Str("total", o.Total().StringFixed(2)).
		Msg("order_transition")
	if s.Events == nil {
		return
	}
	payload := map[string]any{
		"orderId":    o.ID,
		"customerId": o.CustomerID,
		"status":     o.Status,
		"total":      o.Total(),
	}
	if _, err := s.Events.Emit(ctx, topic, o.ID, payload); err != nil {
		s.Logger.Warn().Err(err).Str("order_id", o.ID).Str("topic", topic).Msg("order_event_failed")
	}
}

// Movements converts order lines into ledger movements.
func Movements(items []LineItem) []inventory.Movement {
	moves := make([]inventory.Movement, 0, len(items))
	for _, it := range items {
		moves = append(moves, inventory.Movement{ProductID: it.ProductID, Qty: it.Qty})
	}
	return moves
}
