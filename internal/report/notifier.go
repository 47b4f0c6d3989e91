package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/toko-checkout/internal/events"
	"github.com/noah-isme/toko-checkout/internal/order"
)

// OrderGetter loads order snapshots.
type OrderGetter interface {
	Get(id string) (order.Order, error)
}

// Notifier records orders into the report when order.paid is emitted.
type Notifier struct {
	Sales  *Sales
	Orders OrderGetter
}

// Notify implements events.Notifier.
func (n Notifier) Notify(_ context.Context, ev events.Event) error {
	if ev.Topic != events.TopicOrderPaid || n.Sales == nil || n.Orders == nil {
		return nil
	}
	var payload struct {
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return fmt.Errorf("report: decode %s payload: %w", ev.Topic, err)
	}
	id := payload.OrderID
	if id == "" {
		id = ev.AggregateID
	}
	o, err := n.Orders.Get(id)
	if err != nil {
		return fmt.Errorf("report: load order %s: %w", id, err)
	}
	n.Sales.Record(o)
	return nil
}
