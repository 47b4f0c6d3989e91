// Package order holds placed orders and their payment lifecycle.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/money"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// LineItem is an order line.
type LineItem = pricing.LineItem

// Status is the order lifecycle state.
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusPaid     Status = "PAID"
	StatusCanceled Status = "CANCELED"
)

// Order is a priced, stock-committed purchase.
type Order struct {
	ID               string             `json:"id"`
	CustomerID       string             `json:"customerId"`
	Items            []pricing.LineItem `json:"items"`
	Breakdown        pricing.Breakdown  `json:"breakdown"`
	Coupon           string             `json:"coupon,omitempty"`
	Installments     int                `json:"installments"`
	InstallmentValue decimal.Decimal    `json:"installmentValue"`
	Status           Status             `json:"status"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// New builds an OPEN order holding its own copy of the items.
func New(id, customerID string, items []pricing.LineItem, breakdown pricing.Breakdown, coupon string, installments int, now time.Time) (*Order, error) {
	if installments < 1 {
		return nil, common.Validation("installments must be >= 1, got %d", installments)
	}
	own := make([]pricing.LineItem, len(items))
	copy(own, items)
	return &Order{
		ID:               id,
		CustomerID:       customerID,
		Items:            own,
		Breakdown:        breakdown,
		Coupon:           coupon,
		Installments:     installments,
		InstallmentValue: money.Round2(breakdown.Total.Div(decimal.NewFromInt(int64(installments)))),
		Status:           StatusOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Total is the amount due.
func (o *Order) Total() decimal.Decimal { return o.Breakdown.Total }

// Pay moves an OPEN order to PAID.
func (o *Order) Pay() error {
	return o.transition(StatusPaid)
}

// Cancel moves an OPEN order to CANCELED.
func (o *Order) Cancel() error {
	return o.transition(StatusCanceled)
}

func (o *Order) transition(to Status) error {
	if o.Status != StatusOpen {
		return common.InvalidTransition("order %s cannot move from %s to %s", o.ID, o.Status, to)
	}
	o.Status = to
	return nil
}

// Snapshot returns a deep copy that shares no slices with o.
func (o *Order) Snapshot() Order {
	out := *o
	out.Items = append([]pricing.LineItem(nil), o.Items...)
	out.Breakdown.Discounts = append([]pricing.Discount(nil), o.Breakdown.Discounts...)
	out.Breakdown.Taxes = append([]pricing.CategoryTax(nil), o.Breakdown.Taxes...)
	return out
}
