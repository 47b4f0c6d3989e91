// Package customer models shoppers, their tier and their loyalty balance.
package customer

import (
	"strings"

	"github.com/noah-isme/toko-checkout/internal/common"
)

// Tier drives tier-specific pricing.
type Tier string

const (
	TierRegular Tier = "REGULAR"
	TierVIP     Tier = "VIP"
)

// ParseTier maps "vip" in any case to TierVIP and everything else to TierRegular.
func ParseTier(raw string) Tier {
	if strings.EqualFold(strings.TrimSpace(raw), string(TierVIP)) {
		return TierVIP
	}
	return TierRegular
}

// Customer is a shopper.
type Customer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Tier   Tier   `json:"tier"`
	Points int    `json:"points"`
}

// New builds a customer, validating the opening point balance.
func New(id, name string, tier Tier, points int) (Customer, error) {
	if strings.TrimSpace(id) == "" {
		return Customer{}, common.Validation("customer id is required")
	}
	if points < 0 {
		return Customer{}, common.Validation("points balance for %s must be >= 0, got %d", id, points)
	}
	if tier != TierVIP {
		tier = TierRegular
	}
	return Customer{ID: id, Name: name, Tier: tier, Points: points}, nil
}

// IsVIP reports whether the customer gets VIP pricing.
func (c Customer) IsVIP() bool {
	return c.Tier == TierVIP
}

// AddPoints credits loyalty points.
func (c *Customer) AddPoints(points int) error {
	if points < 0 {
		return common.Validation("points to add must be >= 0, got %d", points)
	}
	c.Points += points
	return nil
}

// RedeemPoints debits loyalty points without letting the balance go negative.
func (c *Customer) RedeemPoints(points int) error {
	if points < 0 {
		return common.Validation("points to redeem must be >= 0, got %d", points)
	}
	if points > c.Points {
		return common.Validation("insufficient points for %s: balance %d, requested %d", c.ID, c.Points, points)
	}
	c.Points -= points
	return nil
}
