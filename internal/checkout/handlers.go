package checkout

import (
	"net/http"
	"strings"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/customer"
)

// CustomerReader resolves the shopper placing the order.
type CustomerReader interface {
	Get(id string) (customer.Customer, error)
}

type Handler struct {
	Proc      *Processor
	Carts     *cart.Store
	Customers CustomerReader
}

// Input is the checkout request body. CustomerID falls back to the
// X-Customer-ID header and then to the cart owner.
type Input struct {
	CartID       string `json:"cartId" validate:"required"`
	CustomerID   string `json:"customerId"`
	Coupon       string `json:"coupon"`
	Installments int    `json:"installments"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.Proc == nil || h.Carts == nil || h.Customers == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var payload Input
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.ValidateStruct(payload); err != nil {
		common.WriteError(w, err)
		return
	}
	if payload.Installments == 0 {
		payload.Installments = 1
	}
	ct, err := h.Carts.Get(strings.TrimSpace(payload.CartID))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	customerID := strings.TrimSpace(payload.CustomerID)
	if customerID == "" {
		customerID, _ = common.CustomerID(r.Context())
	}
	if customerID == "" {
		customerID = ct.CustomerID
	}
	if customerID == "" {
		common.WriteError(w, common.Validation("customerId is required"))
		return
	}
	shopper, err := h.Customers.Get(customerID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.Proc.Checkout(r.Context(), shopper, ct, payload.Coupon, payload.Installments)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": o})
}
