package cart

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/coupon"
	"github.com/noah-isme/toko-checkout/internal/customer"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// CustomerReader resolves customers for pricing previews.
type CustomerReader interface {
	Get(id string) (customer.Customer, error)
}

// Handler wires cart services to HTTP.
type Handler struct {
	Store     *Store
	Customers CustomerReader
	Pricing   *pricing.Engine
}

type createPayload struct {
	CustomerID string `json:"customerId"`
}

type itemPayload struct {
	ProductID string `json:"productId" validate:"required"`
	Qty       int    `json:"qty" validate:"min=1"`
}

type qtyPayload struct {
	Qty int `json:"qty" validate:"min=1"`
}

// Create opens a new cart.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return
	}
	var payload createPayload
	if r.ContentLength != 0 {
		if err := common.DecodeJSON(r, &payload); err != nil {
			common.WriteError(w, err)
			return
		}
	}
	payload.CustomerID = strings.TrimSpace(payload.CustomerID)
	if payload.CustomerID != "" && h.Customers != nil {
		if _, err := h.Customers.Get(payload.CustomerID); err != nil {
			common.WriteError(w, err)
			return
		}
	}
	c := h.Store.Create(payload.CustomerID)
	common.JSON(w, http.StatusCreated, map[string]any{"data": h.view(c, nil)})
}

// Get returns cart contents and, when the cart has lines, a pricing preview.
// customerId and coupon query parameters drive the preview.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	var preview *pricing.Breakdown
	if !c.IsEmpty() && h.Pricing != nil {
		shopper, err := h.shopper(r, c)
		if err != nil {
			common.WriteError(w, err)
			return
		}
		breakdown, err := h.Pricing.Price(shopper, c.Items(), coupon.Normalize(r.URL.Query().Get("coupon")))
		if err != nil {
			common.WriteError(w, err)
			return
		}
		preview = &breakdown
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.view(c, preview)})
}

// AddItem adds or increments a cart line item.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	var payload itemPayload
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.ValidateStruct(payload); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := c.AddItem(strings.TrimSpace(payload.ProductID), payload.Qty); err != nil {
		common.WriteError(w, err)
		return
	}
	h.Get(w, r)
}

// UpdateItem replaces the quantity of a cart line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	var payload qtyPayload
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.ValidateStruct(payload); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := c.UpdateQuantity(chi.URLParam(r, "productId"), payload.Qty); err != nil {
		common.WriteError(w, err)
		return
	}
	h.Get(w, r)
}

// RemoveItem deletes a cart line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := c.RemoveItem(chi.URLParam(r, "productId")); err != nil {
		common.WriteError(w, err)
		return
	}
	h.Get(w, r)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Cart, bool) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart store not configured", nil)
		return nil, false
	}
	c, err := h.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return nil, false
	}
	return c, true
}

func (h *Handler) shopper(r *http.Request, c *Cart) (customer.Customer, error) {
	id := strings.TrimSpace(r.URL.Query().Get("customerId"))
	if id == "" {
		id = c.CustomerID
	}
	if id == "" || h.Customers == nil {
		return customer.Customer{ID: "guest", Tier: customer.TierRegular}, nil
	}
	return h.Customers.Get(id)
}

func (h *Handler) view(c *Cart, preview *pricing.Breakdown) map[string]any {
	items := c.Items()
	lines := make([]map[string]any, 0, len(items))
	for _, it := range items {
		lines = append(lines, map[string]any{
			"productId": it.ProductID,
			"qty":       it.Qty,
			"unitPrice": it.UnitPrice,
			"total":     it.Total(),
		})
	}
	out := map[string]any{
		"id":         c.ID,
		"customerId": c.CustomerID,
		"items":      lines,
		"subtotal":   c.Subtotal(),
	}
	if preview != nil {
		out["pricing"] = preview
	}
	return out
}
