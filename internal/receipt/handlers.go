package receipt

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/order"
)

// OrderGetter loads order snapshots.
type OrderGetter interface {
	Get(id string) (order.Order, error)
}

// Handler serves plain-text receipts.
type Handler struct {
	Orders  OrderGetter
	Catalog ProductReader
}

// Get renders the receipt for the order in the id URL parameter.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order store not configured", nil)
		return
	}
	o, err := h.Orders.Get(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = Print(w, Lines(o, h.Catalog))
}
