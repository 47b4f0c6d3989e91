package customer

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/toko-checkout/internal/common"
)

type Handler struct {
	Dir *Directory
}

type pointsPayload struct {
	Points int `json:"points" validate:"min=0"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Dir == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "customer directory not configured", nil)
		return
	}
	c, err := h.Dir.Get(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

func (h *Handler) AddPoints(w http.ResponseWriter, r *http.Request) {
	h.adjustPoints(w, r, (*Customer).AddPoints)
}

func (h *Handler) RedeemPoints(w http.ResponseWriter, r *http.Request) {
	h.adjustPoints(w, r, (*Customer).RedeemPoints)
}

func (h *Handler) adjustPoints(w http.ResponseWriter, r *http.Request, op func(*Customer, int) error) {
	if h.Dir == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "customer directory not configured", nil)
		return
	}
	var payload pointsPayload
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.ValidateStruct(payload); err != nil {
		common.WriteError(w, err)
		return
	}
	c, err := h.Dir.Update(chi.URLParam(r, "id"), func(c *Customer) error {
		return op(c, payload.Points)
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}
