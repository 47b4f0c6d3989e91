package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/resilience"
)

// Handler exposes the sales report. When R is set, summaries are cached per
// recorded-order count so a new paid order naturally bypasses stale entries.
type Handler struct {
	Sales *Sales
	R     *redis.Client
	TTL   time.Duration
	// Breaker skips the cache while Redis keeps failing. Optional.
	Breaker *resilience.Breaker
}

func cacheKey(orders, top int) string {
	return fmt.Sprintf("report:sales:%d:%d", orders, top)
}

// Summary returns aggregated sales figures. ?top bounds the product ranking.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.Sales == nil {
		common.JSONError(w, http.StatusInternalServerError, "REPORT_NOT_CONFIGURED", "sales report not configured", nil)
		return
	}
	top := common.QueryInt(r, "top", 5)
	key := cacheKey(h.Sales.Len(), top)
	if cached, ok := h.fromCache(r.Context(), key); ok {
		w.Header().Set("X-Cache", "HIT")
		common.JSON(w, http.StatusOK, map[string]any{"data": cached})
		return
	}
	summary, err := h.Sales.Summary(top)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	h.store(r.Context(), key, summary)
	common.JSON(w, http.StatusOK, map[string]any{"data": summary})
}

func (h *Handler) fromCache(ctx context.Context, key string) (json.RawMessage, bool) {
	if h.R == nil || h.TTL <= 0 {
		return nil, false
	}
	var data []byte
	err := h.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		data, err = h.R.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil || len(data) == 0 || !json.Valid(data) {
		return nil, false
	}
	return json.RawMessage(data), true
}

func (h *Handler) store(ctx context.Context, key string, value any) {
	if h.R == nil || h.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = h.Breaker.Do(ctx, func(ctx context.Context) error {
		return h.R.Set(ctx, key, data, h.TTL).Err()
	})
}
