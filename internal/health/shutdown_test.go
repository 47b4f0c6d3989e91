package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/health"
)

type staticChecker struct{ err error }

func (c staticChecker) PingRedis(context.Context, time.Duration) error { return c.err }

func readyBody(t *testing.T, h health.Handler) (int, map[string]string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	body := map[string]string{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestDrainingServerIsNotReady(t *testing.T) {
	t.Cleanup(func() { health.SetReady(true) })
	h := health.Handler{Checker: staticChecker{}, Components: map[string]string{"store": "memory"}}

	code, body := readyBody(t, h)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "memory", body["store"])
	require.NotContains(t, body, "server")

	health.SetReady(false)
	code, body = readyBody(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "shutting down", body["server"])
	require.Equal(t, "ok", body["redis"])
}
