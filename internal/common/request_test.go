package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/reports/sales?top=3&bad=x&neg=-2", nil)
	require.Equal(t, 3, QueryInt(r, "top", 5))
	require.Equal(t, 5, QueryInt(r, "bad", 5))
	require.Equal(t, 5, QueryInt(r, "neg", 5))
	require.Equal(t, 5, QueryInt(r, "missing", 5))
}

func TestParsePagination(t *testing.T) {
	page, perPage := ParsePagination(httptest.NewRequest(http.MethodGet, "/orders", nil), 20)
	require.Equal(t, 1, page)
	require.Equal(t, 20, perPage)

	page, perPage = ParsePagination(httptest.NewRequest(http.MethodGet, "/orders?page=3&limit=500", nil), 20)
	require.Equal(t, 3, page)
	require.Equal(t, MaxPerPage, perPage)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:4321"
	require.Equal(t, "192.0.2.1", ClientIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.9")
	require.Equal(t, "198.51.100.9", ClientIP(r))

	r.Header.Set("X-Forwarded-For", " 203.0.113.5 , 10.0.0.1")
	require.Equal(t, "203.0.113.5", ClientIP(r))

	require.Empty(t, ClientIP(nil))
}
