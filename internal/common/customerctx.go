package common

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const customerIDKey ctxKey = "checkout/customer-id"

// CustomerHeader carries the shopper id on API requests.
const CustomerHeader = "X-Customer-ID"

// WithCustomerID stores the shopper identifier on the provided context.
func WithCustomerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, customerIDKey, id)
}

// CustomerID extracts the shopper identifier from the context if present.
func CustomerID(ctx context.Context) (string, bool) {
	v := ctx.Value(customerIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// CustomerContext copies the X-Customer-ID header into the request context.
func CustomerContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(CustomerHeader)); id != "" {
			r = r.WithContext(WithCustomerID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
