package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// IdempotencyHeader carries the client-chosen key for a write request.
const IdempotencyHeader = "Idempotency-Key"

const idemPending = "pending"

// Idem rejects repeated write requests that share an Idempotency-Key. Keys are
// held in Redis; without a client the middleware is a no-op.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

// hashKey scopes the client key by path and shopper so two customers reusing a
// key do not collide.
func hashKey(path, customerID, key string) string {
	sum := sha256.Sum256([]byte(path + "|" + customerID + "|" + key))
	return "idem:" + hex.EncodeToString(sum[:])
}

func (i Idem) ttl() time.Duration {
	if i.TTL <= 0 {
		return 24 * time.Hour
	}
	return i.TTL
}

type idemRecorder struct {
	http.ResponseWriter
	status int
}

func (r *idemRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *idemRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Middleware claims the key before the handler runs and records the outcome
// status afterwards. A replay gets 409 with the first outcome in the details.
// Keys whose first attempt ended in a 5xx are released so the client can retry.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(IdempotencyHeader)
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		customerID, _ := CustomerID(ctx)
		if customerID == "" {
			customerID = r.Header.Get(CustomerHeader)
		}
		key := hashKey(r.URL.Path, customerID, header)

		claimed, err := i.R.SetNX(ctx, key, idemPending, i.ttl()).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", map[string]any{"error": err.Error()})
			return
		}
		if !claimed {
			i.writeReplay(ctx, w, key)
			return
		}

		rec := &idemRecorder{ResponseWriter: w}
		completed := false
		defer func() {
			bg := context.WithoutCancel(ctx)
			if !completed || rec.status >= http.StatusInternalServerError {
				_ = i.R.Del(bg, key).Err()
				return
			}
			_ = i.R.Set(bg, key, strconv.Itoa(rec.status), i.ttl()).Err()
		}()
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		completed = true
	})
}

func (i Idem) writeReplay(ctx context.Context, w http.ResponseWriter, key string) {
	prev, err := i.R.Get(ctx, key).Result()
	if err != nil || prev == idemPending {
		JSONError(w, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "a request with this key is still being processed", nil)
		return
	}
	details := map[string]any{}
	if status, convErr := strconv.Atoi(prev); convErr == nil {
		details["original_status"] = status
	}
	JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", details)
}
