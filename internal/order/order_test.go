package order

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/events"
	"github.com/noah-isme/toko-checkout/internal/inventory"
	"github.com/noah-isme/toko-checkout/internal/money"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

func sampleOrder(t *testing.T, store *Store, customerID string) *Order {
	t.Helper()
	items := []pricing.LineItem{{ProductID: "SHIRT", Qty: 2, UnitPrice: money.MustParse("30")}}
	b := pricing.Breakdown{Subtotal: money.MustParse("60"), Total: money.MustParse("100.01")}
	o, err := New(store.NextID(), customerID, items, b, "", 3, time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Add(o))
	return o
}

func TestNewOrderSnapshotsItems(t *testing.T) {
	items := []pricing.LineItem{{ProductID: "SHIRT", Qty: 1, UnitPrice: money.MustParse("30")}}
	o, err := New("ORD-1", "c1", items, pricing.Breakdown{Total: money.MustParse("100.01")}, "", 3, time.Now())
	require.NoError(t, err)
	items[0].Qty = 50
	require.Equal(t, 1, o.Items[0].Qty)
	require.Equal(t, StatusOpen, o.Status)
	require.Equal(t, "33.34", o.InstallmentValue.StringFixed(2))

	_, err = New("ORD-2", "c1", items, pricing.Breakdown{}, "", 0, time.Now())
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestTransitions(t *testing.T) {
	o := &Order{ID: "ORD-1", Status: StatusOpen}
	require.NoError(t, o.Pay())
	require.Equal(t, StatusPaid, o.Status)
	require.ErrorIs(t, o.Pay(), common.ErrInvalidTransition)
	require.ErrorIs(t, o.Cancel(), common.ErrInvalidTransition)

	o = &Order{ID: "ORD-2", Status: StatusOpen}
	require.NoError(t, o.Cancel())
	err := o.Pay()
	require.ErrorIs(t, err, common.ErrInvalidTransition)
	require.Contains(t, err.Error(), "ORD-2")
}

func TestStoreIDsIncrease(t *testing.T) {
	store := NewStore()
	require.Equal(t, "ORD-1", store.NextID())
	require.Equal(t, "ORD-2", store.NextID())
	_, err := store.Get("ORD-9")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestStoreListFiltersAndPaginates(t *testing.T) {
	store := NewStore()
	for i := 0; i < 5; i++ {
		sampleOrder(t, store, "c1")
	}
	sampleOrder(t, store, "c2")
	_, err := store.Update("ORD-2", (*Order).Pay)
	require.NoError(t, err)

	page, total := store.List(ListFilter{CustomerID: "c1"}, 2, 2)
	require.Equal(t, 5, total)
	require.Len(t, page, 2)
	require.Equal(t, "ORD-3", page[0].ID)

	paid, total := store.List(ListFilter{Status: StatusPaid}, 1, 10)
	require.Equal(t, 1, total)
	require.Equal(t, "ORD-2", paid[0].ID)

	empty, total := store.List(ListFilter{}, 9, 10)
	require.Empty(t, empty)
	require.Equal(t, 6, total)
}

func newService(t *testing.T) (*Service, *inventory.Ledger, *events.MemoryStore) {
	t.Helper()
	ledger := inventory.NewLedger()
	require.NoError(t, ledger.Set("SHIRT", 3))
	evStore := events.NewMemoryStore()
	return &Service{
		Store:  NewStore(),
		Events: &events.Bus{Store: evStore},
		Stock:  ledger,
		Logger: zerolog.Nop(),
	}, ledger, evStore
}

func TestServicePayEmitsEvent(t *testing.T) {
	svc, _, evStore := newService(t)
	o := sampleOrder(t, svc.Store, "c1")

	paid, err := svc.Pay(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.Len(t, evStore.List(events.TopicOrderPaid), 1)

	_, err = svc.Pay(context.Background(), o.ID)
	require.ErrorIs(t, err, common.ErrInvalidTransition)
	require.Len(t, evStore.List(events.TopicOrderPaid), 1)

	_, err = svc.Pay(context.Background(), "ORD-404")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestServiceCancelRestoresStock(t *testing.T) {
	svc, ledger, evStore := newService(t)
	o := sampleOrder(t, svc.Store, "c1")

	canceled, err := svc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCanceled, canceled.Status)
	require.Equal(t, 5, ledger.Available("SHIRT"))
	require.Len(t, evStore.List(events.TopicOrderCanceled), 1)

	_, err = svc.Cancel(context.Background(), o.ID)
	require.ErrorIs(t, err, common.ErrInvalidTransition)
	require.Equal(t, 5, ledger.Available("SHIRT"))
}

func TestHandlerPayAndList(t *testing.T) {
	svc, _, _ := newService(t)
	sampleOrder(t, svc.Store, "c1")
	h := &Handler{Svc: svc}
	r := chi.NewRouter()
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Post("/orders/{id}/pay", h.Pay)
	r.Post("/orders/{id}/cancel", h.Cancel)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/ORD-1/pay", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"PAID"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/ORD-1/cancel", nil))
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?status=paid", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?status=lost", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/ORD-77", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
