package supabase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-analytics/internal/config"
	"github.com/your-org/retail-analytics/internal/domain/dashboard"
)

type recorder struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (r *recorder) last() *http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func newTestSource(t *testing.T, body string) (*Source, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.requests = append(rec.requests, r)
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Range", "0-1/2")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	src, err := NewSource(config.SupabaseConfig{URL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return src, rec
}

func week() dashboard.Filter {
	return dashboard.Filter{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewSource_RequiresCredentials(t *testing.T) {
	_, err := NewSource(config.SupabaseConfig{})
	assert.Error(t, err)
}

func TestSource_Transactions(t *testing.T) {
	body := `[
		{"id":"T1","timestamp":"2024-03-01T09:00:00","total_amount":"100.50","store_id":"S1","customer_id":null,"store":{"region":"NCR","city":"Manila","barangay":"Tondo"}},
		{"id":"T2","timestamp":null,"transaction_date":"2024-03-02","total_amount":50,"store_id":"S2","store":null}
	]`
	src, rec := newTestSource(t, body)

	f := week()
	f.Region = "NCR"
	rows, err := src.Transactions(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "T1", rows[0].ID)
	assert.Equal(t, "100.5", rows[0].Amount().String())
	assert.Equal(t, "NCR", rows[0].RegionName())
	assert.Nil(t, rows[0].CustomerID)
	assert.Nil(t, rows[1].Timestamp)
	assert.NotNil(t, rows[1].TransactionDate)
	assert.Equal(t, "Unknown", rows[1].RegionName())

	req := rec.last()
	assert.Equal(t, "/rest/v1/transactions", req.URL.Path)
	q := req.URL.Query()
	assert.Contains(t, q.Get("select"), "store:stores!inner(region,city,barangay)")
	assert.Equal(t, "eq.NCR", q.Get("store.region"))
	assert.Equal(t, "(and(timestamp.gte.2024-03-01T00:00:00Z,timestamp.lt.2024-03-08T00:00:00Z))", q.Get("or"))
	assert.Equal(t, "test-key", req.Header.Get("apikey"))
}

func TestSource_RecentTransactions(t *testing.T) {
	src, rec := newTestSource(t, `[]`)

	f := week()
	f.StoreID = "S9"
	rows, err := src.RecentTransactions(context.Background(), f, 20)
	require.NoError(t, err)
	assert.Empty(t, rows)

	q := rec.last().URL.Query()
	assert.Equal(t, "20", q.Get("limit"))
	assert.Equal(t, "eq.S9", q.Get("store_id"))
	assert.Contains(t, q.Get("order"), "timestamp.desc")
	assert.NotContains(t, q.Get("select"), "!inner")
}

func TestSource_Items(t *testing.T) {
	body := `[
		{"transaction_id":"T1","product_id":"MAR001","quantity":2,"total_price":"150.00",
		 "product":{"id":"MAR001","name":"Marlboro Red","category":{"name":"Tobacco"},"brand":{"name":"Marlboro"}},
		 "transaction":{"timestamp":"2024-03-01T09:00:00","store_id":"S1","store":{"region":"NCR"}}}
	]`
	src, rec := newTestSource(t, body)

	f := week()
	f.Region = "NCR"
	rows, err := src.Items(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Tobacco", rows[0].CategoryName())
	assert.Equal(t, "Marlboro", rows[0].BrandName())
	assert.Equal(t, int64(2), rows[0].Quantity)

	req := rec.last()
	assert.Equal(t, "/rest/v1/transaction_items", req.URL.Path)
	q, err := url.ParseQuery(req.URL.RawQuery)
	require.NoError(t, err)
	assert.Equal(t, "eq.NCR", q.Get("transaction.store.region"))
	assert.Contains(t, q.Get("transaction.or"), "timestamp.gte.2024-03-01T00:00:00Z")
}

func TestSource_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"boom","code":"XX000"}`))
	}))
	t.Cleanup(srv.Close)

	src, err := NewSource(config.SupabaseConfig{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	_, err = src.Transactions(context.Background(), week())
	assert.Error(t, err)
}

func TestSource_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	src, err := NewSource(config.SupabaseConfig{URL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = src.Items(ctx, week())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
