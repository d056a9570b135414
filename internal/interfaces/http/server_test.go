package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-analytics/internal/config"
	"github.com/your-org/retail-analytics/internal/domain/dashboard"
	"github.com/your-org/retail-analytics/internal/pkg/auth"
	"github.com/your-org/retail-analytics/internal/pkg/cache"
	"github.com/your-org/retail-analytics/internal/pkg/metrics"
	"github.com/your-org/retail-analytics/internal/pkg/pdf"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "Retail Analytics", Version: "test", Environment: "test"},
		Server: config.ServerConfig{Port: "0", RequestTimeout: 5 * time.Second},
		Dashboard: config.DashboardConfig{
			Source:          "mock",
			FallbackEnabled: true,
			Timezone:        "UTC",
			DefaultDays:     30,
			MaxDays:         365,
		},
		JWT: config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", AccessTokenExpiry: time.Hour},
		Security: config.SecurityConfig{
			RateLimitPerMinute: 1000,
			CORSAllowedOrigins: []string{"*"},
			CORSAllowedMethods: []string{"GET", "DELETE", "OPTIONS"},
		},
		Report: config.ReportConfig{CompanyName: "Test", Currency: "₱"},
	}
}

func newTestServer(t *testing.T, checks map[string]HealthCheck) (*Server, *config.Config) {
	t.Helper()
	cfg := testConfig()
	logger, _ := test.NewNullLogger()
	m := metrics.NewCollector("test")
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	// No source: every request is answered from the fallback dataset.
	svc := dashboard.NewService(nil, cache.NewMemory[dashboard.Snapshot](time.Minute, 0, clock), logger, m, dashboard.Options{
		FallbackEnabled: true,
		Clock:           clock,
	})

	srv := NewServer(cfg, Dependencies{
		Service:  svc,
		Renderer: pdf.NewService(cfg.Report, time.UTC),
		Logger:   logger,
		Metrics:  m,
		Clock:    clock,
		Checks:   checks,
		Source:   svc.SourceName(),
	})
	return srv, cfg
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_DashboardFallsBackToMock(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/metrics?days=7", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data map[string]json.RawMessage `json:"data"`
		Meta struct {
			Source string `json:"source"`
			Mock   bool   `json:"mock"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Meta.Mock)
	assert.Equal(t, dashboard.MockSourceName, body.Meta.Source)
	assert.Len(t, body.Data, 7)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestServer_ReportHTML(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/report.pdf?format=html&days=7", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sample data")
}

func TestServer_AdminRequiresToken(t *testing.T) {
	srv, cfg := newTestServer(t, nil)

	w := serve(srv, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/cache", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.NewJWTManager(cfg.JWT, cfg.App.Name).GenerateAccessToken("ops", true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/cache", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(srv, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t, map[string]HealthCheck{
		"database": func(ctx context.Context) error { return nil },
	})
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	srv, _ = newTestServer(t, map[string]HealthCheck{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	})
	w = serve(srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestServer_ReadyAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"none"`)

	serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/metrics", nil))
	w = serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="GET",route="/api/v1/dashboard/metrics",status="200"} 1`)
	assert.Contains(t, w.Body.String(), `test_dashboard_fallbacks_total`)
}
