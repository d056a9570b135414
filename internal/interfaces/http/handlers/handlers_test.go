package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-analytics/internal/config"
	"github.com/your-org/retail-analytics/internal/domain/dashboard"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockService struct {
	mock.Mock
}

func (m *mockService) GetDashboardMetrics(ctx context.Context, req dashboard.Request) (dashboard.Snapshot, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(dashboard.Snapshot), args.Error(1)
}

func (m *mockService) InvalidateCache(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type stubRenderer struct {
	err error
}

func (r stubRenderer) RenderHTML(snap dashboard.Snapshot) (string, error) {
	return "<h1>" + snap.Source + "</h1>", r.err
}

func (r stubRenderer) GenerateReport(snap dashboard.Snapshot) (*bytes.Buffer, error) {
	if r.err != nil {
		return nil, r.err
	}
	return bytes.NewBufferString("%PDF-1.4"), nil
}

var manila = time.FixedZone("PHT", 8*60*60)

func newTestRouter(svc *mockService, renderer ReportRenderer) *gin.Engine {
	logger, _ := test.NewNullLogger()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 15, 10, 0, 0, 0, manila))
	cfg := config.DashboardConfig{DefaultDays: 30, MaxDays: 365}

	dash := NewDashboardHandler(svc, cfg, manila, clock, logger)
	report := NewReportHandler(dash, renderer)
	admin := NewAdminHandler(svc)

	r := gin.New()
	r.GET("/dashboard/metrics", dash.GetMetrics)
	r.GET("/dashboard/hourly", dash.GetHourly)
	r.GET("/dashboard/daily", dash.GetDaily)
	r.GET("/dashboard/regions", dash.GetRegions)
	r.GET("/dashboard/report.pdf", report.GetReport)
	r.DELETE("/admin/cache", admin.FlushCache)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func sampleSnapshot(f dashboard.Filter) dashboard.Snapshot {
	return dashboard.Snapshot{
		Metrics: dashboard.DashboardMetrics{
			KPIMetrics:         &dashboard.KPIMetrics{},
			SalesTrend:         []dashboard.DailySales{{Date: "2024-03-01", Total: decimal.NewFromInt(10), Count: 1}},
			TransactionVolume:  dashboard.FillHours(nil),
			TopProducts:        []dashboard.ProductPerformance{},
			TopCategories:      []dashboard.CategoryPerformance{},
			RegionPerformance:  []dashboard.RegionPerformance{{Region: "NCR", Total: decimal.NewFromInt(10), Count: 1, Share: 100}},
			RecentTransactions: []dashboard.RecentTransaction{},
		},
		Filter:      f,
		Source:      "postgres",
		GeneratedAt: time.Date(2024, 3, 15, 2, 0, 0, 0, time.UTC),
	}
}

func TestGetMetrics_DateRange(t *testing.T) {
	svc := &mockService{}
	want := dashboard.Request{Filter: dashboard.Filter{
		From:   time.Date(2024, 3, 1, 0, 0, 0, 0, manila),
		To:     time.Date(2024, 3, 8, 0, 0, 0, 0, manila),
		Region: "NCR",
	}}
	svc.On("GetDashboardMetrics", mock.Anything, want).Return(sampleSnapshot(want.Filter), nil).Once()

	w := get(newTestRouter(svc, stubRenderer{}), "/dashboard/metrics?from=2024-03-01&to=2024-03-07&region=NCR")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Message string                     `json:"message"`
		Data    map[string]json.RawMessage `json:"data"`
		Meta    map[string]interface{}     `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	keys := make([]string, 0, len(body.Data))
	for k := range body.Data {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"kpiMetrics", "salesTrend", "transactionVolume", "topProducts",
		"topCategories", "regionPerformance", "recentTransactions",
	}, keys)
	assert.Equal(t, "postgres", body.Meta["source"])
	assert.Equal(t, false, body.Meta["cached"])
	assert.Equal(t, []interface{}{}, body.Meta["failed_sections"])
	svc.AssertExpectations(t)
}

func TestGetMetrics_DefaultWindow(t *testing.T) {
	svc := &mockService{}
	svc.On("GetDashboardMetrics", mock.Anything, mock.MatchedBy(func(req dashboard.Request) bool {
		return req.Filter.From.Equal(time.Date(2024, 2, 15, 0, 0, 0, 0, manila)) &&
			req.Filter.To.Equal(time.Date(2024, 3, 16, 0, 0, 0, 0, manila)) &&
			req.UseMock
	})).Return(sampleSnapshot(dashboard.Filter{}), nil).Once()

	w := get(newTestRouter(svc, stubRenderer{}), "/dashboard/metrics?mock=true")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGetMetrics_Days(t *testing.T) {
	svc := &mockService{}
	svc.On("GetDashboardMetrics", mock.Anything, mock.MatchedBy(func(req dashboard.Request) bool {
		return req.Filter.Duration() == 7*24*time.Hour && req.Filter.StoreID == "ST100001"
	})).Return(sampleSnapshot(dashboard.Filter{}), nil).Once()

	w := get(newTestRouter(svc, stubRenderer{}), "/dashboard/metrics?days=7&store_id=ST100001")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGetMetrics_BadRequests(t *testing.T) {
	r := newTestRouter(&mockService{}, stubRenderer{})

	for _, target := range []string{
		"/dashboard/metrics?from=2024-03-01",
		"/dashboard/metrics?from=03/01/2024&to=2024-03-07",
		"/dashboard/metrics?from=2024-03-07&to=2024-03-01",
		"/dashboard/metrics?days=0",
		"/dashboard/metrics?days=abc",
		"/dashboard/metrics?days=400",
		"/dashboard/metrics?from=2022-01-01&to=2024-01-01",
		"/dashboard/metrics?mock=maybe",
	} {
		w := get(r, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Contains(t, w.Body.String(), `"error"`, target)
	}
}

func TestGetMetrics_ServiceErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: bad", dashboard.ErrInvalidFilter), http.StatusBadRequest},
		{dashboard.ErrSourceUnavailable, http.StatusBadGateway},
		{fmt.Errorf("wrap: %w", dashboard.ErrAllSectionsFailed), http.StatusBadGateway},
		{dashboard.ErrPartialResult, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		svc := &mockService{}
		svc.On("GetDashboardMetrics", mock.Anything, mock.Anything).Return(dashboard.Snapshot{}, tc.err).Once()

		w := get(newTestRouter(svc, stubRenderer{}), "/dashboard/metrics")
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}

func TestSingleAggregateEndpoints(t *testing.T) {
	svc := &mockService{}
	svc.On("GetDashboardMetrics", mock.Anything, mock.Anything).Return(sampleSnapshot(dashboard.Filter{}), nil)
	r := newTestRouter(svc, stubRenderer{})

	var hourly struct {
		Data []dashboard.HourlyVolume `json:"data"`
	}
	w := get(r, "/dashboard/hourly")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hourly))
	assert.Len(t, hourly.Data, 24)

	var daily struct {
		Data []dashboard.DailySales `json:"data"`
	}
	w = get(r, "/dashboard/daily")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &daily))
	assert.Equal(t, "2024-03-01", daily.Data[0].Date)

	var regions struct {
		Data []dashboard.RegionPerformance `json:"data"`
	}
	w = get(r, "/dashboard/regions")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &regions))
	assert.Equal(t, "NCR", regions.Data[0].Region)
}

func TestGetReport(t *testing.T) {
	svc := &mockService{}
	f := dashboard.Filter{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, manila),
		To:   time.Date(2024, 3, 8, 0, 0, 0, 0, manila),
	}
	svc.On("GetDashboardMetrics", mock.Anything, mock.Anything).Return(sampleSnapshot(f), nil)

	w := get(newTestRouter(svc, stubRenderer{}), "/dashboard/report.pdf?from=2024-03-01&to=2024-03-07")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="dashboard-2024-03-01-2024-03-07.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())

	w = get(newTestRouter(svc, stubRenderer{}), "/dashboard/report.pdf?format=html")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>postgres</h1>")

	w = get(newTestRouter(svc, stubRenderer{err: errors.New("wkhtmltopdf not found")}), "/dashboard/report.pdf")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestFlushCache(t *testing.T) {
	svc := &mockService{}
	svc.On("InvalidateCache", mock.Anything).Return(nil).Once()
	svc.On("InvalidateCache", mock.Anything).Return(errors.New("redis down")).Once()
	r := newTestRouter(svc, stubRenderer{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/cache", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/cache", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	svc.AssertExpectations(t)
}
