// internal/interfaces/http/handlers/dashboard.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/your-org/retail-analytics/internal/config"
	"github.com/your-org/retail-analytics/internal/domain/dashboard"
)

const dateLayout = "2006-01-02"

// DashboardService is the part of dashboard.Service the handlers use
type DashboardService interface {
	GetDashboardMetrics(ctx context.Context, req dashboard.Request) (dashboard.Snapshot, error)
	InvalidateCache(ctx context.Context) error
}

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	service DashboardService
	config  config.DashboardConfig
	loc     *time.Location
	clock   clockwork.Clock
	logger  *logrus.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardService, cfg config.DashboardConfig, loc *time.Location, clock clockwork.Clock, logger *logrus.Logger) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DashboardHandler{
		service: service,
		config:  cfg,
		loc:     loc,
		clock:   clock,
		logger:  logger,
	}
}

// GetMetrics handles GET /dashboard/metrics
func (h *DashboardHandler) GetMetrics(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard metrics retrieved successfully",
		"data":    snap.Metrics,
		"meta":    snapshotMeta(snap),
	})
}

// GetHourly handles GET /dashboard/hourly
func (h *DashboardHandler) GetHourly(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Hourly transaction volume retrieved successfully",
		"data":    snap.Metrics.TransactionVolume,
		"meta":    snapshotMeta(snap),
	})
}

// GetDaily handles GET /dashboard/daily
func (h *DashboardHandler) GetDaily(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Daily sales retrieved successfully",
		"data":    snap.Metrics.SalesTrend,
		"meta":    snapshotMeta(snap),
	})
}

// GetRegions handles GET /dashboard/regions
func (h *DashboardHandler) GetRegions(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Regional performance retrieved successfully",
		"data":    snap.Metrics.RegionPerformance,
		"meta":    snapshotMeta(snap),
	})
}

// snapshot parses the request and loads the dashboard, writing the error
// response itself when that fails.
func (h *DashboardHandler) snapshot(c *gin.Context) (dashboard.Snapshot, bool) {
	req, err := h.parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return dashboard.Snapshot{}, false
	}

	snap, err := h.service.GetDashboardMetrics(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return dashboard.Snapshot{}, false
	}
	return snap, true
}

// parseRequest reads from/to (inclusive local dates) or days, plus the
// region, store_id and mock parameters.
func (h *DashboardHandler) parseRequest(c *gin.Context) (dashboard.Request, error) {
	var req dashboard.Request

	fromParam, toParam := c.Query("from"), c.Query("to")
	switch {
	case fromParam != "" || toParam != "":
		if fromParam == "" || toParam == "" {
			return req, fmt.Errorf("from and to must be given together")
		}
		from, err := time.ParseInLocation(dateLayout, fromParam, h.loc)
		if err != nil {
			return req, fmt.Errorf("invalid from date %q, expected YYYY-MM-DD", fromParam)
		}
		to, err := time.ParseInLocation(dateLayout, toParam, h.loc)
		if err != nil {
			return req, fmt.Errorf("invalid to date %q, expected YYYY-MM-DD", toParam)
		}
		if to.Before(from) {
			return req, fmt.Errorf("to must not be before from")
		}
		req.Filter = dashboard.Filter{From: from, To: to.AddDate(0, 0, 1)}

	default:
		days := h.config.DefaultDays
		if daysParam := c.Query("days"); daysParam != "" {
			n, err := strconv.Atoi(daysParam)
			if err != nil || n <= 0 {
				return req, fmt.Errorf("days must be a positive integer")
			}
			days = n
		}
		req.Filter = dashboard.LastNDays(h.clock.Now(), days, h.loc)
	}

	if h.config.MaxDays > 0 && req.Filter.Duration() > time.Duration(h.config.MaxDays)*24*time.Hour+time.Hour {
		return req, fmt.Errorf("date range must not exceed %d days", h.config.MaxDays)
	}

	req.Filter.Region = c.Query("region")
	req.Filter.StoreID = c.Query("store_id")

	if mockParam := c.Query("mock"); mockParam != "" {
		useMock, err := strconv.ParseBool(mockParam)
		if err != nil {
			return req, fmt.Errorf("mock must be true or false")
		}
		req.UseMock = useMock
	}

	return req, nil
}

func (h *DashboardHandler) respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	entry := h.logger.WithError(err).WithField("path", c.FullPath())
	if status >= http.StatusInternalServerError {
		entry.Error("Dashboard request failed")
	} else {
		entry.Warn("Dashboard request rejected")
	}
	_ = c.Error(err)

	c.JSON(status, gin.H{
		"error": errorMessage(status, err),
	})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, dashboard.ErrSourceUnavailable),
		errors.Is(err, dashboard.ErrAllSectionsFailed),
		errors.Is(err, dashboard.ErrPartialResult):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(status int, err error) string {
	switch status {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusGatewayTimeout:
		return "Dashboard query timed out"
	case http.StatusBadGateway:
		return "Dashboard data source unavailable"
	default:
		return "Failed to retrieve dashboard metrics"
	}
}

func snapshotMeta(snap dashboard.Snapshot) gin.H {
	failed := snap.FailedSections
	if failed == nil {
		failed = []string{}
	}
	return gin.H{
		"source":          snap.Source,
		"mock":            snap.Mock,
		"cached":          snap.Cached,
		"failed_sections": failed,
		"generated_at":    snap.GeneratedAt,
		"from":            snap.Filter.From,
		"to":              snap.Filter.To,
	}
}
