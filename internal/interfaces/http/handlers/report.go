// internal/interfaces/http/handlers/report.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-analytics/internal/domain/dashboard"
)

// ReportRenderer turns a dashboard snapshot into a printable report
type ReportRenderer interface {
	RenderHTML(snap dashboard.Snapshot) (string, error)
	GenerateReport(snap dashboard.Snapshot) (*bytes.Buffer, error)
}

// ReportHandler handles report export endpoints
type ReportHandler struct {
	dashboard *DashboardHandler
	renderer  ReportRenderer
}

// NewReportHandler creates a new report handler
func NewReportHandler(dashboard *DashboardHandler, renderer ReportRenderer) *ReportHandler {
	return &ReportHandler{
		dashboard: dashboard,
		renderer:  renderer,
	}
}

// GetReport handles GET /dashboard/report.pdf. format=html returns the
// report body without PDF conversion.
func (h *ReportHandler) GetReport(c *gin.Context) {
	snap, ok := h.dashboard.snapshot(c)
	if !ok {
		return
	}

	if c.Query("format") == "html" {
		body, err := h.renderer.RenderHTML(snap)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
		return
	}

	pdf, err := h.renderer.GenerateReport(snap)
	if err != nil {
		h.fail(c, err)
		return
	}

	filename := fmt.Sprintf("dashboard-%s-%s.pdf",
		snap.Filter.From.In(h.dashboard.loc).Format(dateLayout),
		snap.Filter.To.In(h.dashboard.loc).AddDate(0, 0, -1).Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdf.Bytes())
}

func (h *ReportHandler) fail(c *gin.Context, err error) {
	h.dashboard.logger.WithError(err).Error("Failed to generate dashboard report")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to generate report",
	})
}
