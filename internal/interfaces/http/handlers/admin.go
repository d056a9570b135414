// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles operator endpoints
type AdminHandler struct {
	service DashboardService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service DashboardService) *AdminHandler {
	return &AdminHandler{service: service}
}

// FlushCache handles DELETE /admin/cache
func (h *AdminHandler) FlushCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to flush dashboard cache",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard cache flushed successfully",
	})
}
