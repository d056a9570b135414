// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-analytics/internal/interfaces/http/handlers"
	"github.com/your-org/retail-analytics/internal/interfaces/http/middleware"
	"github.com/your-org/retail-analytics/internal/pkg/auth"
)

// Handlers groups the handlers mounted under /api/v1
type Handlers struct {
	Dashboard *handlers.DashboardHandler
	Report    *handlers.ReportHandler
	Admin     *handlers.AdminHandler
}

// SetupDashboardRoutes sets up the read-only dashboard routes
func SetupDashboardRoutes(rg *gin.RouterGroup, h Handlers) {
	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("/metrics", h.Dashboard.GetMetrics)
		dashboard.GET("/hourly", h.Dashboard.GetHourly)
		dashboard.GET("/daily", h.Dashboard.GetDaily)
		dashboard.GET("/regions", h.Dashboard.GetRegions)
		dashboard.GET("/report.pdf", h.Report.GetReport)
	}
}

// SetupAdminRoutes sets up operator routes. All require an admin token.
func SetupAdminRoutes(rg *gin.RouterGroup, h Handlers, jwtManager *auth.JWTManager) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.DELETE("/cache", h.Admin.FlushCache)
	}
}

// SetupRoutes sets up all API routes
func SetupRoutes(rg *gin.RouterGroup, h Handlers, jwtManager *auth.JWTManager) {
	SetupDashboardRoutes(rg, h)
	SetupAdminRoutes(rg, h, jwtManager)
}
