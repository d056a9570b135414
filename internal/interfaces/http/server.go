// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/retail-analytics/internal/config"
	"github.com/your-org/retail-analytics/internal/interfaces/http/handlers"
	"github.com/your-org/retail-analytics/internal/interfaces/http/middleware"
	"github.com/your-org/retail-analytics/internal/interfaces/http/routes"
	"github.com/your-org/retail-analytics/internal/pkg/auth"
	"github.com/your-org/retail-analytics/internal/pkg/metrics"
)

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// Dependencies are the collaborators the server is built from
type Dependencies struct {
	Service  handlers.DashboardService
	Renderer handlers.ReportRenderer
	Logger   *logrus.Logger
	Metrics  *metrics.Collector
	Redis    *redis.Client // optional, used for rate limiting
	Clock    clockwork.Clock
	// Checks are run by /health, keyed by dependency name
	Checks map[string]HealthCheck
	// Source names the dashboard data source for /ready
	Source string
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	deps       Dependencies
	gin        *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer creates a new HTTP server instance with its routes mounted
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		deps:      deps,
		gin:       gin.New(),
		startedAt: deps.Clock.Now(),
	}

	if len(cfg.Security.TrustedProxies) > 0 {
		if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			log.Printf("⚠️ Invalid trusted proxies: %v", err)
		}
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the root handler, for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	log.Printf("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	log.Printf("🌐 API Base URL: http://localhost:%s/api/v1", s.config.Server.Port)
	log.Printf("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)
	log.Printf("📈 Metrics: http://localhost:%s/metrics", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Println("🛑 Shutting down HTTP server...")

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	log.Println("✅ HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	// Recovery middleware - recover from panics
	s.gin.Use(gin.Recovery())

	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.deps.Logger))
	s.gin.Use(middleware.Metrics(s.deps.Metrics))
	s.gin.Use(middleware.CORS(s.config.Security))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth, no rate limit)
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	s.gin.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))

	dashboardHandler := handlers.NewDashboardHandler(s.deps.Service, s.config.Dashboard, s.config.Location(), s.deps.Clock, s.deps.Logger)
	h := routes.Handlers{
		Dashboard: dashboardHandler,
		Report:    handlers.NewReportHandler(dashboardHandler, s.deps.Renderer),
		Admin:     handlers.NewAdminHandler(s.deps.Service),
	}
	jwtManager := auth.NewJWTManager(s.config.JWT, s.config.App.Name)
	limiter := middleware.NewRateLimiter(s.config.Security, s.deps.Redis, s.deps.Logger)

	apiV1 := s.gin.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(limiter))
	routes.SetupRoutes(apiV1, h, jwtManager)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name,
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"metrics": "/api/v1/dashboard/metrics",
					"hourly":  "/api/v1/dashboard/hourly",
					"daily":   "/api/v1/dashboard/daily",
					"regions": "/api/v1/dashboard/regions",
					"report":  "/api/v1/dashboard/report.pdf",
					"admin":   "/api/v1/admin",
				},
			})
		})
	}
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			healthy = false
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":      status,
		"checks":      checks,
		"timestamp":   s.deps.Clock.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests. The dashboard can always
// answer because of the mock fallback, so readiness only reports the setup.
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"source":    s.deps.Source,
		"fallback":  s.config.Dashboard.FallbackEnabled,
		"timestamp": s.deps.Clock.Now().UTC(),
		"uptime":    s.deps.Clock.Since(s.startedAt).String(),
	})
}
