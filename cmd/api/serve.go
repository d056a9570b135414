// cmd/api/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/your-org/retail-analytics/internal/config"
	"github.com/your-org/retail-analytics/internal/domain/dashboard"
	"github.com/your-org/retail-analytics/internal/infrastructure/breaker"
	"github.com/your-org/retail-analytics/internal/infrastructure/database/postgres"
	redisdb "github.com/your-org/retail-analytics/internal/infrastructure/database/redis"
	"github.com/your-org/retail-analytics/internal/infrastructure/supabase"
	"github.com/your-org/retail-analytics/internal/interfaces/http"
	"github.com/your-org/retail-analytics/internal/pkg/cache"
	"github.com/your-org/retail-analytics/internal/pkg/logger"
	"github.com/your-org/retail-analytics/internal/pkg/metrics"
	"github.com/your-org/retail-analytics/internal/pkg/pdf"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if version != "dev" {
		cfg.App.Version = version
	}

	appLogger, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	collector := metrics.NewCollector("retail_analytics")
	checks := map[string]http.HealthCheck{}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		client, err := redisdb.NewConnection(cfg)
		if err != nil {
			if cfg.Cache.Driver == "redis" {
				return err
			}
			log.Printf("⚠️ Redis unavailable, rate limiting per process: %v", err)
		} else {
			defer client.Close()
			redisClient = client.GetClient()
			checks["redis"] = func(ctx context.Context) error { return client.Health() }
		}
	}

	source, closeSource := buildSource(cfg, checks)
	defer closeSource()

	if source != nil && cfg.Breaker.Enabled {
		source = breaker.Wrap(source, cfg.Breaker, collector)
	}

	resultCache, err := buildCache(cfg, redisClient, collector)
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	service := dashboard.NewService(source, resultCache, appLogger, collector, dashboard.Options{
		FailurePolicy:   dashboard.FailurePolicy(cfg.Dashboard.FailurePolicy),
		FallbackEnabled: cfg.Dashboard.FallbackEnabled,
		UseMockData:     cfg.Dashboard.UseMockData,
		UseViews:        cfg.Dashboard.UseViews,
		QueryTimeout:    cfg.Dashboard.QueryTimeout,
		MaxParallel:     cfg.Dashboard.MaxParallelQueries,
		TopN:            cfg.Dashboard.TopN,
		RecentLimit:     cfg.Dashboard.RecentLimit,
		Location:        cfg.Location(),
		Clock:           clock,
	})

	appLogger.WithFields(logrus.Fields{
		"source":   service.SourceName(),
		"cache":    resultCache.Driver(),
		"fallback": cfg.Dashboard.FallbackEnabled,
		"policy":   cfg.Dashboard.FailurePolicy,
	}).Info("Dashboard service configured")

	log.Println("✅ All systems operational!")

	server := http.NewServer(cfg, http.Dependencies{
		Service:  service,
		Renderer: pdf.NewService(cfg.Report, cfg.Location()),
		Logger:   appLogger,
		Metrics:  collector,
		Redis:    redisClient,
		Clock:    clock,
		Checks:   checks,
		Source:   service.SourceName(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Println("👋 Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	log.Println("✅ Server shutdown completed")
	return nil
}

// buildSource connects the configured data source. A source that cannot be
// reached is left nil so requests are answered from the fallback dataset.
func buildSource(cfg *config.Config, checks map[string]http.HealthCheck) (dashboard.Source, func()) {
	noop := func() {}

	switch cfg.Dashboard.Source {
	case "postgres":
		db, err := postgres.NewConnection(cfg)
		if err != nil {
			log.Printf("⚠️ Database unavailable, serving fallback data: %v", err)
			return nil, noop
		}
		checks["database"] = func(ctx context.Context) error { return db.Health() }
		return postgres.NewSource(db.GetDB(), cfg.Location()), func() { _ = db.Close() }

	case "supabase":
		src, err := supabase.NewSource(cfg.Supabase)
		if err != nil {
			log.Printf("⚠️ Supabase unavailable, serving fallback data: %v", err)
			return nil, noop
		}
		return src, noop

	default:
		log.Println("🧪 Mock data source selected")
		return nil, noop
	}
}

// buildCache creates the dashboard result cache with hit/miss metrics.
func buildCache(cfg *config.Config, rdb *redis.Client, m *metrics.Collector) (cache.Cache[dashboard.Snapshot], error) {
	driver := cfg.Cache.Driver
	if driver == "redis" && rdb == nil {
		return nil, errors.New("CACHE_DRIVER=redis but no Redis connection is available")
	}

	c, err := cache.New[dashboard.Snapshot](cache.Config{
		Driver:     driver,
		TTL:        cfg.Cache.TTL,
		MaxEntries: cfg.Cache.MaxEntries,
		KeyPrefix:  cfg.Cache.KeyPrefix,
	}, rdb)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard cache: %w", err)
	}

	return cache.Instrument(c, m.CacheHits.WithLabelValues(c.Driver()), m.CacheMisses.WithLabelValues(c.Driver())), nil
}
