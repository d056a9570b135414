// internal/infrastructure/breaker/source.go
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker"
	"github.com/your-org/retail-analytics/internal/config"
	"github.com/your-org/retail-analytics/internal/domain/dashboard"
	"github.com/your-org/retail-analytics/internal/pkg/metrics"
)

// Source guards a dashboard source with a circuit breaker and records
// per-operation latency. It implements dashboard.ViewSource whether or not
// the wrapped source does.
type Source struct {
	next    dashboard.Source
	views   dashboard.ViewSource
	cb      *gobreaker.CircuitBreaker
	metrics *metrics.Collector
}

// Wrap returns next guarded by a breaker configured from cfg.
func Wrap(next dashboard.Source, cfg config.BreakerConfig, m *metrics.Collector) *Source {
	s := &Source{next: next, metrics: m}
	if views, ok := next.(dashboard.ViewSource); ok {
		s.views = views
	}

	name := next.Name()
	s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// Missing views and caller cancellation say nothing about source health.
			return err == nil ||
				errors.Is(err, dashboard.ErrViewsUnsupported) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("⚡ Circuit breaker '%s' state changed from %v to %v", name, from, to)
			if m != nil {
				m.BreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
	if m != nil {
		m.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))
	}

	return s
}

func (s *Source) Name() string { return s.next.Name() }

// State reports the breaker state for health checks.
func (s *Source) State() gobreaker.State { return s.cb.State() }

func (s *Source) Transactions(ctx context.Context, f dashboard.Filter) ([]dashboard.TransactionRow, error) {
	return call(s, "transactions", func() ([]dashboard.TransactionRow, error) {
		return s.next.Transactions(ctx, f)
	})
}

func (s *Source) Items(ctx context.Context, f dashboard.Filter) ([]dashboard.ItemRow, error) {
	return call(s, "items", func() ([]dashboard.ItemRow, error) {
		return s.next.Items(ctx, f)
	})
}

func (s *Source) RecentTransactions(ctx context.Context, f dashboard.Filter, limit int) ([]dashboard.TransactionRow, error) {
	return call(s, "recent_transactions", func() ([]dashboard.TransactionRow, error) {
		return s.next.RecentTransactions(ctx, f, limit)
	})
}

func (s *Source) DailySalesView(ctx context.Context, f dashboard.Filter) ([]dashboard.DailySales, error) {
	if s.views == nil {
		return nil, dashboard.ErrViewsUnsupported
	}
	return call(s, "daily_sales_view", func() ([]dashboard.DailySales, error) {
		return s.views.DailySalesView(ctx, f)
	})
}

func (s *Source) HourlyPatternsView(ctx context.Context, f dashboard.Filter) ([]dashboard.HourlyVolume, error) {
	if s.views == nil {
		return nil, dashboard.ErrViewsUnsupported
	}
	return call(s, "hourly_patterns_view", func() ([]dashboard.HourlyVolume, error) {
		return s.views.HourlyPatternsView(ctx, f)
	})
}

func (s *Source) ProductPerformanceView(ctx context.Context, f dashboard.Filter, limit int) ([]dashboard.ProductPerformance, error) {
	if s.views == nil {
		return nil, dashboard.ErrViewsUnsupported
	}
	return call(s, "product_performance_view", func() ([]dashboard.ProductPerformance, error) {
		return s.views.ProductPerformanceView(ctx, f, limit)
	})
}

func call[T any](s *Source, operation string, fn func() (T, error)) (T, error) {
	start := time.Now()

	res, err := s.cb.Execute(func() (interface{}, error) {
		return fn()
	})

	status := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status = "rejected"
		err = fmt.Errorf("%w: %w", dashboard.ErrSourceUnavailable, err)
	case err != nil:
		status = "error"
	}
	if s.metrics != nil {
		s.metrics.SourceDuration.WithLabelValues(s.next.Name(), operation, status).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := res.(T)
	return value, nil
}
