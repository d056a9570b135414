// internal/domain/dashboard/service.go
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/your-org/retail-analytics/internal/pkg/cache"
	"github.com/your-org/retail-analytics/internal/pkg/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// FailurePolicy decides what a partially failed dashboard turns into
type FailurePolicy string

const (
	// PolicyDegrade returns the sections that loaded and nulls the rest.
	PolicyDegrade FailurePolicy = "degrade"
	// PolicyStrict fails the whole request if any section failed.
	PolicyStrict FailurePolicy = "strict"
)

// Options tunes the dashboard service
type Options struct {
	FailurePolicy   FailurePolicy
	FallbackEnabled bool
	UseMockData     bool
	UseViews        bool
	QueryTimeout    time.Duration
	MaxParallel     int
	TopN            int
	RecentLimit     int
	Location        *time.Location
	Clock           clockwork.Clock
}

// Request asks for one dashboard
type Request struct {
	Filter  Filter
	UseMock bool
}

// Service computes dashboard snapshots
type Service struct {
	source     Source
	cache      cache.Cache[Snapshot]
	validator  *SchemaValidator
	aggregator *Aggregator
	logger     *logrus.Logger
	metrics    *metrics.Collector
	opts       Options
	group      singleflight.Group
}

// NewService creates a new dashboard service. source may be nil, in which
// case every live query fails with ErrSourceUnavailable.
func NewService(source Source, c cache.Cache[Snapshot], logger *logrus.Logger, m *metrics.Collector, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = PolicyDegrade
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = len(Sections)
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 20
	}
	if c == nil {
		c = cache.Noop[Snapshot]{}
	}

	return &Service{
		source:     source,
		cache:      c,
		validator:  NewSchemaValidator(logger, m.SchemaMismatches),
		aggregator: NewAggregator(opts.Location),
		logger:     logger,
		metrics:    m,
		opts:       opts,
	}
}

// GetDashboardMetrics returns the dashboard for req.Filter. Results are
// served from cache when fresh; concurrent misses for the same filter share
// one computation. When the live source fails and fallback is enabled, the
// mock dataset is returned instead.
func (s *Service) GetDashboardMetrics(ctx context.Context, req Request) (Snapshot, error) {
	f := req.Filter.Normalize()
	if err := f.Validate(); err != nil {
		return Snapshot{}, err
	}

	if req.UseMock || s.opts.UseMockData {
		s.metrics.Fallbacks.WithLabelValues("mock_requested").Inc()
		return s.mockSnapshot(f), nil
	}

	key := f.CacheKey()
	snap, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Dashboard cache read failed")
	} else if ok {
		snap.Cached = true
		return snap, nil
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		lctx, cancel := s.loadContext(ctx)
		defer cancel()
		return s.load(lctx, key, f)
	})

	// A caller that goes away only abandons its own wait.
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Snapshot{}, res.Err
		}
		return res.Val.(Snapshot), nil
	}
}

// InvalidateCache drops every cached dashboard.
func (s *Service) InvalidateCache(ctx context.Context) error {
	if err := s.cache.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush dashboard cache: %w", err)
	}
	s.logger.WithField("driver", s.cache.Driver()).Info("Dashboard cache flushed")
	return nil
}

// SourceName returns the configured source name, or "none".
func (s *Service) SourceName() string {
	if s.source == nil {
		return "none"
	}
	return s.source.Name()
}

// loadContext detaches a shared load from the request that started it. The
// load is bounded by the per-query timeout times the number of section waves.
func (s *Service) loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if s.opts.QueryTimeout <= 0 {
		return context.WithCancel(detached)
	}
	waves := (len(Sections) + s.opts.MaxParallel - 1) / s.opts.MaxParallel
	return context.WithTimeout(detached, time.Duration(waves)*s.opts.QueryTimeout)
}

func (s *Service) load(ctx context.Context, key string, f Filter) (Snapshot, error) {
	query := QueryFunc[Snapshot](func(ctx context.Context) (Snapshot, error) {
		return s.live(ctx, f)
	})
	if s.opts.FallbackEnabled {
		query = WithFallback(query, func() Snapshot {
			return s.mockSnapshot(f)
		}, func(err error) {
			s.metrics.Fallbacks.WithLabelValues(fallbackReason(err)).Inc()
			s.logger.WithError(err).WithFields(logrus.Fields{
				"source": s.SourceName(),
				"from":   f.From,
				"to":     f.To,
			}).Warn("Live dashboard query failed, serving mock data")
		})
	}

	snap, err := query(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	// Mock and partial snapshots are not cached so recovery shows on the next request.
	if !snap.Mock && len(snap.FailedSections) == 0 {
		if err := s.cache.Set(ctx, key, snap); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Dashboard cache write failed")
		}
	}
	return snap, nil
}

// live runs every section query against the source. Each section is
// independent: one failing does not cancel the others. Sections reading the
// same rows share one fetch through a rowSet.
func (s *Service) live(ctx context.Context, f Filter) (Snapshot, error) {
	if s.source == nil {
		return Snapshot{}, ErrSourceUnavailable
	}

	var (
		m        DashboardMetrics
		mu       sync.Mutex
		failures = make(map[string]error)
		rs       = s.newRowSet()
	)

	g := new(errgroup.Group)
	g.SetLimit(s.opts.MaxParallel)

	run := func(section string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			qctx, cancel := s.queryContext(ctx)
			defer cancel()
			if err := fn(qctx); err != nil {
				mu.Lock()
				failures[section] = err
				mu.Unlock()
			}
			return nil
		})
	}

	run(SectionKPIs, func(ctx context.Context) error {
		kpis, err := s.kpis(ctx, rs, f)
		if err != nil {
			return err
		}
		m.KPIMetrics = &kpis
		return nil
	})
	run(SectionSalesTrend, func(ctx context.Context) error {
		days, err := s.salesTrend(ctx, rs, f)
		if err != nil {
			return err
		}
		m.SalesTrend = days
		return nil
	})
	run(SectionTransactionVolume, func(ctx context.Context) error {
		hours, err := s.transactionVolume(ctx, rs, f)
		if err != nil {
			return err
		}
		m.TransactionVolume = hours
		return nil
	})
	run(SectionTopProducts, func(ctx context.Context) error {
		products, err := s.topProducts(ctx, rs, f)
		if err != nil {
			return err
		}
		m.TopProducts = products
		return nil
	})
	run(SectionTopCategories, func(ctx context.Context) error {
		items, err := rs.items(ctx, f)
		if err != nil {
			return err
		}
		m.TopCategories = s.aggregator.ByCategory(items, s.opts.TopN)
		return nil
	})
	run(SectionRegionPerformance, func(ctx context.Context) error {
		rows, err := rs.transactions(ctx, f)
		if err != nil {
			return err
		}
		m.RegionPerformance = s.aggregator.ByRegion(rows)
		return nil
	})
	run(SectionRecentTransactions, func(ctx context.Context) error {
		rows, err := s.source.RecentTransactions(ctx, f, s.opts.RecentLimit)
		if err != nil {
			return fmt.Errorf("failed to get recent transactions: %w", err)
		}
		s.validator.Transactions(s.source.Name(), rows)
		m.RecentTransactions = s.aggregator.Recent(rows, s.opts.RecentLimit)
		return nil
	})

	_ = g.Wait()

	failed := make([]string, 0, len(failures))
	errs := make([]error, 0, len(failures))
	for _, section := range Sections {
		if err, ok := failures[section]; ok {
			failed = append(failed, section)
			errs = append(errs, fmt.Errorf("%s: %w", section, err))
			s.metrics.SectionFailures.WithLabelValues(section).Inc()
		}
	}

	if len(failed) == len(Sections) {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrAllSectionsFailed, errors.Join(errs...))
	}
	if len(failed) > 0 {
		if s.opts.FailurePolicy == PolicyStrict {
			return Snapshot{}, fmt.Errorf("%w: %s: %w", ErrPartialResult, strings.Join(failed, ", "), errors.Join(errs...))
		}
		for i, section := range failed {
			s.logger.WithError(errs[i]).WithFields(logrus.Fields{
				"section": section,
				"source":  s.source.Name(),
			}).Warn("Dashboard section failed, returning partial result")
		}
	}

	return Snapshot{
		Metrics:        m,
		Filter:         f,
		Source:         s.source.Name(),
		FailedSections: failed,
		GeneratedAt:    s.opts.Clock.Now().UTC(),
	}, nil
}

func (s *Service) kpis(ctx context.Context, rs *rowSet, f Filter) (KPIMetrics, error) {
	current, err := rs.transactions(ctx, f)
	if err != nil {
		return KPIMetrics{}, err
	}
	previous, err := rs.transactions(ctx, f.Previous())
	if err != nil {
		return KPIMetrics{}, fmt.Errorf("previous period: %w", err)
	}
	return CompareSummaries(s.aggregator.Summarize(current), s.aggregator.Summarize(previous)), nil
}

func (s *Service) salesTrend(ctx context.Context, rs *rowSet, f Filter) ([]DailySales, error) {
	if views, ok := s.views(f); ok {
		days, err := views.DailySalesView(ctx, f)
		if err == nil {
			return nonNil(days), nil
		}
		s.viewFailed(err, "mv_daily_sales")
	}

	rows, err := rs.transactions(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.aggregator.ByDay(rows), nil
}

func (s *Service) transactionVolume(ctx context.Context, rs *rowSet, f Filter) ([]HourlyVolume, error) {
	if views, ok := s.views(f); ok {
		hours, err := views.HourlyPatternsView(ctx, f)
		if err == nil {
			return FillHours(hours), nil
		}
		s.viewFailed(err, "mv_hourly_patterns")
	}

	rows, err := rs.transactions(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.aggregator.ByHour(rows), nil
}

func (s *Service) topProducts(ctx context.Context, rs *rowSet, f Filter) ([]ProductPerformance, error) {
	if views, ok := s.views(f); ok {
		products, err := views.ProductPerformanceView(ctx, f, s.opts.TopN)
		if err == nil {
			return nonNil(products), nil
		}
		s.viewFailed(err, "mv_product_performance")
	}

	items, err := rs.items(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.aggregator.ByProduct(items, s.opts.TopN), nil
}

// rowSet fetches each distinct row set at most once per load. Sections that
// need the same rows wait on the first fetch instead of issuing their own.
type rowSet struct {
	s           *Service
	mu          sync.Mutex
	txFetches   map[string]func() ([]TransactionRow, error)
	itemFetches map[string]func() ([]ItemRow, error)
}

func (s *Service) newRowSet() *rowSet {
	return &rowSet{
		s:           s,
		txFetches:   make(map[string]func() ([]TransactionRow, error)),
		itemFetches: make(map[string]func() ([]ItemRow, error)),
	}
}

func (r *rowSet) transactions(ctx context.Context, f Filter) ([]TransactionRow, error) {
	key := f.CacheKey()
	r.mu.Lock()
	fetch, ok := r.txFetches[key]
	if !ok {
		fetch = sync.OnceValues(func() ([]TransactionRow, error) {
			rows, err := r.s.source.Transactions(ctx, f)
			if err != nil {
				return nil, fmt.Errorf("failed to get transactions: %w", err)
			}
			r.s.validator.Transactions(r.s.source.Name(), rows)
			return rows, nil
		})
		r.txFetches[key] = fetch
	}
	r.mu.Unlock()
	return fetch()
}

func (r *rowSet) items(ctx context.Context, f Filter) ([]ItemRow, error) {
	key := f.CacheKey()
	r.mu.Lock()
	fetch, ok := r.itemFetches[key]
	if !ok {
		fetch = sync.OnceValues(func() ([]ItemRow, error) {
			items, err := r.s.source.Items(ctx, f)
			if err != nil {
				return nil, fmt.Errorf("failed to get transaction items: %w", err)
			}
			r.s.validator.Items(r.s.source.Name(), items)
			return items, nil
		})
		r.itemFetches[key] = fetch
	}
	r.mu.Unlock()
	return fetch()
}

// views returns the materialized view interface when f can be answered
// from date-keyed views.
func (s *Service) views(f Filter) (ViewSource, bool) {
	if !s.opts.UseViews || !f.NetworkWide() || !f.DayAligned(s.opts.Location) {
		return nil, false
	}
	views, ok := s.source.(ViewSource)
	return views, ok
}

func (s *Service) viewFailed(err error, view string) {
	entry := s.logger.WithError(err).WithField("view", view)
	if errors.Is(err, ErrViewsUnsupported) {
		entry.Debug("Materialized views unavailable, aggregating rows")
		return
	}
	entry.Warn("Materialized view query failed, aggregating rows")
}

func (s *Service) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.QueryTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Service) mockSnapshot(f Filter) Snapshot {
	return Snapshot{
		Metrics:        MockMetrics(f, s.aggregator, s.opts.TopN, s.opts.RecentLimit),
		Filter:         f,
		Source:         MockSourceName,
		Mock:           true,
		FailedSections: []string{},
		GeneratedAt:    s.opts.Clock.Now().UTC(),
	}
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, ErrAllSectionsFailed):
		return "all_sections_failed"
	case errors.Is(err, ErrPartialResult):
		return "partial_result"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "source_error"
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
