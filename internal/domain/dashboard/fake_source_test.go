package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"
)

// fakeSource serves in-memory rows and counts calls per operation.
type fakeSource struct {
	mu    sync.Mutex
	calls map[string]int

	rows  []TransactionRow
	items []ItemRow

	txErr     error
	itemErr   error
	recentErr error

	// gate, when set, holds every query until it is closed or ctx ends.
	gate chan struct{}
}

func newFakeSource(rows []TransactionRow, items []ItemRow) *fakeSource {
	return &fakeSource{calls: make(map[string]int), rows: rows, items: items}
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) record(op string) {
	s.mu.Lock()
	s.calls[op]++
	s.mu.Unlock()
}

func (s *fakeSource) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *fakeSource) wait(ctx context.Context) error {
	if s.gate == nil {
		return nil
	}
	select {
	case <-s.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *fakeSource) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *fakeSource) inRange(row TransactionRow, f Filter) bool {
	at := row.At(time.UTC)
	if at.Before(f.From) || !at.Before(f.To) {
		return false
	}
	if f.Region != "" && row.RegionName() != f.Region {
		return false
	}
	return f.StoreID == "" || row.StoreID == f.StoreID
}

func (s *fakeSource) Transactions(ctx context.Context, f Filter) ([]TransactionRow, error) {
	s.record("transactions")
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.txErr != nil {
		return nil, s.txErr
	}
	var out []TransactionRow
	for _, row := range s.rows {
		if s.inRange(row, f) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *fakeSource) Items(ctx context.Context, f Filter) ([]ItemRow, error) {
	s.record("items")
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.itemErr != nil {
		return nil, s.itemErr
	}
	ids := make(map[string]bool)
	for _, row := range s.rows {
		if s.inRange(row, f) {
			ids[row.ID] = true
		}
	}
	var out []ItemRow
	for _, it := range s.items {
		if ids[it.TransactionID] {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *fakeSource) RecentTransactions(ctx context.Context, f Filter, limit int) ([]TransactionRow, error) {
	s.record("recent")
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.recentErr != nil {
		return nil, s.recentErr
	}
	rows, _ := s.Transactions(ctx, f)
	s.mu.Lock()
	s.calls["transactions"]--
	s.mu.Unlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].At(time.UTC).After(rows[j].At(time.UTC)) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// fakeViewSource adds materialized view answers to fakeSource.
type fakeViewSource struct {
	*fakeSource
	viewErr error
}

func (s *fakeViewSource) DailySalesView(_ context.Context, _ Filter) ([]DailySales, error) {
	s.record("view_daily")
	if s.viewErr != nil {
		return nil, s.viewErr
	}
	return []DailySales{{Date: "2024-03-01"}}, nil
}

func (s *fakeViewSource) HourlyPatternsView(_ context.Context, _ Filter) ([]HourlyVolume, error) {
	s.record("view_hourly")
	if s.viewErr != nil {
		return nil, s.viewErr
	}
	return []HourlyVolume{{Hour: 9, Count: 1}}, nil
}

func (s *fakeViewSource) ProductPerformanceView(_ context.Context, _ Filter, _ int) ([]ProductPerformance, error) {
	s.record("view_products")
	if s.viewErr != nil {
		return nil, s.viewErr
	}
	return nil, nil
}
