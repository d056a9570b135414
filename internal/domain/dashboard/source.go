// internal/domain/dashboard/source.go
package dashboard

import "context"

// Source is the query layer the dashboard reads from. Implementations
// return rows in the v1 input schema; they do no aggregation.
type Source interface {
	Name() string
	// Transactions returns every transaction in f with its store joined.
	Transactions(ctx context.Context, f Filter) ([]TransactionRow, error)
	// Items returns every transaction line in f with its product joined.
	Items(ctx context.Context, f Filter) ([]ItemRow, error)
	// RecentTransactions returns the newest transactions in f, newest first.
	RecentTransactions(ctx context.Context, f Filter, limit int) ([]TransactionRow, error)
}

// ViewSource is implemented by sources that can answer network-wide,
// day-aligned queries from pre-aggregated materialized views.
// Implementations return ErrViewsUnsupported when no views exist.
type ViewSource interface {
	DailySalesView(ctx context.Context, f Filter) ([]DailySales, error)
	HourlyPatternsView(ctx context.Context, f Filter) ([]HourlyVolume, error)
	ProductPerformanceView(ctx context.Context, f Filter, limit int) ([]ProductPerformance, error)
}
