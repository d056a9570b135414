// internal/domain/dashboard/comparator.go
package dashboard

import "github.com/shopspring/decimal"

// Change returns the percentage change from previous to current, rounded to
// two decimals. It is exactly 0 when previous is 0.
func Change(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2).InexactFloat64()
}

// DirectionOf returns up iff current is strictly greater than previous.
func DirectionOf(current, previous decimal.Decimal) Direction {
	if current.GreaterThan(previous) {
		return DirectionUp
	}
	return DirectionDown
}

// Compare builds a KPI from the current and previous values.
func Compare(current, previous decimal.Decimal) KPI {
	return KPI{
		Value:    current,
		Previous: previous,
		Change:   Change(current, previous),
		Trend:    DirectionOf(current, previous),
	}
}

// CompareSummaries builds every headline KPI for two periods.
func CompareSummaries(current, previous Summary) KPIMetrics {
	return KPIMetrics{
		TotalSales:       Compare(current.Total, previous.Total),
		TransactionCount: Compare(decimal.NewFromInt(current.Count), decimal.NewFromInt(previous.Count)),
		AverageBasket:    Compare(current.AverageBasket(), previous.AverageBasket()),
		UniqueCustomers:  Compare(decimal.NewFromInt(current.Customers), decimal.NewFromInt(previous.Customers)),
	}
}
