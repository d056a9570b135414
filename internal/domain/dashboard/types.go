// internal/domain/dashboard/types.go
package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tags a KPI as rising or falling against the previous period.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Section names, in response order. They double as the JSON keys of DashboardMetrics.
const (
	SectionKPIs               = "kpiMetrics"
	SectionSalesTrend         = "salesTrend"
	SectionTransactionVolume  = "transactionVolume"
	SectionTopProducts        = "topProducts"
	SectionTopCategories      = "topCategories"
	SectionRegionPerformance  = "regionPerformance"
	SectionRecentTransactions = "recentTransactions"
)

// Sections lists every dashboard section.
var Sections = []string{
	SectionKPIs,
	SectionSalesTrend,
	SectionTransactionVolume,
	SectionTopProducts,
	SectionTopCategories,
	SectionRegionPerformance,
	SectionRecentTransactions,
}

// KPI is a headline metric with its period-over-period comparison
type KPI struct {
	Value    decimal.Decimal `json:"value"`
	Previous decimal.Decimal `json:"previous"`
	Change   float64         `json:"change"` // Percentage
	Trend    Direction       `json:"trend"`
}

// KPIMetrics groups the headline metrics
type KPIMetrics struct {
	TotalSales       KPI `json:"totalSales"`
	TransactionCount KPI `json:"transactionCount"`
	AverageBasket    KPI `json:"avgBasket"`
	UniqueCustomers  KPI `json:"uniqueCustomers"`
}

// Summary is the raw material for KPIs
type Summary struct {
	Total     decimal.Decimal `json:"total"`
	Count     int64           `json:"count"`
	Customers int64           `json:"customers"`
}

// AverageBasket returns Total/Count, or zero for an empty summary.
func (s Summary) AverageBasket() decimal.Decimal {
	return mean(s.Total, s.Count)
}

// HourlyVolume is the transaction volume for one hour of the day
type HourlyVolume struct {
	Hour    int             `json:"hour"`
	Label   string          `json:"label"`
	Total   decimal.Decimal `json:"total"`
	Count   int64           `json:"count"`
	Average decimal.Decimal `json:"average"`
}

// DailySales is the sales total for one calendar day
type DailySales struct {
	Date    string          `json:"date"` // YYYY-MM-DD
	Total   decimal.Decimal `json:"total"`
	Count   int64           `json:"count"`
	Average decimal.Decimal `json:"average"`
}

// RegionPerformance is the sales total for one region
type RegionPerformance struct {
	Region string          `json:"region"`
	Total  decimal.Decimal `json:"total"`
	Count  int64           `json:"count"`
	Share  float64         `json:"share"` // Percentage of all sales
}

// ProductPerformance is the sales total for one product
type ProductPerformance struct {
	ProductID        string          `json:"productId"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Brand            string          `json:"brand"`
	Units            int64           `json:"units"`
	Total            decimal.Decimal `json:"total"`
	TransactionCount int64           `json:"transactionCount"`
}

// CategoryPerformance is the sales total for one product category
type CategoryPerformance struct {
	Category         string          `json:"category"`
	Total            decimal.Decimal `json:"total"`
	Units            int64           `json:"units"`
	TransactionCount int64           `json:"transactionCount"`
	Share            float64         `json:"share"` // Percentage of all item sales
}

// RecentTransaction is one row of the recent transactions table
type RecentTransaction struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Amount     decimal.Decimal `json:"amount"`
	StoreID    string          `json:"storeId"`
	Region     string          `json:"region"`
	City       string          `json:"city"`
	CustomerID string          `json:"customerId,omitempty"`
}

// DashboardMetrics is the payload consumed by the dashboard.
// A section that failed to load is nil and serializes as null.
type DashboardMetrics struct {
	KPIMetrics         *KPIMetrics           `json:"kpiMetrics"`
	SalesTrend         []DailySales          `json:"salesTrend"`
	TransactionVolume  []HourlyVolume        `json:"transactionVolume"`
	TopProducts        []ProductPerformance  `json:"topProducts"`
	TopCategories      []CategoryPerformance `json:"topCategories"`
	RegionPerformance  []RegionPerformance   `json:"regionPerformance"`
	RecentTransactions []RecentTransaction   `json:"recentTransactions"`
}

// Snapshot is a computed dashboard together with how it was produced.
// Snapshots are what the cache stores.
type Snapshot struct {
	Metrics        DashboardMetrics `json:"metrics"`
	Filter         Filter           `json:"filter"`
	Source         string           `json:"source"`
	Mock           bool             `json:"mock"`
	FailedSections []string         `json:"failed_sections"`
	GeneratedAt    time.Time        `json:"generated_at"`
	Cached         bool             `json:"-"`
}
