// internal/domain/dashboard/mock.go
package dashboard

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/retail-analytics/internal/domain/retail"
)

// MockSourceName is reported as the source of fallback snapshots.
const MockSourceName = "mock"

type mockStore struct {
	id       string
	location int
	barangay int
}

type mockLine struct {
	sku string
	qty int64
}

type mockTransaction struct {
	store    int
	day      int
	hour     int
	minute   int
	customer string
	lines    []mockLine
}

var mockStores = []mockStore{
	{id: "STR-NCR-001", location: 0, barangay: 0},
	{id: "STR-NCR-002", location: 1, barangay: 0},
	{id: "STR-R3-001", location: 2, barangay: 0},
	{id: "STR-R4A-001", location: 3, barangay: 0},
	{id: "STR-R7-001", location: 4, barangay: 0},
	{id: "STR-R11-001", location: 5, barangay: 1},
}

var mockTransactions = []mockTransaction{
	{0, 0, 7, 15, "CUST-0001", []mockLine{{"ALS001", 2}, {"COK001", 3}}},
	{0, 0, 9, 0, "CUST-0002", []mockLine{{"MAR001", 1}}},
	{1, 0, 12, 30, "", []mockLine{{"JNJ001", 2}, {"C2T001", 2}}},
	{2, 1, 8, 45, "CUST-0003", []mockLine{{"TID001", 2}, {"SFG001", 1}}},
	{3, 1, 17, 10, "CUST-0004", []mockLine{{"FOR001", 1}, {"COK002", 2}}},
	{4, 1, 19, 5, "", []mockLine{{"OSH001", 3}, {"COK003", 1}}},
	{5, 2, 6, 50, "CUST-0005", []mockLine{{"BBR002", 1}, {"ALS003", 4}}},
	{0, 2, 10, 20, "CUST-0001", []mockLine{{"HNS002", 1}}},
	{1, 2, 18, 40, "CUST-0006", []mockLine{{"MAR002", 2}}},
	{2, 3, 11, 0, "", []mockLine{{"ARL001", 3}, {"TID002", 2}}},
	{3, 3, 14, 25, "CUST-0007", []mockLine{{"JNJ003", 2}, {"C2T002", 1}}},
	{4, 3, 20, 15, "CUST-0008", []mockLine{{"MAR003", 1}, {"COK001", 1}}},
	{5, 4, 9, 35, "", []mockLine{{"ALS002", 3}, {"BBR001", 2}}},
	{0, 4, 16, 0, "CUST-0002", []mockLine{{"FOR002", 2}}},
	{1, 5, 7, 55, "CUST-0009", []mockLine{{"SFG002", 1}, {"HNS001", 3}}},
	{2, 5, 13, 10, "", []mockLine{{"JNJ002", 4}}},
	{3, 5, 21, 30, "CUST-0010", []mockLine{{"COK003", 2}, {"OSH002", 2}}},
	{4, 6, 8, 5, "CUST-0011", []mockLine{{"TID003", 5}, {"ARL002", 1}}},
	{5, 6, 15, 45, "CUST-0012", []mockLine{{"MAR001", 1}, {"C2T001", 1}}},
	{0, 6, 19, 20, "CUST-0003", []mockLine{{"ALS001", 1}, {"JNJ001", 1}}},
}

// MockData is the static dataset used when the live source is unavailable.
// Timestamps are laid out inside the requested window so every section of
// the dashboard has something to show.
type MockData struct {
	Transactions []TransactionRow
	Items        []ItemRow
}

// BuildMockData places the static transactions inside f.
func BuildMockData(f Filter, loc *time.Location) MockData {
	var data MockData

	window := f.Duration()
	if window <= 0 {
		return data
	}
	start := f.From.In(loc)

	for i, mt := range mockTransactions {
		store := mockStores[mt.store]
		if f.StoreID != "" && store.id != f.StoreID {
			continue
		}
		location := retail.Locations[store.location]
		if f.Region != "" && location.Region != f.Region {
			continue
		}

		offset := time.Duration(mt.day)*24*time.Hour +
			time.Duration(mt.hour)*time.Hour +
			time.Duration(mt.minute)*time.Minute
		at := start.Add(offset % window)

		id := fmt.Sprintf("MOCK-%04d", i+1)
		total := decimal.Zero
		for _, line := range mt.lines {
			entry, ok := retail.LookupSKU(line.sku)
			if !ok {
				continue
			}
			lineTotal := entry.Product.Price.Mul(decimal.NewFromInt(line.qty))
			total = total.Add(lineTotal)
			data.Items = append(data.Items, ItemRow{
				TransactionID: id,
				ProductID:     entry.Product.SKU,
				Quantity:      line.qty,
				TotalPrice:    &lineTotal,
				Product: &ProductRef{
					ID:       entry.Product.SKU,
					Name:     entry.Product.Name,
					Category: &NamedRef{Name: entry.Category},
					Brand:    &NamedRef{Name: entry.Brand},
				},
			})
		}

		row := TransactionRow{
			ID:          id,
			Timestamp:   NewTimestamp(at),
			TotalAmount: &total,
			StoreID:     store.id,
			Store: &StoreRef{
				Region:   location.Region,
				City:     location.City,
				Barangay: location.Barangays[store.barangay].Name,
			},
		}
		if mt.customer != "" {
			customer := mt.customer
			row.CustomerID = &customer
		}
		data.Transactions = append(data.Transactions, row)
	}
	return data
}

// mockPrevious is the subset of mock transactions standing in for the
// previous period, so mock KPIs show a trend.
func mockPrevious(rows []TransactionRow) []TransactionRow {
	prev := make([]TransactionRow, 0, len(rows))
	for i, row := range rows {
		if i%3 != 0 {
			prev = append(prev, row)
		}
	}
	return prev
}

// MockMetrics computes a full dashboard from the mock dataset using the
// same aggregation as live data.
func MockMetrics(f Filter, agg *Aggregator, topN, recentLimit int) DashboardMetrics {
	data := BuildMockData(f, agg.Location())
	kpis := CompareSummaries(agg.Summarize(data.Transactions), agg.Summarize(mockPrevious(data.Transactions)))

	return DashboardMetrics{
		KPIMetrics:         &kpis,
		SalesTrend:         agg.ByDay(data.Transactions),
		TransactionVolume:  agg.ByHour(data.Transactions),
		TopProducts:        agg.ByProduct(data.Items, topN),
		TopCategories:      agg.ByCategory(data.Items, topN),
		RegionPerformance:  agg.ByRegion(data.Transactions),
		RecentTransactions: agg.Recent(data.Transactions, recentLimit),
	}
}
