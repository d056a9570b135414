// internal/domain/dashboard/aggregator.go
package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Aggregator groups transaction and item rows into dashboard aggregates.
// Calendar boundaries (hour of day, date) are taken in its location.
type Aggregator struct {
	loc *time.Location
}

// NewAggregator creates an aggregator for the given reporting location.
func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{loc: loc}
}

// Location returns the reporting location.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// ByHour returns exactly 24 entries, one per hour of the day. Rows without
// a timestamp are counted in hour 0 so that totals are conserved.
func (a *Aggregator) ByHour(rows []TransactionRow) []HourlyVolume {
	hours := emptyHours()
	for _, row := range rows {
		hour := 0
		if at := row.At(a.loc); !at.IsZero() {
			hour = at.Hour()
		}
		hours[hour].Total = hours[hour].Total.Add(row.Amount())
		hours[hour].Count++
	}
	for i := range hours {
		hours[i].Average = mean(hours[i].Total, hours[i].Count)
	}
	return hours
}

// ByDay returns one entry per observed calendar day, ascending. Rows
// without a timestamp cannot be placed on a day and are left out.
func (a *Aggregator) ByDay(rows []TransactionRow) []DailySales {
	byDate := make(map[string]*DailySales)
	for _, row := range rows {
		at := row.At(a.loc)
		if at.IsZero() {
			continue
		}
		date := at.Format("2006-01-02")
		day, ok := byDate[date]
		if !ok {
			day = &DailySales{Date: date}
			byDate[date] = day
		}
		day.Total = day.Total.Add(row.Amount())
		day.Count++
	}

	days := make([]DailySales, 0, len(byDate))
	for _, day := range byDate {
		day.Average = mean(day.Total, day.Count)
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// ByRegion returns one entry per observed region sorted by total descending.
func (a *Aggregator) ByRegion(rows []TransactionRow) []RegionPerformance {
	byRegion := make(map[string]*RegionPerformance)
	grand := decimal.Zero
	for _, row := range rows {
		name := row.RegionName()
		region, ok := byRegion[name]
		if !ok {
			region = &RegionPerformance{Region: name}
			byRegion[name] = region
		}
		region.Total = region.Total.Add(row.Amount())
		region.Count++
		grand = grand.Add(row.Amount())
	}

	regions := make([]RegionPerformance, 0, len(byRegion))
	for _, region := range byRegion {
		region.Share = share(region.Total, grand)
		regions = append(regions, *region)
	}
	sort.Slice(regions, func(i, j int) bool {
		if !regions[i].Total.Equal(regions[j].Total) {
			return regions[i].Total.GreaterThan(regions[j].Total)
		}
		return regions[i].Region < regions[j].Region
	})
	return regions
}

// ByProduct returns product totals sorted by total descending. limit <= 0
// returns every product.
func (a *Aggregator) ByProduct(items []ItemRow, limit int) []ProductPerformance {
	type acc struct {
		perf ProductPerformance
		txns map[string]struct{}
	}
	byProduct := make(map[string]*acc)
	for _, item := range items {
		p, ok := byProduct[item.ProductID]
		if !ok {
			p = &acc{
				perf: ProductPerformance{
					ProductID: item.ProductID,
					Name:      item.ProductName(),
					Category:  item.CategoryName(),
					Brand:     item.BrandName(),
				},
				txns: make(map[string]struct{}),
			}
			byProduct[item.ProductID] = p
		}
		p.perf.Units += item.Quantity
		p.perf.Total = p.perf.Total.Add(item.Amount())
		p.txns[item.TransactionID] = struct{}{}
	}

	products := make([]ProductPerformance, 0, len(byProduct))
	for _, p := range byProduct {
		p.perf.TransactionCount = int64(len(p.txns))
		products = append(products, p.perf)
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].Total.Equal(products[j].Total) {
			return products[i].Total.GreaterThan(products[j].Total)
		}
		return products[i].ProductID < products[j].ProductID
	})
	return truncate(products, limit)
}

// ByCategory returns category totals sorted by total descending, each with
// its share of all item sales. limit <= 0 returns every category.
func (a *Aggregator) ByCategory(items []ItemRow, limit int) []CategoryPerformance {
	type acc struct {
		perf CategoryPerformance
		txns map[string]struct{}
	}
	byCategory := make(map[string]*acc)
	grand := decimal.Zero
	for _, item := range items {
		name := item.CategoryName()
		c, ok := byCategory[name]
		if !ok {
			c = &acc{perf: CategoryPerformance{Category: name}, txns: make(map[string]struct{})}
			byCategory[name] = c
		}
		c.perf.Units += item.Quantity
		c.perf.Total = c.perf.Total.Add(item.Amount())
		c.txns[item.TransactionID] = struct{}{}
		grand = grand.Add(item.Amount())
	}

	categories := make([]CategoryPerformance, 0, len(byCategory))
	for _, c := range byCategory {
		c.perf.TransactionCount = int64(len(c.txns))
		c.perf.Share = share(c.perf.Total, grand)
		categories = append(categories, c.perf)
	}
	sort.Slice(categories, func(i, j int) bool {
		if !categories[i].Total.Equal(categories[j].Total) {
			return categories[i].Total.GreaterThan(categories[j].Total)
		}
		return categories[i].Category < categories[j].Category
	})
	return truncate(categories, limit)
}

// Summarize computes the totals behind the KPI cards.
func (a *Aggregator) Summarize(rows []TransactionRow) Summary {
	customers := make(map[string]struct{})
	s := Summary{Total: decimal.Zero}
	for _, row := range rows {
		s.Total = s.Total.Add(row.Amount())
		s.Count++
		if id := row.Customer(); id != "" {
			customers[id] = struct{}{}
		}
	}
	s.Customers = int64(len(customers))
	return s
}

// Recent returns the newest rows first, at most limit of them.
func (a *Aggregator) Recent(rows []TransactionRow, limit int) []RecentTransaction {
	recent := make([]RecentTransaction, 0, len(rows))
	for _, row := range rows {
		tx := RecentTransaction{
			ID:         row.ID,
			Timestamp:  row.At(a.loc),
			Amount:     row.Amount(),
			StoreID:    row.StoreID,
			Region:     row.RegionName(),
			CustomerID: row.Customer(),
		}
		if row.Store != nil {
			tx.City = row.Store.City
		}
		recent = append(recent, tx)
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	return truncate(recent, limit)
}

// FillHours expands a sparse hourly series (such as a materialized view
// result) into 24 entries, summing duplicates.
func FillHours(partial []HourlyVolume) []HourlyVolume {
	hours := emptyHours()
	for _, h := range partial {
		if h.Hour < 0 || h.Hour > 23 {
			continue
		}
		hours[h.Hour].Total = hours[h.Hour].Total.Add(h.Total)
		hours[h.Hour].Count += h.Count
	}
	for i := range hours {
		hours[i].Average = mean(hours[i].Total, hours[i].Count)
	}
	return hours
}

func emptyHours() []HourlyVolume {
	hours := make([]HourlyVolume, 24)
	for h := range hours {
		hours[h] = HourlyVolume{
			Hour:    h,
			Label:   fmt.Sprintf("%02d:00", h),
			Total:   decimal.Zero,
			Average: decimal.Zero,
		}
	}
	return hours
}

func mean(total decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(count)).Round(2)
}

func share(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).Round(2).InexactFloat64()
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
