// internal/infrastructure/database/postgres/source.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/retail-analytics/internal/domain/dashboard"
	"gorm.io/gorm"
)

// Source reads dashboard rows from PostgreSQL through GORM
type Source struct {
	db  *gorm.DB
	loc *time.Location
}

// NewSource creates a new PostgreSQL dashboard source. loc is the timezone
// the materialized views were built in.
func NewSource(db *gorm.DB, loc *time.Location) *Source {
	if loc == nil {
		loc = time.UTC
	}
	return &Source{db: db, loc: loc}
}

type transactionRecord struct {
	ID          string
	Timestamp   sql.NullTime
	TotalAmount decimal.NullDecimal
	StoreID     string
	CustomerID  sql.NullString
	Region      sql.NullString
	City        sql.NullString
	Barangay    sql.NullString
}

type itemRecord struct {
	TransactionID string
	ProductID     string
	Quantity      int64
	TotalPrice    decimal.NullDecimal
	ProductName   sql.NullString
	CategoryName  sql.NullString
	BrandName     sql.NullString
}

type dailyRecord struct {
	SaleDate         time.Time
	TotalSales       decimal.Decimal
	TransactionCount int64
}

type hourlyRecord struct {
	HourOfDay        int
	TotalSales       decimal.Decimal
	TransactionCount int64
}

type productRecord struct {
	ProductID        string
	ProductName      string
	Category         sql.NullString
	Brand            sql.NullString
	UnitsSold        int64
	TotalSales       decimal.Decimal
	TransactionCount int64
}

func (s *Source) Name() string { return "postgres" }

// Transactions returns every transaction in the filter with its store joined
func (s *Source) Transactions(ctx context.Context, f dashboard.Filter) ([]dashboard.TransactionRow, error) {
	var records []transactionRecord
	if err := s.transactionsQuery(s.db.WithContext(ctx), f).Order("t.timestamp").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return toTransactionRows(records), nil
}

// RecentTransactions returns the newest transactions in the filter
func (s *Source) RecentTransactions(ctx context.Context, f dashboard.Filter, limit int) ([]dashboard.TransactionRow, error) {
	var records []transactionRecord
	q := s.transactionsQuery(s.db.WithContext(ctx), f).Order("t.timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	return toTransactionRows(records), nil
}

// Items returns every transaction line in the filter with its product joined
func (s *Source) Items(ctx context.Context, f dashboard.Filter) ([]dashboard.ItemRow, error) {
	var records []itemRecord
	if err := s.itemsQuery(s.db.WithContext(ctx), f).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query transaction items: %w", err)
	}

	rows := make([]dashboard.ItemRow, 0, len(records))
	for _, r := range records {
		row := dashboard.ItemRow{
			TransactionID: r.TransactionID,
			ProductID:     r.ProductID,
			Quantity:      r.Quantity,
			Product: &dashboard.ProductRef{
				ID:   r.ProductID,
				Name: r.ProductName.String,
			},
		}
		if r.TotalPrice.Valid {
			total := r.TotalPrice.Decimal
			row.TotalPrice = &total
		}
		if r.CategoryName.Valid {
			row.Product.Category = &dashboard.NamedRef{Name: r.CategoryName.String}
		}
		if r.BrandName.Valid {
			row.Product.Brand = &dashboard.NamedRef{Name: r.BrandName.String}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DailySalesView reads daily totals from mv_daily_sales
func (s *Source) DailySalesView(ctx context.Context, f dashboard.Filter) ([]dashboard.DailySales, error) {
	var records []dailyRecord
	if err := s.dailyViewQuery(s.db.WithContext(ctx), f).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", ViewDailySales, err)
	}

	days := make([]dashboard.DailySales, 0, len(records))
	for _, r := range records {
		days = append(days, dashboard.DailySales{
			Date:    r.SaleDate.Format("2006-01-02"),
			Total:   r.TotalSales,
			Count:   r.TransactionCount,
			Average: average(r.TotalSales, r.TransactionCount),
		})
	}
	return days, nil
}

// HourlyPatternsView reads hour-of-day totals from mv_hourly_patterns
func (s *Source) HourlyPatternsView(ctx context.Context, f dashboard.Filter) ([]dashboard.HourlyVolume, error) {
	var records []hourlyRecord
	if err := s.hourlyViewQuery(s.db.WithContext(ctx), f).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", ViewHourlyPatterns, err)
	}

	hours := make([]dashboard.HourlyVolume, 0, len(records))
	for _, r := range records {
		hours = append(hours, dashboard.HourlyVolume{
			Hour:  r.HourOfDay,
			Total: r.TotalSales,
			Count: r.TransactionCount,
		})
	}
	return hours, nil
}

// ProductPerformanceView reads the top products from mv_product_performance
func (s *Source) ProductPerformanceView(ctx context.Context, f dashboard.Filter, limit int) ([]dashboard.ProductPerformance, error) {
	var records []productRecord
	if err := s.productViewQuery(s.db.WithContext(ctx), f, limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", ViewProductPerformance, err)
	}

	products := make([]dashboard.ProductPerformance, 0, len(records))
	for _, r := range records {
		category, brand := "Uncategorized", "Unknown"
		if r.Category.Valid {
			category = r.Category.String
		}
		if r.Brand.Valid {
			brand = r.Brand.String
		}
		products = append(products, dashboard.ProductPerformance{
			ProductID:        r.ProductID,
			Name:             r.ProductName,
			Category:         category,
			Brand:            brand,
			Units:            r.UnitsSold,
			Total:            r.TotalSales,
			TransactionCount: r.TransactionCount,
		})
	}
	return products, nil
}

func (s *Source) transactionsQuery(tx *gorm.DB, f dashboard.Filter) *gorm.DB {
	q := tx.Table("transactions t").
		Select("t.id, t.timestamp, t.total_amount, t.store_id, t.customer_id, s.region, s.city, s.barangay").
		Joins("LEFT JOIN stores s ON s.id = t.store_id").
		Where("t.timestamp >= ? AND t.timestamp < ?", f.From, f.To)
	return applyDimensions(q, f)
}

func (s *Source) itemsQuery(tx *gorm.DB, f dashboard.Filter) *gorm.DB {
	q := tx.Table("transaction_items ti").
		Select("ti.transaction_id, ti.product_id, ti.quantity, ti.total_price, p.name AS product_name, c.name AS category_name, b.name AS brand_name").
		Joins("JOIN transactions t ON t.id = ti.transaction_id").
		Joins("LEFT JOIN stores s ON s.id = t.store_id").
		Joins("LEFT JOIN products p ON p.id = ti.product_id").
		Joins("LEFT JOIN product_categories c ON c.id = p.category_id").
		Joins("LEFT JOIN brands b ON b.id = p.brand_id").
		Where("t.timestamp >= ? AND t.timestamp < ?", f.From, f.To)
	return applyDimensions(q, f)
}

func (s *Source) dailyViewQuery(tx *gorm.DB, f dashboard.Filter) *gorm.DB {
	from, to := s.dateBounds(f)
	return tx.Table(ViewDailySales).
		Select("sale_date, total_sales, transaction_count").
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Order("sale_date")
}

func (s *Source) hourlyViewQuery(tx *gorm.DB, f dashboard.Filter) *gorm.DB {
	from, to := s.dateBounds(f)
	return tx.Table(ViewHourlyPatterns).
		Select("hour_of_day, SUM(total_sales) AS total_sales, SUM(transaction_count) AS transaction_count").
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Group("hour_of_day").
		Order("hour_of_day")
}

func (s *Source) productViewQuery(tx *gorm.DB, f dashboard.Filter, limit int) *gorm.DB {
	from, to := s.dateBounds(f)
	q := tx.Table(ViewProductPerformance).
		Select("product_id, product_name, category, brand, SUM(units_sold) AS units_sold, SUM(total_sales) AS total_sales, SUM(transaction_count) AS transaction_count").
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Group("product_id, product_name, category, brand").
		Order("total_sales DESC, product_id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

// dateBounds converts the filter to the local dates the views are keyed by.
func (s *Source) dateBounds(f dashboard.Filter) (string, string) {
	return f.From.In(s.loc).Format("2006-01-02"), f.To.In(s.loc).Format("2006-01-02")
}

func applyDimensions(q *gorm.DB, f dashboard.Filter) *gorm.DB {
	if f.Region != "" {
		q = q.Where("s.region = ?", f.Region)
	}
	if f.StoreID != "" {
		q = q.Where("t.store_id = ?", f.StoreID)
	}
	return q
}

func toTransactionRows(records []transactionRecord) []dashboard.TransactionRow {
	rows := make([]dashboard.TransactionRow, 0, len(records))
	for _, r := range records {
		row := dashboard.TransactionRow{
			ID:      r.ID,
			StoreID: r.StoreID,
		}
		if r.Timestamp.Valid {
			row.Timestamp = dashboard.NewTimestamp(r.Timestamp.Time)
		}
		if r.TotalAmount.Valid {
			amount := r.TotalAmount.Decimal
			row.TotalAmount = &amount
		}
		if r.CustomerID.Valid {
			customer := r.CustomerID.String
			row.CustomerID = &customer
		}
		if r.Region.Valid {
			row.Store = &dashboard.StoreRef{
				Region:   r.Region.String,
				City:     r.City.String,
				Barangay: r.Barangay.String,
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func average(total decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(count)).Round(2)
}
