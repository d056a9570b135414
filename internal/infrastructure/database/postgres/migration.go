// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"strings"

	"github.com/your-org/retail-analytics/internal/domain/retail"
	"gorm.io/gorm"
)

// Materialized view names
const (
	ViewDailySales         = "mv_daily_sales"
	ViewHourlyPatterns     = "mv_hourly_patterns"
	ViewProductPerformance = "mv_product_performance"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	for _, model := range retail.Models() {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for the dashboard queries
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Transaction indexes
		"CREATE INDEX IF NOT EXISTS idx_transactions_timestamp_desc ON transactions(timestamp DESC)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_store_timestamp ON transactions(store_id, timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_customer_timestamp ON transactions(customer_id, timestamp)",

		// Transaction item indexes
		"CREATE INDEX IF NOT EXISTS idx_transaction_items_transaction_product ON transaction_items(transaction_id, product_id)",

		// Store indexes
		"CREATE INDEX IF NOT EXISTS idx_stores_region_city ON stores(region, city)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_brand ON products(category_id, brand_id)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// MaterializedViewSQL returns the statements creating the date-keyed
// reporting views. Dates and hours are computed in the given timezone.
func MaterializedViewSQL(timezone string) []string {
	tz := strings.ReplaceAll(timezone, "'", "''")
	local := fmt.Sprintf("(t.timestamp AT TIME ZONE '%s')", tz)

	return []string{
		fmt.Sprintf(`CREATE MATERIALIZED VIEW IF NOT EXISTS %s AS
			SELECT %s::date AS sale_date,
				SUM(t.total_amount) AS total_sales,
				COUNT(*) AS transaction_count
			FROM transactions t
			GROUP BY 1`, ViewDailySales, local),
		fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_date ON %s(sale_date)", ViewDailySales, ViewDailySales),

		fmt.Sprintf(`CREATE MATERIALIZED VIEW IF NOT EXISTS %s AS
			SELECT %s::date AS sale_date,
				EXTRACT(HOUR FROM %s)::int AS hour_of_day,
				SUM(t.total_amount) AS total_sales,
				COUNT(*) AS transaction_count
			FROM transactions t
			GROUP BY 1, 2`, ViewHourlyPatterns, local, local),
		fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_date_hour ON %s(sale_date, hour_of_day)", ViewHourlyPatterns, ViewHourlyPatterns),

		fmt.Sprintf(`CREATE MATERIALIZED VIEW IF NOT EXISTS %s AS
			SELECT %s::date AS sale_date,
				ti.product_id,
				p.name AS product_name,
				c.name AS category,
				b.name AS brand,
				SUM(ti.quantity) AS units_sold,
				SUM(ti.total_price) AS total_sales,
				COUNT(DISTINCT ti.transaction_id) AS transaction_count
			FROM transaction_items ti
			JOIN transactions t ON t.id = ti.transaction_id
			JOIN products p ON p.id = ti.product_id
			LEFT JOIN product_categories c ON c.id = p.category_id
			LEFT JOIN brands b ON b.id = p.brand_id
			GROUP BY 1, 2, 3, 4, 5`, ViewProductPerformance, local),
		fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_date_product ON %s(sale_date, product_id)", ViewProductPerformance, ViewProductPerformance),
	}
}

// CreateMaterializedViews creates the reporting views
func (m *Migration) CreateMaterializedViews(timezone string) error {
	log.Println("🔄 Creating materialized views...")

	for _, stmt := range MaterializedViewSQL(timezone) {
		if err := m.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create materialized view: %w", err)
		}
	}

	log.Println("✅ Materialized views created successfully")
	return nil
}

// RefreshMaterializedViews recomputes the reporting views from the base tables
func (m *Migration) RefreshMaterializedViews() error {
	log.Println("🔄 Refreshing materialized views...")

	failCount := 0
	for _, view := range []string{ViewHourlyPatterns, ViewDailySales, ViewProductPerformance} {
		if err := m.db.Exec(fmt.Sprintf("REFRESH MATERIALIZED VIEW %s", view)).Error; err != nil {
			log.Printf("⚠️ Failed to refresh %s: %v", view, err)
			failCount++
			continue
		}
		log.Printf("✅ Refreshed %s", view)
	}

	if failCount > 0 {
		return fmt.Errorf("failed to refresh %d materialized views", failCount)
	}
	return nil
}

// DropAllTables drops all views and tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	for _, view := range []string{ViewProductPerformance, ViewHourlyPatterns, ViewDailySales} {
		if err := m.db.Exec(fmt.Sprintf("DROP MATERIALIZED VIEW IF EXISTS %s CASCADE", view)).Error; err != nil {
			log.Printf("⚠️ Failed to drop view %s: %v", view, err)
		} else {
			log.Printf("🗑️ Dropped view: %s", view)
		}
	}

	// Define tables in reverse dependency order
	tables := []string{
		"transaction_items",
		"transactions",
		"stores",
		"products",
		"product_categories",
		"brands",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo logs the record count of every table
func (m *Migration) GetTableInfo() error {
	var tables []string

	// Get list of tables
	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}
