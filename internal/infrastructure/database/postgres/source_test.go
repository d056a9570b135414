package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/retail-analytics/internal/domain/dashboard"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newDryRunDB returns a handle that renders SQL without connecting.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN: "host=localhost user=retail_user dbname=retail_db sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func testFilter() dashboard.Filter {
	return dashboard.Filter{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
	}
}

func TestSource_TransactionsQuery(t *testing.T) {
	db := newDryRunDB(t)
	src := NewSource(db, time.UTC)
	f := testFilter()

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return src.transactionsQuery(tx, f).Find(&[]transactionRecord{})
	})

	assert.Contains(t, sql, "FROM transactions t")
	assert.Contains(t, sql, "LEFT JOIN stores s ON s.id = t.store_id")
	assert.Contains(t, sql, "t.timestamp >= ")
	assert.NotContains(t, sql, "s.region")

	f.Region = "NCR"
	f.StoreID = "ST100001"
	sql = db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return src.transactionsQuery(tx, f).Find(&[]transactionRecord{})
	})
	assert.Contains(t, sql, "s.region = 'NCR'")
	assert.Contains(t, sql, "t.store_id = 'ST100001'")
}

func TestSource_ItemsQuery(t *testing.T) {
	db := newDryRunDB(t)
	src := NewSource(db, time.UTC)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return src.itemsQuery(tx, testFilter()).Find(&[]itemRecord{})
	})

	assert.Contains(t, sql, "FROM transaction_items ti")
	assert.Contains(t, sql, "JOIN transactions t ON t.id = ti.transaction_id")
	assert.Contains(t, sql, "product_categories c")
	assert.Contains(t, sql, "brands b")
}

func TestSource_ViewQueriesUseLocalDates(t *testing.T) {
	db := newDryRunDB(t)
	manila := time.FixedZone("PHT", 8*60*60)
	src := NewSource(db, manila)
	f := dashboard.Filter{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, manila),
		To:   time.Date(2024, 3, 8, 0, 0, 0, 0, manila),
	}

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return src.dailyViewQuery(tx, f).Find(&[]dailyRecord{})
	})
	assert.Contains(t, sql, ViewDailySales)
	assert.Contains(t, sql, "'2024-03-01'")
	assert.Contains(t, sql, "'2024-03-08'")

	sql = db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return src.hourlyViewQuery(tx, f).Find(&[]hourlyRecord{})
	})
	assert.Contains(t, sql, "GROUP BY hour_of_day")

	sql = db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return src.productViewQuery(tx, f, 5).Find(&[]productRecord{})
	})
	assert.Contains(t, sql, "LIMIT 5")
}

func TestMaterializedViewSQL(t *testing.T) {
	stmts := MaterializedViewSQL("Asia/Manila")

	require.Len(t, stmts, 6)
	assert.Contains(t, stmts[0], "AT TIME ZONE 'Asia/Manila'")
	assert.Contains(t, stmts[2], "hour_of_day")
	assert.Contains(t, stmts[4], "COUNT(DISTINCT ti.transaction_id)")

	quoted := MaterializedViewSQL("x'; DROP TABLE transactions; --")
	assert.Contains(t, quoted[0], "'x''; DROP TABLE transactions; --'")
}

func TestToTransactionRows(t *testing.T) {
	records := []transactionRecord{{ID: "T1", StoreID: "S1"}}

	rows := toTransactionRows(records)

	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Timestamp)
	assert.Nil(t, rows[0].TotalAmount)
	assert.Nil(t, rows[0].Store)
	assert.Equal(t, "Unknown", rows[0].RegionName())
}
