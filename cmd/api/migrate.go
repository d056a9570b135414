// cmd/api/migrate.go
package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/your-org/retail-analytics/internal/config"
	"github.com/your-org/retail-analytics/internal/infrastructure/database/postgres"
)

var (
	migrateReset        bool
	migrateRefreshViews bool

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create tables, indexes and materialized views",
		RunE:  runMigrate,
	}
)

func init() {
	migrateCmd.Flags().BoolVar(&migrateReset, "reset", false, "drop all tables and views first (development only)")
	migrateCmd.Flags().BoolVar(&migrateRefreshViews, "refresh-views", false, "only refresh the materialized views")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	migration := postgres.NewMigration(db.GetDB())

	if migrateRefreshViews {
		return migration.RefreshMaterializedViews()
	}

	if migrateReset {
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to drop tables in production")
		}
		if err := migration.DropAllTables(); err != nil {
			return err
		}
	}

	if err := migration.RunAutoMigrations(); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		log.Printf("Warning: Index creation failed: %v", err)
	}

	if err := migration.CreateMaterializedViews(cfg.Dashboard.Timezone); err != nil {
		return err
	}

	log.Println("✅ Migration completed")
	return nil
}
