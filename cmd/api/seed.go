// cmd/api/seed.go
package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/your-org/retail-analytics/internal/config"
	"github.com/your-org/retail-analytics/internal/infrastructure/database/postgres"
)

var (
	seedTransactions int
	seedStores       int
	seedDays         int
	seedRandSeed     int64

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Insert synthetic FMCG and tobacco sales data",
		RunE:  runSeed,
	}
)

func init() {
	defaults := postgres.DefaultSeedOptions(nil)
	seedCmd.Flags().IntVar(&seedTransactions, "transactions", defaults.Transactions, "number of transactions to generate")
	seedCmd.Flags().IntVar(&seedStores, "stores", defaults.Stores, "number of stores to generate")
	seedCmd.Flags().IntVar(&seedDays, "days", defaults.Days, "days of history ending today")
	seedCmd.Flags().Int64Var(&seedRandSeed, "rand-seed", defaults.RandSeed, "random seed for a reproducible dataset")
}

func runSeed(cmd *cobra.Command, args []string) error {
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

	opts := postgres.DefaultSeedOptions(cfg.Location())
	opts.Transactions = seedTransactions
	opts.Stores = seedStores
	opts.Days = seedDays
	opts.RandSeed = seedRandSeed

	if err := migration.SeedInitialData(opts); err != nil {
		return fmt.Errorf("data seeding failed: %w", err)
	}

	if err := migration.RefreshMaterializedViews(); err != nil {
		log.Printf("Warning: View refresh failed: %v", err)
	}

	return migration.GetTableInfo()
}
