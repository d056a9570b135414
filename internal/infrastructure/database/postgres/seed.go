// internal/infrastructure/database/postgres/seed.go
package postgres

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/retail-analytics/internal/domain/retail"
	"gorm.io/gorm/clause"
)

// SeedOptions controls the synthetic dataset
type SeedOptions struct {
	Transactions int
	Stores       int
	Customers    int
	Days         int
	End          time.Time
	Location     *time.Location
	RandSeed     int64
}

// DefaultSeedOptions returns a month of data ending today.
func DefaultSeedOptions(loc *time.Location) SeedOptions {
	return SeedOptions{
		Transactions: 5000,
		Stores:       40,
		Customers:    800,
		Days:         30,
		End:          time.Now(),
		Location:     loc,
		RandSeed:     42,
	}
}

// Dataset is a generated set of rows ready to insert
type Dataset struct {
	Brands       []retail.Brand
	Categories   []retail.ProductCategory
	Products     []retail.Product
	Stores       []retail.Store
	Transactions []retail.Transaction
}

// GenerateDataset builds a deterministic FMCG and tobacco dataset. Trading
// hours are 7 AM to 10 PM local time; tobacco is sold one pack at a time.
func GenerateDataset(opts SeedOptions) Dataset {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	rng := rand.New(rand.NewSource(opts.RandSeed))
	var ds Dataset

	type catalogItem struct {
		product  retail.Product
		category string
	}
	var items []catalogItem

	for ci, category := range retail.Catalog {
		categoryID := uint(ci + 1)
		ds.Categories = append(ds.Categories, retail.ProductCategory{ID: categoryID, Name: category.Name})

		for _, brand := range category.Brands {
			brandID := uint(len(ds.Brands) + 1)
			ds.Brands = append(ds.Brands, retail.Brand{ID: brandID, Name: brand.Name, IsClient: brand.Client})

			for _, p := range brand.Products {
				subcategory := category.Name
				if category.Name == "Tobacco" {
					subcategory = "Cigarette"
				}
				product := retail.Product{
					ID:          p.SKU,
					Name:        p.Name,
					Subcategory: subcategory,
					UnitPrice:   p.Price,
					CategoryID:  categoryID,
					BrandID:     brandID,
				}
				ds.Products = append(ds.Products, product)
				items = append(items, catalogItem{product: product, category: category.Name})
			}
		}
	}

	for i := 0; i < opts.Stores; i++ {
		location := retail.Locations[rng.Intn(len(retail.Locations))]
		barangay := location.Barangays[rng.Intn(len(location.Barangays))]
		storeType := "sari-sari"
		if rng.Intn(4) == 0 {
			storeType = "convenience"
		}
		ds.Stores = append(ds.Stores, retail.Store{
			ID:            fmt.Sprintf("ST%06d", 100000+i),
			Name:          retail.StoreNames[rng.Intn(len(retail.StoreNames))],
			StoreType:     storeType,
			Region:        location.Region,
			Province:      location.Province,
			City:          location.City,
			Barangay:      barangay.Name,
			Latitude:      barangay.Lat + (rng.Float64()-0.5)*0.02,
			Longitude:     barangay.Lng + (rng.Float64()-0.5)*0.02,
			EconomicClass: string(rune('A' + rng.Intn(5))),
		})
	}
	if len(ds.Stores) == 0 || len(items) == 0 || opts.Days <= 0 {
		return ds
	}

	end := opts.End.In(opts.Location)
	firstDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, opts.Location).AddDate(0, 0, -(opts.Days - 1))

	for i := 0; i < opts.Transactions; i++ {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			id = uuid.New()
		}
		at := firstDay.AddDate(0, 0, rng.Intn(opts.Days)).
			Add(time.Duration(7+rng.Intn(16)) * time.Hour).
			Add(time.Duration(rng.Intn(60)) * time.Minute)

		store := ds.Stores[rng.Intn(len(ds.Stores))]
		txn := retail.Transaction{
			ID:            id.String(),
			Timestamp:     at.UTC(),
			StoreID:       store.ID,
			PaymentMethod: retail.PaymentMethods[rng.Intn(len(retail.PaymentMethods))],
		}
		if opts.Customers > 0 && rng.Intn(5) != 0 {
			customer := fmt.Sprintf("CUST-%05d", rng.Intn(opts.Customers)+1)
			txn.CustomerID = &customer
		}

		total := decimal.Zero
		lines := 1 + rng.Intn(3)
		for l := 0; l < lines; l++ {
			pick := items[rng.Intn(len(items))]
			qty := 1
			if pick.category != "Tobacco" {
				qty = 1 + rng.Intn(3)
			}
			lineTotal := pick.product.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
			txn.Items = append(txn.Items, retail.TransactionItem{
				TransactionID: txn.ID,
				ProductID:     pick.product.ID,
				Quantity:      qty,
				UnitPrice:     pick.product.UnitPrice,
				TotalPrice:    lineTotal,
			})
			total = total.Add(lineTotal)
			txn.UnitsTotal += qty
		}
		txn.TotalAmount = total
		ds.Transactions = append(ds.Transactions, txn)
	}

	return ds
}

// SeedInitialData inserts the synthetic dataset. Existing rows are kept.
func (m *Migration) SeedInitialData(opts SeedOptions) error {
	log.Println("🌱 Seeding initial data...")

	ds := GenerateDataset(opts)
	ignore := clause.OnConflict{DoNothing: true}

	if err := m.db.Clauses(ignore).Create(&ds.Categories).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	log.Printf("🏷️ Seeded %d categories", len(ds.Categories))

	if err := m.db.Clauses(ignore).Create(&ds.Brands).Error; err != nil {
		return fmt.Errorf("failed to seed brands: %w", err)
	}
	log.Printf("🏷️ Seeded %d brands", len(ds.Brands))

	if err := m.db.Clauses(ignore).Omit(clause.Associations).Create(&ds.Products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	log.Printf("🛍️ Seeded %d products", len(ds.Products))

	if len(ds.Stores) > 0 {
		if err := m.db.Clauses(ignore).Create(&ds.Stores).Error; err != nil {
			return fmt.Errorf("failed to seed stores: %w", err)
		}
	}
	log.Printf("🏪 Seeded %d stores", len(ds.Stores))

	if len(ds.Transactions) > 0 {
		if err := m.db.Clauses(ignore).Omit("Store").CreateInBatches(&ds.Transactions, 500).Error; err != nil {
			return fmt.Errorf("failed to seed transactions: %w", err)
		}
	}
	log.Printf("🧾 Seeded %d transactions", len(ds.Transactions))

	log.Println("✅ Initial data seeded successfully")
	return nil
}
