// internal/domain/retail/entity.go
package retail

import (
	"time"

	"github.com/shopspring/decimal"
)

// Brand represents a product brand
type Brand struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:255" json:"name"`
	IsClient  bool      `gorm:"default:false" json:"is_client"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Products []Product `gorm:"foreignKey:BrandID" json:"products,omitempty"`
}

// ProductCategory represents a product category
type ProductCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// Product represents a sellable SKU
type Product struct {
	ID          string          `gorm:"primaryKey;size:64" json:"id"` // SKU code
	Name        string          `gorm:"not null;size:255" json:"name"`
	Subcategory string          `gorm:"size:100" json:"subcategory"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	BrandID     uint            `gorm:"not null;index" json:"brand_id"`
	CreatedAt   time.Time       `json:"created_at"`

	// Relationships
	Category ProductCategory `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Brand    Brand           `gorm:"foreignKey:BrandID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"brand"`
}

// Store represents a sari-sari store or other retail outlet
type Store struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	Name          string    `gorm:"not null;size:255" json:"name"`
	StoreType     string    `gorm:"size:50" json:"store_type"`
	Region        string    `gorm:"not null;size:100;index" json:"region"`
	Province      string    `gorm:"size:100" json:"province"`
	City          string    `gorm:"size:100" json:"city"`
	Barangay      string    `gorm:"size:100" json:"barangay"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	EconomicClass string    `gorm:"size:10" json:"economic_class"`
	CreatedAt     time.Time `json:"created_at"`
}

// Transaction represents a completed sale. Transactions are immutable.
type Transaction struct {
	ID            string          `gorm:"primaryKey;size:64" json:"id"`
	Timestamp     time.Time       `gorm:"not null;index" json:"timestamp"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	StoreID       string          `gorm:"not null;size:64;index" json:"store_id"`
	CustomerID    *string         `gorm:"size:64;index" json:"customer_id"`
	PaymentMethod string          `gorm:"size:30" json:"payment_method"`
	UnitsTotal    int             `json:"units_total"`
	CreatedAt     time.Time       `json:"created_at"`

	// Relationships
	Store Store             `gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"store"`
	Items []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// TransactionItem represents one line of a transaction
type TransactionItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TransactionID string          `gorm:"not null;size:64;index" json:"transaction_id"`
	ProductID     string          `gorm:"not null;size:64;index" json:"product_id"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"product"`
}

// TableName overrides the default table name
func (ProductCategory) TableName() string {
	return "product_categories"
}

// Models returns every table managed by migrations, parents first.
func Models() []interface{} {
	return []interface{}{
		&Brand{},
		&ProductCategory{},
		&Product{},
		&Store{},
		&Transaction{},
		&TransactionItem{},
	}
}
