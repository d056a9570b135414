// internal/domain/dashboard/schema.go
package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SchemaVersion identifies the row shape sources must produce.
const SchemaVersion = "v1"

const (
	unknownRegion   = "Unknown"
	unknownCategory = "Uncategorized"
	unknownBrand    = "Unknown"
)

var timestampLayouts = []struct {
	layout string
	naive  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02 15:04:05.999999999Z07:00", false},
	{"2006-01-02T15:04:05.999999999Z07", false},
	{"2006-01-02 15:04:05.999999999Z07", false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02 15:04:05.999999999", true},
	{"2006-01-02", true},
}

// Timestamp is a point in time decoded from any of the formats upstream
// sources emit. Naive timestamps carry no zone and are read in the
// reporting location.
type Timestamp struct {
	Time  time.Time
	Naive bool
}

// ParseTimestamp parses RFC3339, zone-less datetimes and plain dates.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, l := range timestampLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return Timestamp{Time: t, Naive: l.naive}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// NewTimestamp wraps a zoned time.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Naive {
		return json.Marshal(t.Time.Format("2006-01-02T15:04:05.999999999"))
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// In resolves the timestamp in loc.
func (t Timestamp) In(loc *time.Location) time.Time {
	if !t.Naive {
		return t.Time.In(loc)
	}
	return time.Date(t.Time.Year(), t.Time.Month(), t.Time.Day(),
		t.Time.Hour(), t.Time.Minute(), t.Time.Second(), t.Time.Nanosecond(), loc)
}

// StoreRef is the store join embedded in a transaction row
type StoreRef struct {
	Region   string `json:"region"`
	City     string `json:"city"`
	Barangay string `json:"barangay"`
}

// TransactionRow is one transaction as returned by a source
type TransactionRow struct {
	ID              string           `json:"id" validate:"required"`
	Timestamp       *Timestamp       `json:"timestamp" validate:"required_without=TransactionDate"`
	TransactionDate *Timestamp       `json:"transaction_date" validate:"required_without=Timestamp"`
	TotalAmount     *decimal.Decimal `json:"total_amount" validate:"required"`
	StoreID         string           `json:"store_id"`
	CustomerID      *string          `json:"customer_id"`
	Store           *StoreRef        `json:"store"`
}

// Amount returns the total amount, zero when absent.
func (r TransactionRow) Amount() decimal.Decimal {
	if r.TotalAmount == nil {
		return decimal.Zero
	}
	return *r.TotalAmount
}

// At returns when the transaction happened in loc, preferring the precise
// timestamp over the transaction date. The zero time means unknown.
func (r TransactionRow) At(loc *time.Location) time.Time {
	switch {
	case r.Timestamp != nil:
		return r.Timestamp.In(loc)
	case r.TransactionDate != nil:
		return r.TransactionDate.In(loc)
	default:
		return time.Time{}
	}
}

// RegionName returns the store region or "Unknown".
func (r TransactionRow) RegionName() string {
	if r.Store == nil || strings.TrimSpace(r.Store.Region) == "" {
		return unknownRegion
	}
	return r.Store.Region
}

// Customer returns the customer id or an empty string.
func (r TransactionRow) Customer() string {
	if r.CustomerID == nil {
		return ""
	}
	return *r.CustomerID
}

// NamedRef is a joined lookup row carrying only its name
type NamedRef struct {
	Name string `json:"name"`
}

// ProductRef is the product join embedded in an item row
type ProductRef struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Category *NamedRef `json:"category"`
	Brand    *NamedRef `json:"brand"`
}

// ItemRow is one transaction line as returned by a source
type ItemRow struct {
	TransactionID string           `json:"transaction_id" validate:"required"`
	ProductID     string           `json:"product_id" validate:"required"`
	Quantity      int64            `json:"quantity" validate:"gte=0"`
	TotalPrice    *decimal.Decimal `json:"total_price" validate:"required"`
	Product       *ProductRef      `json:"product"`
}

// Amount returns the line total, zero when absent.
func (r ItemRow) Amount() decimal.Decimal {
	if r.TotalPrice == nil {
		return decimal.Zero
	}
	return *r.TotalPrice
}

func (r ItemRow) ProductName() string {
	if r.Product == nil || r.Product.Name == "" {
		return r.ProductID
	}
	return r.Product.Name
}

func (r ItemRow) CategoryName() string {
	if r.Product == nil || r.Product.Category == nil || r.Product.Category.Name == "" {
		return unknownCategory
	}
	return r.Product.Category.Name
}

func (r ItemRow) BrandName() string {
	if r.Product == nil || r.Product.Brand == nil || r.Product.Brand.Name == "" {
		return unknownBrand
	}
	return r.Product.Brand.Name
}

// SchemaValidator checks decoded rows against the v1 input schema. Rows are
// never rejected: each mismatch is logged and counted, and the row helpers
// substitute neutral values.
type SchemaValidator struct {
	validate   *validator.Validate
	logger     *logrus.Logger
	mismatches *prometheus.CounterVec
}

// NewSchemaValidator creates a validator reporting to logger and mismatches.
func NewSchemaValidator(logger *logrus.Logger, mismatches *prometheus.CounterVec) *SchemaValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &SchemaValidator{validate: v, logger: logger, mismatches: mismatches}
}

// Transactions validates a batch of transaction rows and returns how many
// rows had at least one mismatch.
func (v *SchemaValidator) Transactions(source string, rows []TransactionRow) int {
	bad := 0
	for i := range rows {
		mismatched := v.check(source, rows[i].ID, &rows[i])
		if rows[i].Store == nil || strings.TrimSpace(rows[i].Store.Region) == "" {
			v.report(source, rows[i].ID, "store.region", "required")
			mismatched = true
		}
		if mismatched {
			bad++
		}
	}
	return bad
}

// Items validates a batch of item rows and returns how many rows had at
// least one mismatch.
func (v *SchemaValidator) Items(source string, rows []ItemRow) int {
	bad := 0
	for i := range rows {
		if v.check(source, rows[i].TransactionID, &rows[i]) {
			bad++
		}
	}
	return bad
}

func (v *SchemaValidator) check(source, rowID string, row interface{}) bool {
	err := v.validate.Struct(row)
	if err == nil {
		return false
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.report(source, rowID, "", err.Error())
		return true
	}
	for _, fe := range verrs {
		v.report(source, rowID, fe.Field(), fe.Tag())
	}
	return true
}

func (v *SchemaValidator) report(source, rowID, field, rule string) {
	v.logger.WithFields(logrus.Fields{
		"schema_version": SchemaVersion,
		"source":         source,
		"row_id":         rowID,
		"field":          field,
		"rule":           rule,
	}).Warn("Row does not match input schema, substituting default")

	if v.mismatches != nil {
		v.mismatches.WithLabelValues(source, field).Inc()
	}
}
