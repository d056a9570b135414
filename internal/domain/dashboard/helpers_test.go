package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return ts
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func tx(t *testing.T, id, at, amount, region string) TransactionRow {
	t.Helper()
	row := TransactionRow{
		ID:          id,
		TotalAmount: dec(amount),
		StoreID:     "STR-" + id,
	}
	if at != "" {
		row.Timestamp = NewTimestamp(mustTime(t, at))
	}
	if region != "" {
		row.Store = &StoreRef{Region: region, City: "Manila"}
	}
	return row
}

func item(txID, productID, category, brand string, qty int64, total string) ItemRow {
	return ItemRow{
		TransactionID: txID,
		ProductID:     productID,
		Quantity:      qty,
		TotalPrice:    dec(total),
		Product: &ProductRef{
			ID:       productID,
			Name:     "Product " + productID,
			Category: &NamedRef{Name: category},
			Brand:    &NamedRef{Name: brand},
		},
	}
}

func sumHours(hours []HourlyVolume) decimal.Decimal {
	total := decimal.Zero
	for _, h := range hours {
		total = total.Add(h.Total)
	}
	return total
}
