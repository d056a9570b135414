package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDataset(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	opts := SeedOptions{
		Transactions: 300,
		Stores:       10,
		Customers:    50,
		Days:         7,
		End:          time.Date(2024, 3, 15, 12, 0, 0, 0, manila),
		Location:     manila,
		RandSeed:     7,
	}

	ds := GenerateDataset(opts)

	assert.Len(t, ds.Categories, 6)
	assert.Len(t, ds.Stores, 10)
	require.Len(t, ds.Transactions, 300)

	first := time.Date(2024, 3, 9, 0, 0, 0, 0, manila)
	last := time.Date(2024, 3, 16, 0, 0, 0, 0, manila)
	for _, txn := range ds.Transactions {
		local := txn.Timestamp.In(manila)
		assert.False(t, local.Before(first), txn.ID)
		assert.True(t, local.Before(last), txn.ID)
		assert.GreaterOrEqual(t, local.Hour(), 7)
		assert.LessOrEqual(t, local.Hour(), 22)

		sum := decimal.Zero
		for _, it := range txn.Items {
			sum = sum.Add(it.TotalPrice)
		}
		assert.True(t, sum.Equal(txn.TotalAmount), txn.ID)
	}
}

func TestGenerateDataset_Deterministic(t *testing.T) {
	opts := SeedOptions{Transactions: 20, Stores: 3, Customers: 5, Days: 3, End: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), RandSeed: 1}

	a := GenerateDataset(opts)
	b := GenerateDataset(opts)

	require.Len(t, a.Transactions, 20)
	for i := range a.Transactions {
		assert.Equal(t, a.Transactions[i].ID, b.Transactions[i].ID)
		assert.True(t, a.Transactions[i].TotalAmount.Equal(b.Transactions[i].TotalAmount))
	}
}
