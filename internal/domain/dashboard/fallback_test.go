package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFallback(t *testing.T) {
	boom := errors.New("boom")
	var seen error

	query := WithFallback(func(context.Context) (int, error) { return 0, boom },
		func() int { return 42 },
		func(err error) { seen = err })

	v, err := query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.ErrorIs(t, seen, boom)
}

func TestWithFallback_PassesThroughSuccess(t *testing.T) {
	mockCalled := false
	query := WithFallback(func(context.Context) (string, error) { return "live", nil },
		func() string { mockCalled = true; return "mock" },
		nil)

	v, err := query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "live", v)
	assert.False(t, mockCalled)
}

func jsonKeys(t *testing.T, v interface{}) []string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestMockMetrics_ShapeMatchesSections(t *testing.T) {
	f := LastNDays(mustTime(t, "2024-03-15T12:00:00Z"), 7, time.UTC)
	m := MockMetrics(f, NewAggregator(time.UTC), 5, 10)

	expected := append([]string(nil), Sections...)
	sort.Strings(expected)
	assert.Equal(t, expected, jsonKeys(t, m))

	require.NotNil(t, m.KPIMetrics)
	assert.Len(t, m.TransactionVolume, 24)
	assert.NotEmpty(t, m.SalesTrend)
	assert.NotEmpty(t, m.TopProducts)
	assert.LessOrEqual(t, len(m.TopProducts), 5)
	assert.NotEmpty(t, m.RegionPerformance)
	assert.LessOrEqual(t, len(m.RecentTransactions), 10)
	assert.Equal(t, DirectionUp, m.KPIMetrics.TotalSales.Trend)
}

func TestBuildMockData_StaysInsideWindowAndFilter(t *testing.T) {
	f := Filter{
		From:   mustTime(t, "2024-03-01T06:00:00Z"),
		To:     mustTime(t, "2024-03-01T12:00:00Z"),
		Region: "NCR",
	}

	data := BuildMockData(f, time.UTC)

	require.NotEmpty(t, data.Transactions)
	for _, row := range data.Transactions {
		at := row.At(time.UTC)
		assert.False(t, at.Before(f.From), row.ID)
		assert.True(t, at.Before(f.To), row.ID)
		assert.Equal(t, "NCR", row.RegionName())
	}
}

func TestWithFallback_CancellationIsNotAFailure(t *testing.T) {
	called := false
	query := WithFallback(func(ctx context.Context) (int, error) {
		return 0, fmt.Errorf("failed to get transactions: %w", ctx.Err())
	}, func() int { return 42 }, func(error) { called = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := query(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, v)
	assert.False(t, called)
}
