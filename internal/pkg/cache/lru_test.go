package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewLRU[string](2, time.Hour)

	require.NoError(t, c.Set(ctx, "a", "1"))
	require.NoError(t, c.Set(ctx, "b", "2"))
	_, _, _ = c.Get(ctx, "a")
	require.NoError(t, c.Set(ctx, "c", "3"))

	_, ok, _ := c.Get(ctx, "b")
	assert.False(t, ok)
	v, ok, _ := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewLRU[string](0, 50*time.Millisecond)

	require.NoError(t, c.Set(ctx, "a", "1"))
	assert.Eventually(t, func() bool {
		_, ok, _ := c.Get(ctx, "a")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestLRU_Flush(t *testing.T) {
	ctx := context.Background()
	c := NewLRU[int](10, time.Hour)

	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, 0, c.Len())
}
