// internal/pkg/cache/lru.go
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRU is a size-bounded cache backed by expirable.LRU. Entries expire
// ttl after insertion; the least recently used entry is evicted when full.
type LRU[V any] struct {
	lru *expirable.LRU[string, V]
}

// NewLRU creates an LRU cache. size <= 0 means no size limit.
func NewLRU[V any](size int, ttl time.Duration) *LRU[V] {
	if size < 0 {
		size = 0
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LRU[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

func (c *LRU[V]) Get(_ context.Context, key string) (V, bool, error) {
	v, ok := c.lru.Get(key)
	return v, ok, nil
}

func (c *LRU[V]) Set(_ context.Context, key string, value V) error {
	c.lru.Add(key, value)
	return nil
}

func (c *LRU[V]) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

func (c *LRU[V]) Flush(_ context.Context) error {
	c.lru.Purge()
	return nil
}

func (c *LRU[V]) Driver() string { return "lru" }

// Len returns the number of live entries.
func (c *LRU[V]) Len() int {
	return c.lru.Len()
}
