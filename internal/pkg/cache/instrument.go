// internal/pkg/cache/instrument.go
package cache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

type instrumented[V any] struct {
	Cache[V]
	hits   prometheus.Counter
	misses prometheus.Counter
}

// Instrument counts hits and misses of next. Errors count as misses.
func Instrument[V any](next Cache[V], hits, misses prometheus.Counter) Cache[V] {
	return &instrumented[V]{Cache: next, hits: hits, misses: misses}
}

func (c *instrumented[V]) Get(ctx context.Context, key string) (V, bool, error) {
	v, ok, err := c.Cache.Get(ctx, key)
	if ok && err == nil {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
	return v, ok, err
}
