// internal/pkg/cache/cache.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a cached value stays valid after it is written.
const DefaultTTL = 5 * time.Minute

// Cache stores values of type V by string key with a fixed time-to-live.
// Get reports a miss (false) for absent and expired keys alike.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, value V) error
	Delete(ctx context.Context, key string) error
	Flush(ctx context.Context) error
	Driver() string
}

// Config selects and tunes a cache driver.
type Config struct {
	Driver     string // memory, lru, redis or none
	TTL        time.Duration
	MaxEntries int
	KeyPrefix  string
	Clock      clockwork.Clock
}

// New builds the cache driver named in cfg. The Redis client is only
// required for the redis driver.
func New[V any](cfg Config, rdb *redis.Client) (Cache[V], error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	switch cfg.Driver {
	case "", "memory":
		return NewMemory[V](cfg.TTL, cfg.MaxEntries, cfg.Clock), nil
	case "lru":
		return NewLRU[V](cfg.MaxEntries, cfg.TTL), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis cache driver requires a redis client")
		}
		if cfg.KeyPrefix == "" {
			return nil, fmt.Errorf("redis cache driver requires a key prefix")
		}
		return NewRedis[V](rdb, cfg.KeyPrefix, cfg.TTL), nil
	case "none":
		return Noop[V]{}, nil
	default:
		return nil, fmt.Errorf("unknown cache driver: %s", cfg.Driver)
	}
}

// Noop never stores anything.
type Noop[V any] struct{}

func (Noop[V]) Get(context.Context, string) (V, bool, error) {
	var zero V
	return zero, false, nil
}
func (Noop[V]) Set(context.Context, string, V) error { return nil }
func (Noop[V]) Delete(context.Context, string) error { return nil }
func (Noop[V]) Flush(context.Context) error { return nil }
func (Noop[V]) Driver() string { return "none" }
