// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/retail-analytics/internal/config"
	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client IP. Counters live in Redis when a
// client is configured; otherwise, or when Redis fails, a per-process token
// bucket is used.
type RateLimiter struct {
	redis     *redis.Client
	perMinute int
	burst     int
	logger    *logrus.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter creates a rate limiter. rdb may be nil.
func NewRateLimiter(cfg config.SecurityConfig, rdb *redis.Client, logger *logrus.Logger) *RateLimiter {
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = cfg.RateLimitPerMinute
	}
	return &RateLimiter{
		redis:     rdb,
		perMinute: cfg.RateLimitPerMinute,
		burst:     burst,
		logger:    logger,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Allow reports whether ip may make another request and how many remain
func (rl *RateLimiter) Allow(ctx context.Context, ip string) (bool, int) {
	if rl.perMinute <= 0 {
		return true, 0
	}

	if rl.redis != nil {
		allowed, remaining, err := rl.allowRedis(ctx, ip)
		if err == nil {
			return allowed, remaining
		}
		rl.logger.WithError(err).Warn("Redis rate limit unavailable, using local limiter")
	}

	limiter := rl.local(ip)
	return limiter.Allow(), int(limiter.Tokens())
}

func (rl *RateLimiter) allowRedis(ctx context.Context, ip string) (bool, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	key := fmt.Sprintf("rate_limit:%s", ip)

	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	// The window starts with the first request
	if count == 1 {
		if err := rl.redis.Expire(ctx, key, time.Minute).Err(); err != nil {
			return false, 0, err
		}
	}

	current := int(count)
	if current > rl.perMinute {
		return false, 0, nil
	}
	return true, rl.perMinute - current, nil
}

func (rl *RateLimiter) local(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rate.Limit(float64(rl.perMinute)/60), rl.burst)
		rl.limiters[ip] = limiter

		time.AfterFunc(time.Minute, func() {
			rl.mu.Lock()
			delete(rl.limiters, ip)
			rl.mu.Unlock()
		})
	}
	return limiter
}

// RateLimit rejects clients that exceed the configured request rate
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining := rl.Allow(c.Request.Context(), c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.perMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": 60,
			})
			return
		}

		c.Next()
	}
}
