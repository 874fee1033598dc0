// Package ratelimit throttles the unauthenticated auth endpoints per client
// IP, in memory or, when several replicas run, in Redis.
package ratelimit

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const memoryStoreExpiry = 5 * time.Minute

// NewMemoryStore returns a token-bucket store local to this process.
func NewMemoryStore(ratePerSecond float64, burst int) middleware.RateLimiterStore {
	return middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: memoryStoreExpiry,
		},
	)
}

// counter is the subset of *redis.Client used by RedisStore.
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisStore is a fixed-window counter shared by all replicas: at most
// Limit requests per identifier in each Window. Redis failures let the
// request through.
type RedisStore struct {
	client  counter
	log     logging.Logger
	prefix  string
	Limit   int64
	Window  time.Duration
	timeout time.Duration
}

// NewRedisStore derives the window from rate and burst so that the average
// rate matches the memory store: burst requests per burst/rate seconds.
func NewRedisStore(client counter, log logging.Logger, ratePerSecond float64, burst int) *RedisStore {
	if burst < 1 {
		burst = 1
	}
	window := time.Second
	if ratePerSecond > 0 {
		window = time.Duration(float64(burst) / ratePerSecond * float64(time.Second))
	}
	return &RedisStore{
		client:  client,
		log:     log,
		prefix:  "vidtube:ratelimit:",
		Limit:   int64(burst),
		Window:  window,
		timeout: 200 * time.Millisecond,
	}
}

// Allow implements middleware.RateLimiterStore.
func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := s.prefix + identifier

	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.log.Warn(ctx, "rate limit store unavailable", "error", err)
		return true, nil
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, s.Window).Err(); err != nil {
			s.log.Warn(ctx, "rate limit expire failed", "key", key, "error", err)
		}
	}
	return n <= s.Limit, nil
}

// Middleware limits requests by client IP using store. Denied requests get
// a 429 rendered by the server's error handler.
func Middleware(store middleware.RateLimiterStore) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
		},
	})
}
