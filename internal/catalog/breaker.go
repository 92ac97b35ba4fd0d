package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig configures a BreakerCache.
type BreakerConfig struct {
	// Name identifies the breaker in logs.
	Name string
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// Timeout is how long the breaker stays open before a trial request.
	Timeout time.Duration
	// Logger for state transitions.
	Logger *slog.Logger
}

// BreakerCache guards a Cache with a circuit breaker. While the breaker is
// open every call fails fast, so CachedSource goes straight to the backing
// source instead of waiting on an unreachable Redis. Misses count as success.
type BreakerCache struct {
	cache Cache
	cb    *gobreaker.CircuitBreaker[[]byte]
}

// NewBreakerCache wraps cache with a circuit breaker.
func NewBreakerCache(cache Cache, config BreakerConfig) *BreakerCache {
	if config.Name == "" {
		config.Name = "catalog-cache"
	}
	if config.MaxFailures == 0 {
		config.MaxFailures = 5
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	maxFailures := config.MaxFailures
	logger := config.Logger
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: 1,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	return &BreakerCache{cache: cache, cb: cb}
}

// State reports the breaker state: closed, half-open or open.
func (b *BreakerCache) State() string {
	return b.cb.State().String()
}

// Get implements Cache.
func (b *BreakerCache) Get(ctx context.Context, key string) ([]byte, error) {
	return b.cb.Execute(func() ([]byte, error) {
		return b.cache.Get(ctx, key)
	})
}

// Set implements Cache.
func (b *BreakerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.cache.Set(ctx, key, value, ttl)
	})
	return err
}

// Delete implements Cache.
func (b *BreakerCache) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.cache.Delete(ctx, key)
	})
	return err
}
