package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a loaded snapshot is served before the
// backing source is consulted again.
const DefaultCacheTTL = 5 * time.Minute

// DefaultCacheKey is the cache key for the catalog snapshot.
const DefaultCacheKey = "catalog:snapshot"

// DefaultLoadTimeout bounds a shared load from the backing source.
const DefaultLoadTimeout = 30 * time.Second

// CachedSourceConfig configures a CachedSource.
type CachedSourceConfig struct {
	// TTL is the lifetime of a cached snapshot.
	TTL time.Duration
	// Key is the cache key the snapshot is stored under.
	Key string
	// LoadTimeout bounds a load from the backing source on a miss.
	LoadTimeout time.Duration
	// Logger for cache activity.
	Logger *slog.Logger
	// Metrics for cache and load tracking. Optional.
	Metrics *Metrics
}

// CachedSource memoizes another Source's snapshot in a Cache. Concurrent
// misses share a single load. A cache that fails is logged and bypassed.
type CachedSource struct {
	source Source
	cache  Cache
	config CachedSourceConfig
	group  singleflight.Group
}

// NewCachedSource wraps source with cache.
func NewCachedSource(source Source, cache Cache, config CachedSourceConfig) *CachedSource {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheTTL
	}
	if config.Key == "" {
		config.Key = DefaultCacheKey
	}
	if config.LoadTimeout <= 0 {
		config.LoadTimeout = DefaultLoadTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &CachedSource{
		source: source,
		cache:  cache,
		config: config,
	}
}

// Snapshot returns the cached snapshot, loading it from the backing source
// on a miss. The load is shared by every caller that misses meanwhile and is
// detached from the caller's cancellation; a caller whose ctx ends stops
// waiting without cancelling the load for the others.
func (c *CachedSource) Snapshot(ctx context.Context) (*Snapshot, error) {
	data, err := c.cache.Get(ctx, c.config.Key)
	switch {
	case err == nil:
		snap, decodeErr := DecodeSnapshot(data)
		if decodeErr == nil {
			c.record(ResultHit)
			return snap, nil
		}
		c.config.Logger.WarnContext(ctx, "discarding undecodable catalog cache entry",
			"key", c.config.Key,
			"error", decodeErr)
		c.record(ResultError)
	case errors.Is(err, ErrCacheMiss):
		c.record(ResultMiss)
	default:
		c.config.Logger.WarnContext(ctx, "catalog cache unavailable, loading from source",
			"key", c.config.Key,
			"error", err)
		c.record(ResultError)
	}

	ch := c.group.DoChan(c.config.Key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.LoadTimeout)
		defer cancel()
		return c.Refresh(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Refresh loads a fresh snapshot from the backing source and stores it in
// the cache. A failure to store is logged; the loaded snapshot is still
// returned.
func (c *CachedSource) Refresh(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	snap, err := c.source.Snapshot(ctx)
	if c.config.Metrics != nil {
		c.config.Metrics.ObserveLoadDuration(time.Since(start).Seconds())
	}
	if err != nil {
		if c.config.Metrics != nil {
			c.config.Metrics.IncLoadErrors()
		}
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if c.config.Metrics != nil {
		c.config.Metrics.SetSnapshot(snap)
	}

	data, err := EncodeSnapshot(snap)
	if err != nil {
		c.config.Logger.ErrorContext(ctx, "failed to encode catalog snapshot", "error", err)
		return snap, nil
	}
	if err := c.cache.Set(ctx, c.config.Key, data, c.config.TTL); err != nil {
		c.config.Logger.WarnContext(ctx, "failed to store catalog snapshot",
			"key", c.config.Key,
			"error", err)
	}

	brands, local, lists := snap.Counts()
	c.config.Logger.InfoContext(ctx, "catalog snapshot loaded",
		"brands", brands,
		"local_businesses", local,
		"rank_lists", lists,
		"duration_ms", time.Since(start).Milliseconds())

	return snap, nil
}

// Invalidate drops the cached snapshot so the next call reloads it.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, c.config.Key)
}

func (c *CachedSource) record(result string) {
	if c.config.Metrics != nil {
		c.config.Metrics.IncCacheRequest(result)
	}
}
