package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/onnwee/stand/internal/jobs"
)

// Refresher reloads a catalog snapshot into its cache.
type Refresher interface {
	Refresh(ctx context.Context) (*Snapshot, error)
	Invalidate(ctx context.Context) error
}

// RefreshJobConfig configures the catalog refresh job.
type RefreshJobConfig struct {
	// Interval is the duration between refresh cycles.
	Interval time.Duration
	// Logger for job activity.
	Logger *slog.Logger
	// JobMetrics for centralized background job tracking. Optional.
	JobMetrics jobs.Reporter
	// Timeout for each refresh cycle.
	Timeout time.Duration
}

// DefaultRefreshTimeout is the default timeout for a single refresh cycle.
const DefaultRefreshTimeout = 30 * time.Second

// RefreshJob periodically reloads the catalog so requests rarely pay for a
// cold cache. The interval defaults to just under the cache TTL.
type RefreshJob struct {
	config    RefreshJobConfig
	refresher Refresher

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRefreshJob creates a new catalog refresh job.
func NewRefreshJob(config RefreshJobConfig, refresher Refresher) *RefreshJob {
	if config.Interval <= 0 {
		config.Interval = DefaultCacheTTL - 30*time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultRefreshTimeout
	}

	return &RefreshJob{
		config:    config,
		refresher: refresher,
	}
}

// Start begins the periodic refresh job.
// Returns immediately; the job runs in a background goroutine.
func (j *RefreshJob) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return nil
	}
	j.running = true
	j.stopCh = make(chan struct{})
	j.doneCh = make(chan struct{})
	j.mu.Unlock()

	go j.run(ctx)
	return nil
}

// Stop signals the refresh job to stop and waits for it to finish.
func (j *RefreshJob) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	stopCh := j.stopCh
	doneCh := j.doneCh
	j.mu.Unlock()

	close(stopCh)
	<-doneCh

	j.mu.Lock()
	j.running = false
	j.mu.Unlock()
}

// IsRunning returns whether the job is currently running.
func (j *RefreshJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *RefreshJob) run(ctx context.Context) {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.config.Logger.Info("catalog refresh job stopping due to context cancellation")
			return
		case <-j.stopCh:
			j.config.Logger.Info("catalog refresh job stopping due to stop signal")
			return
		case <-ticker.C:
			_ = j.refresh(ctx)
		}
	}
}

func (j *RefreshJob) refresh(parentCtx context.Context) error {
	ctx, cancel := context.WithTimeout(parentCtx, j.config.Timeout)
	defer cancel()

	start := time.Now()
	_, err := j.refresher.Refresh(ctx)
	errorType := jobs.ErrorType(err, "load_error")
	jobs.Record(j.config.JobMetrics, jobs.JobTypeCatalogRefresh, start, errorType)

	if err != nil {
		j.config.Logger.Error("catalog refresh failed",
			"error", err,
			"error_type", errorType,
			"timeout", j.config.Timeout)
		return err
	}
	j.config.Logger.Debug("catalog refresh completed",
		"duration_seconds", time.Since(start).Seconds())
	return nil
}

// RefreshNow reloads the catalog immediately without waiting for the ticker.
func (j *RefreshJob) RefreshNow(ctx context.Context) error {
	return j.refresh(ctx)
}

// InvalidateNow drops the cached snapshot so the next request reloads it.
func (j *RefreshJob) InvalidateNow(ctx context.Context) error {
	start := time.Now()
	err := j.refresher.Invalidate(ctx)
	jobs.Record(j.config.JobMetrics, jobs.JobTypeCacheInvalidate, start, jobs.ErrorType(err, "cache_error"))

	if err != nil {
		j.config.Logger.Error("catalog cache invalidation failed", "error", err)
		return err
	}
	j.config.Logger.Info("catalog cache invalidated")
	return nil
}
