package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/onnwee/stand/internal/jobs"
)

type fakeRefresher struct {
	refreshes   atomic.Int32
	invalidates atomic.Int32
	err         error
	block       bool
}

func (f *fakeRefresher) Refresh(ctx context.Context) (*Snapshot, error) {
	f.refreshes.Add(1)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return testSnapshot(), nil
}

func (f *fakeRefresher) Invalidate(ctx context.Context) error {
	f.invalidates.Add(1)
	return f.err
}

type recordingReporter struct {
	totals    map[string]int
	errors    map[string]int
	durations int
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{totals: map[string]int{}, errors: map[string]int{}}
}

func (r *recordingReporter) IncJobsTotal(jobType, status string) { r.totals[jobType+"/"+status]++ }
func (r *recordingReporter) ObserveJobDuration(string, float64)  { r.durations++ }
func (r *recordingReporter) IncJobErrors(jobType, errorType string) {
	r.errors[jobType+"/"+errorType]++
}

func TestRefreshJob_StartStop(t *testing.T) {
	job := NewRefreshJob(RefreshJobConfig{
		Interval: 100 * time.Millisecond,
		Logger:   quietLogger(),
	}, &fakeRefresher{})

	if job.IsRunning() {
		t.Error("job should not be running before Start")
	}

	ctx := context.Background()
	if err := job.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !job.IsRunning() {
		t.Error("job should be running after Start")
	}
	if err := job.Start(ctx); err != nil {
		t.Fatalf("Start() second call error = %v", err)
	}

	job.Stop()
	if job.IsRunning() {
		t.Error("job should not be running after Stop")
	}
	job.Stop()
}

func TestRefreshJob_TicksRefresh(t *testing.T) {
	r := &fakeRefresher{}
	job := NewRefreshJob(RefreshJobConfig{
		Interval: 20 * time.Millisecond,
		Logger:   quietLogger(),
	}, r)

	if err := job.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer job.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for r.refreshes.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("refreshes = %d after 2s, want at least 2", r.refreshes.Load())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRefreshJob_StopsOnContextCancel(t *testing.T) {
	job := NewRefreshJob(RefreshJobConfig{Interval: time.Hour, Logger: quietLogger()}, &fakeRefresher{})

	ctx, cancel := context.WithCancel(context.Background())
	if err := job.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case <-job.doneCh:
	case <-time.After(time.Second):
		t.Fatal("job did not exit after context cancellation")
	}
}

func TestRefreshJob_RefreshNowMetrics(t *testing.T) {
	tests := []struct {
		name       string
		refresher  *fakeRefresher
		timeout    time.Duration
		wantErr    bool
		wantStatus string
		wantError  string
	}{
		{
			name:       "success",
			refresher:  &fakeRefresher{},
			wantStatus: jobs.StatusSuccess,
		},
		{
			name:       "load error",
			refresher:  &fakeRefresher{err: errors.New("db down")},
			wantErr:    true,
			wantStatus: jobs.StatusFailure,
			wantError:  "load_error",
		},
		{
			name:       "timeout",
			refresher:  &fakeRefresher{block: true},
			timeout:    10 * time.Millisecond,
			wantErr:    true,
			wantStatus: jobs.StatusFailure,
			wantError:  "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := newRecordingReporter()
			job := NewRefreshJob(RefreshJobConfig{
				Logger:     quietLogger(),
				JobMetrics: rep,
				Timeout:    tt.timeout,
			}, tt.refresher)

			err := job.RefreshNow(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("RefreshNow() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := rep.totals[jobs.JobTypeCatalogRefresh+"/"+tt.wantStatus]; got != 1 {
				t.Errorf("jobs total %s = %d, want 1", tt.wantStatus, got)
			}
			if rep.durations != 1 {
				t.Errorf("durations observed = %d, want 1", rep.durations)
			}
			if tt.wantError != "" {
				if got := rep.errors[jobs.JobTypeCatalogRefresh+"/"+tt.wantError]; got != 1 {
					t.Errorf("job errors %s = %d, want 1", tt.wantError, got)
				}
			}
		})
	}
}

func TestRefreshJob_InvalidateNow(t *testing.T) {
	r := &fakeRefresher{}
	rep := newRecordingReporter()
	job := NewRefreshJob(RefreshJobConfig{Logger: quietLogger(), JobMetrics: rep}, r)

	if err := job.InvalidateNow(context.Background()); err != nil {
		t.Fatalf("InvalidateNow() error = %v", err)
	}
	if r.invalidates.Load() != 1 {
		t.Errorf("invalidates = %d, want 1", r.invalidates.Load())
	}
	if got := rep.totals[jobs.JobTypeCacheInvalidate+"/"+jobs.StatusSuccess]; got != 1 {
		t.Errorf("invalidate success total = %d, want 1", got)
	}
}

func TestRefreshJob_WithCachedSource(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{snap: testSnapshot()}
	cs := NewCachedSource(src, NewMemoryCache(), CachedSourceConfig{Logger: quietLogger()})

	reg := jobs.NewMetrics()
	job := NewRefreshJob(RefreshJobConfig{Logger: quietLogger(), JobMetrics: reg}, cs)
	if err := job.RefreshNow(ctx); err != nil {
		t.Fatalf("RefreshNow() error = %v", err)
	}

	if _, err := cs.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}
	if got := src.loads.Load(); got != 1 {
		t.Errorf("loads = %d, want the refresh to warm the cache", got)
	}
}
