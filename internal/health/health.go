// Package health provides readiness checks for the API's backing services.
package health

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/onnwee/stand/internal/catalog"
)

// Status values reported per check.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Checker reports whether a dependency can serve traffic.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

// HealthCheck calls f.
func (f CheckerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// Postgres pings the catalog database.
func Postgres(db *sql.DB) Checker {
	return CheckerFunc(db.PingContext)
}

// Redis sends PING to the snapshot cache and rate limit store.
func Redis(client redis.UniversalClient) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// Catalog fails while no snapshot can be produced, such as before the first
// load or after a Postgres outage outlived the cached copy.
func Catalog(source catalog.Source) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		snap, err := source.Snapshot(ctx)
		if err == nil && snap == nil {
			err = catalog.ErrNoSnapshot
		}
		return err
	})
}

// Check is one named dependency. A nil Checker means the dependency is not
// configured and an in-process fallback is serving instead; it reports ok.
type Check struct {
	Name    string
	Checker Checker
}

// Report holds per-check outcomes.
type Report struct {
	Statuses map[string]string
	Errors   map[string]error
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool { return len(r.Errors) == 0 }

// Err joins the failures, or returns nil.
func (r Report) Err() error {
	errs := make([]error, 0, len(r.Errors))
	for _, err := range r.Errors {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Run executes checks concurrently under ctx and waits for all of them.
func Run(ctx context.Context, checks ...Check) Report {
	report := Report{
		Statuses: make(map[string]string, len(checks)),
		Errors:   make(map[string]error),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, c := range checks {
		if c.Checker == nil {
			report.Statuses[c.Name] = StatusOK
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Checker.HealthCheck(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Statuses[c.Name] = StatusError
				report.Errors[c.Name] = err
				return
			}
			report.Statuses[c.Name] = StatusOK
		}()
	}
	wg.Wait()
	return report
}
