// Package jobs reports outcomes of the catalog's background work: scheduled
// refreshes and on-demand cache invalidations.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricBackgroundJobsTotal      = "background_jobs_total"
	MetricBackgroundJobsDuration   = "background_jobs_duration_seconds"
	MetricBackgroundJobErrorsTotal = "background_job_errors_total"
)

// Job type constants for labeling.
const (
	JobTypeCatalogRefresh  = "catalog_refresh"
	JobTypeCacheInvalidate = "cache_invalidation"
)

// Status constants for job completion.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Reporter is the subset of Metrics a background job reports to. A nil
// Reporter disables job metrics.
type Reporter interface {
	IncJobsTotal(jobType, status string)
	ObserveJobDuration(jobType string, seconds float64)
	IncJobErrors(jobType, errorType string)
}

// Error types reported with IncJobErrors.
const (
	ErrorTypeTimeout  = "timeout"
	ErrorTypeCanceled = "canceled"
)

// ErrorType classifies err for the job errors counter. Deadline and
// cancellation errors get their own types; anything else reports fallback.
// A nil err has no type.
func ErrorType(err error, fallback string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, context.Canceled):
		return ErrorTypeCanceled
	default:
		return fallback
	}
}

// Record reports one run of jobType that began at start. An empty errorType
// records a success. r may be nil.
func Record(r Reporter, jobType string, start time.Time, errorType string) {
	if r == nil {
		return
	}
	status := StatusSuccess
	if errorType != "" {
		status = StatusFailure
		r.IncJobErrors(jobType, errorType)
	}
	r.IncJobsTotal(jobType, status)
	r.ObserveJobDuration(jobType, time.Since(start).Seconds())
}

// Refresh runs are bounded by the 30s refresh timeout, so the top bucket is 30.
var durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// Metrics implements Reporter with Prometheus collectors.
type Metrics struct {
	jobsTotal    *prometheus.CounterVec
	jobsDuration *prometheus.HistogramVec
	jobErrors    *prometheus.CounterVec
}

// NewMetrics builds unregistered collectors; see Register.
func NewMetrics() *Metrics {
	return &Metrics{
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricBackgroundJobsTotal,
			Help: "Catalog refresh and cache invalidation runs by job type and status",
		}, []string{"job_type", "status"}),
		jobsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricBackgroundJobsDuration,
			Help:    "Background job duration in seconds by job type",
			Buckets: durationBuckets,
		}, []string{"job_type"}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricBackgroundJobErrorsTotal,
			Help: "Failed background jobs by job type and error type",
		}, []string{"job_type", "error_type"}),
	}
}

// Register adds every collector to reg, stopping at the first failure.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) IncJobsTotal(jobType, status string) {
	m.jobsTotal.WithLabelValues(jobType, status).Inc()
}

func (m *Metrics) ObserveJobDuration(jobType string, seconds float64) {
	m.jobsDuration.WithLabelValues(jobType).Observe(seconds)
}

func (m *Metrics) IncJobErrors(jobType, errorType string) {
	m.jobErrors.WithLabelValues(jobType, errorType).Inc()
}

// Collectors lists every collector in registration order.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.jobsTotal, m.jobsDuration, m.jobErrors}
}
