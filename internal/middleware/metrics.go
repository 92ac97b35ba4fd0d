package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names exported by the HTTP middleware.
const (
	MetricRateLimitRequests     = "rate_limit_requests_total"
	MetricRateLimitBlocked      = "rate_limit_blocked_total"
	MetricRateLimitRedisErrors  = "rate_limit_redis_errors_total"
	MetricHTTPRequestDuration   = "http_request_duration_seconds"
	MetricHTTPRequestsTotal     = "http_requests_total"
	MetricHTTPRequestSizeBytes  = "http_request_size_bytes"
	MetricHTTPResponseSizeBytes = "http_response_size_bytes"
)

var (
	requestLabels = []string{"method", "path", "status"}
	limiterLabels = []string{"endpoint", "key_type"}

	// Feed scoring over an in-memory snapshot is millisecond-scale; the upper
	// buckets catch requests that waited on a catalog load.
	latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

	// 64 B to 1 MiB covers a single-cause request up to a full brand page.
	sizeBuckets = prometheus.ExponentialBuckets(64, 4, 8)
)

// Metrics holds the request and rate limiter collectors. Safe for
// concurrent use.
type Metrics struct {
	rateLimitRequests    *prometheus.CounterVec
	rateLimitBlocked     *prometheus.CounterVec
	rateLimitRedisErrors prometheus.Counter
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestSize      *prometheus.HistogramVec
	httpResponseSize     *prometheus.HistogramVec
}

// NewMetrics builds unregistered collectors; see Register.
func NewMetrics() *Metrics {
	counter := func(name, help string, labels []string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	}
	histogram := func(name, help string, buckets []float64) *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, requestLabels)
	}

	return &Metrics{
		rateLimitRequests: counter(MetricRateLimitRequests,
			"Rate limit checks by endpoint and key type", limiterLabels),
		rateLimitBlocked: counter(MetricRateLimitBlocked,
			"Requests rejected with 429 by endpoint and key type", limiterLabels),
		rateLimitRedisErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRateLimitRedisErrors,
			Help: "Redis failures during rate limiting; each one let the request through",
		}),
		httpRequestDuration: histogram(MetricHTTPRequestDuration,
			"HTTP request duration in seconds", latencyBuckets),
		httpRequestsTotal: counter(MetricHTTPRequestsTotal,
			"HTTP requests by method, route and status", requestLabels),
		httpRequestSize: histogram(MetricHTTPRequestSizeBytes,
			"HTTP request body size in bytes", sizeBuckets),
		httpResponseSize: histogram(MetricHTTPResponseSizeBytes,
			"HTTP response body size in bytes", sizeBuckets),
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

// IncRateLimitRequests counts a limiter check. keyType is "client" or "ip".
func (m *Metrics) IncRateLimitRequests(endpoint, keyType string) {
	m.rateLimitRequests.WithLabelValues(endpoint, keyType).Inc()
}

// IncRateLimitBlocked counts a request rejected by the limiter.
func (m *Metrics) IncRateLimitBlocked(endpoint, keyType string) {
	m.rateLimitBlocked.WithLabelValues(endpoint, keyType).Inc()
}

// IncRateLimitRedisErrors counts a fail-open decision.
func (m *Metrics) IncRateLimitRedisErrors() {
	m.rateLimitRedisErrors.Inc()
}

// ObserveHTTPRequest records one finished request. path must already be
// normalized to its route pattern.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, seconds float64, requestSize, responseSize int64) {
	m.httpRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestSize.WithLabelValues(method, path, status).Observe(float64(requestSize))
	m.httpResponseSize.WithLabelValues(method, path, status).Observe(float64(responseSize))
}

// Collectors lists every collector in registration order.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rateLimitRequests,
		m.rateLimitBlocked,
		m.rateLimitRedisErrors,
		m.httpRequestDuration,
		m.httpRequestsTotal,
		m.httpRequestSize,
		m.httpResponseSize,
	}
}
