package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricCacheRequests     = "catalog_cache_requests_total"
	MetricLoadDuration      = "catalog_load_duration_seconds"
	MetricLoadErrors        = "catalog_load_errors_total"
	MetricSnapshotEntities  = "catalog_snapshot_entities"
	MetricLastLoadTimestamp = "catalog_last_load_timestamp"
)

// Cache request results.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Metrics contains Prometheus metrics for catalog loading and caching.
// All operations are thread-safe.
type Metrics struct {
	cacheRequests     *prometheus.CounterVec
	loadDuration      prometheus.Histogram
	loadErrors        prometheus.Counter
	snapshotEntities  *prometheus.GaugeVec
	lastLoadTimestamp prometheus.Gauge
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricCacheRequests,
			Help: "Total number of catalog cache lookups, by result",
		}, []string{"result"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricLoadDuration,
			Help:    "Histogram of catalog load duration from the backing source in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		loadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricLoadErrors,
			Help: "Total number of failed catalog loads",
		}),
		snapshotEntities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricSnapshotEntities,
			Help: "Number of entities in the last loaded catalog snapshot, by kind",
		}, []string{"kind"}),
		lastLoadTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricLastLoadTimestamp,
			Help: "Unix timestamp of the last successful catalog load",
		}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncCacheRequest increments the cache request counter for result.
func (m *Metrics) IncCacheRequest(result string) {
	m.cacheRequests.WithLabelValues(result).Inc()
}

// ObserveLoadDuration records a load duration sample.
func (m *Metrics) ObserveLoadDuration(seconds float64) {
	m.loadDuration.Observe(seconds)
}

// IncLoadErrors increments the load error counter.
func (m *Metrics) IncLoadErrors() {
	m.loadErrors.Inc()
}

// SetSnapshot records the size and load time of snap.
func (m *Metrics) SetSnapshot(snap *Snapshot) {
	brands, local, lists := snap.Counts()
	m.snapshotEntities.WithLabelValues("brand").Set(float64(brands))
	m.snapshotEntities.WithLabelValues("local").Set(float64(local))
	m.snapshotEntities.WithLabelValues("rank_list").Set(float64(lists))
	m.lastLoadTimestamp.Set(float64(snap.LoadedAt.Unix()))
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.cacheRequests,
		m.loadDuration,
		m.loadErrors,
		m.snapshotEntities,
		m.lastLoadTimestamp,
	}
}
