package alignment

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricScorePassesTotal    = "alignment_score_passes_total"
	MetricScorePassDuration   = "alignment_score_pass_duration_seconds"
	MetricEntitiesClassified  = "alignment_entities_classified_total"
	MetricLastPassEntityCount = "alignment_last_pass_entity_count"
	MetricLastPassCauseCount  = "alignment_last_pass_cause_count"
)

// Metrics contains Prometheus metrics for alignment scoring passes.
// All operations are thread-safe.
type Metrics struct {
	passesTotal         prometheus.Counter
	passDuration        prometheus.Histogram
	entitiesClassified  *prometheus.CounterVec
	lastPassEntityCount prometheus.Gauge
	lastPassCauseCount  prometheus.Gauge
}

// NewMetrics creates and returns a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		passesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricScorePassesTotal,
			Help: "Total number of alignment scoring passes",
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricScorePassDuration,
			Help:    "Histogram of alignment scoring pass duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		}),
		entitiesClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricEntitiesClassified,
			Help: "Total number of entities scored, by classification",
		}, []string{"classification"}),
		lastPassEntityCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricLastPassEntityCount,
			Help: "Number of entities scored in the last pass",
		}),
		lastPassCauseCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricLastPassCauseCount,
			Help: "Number of user causes evaluated in the last pass",
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

// ObservePass records a completed scoring pass.
func (m *Metrics) ObservePass(seconds float64, entities, causes int) {
	m.passesTotal.Inc()
	m.passDuration.Observe(seconds)
	m.lastPassEntityCount.Set(float64(entities))
	m.lastPassCauseCount.Set(float64(causes))
}

// AddClassified adds n to the counter for classification c.
func (m *Metrics) AddClassified(c Classification, n int) {
	m.entitiesClassified.WithLabelValues(string(c)).Add(float64(n))
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.passesTotal,
		m.passDuration,
		m.entitiesClassified,
		m.lastPassEntityCount,
		m.lastPassCauseCount,
	}
}
