package differ

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors of a StateDiffer.
type Metrics struct {
	diffDuration   *prometheus.HistogramVec
	schemaDuration *prometheus.HistogramVec
	diffsTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers the differ metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		diffDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "differ_diff_duration_seconds",
			Help:    "Total time taken to compute the full state diff.",
			Buckets: prometheus.DefBuckets,
		}, []string{}),
		schemaDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "differ_schema_duration_seconds",
			Help:    "Time taken to compute the diff for a single protocol schema.",
			Buckets: prometheus.DefBuckets,
		}, []string{"schema"}),
		diffsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "differ_diffs_total",
			Help: "Total number of protocol diffs computed, labeled by schema and result.",
		}, []string{"schema", "result"}),
	}
	reg.MustRegister(m.diffDuration, m.schemaDuration, m.diffsTotal)
	return m
}
