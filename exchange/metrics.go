package exchange

import (
	"time"

	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of an Exchange.
type Metrics struct {
	opsTotal   *prometheus.CounterVec
	opDuration *prometheus.HistogramVec
	checkpoint prometheus.Gauge
}

// NewMetrics creates and registers the exchange metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		opsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simpleswap_operations_total",
			Help: "Mutating operations, labeled by operation and result (ok or error tag).",
		}, []string{"op", "result"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simpleswap_operation_duration_seconds",
			Help:    "Time taken by a mutating operation, including validation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		checkpoint: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simpleswap_checkpoint",
			Help: "Number of committed mutations.",
		}),
	}
	reg.MustRegister(m.opsTotal, m.opDuration, m.checkpoint)
	return m
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	m.opDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.opsTotal.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if tag := simpleswap.TagOf(err); tag != "" {
		return tag
	}
	return "error"
}
