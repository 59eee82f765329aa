package reorder

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts dispatch outcomes
type Metrics struct {
	orders   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates and registers the dispatcher metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_reorders_total",
				Help: "Total number of reorder attempts by outcome",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "inventory_supplier_request_duration_seconds",
				Help:    "Duration of supplier order requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.orders, m.duration)
	return m
}

func (m *Metrics) observe(status string, seconds float64) {
	if m == nil {
		return
	}
	m.orders.WithLabelValues(status).Inc()
	if seconds > 0 {
		m.duration.Observe(seconds)
	}
}
