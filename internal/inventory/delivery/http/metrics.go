package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the inventory HTTP and business metrics
type Metrics struct {
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	requestSummary *prometheus.SummaryVec

	salesRecorded prometheus.Counter
	salesDeclined prometheus.Counter
	lowStockItems prometheus.Gauge
	predictions   *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_service_requests_total",
				Help: "Total number of requests to inventory service",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inventory_service_request_duration_seconds",
				Help:    "Duration of inventory service requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		// p50, p90, p95, p99
		requestSummary: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name: "inventory_service_request_duration_summary",
				Help: "Summary of request durations with percentiles (client-side quantiles)",
				Objectives: map[float64]float64{
					0.5:  0.05,
					0.9:  0.01,
					0.95: 0.01,
					0.99: 0.001,
				},
				MaxAge: 10 * time.Minute,
			},
			[]string{"method", "endpoint"},
		),
		salesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_sales_recorded_total",
			Help: "Total number of committed sales",
		}),
		salesDeclined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_sales_declined_total",
			Help: "Total number of sales declined for insufficient stock",
		}),
		lowStockItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_low_stock_items",
			Help: "Number of item names below the warning threshold at last evaluation",
		}),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_prediction_requests_total",
				Help: "Total number of prediction requests by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(
		m.requestCounter,
		m.requestLatency,
		m.requestSummary,
		m.salesRecorded,
		m.salesDeclined,
		m.lowStockItems,
		m.predictions,
	)
	return m
}

// statusRecorder wraps http.ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// instrument wraps a handler with request metrics
func (m *Metrics) instrument(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		m.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		m.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		m.requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
	})
}
