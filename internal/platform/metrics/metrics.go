package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-wide Prometheus metrics. Domain slices register
// their own counters in their local metrics packages.
type Metrics struct {
	RequestLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vitrine_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveLatency records one request duration for the given route.
func (m *Metrics) ObserveLatency(route string, seconds float64) {
	m.RequestLatency.WithLabelValues(route).Observe(seconds)
}
