package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the preview channel counters.
type Metrics struct {
	PublishesAccepted prometheus.Counter
	PublishesRejected prometheus.Counter
	ActiveSubscribers prometheus.Gauge
}

// New creates and registers the preview metrics.
func New() *Metrics {
	return &Metrics{
		PublishesAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrine_preview_publishes_accepted_total",
			Help: "Preview updates accepted and applied",
		}),
		PublishesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrine_preview_publishes_rejected_total",
			Help: "Preview updates discarded (origin mismatch or bad token)",
		}),
		ActiveSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "vitrine_preview_subscribers",
			Help: "Renderer connections currently attached to preview channels",
		}),
	}
}
