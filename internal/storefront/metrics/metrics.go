package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the storefront domain counters.
type Metrics struct {
	ConfigsSaved  prometheus.Counter
	SaveFailures  prometheus.Counter
	PagesResolved prometheus.Counter
}

// New creates and registers the storefront metrics.
func New() *Metrics {
	return &Metrics{
		ConfigsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrine_configs_saved_total",
			Help: "Total number of configuration documents saved",
		}),
		SaveFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrine_config_save_failures_total",
			Help: "Total number of configuration save failures",
		}),
		PagesResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrine_pages_resolved_total",
			Help: "Total number of page resolution passes",
		}),
	}
}
