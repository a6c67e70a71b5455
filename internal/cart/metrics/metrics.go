package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the cart domain counters.
type Metrics struct {
	Mutations      *prometheus.CounterVec
	Checkouts      prometheus.Counter
	CartsAbandoned prometheus.Counter
}

// New creates and registers the cart metrics.
func New() *Metrics {
	return &Metrics{
		Mutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitrine_cart_mutations_total",
			Help: "Cart mutations by operation",
		}, []string{"op"}),
		Checkouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrine_cart_checkouts_total",
			Help: "Completed checkouts",
		}),
		CartsAbandoned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitrine_carts_abandoned_total",
			Help: "Carts that triggered the abandonment signal",
		}),
	}
}
