// Package httptransport assembles the public router. It should stay thin:
// each domain handler registers its own routes, this file only decides what
// is mounted where and which middleware wraps it.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vitrine/internal/platform/metrics"
	"vitrine/internal/platform/middleware"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires all public endpoints.
//
// The preview handler is mounted outside the Timeout middleware because it
// holds long-lived websocket connections.
func NewRouter(logger *slog.Logger, httpMetrics *metrics.Metrics, previewHandler Registrar, apiHandlers ...Registrar) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Recovery(logger))
	root.Use(middleware.RequestID)
	root.Use(middleware.RequestTime)
	root.Use(middleware.Logger(logger))
	if httpMetrics != nil {
		root.Use(middleware.Latency(httpMetrics))
	}

	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	root.Method(http.MethodGet, "/metrics", promhttp.Handler())

	root.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		for _, h := range apiHandlers {
			h.Register(r)
		}
	})

	if previewHandler != nil {
		previewHandler.Register(root)
	}
	return root
}
