package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/eventquote/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler handles health check and metrics requests.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

func (h *HealthHandler) register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(h.HandleHealth, "healthz"))
	r.Get("/metrics", h.HandleHealth)
}

// HandleHealth handles GET /healthz and GET /metrics requests with the
// Prometheus exposition of the custom registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
