package routers

import (
	"net/http"

	"mockinterview/ai/internal/handlers"

	"github.com/go-chi/chi/v5"
)

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
}

// MetricsRoutes exposes the Prometheus scrape endpoint.
func MetricsRoutes(router *chi.Mux, metricsHandler http.Handler) {
	router.Method(http.MethodGet, "/metrics", metricsHandler)
}
