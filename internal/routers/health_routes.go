package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/irah1999/cloud-flair/internal/handlers"
	"github.com/irah1999/cloud-flair/internal/metrics"
)

func HealthRoutes(router *chi.Mux, healthHandler *handlers.HealthHandler) {
	router.Get("/healthz", healthHandler.HealthzHandler)
	router.Get("/readyz", healthHandler.ReadyzHandler)
	router.Handle("/metrics", metrics.Handler())
}
