package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/irah1999/cloud-flair/internal/handlers"
	"github.com/irah1999/cloud-flair/internal/middleware"
	"github.com/irah1999/cloud-flair/internal/models"
)

// InterviewRouteOptions tunes the guards in front of the interview API.
type InterviewRouteOptions struct {
	JoinRateLimit    int    // join requests per client IP per minute, 0 disables
	MonitorJWTSecret string // empty leaves /api/details open
}

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, opts InterviewRouteOptions) {
	router.Route("/api", func(r chi.Router) {
		r.With(
			middleware.JoinRateLimit(opts.JoinRateLimit),
			middleware.DecodeJSON[models.JoinRequest](),
		).Post("/join", interviewHandler.Join)
		r.With(middleware.DecodeJSON[models.SubmitRequest]()).Post("/submit", interviewHandler.Submit)
		r.With(middleware.RequireMonitor(opts.MonitorJWTSecret)).Get("/details/{code}", interviewHandler.Details)
	})
}
