package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/brandops/backend/internal/api/handlers"
	"github.com/brandops/backend/internal/api/middleware"
	"github.com/brandops/backend/internal/job"
)

// NewRouter builds the HTTP surface of the localization service.
func NewRouter(coordinator *job.Coordinator, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(corsOrigins)))

	localize := handlers.NewLocalizeHandler(coordinator)

	// Submissions fan out into model and encode work; keep them rare.
	submitLimiter := middleware.NewRateLimiter(10, time.Minute)
	readLimiter := middleware.NewRateLimiter(300, time.Minute)

	r.Get("/api/health", handlers.HealthHandler)

	r.Route("/api/localize", func(r chi.Router) {
		r.Use(readLimiter.Handler)

		r.With(submitLimiter.Handler, middleware.MaxBodySize(1<<20)).
			Post("/", localize.Submit)

		r.Get("/jobs", localize.ListJobs)
		r.Get("/jobs/{id}", localize.GetJob)
		r.Post("/jobs/{id}/cancel", localize.CancelJob)
		r.Delete("/jobs/{id}", localize.DeleteJob)
		r.Get("/jobs/{id}/output/{lang}", localize.DownloadOutput)
		r.Get("/jobs/{id}/archive", localize.DownloadArchive)
	})

	return r
}
