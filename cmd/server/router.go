package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mwelles/retention-api/internal/api"
	apiMiddleware "github.com/mwelles/retention-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	conceptHandler := api.NewConceptHandler(app.retentionService, app.logger)
	reviewHandler := api.NewReviewHandler(app.retentionService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Concept endpoints
		r.Post("/concepts", conceptHandler.CreateConcept)
		r.Get("/concepts", conceptHandler.ListConcepts)
		r.Get("/concepts/{id}", conceptHandler.GetConcept)

		// Review endpoints
		r.Post("/concepts/{id}/review", reviewHandler.SubmitReview)
		r.Post("/concepts/{id}/postpone", reviewHandler.PostponeReview)
		r.Get("/reviews/due", reviewHandler.DueReviews)

		// Statistics
		r.Get("/stats", reviewHandler.GetStats)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
