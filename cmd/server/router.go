package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mwhitlock/paddock-api/internal/api"
	apiMiddleware "github.com/mwhitlock/paddock-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	standingsHandler := api.NewStandingsHandler(app.queryService, app.logger)
	resultsHandler := api.NewResultsHandler(app.queryService, app.logger)
	seasonHandler := api.NewSeasonHandler(app.runner, app.seasonService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/standings/{year}", standingsHandler.GetLatest)
		r.Get("/standings/{year}/{round}", standingsHandler.GetAfterRound)
		r.Get("/results/{year}/{round}", resultsHandler.GetByRace)
		r.Post("/seasons/{year}/ingest", seasonHandler.TriggerIngest)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response",
				"error", err)
		}
	})

	return r
}
