package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskpulse-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskpulse-api/internal/api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	var db api.Pinger
	if app.db != nil {
		db = app.db
	}
	r.Method(http.MethodGet, "/health", api.NewHealthHandler(db, app.live, app.logger))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	socket := api.NewSocketHandler(app.live, app.config.Notify.LiveWriteTimeout, app.logger)
	r.With(apiMiddleware.RequireRecipient).Method(http.MethodGet, "/ws/notifications", socket)

	return r
}
