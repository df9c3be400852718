package routes

import (
	"notionflow/server/internal/api"
	"notionflow/server/internal/middleware"
	"notionflow/server/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, metricsReg *metrics.MetricsRegistry,
	handlers *api.Handlers, jobsHandler *api.JobsHandler, deps *api.Dependencies) {

	// Public routes with metrics
	r.Group(func(public chi.Router) {
		public.Use(middleware.MetricsMiddleware(metricsReg))
		// Presigned export links carry their own credential
		public.Get("/export/ics", handlers.DownloadICS())
	})

	// API v1 routes
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.MetricsMiddleware(metricsReg))
		v1.Use(middleware.AuthMiddleware(&deps.Repo.User, &deps.Repo.Keys, deps.Services.Session))

		v1.Post("/users/register", handlers.RegisterUser())
		v1.Get("/user/details", handlers.GetUserDetails())

		// Platform connections
		v1.Post("/connections", handlers.UpsertConnection())
		v1.Get("/connections", handlers.ListConnections())
		v1.Delete("/connections/{platform}", handlers.DisconnectPlatform())

		// Event ingestion and listing
		v1.Post("/events", handlers.IngestEvents())
		v1.Get("/calendars/{calendar_id}/events", handlers.ListCalendarEvents())

		// Validation pipeline
		v1.Post("/validations", handlers.ValidateEvent())
		v1.Post("/validations/batch", handlers.ValidateBatch())
		v1.Get("/validations/history", handlers.GetValidationHistory())

		// Sync
		v1.Post("/sync", handlers.SyncCalendar())
		v1.Get("/sync/last", handlers.GetLastSync())

		// Export links
		v1.Post("/export/link", handlers.GenerateExportLink())

		// Manual job triggers
		v1.Post("/jobs/calendar-sync", jobsHandler.TriggerCalendarSync())
	})
}
