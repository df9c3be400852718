package routes

import (
	"context"
	"net/http"
	"time"

	"notionflow/server/internal/api"
	"notionflow/server/internal/db"
	"notionflow/server/internal/jobs"
	"notionflow/server/internal/logging"
	"notionflow/server/internal/metrics"
	"notionflow/server/internal/middleware"
	"notionflow/server/internal/workers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func RegisterRoutes(upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// Initialize metrics registry
	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Api-Key", "X-User-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// Initialize dependencies using DI pattern
	deps, err := api.InitDependencies(metricsReg)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	// Initialize handlers with dependencies
	handlers := api.NewHandlers(deps)

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, deps.Services.Redis, upSince))

	// Scheduled jobs: hourly auto-sync pass
	jobsContainer := jobs.InitializeJobs(
		context.Background(),
		&deps.Repo.Connections,
		deps.Services.Sync,
		metricsReg,
	)

	// Queue workers: consume queued sync requests
	workers.InitWorkers(
		deps.Services.RedisQueue,
		deps.Services.Sync,
		metricsReg,
	)

	// Initialize jobs handler for manual triggering
	jobsHandler := api.NewJobsHandler(jobsContainer)

	// Register API routes
	RegisterAPIRoutes(r, metricsReg, handlers, jobsHandler, deps)

	return r
}
