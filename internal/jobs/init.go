package jobs

import (
	"context"
	"time"

	"notionflow/server/internal/db/repositories"
	"notionflow/server/internal/metrics"
	"notionflow/server/internal/services"
)

// InitializeJobs initializes and starts all background jobs
func InitializeJobs(
	ctx context.Context,
	connRepo *repositories.ConnectionRepository,
	syncService *services.CalendarSyncService,
	metricsReg *metrics.MetricsRegistry,
) *CalendarSyncJob {
	// Calendar sync runs every hour for auto-sync connections
	calendarSyncJob := NewCalendarSyncJob(connRepo, syncService, metricsReg)

	go calendarSyncJob.RunScheduled(ctx, 1*time.Hour)

	return calendarSyncJob
}
