package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"notionflow/server/internal/constants"
	"notionflow/server/internal/db/repositories"
	"notionflow/server/internal/metrics"
	"notionflow/server/internal/services"
)

// CalendarSyncJob periodically syncs calendars for every connection that has
// auto-sync enabled
type CalendarSyncJob struct {
	connRepo    *repositories.ConnectionRepository
	syncService *services.CalendarSyncService
	metricsReg  *metrics.MetricsRegistry
}

// NewCalendarSyncJob creates a new calendar sync job instance
func NewCalendarSyncJob(
	connRepo *repositories.ConnectionRepository,
	syncService *services.CalendarSyncService,
	metricsReg *metrics.MetricsRegistry,
) *CalendarSyncJob {
	return &CalendarSyncJob{
		connRepo:    connRepo,
		syncService: syncService,
		metricsReg:  metricsReg,
	}
}

// Run executes one sync pass over all auto-sync connections
func (j *CalendarSyncJob) Run(ctx context.Context) error {
	start := time.Now()
	log.Printf("[CalendarSyncJob] Starting scheduled sync at %s", start.Format(time.RFC3339))

	conns, err := j.connRepo.ListAutoSync(ctx)
	if err != nil {
		log.Printf("[CalendarSyncJob] Error fetching auto-sync connections: %v", err)
		return fmt.Errorf("failed to fetch auto-sync connections: %w", err)
	}

	if len(conns) == 0 {
		log.Printf("[CalendarSyncJob] No auto-sync connections found")
		return nil
	}

	log.Printf("[CalendarSyncJob] Found %d auto-sync connections", len(conns))

	totalSynced := 0
	for _, conn := range conns {
		resp, err := j.syncService.SyncAllCalendars(ctx, conn.UserID, conn.Platform, constants.SyncEventScheduled)
		if err != nil {
			log.Printf("[CalendarSyncJob] Error syncing user %s platform %s: %v", conn.UserID, conn.Platform, err)
			// Continue with other connections even if one fails
			continue
		}
		if !resp.Success {
			log.Printf("[CalendarSyncJob] Sync skipped for user %s platform %s: %s", conn.UserID, conn.Platform, resp.ErrorMessage)
			continue
		}
		totalSynced += resp.EventsSynced

		if j.metricsReg != nil {
			j.metricsReg.EventsSyncedTotal.WithLabelValues(string(conn.Platform)).Add(float64(resp.EventsSynced))
		}
	}

	elapsed := time.Since(start)
	if j.metricsReg != nil {
		j.metricsReg.SyncJobDuration.WithLabelValues("calendar_sync").Observe(elapsed.Seconds())
	}

	log.Printf("[CalendarSyncJob] Completed scheduled sync in %s. Total events synced: %d",
		elapsed.Truncate(time.Millisecond), totalSynced)

	return nil
}

// RunScheduled runs the calendar sync job on a fixed interval
func (j *CalendarSyncJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start only if the last scheduled run is stale
	if j.shouldRunInitialSync(ctx) {
		if err := j.Run(ctx); err != nil {
			log.Printf("[CalendarSyncJob] Error in initial run: %v", err)
		}
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				log.Printf("[CalendarSyncJob] Error in scheduled run: %v", err)
			}
		case <-ctx.Done():
			log.Printf("[CalendarSyncJob] Shutting down scheduled sync")
			return
		}
	}
}

// shouldRunInitialSync checks whether any auto-sync connection has gone more
// than four hours without a sync. A restart right after a run should not
// trigger another full pass.
func (j *CalendarSyncJob) shouldRunInitialSync(ctx context.Context) bool {
	conns, err := j.connRepo.ListAutoSync(ctx)
	if err != nil || len(conns) == 0 {
		return false
	}

	cutoff := time.Now().Add(-4 * time.Hour)
	for _, conn := range conns {
		lastSync, err := j.syncService.LastSyncTime(ctx, conn.UserID, conn.Platform)
		if err != nil {
			continue
		}
		if lastSync == nil || lastSync.Before(cutoff) {
			return true
		}
	}

	return false
}
