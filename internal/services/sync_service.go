package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"notionflow/server/internal/common"
	"notionflow/server/internal/constants"
	"notionflow/server/internal/db/repositories"
	"notionflow/server/internal/models/dtos"
	"notionflow/server/internal/models/entities"
	gormModels "notionflow/server/internal/models/gorm"
	"notionflow/server/internal/providers"
)

// ProviderFactory builds the platform adapter for a connection. Injected so
// tests can substitute a fake provider.
type ProviderFactory func(platform constants.Platform, accessToken string) (providers.CalendarProvider, error)

// CalendarSyncService runs one-way syncs: events are validated first, then
// approved events are written to the target platform. Rejected events are
// never sent to a provider.
type CalendarSyncService struct {
	connRepo        *repositories.ConnectionRepository
	calendarRepo    *repositories.CalendarRepo
	eventRepo       *repositories.EventRepo
	syncHistoryRepo *repositories.SyncHistoryRepo
	validator       *EventValidationService
	cache           common.CacheInterface
	newProvider     ProviderFactory
}

// NewCalendarSyncService creates a new CalendarSyncService with dependencies
func NewCalendarSyncService(
	connRepo *repositories.ConnectionRepository,
	calendarRepo *repositories.CalendarRepo,
	eventRepo *repositories.EventRepo,
	syncHistoryRepo *repositories.SyncHistoryRepo,
	validator *EventValidationService,
	cache common.CacheInterface,
	newProvider ProviderFactory,
) *CalendarSyncService {
	if newProvider == nil {
		newProvider = providers.NewProvider
	}
	return &CalendarSyncService{
		connRepo:        connRepo,
		calendarRepo:    calendarRepo,
		eventRepo:       eventRepo,
		syncHistoryRepo: syncHistoryRepo,
		validator:       validator,
		cache:           cache,
		newProvider:     newProvider,
	}
}

const (
	connectionCacheTTL = 5 * time.Minute
	maxEventsPerSync   = 500
)

// SyncCalendar validates the requested events and pushes the approved ones
// to the user's target platform connection
func (s *CalendarSyncService) SyncCalendar(
	ctx context.Context,
	userID string,
	req *dtos.SyncRequest,
	syncEvent string,
) (*dtos.SyncResponse, error) {
	log.Printf("[CalendarSyncService] Sync requested: user=%s, calendar=%s, target=%s",
		userID, req.CalendarID, req.TargetPlatform)

	platform := constants.Platform(req.TargetPlatform)
	if !platform.IsSupported() {
		return &dtos.SyncResponse{
			Success:      false,
			ErrorType:    "validation_error",
			ErrorMessage: fmt.Sprintf("Unsupported target platform: %s", req.TargetPlatform),
		}, nil
	}

	// STEP 1: RESOLVE CONNECTION (with caching)
	conn, err := s.getConnection(ctx, userID, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}
	if conn == nil || !conn.IsActive {
		return &dtos.SyncResponse{
			Success:      false,
			ErrorType:    "connection_error",
			ErrorMessage: fmt.Sprintf("No active connection for platform: %s", platform),
		}, nil
	}
	if conn.TokenExpiry != nil && time.Now().After(*conn.TokenExpiry) {
		return &dtos.SyncResponse{
			Success:      false,
			ErrorType:    "connection_error",
			ErrorMessage: "Access token expired, reconnect the platform",
		}, nil
	}

	// STEP 2: RESOLVE EVENT IDS
	eventIDs := req.EventIDs
	if len(eventIDs) == 0 {
		if req.CalendarID == "" {
			return &dtos.SyncResponse{
				Success:      false,
				ErrorType:    "validation_error",
				ErrorMessage: "Either calendar_id or event_ids must be provided",
			}, nil
		}

		events, err := s.eventRepo.ListByCalendar(ctx, userID, req.CalendarID, maxEventsPerSync)
		if err != nil {
			return nil, fmt.Errorf("failed to list calendar events: %w", err)
		}
		for _, ev := range events {
			eventIDs = append(eventIDs, ev.ID)
		}
	}

	if len(eventIDs) == 0 {
		return &dtos.SyncResponse{
			Success: true,
			Summary: s.validator.SummarizeReports(nil),
		}, nil
	}

	// STEP 3: VALIDATE
	reports := s.validator.ValidateBatch(ctx, userID, eventIDs, req.TargetPlatform, req.TrashedEvents)
	summary := s.validator.SummarizeReports(reports)

	// STEP 4: BUILD PROVIDER
	provider, err := s.newProvider(platform, conn.AccessToken)
	if err != nil {
		return &dtos.SyncResponse{
			Success:      false,
			ErrorType:    "provider_error",
			ErrorMessage: err.Error(),
			Summary:      summary,
		}, nil
	}

	// STEP 5: PUSH APPROVED EVENTS
	synced := 0
	for _, report := range reports {
		if !report.Approved() {
			continue
		}

		event, err := s.eventRepo.FindByUserAndID(ctx, userID, report.EventID)
		if err != nil || event == nil {
			log.Printf("[CalendarSyncService] Skipping approved event %s: reload failed (%v)", report.EventID, err)
			continue
		}

		if _, err := provider.CreateEvent(ctx, buildProviderEvent(event)); err != nil {
			log.Printf("[CalendarSyncService] Provider write failed for event %s: %v", report.EventID, err)
			continue
		}
		synced++
	}

	// STEP 6: RECORD SYNC HISTORY
	history, err := s.syncHistoryRepo.RecordSync(ctx, userID, req.TargetPlatform, syncEvent, len(reports), synced)
	if err != nil {
		// The sync itself succeeded; a missed history row is logged, not fatal
		log.Printf("[CalendarSyncService] Failed to record sync history: %v", err)
	}

	resp := &dtos.SyncResponse{
		Success:         true,
		EventsProcessed: len(reports),
		EventsSynced:    synced,
		Summary:         summary,
	}
	if history != nil {
		resp.SyncID = history.ID
	}

	return resp, nil
}

// SyncAllCalendars runs a sync across every calendar the user owns. Used by
// the scheduled job for auto-sync connections.
func (s *CalendarSyncService) SyncAllCalendars(
	ctx context.Context,
	userID string,
	platform constants.Platform,
	syncEvent string,
) (*dtos.SyncResponse, error) {
	calendars, err := s.calendarRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	total := &dtos.SyncResponse{Success: true}
	for _, cal := range calendars {
		resp, err := s.SyncCalendar(ctx, userID, &dtos.SyncRequest{
			CalendarID:     cal.ID,
			TargetPlatform: string(platform),
		}, syncEvent)
		if err != nil {
			log.Printf("[CalendarSyncService] Calendar %s sync failed: %v", cal.ID, err)
			continue
		}
		if !resp.Success {
			// Connection problems affect every calendar, stop early
			return resp, nil
		}
		total.EventsProcessed += resp.EventsProcessed
		total.EventsSynced += resp.EventsSynced
		total.SyncID = resp.SyncID
	}

	return total, nil
}

// LastSyncTime exposes the most recent sync timestamp for a user/platform
func (s *CalendarSyncService) LastSyncTime(ctx context.Context, userID string, platform constants.Platform) (*time.Time, error) {
	return s.syncHistoryRepo.GetLastSyncTime(ctx, userID, string(platform))
}

func (s *CalendarSyncService) getConnection(
	ctx context.Context,
	userID string,
	platform constants.Platform,
) (*entities.PlatformConnection, error) {
	cacheKey := common.ConnectionCacheKey(userID, platform)

	if val, found := s.cache.Get(cacheKey); found {
		if conn, ok := val.(entities.PlatformConnection); ok {
			return &conn, nil
		}
	}

	conn, err := s.connRepo.FindByUserAndPlatform(ctx, userID, platform)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, nil
	}

	s.cache.Set(cacheKey, *conn, connectionCacheTTL)
	return conn, nil
}

// buildProviderEvent converts a stored event row into the provider-neutral
// payload. Raw platform timestamps are parsed here; a malformed timestamp
// falls back to empty time fields rather than failing the push.
func buildProviderEvent(event *gormModels.CalendarEvent) *providers.Event {
	out := &providers.Event{
		SourceID: event.ID,
		Title:    event.Title,
		IsAllDay: event.IsAllDay,
	}
	if event.Description != nil {
		out.Description = *event.Description
	}
	if event.Location != nil {
		out.Location = *event.Location
	}

	if event.IsAllDay {
		if event.StartDate != nil {
			out.StartDate = *event.StartDate
		}
		if event.EndDate != nil {
			out.EndDate = *event.EndDate
		}
		return out
	}

	if event.StartDateTime != nil {
		if t, err := time.Parse(time.RFC3339, *event.StartDateTime); err == nil {
			out.StartDate = t.Format("2006-01-02")
			out.StartTime = t.Format("15:04:05")
		}
	}
	if event.EndDateTime != nil {
		if t, err := time.Parse(time.RFC3339, *event.EndDateTime); err == nil {
			out.EndDate = t.Format("2006-01-02")
			out.EndTime = t.Format("15:04:05")
		}
	}

	return out
}
