package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"notionflow/server/internal/common"
	"notionflow/server/internal/constants"
	"notionflow/server/internal/db/repositories"
	"notionflow/server/internal/models/dtos"
	"notionflow/server/internal/models/entities"
	gormModels "notionflow/server/internal/models/gorm"
	"notionflow/server/internal/providers"

	gormlib "gorm.io/gorm"
)

type fakeProvider struct {
	platform        constants.Platform
	createEventFunc func(ctx context.Context, event *providers.Event) (string, error)
}

func (f *fakeProvider) CreateEvent(ctx context.Context, event *providers.Event) (string, error) {
	if f.createEventFunc != nil {
		return f.createEventFunc(ctx, event)
	}
	return "platform-evt-1", nil
}

func (f *fakeProvider) UpdateEvent(ctx context.Context, platformEventID string, event *providers.Event) error {
	return nil
}

func (f *fakeProvider) DeleteEvent(ctx context.Context, platformEventID string) error {
	return nil
}

func (f *fakeProvider) GetProviderType() constants.Platform {
	return f.platform
}

func newTestSyncService(db *gormlib.DB, provider *fakeProvider) (*CalendarSyncService, common.CacheInterface) {
	cache := common.NewCacheService(60, 120)

	factory := func(platform constants.Platform, accessToken string) (providers.CalendarProvider, error) {
		provider.platform = platform
		return provider, nil
	}

	svc := NewCalendarSyncService(
		repositories.NewConnectionRepository(nil),
		repositories.NewCalendarRepo(db),
		repositories.NewEventRepo(db),
		repositories.NewSyncHistoryRepo(db),
		newTestValidator(db),
		cache,
		factory,
	)

	return svc, cache
}

// seedConnection plants an active connection in the cache so the sync path
// never reaches the sqlx-backed connection repository
func seedConnection(cache common.CacheInterface, platform constants.Platform, conn entities.PlatformConnection) {
	conn.UserID = testUserID
	conn.Platform = platform
	cache.Set(common.ConnectionCacheKey(testUserID, platform), conn, time.Minute)
}

func TestSyncCalendarPushesOnlyApprovedEvents(t *testing.T) {
	db := setupTestDB(t)

	var pushed []string
	provider := &fakeProvider{
		createEventFunc: func(ctx context.Context, event *providers.Event) (string, error) {
			pushed = append(pushed, event.SourceID)
			return "platform-" + event.SourceID, nil
		},
	}

	svc, cache := newTestSyncService(db, provider)
	seedConnection(cache, constants.PlatformNotion, entities.PlatformConnection{
		AccessToken: "tok",
		IsActive:    true,
	})

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-ok",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Team Standup",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})
	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-cancelled",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Cancelled Meeting",
		Status:        constants.EventStatusCancelled,
		StartDateTime: strPtr("2026-03-01T10:00:00Z"),
	})

	resp, err := svc.SyncCalendar(context.Background(), testUserID, &dtos.SyncRequest{
		TargetPlatform: "notion",
		EventIDs:       []string{"evt-ok", "evt-cancelled"},
	}, constants.SyncEventManual)

	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %s: %s", resp.ErrorType, resp.ErrorMessage)
	}
	if resp.EventsProcessed != 2 || resp.EventsSynced != 1 {
		t.Errorf("expected 2 processed / 1 synced, got %d / %d", resp.EventsProcessed, resp.EventsSynced)
	}
	if len(pushed) != 1 || pushed[0] != "evt-ok" {
		t.Errorf("expected only evt-ok pushed to the provider, got %v", pushed)
	}
	if resp.Summary == nil || resp.Summary.Approved != 1 || resp.Summary.Rejected != 1 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}

	// Sync history recorded with the batch dimensions
	var history gormModels.SyncHistory
	if err := db.Where("user_id = ?", testUserID).First(&history).Error; err != nil {
		t.Fatalf("expected a sync history row: %v", err)
	}
	if history.EventsProcessed != 2 || history.EventsSynced != 1 {
		t.Errorf("unexpected history row: %+v", history)
	}
	if history.Event != constants.SyncEventManual {
		t.Errorf("expected %s event, got %s", constants.SyncEventManual, history.Event)
	}
	if resp.SyncID != history.ID {
		t.Errorf("response sync id %s does not match history row %s", resp.SyncID, history.ID)
	}
}

func TestSyncCalendarRejectsUnsupportedPlatform(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestSyncService(db, &fakeProvider{})

	resp, err := svc.SyncCalendar(context.Background(), testUserID, &dtos.SyncRequest{
		TargetPlatform: "fax",
		EventIDs:       []string{"evt-1"},
	}, constants.SyncEventManual)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Success || resp.ErrorType != "validation_error" {
		t.Errorf("expected validation_error response, got %+v", resp)
	}
}

func TestSyncCalendarRequiresActiveConnection(t *testing.T) {
	db := setupTestDB(t)
	svc, cache := newTestSyncService(db, &fakeProvider{})
	seedConnection(cache, constants.PlatformNotion, entities.PlatformConnection{
		AccessToken: "tok",
		IsActive:    false,
	})

	resp, err := svc.SyncCalendar(context.Background(), testUserID, &dtos.SyncRequest{
		TargetPlatform: "notion",
		EventIDs:       []string{"evt-1"},
	}, constants.SyncEventManual)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Success || resp.ErrorType != "connection_error" {
		t.Errorf("expected connection_error response, got %+v", resp)
	}
}

func TestSyncCalendarRejectsExpiredToken(t *testing.T) {
	db := setupTestDB(t)
	svc, cache := newTestSyncService(db, &fakeProvider{})

	expired := time.Now().Add(-time.Hour)
	seedConnection(cache, constants.PlatformNotion, entities.PlatformConnection{
		AccessToken: "tok",
		IsActive:    true,
		TokenExpiry: &expired,
	})

	resp, err := svc.SyncCalendar(context.Background(), testUserID, &dtos.SyncRequest{
		TargetPlatform: "notion",
		EventIDs:       []string{"evt-1"},
	}, constants.SyncEventManual)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Success || resp.ErrorType != "connection_error" {
		t.Errorf("expected connection_error for expired token, got %+v", resp)
	}
}

func TestSyncCalendarRequiresCalendarOrEventIDs(t *testing.T) {
	db := setupTestDB(t)
	svc, cache := newTestSyncService(db, &fakeProvider{})
	seedConnection(cache, constants.PlatformNotion, entities.PlatformConnection{
		AccessToken: "tok",
		IsActive:    true,
	})

	resp, err := svc.SyncCalendar(context.Background(), testUserID, &dtos.SyncRequest{
		TargetPlatform: "notion",
	}, constants.SyncEventManual)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Success || resp.ErrorType != "validation_error" {
		t.Errorf("expected validation_error response, got %+v", resp)
	}
}

func TestSyncCalendarResolvesEventsFromCalendar(t *testing.T) {
	db := setupTestDB(t)

	var pushed []string
	provider := &fakeProvider{
		createEventFunc: func(ctx context.Context, event *providers.Event) (string, error) {
			pushed = append(pushed, event.SourceID)
			return "platform-" + event.SourceID, nil
		},
	}

	svc, cache := newTestSyncService(db, provider)
	seedConnection(cache, constants.PlatformNotion, entities.PlatformConnection{
		AccessToken: "tok",
		IsActive:    true,
	})

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Team Standup",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})
	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-other-cal",
		UserID:        testUserID,
		CalendarID:    "cal-2",
		Title:         "Design Review",
		StartDateTime: strPtr("2026-03-01T11:00:00Z"),
	})

	resp, err := svc.SyncCalendar(context.Background(), testUserID, &dtos.SyncRequest{
		CalendarID:     "cal-1",
		TargetPlatform: "notion",
	}, constants.SyncEventManual)

	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if resp.EventsProcessed != 1 {
		t.Errorf("expected only cal-1 events processed, got %d", resp.EventsProcessed)
	}
	if len(pushed) != 1 || pushed[0] != "evt-1" {
		t.Errorf("expected evt-1 pushed, got %v", pushed)
	}
}

func TestSyncCalendarProviderFailureSkipsEvent(t *testing.T) {
	db := setupTestDB(t)

	provider := &fakeProvider{
		createEventFunc: func(ctx context.Context, event *providers.Event) (string, error) {
			return "", errors.New("platform unreachable")
		},
	}

	svc, cache := newTestSyncService(db, provider)
	seedConnection(cache, constants.PlatformNotion, entities.PlatformConnection{
		AccessToken: "tok",
		IsActive:    true,
	})

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Team Standup",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	resp, err := svc.SyncCalendar(context.Background(), testUserID, &dtos.SyncRequest{
		TargetPlatform: "notion",
		EventIDs:       []string{"evt-1"},
	}, constants.SyncEventManual)

	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if !resp.Success {
		t.Fatalf("a provider write failure should not fail the run, got %+v", resp)
	}
	if resp.EventsProcessed != 1 || resp.EventsSynced != 0 {
		t.Errorf("expected 1 processed / 0 synced, got %d / %d", resp.EventsProcessed, resp.EventsSynced)
	}
}

func TestBuildProviderEvent(t *testing.T) {
	timed := &gormModels.CalendarEvent{
		ID:            "evt-1",
		Title:         "Team Standup",
		Description:   strPtr("daily sync"),
		Location:      strPtr("Room 4"),
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
		EndDateTime:   strPtr("2026-03-01T09:30:00Z"),
	}

	out := buildProviderEvent(timed)
	if out.SourceID != "evt-1" || out.Title != "Team Standup" {
		t.Errorf("unexpected identity fields: %+v", out)
	}
	if out.Description != "daily sync" || out.Location != "Room 4" {
		t.Errorf("unexpected optional fields: %+v", out)
	}
	if out.StartDate != "2026-03-01" || out.StartTime != "09:00:00" {
		t.Errorf("unexpected start fields: %+v", out)
	}
	if out.EndDate != "2026-03-01" || out.EndTime != "09:30:00" {
		t.Errorf("unexpected end fields: %+v", out)
	}

	allDay := &gormModels.CalendarEvent{
		ID:        "evt-2",
		Title:     "Company Offsite",
		IsAllDay:  true,
		StartDate: strPtr("2026-03-01"),
		EndDate:   strPtr("2026-03-02"),
	}

	out = buildProviderEvent(allDay)
	if !out.IsAllDay || out.StartDate != "2026-03-01" || out.EndDate != "2026-03-02" {
		t.Errorf("unexpected all-day fields: %+v", out)
	}
	if out.StartTime != "" || out.EndTime != "" {
		t.Errorf("all-day events must not carry times: %+v", out)
	}

	malformed := &gormModels.CalendarEvent{
		ID:            "evt-3",
		Title:         "Broken",
		StartDateTime: strPtr("not a timestamp"),
	}

	out = buildProviderEvent(malformed)
	if out.StartDate != "" || out.StartTime != "" {
		t.Errorf("malformed timestamps must fall back to empty fields: %+v", out)
	}
}
