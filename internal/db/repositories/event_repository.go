package repositories

import (
	"context"

	"notionflow/server/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepo handles calendar_events table operations
type EventRepo struct {
	db *gormlib.DB
}

// NewEventRepo creates a new calendar event repository
func NewEventRepo(db *gormlib.DB) *EventRepo {
	return &EventRepo{db: db}
}

// FindByUserAndID finds one event row scoped to a user.
// Returns (nil, nil) when no row exists so callers can distinguish
// "not found" from a storage failure.
func (r *EventRepo) FindByUserAndID(ctx context.Context, userID string, eventID string) (*gorm.CalendarEvent, error) {
	var event gorm.CalendarEvent

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, eventID).
		First(&event).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &event, nil
}

// ListByCalendar returns all events in a calendar for a user, newest first
func (r *EventRepo) ListByCalendar(ctx context.Context, userID string, calendarID string, limit int) ([]gorm.CalendarEvent, error) {
	var events []gorm.CalendarEvent

	query := r.db.WithContext(ctx).
		Where("user_id = ? AND calendar_id = ?", userID, calendarID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}

// Upsert inserts or updates an event row ingested from a source platform
// ON CONFLICT (id) DO UPDATE
func (r *EventRepo) Upsert(ctx context.Context, event *gorm.CalendarEvent) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "description", "location", "status", "start_datetime",
				"end_datetime", "start_date", "end_date", "is_all_day", "updated_at",
			}),
		}).
		Create(event).Error
}

// CountByUser returns the total number of events for a user
func (r *EventRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&gorm.CalendarEvent{}).
		Where("user_id = ?", userID).
		Count(&count).Error

	return count, err
}
