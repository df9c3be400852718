package repositories

import (
	"context"

	"notionflow/server/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// CalendarRepo handles calendars table operations
type CalendarRepo struct {
	db *gormlib.DB
}

// NewCalendarRepo creates a new calendar repository
func NewCalendarRepo(db *gormlib.DB) *CalendarRepo {
	return &CalendarRepo{db: db}
}

// FindByUserAndID finds a calendar scoped to a user, (nil, nil) when absent
func (r *CalendarRepo) FindByUserAndID(ctx context.Context, userID string, calendarID string) (*gorm.Calendar, error) {
	var calendar gorm.Calendar

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, calendarID).
		First(&calendar).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &calendar, nil
}

// ListByUser returns all of a user's calendars
func (r *CalendarRepo) ListByUser(ctx context.Context, userID string) ([]gorm.Calendar, error) {
	var calendars []gorm.Calendar

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&calendars).Error

	if err != nil {
		return nil, err
	}

	return calendars, nil
}
