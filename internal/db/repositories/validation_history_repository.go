package repositories

import (
	"context"

	"notionflow/server/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// ValidationHistoryRepo handles validation_history table operations.
// Rows are write-once; there is no update path.
type ValidationHistoryRepo struct {
	db *gormlib.DB
}

// NewValidationHistoryRepo creates a new validation history repository
func NewValidationHistoryRepo(db *gormlib.DB) *ValidationHistoryRepo {
	return &ValidationHistoryRepo{db: db}
}

// Insert appends one audit row and returns its generated id
func (r *ValidationHistoryRepo) Insert(ctx context.Context, row *gorm.ValidationHistory) (string, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

// ListByUser returns a user's validation history, newest first
func (r *ValidationHistoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]gorm.ValidationHistory, error) {
	var rows []gorm.ValidationHistory

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// CountByUser returns the number of audit rows recorded for a user
func (r *ValidationHistoryRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&gorm.ValidationHistory{}).
		Where("user_id = ?", userID).
		Count(&count).Error

	return count, err
}
