package repositories

import (
	"context"
	"time"

	"notionflow/server/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// SyncHistoryRepo handles sync history operations
type SyncHistoryRepo struct {
	db *gormlib.DB
}

// NewSyncHistoryRepo creates a new sync history repository
func NewSyncHistoryRepo(db *gormlib.DB) *SyncHistoryRepo {
	return &SyncHistoryRepo{db: db}
}

// RecordSync records a sync run for a user and target platform
func (r *SyncHistoryRepo) RecordSync(ctx context.Context, userID string, platform string, event string, processed int, synced int) (*gorm.SyncHistory, error) {
	now := time.Now()

	row := gorm.SyncHistory{
		UserID:          userID,
		TargetPlatform:  platform,
		Event:           event,
		EventsProcessed: processed,
		EventsSynced:    synced,
		LastSyncAt:      &now,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}

	return &row, nil
}

// GetLastSyncTime retrieves the most recent sync timestamp for a user and
// platform. Used to decide whether the scheduled job should run a catch-up
// sync on restart.
func (r *SyncHistoryRepo) GetLastSyncTime(ctx context.Context, userID string, platform string) (*time.Time, error) {
	var row gorm.SyncHistory

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_platform = ?", userID, platform).
		Order("last_sync_at DESC").
		First(&row).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil // no sync history yet
		}
		return nil, err
	}

	return row.LastSyncAt, nil
}
