package repositories

import (
	"context"

	"notionflow/server/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FingerprintRepo handles content_fingerprints table operations
type FingerprintRepo struct {
	db *gormlib.DB
}

// NewFingerprintRepo creates a new content fingerprint repository
func NewFingerprintRepo(db *gormlib.DB) *FingerprintRepo {
	return &FingerprintRepo{db: db}
}

// FindActive returns active fingerprints matching (user, platform, content_hash)
func (r *FingerprintRepo) FindActive(ctx context.Context, userID string, platform string, contentHash string) ([]gorm.ContentFingerprint, error) {
	var fingerprints []gorm.ContentFingerprint

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ? AND content_hash = ? AND is_active = ?",
			userID, platform, contentHash, true).
		Find(&fingerprints).Error

	if err != nil {
		return nil, err
	}

	return fingerprints, nil
}

// Upsert inserts or refreshes a fingerprint row.
// ON CONFLICT (user_id, platform, content_hash) DO UPDATE — the composite
// unique key is the only synchronization mechanism between concurrent
// approvals of identical content, so two racing approvals collapse into
// one row.
func (r *FingerprintRepo) Upsert(ctx context.Context, fingerprint *gorm.ContentFingerprint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "platform"},
				{Name: "content_hash"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"normalized_title", "event_date", "event_start_time",
				"source_event_id", "is_active", "updated_at",
			}),
		}).
		Create(fingerprint).Error
}

// CountActiveByUserAndPlatform returns the number of active fingerprints a
// user holds for a platform
func (r *FingerprintRepo) CountActiveByUserAndPlatform(ctx context.Context, userID string, platform string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&gorm.ContentFingerprint{}).
		Where("user_id = ? AND platform = ? AND is_active = ?", userID, platform, true).
		Count(&count).Error

	return count, err
}
