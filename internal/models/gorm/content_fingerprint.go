package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentFingerprint is a content-addressed record of an approved sync,
// used to detect duplicate events on a target platform.
// One row per (user, platform, content_hash); re-approving the same content
// refreshes the row instead of duplicating it.
type ContentFingerprint struct {
	ID              string    `gorm:"column:id;primaryKey;type:uuid"`
	UserID          string    `gorm:"column:user_id;type:uuid;uniqueIndex:idx_fingerprint_key"`
	Platform        string    `gorm:"column:platform;uniqueIndex:idx_fingerprint_key"`
	ContentHash     string    `gorm:"column:content_hash;uniqueIndex:idx_fingerprint_key"`
	NormalizedTitle string    `gorm:"column:normalized_title"`
	EventDate       string    `gorm:"column:event_date"`
	EventStartTime  string    `gorm:"column:event_start_time"`
	SourceEventID   string    `gorm:"column:source_event_id"`
	IsActive        bool      `gorm:"column:is_active;default:true"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ContentFingerprint) TableName() string {
	return "content_fingerprints"
}

// BeforeCreate GORM hook
func (f *ContentFingerprint) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}
