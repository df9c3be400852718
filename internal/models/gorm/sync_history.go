package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// SyncHistory tracks sync runs per user and target platform
type SyncHistory struct {
	ID              string     `gorm:"column:id;primaryKey;type:uuid"`
	UserID          string     `gorm:"column:user_id;type:uuid;not null"`
	TargetPlatform  string     `gorm:"column:target_platform;type:varchar(20);not null"`
	Event           string     `gorm:"column:event;type:varchar(50);not null"`
	EventsProcessed int        `gorm:"column:events_processed;default:0"`
	EventsSynced    int        `gorm:"column:events_synced;default:0"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	LastSyncAt      *time.Time `gorm:"column:last_sync_at"`
}

// TableName specifies the table name for GORM
func (SyncHistory) TableName() string {
	return "sync_history"
}

// BeforeCreate GORM hook
func (s *SyncHistory) BeforeCreate(tx *gormlib.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
