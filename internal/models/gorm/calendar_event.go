package gorm

import "time"

// CalendarEvent is an event row as ingested from a source platform.
// IDs come from the source platform, so the primary key is not generated here.
// Start/end values are kept as the raw strings the platform delivered; they
// are only parsed at validation/hash time so a malformed timestamp never
// breaks ingestion.
type CalendarEvent struct {
	ID             string    `gorm:"column:id;primaryKey"`
	UserID         string    `gorm:"column:user_id;type:uuid;index:idx_events_user"`
	CalendarID     string    `gorm:"column:calendar_id;index"`
	Title          string    `gorm:"column:title"`
	Description    *string   `gorm:"column:description"`
	Location       *string   `gorm:"column:location"`
	Status         string    `gorm:"column:status;default:confirmed"`
	StartDateTime  *string   `gorm:"column:start_datetime"`
	EndDateTime    *string   `gorm:"column:end_datetime"`
	StartDate      *string   `gorm:"column:start_date"`
	EndDate        *string   `gorm:"column:end_date"`
	IsAllDay       bool      `gorm:"column:is_all_day;default:false"`
	SourcePlatform string    `gorm:"column:source_platform"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (CalendarEvent) TableName() string {
	return "calendar_events"
}
