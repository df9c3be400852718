package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Calendar struct {
	ID               string    `gorm:"column:id;primaryKey;type:uuid"`
	UserID           string    `gorm:"column:user_id;type:uuid;index"`
	Name             string    `gorm:"column:name"`
	Description      *string   `gorm:"column:description"`
	SourcePlatform   string    `gorm:"column:source_platform"`
	SourceCalendarID *string   `gorm:"column:source_calendar_id"`
	Color            *string   `gorm:"column:color"`
	IsPrimary        bool      `gorm:"column:is_primary;default:false"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	User User `gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (Calendar) TableName() string {
	return "calendars"
}

// BeforeCreate GORM hook
func (c *Calendar) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
