package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlatformConnection stores the OAuth token state for one user on one platform.
// The handshake itself happens in the web client; this side only persists and
// refreshes the resulting tokens.
type PlatformConnection struct {
	ID           string     `gorm:"column:id;primaryKey;type:uuid"`
	UserID       string     `gorm:"column:user_id;type:uuid;uniqueIndex:idx_connection_user_platform"`
	Platform     string     `gorm:"column:platform;uniqueIndex:idx_connection_user_platform"`
	AccessToken  string     `gorm:"column:access_token"`
	RefreshToken *string    `gorm:"column:refresh_token"`
	TokenExpiry  *time.Time `gorm:"column:token_expiry"`
	WorkspaceID  *string    `gorm:"column:workspace_id"`
	AutoSync     bool       `gorm:"column:auto_sync;default:false"`
	IsActive     bool       `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	User User `gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (PlatformConnection) TableName() string {
	return "platform_connections"
}

// BeforeCreate GORM hook
func (c *PlatformConnection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
