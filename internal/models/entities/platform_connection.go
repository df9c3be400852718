package entities

import (
	"time"

	"notionflow/server/internal/constants"
)

type PlatformConnection struct {
	ID           string             `db:"id"`           // UUID
	UserID       string             `db:"user_id"`      // UUID
	Platform     constants.Platform `db:"platform"`     // calendar_platform enum
	AccessToken  string             `db:"access_token"`
	RefreshToken *string            `db:"refresh_token"`
	TokenExpiry  *time.Time         `db:"token_expiry"` // nullable timestamp
	WorkspaceID  *string            `db:"workspace_id"`
	AutoSync     bool               `db:"auto_sync"`
	IsActive     bool               `db:"is_active"`
	CreatedAt    time.Time          `db:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at"`
}
