package constants

import (
	"database/sql/driver"
	"fmt"
)

// Platform mirrors the Postgres ENUM 'calendar_platform'
type Platform string

const (
	PlatformNotion  Platform = "notion"
	PlatformGoogle  Platform = "google"
	PlatformOutlook Platform = "outlook"
	PlatformSlack   Platform = "slack"
)

// Stringer ­– convenient for fmt / logs
func (p Platform) String() string { return string(p) }

// IsSupported reports whether the platform is one NotionFlow can sync to
func (p Platform) IsSupported() bool {
	switch p {
	case PlatformNotion, PlatformGoogle, PlatformOutlook, PlatformSlack:
		return true
	}
	return false
}

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (p *Platform) Scan(src interface{}) error {
	if src == nil {
		*p = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*p = Platform(v)
	case []byte:
		*p = Platform(v)
	default:
		return fmt.Errorf("Platform: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (p Platform) Value() (driver.Value, error) { return string(p), nil }
