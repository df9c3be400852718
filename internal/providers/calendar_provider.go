package providers

import (
	"context"
	"fmt"

	"notionflow/server/internal/constants"
)

// CalendarProvider defines the interface for external calendar platforms.
// Implementations are thin REST adapters; all sync gating happens before a
// provider is invoked.
type CalendarProvider interface {
	// CreateEvent writes an event to the platform and returns its
	// platform-assigned id
	CreateEvent(ctx context.Context, event *Event) (string, error)

	// UpdateEvent updates an existing event on the platform
	UpdateEvent(ctx context.Context, platformEventID string, event *Event) error

	// DeleteEvent removes an event from the platform
	DeleteEvent(ctx context.Context, platformEventID string) error

	// GetProviderType returns the platform identifier
	GetProviderType() constants.Platform
}

// Event is the provider-neutral event payload handed to adapters
type Event struct {
	SourceID    string
	Title       string
	Description string
	Location    string
	StartDate   string // YYYY-MM-DD, always set
	StartTime   string // HH:MM:SS, empty for all-day events
	EndDate     string
	EndTime     string
	IsAllDay    bool
}

// ProviderError represents a provider-specific error
type ProviderError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProvider builds the adapter for a platform using the connection's
// access token
func NewProvider(platform constants.Platform, accessToken string) (CalendarProvider, error) {
	switch platform {
	case constants.PlatformNotion:
		return NewNotionProvider(accessToken), nil
	case constants.PlatformGoogle:
		return NewGoogleCalendarProvider(accessToken), nil
	case constants.PlatformOutlook:
		return NewOutlookProvider(accessToken), nil
	case constants.PlatformSlack:
		return NewSlackProvider(accessToken), nil
	default:
		return nil, &ProviderError{
			Code:    constants.ErrCodePlatformUnsupported,
			Message: constants.GetErrorMessage(constants.ErrCodePlatformUnsupported),
			Details: platform.String(),
		}
	}
}
