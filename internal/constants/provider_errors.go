package constants

// Calendar Provider Error Codes
// These constants define specific error scenarios for external calendar platforms

// Credential-related errors
const (
	ErrCodeInvalidToken         = "INVALID_TOKEN"
	ErrCodeTokenExpired         = "TOKEN_EXPIRED"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeNetworkError         = "NETWORK_ERROR"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
)

// Resource-related errors
const (
	ErrCodeCalendarNotFound     = "CALENDAR_NOT_FOUND"
	ErrCodeCalendarAccessDenied = "CALENDAR_ACCESS_DENIED"
	ErrCodeEventNotFound        = "EVENT_NOT_FOUND"
)

// Data validation errors
const (
	ErrCodeInvalidDataFormat = "INVALID_DATA_FORMAT"
	ErrCodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
)

// Connection errors
const (
	ErrCodeConnectionNotFound  = "CONNECTION_NOT_FOUND"
	ErrCodeConnectionNotActive = "CONNECTION_NOT_ACTIVE"
	ErrCodePlatformUnsupported = "PLATFORM_UNSUPPORTED"
)

// Error Messages
// Human-readable messages corresponding to error codes

var ProviderErrorMessages = map[string]string{
	// Credentials
	ErrCodeInvalidToken:         "The stored access token is invalid or has been revoked",
	ErrCodeTokenExpired:         "The stored access token has expired and needs a refresh",
	ErrCodeRateLimited:          "Rate limit exceeded. Please try again later",
	ErrCodeNetworkError:         "Unable to reach the calendar platform. Please check connectivity",
	ErrCodeAuthenticationFailed: "Authentication with the calendar platform failed",

	// Resources
	ErrCodeCalendarNotFound:     "The specified calendar was not found on the platform",
	ErrCodeCalendarAccessDenied: "You don't have permission to access this calendar",
	ErrCodeEventNotFound:        "The event was not found on the platform",

	// Data validation
	ErrCodeInvalidDataFormat:    "The event data format is invalid",
	ErrCodeRequiredFieldMissing: "A required event field is missing",

	// Connections
	ErrCodeConnectionNotFound:  "No platform connection found for this user",
	ErrCodeConnectionNotActive: "The platform connection has been disconnected",
	ErrCodePlatformUnsupported: "This calendar platform is not supported",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := ProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
