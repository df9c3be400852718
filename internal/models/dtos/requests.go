package dtos

// ValidateEventRequest is the body for POST /api/v1/validations
type ValidateEventRequest struct {
	EventID        string         `json:"event_id"`
	TargetPlatform string         `json:"target_platform"`
	TrashedEvents  []TrashedEvent `json:"trashed_events,omitempty"`
}

// ValidateBatchRequest is the body for POST /api/v1/validations/batch
type ValidateBatchRequest struct {
	EventIDs       []string       `json:"event_ids"`
	TargetPlatform string         `json:"target_platform"`
	TrashedEvents  []TrashedEvent `json:"trashed_events,omitempty"`
}

// SyncRequest is the body for POST /api/v1/sync
type SyncRequest struct {
	CalendarID     string         `json:"calendar_id"`
	TargetPlatform string         `json:"target_platform"`
	EventIDs       []string       `json:"event_ids,omitempty"`
	TrashedEvents  []TrashedEvent `json:"trashed_events,omitempty"`
	Enqueue        bool           `json:"enqueue,omitempty"`
}

// ConnectionUpsertRequest stores or refreshes OAuth tokens for a platform.
// The OAuth dance itself happens in the web client.
type ConnectionUpsertRequest struct {
	Platform     string  `json:"platform"`
	AccessToken  string  `json:"access_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	ExpiresIn    *int    `json:"expires_in,omitempty"`
	WorkspaceID  *string `json:"workspace_id,omitempty"`
	AutoSync     bool    `json:"auto_sync"`
}

// ExportLinkRequest generates a presigned single-use export link
type ExportLinkRequest struct {
	CalendarID string `json:"calendar_id"`
}
