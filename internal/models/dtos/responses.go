package dtos

// APIResponse is the standard envelope for all API responses
type APIResponse struct {
	Status       string      `json:"status"`
	Message      string      `json:"message,omitempty"`
	ResponseTime string      `json:"response_time,omitempty"`
	Data         interface{} `json:"data,omitempty"`
}

// BatchValidationResponse carries the per-event reports plus their summary
type BatchValidationResponse struct {
	Reports []*ValidationReport `json:"reports"`
	Summary *ValidationSummary  `json:"summary"`
}

// SyncResponse is the outcome of a one-way sync run
type SyncResponse struct {
	Success         bool               `json:"success"`
	ErrorType       string             `json:"error_type,omitempty"`
	ErrorMessage    string             `json:"error_message,omitempty"`
	SyncID          string             `json:"sync_id,omitempty"`
	EventsProcessed int                `json:"events_processed"`
	EventsSynced    int                `json:"events_synced"`
	Summary         *ValidationSummary `json:"summary,omitempty"`
}

// ExportLinkResponse carries a presigned export link
type ExportLinkResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}
