package dtos

import (
	"notionflow/server/internal/constants"
)

// ValidationTier is the outcome of one tier in the three-tier sync
// validation pipeline. Tiers are created by their check function and
// never mutated afterwards.
type ValidationTier struct {
	TierNumber  int                    `json:"tier_number"`
	Passed      bool                   `json:"passed"`
	Description string                 `json:"description"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// ValidationReport is the result of validating one event against one
// target platform.
//
// Invariants:
//   - OverallResult is approved iff all three tiers passed
//   - RejectionReason is non-nil iff the result is not approved
//   - exactly one CaseClassification is assigned
//   - ValidationID is set once, right after the audit row is persisted
type ValidationReport struct {
	EventID            string                       `json:"event_id"`
	TargetPlatform     string                       `json:"target_platform"`
	Tier1              ValidationTier               `json:"tier1"`
	Tier2              ValidationTier               `json:"tier2"`
	Tier3              ValidationTier               `json:"tier3"`
	OverallResult      constants.ValidationResult   `json:"overall_result"`
	CaseClassification constants.CaseClassification `json:"case_classification"`
	ContentHash        string                       `json:"content_hash,omitempty"`
	RejectionReason    *string                      `json:"rejection_reason,omitempty"`
	ValidationID       *string                      `json:"validation_id,omitempty"`
}

// Approved reports whether the validation cleared all three tiers
func (r *ValidationReport) Approved() bool {
	return r.OverallResult == constants.ValidationApproved
}

// TrashedEvent is a client-held soft-delete entry. The web client keeps
// trash state locally and sends it along with validation requests; it is
// matched against candidate events by id and calendar id.
type TrashedEvent struct {
	ID         string `json:"id,omitempty"`
	EventID    string `json:"event_id,omitempty"`
	CalendarID string `json:"calendar_id"`
	Title      string `json:"title,omitempty"`
	TrashedAt  string `json:"trashed_at,omitempty"`
}

// Matches reports whether the trash entry refers to the given event in
// the given calendar. Both conditions are required: a matching event id
// under a different calendar is not a hit.
func (t TrashedEvent) Matches(eventID, calendarID string) bool {
	idMatch := t.ID == eventID || t.EventID == eventID
	return idMatch && t.CalendarID == calendarID
}

// ValidationSummary aggregates a batch of validation reports
type ValidationSummary struct {
	Total            int            `json:"total"`
	Approved         int            `json:"approved"`
	Rejected         int            `json:"rejected"`
	ApprovalRate     float64        `json:"approval_rate"`
	Classifications  map[string]int `json:"classifications"`
	RejectionReasons map[string]int `json:"rejection_reasons"`
}
