package constants

// ValidationResult is the overall outcome of a sync validation.
// Persisted as its string form in validation_history.
type ValidationResult string

const (
	ValidationApproved ValidationResult = "approved"
	ValidationRejected ValidationResult = "rejected"
	ValidationPending  ValidationResult = "pending"
)

func (r ValidationResult) String() string { return string(r) }

// CaseClassification is the semantic label assigned to a validation outcome
type CaseClassification string

const (
	CaseNewEvent         CaseClassification = "new_event"
	CaseContentChange    CaseClassification = "content_change"
	CaseDateChange       CaseClassification = "date_change"
	CaseDeletion         CaseClassification = "deletion"
	CaseDuplicateContent CaseClassification = "duplicate_content"
	CaseTrashedEvent     CaseClassification = "trashed_event"
	CaseMissingEvent     CaseClassification = "missing_event"
)

func (c CaseClassification) String() string { return string(c) }

// Tier failure reasons. These are expected validation-domain rejections,
// never surfaced as Go errors.
const (
	ReasonEventNotFound    = "event_not_found"
	ReasonEventCancelled   = "event_cancelled"
	ReasonEventInTrash     = "event_in_trash"
	ReasonDuplicateContent = "duplicate_content"
)

// Event status values as stored on calendar_events rows
const (
	EventStatusConfirmed = "confirmed"
	EventStatusTentative = "tentative"
	EventStatusCancelled = "cancelled"
)
