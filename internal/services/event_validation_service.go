package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"notionflow/server/internal/constants"
	"notionflow/server/internal/db/repositories"
	"notionflow/server/internal/logging"
	"notionflow/server/internal/models/dtos"
	gormModels "notionflow/server/internal/models/gorm"
)

// EventValidationService gates one-way sync writes with a three-tier check:
// existence/cancellation, client trash state, and duplicate-content
// fingerprint detection. Every tier is fail-closed: storage errors and
// missing data reject rather than approve.
//
// The service is stateless apart from its repository handles; construct it
// once at the composition root and share it across callers.
type EventValidationService struct {
	eventRepo       *repositories.EventRepo
	fingerprintRepo *repositories.FingerprintRepo
	historyRepo     *repositories.ValidationHistoryRepo
}

// NewEventValidationService creates a new event validation service
func NewEventValidationService(
	eventRepo *repositories.EventRepo,
	fingerprintRepo *repositories.FingerprintRepo,
	historyRepo *repositories.ValidationHistoryRepo,
) *EventValidationService {
	return &EventValidationService{
		eventRepo:       eventRepo,
		fingerprintRepo: fingerprintRepo,
		historyRepo:     historyRepo,
	}
}

// CheckEventExists runs Tier 1: the event must exist for this user and must
// not be cancelled. Storage errors fail the tier (with the error text in
// details) instead of propagating. On pass, the event row rides along in
// details so later tiers don't need a second lookup.
func (s *EventValidationService) CheckEventExists(ctx context.Context, userID string, eventID string) (dtos.ValidationTier, *gormModels.CalendarEvent) {
	event, err := s.eventRepo.FindByUserAndID(ctx, userID, eventID)
	if err != nil {
		return dtos.ValidationTier{
			TierNumber:  1,
			Passed:      false,
			Description: "Event lookup failed",
			Details: map[string]interface{}{
				"error": err.Error(),
			},
		}, nil
	}

	if event == nil {
		return dtos.ValidationTier{
			TierNumber:  1,
			Passed:      false,
			Description: "Event not found",
			Details: map[string]interface{}{
				"reason": constants.ReasonEventNotFound,
			},
		}, nil
	}

	if event.Status == constants.EventStatusCancelled {
		return dtos.ValidationTier{
			TierNumber:  1,
			Passed:      false,
			Description: "Event has been cancelled",
			Details: map[string]interface{}{
				"reason":     constants.ReasonEventCancelled,
				"event_data": event,
			},
		}, event
	}

	return dtos.ValidationTier{
		TierNumber:  1,
		Passed:      true,
		Description: "Event exists and is not cancelled",
		Details: map[string]interface{}{
			"event_data": event,
		},
	}, event
}

// CheckTrashMembership runs Tier 2 over the caller-supplied trash list.
// Pure function: the trash state is client-held soft-delete data, never
// queried from the store here. A hit requires both the event id (by either
// id field) and the calendar id to match.
func (s *EventValidationService) CheckTrashMembership(eventID string, calendarID string, trashedEvents []dtos.TrashedEvent) dtos.ValidationTier {
	for _, entry := range trashedEvents {
		if entry.Matches(eventID, calendarID) {
			return dtos.ValidationTier{
				TierNumber:  2,
				Passed:      false,
				Description: "Event is in the trash",
				Details: map[string]interface{}{
					"reason":      constants.ReasonEventInTrash,
					"trash_entry": entry,
				},
			}
		}
	}

	return dtos.ValidationTier{
		TierNumber:  2,
		Passed:      true,
		Description: "Event is not in the trash",
		Details:     map[string]interface{}{},
	}
}

// CheckDuplicateContent runs Tier 3: any active fingerprint for
// (user, platform, hash) means this content already went to the platform.
// Returns the matched fingerprint for classification.
func (s *EventValidationService) CheckDuplicateContent(ctx context.Context, userID string, targetPlatform string, contentHash string) (dtos.ValidationTier, *gormModels.ContentFingerprint) {
	if contentHash == "" {
		// Should not happen with a correctly wired orchestrator; fail closed.
		return dtos.ValidationTier{
			TierNumber:  3,
			Passed:      false,
			Description: "No content fingerprint available",
			Details: map[string]interface{}{
				"error": "empty content hash",
			},
		}, nil
	}

	fingerprints, err := s.fingerprintRepo.FindActive(ctx, userID, targetPlatform, contentHash)
	if err != nil {
		return dtos.ValidationTier{
			TierNumber:  3,
			Passed:      false,
			Description: "Fingerprint lookup failed",
			Details: map[string]interface{}{
				"error": err.Error(),
			},
		}, nil
	}

	if len(fingerprints) > 0 {
		existing := fingerprints[0]
		return dtos.ValidationTier{
			TierNumber:  3,
			Passed:      false,
			Description: "Identical content already synced to this platform",
			Details: map[string]interface{}{
				"reason":               constants.ReasonDuplicateContent,
				"existing_fingerprint": existing,
			},
		}, &existing
	}

	return dtos.ValidationTier{
		TierNumber:  3,
		Passed:      true,
		Description: "No duplicate content on target platform",
		Details:     map[string]interface{}{},
	}, nil
}

// classifyCase maps the tier outcomes to one semantic case. First match
// wins. A panic during classification falls back to treating the event as
// new rather than sinking the whole validation.
func (s *EventValidationService) classifyCase(
	event *gormModels.CalendarEvent,
	tier1 *dtos.ValidationTier,
	tier2 *dtos.ValidationTier,
	tier3 *dtos.ValidationTier,
	existing *gormModels.ContentFingerprint,
) (classification constants.CaseClassification) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("Case classification panicked, defaulting to new_event",
				"panic", fmt.Sprintf("%v", rec),
			)
			classification = constants.CaseNewEvent
		}
	}()

	if tier1 != nil && !tier1.Passed {
		reason, _ := tier1.Details["reason"].(string)
		switch reason {
		case constants.ReasonEventCancelled:
			return constants.CaseDeletion
		case constants.ReasonEventNotFound:
			return constants.CaseMissingEvent
		default:
			// Unknown tier 1 failure (e.g. storage error): treat as missing
			return constants.CaseMissingEvent
		}
	}

	if tier2 != nil && !tier2.Passed {
		return constants.CaseTrashedEvent
	}

	if tier3 != nil && !tier3.Passed {
		if existing != nil && event != nil && existing.SourceEventID == event.ID {
			return constants.CaseContentChange
		}
		return constants.CaseDuplicateContent
	}

	return constants.CaseNewEvent
}

// skippedTier builds the stub tier embedded in reports that short-circuited
// before reaching this tier
func skippedTier(number int) dtos.ValidationTier {
	return dtos.ValidationTier{
		TierNumber:  number,
		Passed:      false,
		Description: "Skipped: earlier tier failed",
		Details: map[string]interface{}{
			"skipped": true,
		},
	}
}

// extractHashFields pulls the date and time components for fingerprinting.
// All-day events hash on their start date alone; timed events split the
// start timestamp into date and time. Malformed or missing timestamps
// become empty components, never errors.
func extractHashFields(event *gormModels.CalendarEvent) (string, string) {
	if event.IsAllDay {
		if event.StartDate != nil {
			return *event.StartDate, ""
		}
		return "", ""
	}

	if event.StartDateTime == nil {
		return "", ""
	}

	t, err := time.Parse(time.RFC3339, *event.StartDateTime)
	if err != nil {
		return "", ""
	}

	return t.Format("2006-01-02"), t.Format("15:04:05")
}

// ValidateEventForSync validates one event for a one-way sync write to the
// target platform.
//
// Pipeline (linear, early-exit):
//
//	TIER1 fail -> classify -> rejected report
//	TIER2 fail -> classify -> rejected report
//	TIER3      -> classify -> report -> persist audit row -> (approved) write fingerprint
//
// Only validations that reach Tier 3 are recorded in validation_history;
// early exits return a report without an audit row. Whatever goes wrong,
// the caller always gets a fully formed report — a panic anywhere in the
// pipeline becomes a rejected report, never an escaping error.
func (s *EventValidationService) ValidateEventForSync(
	ctx context.Context,
	userID string,
	eventID string,
	targetPlatform string,
	trashedEvents []dtos.TrashedEvent,
) (report *dtos.ValidationReport) {
	report = &dtos.ValidationReport{
		EventID:        eventID,
		TargetPlatform: targetPlatform,
	}

	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("Event validation panicked",
				"user_id", userID,
				"event_id", eventID,
				"target_platform", targetPlatform,
				"panic", fmt.Sprintf("%v", rec),
			)
			reason := fmt.Sprintf("validation error: %v", rec)
			report.OverallResult = constants.ValidationRejected
			report.CaseClassification = constants.CaseMissingEvent
			report.RejectionReason = &reason
		}
	}()

	log.Printf("[EventValidationService] Validating event %s for sync to %s", eventID, targetPlatform)

	// TIER 1: EXISTENCE / CANCELLATION
	tier1, event := s.CheckEventExists(ctx, userID, eventID)
	report.Tier1 = tier1
	if !tier1.Passed {
		report.Tier2 = skippedTier(2)
		report.Tier3 = skippedTier(3)
		report.CaseClassification = s.classifyCase(event, &report.Tier1, nil, nil, nil)
		rejectReport(report, tier1.Description)
		return report
	}

	// TIER 2: CLIENT TRASH STATE
	tier2 := s.CheckTrashMembership(eventID, event.CalendarID, trashedEvents)
	report.Tier2 = tier2
	if !tier2.Passed {
		report.Tier3 = skippedTier(3)
		report.CaseClassification = s.classifyCase(event, &report.Tier1, &report.Tier2, nil, nil)
		rejectReport(report, tier2.Description)
		return report
	}

	// COMPUTE CONTENT HASH
	eventDate, eventTime := extractHashFields(event)
	contentHash := GenerateContentHash(event.Title, eventDate, eventTime)
	report.ContentHash = contentHash

	// TIER 3: DUPLICATE CONTENT
	tier3, existing := s.CheckDuplicateContent(ctx, userID, targetPlatform, contentHash)
	report.Tier3 = tier3
	report.CaseClassification = s.classifyCase(event, &report.Tier1, &report.Tier2, &report.Tier3, existing)

	if tier3.Passed {
		report.OverallResult = constants.ValidationApproved
	} else {
		rejectReport(report, tier3.Description)
	}

	// PERSIST AUDIT ROW
	// Only full validations (those that resolved Tier 3) are recorded;
	// tier 1/2 exits above intentionally leave no history row.
	s.recordValidation(ctx, userID, event, report)

	// WRITE FINGERPRINT ON APPROVAL
	if report.Approved() {
		fingerprint := &gormModels.ContentFingerprint{
			UserID:          userID,
			Platform:        targetPlatform,
			ContentHash:     contentHash,
			NormalizedTitle: NormalizeTitle(event.Title),
			EventDate:       eventDate,
			EventStartTime:  eventTime,
			SourceEventID:   event.ID,
			IsActive:        true,
		}
		if err := s.fingerprintRepo.Upsert(ctx, fingerprint); err != nil {
			log.Printf("[EventValidationService] Failed to write fingerprint for event %s: %v", eventID, err)
		}
	}

	return report
}

// rejectReport marks a report rejected with a human-readable reason
func rejectReport(report *dtos.ValidationReport, reason string) {
	report.OverallResult = constants.ValidationRejected
	report.RejectionReason = &reason
}

// recordValidation appends the audit row and stamps its id onto the report.
// A history write failure is logged, not propagated: the validation verdict
// stands either way.
func (s *EventValidationService) recordValidation(ctx context.Context, userID string, event *gormModels.CalendarEvent, report *dtos.ValidationReport) {
	var rejectionReason *string
	if report.RejectionReason != nil {
		r := *report.RejectionReason
		rejectionReason = &r
	}

	row := &gormModels.ValidationHistory{
		UserID:             userID,
		CalendarID:         event.CalendarID,
		SourceEventID:      event.ID,
		TargetPlatform:     report.TargetPlatform,
		Tier1Passed:        report.Tier1.Passed,
		Tier2Passed:        report.Tier2.Passed,
		Tier3Passed:        report.Tier3.Passed,
		OverallResult:      report.OverallResult.String(),
		CaseClassification: report.CaseClassification.String(),
		ContentHash:        report.ContentHash,
		RejectionReason:    rejectionReason,
	}

	validationID, err := s.historyRepo.Insert(ctx, row)
	if err != nil {
		log.Printf("[EventValidationService] Failed to record validation history for event %s: %v", event.ID, err)
		return
	}

	report.ValidationID = &validationID
}

// ValidateBatch validates each event id in order against the target
// platform. Input ids are not deduplicated: duplicate ids produce duplicate
// reports.
func (s *EventValidationService) ValidateBatch(
	ctx context.Context,
	userID string,
	eventIDs []string,
	targetPlatform string,
	trashedEvents []dtos.TrashedEvent,
) []*dtos.ValidationReport {
	reports := make([]*dtos.ValidationReport, 0, len(eventIDs))

	for _, eventID := range eventIDs {
		reports = append(reports, s.ValidateEventForSync(ctx, userID, eventID, targetPlatform, trashedEvents))
	}

	return reports
}

// SummarizeReports aggregates approval statistics over a set of reports
func (s *EventValidationService) SummarizeReports(reports []*dtos.ValidationReport) *dtos.ValidationSummary {
	summary := &dtos.ValidationSummary{
		Total:            len(reports),
		Classifications:  make(map[string]int),
		RejectionReasons: make(map[string]int),
	}

	for _, report := range reports {
		if report.Approved() {
			summary.Approved++
		} else {
			summary.Rejected++
			reason := "Unknown"
			if report.RejectionReason != nil {
				reason = *report.RejectionReason
			}
			summary.RejectionReasons[reason]++
		}
		summary.Classifications[report.CaseClassification.String()]++
	}

	if summary.Total > 0 {
		summary.ApprovalRate = float64(summary.Approved) / float64(summary.Total) * 100
	}

	return summary
}
