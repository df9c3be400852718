package services

import (
	"context"
	"strings"
	"testing"

	"notionflow/server/internal/constants"
	"notionflow/server/internal/db/repositories"
	"notionflow/server/internal/models/dtos"
	gormModels "notionflow/server/internal/models/gorm"

	"gorm.io/driver/sqlite"
	gormlib "gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gormlib.DB {
	db, err := gormlib.Open(sqlite.Open(":memory:"), &gormlib.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	err = db.AutoMigrate(
		&gormModels.CalendarEvent{},
		&gormModels.ContentFingerprint{},
		&gormModels.ValidationHistory{},
		&gormModels.Calendar{},
		&gormModels.SyncHistory{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return db
}

func newTestValidator(db *gormlib.DB) *EventValidationService {
	return NewEventValidationService(
		repositories.NewEventRepo(db),
		repositories.NewFingerprintRepo(db),
		repositories.NewValidationHistoryRepo(db),
	)
}

func seedEvent(t *testing.T, db *gormlib.DB, event *gormModels.CalendarEvent) {
	if event.Status == "" {
		event.Status = constants.EventStatusConfirmed
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to seed event %s: %v", event.ID, err)
	}
}

func strPtr(s string) *string { return &s }

func countHistoryRows(t *testing.T, db *gormlib.DB, userID string) int64 {
	var count int64
	if err := db.Model(&gormModels.ValidationHistory{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count history rows: %v", err)
	}
	return count
}

const testUserID = "11111111-1111-1111-1111-111111111111"

func TestValidateEventForSyncApprovesNewEvent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Team Standup",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", nil)

	if !report.Approved() {
		t.Fatalf("expected approval, got %s (reason: %v)", report.OverallResult, report.RejectionReason)
	}
	if report.CaseClassification != constants.CaseNewEvent {
		t.Errorf("expected new_event classification, got %s", report.CaseClassification)
	}
	if !report.Tier1.Passed || !report.Tier2.Passed || !report.Tier3.Passed {
		t.Error("expected all three tiers to pass")
	}
	if report.ContentHash == "" {
		t.Error("expected content hash on approved report")
	}
	if report.ValidationID == nil {
		t.Error("expected validation id after audit row persisted")
	}

	// Approval writes an active fingerprint
	var fingerprints []gormModels.ContentFingerprint
	if err := db.Find(&fingerprints).Error; err != nil {
		t.Fatalf("failed to load fingerprints: %v", err)
	}
	if len(fingerprints) != 1 {
		t.Fatalf("expected 1 fingerprint, got %d", len(fingerprints))
	}
	fp := fingerprints[0]
	if fp.ContentHash != report.ContentHash {
		t.Errorf("fingerprint hash %s does not match report hash %s", fp.ContentHash, report.ContentHash)
	}
	if fp.SourceEventID != "evt-1" || fp.Platform != "notion" || !fp.IsActive {
		t.Errorf("unexpected fingerprint row: %+v", fp)
	}
	if fp.NormalizedTitle != "team standup" {
		t.Errorf("expected normalized title, got %q", fp.NormalizedTitle)
	}
	if fp.EventDate != "2026-03-01" || fp.EventStartTime != "09:00:00" {
		t.Errorf("unexpected hash fields: date=%q time=%q", fp.EventDate, fp.EventStartTime)
	}

	if got := countHistoryRows(t, db, testUserID); got != 1 {
		t.Errorf("expected 1 history row, got %d", got)
	}
}

func TestValidateEventForSyncRejectsMissingEvent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	report := svc.ValidateEventForSync(context.Background(), testUserID, "does-not-exist", "notion", nil)

	if report.Approved() {
		t.Fatal("expected rejection for missing event")
	}
	if report.Tier1.Passed {
		t.Error("tier 1 should fail for a missing event")
	}
	if report.CaseClassification != constants.CaseMissingEvent {
		t.Errorf("expected missing_event classification, got %s", report.CaseClassification)
	}
	if report.RejectionReason == nil {
		t.Error("expected rejection reason")
	}

	// Tier 1 exit: no audit row
	if got := countHistoryRows(t, db, testUserID); got != 0 {
		t.Errorf("tier 1 rejection must not persist history, found %d rows", got)
	}
}

func TestValidateEventForSyncRejectsEventOwnedByOtherUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        "22222222-2222-2222-2222-222222222222",
		CalendarID:    "cal-1",
		Title:         "Someone else's meeting",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", nil)

	if report.Approved() {
		t.Fatal("event lookups must be scoped to the requesting user")
	}
	if report.CaseClassification != constants.CaseMissingEvent {
		t.Errorf("expected missing_event classification, got %s", report.CaseClassification)
	}
}

func TestValidateEventForSyncRejectsCancelledEvent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Cancelled Meeting",
		Status:        constants.EventStatusCancelled,
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", nil)

	if report.Approved() {
		t.Fatal("expected rejection for cancelled event")
	}
	if report.CaseClassification != constants.CaseDeletion {
		t.Errorf("expected deletion classification, got %s", report.CaseClassification)
	}
	if got := countHistoryRows(t, db, testUserID); got != 0 {
		t.Errorf("tier 1 rejection must not persist history, found %d rows", got)
	}
}

func TestValidateEventForSyncFailsClosedOnStorageError(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	// Simulate a storage failure for the tier 1 lookup
	if err := db.Migrator().DropTable(&gormModels.CalendarEvent{}); err != nil {
		t.Fatalf("failed to drop events table: %v", err)
	}

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", nil)

	if report.Approved() {
		t.Fatal("storage errors must reject, never approve")
	}
	if report.Tier1.Passed {
		t.Error("tier 1 should fail closed on storage error")
	}
	if report.CaseClassification != constants.CaseMissingEvent {
		t.Errorf("expected missing_event fallback classification, got %s", report.CaseClassification)
	}
}

func TestValidateEventForSyncRecoversFromPanic(t *testing.T) {
	// nil gorm handles make the tier 1 lookup panic before any check runs
	svc := NewEventValidationService(
		repositories.NewEventRepo(nil),
		repositories.NewFingerprintRepo(nil),
		repositories.NewValidationHistoryRepo(nil),
	)

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", nil)

	if report == nil {
		t.Fatal("a panicking validation must still return a report")
	}
	if report.Approved() {
		t.Fatal("a panicking validation must reject")
	}
	if report.CaseClassification != constants.CaseMissingEvent {
		t.Errorf("expected missing_event classification, got %s", report.CaseClassification)
	}
	if report.RejectionReason == nil {
		t.Fatal("expected a rejection reason carrying the panic")
	}
	if !strings.HasPrefix(*report.RejectionReason, "validation error:") {
		t.Errorf("unexpected rejection reason: %q", *report.RejectionReason)
	}
	if report.EventID != "evt-1" || report.TargetPlatform != "notion" {
		t.Errorf("report must keep its identity fields: %+v", report)
	}
}

func TestValidateEventForSyncRecoversFromTierThreePanic(t *testing.T) {
	db := setupTestDB(t)

	// Tiers 1 and 2 run against a real store; the fingerprint lookup panics
	svc := NewEventValidationService(
		repositories.NewEventRepo(db),
		repositories.NewFingerprintRepo(nil),
		repositories.NewValidationHistoryRepo(db),
	)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Team Standup",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", nil)

	if report.Approved() {
		t.Fatal("a mid-pipeline panic must reject")
	}
	if report.CaseClassification != constants.CaseMissingEvent {
		t.Errorf("expected missing_event classification, got %s", report.CaseClassification)
	}
	if !report.Tier1.Passed || !report.Tier2.Passed {
		t.Error("tiers that completed before the panic stay on the report")
	}
	if got := countHistoryRows(t, db, testUserID); got != 0 {
		t.Errorf("a validation cut short by a panic must not persist history, found %d rows", got)
	}
}

func TestValidateEventForSyncRejectsTrashedEvent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Trashed Meeting",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	trashed := []dtos.TrashedEvent{
		{EventID: "evt-1", CalendarID: "cal-1"},
	}

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", trashed)

	if report.Approved() {
		t.Fatal("expected rejection for trashed event")
	}
	if !report.Tier1.Passed {
		t.Error("tier 1 should pass before the trash check rejects")
	}
	if report.Tier2.Passed {
		t.Error("tier 2 should fail for a trashed event")
	}
	if report.CaseClassification != constants.CaseTrashedEvent {
		t.Errorf("expected trashed_event classification, got %s", report.CaseClassification)
	}
	if got := countHistoryRows(t, db, testUserID); got != 0 {
		t.Errorf("tier 2 rejection must not persist history, found %d rows", got)
	}
}

func TestValidateEventForSyncTrashRequiresCalendarMatch(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Team Standup",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	// Same event id, different calendar: not a trash hit
	trashed := []dtos.TrashedEvent{
		{EventID: "evt-1", CalendarID: "cal-other"},
	}

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", trashed)

	if !report.Approved() {
		t.Fatalf("trash entry in another calendar must not block the sync, got %s", report.OverallResult)
	}
}

func TestCheckTrashMembershipMatchesEitherIDField(t *testing.T) {
	svc := newTestValidator(setupTestDB(t))

	trashed := []dtos.TrashedEvent{
		{ID: "evt-1", CalendarID: "cal-1"},
	}

	tier := svc.CheckTrashMembership("evt-1", "cal-1", trashed)
	if tier.Passed {
		t.Error("trash entries keyed by the id field should match")
	}

	tier = svc.CheckTrashMembership("evt-2", "cal-1", trashed)
	if !tier.Passed {
		t.Error("non-matching event id should pass the trash check")
	}
}

func TestValidateEventForSyncRejectsDuplicateContent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-2",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Team Standup",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	hash := GenerateContentHash("Team Standup", "2026-03-01", "09:00:00")
	if err := db.Create(&gormModels.ContentFingerprint{
		UserID:          testUserID,
		Platform:        "notion",
		ContentHash:     hash,
		NormalizedTitle: "team standup",
		EventDate:       "2026-03-01",
		EventStartTime:  "09:00:00",
		SourceEventID:   "evt-1", // synced earlier from a different source event
		IsActive:        true,
	}).Error; err != nil {
		t.Fatalf("failed to seed fingerprint: %v", err)
	}

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-2", "notion", nil)

	if report.Approved() {
		t.Fatal("expected rejection for duplicate content")
	}
	if report.Tier3.Passed {
		t.Error("tier 3 should fail when an active fingerprint matches")
	}
	if report.CaseClassification != constants.CaseDuplicateContent {
		t.Errorf("expected duplicate_content classification, got %s", report.CaseClassification)
	}

	// Tier 3 was reached, so the rejection is audited
	if got := countHistoryRows(t, db, testUserID); got != 1 {
		t.Errorf("tier 3 rejection must persist history, found %d rows", got)
	}

	var row gormModels.ValidationHistory
	if err := db.Where("user_id = ?", testUserID).First(&row).Error; err != nil {
		t.Fatalf("failed to load history row: %v", err)
	}
	if !row.Tier1Passed || !row.Tier2Passed || row.Tier3Passed {
		t.Errorf("unexpected tier flags on history row: %+v", row)
	}
	if row.OverallResult != constants.ValidationRejected.String() {
		t.Errorf("expected rejected result, got %s", row.OverallResult)
	}
}

func TestValidateEventForSyncClassifiesContentChange(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Team Standup",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	// The matching fingerprint came from the same source event
	hash := GenerateContentHash("Team Standup", "2026-03-01", "09:00:00")
	if err := db.Create(&gormModels.ContentFingerprint{
		UserID:        testUserID,
		Platform:      "notion",
		ContentHash:   hash,
		SourceEventID: "evt-1",
		IsActive:      true,
	}).Error; err != nil {
		t.Fatalf("failed to seed fingerprint: %v", err)
	}

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", nil)

	if report.Approved() {
		t.Fatal("expected rejection when the same content was already synced")
	}
	if report.CaseClassification != constants.CaseContentChange {
		t.Errorf("expected content_change classification, got %s", report.CaseClassification)
	}
}

func TestValidateEventForSyncIgnoresInactiveFingerprints(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Team Standup",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	hash := GenerateContentHash("Team Standup", "2026-03-01", "09:00:00")
	if err := db.Create(&gormModels.ContentFingerprint{
		UserID:        testUserID,
		Platform:      "notion",
		ContentHash:   hash,
		SourceEventID: "evt-0",
		IsActive:      false,
	}).Error; err != nil {
		t.Fatalf("failed to seed fingerprint: %v", err)
	}

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", nil)

	if !report.Approved() {
		t.Fatalf("inactive fingerprints must not block a sync, got %s", report.OverallResult)
	}
}

func TestValidateEventForSyncScopesFingerprintsToPlatform(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Team Standup",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	// Already synced to google; notion is still clean
	hash := GenerateContentHash("Team Standup", "2026-03-01", "09:00:00")
	if err := db.Create(&gormModels.ContentFingerprint{
		UserID:        testUserID,
		Platform:      "google",
		ContentHash:   hash,
		SourceEventID: "evt-1",
		IsActive:      true,
	}).Error; err != nil {
		t.Fatalf("failed to seed fingerprint: %v", err)
	}

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", nil)

	if !report.Approved() {
		t.Fatalf("fingerprints are per platform; notion sync should be approved, got %s", report.OverallResult)
	}
}

func TestValidateEventForSyncRevalidationDetectsOwnFingerprint(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Team Standup",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	first := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", nil)
	if !first.Approved() {
		t.Fatalf("first validation should approve, got %s", first.OverallResult)
	}

	second := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", nil)
	if second.Approved() {
		t.Fatal("second validation should reject against the fingerprint the first one wrote")
	}
	if second.CaseClassification != constants.CaseContentChange {
		t.Errorf("same source event re-validated should classify content_change, got %s", second.CaseClassification)
	}

	// Upsert keyed on (user, platform, content_hash): still one row
	var count int64
	if err := db.Model(&gormModels.ContentFingerprint{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count fingerprints: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 fingerprint row after revalidation, got %d", count)
	}
}

func TestValidateEventForSyncAllDayHashing(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:         "evt-1",
		UserID:     testUserID,
		CalendarID: "cal-1",
		Title:      "Company Offsite",
		IsAllDay:   true,
		StartDate:  strPtr("2026-03-01"),
		EndDate:    strPtr("2026-03-02"),
	})

	report := svc.ValidateEventForSync(context.Background(), testUserID, "evt-1", "notion", nil)

	if !report.Approved() {
		t.Fatalf("expected approval, got %s", report.OverallResult)
	}
	if want := GenerateContentHash("Company Offsite", "2026-03-01", ""); report.ContentHash != want {
		t.Errorf("all-day events hash on start date with empty time, got %s", report.ContentHash)
	}
}

func TestExtractHashFields(t *testing.T) {
	cases := []struct {
		name     string
		event    gormModels.CalendarEvent
		wantDate string
		wantTime string
	}{
		{
			name:     "timed event",
			event:    gormModels.CalendarEvent{StartDateTime: strPtr("2026-03-01T09:30:00Z")},
			wantDate: "2026-03-01",
			wantTime: "09:30:00",
		},
		{
			name:     "all-day event",
			event:    gormModels.CalendarEvent{IsAllDay: true, StartDate: strPtr("2026-03-01")},
			wantDate: "2026-03-01",
			wantTime: "",
		},
		{
			name:     "all-day event without start date",
			event:    gormModels.CalendarEvent{IsAllDay: true},
			wantDate: "",
			wantTime: "",
		},
		{
			name:     "missing start datetime",
			event:    gormModels.CalendarEvent{},
			wantDate: "",
			wantTime: "",
		},
		{
			name:     "malformed start datetime",
			event:    gormModels.CalendarEvent{StartDateTime: strPtr("tomorrow at nine")},
			wantDate: "",
			wantTime: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			date, tm := extractHashFields(&c.event)
			if date != c.wantDate || tm != c.wantTime {
				t.Errorf("extractHashFields() = (%q, %q), want (%q, %q)", date, tm, c.wantDate, c.wantTime)
			}
		})
	}
}

func TestValidateBatchKeepsOrderAndDuplicates(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestValidator(db)

	seedEvent(t, db, &gormModels.CalendarEvent{
		ID:            "evt-1",
		UserID:        testUserID,
		CalendarID:    "cal-1",
		Title:         "Team Standup",
		StartDateTime: strPtr("2026-03-01T09:00:00Z"),
	})

	ids := []string{"evt-1", "missing", "evt-1"}
	reports := svc.ValidateBatch(context.Background(), testUserID, ids, "notion", nil)

	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	for i, id := range ids {
		if reports[i].EventID != id {
			t.Errorf("report %d: expected event %s, got %s", i, id, reports[i].EventID)
		}
	}

	// Sequential, no dedup: the first evt-1 pass writes the fingerprint
	// the second evt-1 pass then trips over
	if !reports[0].Approved() {
		t.Error("first occurrence should be approved")
	}
	if reports[1].Approved() {
		t.Error("missing event should be rejected")
	}
	if reports[2].Approved() {
		t.Error("duplicate occurrence should be rejected by its own fingerprint")
	}
}

func TestSummarizeReports(t *testing.T) {
	svc := newTestValidator(setupTestDB(t))

	reason := "Event is in the trash"
	reports := []*dtos.ValidationReport{
		{OverallResult: constants.ValidationApproved, CaseClassification: constants.CaseNewEvent},
		{OverallResult: constants.ValidationApproved, CaseClassification: constants.CaseNewEvent},
		{OverallResult: constants.ValidationRejected, CaseClassification: constants.CaseTrashedEvent, RejectionReason: &reason},
		{OverallResult: constants.ValidationRejected, CaseClassification: constants.CaseMissingEvent},
	}

	summary := svc.SummarizeReports(reports)

	if summary.Total != 4 || summary.Approved != 2 || summary.Rejected != 2 {
		t.Errorf("unexpected totals: %+v", summary)
	}
	if summary.ApprovalRate != 50.0 {
		t.Errorf("expected 50%% approval rate, got %f", summary.ApprovalRate)
	}
	if summary.Classifications["new_event"] != 2 || summary.Classifications["trashed_event"] != 1 {
		t.Errorf("unexpected classifications: %v", summary.Classifications)
	}
	if summary.RejectionReasons[reason] != 1 {
		t.Errorf("expected reason %q counted once, got %v", reason, summary.RejectionReasons)
	}
	if summary.RejectionReasons["Unknown"] != 1 {
		t.Errorf("rejections without a reason should count as Unknown, got %v", summary.RejectionReasons)
	}
}

func TestSummarizeReportsEmpty(t *testing.T) {
	svc := newTestValidator(setupTestDB(t))

	summary := svc.SummarizeReports(nil)

	if summary.Total != 0 || summary.Approved != 0 || summary.Rejected != 0 {
		t.Errorf("unexpected totals for empty batch: %+v", summary)
	}
	if summary.ApprovalRate != 0 {
		t.Errorf("empty batch approval rate should be 0, got %f", summary.ApprovalRate)
	}
}
