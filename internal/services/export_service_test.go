package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"notionflow/server/internal/common"
	"notionflow/server/internal/constants"
	"notionflow/server/internal/db/repositories"
	gormModels "notionflow/server/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

func newTestExportService(db *gormlib.DB) *ExportService {
	signer := common.NewURLSignerService([]byte("test-signing-secret"), nil)
	return NewExportService(
		repositories.NewCalendarRepo(db),
		repositories.NewEventRepo(db),
		repositories.NewSyncHistoryRepo(db),
		signer,
	)
}

func TestGenerateExportLink(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestExportService(db)

	if err := db.Create(&gormModels.Calendar{
		ID:             "cal-1",
		UserID:         testUserID,
		Name:           "Work",
		SourcePlatform: "notion",
	}).Error; err != nil {
		t.Fatalf("failed to seed calendar: %v", err)
	}

	resp, err := svc.GenerateExportLink(context.Background(), testUserID, "cal-1")
	if err != nil {
		t.Fatalf("failed to generate link: %v", err)
	}

	if !strings.Contains(resp.URL, "/api/v1/export/ics?token=") {
		t.Errorf("unexpected link shape: %s", resp.URL)
	}
	if resp.ExpiresIn != int(exportLinkTTL.Seconds()) {
		t.Errorf("expected expires_in %d, got %d", int(exportLinkTTL.Seconds()), resp.ExpiresIn)
	}
}

func TestGenerateExportLinkRequiresOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestExportService(db)

	if err := db.Create(&gormModels.Calendar{
		ID:             "cal-1",
		UserID:         "22222222-2222-2222-2222-222222222222",
		Name:           "Not yours",
		SourcePlatform: "notion",
	}).Error; err != nil {
		t.Fatalf("failed to seed calendar: %v", err)
	}

	if _, err := svc.GenerateExportLink(context.Background(), testUserID, "cal-1"); err == nil {
		t.Fatal("expected error for a calendar owned by another user")
	}
}

func TestRenderICS(t *testing.T) {
	events := []gormModels.CalendarEvent{
		{
			ID:            "evt-1",
			Title:         "Team Standup",
			Description:   strPtr("daily sync; bring updates"),
			Location:      strPtr("Room 4"),
			Status:        constants.EventStatusConfirmed,
			StartDateTime: strPtr("2026-03-01T09:00:00Z"),
			EndDateTime:   strPtr("2026-03-01T09:30:00Z"),
		},
		{
			ID:        "evt-2",
			Title:     "Company Offsite",
			Status:    constants.EventStatusCancelled,
			IsAllDay:  true,
			StartDate: strPtr("2026-03-05"),
			EndDate:   strPtr("2026-03-06"),
		},
	}

	doc := string(renderICS(events))

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0\r\n",
		"UID:evt-1@notionflow\r\n",
		"SUMMARY:Team Standup\r\n",
		"DESCRIPTION:daily sync\\; bring updates\r\n",
		"LOCATION:Room 4\r\n",
		"DTSTART:20260301T090000Z\r\n",
		"DTEND:20260301T093000Z\r\n",
		"STATUS:CONFIRMED\r\n",
		"UID:evt-2@notionflow\r\n",
		"DTSTART;VALUE=DATE:20260305\r\n",
		"DTEND;VALUE=DATE:20260306\r\n",
		"STATUS:CANCELLED\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}

	if got := strings.Count(doc, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("expected 2 VEVENT blocks, got %d", got)
	}
}

func TestRenderICSEmptyCalendar(t *testing.T) {
	doc := string(renderICS(nil))

	if !strings.HasPrefix(doc, "BEGIN:VCALENDAR\r\n") {
		t.Errorf("document must open the calendar: %q", doc)
	}
	if !strings.HasSuffix(doc, "END:VCALENDAR\r\n") {
		t.Errorf("document must close the calendar: %q", doc)
	}
	if strings.Contains(doc, "VEVENT") {
		t.Error("empty calendar must not contain events")
	}
}

func TestEscapeICSText(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"a;b", "a\\;b"},
		{"a,b", "a\\,b"},
		{"a\\b", "a\\\\b"},
		{"line one\nline two", "line one\\nline two"},
		{"crlf\r\nhere", "crlf\\nhere"},
	}

	for _, c := range cases {
		if got := escapeICSText(c.input); got != c.expected {
			t.Errorf("escapeICSText(%q) = %q, want %q", c.input, got, c.expected)
		}
	}
}

func TestWriteICSLineFolding(t *testing.T) {
	var b strings.Builder
	long := "SUMMARY:" + strings.Repeat("x", 200)
	writeICSLine(&b, long)

	out := b.String()

	if !strings.HasSuffix(out, "\r\n") {
		t.Error("line must end with CRLF")
	}

	for i, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		if len(line) > 76 { // 75 octets + leading fold space
			t.Errorf("line %d exceeds fold limit: %d octets", i, len(line))
		}
		if i > 0 && !strings.HasPrefix(line, " ") {
			t.Errorf("continuation line %d must start with a space", i)
		}
	}

	// Unfolding restores the original content
	unfolded := strings.ReplaceAll(out, "\r\n ", "")
	if strings.TrimSuffix(unfolded, "\r\n") != long {
		t.Error("unfolding the output should restore the original line")
	}
}

func TestWriteICSLineFoldingKeepsRunesIntact(t *testing.T) {
	var b strings.Builder
	long := "SUMMARY:" + strings.Repeat("café ", 40) // multi-byte é lands on fold boundaries
	writeICSLine(&b, long)

	out := b.String()

	for i, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		if !utf8.ValidString(line) {
			t.Errorf("line %d splits a multi-byte character: %q", i, line)
		}
		if len(line) > 76 {
			t.Errorf("line %d exceeds fold limit: %d octets", i, len(line))
		}
	}

	unfolded := strings.ReplaceAll(out, "\r\n ", "")
	if strings.TrimSuffix(unfolded, "\r\n") != long {
		t.Error("unfolding the output should restore the original line")
	}
}
