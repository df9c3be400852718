package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"notionflow/server/internal/common"
	"notionflow/server/internal/constants"
	"notionflow/server/internal/db/repositories"
	"notionflow/server/internal/models/dtos"
	gormModels "notionflow/server/internal/models/gorm"
)

// ExportService renders calendars as iCalendar files and manages the
// presigned single-use links that gate access to them.
type ExportService struct {
	calendarRepo    *repositories.CalendarRepo
	eventRepo       *repositories.EventRepo
	syncHistoryRepo *repositories.SyncHistoryRepo
	signer          *common.URLSignerService
}

// NewExportService creates a new ExportService with dependencies
func NewExportService(
	calendarRepo *repositories.CalendarRepo,
	eventRepo *repositories.EventRepo,
	syncHistoryRepo *repositories.SyncHistoryRepo,
	signer *common.URLSignerService,
) *ExportService {
	return &ExportService{
		calendarRepo:    calendarRepo,
		eventRepo:       eventRepo,
		syncHistoryRepo: syncHistoryRepo,
		signer:          signer,
	}
}

const exportLinkTTL = 15 * time.Minute

// GenerateExportLink creates a presigned single-use download link for one
// of the user's calendars
func (s *ExportService) GenerateExportLink(
	ctx context.Context,
	userID, calendarID string,
) (*dtos.ExportLinkResponse, error) {
	calendar, err := s.calendarRepo.FindByUserAndID(ctx, userID, calendarID)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar: %w", err)
	}
	if calendar == nil {
		return nil, fmt.Errorf("calendar not found: %s", calendarID)
	}

	token, err := s.signer.GeneratePresignedURL(userID, calendarID, exportLinkTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate export token: %w", err)
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &dtos.ExportLinkResponse{
		URL:       fmt.Sprintf("%s/api/v1/export/ics?token=%s", baseURL, token),
		ExpiresIn: int(exportLinkTTL.Seconds()),
	}, nil
}

// ExportICS validates the presigned token, marks it used, and renders the
// calendar's events as an iCalendar document. Returns the document and a
// suggested filename.
func (s *ExportService) ExportICS(ctx context.Context, tokenString string) ([]byte, string, error) {
	token, err := s.signer.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, "", fmt.Errorf("invalid export token: %w", err)
	}

	if err := s.signer.MarkTokenAsUsed(ctx, token.TokenID); err != nil {
		return nil, "", fmt.Errorf("failed to consume export token: %w", err)
	}

	events, err := s.eventRepo.ListByCalendar(ctx, token.UserID, token.CalendarID, maxEventsPerSync)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list events: %w", err)
	}

	doc := renderICS(events)

	if _, err := s.syncHistoryRepo.RecordSync(ctx, token.UserID, "ics", constants.SyncEventExport, len(events), len(events)); err != nil {
		log.Printf("[ExportService] Failed to record export history: %v", err)
	}

	filename := fmt.Sprintf("notionflow-%s.ics", token.CalendarID)
	return doc, filename, nil
}

// renderICS produces an RFC 5545 document. Cancelled events are included
// with STATUS:CANCELLED so subscribing clients can drop them.
func renderICS(events []gormModels.CalendarEvent) []byte {
	var b strings.Builder

	writeICSLine(&b, "BEGIN:VCALENDAR")
	writeICSLine(&b, "VERSION:2.0")
	writeICSLine(&b, "PRODID:-//NotionFlow//Calendar Export//EN")
	writeICSLine(&b, "CALSCALE:GREGORIAN")

	now := time.Now().UTC().Format("20060102T150405Z")

	for i := range events {
		event := &events[i]

		writeICSLine(&b, "BEGIN:VEVENT")
		writeICSLine(&b, "UID:"+escapeICSText(event.ID)+"@notionflow")
		writeICSLine(&b, "DTSTAMP:"+now)
		writeICSLine(&b, "SUMMARY:"+escapeICSText(event.Title))

		if event.Description != nil && *event.Description != "" {
			writeICSLine(&b, "DESCRIPTION:"+escapeICSText(*event.Description))
		}
		if event.Location != nil && *event.Location != "" {
			writeICSLine(&b, "LOCATION:"+escapeICSText(*event.Location))
		}

		if start := icsStart(event); start != "" {
			writeICSLine(&b, start)
		}
		if end := icsEnd(event); end != "" {
			writeICSLine(&b, end)
		}

		switch event.Status {
		case constants.EventStatusCancelled:
			writeICSLine(&b, "STATUS:CANCELLED")
		case constants.EventStatusTentative:
			writeICSLine(&b, "STATUS:TENTATIVE")
		default:
			writeICSLine(&b, "STATUS:CONFIRMED")
		}

		writeICSLine(&b, "END:VEVENT")
	}

	writeICSLine(&b, "END:VCALENDAR")
	return []byte(b.String())
}

func icsStart(event *gormModels.CalendarEvent) string {
	if event.IsAllDay {
		if event.StartDate == nil {
			return ""
		}
		return "DTSTART;VALUE=DATE:" + strings.ReplaceAll(*event.StartDate, "-", "")
	}
	if event.StartDateTime == nil {
		return ""
	}
	t, err := time.Parse(time.RFC3339, *event.StartDateTime)
	if err != nil {
		return ""
	}
	return "DTSTART:" + t.UTC().Format("20060102T150405Z")
}

func icsEnd(event *gormModels.CalendarEvent) string {
	if event.IsAllDay {
		if event.EndDate == nil {
			return ""
		}
		return "DTEND;VALUE=DATE:" + strings.ReplaceAll(*event.EndDate, "-", "")
	}
	if event.EndDateTime == nil {
		return ""
	}
	t, err := time.Parse(time.RFC3339, *event.EndDateTime)
	if err != nil {
		return ""
	}
	return "DTEND:" + t.UTC().Format("20060102T150405Z")
}

// escapeICSText escapes per RFC 5545 section 3.3.11
func escapeICSText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeICSLine writes a content line with CRLF, folding at 75 octets.
// Folds only happen on rune boundaries; a multi-byte character is never
// split across a fold.
func writeICSLine(b *strings.Builder, line string) {
	const limit = 75
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}
