package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"notionflow/server/internal/constants"
)

// GoogleCalendarProvider implements CalendarProvider against the Google
// Calendar v3 REST API
type GoogleCalendarProvider struct {
	BaseURL     string
	AccessToken string
	CalendarID  string
	Client      *http.Client
}

// NewGoogleCalendarProvider creates a new Google Calendar provider
func NewGoogleCalendarProvider(accessToken string) *GoogleCalendarProvider {
	baseURL := os.Getenv("GOOGLE_CALENDAR_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/calendar/v3" // Default
	}

	calendarID := os.Getenv("GOOGLE_CALENDAR_ID")
	if calendarID == "" {
		calendarID = "primary"
	}

	return &GoogleCalendarProvider{
		BaseURL:     baseURL,
		AccessToken: accessToken,
		CalendarID:  calendarID,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetProviderType returns the platform identifier
func (p *GoogleCalendarProvider) GetProviderType() constants.Platform {
	return constants.PlatformGoogle
}

type googleEventTime struct {
	Date     string `json:"date,omitempty"`     // all-day
	DateTime string `json:"dateTime,omitempty"` // timed, RFC3339
	TimeZone string `json:"timeZone,omitempty"`
}

type googleEventPayload struct {
	Summary     string          `json:"summary"`
	Description string          `json:"description,omitempty"`
	Location    string          `json:"location,omitempty"`
	Start       googleEventTime `json:"start"`
	End         googleEventTime `json:"end"`
}

type googleEventResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (p *GoogleCalendarProvider) buildPayload(event *Event) googleEventPayload {
	payload := googleEventPayload{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
	}

	if event.IsAllDay || event.StartTime == "" {
		payload.Start = googleEventTime{Date: event.StartDate}
		endDate := event.EndDate
		if endDate == "" {
			endDate = event.StartDate
		}
		payload.End = googleEventTime{Date: endDate}
	} else {
		payload.Start = googleEventTime{DateTime: fmt.Sprintf("%sT%sZ", event.StartDate, event.StartTime)}
		endDate, endTime := event.EndDate, event.EndTime
		if endDate == "" || endTime == "" {
			endDate, endTime = event.StartDate, event.StartTime
		}
		payload.End = googleEventTime{DateTime: fmt.Sprintf("%sT%sZ", endDate, endTime)}
	}

	return payload
}

// CreateEvent inserts an event into the calendar and returns its id
func (p *GoogleCalendarProvider) CreateEvent(ctx context.Context, event *Event) (string, error) {
	endpoint := fmt.Sprintf("/calendars/%s/events", p.CalendarID)

	var result googleEventResponse
	if err := p.doRequest(ctx, "POST", endpoint, p.buildPayload(event), &result); err != nil {
		return "", err
	}

	return result.ID, nil
}

// UpdateEvent replaces an existing event
func (p *GoogleCalendarProvider) UpdateEvent(ctx context.Context, platformEventID string, event *Event) error {
	endpoint := fmt.Sprintf("/calendars/%s/events/%s", p.CalendarID, platformEventID)

	var result googleEventResponse
	return p.doRequest(ctx, "PUT", endpoint, p.buildPayload(event), &result)
}

// DeleteEvent removes an event from the calendar
func (p *GoogleCalendarProvider) DeleteEvent(ctx context.Context, platformEventID string) error {
	endpoint := fmt.Sprintf("/calendars/%s/events/%s", p.CalendarID, platformEventID)

	req, err := http.NewRequestWithContext(ctx, "DELETE", p.BaseURL+endpoint, nil)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Authorization", "Bearer "+p.AccessToken)

	resp, err := p.Client.Do(req)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	return handleHTTPError(resp, constants.PlatformGoogle)
}

func (p *GoogleCalendarProvider) doRequest(ctx context.Context, method string, endpoint string, payload interface{}, result interface{}) error {
	if p.AccessToken == "" {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidToken,
			Message: "Google access token is not set",
		}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to marshal request body",
			Err:     err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	req.Header.Set("Authorization", "Bearer "+p.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := handleHTTPError(resp, constants.PlatformGoogle); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
