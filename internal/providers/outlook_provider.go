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

// OutlookProvider implements CalendarProvider against the Microsoft Graph
// events API
type OutlookProvider struct {
	BaseURL     string
	AccessToken string
	Client      *http.Client
}

// NewOutlookProvider creates a new Outlook provider
func NewOutlookProvider(accessToken string) *OutlookProvider {
	baseURL := os.Getenv("GRAPH_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://graph.microsoft.com/v1.0" // Default
	}

	return &OutlookProvider{
		BaseURL:     baseURL,
		AccessToken: accessToken,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetProviderType returns the platform identifier
func (p *OutlookProvider) GetProviderType() constants.Platform {
	return constants.PlatformOutlook
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphEventPayload struct {
	Subject  string         `json:"subject"`
	Body     *graphItemBody `json:"body,omitempty"`
	Start    graphDateTime  `json:"start"`
	End      graphDateTime  `json:"end"`
	IsAllDay bool           `json:"isAllDay"`
	Location *graphLocation `json:"location,omitempty"`
}

type graphItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphLocation struct {
	DisplayName string `json:"displayName"`
}

type graphEventResponse struct {
	ID string `json:"id"`
}

func (p *OutlookProvider) buildPayload(event *Event) graphEventPayload {
	payload := graphEventPayload{
		Subject:  event.Title,
		IsAllDay: event.IsAllDay,
	}

	if event.Description != "" {
		payload.Body = &graphItemBody{ContentType: "text", Content: event.Description}
	}
	if event.Location != "" {
		payload.Location = &graphLocation{DisplayName: event.Location}
	}

	// Graph requires midnight-to-midnight ranges for all-day events
	if event.IsAllDay || event.StartTime == "" {
		payload.Start = graphDateTime{DateTime: event.StartDate + "T00:00:00", TimeZone: "UTC"}
		endDate := event.EndDate
		if endDate == "" {
			endDate = event.StartDate
		}
		payload.End = graphDateTime{DateTime: endDate + "T00:00:00", TimeZone: "UTC"}
	} else {
		payload.Start = graphDateTime{DateTime: fmt.Sprintf("%sT%s", event.StartDate, event.StartTime), TimeZone: "UTC"}
		endDate, endTime := event.EndDate, event.EndTime
		if endDate == "" || endTime == "" {
			endDate, endTime = event.StartDate, event.StartTime
		}
		payload.End = graphDateTime{DateTime: fmt.Sprintf("%sT%s", endDate, endTime), TimeZone: "UTC"}
	}

	return payload
}

// CreateEvent writes an event to the user's default calendar
func (p *OutlookProvider) CreateEvent(ctx context.Context, event *Event) (string, error) {
	var result graphEventResponse
	if err := p.doRequest(ctx, "POST", "/me/events", p.buildPayload(event), &result); err != nil {
		return "", err
	}

	return result.ID, nil
}

// UpdateEvent patches an existing event
func (p *OutlookProvider) UpdateEvent(ctx context.Context, platformEventID string, event *Event) error {
	var result graphEventResponse
	return p.doRequest(ctx, "PATCH", "/me/events/"+platformEventID, p.buildPayload(event), &result)
}

// DeleteEvent removes the event
func (p *OutlookProvider) DeleteEvent(ctx context.Context, platformEventID string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", p.BaseURL+"/me/events/"+platformEventID, nil)
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

	return handleHTTPError(resp, constants.PlatformOutlook)
}

func (p *OutlookProvider) doRequest(ctx context.Context, method string, endpoint string, payload interface{}, result interface{}) error {
	if p.AccessToken == "" {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidToken,
			Message: "Outlook access token is not set",
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

	if err := handleHTTPError(resp, constants.PlatformOutlook); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
