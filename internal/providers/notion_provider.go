package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"notionflow/server/internal/constants"
)

// NotionProvider implements CalendarProvider against the Notion REST API.
// Events live as pages inside a calendar database; the database id rides on
// the provider.
type NotionProvider struct {
	BaseURL     string
	AccessToken string
	DatabaseID  string
	Client      *http.Client
}

const notionAPIVersion = "2022-06-28"

// NewNotionProvider creates a new Notion provider
func NewNotionProvider(accessToken string) *NotionProvider {
	baseURL := os.Getenv("NOTION_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.notion.com/v1" // Default
	}

	return &NotionProvider{
		BaseURL:     baseURL,
		AccessToken: accessToken,
		DatabaseID:  os.Getenv("NOTION_DATABASE_ID"),
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetProviderType returns the platform identifier
func (p *NotionProvider) GetProviderType() constants.Platform {
	return constants.PlatformNotion
}

// notionPageRequest is the create/update payload for a calendar page
type notionPageRequest struct {
	Parent     *notionParent             `json:"parent,omitempty"`
	Properties map[string]interface{}    `json:"properties"`
}

type notionParent struct {
	DatabaseID string `json:"database_id"`
}

type notionPageResponse struct {
	ID     string `json:"id"`
	Object string `json:"object"`
}

// buildProperties maps a provider-neutral event onto Notion page properties
func (p *NotionProvider) buildProperties(event *Event) map[string]interface{} {
	dateProp := map[string]interface{}{}
	if event.IsAllDay || event.StartTime == "" {
		dateProp["start"] = event.StartDate
		if event.EndDate != "" && event.EndDate != event.StartDate {
			dateProp["end"] = event.EndDate
		}
	} else {
		dateProp["start"] = fmt.Sprintf("%sT%s", event.StartDate, event.StartTime)
		if event.EndDate != "" && event.EndTime != "" {
			dateProp["end"] = fmt.Sprintf("%sT%s", event.EndDate, event.EndTime)
		}
	}

	properties := map[string]interface{}{
		"Name": map[string]interface{}{
			"title": []map[string]interface{}{
				{"text": map[string]interface{}{"content": event.Title}},
			},
		},
		"Date": map[string]interface{}{
			"date": dateProp,
		},
	}

	if event.Description != "" {
		properties["Description"] = map[string]interface{}{
			"rich_text": []map[string]interface{}{
				{"text": map[string]interface{}{"content": event.Description}},
			},
		}
	}

	return properties
}

// CreateEvent creates a page in the calendar database and returns its id
func (p *NotionProvider) CreateEvent(ctx context.Context, event *Event) (string, error) {
	payload := notionPageRequest{
		Parent:     &notionParent{DatabaseID: p.DatabaseID},
		Properties: p.buildProperties(event),
	}

	var result notionPageResponse
	if err := p.doRequest(ctx, "POST", "/pages", payload, &result); err != nil {
		return "", err
	}

	return result.ID, nil
}

// UpdateEvent patches an existing page's properties
func (p *NotionProvider) UpdateEvent(ctx context.Context, platformEventID string, event *Event) error {
	payload := notionPageRequest{
		Properties: p.buildProperties(event),
	}

	var result notionPageResponse
	return p.doRequest(ctx, "PATCH", "/pages/"+platformEventID, payload, &result)
}

// DeleteEvent archives the page (Notion has no hard delete over the API)
func (p *NotionProvider) DeleteEvent(ctx context.Context, platformEventID string) error {
	payload := map[string]interface{}{
		"archived": true,
	}

	var result notionPageResponse
	return p.doRequest(ctx, "PATCH", "/pages/"+platformEventID, payload, &result)
}

// doRequest executes one Notion API call with auth and version headers
func (p *NotionProvider) doRequest(ctx context.Context, method string, endpoint string, payload interface{}, result interface{}) error {
	if p.AccessToken == "" {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidToken,
			Message: "Notion access token is not set",
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

	url := p.BaseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	req.Header.Set("Authorization", "Bearer "+p.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionAPIVersion)

	resp, err := p.Client.Do(req)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := handleHTTPError(resp, constants.PlatformNotion); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// handleHTTPError maps non-2xx platform responses to ProviderErrors
func handleHTTPError(resp *http.Response, platform constants.Platform) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)

	var code string
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		code = constants.ErrCodeAuthenticationFailed
	case http.StatusForbidden:
		code = constants.ErrCodeCalendarAccessDenied
	case http.StatusNotFound:
		code = constants.ErrCodeEventNotFound
	case http.StatusTooManyRequests:
		code = constants.ErrCodeRateLimited
	default:
		code = constants.ErrCodeNetworkError
	}

	return &ProviderError{
		Code:    code,
		Message: constants.GetErrorMessage(code),
		Details: fmt.Sprintf("%s returned %d: %s", platform, resp.StatusCode, string(body)),
	}
}
