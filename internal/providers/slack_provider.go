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

// SlackProvider implements CalendarProvider against the Slack Web API.
// Slack has no calendar of its own; "syncing" an event posts a reminder
// message to the user's configured channel, and updates/deletes edit or
// remove that message.
type SlackProvider struct {
	BaseURL     string
	AccessToken string
	ChannelID   string
	Client      *http.Client
}

// NewSlackProvider creates a new Slack provider
func NewSlackProvider(accessToken string) *SlackProvider {
	baseURL := os.Getenv("SLACK_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://slack.com/api" // Default
	}

	return &SlackProvider{
		BaseURL:     baseURL,
		AccessToken: accessToken,
		ChannelID:   os.Getenv("SLACK_CHANNEL_ID"),
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetProviderType returns the platform identifier
func (p *SlackProvider) GetProviderType() constants.Platform {
	return constants.PlatformSlack
}

type slackPostMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type slackUpdateMessageRequest struct {
	Channel string `json:"channel"`
	TS      string `json:"ts"`
	Text    string `json:"text"`
}

type slackDeleteMessageRequest struct {
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

type slackAPIResponse struct {
	OK    bool   `json:"ok"`
	TS    string `json:"ts"`
	Error string `json:"error"`
}

// formatEventText renders the reminder message body
func formatEventText(event *Event) string {
	when := event.StartDate
	if !event.IsAllDay && event.StartTime != "" {
		when = fmt.Sprintf("%s %s", event.StartDate, event.StartTime)
	}

	text := fmt.Sprintf(":calendar: *%s* — %s", event.Title, when)
	if event.Location != "" {
		text += fmt.Sprintf(" (%s)", event.Location)
	}
	return text
}

// CreateEvent posts the event reminder and returns the message timestamp,
// which serves as the platform event id
func (p *SlackProvider) CreateEvent(ctx context.Context, event *Event) (string, error) {
	payload := slackPostMessageRequest{
		Channel: p.ChannelID,
		Text:    formatEventText(event),
	}

	result, err := p.doPost(ctx, "/chat.postMessage", payload)
	if err != nil {
		return "", err
	}

	return result.TS, nil
}

// UpdateEvent edits the reminder message in place
func (p *SlackProvider) UpdateEvent(ctx context.Context, platformEventID string, event *Event) error {
	payload := slackUpdateMessageRequest{
		Channel: p.ChannelID,
		TS:      platformEventID,
		Text:    formatEventText(event),
	}

	_, err := p.doPost(ctx, "/chat.update", payload)
	return err
}

// DeleteEvent removes the reminder message
func (p *SlackProvider) DeleteEvent(ctx context.Context, platformEventID string) error {
	payload := slackDeleteMessageRequest{
		Channel: p.ChannelID,
		TS:      platformEventID,
	}

	_, err := p.doPost(ctx, "/chat.delete", payload)
	return err
}

func (p *SlackProvider) doPost(ctx context.Context, endpoint string, payload interface{}) (*slackAPIResponse, error) {
	if p.AccessToken == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidToken,
			Message: "Slack access token is not set",
		}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to marshal request body",
			Err:     err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.BaseURL+endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	req.Header.Set("Authorization", "Bearer "+p.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := handleHTTPError(resp, constants.PlatformSlack); err != nil {
		return nil, err
	}

	var result slackAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// Slack reports failures in-band with HTTP 200
	if !result.OK {
		return nil, &ProviderError{
			Code:    constants.ErrCodeAuthenticationFailed,
			Message: constants.GetErrorMessage(constants.ErrCodeAuthenticationFailed),
			Details: result.Error,
		}
	}

	return &result, nil
}
