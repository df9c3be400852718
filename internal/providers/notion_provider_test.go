package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notionflow/server/internal/constants"
)

func newTestNotionProvider(serverURL string) *NotionProvider {
	return &NotionProvider{
		BaseURL:     serverURL,
		AccessToken: "test-token",
		DatabaseID:  "db-1",
		Client:      http.DefaultClient,
	}
}

func TestNotionProviderCreateEvent(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotVersion string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"page-123","object":"page"}`)
	}))
	defer server.Close()

	p := newTestNotionProvider(server.URL)

	id, err := p.CreateEvent(context.Background(), &Event{
		SourceID:  "evt-1",
		Title:     "Team Standup",
		StartDate: "2026-03-01",
		StartTime: "09:00:00",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if id != "page-123" {
		t.Errorf("expected page id from the platform, got %q", id)
	}
	if gotMethod != http.MethodPost || gotPath != "/pages" {
		t.Errorf("expected POST /pages, got %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
	if gotVersion != notionAPIVersion {
		t.Errorf("unexpected Notion-Version header: %q", gotVersion)
	}

	parent, _ := gotBody["parent"].(map[string]interface{})
	if parent["database_id"] != "db-1" {
		t.Errorf("expected database parent, got %v", gotBody["parent"])
	}
}

func TestNotionProviderDeleteArchivesPage(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, `{"id":"page-123","object":"page"}`)
	}))
	defer server.Close()

	p := newTestNotionProvider(server.URL)

	if err := p.DeleteEvent(context.Background(), "page-123"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if gotMethod != http.MethodPatch || gotPath != "/pages/page-123" {
		t.Errorf("expected PATCH /pages/page-123, got %s %s", gotMethod, gotPath)
	}
	if gotBody["archived"] != true {
		t.Errorf("expected archived payload, got %v", gotBody)
	}
}

func TestNotionProviderRequiresAccessToken(t *testing.T) {
	p := newTestNotionProvider("http://unused")
	p.AccessToken = ""

	_, err := p.CreateEvent(context.Background(), &Event{Title: "x", StartDate: "2026-03-01"})
	if err == nil {
		t.Fatal("expected error without an access token")
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) || provErr.Code != constants.ErrCodeInvalidToken {
		t.Errorf("expected %s, got %v", constants.ErrCodeInvalidToken, err)
	}
}

func TestNotionProviderBuildProperties(t *testing.T) {
	p := newTestNotionProvider("http://unused")

	props := p.buildProperties(&Event{
		Title:     "Team Standup",
		StartDate: "2026-03-01",
		StartTime: "09:00:00",
		EndDate:   "2026-03-01",
		EndTime:   "09:30:00",
	})

	date := props["Date"].(map[string]interface{})["date"].(map[string]interface{})
	if date["start"] != "2026-03-01T09:00:00" || date["end"] != "2026-03-01T09:30:00" {
		t.Errorf("unexpected timed date property: %v", date)
	}

	props = p.buildProperties(&Event{
		Title:     "Company Offsite",
		IsAllDay:  true,
		StartDate: "2026-03-01",
		EndDate:   "2026-03-02",
	})

	date = props["Date"].(map[string]interface{})["date"].(map[string]interface{})
	if date["start"] != "2026-03-01" || date["end"] != "2026-03-02" {
		t.Errorf("unexpected all-day date property: %v", date)
	}
}

func TestHandleHTTPErrorMapping(t *testing.T) {
	cases := []struct {
		status   int
		wantCode string
	}{
		{http.StatusUnauthorized, constants.ErrCodeAuthenticationFailed},
		{http.StatusForbidden, constants.ErrCodeCalendarAccessDenied},
		{http.StatusNotFound, constants.ErrCodeEventNotFound},
		{http.StatusTooManyRequests, constants.ErrCodeRateLimited},
		{http.StatusBadGateway, constants.ErrCodeNetworkError},
	}

	for _, c := range cases {
		resp := &http.Response{
			StatusCode: c.status,
			Body:       io.NopCloser(strings.NewReader(`{"message":"nope"}`)),
		}

		err := handleHTTPError(resp, constants.PlatformNotion)
		if err == nil {
			t.Errorf("status %d: expected error", c.status)
			continue
		}

		var provErr *ProviderError
		if !errors.As(err, &provErr) {
			t.Errorf("status %d: expected ProviderError, got %T", c.status, err)
			continue
		}
		if provErr.Code != c.wantCode {
			t.Errorf("status %d: expected code %s, got %s", c.status, c.wantCode, provErr.Code)
		}
	}
}

func TestHandleHTTPErrorPassesSuccess(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{}`)),
	}

	if err := handleHTTPError(resp, constants.PlatformNotion); err != nil {
		t.Errorf("2xx responses must not error: %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	for _, platform := range []constants.Platform{
		constants.PlatformNotion,
		constants.PlatformGoogle,
		constants.PlatformOutlook,
		constants.PlatformSlack,
	} {
		p, err := NewProvider(platform, "tok")
		if err != nil {
			t.Errorf("%s: unexpected error: %v", platform, err)
			continue
		}
		if p.GetProviderType() != platform {
			t.Errorf("%s: provider reports %s", platform, p.GetProviderType())
		}
	}

	if _, err := NewProvider(constants.Platform("fax"), "tok"); err == nil {
		t.Error("expected error for unsupported platform")
	}
}
