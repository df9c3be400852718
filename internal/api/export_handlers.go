package api

import (
	"encoding/json"
	"net/http"
	"time"

	"notionflow/server/internal/auth"
	"notionflow/server/internal/common"
	"notionflow/server/internal/models/dtos"
)

// GenerateExportLink handles POST /api/v1/export/link
// Returns a presigned single-use URL for downloading a calendar as ICS
func (h *Handlers) GenerateExportLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.ExportLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.CalendarID == "" {
			common.RespondError(w, initTime, nil, "calendar_id is required", http.StatusBadRequest)
			return
		}

		link, err := h.deps.Services.Export.GenerateExportLink(r.Context(), claims.UserID(), req.CalendarID)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to generate export link", http.StatusBadRequest)
			return
		}

		common.RespondSuccess(w, initTime, "Export link generated", link)
	}
}

// DownloadICS handles GET /export/ics?token=...
// Public route; the presigned token is the only credential
func (h *Handlers) DownloadICS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "Missing token", http.StatusBadRequest)
			return
		}

		doc, filename, err := h.deps.Services.Export.ExportICS(r.Context(), token)
		if err != nil {
			http.Error(w, "Invalid or expired export link", http.StatusForbidden)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
		_, _ = w.Write(doc)
	}
}
