package api

import (
	"encoding/json"
	"net/http"
	"time"

	"notionflow/server/internal/auth"
	"notionflow/server/internal/common"
	"notionflow/server/internal/constants"
	"notionflow/server/internal/models/dtos"
	"notionflow/server/internal/models/entities"

	"github.com/go-chi/chi/v5"
)

// UpsertConnection handles POST /api/v1/connections
// Stores or refreshes OAuth tokens obtained by the web client
func (h *Handlers) UpsertConnection() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.ConnectionUpsertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		conn, err := h.deps.Services.User.UpsertConnection(r.Context(), claims.UserID(), &req)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to store connection", http.StatusBadRequest)
			return
		}

		common.RespondSuccess(w, initTime, "Connection stored", sanitizeConnection(conn))
	}
}

// ListConnections handles GET /api/v1/connections
func (h *Handlers) ListConnections() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		conns, err := h.deps.Services.User.ListConnections(r.Context(), claims.UserID())
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to list connections", http.StatusInternalServerError)
			return
		}

		out := make([]map[string]interface{}, 0, len(conns))
		for i := range conns {
			out = append(out, sanitizeConnection(&conns[i]))
		}

		common.RespondSuccess(w, initTime, "Connections", out)
	}
}

// DisconnectPlatform handles DELETE /api/v1/connections/{platform}
func (h *Handlers) DisconnectPlatform() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		platform := constants.Platform(chi.URLParam(r, "platform"))
		if !platform.IsSupported() {
			common.RespondError(w, initTime, nil, "Unsupported platform", http.StatusBadRequest)
			return
		}

		if err := h.deps.Services.User.DisconnectPlatform(r.Context(), claims.UserID(), platform); err != nil {
			common.RespondError(w, initTime, err, "Failed to disconnect platform", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Platform disconnected", nil)
	}
}

// sanitizeConnection strips token material before a connection leaves the API
func sanitizeConnection(conn *entities.PlatformConnection) map[string]interface{} {
	return map[string]interface{}{
		"id":           conn.ID,
		"platform":     conn.Platform,
		"workspace_id": conn.WorkspaceID,
		"auto_sync":    conn.AutoSync,
		"is_active":    conn.IsActive,
		"token_expiry": conn.TokenExpiry,
		"created_at":   conn.CreatedAt,
		"updated_at":   conn.UpdatedAt,
	}
}
