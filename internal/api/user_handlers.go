package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"notionflow/server/internal/auth"
	"notionflow/server/internal/common"
	"notionflow/server/internal/constants"
)

type registerUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RegisterUser handles POST /api/v1/users/register
// Creates (or reuses) the account and opens a session. Requires an API key
// since there is no session yet.
func (h *Handlers) RegisterUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req registerUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Email == "" {
			common.RespondError(w, initTime, nil, "email is required", http.StatusBadRequest)
			return
		}

		user, err := h.deps.Services.User.GetOrCreateUser(r.Context(), req.Email, req.Name)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to register user", http.StatusInternalServerError)
			return
		}

		// Build the session's platform memberships from active connections
		conns, err := h.deps.Services.User.ListConnections(r.Context(), user.ID)
		if err != nil {
			log.Printf("[RegisterUser] Failed to list connections: %v", err)
		}

		memberships := make([]common.PlatformMembership, 0, len(conns))
		for _, conn := range conns {
			memberships = append(memberships, common.PlatformMembership{
				Platform: conn.Platform,
				AutoSync: conn.AutoSync,
			})
		}

		activePlatform := ""
		if len(memberships) > 0 {
			activePlatform = string(memberships[0].Platform)
		}

		sessionID, err := h.deps.Services.Session.CreateSession(
			r.Context(),
			user.ID,
			user.Email,
			constants.Platform(activePlatform),
			memberships,
		)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to create session", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "nf_session",
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		common.RespondSuccess(w, initTime, "User registered", map[string]interface{}{
			"user_id":    user.ID,
			"email":      user.Email,
			"session_id": sessionID,
		}, http.StatusCreated)
	}
}

// GetUserDetails handles GET /api/v1/user/details
func (h *Handlers) GetUserDetails() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		user, err := h.deps.Services.User.GetUser(r.Context(), claims.UserID())
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to load user", http.StatusInternalServerError)
			return
		}
		if user == nil {
			common.RespondError(w, initTime, nil, "User not found", http.StatusNotFound)
			return
		}

		if err := h.deps.Services.VisitTracker.RecordVisit(r.Context(), user.ID); err != nil {
			log.Printf("[GetUserDetails] Failed to record visit: %v", err)
		}

		common.RespondSuccess(w, initTime, "User details", user)
	}
}
