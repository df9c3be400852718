package api

import (
	"encoding/json"
	"net/http"
	"time"

	"notionflow/server/internal/auth"
	"notionflow/server/internal/common"
	"notionflow/server/internal/constants"
	gormModels "notionflow/server/internal/models/gorm"

	"github.com/go-chi/chi/v5"
)

type ingestEventRequest struct {
	ID             string  `json:"id"`
	CalendarID     string  `json:"calendar_id"`
	Title          string  `json:"title"`
	Description    *string `json:"description,omitempty"`
	Location       *string `json:"location,omitempty"`
	Status         string  `json:"status,omitempty"`
	StartDateTime  *string `json:"start_datetime,omitempty"`
	EndDateTime    *string `json:"end_datetime,omitempty"`
	StartDate      *string `json:"start_date,omitempty"`
	EndDate        *string `json:"end_date,omitempty"`
	IsAllDay       bool    `json:"is_all_day"`
	SourcePlatform string  `json:"source_platform"`
}

// IngestEvents handles POST /api/v1/events
// Upserts a batch of events pulled from a source platform by the web client
func (h *Handlers) IngestEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var reqs []ingestEventRequest
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		if len(reqs) == 0 {
			common.RespondError(w, initTime, nil, "At least one event is required", http.StatusBadRequest)
			return
		}

		stored := 0
		for _, req := range reqs {
			if req.ID == "" || req.CalendarID == "" {
				continue
			}

			status := req.Status
			if status == "" {
				status = constants.EventStatusConfirmed
			}

			event := &gormModels.CalendarEvent{
				ID:             req.ID,
				UserID:         claims.UserID(),
				CalendarID:     req.CalendarID,
				Title:          req.Title,
				Description:    req.Description,
				Location:       req.Location,
				Status:         status,
				StartDateTime:  req.StartDateTime,
				EndDateTime:    req.EndDateTime,
				StartDate:      req.StartDate,
				EndDate:        req.EndDate,
				IsAllDay:       req.IsAllDay,
				SourcePlatform: req.SourcePlatform,
			}

			if err := h.deps.Repo.Events.Upsert(r.Context(), event); err != nil {
				common.RespondError(w, initTime, err, "Failed to store events", http.StatusInternalServerError)
				return
			}
			stored++
		}

		common.RespondSuccess(w, initTime, "Events stored", map[string]int{"stored": stored})
	}
}

// ListCalendarEvents handles GET /api/v1/calendars/{calendar_id}/events
func (h *Handlers) ListCalendarEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		calendarID := chi.URLParam(r, "calendar_id")
		if calendarID == "" {
			common.RespondError(w, initTime, nil, "calendar_id is required", http.StatusBadRequest)
			return
		}

		events, err := h.deps.Repo.Events.ListByCalendar(r.Context(), claims.UserID(), calendarID, 500)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to list events", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Calendar events", events)
	}
}
