package api

import (
	"encoding/json"
	"net/http"
	"time"

	"notionflow/server/internal/auth"
	"notionflow/server/internal/common"
	"notionflow/server/internal/constants"
	"notionflow/server/internal/models/dtos"
)

// SyncCalendar handles POST /api/v1/sync
// Runs a one-way sync immediately, or enqueues it when the request asks for
// background processing
func (h *Handlers) SyncCalendar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.SyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.TargetPlatform == "" {
			common.RespondError(w, initTime, nil, "target_platform is required", http.StatusBadRequest)
			return
		}

		if req.Enqueue {
			items := make([]*common.SyncQueueItem, 0, len(req.EventIDs))
			for _, eventID := range req.EventIDs {
				items = append(items, &common.SyncQueueItem{
					UserID:         claims.UserID(),
					EventID:        eventID,
					TargetPlatform: req.TargetPlatform,
					RequestedBy:    claims.Source(),
					QueuedAt:       time.Now().UTC().Format(time.RFC3339),
				})
			}

			if len(items) == 0 {
				common.RespondError(w, initTime, nil, "event_ids are required for queued syncs", http.StatusBadRequest)
				return
			}

			if err := h.deps.Services.RedisQueue.EnqueueSyncBatch(r.Context(), constants.SyncQueueStream, items); err != nil {
				common.RespondError(w, initTime, err, "Failed to enqueue sync", http.StatusInternalServerError)
				return
			}

			common.RespondSuccess(w, initTime, "Sync enqueued", map[string]int{"queued": len(items)}, http.StatusAccepted)
			return
		}

		resp, err := h.deps.Services.Sync.SyncCalendar(r.Context(), claims.UserID(), &req, constants.SyncEventManual)
		if err != nil {
			common.RespondError(w, initTime, err, "Sync failed", http.StatusInternalServerError)
			return
		}

		if h.deps.Services.Metrics != nil && resp.Success {
			h.deps.Services.Metrics.EventsSyncedTotal.WithLabelValues(req.TargetPlatform).Add(float64(resp.EventsSynced))
		}

		common.RespondSuccess(w, initTime, "Sync complete", resp)
	}
}

// GetLastSync handles GET /api/v1/sync/last?platform=notion
func (h *Handlers) GetLastSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		platform := constants.Platform(r.URL.Query().Get("platform"))
		if !platform.IsSupported() {
			common.RespondError(w, initTime, nil, "Unsupported or missing platform", http.StatusBadRequest)
			return
		}

		lastSync, err := h.deps.Services.Sync.LastSyncTime(r.Context(), claims.UserID(), platform)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to load sync history", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Last sync time", map[string]interface{}{
			"platform":     platform,
			"last_sync_at": lastSync,
		})
	}
}
