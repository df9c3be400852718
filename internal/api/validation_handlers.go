package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"notionflow/server/internal/auth"
	"notionflow/server/internal/common"
	"notionflow/server/internal/models/dtos"
)

// ValidateEvent handles POST /api/v1/validations
// Runs the three-tier pipeline for one event against a target platform
func (h *Handlers) ValidateEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.ValidateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.EventID == "" || req.TargetPlatform == "" {
			common.RespondError(w, initTime, nil, "event_id and target_platform are required", http.StatusBadRequest)
			return
		}

		report := h.deps.Services.Validation.ValidateEventForSync(
			r.Context(),
			claims.UserID(),
			req.EventID,
			req.TargetPlatform,
			req.TrashedEvents,
		)

		h.recordValidationMetrics([]*dtos.ValidationReport{report})

		common.RespondSuccess(w, initTime, "Validation complete", report)
	}
}

// ValidateBatch handles POST /api/v1/validations/batch
// Validates each event id in order and returns per-event reports plus a summary
func (h *Handlers) ValidateBatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		var req dtos.ValidateBatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		if len(req.EventIDs) == 0 || req.TargetPlatform == "" {
			common.RespondError(w, initTime, nil, "event_ids and target_platform are required", http.StatusBadRequest)
			return
		}

		reports := h.deps.Services.Validation.ValidateBatch(
			r.Context(),
			claims.UserID(),
			req.EventIDs,
			req.TargetPlatform,
			req.TrashedEvents,
		)
		summary := h.deps.Services.Validation.SummarizeReports(reports)

		h.recordValidationMetrics(reports)

		common.RespondSuccess(w, initTime, "Batch validation complete", dtos.BatchValidationResponse{
			Reports: reports,
			Summary: summary,
		})
	}
}

// GetValidationHistory handles GET /api/v1/validations/history?limit=N
func (h *Handlers) GetValidationHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
				limit = parsed
			}
		}

		rows, err := h.deps.Repo.ValidationHistory.ListByUser(r.Context(), claims.UserID(), limit)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to load validation history", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Validation history", rows)
	}
}

func (h *Handlers) recordValidationMetrics(reports []*dtos.ValidationReport) {
	if h.deps.Services.Metrics == nil {
		return
	}

	for _, report := range reports {
		h.deps.Services.Metrics.ValidationsTotal.WithLabelValues(
			string(report.OverallResult),
			report.CaseClassification.String(),
		).Inc()

		for _, tier := range []struct {
			n int
			t dtos.ValidationTier
		}{{1, report.Tier1}, {2, report.Tier2}, {3, report.Tier3}} {
			if !tier.t.Passed {
				h.deps.Services.Metrics.ValidationTierFailed.WithLabelValues(strconv.Itoa(tier.n)).Inc()
				break
			}
		}
	}
}
