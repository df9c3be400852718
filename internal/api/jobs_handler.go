package api

import (
	"net/http"
	"time"

	"notionflow/server/internal/common"
	"notionflow/server/internal/jobs"
)

// JobsHandler exposes manual triggers for background jobs
type JobsHandler struct {
	calendarSync *jobs.CalendarSyncJob
}

func NewJobsHandler(calendarSync *jobs.CalendarSyncJob) *JobsHandler {
	return &JobsHandler{calendarSync: calendarSync}
}

// TriggerCalendarSync handles POST /api/v1/jobs/calendar-sync
// Runs the scheduled sync pass immediately
func (h *JobsHandler) TriggerCalendarSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if err := h.calendarSync.Run(r.Context()); err != nil {
			common.RespondError(w, initTime, err, "Calendar sync job failed", http.StatusInternalServerError)
			return
		}

		common.RespondSuccess(w, initTime, "Calendar sync job completed", nil)
	}
}
