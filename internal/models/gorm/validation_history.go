package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidationHistory is the append-only audit row for a validation attempt.
// Written once, read for history/reporting only.
type ValidationHistory struct {
	ID                 string    `gorm:"column:id;primaryKey;type:uuid"`
	UserID             string    `gorm:"column:user_id;type:uuid;index:idx_validation_history_user"`
	CalendarID         string    `gorm:"column:calendar_id"`
	SourceEventID      string    `gorm:"column:source_event_id;index"`
	TargetPlatform     string    `gorm:"column:target_platform"`
	Tier1Passed        bool      `gorm:"column:tier1_passed"`
	Tier2Passed        bool      `gorm:"column:tier2_passed"`
	Tier3Passed        bool      `gorm:"column:tier3_passed"`
	OverallResult      string    `gorm:"column:overall_result;type:varchar(20)"`
	CaseClassification string    `gorm:"column:case_classification;type:varchar(30)"`
	ContentHash        string    `gorm:"column:content_hash"`
	RejectionReason    *string   `gorm:"column:rejection_reason"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ValidationHistory) TableName() string {
	return "validation_history"
}

// BeforeCreate GORM hook
func (h *ValidationHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}
