package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusSource records which flow moved a violation.
type StatusSource string

const (
	StatusSourceIssue     StatusSource = "issue"
	StatusSourceDashboard StatusSource = "dashboard"
	StatusSourcePayment   StatusSource = "payment"
)

// ViolationStatusLog is append-only; OldStatus is nil for the issuing row.
type ViolationStatusLog struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ViolationID uuid.UUID        `gorm:"type:uuid;not null" json:"violation_id"`
	OldStatus   *ViolationStatus `gorm:"type:violation_status" json:"old_status,omitempty"`
	NewStatus   ViolationStatus  `gorm:"type:violation_status;not null" json:"new_status"`
	Source      StatusSource     `gorm:"type:varchar(16);not null" json:"source"`
	Note        string           `gorm:"type:text" json:"note,omitempty"`
	ChangedBy   *uuid.UUID       `gorm:"type:uuid" json:"changed_by,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (ViolationStatusLog) TableName() string {
	return "violation_status_log"
}

func (l *ViolationStatusLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
