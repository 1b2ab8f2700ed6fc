package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type ViolationStatus string

const (
	ViolationStatusPending   ViolationStatus = "pending"
	ViolationStatusPaid      ViolationStatus = "paid"
	ViolationStatusDisputed  ViolationStatus = "disputed"
	ViolationStatusCancelled ViolationStatus = "cancelled"
)

var violationTransitions = map[ViolationStatus][]ViolationStatus{
	ViolationStatusPending:  {ViolationStatusPaid, ViolationStatusDisputed, ViolationStatusCancelled},
	ViolationStatusDisputed: {ViolationStatusPaid},
}

func (s ViolationStatus) Valid() bool {
	switch s {
	case ViolationStatusPending, ViolationStatusPaid, ViolationStatusDisputed, ViolationStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s ViolationStatus) Terminal() bool {
	return len(violationTransitions[s]) == 0
}

func (s ViolationStatus) CanTransitionTo(target ViolationStatus) bool {
	for _, next := range violationTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// PayableStatuses lists the states a payment may settle.
func PayableStatuses() []ViolationStatus {
	return []ViolationStatus{ViolationStatusPending, ViolationStatusDisputed}
}

func (s ViolationStatus) Payable() bool {
	return slices.Contains(PayableStatuses(), s)
}

type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodManual PaymentMethod = "manual"
)

type Violation struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	TicketNumber     string          `gorm:"type:varchar(32);not null" json:"ticket_number"`
	VehicleID        uuid.UUID       `gorm:"type:uuid;not null" json:"vehicle_id"`
	OfficerID        uuid.UUID       `gorm:"type:uuid;not null" json:"officer_id"`
	ViolationTypeID  uuid.UUID       `gorm:"type:uuid;not null" json:"violation_type_id"`
	FineAmount       int64           `gorm:"not null" json:"fine_amount"`
	IssuedAt         time.Time       `gorm:"not null" json:"violation_date"`
	Location         string          `gorm:"type:text;not null" json:"location"`
	Notes            string          `gorm:"type:text" json:"notes"`
	Status           ViolationStatus `gorm:"type:violation_status;not null;default:'pending'" json:"status"`
	PaidAt           *time.Time      `json:"payment_date"`
	PaymentMethod    *PaymentMethod  `gorm:"type:varchar(32)" json:"payment_method"`
	PaymentReference *string         `gorm:"type:varchar(255)" json:"payment_reference"`
	DisputeReason    *string         `gorm:"type:text" json:"dispute_reason"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Vehicle       *Vehicle       `gorm:"foreignKey:VehicleID" json:"-"`
	Officer       *Officer       `gorm:"foreignKey:OfficerID" json:"-"`
	ViolationType *ViolationType `gorm:"foreignKey:ViolationTypeID" json:"-"`
}

func (Violation) TableName() string {
	return "violations"
}
