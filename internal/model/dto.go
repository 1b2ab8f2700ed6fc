package model

import (
	"time"

	"github.com/google/uuid"
)

type VehicleBrief struct {
	ID           uuid.UUID   `json:"id"`
	LicensePlate string      `json:"license_plate"`
	OwnerName    string      `json:"owner_name"`
	OwnerPhone   string      `json:"owner_phone"`
	OwnerEmail   *string     `json:"owner_email"`
	Type         VehicleType `json:"vehicle_type"`
}

type OfficerBrief struct {
	ID            uuid.UUID `json:"id"`
	ServiceNumber string    `json:"service_number"`
	FullName      string    `json:"full_name"`
	Rank          string    `json:"rank"`
}

type ViolationTypeBrief struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"violation_name"`
	Description string    `json:"description"`
}

// ViolationRecord is a violation joined with its vehicle, officer and type.
type ViolationRecord struct {
	Violation     Violation           `json:"violation"`
	ViolationType *ViolationTypeBrief `json:"violation_type"`
	Vehicle       *VehicleBrief       `json:"vehicle"`
	Officer       *OfficerBrief       `json:"officer"`
}

// IssueResult is returned to the officer client after a citation is written.
type IssueResult struct {
	ViolationID      uuid.UUID `json:"violation_id"`
	TicketNumber     string    `json:"ticket_number"`
	ViolationName    string    `json:"violation_name"`
	BaseFine         int64     `json:"base_fine"`
	Surcharge        int64     `json:"surcharge"`
	FinalFine        int64     `json:"final_fine"`
	IsRepeatOffender bool      `json:"is_repeat_offender"`
	IssuedAt         time.Time `json:"violation_date"`
}

type PaymentIntentResult struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"`
}

type VehicleStats struct {
	VehicleID         uuid.UUID `json:"vehicle_id"`
	TotalViolations   int64     `json:"total_violations"`
	PendingViolations int64     `json:"pending_violations"`
	PaidViolations    int64     `json:"paid_violations"`
	OutstandingAmount int64     `json:"outstanding_amount"`
	PaidAmount        int64     `json:"paid_amount"`
}

// ViolationTypeShare is one row of the per-type breakdown. TotalRevenue sums
// every fine issued under the type, paid or not.
type ViolationTypeShare struct {
	ViolationTypeID uuid.UUID `json:"violation_type_id"`
	Name            string    `json:"violation_name"`
	Count           int64     `json:"count"`
	TotalRevenue    int64     `json:"total_revenue"`
	Percentage      float64   `json:"percentage"`
}

type VehicleTypeShare struct {
	VehicleType VehicleType `json:"vehicle_type"`
	Count       int64       `json:"count"`
	Percentage  float64     `json:"percentage"`
}

type StatsBreakdown struct {
	ViolationTypes []ViolationTypeShare `json:"violation_types"`
	VehicleTypes   []VehicleTypeShare   `json:"vehicle_types"`
}

type DashboardStats struct {
	TotalOfficers     int64 `json:"total_officers"`
	ActiveOfficers    int64 `json:"active_officers"`
	TotalViolations   int64 `json:"total_violations"`
	PendingViolations int64 `json:"pending_violations"`
	TotalRevenue      int64 `json:"total_revenue"`
	TodayRevenue      int64 `json:"today_revenue"`
}
