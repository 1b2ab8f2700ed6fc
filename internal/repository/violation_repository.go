package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"traffic-service/internal/model"
)

const maxViolationRows = 100

type ViolationRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewViolationRepository(db *gorm.DB, timeout time.Duration) *ViolationRepository {
	return &ViolationRepository{db: db, timeout: timeout}
}

type ViolationFilter struct {
	Scope     model.Scope
	OfficerID *uuid.UUID
	VehicleID *uuid.UUID
	Statuses  []model.ViolationStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	Limit     int
	Offset    int
}

// StatusChange describes the update applied by ChangeStatus.
type StatusChange struct {
	Target           model.ViolationStatus
	Source           model.StatusSource
	Note             string
	ChangedBy        *uuid.UUID
	PaidAt           *time.Time
	PaymentMethod    *model.PaymentMethod
	PaymentReference *string
	DisputeReason    *string
}

// StatusDecider inspects the locked row and returns the change to apply.
// A nil change leaves the row untouched.
type StatusDecider func(current *model.Violation) (*StatusChange, error)

// IssueBuilder receives the number of violations already recorded for the
// vehicle on the issuance day and returns the row to insert.
type IssueBuilder func(sameDayCount int64) (*model.Violation, error)

func (r *ViolationRepository) List(ctx context.Context, filter ViolationFilter) ([]model.Violation, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var violations []model.Violation
	if err := listQuery(r.db.WithContext(ctx), filter).
		Preload("Vehicle").
		Preload("Officer").
		Preload("ViolationType").
		Find(&violations).Error; err != nil {
		return nil, err
	}

	return violations, nil
}

// listQuery applies the filter, newest first, never more than maxViolationRows.
func listQuery(db *gorm.DB, filter ViolationFilter) *gorm.DB {
	query := db.Model(&model.Violation{})
	query = applyScopeFilter(query, filter.Scope)

	if filter.OfficerID != nil {
		query = query.Where("violations.officer_id = ?", *filter.OfficerID)
	}
	if filter.VehicleID != nil {
		query = query.Where("violations.vehicle_id = ?", *filter.VehicleID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("violations.status IN ?", filter.Statuses)
	}
	if filter.DateFrom != nil {
		query = query.Where("violations.issued_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("violations.issued_at <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		search := containsPattern(filter.Search)
		query = query.Joins("LEFT JOIN vehicles vh ON vh.id = violations.vehicle_id").
			Where("(violations.ticket_number ILIKE ? OR vh.license_plate ILIKE ? OR vh.owner_name ILIKE ?)", search, search, search)
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 && filter.Limit < maxViolationRows {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(maxViolationRows)
	}

	return query.Order("violations.issued_at DESC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches term literally inside an ILIKE; backslash is the
// default escape character in Postgres.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// sameDayQuery selects the vehicle's violations in the half-open window [dayStart, dayEnd).
func sameDayQuery(tx *gorm.DB, vehicleID uuid.UUID, dayStart, dayEnd time.Time) *gorm.DB {
	return tx.Model(&model.Violation{}).
		Where("vehicle_id = ? AND issued_at >= ? AND issued_at < ?", vehicleID, dayStart, dayEnd)
}

func (r *ViolationRepository) GetByID(ctx context.Context, scope model.Scope, id uuid.UUID) (*model.Violation, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := r.db.WithContext(ctx).
		Model(&model.Violation{}).
		Where("violations.id = ?", id)

	query = applyScopeFilter(query, scope)

	var violation model.Violation
	err := query.
		Preload("Vehicle").
		Preload("Officer").
		Preload("ViolationType").
		First(&violation).Error
	if err != nil {
		return nil, err
	}
	return &violation, nil
}

// Issue inserts a violation while holding a row lock on the vehicle, so the
// same-day count and the insert cannot interleave with another issuance for
// the same vehicle.
func (r *ViolationRepository) Issue(ctx context.Context, vehicleID uuid.UUID, dayStart, dayEnd time.Time, build IssueBuilder) (*model.Violation, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var created *model.Violation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle model.Vehicle
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&vehicle, "id = ?", vehicleID).Error; err != nil {
			return err
		}

		var count int64
		if err := sameDayQuery(tx, vehicleID, dayStart, dayEnd).Count(&count).Error; err != nil {
			return err
		}

		violation, err := build(count)
		if err != nil {
			return err
		}
		if err := tx.Create(violation).Error; err != nil {
			return err
		}

		if err := tx.Create(&model.ViolationStatusLog{
			ViolationID: violation.ID,
			NewStatus:   violation.Status,
			Source:      model.StatusSourceIssue,
			Note:        "issued",
			ChangedBy:   &violation.OfficerID,
		}).Error; err != nil {
			return err
		}

		created = violation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ChangeStatus locks the violation row, asks decide what to do with it and
// applies the result together with a status log entry.
func (r *ViolationRepository) ChangeStatus(ctx context.Context, id uuid.UUID, decide StatusDecider) (*model.Violation, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var result model.Violation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&result, "id = ?", id).Error; err != nil {
			return err
		}

		change, err := decide(&result)
		if err != nil {
			return err
		}
		if change == nil {
			return nil
		}

		updates := map[string]interface{}{"status": change.Target}
		if change.PaidAt != nil {
			updates["paid_at"] = *change.PaidAt
		}
		if change.PaymentMethod != nil {
			updates["payment_method"] = *change.PaymentMethod
		}
		if change.PaymentReference != nil {
			updates["payment_reference"] = *change.PaymentReference
		}
		if change.DisputeReason != nil {
			updates["dispute_reason"] = *change.DisputeReason
		}

		if err := tx.Model(&model.Violation{}).
			Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return err
		}

		prev := result.Status
		if err := tx.Create(&model.ViolationStatusLog{
			ViolationID: id,
			OldStatus:   &prev,
			NewStatus:   change.Target,
			Source:      change.Source,
			Note:        change.Note,
			ChangedBy:   change.ChangedBy,
		}).Error; err != nil {
			return err
		}

		return tx.First(&result, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ViolationRepository) StatusHistory(ctx context.Context, violationID uuid.UUID) ([]model.ViolationStatusLog, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var entries []model.ViolationStatusLog
	if err := r.db.WithContext(ctx).
		Where("violation_id = ?", violationID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func applyScopeFilter(query *gorm.DB, scope model.Scope) *gorm.DB {
	switch scope.Type {
	case model.ScopeAll:
		return query
	case model.ScopeOfficer:
		if scope.OfficerID == nil {
			return query.Where("1=0")
		}
		return query.Where("violations.officer_id = ?", *scope.OfficerID)
	default:
		return query.Where("1=0")
	}
}
