package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"traffic-service/internal/model"
	"traffic-service/internal/repository"
)

type ViolationService struct {
	scopes     ScopeResolver
	violations ViolationStore
	types      ViolationTypeStore
	tickets    TicketGenerator
	loc        *time.Location
	now        func() time.Time
}

func NewViolationService(
	scopes ScopeResolver,
	violations ViolationStore,
	types ViolationTypeStore,
	tickets TicketGenerator,
	loc *time.Location,
) *ViolationService {
	if loc == nil {
		loc = time.Local
	}
	return &ViolationService{
		scopes:     scopes,
		violations: violations,
		types:      types,
		tickets:    tickets,
		loc:        loc,
		now:        time.Now,
	}
}

type IssueInput struct {
	VehicleID       uuid.UUID
	OfficerID       uuid.UUID
	ViolationTypeID uuid.UUID
	Location        string
	Notes           string
}

func (in IssueInput) validate() error {
	var missing []string
	if in.VehicleID == uuid.Nil {
		missing = append(missing, "vehicle_id")
	}
	if in.OfficerID == uuid.Nil {
		missing = append(missing, "officer_id")
	}
	if in.ViolationTypeID == uuid.Nil {
		missing = append(missing, "violation_type_id")
	}
	if strings.TrimSpace(in.Location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return invalid("required fields missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

type ListViolationsOptions struct {
	OfficerID *uuid.UUID
	VehicleID *uuid.UUID
	Statuses  []model.ViolationStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	Limit     int
	Offset    int
}

type ViolationDetails struct {
	Record  model.ViolationRecord      `json:"record"`
	History []model.ViolationStatusLog `json:"history"`
}

// Issue records a citation for the calling officer.
func (s *ViolationService) Issue(ctx context.Context, principal model.Principal, input IssueInput) (*model.IssueResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if !principal.IsOfficer() || principal.UserID != input.OfficerID {
		return nil, ErrPermissionDenied
	}
	if _, err := s.resolveScope(ctx, principal); err != nil {
		return nil, err
	}

	vt, err := s.types.GetByID(ctx, input.ViolationTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("violation type")
		}
		return nil, storeError("load violation type", err)
	}
	if !vt.IsActive {
		return nil, invalid("violation type is inactive")
	}

	issuedAt := s.now().In(s.loc)
	dayStart, dayEnd := dayBounds(issuedAt, s.loc)

	var fine Fine
	created, err := s.violations.Issue(ctx, input.VehicleID, dayStart, dayEnd, func(sameDay int64) (*model.Violation, error) {
		fine = ComputeFine(vt.BaseFine, sameDay)
		return &model.Violation{
			TicketNumber:    s.tickets.Next(issuedAt),
			VehicleID:       input.VehicleID,
			OfficerID:       input.OfficerID,
			ViolationTypeID: vt.ID,
			FineAmount:      fine.Final,
			IssuedAt:        issuedAt,
			Location:        strings.TrimSpace(input.Location),
			Notes:           strings.TrimSpace(input.Notes),
			Status:          model.ViolationStatusPending,
		}, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, notFound("vehicle")
		case repository.UniqueViolation(err, repository.ConstraintTicketNumber):
			return nil, ErrTicketCollision
		default:
			return nil, storeError("issue violation", err)
		}
	}

	return &model.IssueResult{
		ViolationID:      created.ID,
		TicketNumber:     created.TicketNumber,
		ViolationName:    vt.Name,
		BaseFine:         fine.Base,
		Surcharge:        fine.Surcharge,
		FinalFine:        fine.Final,
		IsRepeatOffender: fine.RepeatOffender,
		IssuedAt:         created.IssuedAt,
	}, nil
}

func (s *ViolationService) List(ctx context.Context, principal model.Principal, opts ListViolationsOptions) ([]model.ViolationRecord, error) {
	scope, err := s.resolveScope(ctx, principal)
	if err != nil {
		return nil, err
	}
	for _, status := range opts.Statuses {
		if !status.Valid() {
			return nil, invalid("unknown status %q", status)
		}
	}

	filter := repository.ViolationFilter{
		Scope:     scope,
		OfficerID: opts.OfficerID,
		VehicleID: opts.VehicleID,
		Statuses:  opts.Statuses,
		DateFrom:  opts.DateFrom,
		DateTo:    opts.DateTo,
		Search:    opts.Search,
		Limit:     opts.Limit,
		Offset:    opts.Offset,
	}

	violations, err := s.violations.List(ctx, filter)
	if err != nil {
		return nil, storeError("list violations", err)
	}

	records := make([]model.ViolationRecord, 0, len(violations))
	for _, v := range violations {
		records = append(records, buildViolationRecord(v))
	}
	return records, nil
}

func (s *ViolationService) GetDetails(ctx context.Context, principal model.Principal, id uuid.UUID) (*ViolationDetails, error) {
	scope, err := s.resolveScope(ctx, principal)
	if err != nil {
		return nil, err
	}

	violation, err := s.violations.GetByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("violation")
		}
		return nil, storeError("load violation", err)
	}

	history, err := s.violations.StatusHistory(ctx, violation.ID)
	if err != nil {
		return nil, storeError("load status history", err)
	}

	return &ViolationDetails{
		Record:  buildViolationRecord(*violation),
		History: history,
	}, nil
}

// UpdateStatus applies a manual dashboard transition.
func (s *ViolationService) UpdateStatus(ctx context.Context, principal model.Principal, id uuid.UUID, target model.ViolationStatus, notes string) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if _, err := s.resolveScope(ctx, principal); err != nil {
		return err
	}
	if id == uuid.Nil {
		return invalid("violation id required")
	}
	if !target.Valid() {
		return invalid("unknown status %q", target)
	}
	notes = strings.TrimSpace(notes)
	if target == model.ViolationStatusDisputed && notes == "" {
		return invalid("notes are required as dispute reason")
	}

	changedBy := principal.UserID
	_, err := s.violations.ChangeStatus(ctx, id, func(current *model.Violation) (*repository.StatusChange, error) {
		if current.Status.Terminal() {
			return nil, invalidState("violation is %s and can no longer change", current.Status)
		}
		if !current.Status.CanTransitionTo(target) {
			return nil, invalidState("cannot move violation from %s to %s", current.Status, target)
		}
		change := &repository.StatusChange{
			Target:    target,
			Source:    model.StatusSourceDashboard,
			Note:      notes,
			ChangedBy: &changedBy,
		}
		switch target {
		case model.ViolationStatusPaid:
			paidAt := s.now()
			method := model.PaymentMethodManual
			change.PaidAt = &paidAt
			change.PaymentMethod = &method
		case model.ViolationStatusDisputed:
			change.DisputeReason = &notes
		}
		return change, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidState):
			return err
		case errors.Is(err, gorm.ErrRecordNotFound):
			return notFound("violation")
		default:
			return storeError("update violation status", err)
		}
	}
	return nil
}

func (s *ViolationService) ListTypes(ctx context.Context) ([]model.ViolationType, error) {
	types, err := s.types.ListActive(ctx)
	if err != nil {
		return nil, storeError("list violation types", err)
	}
	return types, nil
}

// SeedTypes upserts reference data by name.
func (s *ViolationService) SeedTypes(ctx context.Context, types []model.ViolationType) error {
	for i := range types {
		vt := types[i]
		if strings.TrimSpace(vt.Name) == "" || vt.BaseFine < 0 {
			return invalid("violation type %d needs a name and a non-negative fine", i)
		}
		if err := s.types.Upsert(ctx, &vt); err != nil {
			return storeError("seed violation type "+vt.Name, err)
		}
	}
	return nil
}

func buildViolationRecord(v model.Violation) model.ViolationRecord {
	record := model.ViolationRecord{Violation: v}

	if v.ViolationType != nil {
		record.ViolationType = &model.ViolationTypeBrief{
			ID:          v.ViolationType.ID,
			Name:        v.ViolationType.Name,
			Description: v.ViolationType.Description,
		}
	}
	if v.Vehicle != nil {
		record.Vehicle = &model.VehicleBrief{
			ID:           v.Vehicle.ID,
			LicensePlate: v.Vehicle.LicensePlate,
			OwnerName:    v.Vehicle.OwnerName,
			OwnerPhone:   v.Vehicle.OwnerPhone,
			OwnerEmail:   v.Vehicle.OwnerEmail,
			Type:         v.Vehicle.Type,
		}
	}
	if v.Officer != nil {
		record.Officer = &model.OfficerBrief{
			ID:            v.Officer.ID,
			ServiceNumber: v.Officer.ServiceNumber,
			FullName:      v.Officer.FullName,
			Rank:          v.Officer.Rank,
		}
	}

	return record
}

func resolveScope(ctx context.Context, scopes ScopeResolver, principal model.Principal) (model.Scope, error) {
	scope, err := scopes.ResolveScope(ctx, principal)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrScopeUnsupported):
			return model.Scope{}, ErrPermissionDenied
		case errors.Is(err, repository.ErrAccountInactive):
			return model.Scope{}, ErrAccountInactive
		default:
			return model.Scope{}, storeError("resolve scope", err)
		}
	}
	return scope, nil
}

func (s *ViolationService) resolveScope(ctx context.Context, principal model.Principal) (model.Scope, error) {
	return resolveScope(ctx, s.scopes, principal)
}
