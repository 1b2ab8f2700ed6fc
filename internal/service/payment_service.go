package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"traffic-service/internal/model"
	"traffic-service/internal/payment"
	"traffic-service/internal/repository"
)

// PaymentService serves the public owner payment flow, so reads use ScopeAll.
type PaymentService struct {
	violations ViolationStore
	provider   PaymentProvider
	notifier   TicketNotifier
	log        zerolog.Logger
	now        func() time.Time
}

func NewPaymentService(violations ViolationStore, provider PaymentProvider, notifier TicketNotifier, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		violations: violations,
		provider:   provider,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

var publicScope = model.Scope{Type: model.ScopeAll}

// CreateIntent opens a provider intent for a pending violation. Nothing is written locally.
func (s *PaymentService) CreateIntent(ctx context.Context, violationID uuid.UUID) (*model.PaymentIntentResult, error) {
	if violationID == uuid.Nil {
		return nil, invalid("violation_id is required")
	}

	violation, err := s.violations.GetByID(ctx, publicScope, violationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("violation")
		}
		return nil, storeError("load violation", err)
	}
	if violation.Status != model.ViolationStatusPending {
		return nil, invalidState("violation is %s", violation.Status)
	}

	plate := ""
	if violation.Vehicle != nil {
		plate = violation.Vehicle.LicensePlate
	}

	intent, err := s.provider.CreateIntent(ctx, payment.IntentRequest{
		ViolationID:  violation.ID.String(),
		TicketNumber: violation.TicketNumber,
		LicensePlate: plate,
		Amount:       violation.FineAmount,
	})
	if err != nil {
		return nil, providerError("create intent", err)
	}

	return &model.PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          violation.FineAmount,
	}, nil
}

// Confirm verifies the intent with the provider and settles the violation.
// A repeated confirmation with the same intent succeeds without side effects.
func (s *PaymentService) Confirm(ctx context.Context, violationID uuid.UUID, intentID string) (*model.ViolationRecord, error) {
	intentID = strings.TrimSpace(intentID)
	if violationID == uuid.Nil || intentID == "" {
		return nil, invalid("violation_id and payment_intent_id are required")
	}

	intent, err := s.provider.GetIntent(ctx, intentID)
	if err != nil {
		return nil, providerError("retrieve intent", err)
	}
	if intent.Status != payment.StatusSucceeded {
		return nil, fmt.Errorf("%w: intent status %s", ErrPaymentNotCompleted, intent.Status)
	}
	if owner := intent.Metadata["violation_id"]; owner != violationID.String() {
		return nil, invalid("payment intent was not created for this violation")
	}

	alreadyPaid := false
	_, err = s.violations.ChangeStatus(ctx, violationID, func(current *model.Violation) (*repository.StatusChange, error) {
		if current.Status == model.ViolationStatusPaid {
			if current.PaymentReference != nil && *current.PaymentReference == intentID {
				alreadyPaid = true
				return nil, nil
			}
			return nil, invalidState("violation already paid")
		}
		if want := s.provider.MinorUnits(current.FineAmount); intent.Amount != want {
			return nil, invalid("payment amount %d does not match fine %d", intent.Amount, want)
		}
		if !current.Status.Payable() {
			return nil, invalidState("violation is %s", current.Status)
		}

		paidAt := s.now()
		method := s.provider.Channel()
		return &repository.StatusChange{
			Target:           model.ViolationStatusPaid,
			Source:           model.StatusSourcePayment,
			Note:             "payment confirmed",
			PaidAt:           &paidAt,
			PaymentMethod:    &method,
			PaymentReference: &intentID,
		}, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidState), errors.Is(err, ErrInvalidInput):
			return nil, err
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, notFound("violation")
		case repository.UniqueViolation(err, repository.ConstraintPaymentReference):
			return nil, fmt.Errorf("%w: payment intent already settled another violation", ErrConflict)
		default:
			return nil, storeError("mark violation paid", err)
		}
	}

	violation, err := s.violations.GetByID(ctx, publicScope, violationID)
	if err != nil {
		return nil, storeError("reload violation", err)
	}
	record := buildViolationRecord(*violation)

	if alreadyPaid {
		s.log.Info().
			Str("violation_id", violationID.String()).
			Str("payment_intent_id", intentID).
			Msg("payment already confirmed")
		return &record, nil
	}

	s.sendETicket(ctx, record)
	return &record, nil
}

func (s *PaymentService) sendETicket(ctx context.Context, record model.ViolationRecord) {
	sent, err := s.notifier.SendETicket(ctx, record)
	event := s.log.Info()
	if err != nil {
		event = s.log.Error().Err(err)
	}
	event.
		Str("violation_id", record.Violation.ID.String()).
		Str("ticket_number", record.Violation.TicketNumber).
		Bool("sent", sent).
		Msg("e-ticket notification")
}
