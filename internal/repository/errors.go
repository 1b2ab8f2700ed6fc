package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// Unique index names created by the schema migrations.
const (
	ConstraintTicketNumber     = "uniq_violations_ticket_number"
	ConstraintPaymentReference = "uniq_violations_payment_reference"
	ConstraintLicensePlate     = "uniq_vehicles_license_plate"
	ConstraintServiceNumber    = "uniq_officers_service_number"
	ConstraintAdminUsername    = "uniq_admins_username"
)

// UniqueViolation reports whether err is a unique-constraint failure on constraint.
// An empty constraint matches any unique violation.
func UniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
