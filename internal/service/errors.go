package service

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrUnauthorized        = errors.New("invalid credentials")
	ErrAccountInactive     = errors.New("account not activated, please contact admin")
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("conflict")
	ErrInvalidState        = errors.New("operation not allowed in current status")
	ErrPersistence         = errors.New("storage failure")
	ErrProvider            = errors.New("payment provider unavailable, please retry")
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrTicketCollision     = errors.New("ticket number already issued, please retry")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func conflict(what string) error {
	return fmt.Errorf("%w: %s", ErrConflict, what)
}

func invalidState(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// storeError hides the driver error behind ErrPersistence; the detail stays
// in the message for logs only.
func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

func providerError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrProvider, op, err)
}
