package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"traffic-service/internal/model"
)

var (
	ErrScopeUnsupported = errors.New("principal role is not allowed")
	ErrAccountInactive  = errors.New("account is not active")
)

type ScopeRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewScopeRepository(db *gorm.DB, timeout time.Duration) *ScopeRepository {
	return &ScopeRepository{db: db, timeout: timeout}
}

// ResolveScope re-checks the account behind a token, so deactivation takes
// effect before the token expires.
func (r *ScopeRepository) ResolveScope(ctx context.Context, principal model.Principal) (model.Scope, error) {
	switch {
	case principal.IsAdmin():
		active, err := r.isActive(ctx, "admins", principal)
		if err != nil {
			return model.Scope{}, err
		}
		if !active {
			return model.Scope{}, ErrAccountInactive
		}
		return model.Scope{Type: model.ScopeAll}, nil
	case principal.IsOfficer():
		active, err := r.isActive(ctx, "officers", principal)
		if err != nil {
			return model.Scope{}, err
		}
		if !active {
			return model.Scope{}, ErrAccountInactive
		}
		officerID := principal.UserID
		return model.Scope{Type: model.ScopeOfficer, OfficerID: &officerID}, nil
	default:
		return model.Scope{}, ErrScopeUnsupported
	}
}

func (r *ScopeRepository) isActive(ctx context.Context, table string, principal model.Principal) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var rows []struct {
		IsActive bool
	}
	if err := r.db.WithContext(ctx).
		Table(table).
		Select("is_active").
		Where("id = ?", principal.UserID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return false, err
	}
	return len(rows) == 1 && rows[0].IsActive, nil
}
