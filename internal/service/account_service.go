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

	"traffic-service/internal/auth"
	"traffic-service/internal/model"
	"traffic-service/internal/repository"
)

const (
	minSecretLength   = 4
	minPasswordLength = 8
)

type AccountService struct {
	officers OfficerStore
	admins   AdminStore
	tokens   TokenIssuer
	log      zerolog.Logger
	now      func() time.Time
}

func NewAccountService(officers OfficerStore, admins AdminStore, tokens TokenIssuer, log zerolog.Logger) *AccountService {
	return &AccountService{
		officers: officers,
		admins:   admins,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
	}
}

type OfficerInput struct {
	ServiceNumber string
	FullName      string
	Rank          string
	Station       string
	PIN           string
}

type OfficerUpdateInput struct {
	IsActive *bool
	FullName *string
	Rank     *string
	Station  *string
}

type AdminInput struct {
	Username string
	FullName string
	Role     model.UserRole
	Password string
}

type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Officer   *model.Officer `json:"officer,omitempty"`
	Admin     *model.Admin   `json:"admin,omitempty"`
}

// RegisterOfficer stores a self-registered officer that stays inactive until
// an admin enables it.
func (s *AccountService) RegisterOfficer(ctx context.Context, input OfficerInput) (*model.Officer, error) {
	return s.createOfficer(ctx, input, false)
}

func (s *AccountService) CreateOfficer(ctx context.Context, principal model.Principal, input OfficerInput) (*model.Officer, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.createOfficer(ctx, input, true)
}

func (s *AccountService) createOfficer(ctx context.Context, input OfficerInput, active bool) (*model.Officer, error) {
	input.ServiceNumber = strings.TrimSpace(input.ServiceNumber)
	input.FullName = strings.TrimSpace(input.FullName)
	if input.ServiceNumber == "" || input.FullName == "" {
		return nil, invalid("service_number and full_name are required")
	}
	if len(input.PIN) < minSecretLength || len(input.PIN) > auth.MaxSecretBytes {
		return nil, invalid("pin must be %d to %d characters", minSecretLength, auth.MaxSecretBytes)
	}

	hash, err := auth.HashSecret(input.PIN)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	officer := &model.Officer{
		ServiceNumber: input.ServiceNumber,
		FullName:      input.FullName,
		Rank:          strings.TrimSpace(input.Rank),
		Station:       strings.TrimSpace(input.Station),
		PinHash:       hash,
		IsActive:      active,
	}
	if err := s.officers.Create(ctx, officer); err != nil {
		if repository.UniqueViolation(err, repository.ConstraintServiceNumber) {
			return nil, conflict("service number already registered")
		}
		return nil, storeError("create officer", err)
	}
	return officer, nil
}

func (s *AccountService) OfficerLogin(ctx context.Context, serviceNumber, pin string) (*Session, error) {
	serviceNumber = strings.TrimSpace(serviceNumber)
	if serviceNumber == "" || pin == "" {
		return nil, invalid("service_number and pin are required")
	}

	officer, err := s.officers.GetByServiceNumber(ctx, serviceNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.BurnComparison(pin)
			return nil, ErrUnauthorized
		}
		return nil, storeError("load officer", err)
	}
	if err := auth.CompareSecret(officer.PinHash, pin); err != nil {
		if errors.Is(err, auth.ErrCredentialMismatch) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !officer.IsActive {
		return nil, ErrAccountInactive
	}

	token, expiresAt, err := s.tokens.Issue(officer.ID, model.UserRoleOfficer)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.officers.TouchLogin(ctx, officer.ID, now); err != nil {
		s.log.Warn().Err(err).Str("officer_id", officer.ID.String()).Msg("failed to record officer login")
	} else {
		officer.LastLoginAt = &now
	}

	return &Session{Token: token, ExpiresAt: expiresAt, Officer: officer}, nil
}

func (s *AccountService) UpdateOfficer(ctx context.Context, principal model.Principal, id uuid.UUID, input OfficerUpdateInput) (*model.Officer, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	upd := repository.OfficerUpdate{
		IsActive: input.IsActive,
		FullName: trimmed(input.FullName),
		Rank:     trimmed(input.Rank),
		Station:  trimmed(input.Station),
	}
	if upd.Empty() {
		return nil, invalid("no fields to update")
	}
	if upd.FullName != nil && *upd.FullName == "" {
		return nil, invalid("full_name cannot be empty")
	}

	found, err := s.officers.Update(ctx, id, upd)
	if err != nil {
		return nil, storeError("update officer", err)
	}
	if !found {
		return nil, notFound("officer")
	}

	officer, err := s.officers.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("reload officer", err)
	}
	return officer, nil
}

func (s *AccountService) ListOfficers(ctx context.Context, principal model.Principal) ([]model.Officer, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	officers, err := s.officers.List(ctx)
	if err != nil {
		return nil, storeError("list officers", err)
	}
	return officers, nil
}

func (s *AccountService) AdminLogin(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalid("username and password are required")
	}

	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.BurnComparison(password)
			return nil, ErrUnauthorized
		}
		return nil, storeError("load admin", err)
	}
	if err := auth.CompareSecret(admin.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrCredentialMismatch) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrUnauthorized
	}

	token, expiresAt, err := s.tokens.Issue(admin.ID, admin.Role)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.admins.TouchLogin(ctx, admin.ID, now); err != nil {
		s.log.Warn().Err(err).Str("admin_id", admin.ID.String()).Msg("failed to record admin login")
	} else {
		admin.LastLoginAt = &now
	}

	return &Session{Token: token, ExpiresAt: expiresAt, Admin: admin}, nil
}

// CreateAdmin is used by the operator CLI only.
func (s *AccountService) CreateAdmin(ctx context.Context, input AdminInput) (*model.Admin, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	if input.Username == "" || input.FullName == "" {
		return nil, invalid("username and full_name are required")
	}
	if input.Role == "" {
		input.Role = model.UserRoleAdmin
	}
	if !input.Role.IsAdminRole() {
		return nil, invalid("unknown admin role %q", input.Role)
	}
	if len(input.Password) < minPasswordLength || len(input.Password) > auth.MaxSecretBytes {
		return nil, invalid("password must be %d to %d characters", minPasswordLength, auth.MaxSecretBytes)
	}

	hash, err := auth.HashSecret(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &model.Admin{
		Username:     input.Username,
		FullName:     input.FullName,
		Role:         input.Role,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if repository.UniqueViolation(err, repository.ConstraintAdminUsername) {
			return nil, conflict("username already taken")
		}
		return nil, storeError("create admin", err)
	}
	return admin, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
