package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"traffic-service/internal/model"
	"traffic-service/internal/service"
)

type ViolationAPI interface {
	Issue(ctx context.Context, principal model.Principal, input service.IssueInput) (*model.IssueResult, error)
	List(ctx context.Context, principal model.Principal, opts service.ListViolationsOptions) ([]model.ViolationRecord, error)
	GetDetails(ctx context.Context, principal model.Principal, id uuid.UUID) (*service.ViolationDetails, error)
	UpdateStatus(ctx context.Context, principal model.Principal, id uuid.UUID, target model.ViolationStatus, notes string) error
	ListTypes(ctx context.Context) ([]model.ViolationType, error)
}

type PaymentAPI interface {
	CreateIntent(ctx context.Context, violationID uuid.UUID) (*model.PaymentIntentResult, error)
	Confirm(ctx context.Context, violationID uuid.UUID, intentID string) (*model.ViolationRecord, error)
}

type AccountAPI interface {
	RegisterOfficer(ctx context.Context, input service.OfficerInput) (*model.Officer, error)
	CreateOfficer(ctx context.Context, principal model.Principal, input service.OfficerInput) (*model.Officer, error)
	OfficerLogin(ctx context.Context, serviceNumber, pin string) (*service.Session, error)
	UpdateOfficer(ctx context.Context, principal model.Principal, id uuid.UUID, input service.OfficerUpdateInput) (*model.Officer, error)
	ListOfficers(ctx context.Context, principal model.Principal) ([]model.Officer, error)
	AdminLogin(ctx context.Context, username, password string) (*service.Session, error)
}

type VehicleAPI interface {
	SearchByPlate(ctx context.Context, plate string) (*model.Vehicle, error)
	GetOrCreate(ctx context.Context, input service.VehicleInput) (*model.Vehicle, bool, error)
	UpdateOwner(ctx context.Context, id uuid.UUID, input service.VehicleInput) (*model.Vehicle, error)
	Stats(ctx context.Context, id uuid.UUID) (*model.VehicleStats, error)
}

type StatsAPI interface {
	Dashboard(ctx context.Context, principal model.Principal) (*model.DashboardStats, error)
	Breakdown(ctx context.Context, principal model.Principal) (*model.StatsBreakdown, error)
}

type Handler struct {
	violations ViolationAPI
	payments   PaymentAPI
	accounts   AccountAPI
	vehicles   VehicleAPI
	stats      StatsAPI
	log        zerolog.Logger
}

func NewHandler(
	violations ViolationAPI,
	payments PaymentAPI,
	accounts AccountAPI,
	vehicles VehicleAPI,
	stats StatsAPI,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		violations: violations,
		payments:   payments,
		accounts:   accounts,
		vehicles:   vehicles,
		stats:      stats,
		log:        log,
	}
}

// handleError maps service errors to status codes. Only messages the service
// layer composed itself reach the client; store and provider detail is logged.
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, errorResponse(service.ErrUnauthorized.Error()))
	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, errorResponse(service.ErrAccountInactive.Error()))
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(service.ErrPermissionDenied.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrTicketCollision):
		c.JSON(http.StatusConflict, errorResponse(service.ErrTicketCollision.Error()))
	case errors.Is(err, service.ErrPaymentNotCompleted):
		c.JSON(http.StatusPaymentRequired, errorResponse("Payment not completed"))
	case errors.Is(err, service.ErrProvider):
		h.log.Warn().Err(err).Str("path", c.FullPath()).Msg("payment provider error")
		c.JSON(http.StatusBadGateway, errorResponse(service.ErrProvider.Error()))
	case errors.Is(c.Request.Context().Err(), context.DeadlineExceeded):
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request timed out")
		c.JSON(http.StatusServiceUnavailable, errorResponse("request timed out, please retry"))
	case errors.Is(err, service.ErrPersistence):
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("storage error")
		c.JSON(http.StatusInternalServerError, errorResponse(service.ErrPersistence.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalUUID treats an empty value as uuid.Nil so required-field checks
// happen in the service with the other missing fields.
func parseOptionalUUID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

type responseEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Success: true, Data: data}
}

func messageResponse(msg string, data interface{}) responseEnvelope {
	return responseEnvelope{Success: true, Message: msg, Data: data}
}

func errorResponse(msg string) responseEnvelope {
	return responseEnvelope{Success: false, Message: msg}
}
