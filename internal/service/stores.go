package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"traffic-service/internal/model"
	"traffic-service/internal/payment"
	"traffic-service/internal/repository"
)

type ScopeResolver interface {
	ResolveScope(ctx context.Context, principal model.Principal) (model.Scope, error)
}

type ViolationStore interface {
	List(ctx context.Context, filter repository.ViolationFilter) ([]model.Violation, error)
	GetByID(ctx context.Context, scope model.Scope, id uuid.UUID) (*model.Violation, error)
	Issue(ctx context.Context, vehicleID uuid.UUID, dayStart, dayEnd time.Time, build repository.IssueBuilder) (*model.Violation, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, decide repository.StatusDecider) (*model.Violation, error)
	StatusHistory(ctx context.Context, violationID uuid.UUID) ([]model.ViolationStatusLog, error)
}

type ViolationTypeStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ViolationType, error)
	ListActive(ctx context.Context) ([]model.ViolationType, error)
	Upsert(ctx context.Context, vt *model.ViolationType) error
}

type VehicleStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error)
	Create(ctx context.Context, vehicle *model.Vehicle) error
	UpdateOwner(ctx context.Context, id uuid.UUID, name, phone string, email *string, vehicleType model.VehicleType) (bool, error)
}

type OfficerStore interface {
	Create(ctx context.Context, officer *model.Officer) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Officer, error)
	GetByServiceNumber(ctx context.Context, serviceNumber string) (*model.Officer, error)
	List(ctx context.Context) ([]model.Officer, error)
	Update(ctx context.Context, id uuid.UUID, upd repository.OfficerUpdate) (bool, error)
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type AdminStore interface {
	Create(ctx context.Context, admin *model.Admin) error
	GetByUsername(ctx context.Context, username string) (*model.Admin, error)
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type StatsStore interface {
	Dashboard(ctx context.Context, dayStart, dayEnd time.Time) (*model.DashboardStats, error)
	Vehicle(ctx context.Context, vehicleID uuid.UUID) (*model.VehicleStats, error)
	Breakdown(ctx context.Context) (*model.StatsBreakdown, error)
}

type PaymentProvider interface {
	Channel() model.PaymentMethod
	MinorUnits(amount int64) int64
	CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error)
	GetIntent(ctx context.Context, id string) (*payment.Intent, error)
}

type TicketNotifier interface {
	SendETicket(ctx context.Context, record model.ViolationRecord) (bool, error)
}

type TokenIssuer interface {
	Issue(userID uuid.UUID, role model.UserRole) (string, time.Time, error)
}
