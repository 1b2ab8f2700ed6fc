package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"traffic-service/internal/model"
	"traffic-service/internal/payment"
	"traffic-service/internal/repository"
)

func uniqueErr(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type fakeScopes struct{}

func (fakeScopes) ResolveScope(_ context.Context, p model.Principal) (model.Scope, error) {
	switch {
	case p.IsAdmin():
		return model.Scope{Type: model.ScopeAll}, nil
	case p.IsOfficer():
		id := p.UserID
		return model.Scope{Type: model.ScopeOfficer, OfficerID: &id}, nil
	}
	return model.Scope{}, repository.ErrScopeUnsupported
}

type fakeViolationStore struct {
	mu         sync.Mutex
	rows       map[uuid.UUID]*model.Violation
	vehicles   map[uuid.UUID]*model.Vehicle
	officers   map[uuid.UUID]*model.Officer
	types      map[uuid.UUID]*model.ViolationType
	logs       []model.ViolationStatusLog
	issueErr   error
	changeErr  error
	changeRuns int
}

func newFakeViolationStore() *fakeViolationStore {
	return &fakeViolationStore{
		rows:     map[uuid.UUID]*model.Violation{},
		vehicles: map[uuid.UUID]*model.Vehicle{},
		officers: map[uuid.UUID]*model.Officer{},
		types:    map[uuid.UUID]*model.ViolationType{},
	}
}

func (s *fakeViolationStore) joined(v model.Violation) *model.Violation {
	v.Vehicle = s.vehicles[v.VehicleID]
	v.Officer = s.officers[v.OfficerID]
	v.ViolationType = s.types[v.ViolationTypeID]
	return &v
}

func (s *fakeViolationStore) List(_ context.Context, filter repository.ViolationFilter) ([]model.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Violation
	for _, v := range s.rows {
		if !filter.Scope.AllowsViolation(v.OfficerID) {
			continue
		}
		if filter.OfficerID != nil && v.OfficerID != *filter.OfficerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, v.Status) {
			continue
		}
		out = append(out, *s.joined(*v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

func containsStatus(list []model.ViolationStatus, status model.ViolationStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

func (s *fakeViolationStore) GetByID(_ context.Context, scope model.Scope, id uuid.UUID) (*model.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.rows[id]
	if !ok || !scope.AllowsViolation(v.OfficerID) {
		return nil, gorm.ErrRecordNotFound
	}
	return s.joined(*v), nil
}

func (s *fakeViolationStore) Issue(_ context.Context, vehicleID uuid.UUID, dayStart, dayEnd time.Time, build repository.IssueBuilder) (*model.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[vehicleID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}

	var count int64
	for _, v := range s.rows {
		if v.VehicleID == vehicleID && !v.IssuedAt.Before(dayStart) && v.IssuedAt.Before(dayEnd) {
			count++
		}
	}

	violation, err := build(count)
	if err != nil {
		return nil, err
	}
	if s.issueErr != nil {
		return nil, s.issueErr
	}
	violation.ID = uuid.New()
	stored := *violation
	s.rows[violation.ID] = &stored
	s.logs = append(s.logs, model.ViolationStatusLog{ViolationID: violation.ID, NewStatus: violation.Status, Source: model.StatusSourceIssue, Note: "issued"})
	return violation, nil
}

func (s *fakeViolationStore) ChangeStatus(_ context.Context, id uuid.UUID, decide repository.StatusDecider) (*model.Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.changeRuns++
	row, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	current := *row
	change, err := decide(&current)
	if err != nil {
		return nil, err
	}
	if change == nil {
		return &current, nil
	}
	if s.changeErr != nil {
		return nil, s.changeErr
	}

	prev := row.Status
	row.Status = change.Target
	if change.PaidAt != nil {
		row.PaidAt = change.PaidAt
	}
	if change.PaymentMethod != nil {
		row.PaymentMethod = change.PaymentMethod
	}
	if change.PaymentReference != nil {
		row.PaymentReference = change.PaymentReference
	}
	if change.DisputeReason != nil {
		row.DisputeReason = change.DisputeReason
	}
	s.logs = append(s.logs, model.ViolationStatusLog{
		ViolationID: id,
		OldStatus:   &prev,
		NewStatus:   change.Target,
		Source:      change.Source,
		Note:        change.Note,
		ChangedBy:   change.ChangedBy,
	})
	out := *row
	return &out, nil
}

func (s *fakeViolationStore) StatusHistory(_ context.Context, violationID uuid.UUID) ([]model.ViolationStatusLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.ViolationStatusLog
	for _, entry := range s.logs {
		if entry.ViolationID == violationID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeTypeStore struct {
	rows map[uuid.UUID]*model.ViolationType
}

func (s *fakeTypeStore) GetByID(_ context.Context, id uuid.UUID) (*model.ViolationType, error) {
	vt, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *vt
	return &out, nil
}

func (s *fakeTypeStore) ListActive(_ context.Context) ([]model.ViolationType, error) {
	var out []model.ViolationType
	for _, vt := range s.rows {
		if vt.IsActive {
			out = append(out, *vt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakeTypeStore) Upsert(_ context.Context, vt *model.ViolationType) error {
	for _, existing := range s.rows {
		if existing.Name == vt.Name {
			existing.BaseFine = vt.BaseFine
			existing.Description = vt.Description
			existing.IsActive = vt.IsActive
			vt.ID = existing.ID
			return nil
		}
	}
	vt.ID = uuid.New()
	stored := *vt
	s.rows[vt.ID] = &stored
	return nil
}

type fakeVehicleStore struct {
	rows     map[uuid.UUID]*model.Vehicle
	onCreate func(v *model.Vehicle) error
}

func newFakeVehicleStore() *fakeVehicleStore {
	return &fakeVehicleStore{rows: map[uuid.UUID]*model.Vehicle{}}
}

func (s *fakeVehicleStore) GetByID(_ context.Context, id uuid.UUID) (*model.Vehicle, error) {
	v, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *v
	return &out, nil
}

func (s *fakeVehicleStore) GetByPlate(_ context.Context, plate string) (*model.Vehicle, error) {
	for _, v := range s.rows {
		if v.LicensePlate == plate {
			out := *v
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeVehicleStore) Create(_ context.Context, v *model.Vehicle) error {
	if s.onCreate != nil {
		return s.onCreate(v)
	}
	for _, existing := range s.rows {
		if existing.LicensePlate == v.LicensePlate {
			return uniqueErr(repository.ConstraintLicensePlate)
		}
	}
	v.ID = uuid.New()
	stored := *v
	s.rows[v.ID] = &stored
	return nil
}

func (s *fakeVehicleStore) UpdateOwner(_ context.Context, id uuid.UUID, name, phone string, email *string, vehicleType model.VehicleType) (bool, error) {
	v, ok := s.rows[id]
	if !ok {
		return false, nil
	}
	v.OwnerName = name
	v.OwnerPhone = phone
	v.OwnerEmail = email
	v.Type = vehicleType
	return true, nil
}

type fakeOfficerStore struct {
	rows map[uuid.UUID]*model.Officer
}

func newFakeOfficerStore() *fakeOfficerStore {
	return &fakeOfficerStore{rows: map[uuid.UUID]*model.Officer{}}
}

func (s *fakeOfficerStore) Create(_ context.Context, o *model.Officer) error {
	for _, existing := range s.rows {
		if existing.ServiceNumber == o.ServiceNumber {
			return uniqueErr(repository.ConstraintServiceNumber)
		}
	}
	o.ID = uuid.New()
	stored := *o
	s.rows[o.ID] = &stored
	return nil
}

func (s *fakeOfficerStore) GetByID(_ context.Context, id uuid.UUID) (*model.Officer, error) {
	o, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *o
	return &out, nil
}

func (s *fakeOfficerStore) GetByServiceNumber(_ context.Context, serviceNumber string) (*model.Officer, error) {
	for _, o := range s.rows {
		if o.ServiceNumber == serviceNumber {
			out := *o
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeOfficerStore) List(_ context.Context) ([]model.Officer, error) {
	var out []model.Officer
	for _, o := range s.rows {
		out = append(out, *o)
	}
	return out, nil
}

func (s *fakeOfficerStore) Update(_ context.Context, id uuid.UUID, upd repository.OfficerUpdate) (bool, error) {
	o, ok := s.rows[id]
	if !ok {
		return false, nil
	}
	if upd.IsActive != nil {
		o.IsActive = *upd.IsActive
	}
	if upd.FullName != nil {
		o.FullName = *upd.FullName
	}
	if upd.Rank != nil {
		o.Rank = *upd.Rank
	}
	if upd.Station != nil {
		o.Station = *upd.Station
	}
	return true, nil
}

func (s *fakeOfficerStore) TouchLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if o, ok := s.rows[id]; ok {
		o.LastLoginAt = &at
	}
	return nil
}

type fakeAdminStore struct {
	rows map[uuid.UUID]*model.Admin
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{rows: map[uuid.UUID]*model.Admin{}}
}

func (s *fakeAdminStore) Create(_ context.Context, a *model.Admin) error {
	for _, existing := range s.rows {
		if existing.Username == a.Username {
			return uniqueErr(repository.ConstraintAdminUsername)
		}
	}
	a.ID = uuid.New()
	stored := *a
	s.rows[a.ID] = &stored
	return nil
}

func (s *fakeAdminStore) GetByUsername(_ context.Context, username string) (*model.Admin, error) {
	for _, a := range s.rows {
		if a.Username == username {
			out := *a
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeAdminStore) TouchLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if a, ok := s.rows[id]; ok {
		a.LastLoginAt = &at
	}
	return nil
}

type fakeStatsStore struct {
	dashboard    model.DashboardStats
	breakdown    model.StatsBreakdown
	breakdownErr error
	dayStart     time.Time
	dayEnd       time.Time
}

func (s *fakeStatsStore) Dashboard(_ context.Context, dayStart, dayEnd time.Time) (*model.DashboardStats, error) {
	s.dayStart, s.dayEnd = dayStart, dayEnd
	out := s.dashboard
	return &out, nil
}

func (s *fakeStatsStore) Breakdown(context.Context) (*model.StatsBreakdown, error) {
	if s.breakdownErr != nil {
		return nil, s.breakdownErr
	}
	out := s.breakdown
	return &out, nil
}

func (s *fakeStatsStore) Vehicle(_ context.Context, vehicleID uuid.UUID) (*model.VehicleStats, error) {
	return &model.VehicleStats{VehicleID: vehicleID}, nil
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Channel() model.PaymentMethod {
	return model.PaymentMethodStripe
}

func (m *mockProvider) MinorUnits(amount int64) int64 {
	return amount * 100
}

func (m *mockProvider) CreateIntent(_ context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	args := m.Called(req)
	intent, _ := args.Get(0).(*payment.Intent)
	return intent, args.Error(1)
}

func (m *mockProvider) GetIntent(_ context.Context, id string) (*payment.Intent, error) {
	args := m.Called(id)
	intent, _ := args.Get(0).(*payment.Intent)
	return intent, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendETicket(_ context.Context, record model.ViolationRecord) (bool, error) {
	args := m.Called(record.Violation.ID)
	return args.Bool(0), args.Error(1)
}
