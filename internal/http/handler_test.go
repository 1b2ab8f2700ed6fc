package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-service/internal/auth"
	"traffic-service/internal/http/middleware"
	"traffic-service/internal/model"
	"traffic-service/internal/service"
)

type mockViolations struct {
	IssueFunc        func(ctx context.Context, p model.Principal, in service.IssueInput) (*model.IssueResult, error)
	ListFunc         func(ctx context.Context, p model.Principal, opts service.ListViolationsOptions) ([]model.ViolationRecord, error)
	UpdateStatusFunc func(ctx context.Context, p model.Principal, id uuid.UUID, target model.ViolationStatus, notes string) error
}

func (m *mockViolations) Issue(ctx context.Context, p model.Principal, in service.IssueInput) (*model.IssueResult, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, p, in)
	}
	return nil, service.ErrNotFound
}

func (m *mockViolations) List(ctx context.Context, p model.Principal, opts service.ListViolationsOptions) ([]model.ViolationRecord, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, p, opts)
	}
	return []model.ViolationRecord{}, nil
}

func (m *mockViolations) GetDetails(context.Context, model.Principal, uuid.UUID) (*service.ViolationDetails, error) {
	return nil, service.ErrNotFound
}

func (m *mockViolations) UpdateStatus(ctx context.Context, p model.Principal, id uuid.UUID, target model.ViolationStatus, notes string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, p, id, target, notes)
	}
	return nil
}

func (m *mockViolations) ListTypes(context.Context) ([]model.ViolationType, error) {
	return []model.ViolationType{{ID: uuid.New(), Name: "Speeding", BaseFine: 20000, IsActive: true}}, nil
}

type mockPayments struct {
	CreateIntentFunc func(ctx context.Context, id uuid.UUID) (*model.PaymentIntentResult, error)
	ConfirmFunc      func(ctx context.Context, id uuid.UUID, intentID string) (*model.ViolationRecord, error)
}

func (m *mockPayments) CreateIntent(ctx context.Context, id uuid.UUID) (*model.PaymentIntentResult, error) {
	if m.CreateIntentFunc != nil {
		return m.CreateIntentFunc(ctx, id)
	}
	return nil, service.ErrNotFound
}

func (m *mockPayments) Confirm(ctx context.Context, id uuid.UUID, intentID string) (*model.ViolationRecord, error) {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, id, intentID)
	}
	return nil, service.ErrNotFound
}

type mockAccounts struct {
	OfficerLoginFunc func(ctx context.Context, serviceNumber, pin string) (*service.Session, error)
}

func (m *mockAccounts) RegisterOfficer(_ context.Context, in service.OfficerInput) (*model.Officer, error) {
	return &model.Officer{ID: uuid.New(), ServiceNumber: in.ServiceNumber, FullName: in.FullName, PinHash: "secret-hash"}, nil
}

func (m *mockAccounts) CreateOfficer(_ context.Context, _ model.Principal, in service.OfficerInput) (*model.Officer, error) {
	return &model.Officer{ID: uuid.New(), ServiceNumber: in.ServiceNumber, IsActive: true}, nil
}

func (m *mockAccounts) OfficerLogin(ctx context.Context, serviceNumber, pin string) (*service.Session, error) {
	if m.OfficerLoginFunc != nil {
		return m.OfficerLoginFunc(ctx, serviceNumber, pin)
	}
	return nil, service.ErrUnauthorized
}

func (m *mockAccounts) UpdateOfficer(context.Context, model.Principal, uuid.UUID, service.OfficerUpdateInput) (*model.Officer, error) {
	return nil, service.ErrNotFound
}

func (m *mockAccounts) ListOfficers(context.Context, model.Principal) ([]model.Officer, error) {
	return []model.Officer{}, nil
}

func (m *mockAccounts) AdminLogin(context.Context, string, string) (*service.Session, error) {
	return nil, service.ErrUnauthorized
}

type mockVehicles struct{}

func (mockVehicles) SearchByPlate(_ context.Context, plate string) (*model.Vehicle, error) {
	if plate == "" {
		return nil, fmt.Errorf("%w: license_plate is required", service.ErrInvalidInput)
	}
	return &model.Vehicle{ID: uuid.New(), LicensePlate: model.NormalizePlate(plate)}, nil
}

func (mockVehicles) GetOrCreate(_ context.Context, in service.VehicleInput) (*model.Vehicle, bool, error) {
	return &model.Vehicle{ID: uuid.New(), LicensePlate: model.NormalizePlate(in.LicensePlate), Type: in.Type}, true, nil
}

func (mockVehicles) UpdateOwner(context.Context, uuid.UUID, service.VehicleInput) (*model.Vehicle, error) {
	return nil, service.ErrNotFound
}

func (mockVehicles) Stats(_ context.Context, id uuid.UUID) (*model.VehicleStats, error) {
	return &model.VehicleStats{VehicleID: id}, nil
}

type mockStats struct{}

func (mockStats) Dashboard(context.Context, model.Principal) (*model.DashboardStats, error) {
	return &model.DashboardStats{TotalViolations: 7}, nil
}

func (mockStats) Breakdown(_ context.Context, principal model.Principal) (*model.StatsBreakdown, error) {
	if !principal.IsAdmin() {
		return nil, service.ErrPermissionDenied
	}
	return &model.StatsBreakdown{
		ViolationTypes: []model.ViolationTypeShare{{Name: "Speeding", Count: 3, TotalRevenue: 65000, Percentage: 75}},
		VehicleTypes:   []model.VehicleTypeShare{{VehicleType: model.VehicleTypeBus, Count: 1, Percentage: 25}},
	}, nil
}

type testServer struct {
	router     *gin.Engine
	parser     *auth.Parser
	violations *mockViolations
	payments   *mockPayments
	accounts   *mockAccounts
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		parser:     auth.NewParser("test-secret", time.Hour),
		violations: &mockViolations{},
		payments:   &mockPayments{},
		accounts:   &mockAccounts{},
	}
	handler := NewHandler(ts.violations, ts.payments, ts.accounts, mockVehicles{}, mockStats{}, zerolog.Nop())
	ts.router = NewRouter(handler, middleware.Auth(ts.parser), RouterConfig{Environment: "test", RequestTimeout: 5 * time.Second}, zerolog.Nop())
	return ts
}

func (ts *testServer) token(t *testing.T, role model.UserRole) (string, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	token, _, err := ts.parser.Issue(id, role)
	require.NoError(t, err)
	return token, id
}

func (ts *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestPreflightAnsweredWith200(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/payments/confirm", nil)
	req.Header.Set("Origin", "https://owner.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestIssueViolationRoles(t *testing.T) {
	ts := newTestServer(t)
	officerToken, officerID := ts.token(t, model.UserRoleOfficer)
	adminToken, _ := ts.token(t, model.UserRoleAdmin)

	var got service.IssueInput
	ts.violations.IssueFunc = func(_ context.Context, p model.Principal, in service.IssueInput) (*model.IssueResult, error) {
		got = in
		return &model.IssueResult{ViolationID: uuid.New(), TicketNumber: "TK202610160042", FinalFine: 12500, IsRepeatOffender: true}, nil
	}

	body := gin.H{
		"vehicle_id":        uuid.NewString(),
		"officer_id":        officerID.String(),
		"violation_type_id": uuid.NewString(),
		"location":          "M1 Kanengo",
	}

	w := ts.do(http.MethodPost, "/api/v1/violations", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decode(t, w).Success)

	w = ts.do(http.MethodPost, "/api/v1/violations", adminToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPost, "/api/v1/violations", officerToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := decode(t, w)
	assert.True(t, env.Success)

	var result model.IssueResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "TK202610160042", result.TicketNumber)
	assert.Equal(t, int64(12500), result.FinalFine)
	assert.True(t, result.IsRepeatOffender)
	assert.Equal(t, officerID, got.OfficerID)
	assert.Equal(t, "M1 Kanengo", got.Location)
}

func TestIssueViolationMalformedID(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.token(t, model.UserRoleOfficer)

	w := ts.do(http.MethodPost, "/api/v1/violations", token, gin.H{"vehicle_id": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid vehicle_id", decode(t, w).Message)
}

func TestConfirmPaymentNotCompleted(t *testing.T) {
	ts := newTestServer(t)
	ts.payments.ConfirmFunc = func(context.Context, uuid.UUID, string) (*model.ViolationRecord, error) {
		return nil, fmt.Errorf("%w: intent status requires_action", service.ErrPaymentNotCompleted)
	}

	w := ts.do(http.MethodPost, "/api/v1/payments/confirm", "", gin.H{
		"violation_id":      uuid.NewString(),
		"payment_intent_id": "pi_123",
	})

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "Payment not completed", env.Message)
}

func TestConfirmPaymentReturnsViolation(t *testing.T) {
	ts := newTestServer(t)
	violationID := uuid.New()
	ts.payments.ConfirmFunc = func(_ context.Context, id uuid.UUID, intentID string) (*model.ViolationRecord, error) {
		assert.Equal(t, violationID, id)
		assert.Equal(t, "pi_123", intentID)
		return &model.ViolationRecord{Violation: model.Violation{ID: id, Status: model.ViolationStatusPaid}}, nil
	}

	w := ts.do(http.MethodPost, "/api/v1/payments/confirm", "", gin.H{
		"violation_id":      violationID.String(),
		"payment_intent_id": "pi_123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Violation model.ViolationRecord `json:"violation"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, model.ViolationStatusPaid, data.Violation.Violation.Status)

	w = ts.do(http.MethodPost, "/api/v1/payments/confirm", "", gin.H{"violation_id": violationID.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateIntentErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.payments.CreateIntentFunc = func(context.Context, uuid.UUID) (*model.PaymentIntentResult, error) {
		return nil, fmt.Errorf("%w: violation is paid", service.ErrInvalidState)
	}
	w := ts.do(http.MethodPost, "/api/v1/payments/intent", "", gin.H{"violation_id": uuid.NewString()})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w).Message, "violation is paid")

	ts.payments.CreateIntentFunc = func(context.Context, uuid.UUID) (*model.PaymentIntentResult, error) {
		return nil, fmt.Errorf("%w: create intent: stripe create payment intent: api_key_invalid sk_live_123", service.ErrProvider)
	}
	w = ts.do(http.MethodPost, "/api/v1/payments/intent", "", gin.H{"violation_id": uuid.NewString()})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "sk_live")
}

func TestStoreErrorsDoNotLeak(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.token(t, model.UserRoleAdmin)
	ts.violations.ListFunc = func(context.Context, model.Principal, service.ListViolationsOptions) ([]model.ViolationRecord, error) {
		return nil, fmt.Errorf("%w: list violations: %v", service.ErrPersistence, `ERROR: relation "violations" does not exist (SQLSTATE 42P01)`)
	}

	w := ts.do(http.MethodGet, "/api/v1/violations", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, service.ErrPersistence.Error(), env.Message)
	assert.NotContains(t, w.Body.String(), "SQLSTATE")
}

func TestListViolationsQuery(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.token(t, model.UserRoleAdmin)

	var got service.ListViolationsOptions
	ts.violations.ListFunc = func(_ context.Context, _ model.Principal, opts service.ListViolationsOptions) ([]model.ViolationRecord, error) {
		got = opts
		return []model.ViolationRecord{}, nil
	}

	w := ts.do(http.MethodGet, "/api/v1/violations?status=all", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, got.Statuses)
	assert.JSONEq(t, "[]", string(decode(t, w).Data))

	officerID := uuid.New()
	w = ts.do(http.MethodGet, "/api/v1/violations?status=PAID&officer_id="+officerID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []model.ViolationStatus{model.ViolationStatusPaid}, got.Statuses)
	require.NotNil(t, got.OfficerID)
	assert.Equal(t, officerID, *got.OfficerID)

	w = ts.do(http.MethodGet, "/api/v1/violations?officer_id=nope", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatusIsAdminOnly(t *testing.T) {
	ts := newTestServer(t)
	adminToken, adminID := ts.token(t, model.UserRoleSupervisor)
	officerToken, _ := ts.token(t, model.UserRoleOfficer)
	violationID := uuid.New()

	var gotStatus model.ViolationStatus
	var gotNotes string
	ts.violations.UpdateStatusFunc = func(_ context.Context, p model.Principal, id uuid.UUID, target model.ViolationStatus, notes string) error {
		assert.Equal(t, adminID, p.UserID)
		assert.Equal(t, violationID, id)
		gotStatus, gotNotes = target, notes
		return nil
	}
	body := gin.H{"id": violationID.String(), "status": "Disputed", "notes": "radar not calibrated"}

	w := ts.do(http.MethodPost, "/api/v1/violations/status", officerToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPost, "/api/v1/violations/status", adminToken, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.ViolationStatusDisputed, gotStatus)
	assert.Equal(t, "radar not calibrated", gotNotes)
	assert.JSONEq(t, "{}", string(decode(t, w).Data))
}

func TestOfficerLoginAndRegistration(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/auth/officer/login", "", gin.H{"service_number": "MP-0042", "pin": "0000"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, service.ErrUnauthorized.Error(), decode(t, w).Message)

	ts.accounts.OfficerLoginFunc = func(context.Context, string, string) (*service.Session, error) {
		return nil, service.ErrAccountInactive
	}
	w = ts.do(http.MethodPost, "/api/v1/auth/officer/login", "", gin.H{"service_number": "MP-0042", "pin": "4821"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPost, "/api/v1/auth/officer/register", "", gin.H{
		"service_number": "MP-0042",
		"full_name":      "Sgt. Phiri",
		"pin":            "4821",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")
}

func TestVehicleRoutes(t *testing.T) {
	ts := newTestServer(t)
	officerToken, _ := ts.token(t, model.UserRoleOfficer)

	w := ts.do(http.MethodPost, "/api/v1/vehicles", officerToken, gin.H{"license_plate": "bt 1234", "vehicle_type": "SUV"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var vehicle model.Vehicle
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &vehicle))
	assert.Equal(t, "BT 1234", vehicle.LicensePlate)
	assert.Equal(t, model.VehicleTypeSUV, vehicle.Type)

	w = ts.do(http.MethodGet, "/api/v1/vehicles/search", officerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/api/v1/vehicles/search?license_plate=bt%201234", officerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/api/v1/stats/dashboard", officerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStatsBreakdownForAdmins(t *testing.T) {
	ts := newTestServer(t)
	adminToken, _ := ts.token(t, model.UserRoleAdmin)
	officerToken, _ := ts.token(t, model.UserRoleOfficer)

	w := ts.do(http.MethodGet, "/api/v1/stats/breakdown", officerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodGet, "/api/v1/stats/breakdown", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.True(t, env.Success)

	var breakdown model.StatsBreakdown
	require.NoError(t, json.Unmarshal(env.Data, &breakdown))
	require.Len(t, breakdown.ViolationTypes, 1)
	assert.Equal(t, "Speeding", breakdown.ViolationTypes[0].Name)
	assert.Equal(t, 75.0, breakdown.ViolationTypes[0].Percentage)
	require.Len(t, breakdown.VehicleTypes, 1)
	assert.Equal(t, model.VehicleTypeBus, breakdown.VehicleTypes[0].VehicleType)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)
}
