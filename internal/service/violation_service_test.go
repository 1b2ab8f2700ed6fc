package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traffic-service/internal/model"
	"traffic-service/internal/repository"
)

type violationFixture struct {
	store     *fakeViolationStore
	types     *fakeTypeStore
	svc       *ViolationService
	officer   model.Principal
	admin     model.Principal
	vehicleID uuid.UUID
	typeID    uuid.UUID
	now       time.Time
}

func newViolationFixture(t *testing.T) *violationFixture {
	t.Helper()

	store := newFakeViolationStore()
	officerID := uuid.New()
	vehicleID := uuid.New()
	typeID := uuid.New()
	email := "owner@example.com"

	store.officers[officerID] = &model.Officer{ID: officerID, ServiceNumber: "MP-0042", FullName: "Sgt. Phiri", IsActive: true}
	store.vehicles[vehicleID] = &model.Vehicle{ID: vehicleID, LicensePlate: "BT 1234", OwnerName: "Chikondi Banda", OwnerEmail: &email}
	vt := &model.ViolationType{ID: typeID, Name: "Speeding", BaseFine: 10000, IsActive: true}
	store.types[typeID] = vt
	types := &fakeTypeStore{rows: map[uuid.UUID]*model.ViolationType{typeID: vt}}

	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	tickets := TicketGenerator{prefix: "TK", intN: func(int) int { return 41 }}
	svc := NewViolationService(fakeScopes{}, store, types, tickets, time.UTC)
	svc.now = func() time.Time { return now }

	return &violationFixture{
		store:     store,
		types:     types,
		svc:       svc,
		officer:   model.Principal{UserID: officerID, Role: model.UserRoleOfficer},
		admin:     model.Principal{UserID: uuid.New(), Role: model.UserRoleAdmin},
		vehicleID: vehicleID,
		typeID:    typeID,
		now:       now,
	}
}

func (f *violationFixture) input() IssueInput {
	return IssueInput{
		VehicleID:       f.vehicleID,
		OfficerID:       f.officer.UserID,
		ViolationTypeID: f.typeID,
		Location:        "M1 Kanengo",
	}
}

func (f *violationFixture) issue(t *testing.T) *model.IssueResult {
	t.Helper()
	res, err := f.svc.Issue(context.Background(), f.officer, f.input())
	require.NoError(t, err)
	return res
}

func TestIssueFirstViolationOfDay(t *testing.T) {
	f := newViolationFixture(t)

	res := f.issue(t)

	assert.Equal(t, "TK202610160042", res.TicketNumber)
	assert.Equal(t, "Speeding", res.ViolationName)
	assert.Equal(t, int64(10000), res.BaseFine)
	assert.Equal(t, int64(0), res.Surcharge)
	assert.Equal(t, int64(10000), res.FinalFine)
	assert.False(t, res.IsRepeatOffender)

	stored := f.store.rows[res.ViolationID]
	require.NotNil(t, stored)
	assert.Equal(t, model.ViolationStatusPending, stored.Status)
	assert.Equal(t, int64(10000), stored.FineAmount)
}

func TestIssueRepeatSurchargeDoesNotCompound(t *testing.T) {
	f := newViolationFixture(t)

	first := f.issue(t)
	second := f.issue(t)
	third := f.issue(t)

	assert.Equal(t, int64(10000), first.FinalFine)
	assert.True(t, second.IsRepeatOffender)
	assert.Equal(t, int64(2500), second.Surcharge)
	assert.Equal(t, int64(12500), second.FinalFine)
	assert.Equal(t, int64(12500), third.FinalFine)
}

func TestIssueCountsOnlySameCalendarDay(t *testing.T) {
	f := newViolationFixture(t)

	yesterday := f.now.Add(-24 * time.Hour)
	f.svc.now = func() time.Time { return yesterday }
	f.issue(t)

	f.svc.now = func() time.Time { return f.now }
	res := f.issue(t)

	assert.False(t, res.IsRepeatOffender)
	assert.Equal(t, int64(10000), res.FinalFine)
	assert.True(t, strings.HasPrefix(res.TicketNumber, "TK20261016"))
}

func TestIssueTicketCollisionIsSurfaced(t *testing.T) {
	f := newViolationFixture(t)
	f.store.issueErr = uniqueErr(repository.ConstraintTicketNumber)

	_, err := f.svc.Issue(context.Background(), f.officer, f.input())
	assert.ErrorIs(t, err, ErrTicketCollision)
}

func TestIssueRejectsBadInput(t *testing.T) {
	f := newViolationFixture(t)
	ctx := context.Background()

	in := f.input()
	in.Location = "  "
	_, err := f.svc.Issue(ctx, f.officer, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = f.input()
	in.ViolationTypeID = uuid.New()
	_, err = f.svc.Issue(ctx, f.officer, in)
	assert.ErrorIs(t, err, ErrNotFound)

	in = f.input()
	in.VehicleID = uuid.New()
	_, err = f.svc.Issue(ctx, f.officer, in)
	assert.ErrorIs(t, err, ErrNotFound)

	in = f.input()
	in.OfficerID = uuid.New()
	_, err = f.svc.Issue(ctx, f.officer, in)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	assert.Empty(t, f.store.rows)
}

func TestUpdateStatusDisputeNeedsNotes(t *testing.T) {
	f := newViolationFixture(t)
	ctx := context.Background()
	res := f.issue(t)

	err := f.svc.UpdateStatus(ctx, f.admin, res.ViolationID, model.ViolationStatusDisputed, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = f.svc.UpdateStatus(ctx, f.admin, res.ViolationID, model.ViolationStatusDisputed, "driver contests radar reading")
	require.NoError(t, err)

	stored := f.store.rows[res.ViolationID]
	assert.Equal(t, model.ViolationStatusDisputed, stored.Status)
	require.NotNil(t, stored.DisputeReason)
	assert.Equal(t, "driver contests radar reading", *stored.DisputeReason)
}

func TestUpdateStatusManualPayment(t *testing.T) {
	f := newViolationFixture(t)
	res := f.issue(t)

	require.NoError(t, f.svc.UpdateStatus(context.Background(), f.admin, res.ViolationID, model.ViolationStatusPaid, "cash at station"))

	stored := f.store.rows[res.ViolationID]
	assert.Equal(t, model.ViolationStatusPaid, stored.Status)
	require.NotNil(t, stored.PaymentMethod)
	assert.Equal(t, model.PaymentMethodManual, *stored.PaymentMethod)
	assert.NotNil(t, stored.PaidAt)

	history, err := f.store.StatusHistory(context.Background(), res.ViolationID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.ViolationStatusPending, *history[1].OldStatus)
	assert.Equal(t, f.admin.UserID, *history[1].ChangedBy)
	assert.Equal(t, model.StatusSourceDashboard, history[1].Source)
}

func TestUpdateStatusGuards(t *testing.T) {
	f := newViolationFixture(t)
	ctx := context.Background()
	res := f.issue(t)

	err := f.svc.UpdateStatus(ctx, f.officer, res.ViolationID, model.ViolationStatusCancelled, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, f.svc.UpdateStatus(ctx, f.admin, res.ViolationID, model.ViolationStatusCancelled, ""))

	err = f.svc.UpdateStatus(ctx, f.admin, res.ViolationID, model.ViolationStatusPaid, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	err = f.svc.UpdateStatus(ctx, f.admin, uuid.New(), model.ViolationStatusCancelled, "")
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.svc.UpdateStatus(ctx, f.admin, res.ViolationID, model.ViolationStatus("archived"), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListScopesOfficersToOwnViolations(t *testing.T) {
	f := newViolationFixture(t)
	ctx := context.Background()
	f.issue(t)

	otherID := uuid.New()
	rowID := uuid.New()
	f.store.rows[rowID] = &model.Violation{
		ID:        rowID,
		OfficerID: otherID,
		VehicleID: f.vehicleID,
		IssuedAt:  f.now.Add(time.Hour),
		Status:    model.ViolationStatusPending,
	}

	own, err := f.svc.List(ctx, f.officer, ListViolationsOptions{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, f.officer.UserID, own[0].Violation.OfficerID)
	require.NotNil(t, own[0].Vehicle)
	assert.Equal(t, "BT 1234", own[0].Vehicle.LicensePlate)

	all, err := f.svc.List(ctx, f.admin, ListViolationsOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, otherID, all[0].Violation.OfficerID)

	_, err = f.svc.List(ctx, f.admin, ListViolationsOptions{Statuses: []model.ViolationStatus{"archived"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetDetailsIncludesHistory(t *testing.T) {
	f := newViolationFixture(t)
	res := f.issue(t)

	details, err := f.svc.GetDetails(context.Background(), f.admin, res.ViolationID)
	require.NoError(t, err)
	assert.Equal(t, res.TicketNumber, details.Record.Violation.TicketNumber)
	require.Len(t, details.History, 1)
	assert.Equal(t, "issued", details.History[0].Note)

	stranger := model.Principal{UserID: uuid.New(), Role: model.UserRoleOfficer}
	_, err = f.svc.GetDetails(context.Background(), stranger, res.ViolationID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeedTypesUpsertsByName(t *testing.T) {
	f := newViolationFixture(t)
	ctx := context.Background()

	err := f.svc.SeedTypes(ctx, []model.ViolationType{
		{Name: "Speeding", BaseFine: 20000, IsActive: true},
		{Name: "No seatbelt", BaseFine: 5000, IsActive: true},
	})
	require.NoError(t, err)

	types, err := f.svc.ListTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "No seatbelt", types[0].Name)
	assert.Equal(t, int64(20000), types[1].BaseFine)

	err = f.svc.SeedTypes(ctx, []model.ViolationType{{Name: "", BaseFine: 1}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
