package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"traffic-service/internal/model"
	"traffic-service/internal/repository"
)

type VehicleService struct {
	vehicles VehicleStore
	stats    StatsStore
	now      func() time.Time
}

func NewVehicleService(vehicles VehicleStore, stats StatsStore) *VehicleService {
	return &VehicleService{vehicles: vehicles, stats: stats, now: time.Now}
}

type VehicleInput struct {
	LicensePlate string
	OwnerName    string
	OwnerPhone   string
	OwnerEmail   string
	Type         model.VehicleType
}

func (s *VehicleService) SearchByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	plate = model.NormalizePlate(plate)
	if plate == "" {
		return nil, invalid("license_plate is required")
	}
	vehicle, err := s.vehicles.GetByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("vehicle")
		}
		return nil, storeError("search vehicle", err)
	}
	return vehicle, nil
}

// GetOrCreate returns the vehicle registered under the plate, creating it with
// placeholder owner details when an officer meets it for the first time.
// The bool reports whether a row was inserted.
func (s *VehicleService) GetOrCreate(ctx context.Context, input VehicleInput) (*model.Vehicle, bool, error) {
	plate := model.NormalizePlate(input.LicensePlate)
	if plate == "" {
		return nil, false, invalid("license_plate is required")
	}

	existing, err := s.vehicles.GetByPlate(ctx, plate)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, storeError("search vehicle", err)
	}

	vehicle, err := newVehicle(plate, input, s.now())
	if err != nil {
		return nil, false, err
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		if repository.UniqueViolation(err, repository.ConstraintLicensePlate) {
			// lost a race with another officer registering the same plate
			existing, getErr := s.vehicles.GetByPlate(ctx, plate)
			if getErr != nil {
				return nil, false, storeError("reload vehicle", getErr)
			}
			return existing, false, nil
		}
		return nil, false, storeError("create vehicle", err)
	}
	return vehicle, true, nil
}

func (s *VehicleService) UpdateOwner(ctx context.Context, id uuid.UUID, input VehicleInput) (*model.Vehicle, error) {
	name := strings.TrimSpace(input.OwnerName)
	if id == uuid.Nil || name == "" {
		return nil, invalid("vehicle id and owner_name are required")
	}
	vehicleType := input.Type
	if vehicleType == "" {
		vehicleType = model.VehicleTypeOther
	}
	if !vehicleType.Valid() {
		return nil, invalid("unknown vehicle_type %q", input.Type)
	}
	email, err := optionalEmail(input.OwnerEmail)
	if err != nil {
		return nil, err
	}

	found, err := s.vehicles.UpdateOwner(ctx, id, name, strings.TrimSpace(input.OwnerPhone), email, vehicleType)
	if err != nil {
		return nil, storeError("update vehicle", err)
	}
	if !found {
		return nil, notFound("vehicle")
	}

	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("reload vehicle", err)
	}
	return vehicle, nil
}

func (s *VehicleService) Stats(ctx context.Context, id uuid.UUID) (*model.VehicleStats, error) {
	if _, err := s.vehicles.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("vehicle")
		}
		return nil, storeError("load vehicle", err)
	}
	stats, err := s.stats.Vehicle(ctx, id)
	if err != nil {
		return nil, storeError("vehicle stats", err)
	}
	return stats, nil
}

func newVehicle(plate string, input VehicleInput, now time.Time) (*model.Vehicle, error) {
	vehicle := &model.Vehicle{
		LicensePlate: plate,
		OwnerName:    strings.TrimSpace(input.OwnerName),
		OwnerPhone:   strings.TrimSpace(input.OwnerPhone),
		Type:         input.Type,
		RegisteredAt: now,
	}
	if vehicle.OwnerName == "" {
		vehicle.OwnerName = model.PlaceholderOwnerName
	}
	if vehicle.Type == "" {
		vehicle.Type = model.VehicleTypeOther
	}
	if !vehicle.Type.Valid() {
		return nil, invalid("unknown vehicle_type %q", input.Type)
	}
	email, err := optionalEmail(input.OwnerEmail)
	if err != nil {
		return nil, err
	}
	vehicle.OwnerEmail = email
	return vehicle, nil
}

func optionalEmail(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return nil, invalid("owner_email is not a valid address")
	}
	return &addr.Address, nil
}
