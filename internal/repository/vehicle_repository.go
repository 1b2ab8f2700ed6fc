package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"traffic-service/internal/model"
)

type VehicleRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewVehicleRepository(db *gorm.DB, timeout time.Duration) *VehicleRepository {
	return &VehicleRepository{db: db, timeout: timeout}
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var vehicle model.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// GetByPlate expects an already normalized plate.
func (r *VehicleRepository) GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var vehicle model.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "license_plate = ?", plate).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *VehicleRepository) UpdateOwner(ctx context.Context, id uuid.UUID, name, phone string, email *string, vehicleType model.VehicleType) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"owner_name":   name,
			"owner_phone":  phone,
			"owner_email":  email,
			"vehicle_type": vehicleType,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
