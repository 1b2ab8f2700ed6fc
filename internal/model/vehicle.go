package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type VehicleType string

const (
	VehicleTypeSedan      VehicleType = "sedan"
	VehicleTypeSUV        VehicleType = "suv"
	VehicleTypeTruck      VehicleType = "truck"
	VehicleTypeMotorcycle VehicleType = "motorcycle"
	VehicleTypeBus        VehicleType = "bus"
	VehicleTypeOther      VehicleType = "other"
)

func (t VehicleType) Valid() bool {
	switch t {
	case VehicleTypeSedan, VehicleTypeSUV, VehicleTypeTruck, VehicleTypeMotorcycle, VehicleTypeBus, VehicleTypeOther:
		return true
	}
	return false
}

// PlaceholderOwnerName is stored for vehicles first seen at a traffic stop.
const PlaceholderOwnerName = "Unknown"

type Vehicle struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	LicensePlate string      `gorm:"type:varchar(32);not null" json:"license_plate"`
	OwnerName    string      `gorm:"type:varchar(255);not null" json:"owner_name"`
	OwnerPhone   string      `gorm:"type:varchar(32)" json:"owner_phone"`
	OwnerEmail   *string     `gorm:"type:varchar(255)" json:"owner_email"`
	Type         VehicleType `gorm:"column:vehicle_type;type:vehicle_type;not null;default:'other'" json:"vehicle_type"`
	RegisteredAt time.Time   `gorm:"not null" json:"registration_date"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// NormalizePlate trims and uppercases a license plate for storage and lookup.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
