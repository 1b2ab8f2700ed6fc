package model

import (
	"time"

	"github.com/google/uuid"
)

// ViolationType is reference data. BaseFine is in whole currency units.
type ViolationType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"violation_name"`
	BaseFine    int64     `gorm:"not null" json:"base_fine"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ViolationType) TableName() string {
	return "violation_types"
}
