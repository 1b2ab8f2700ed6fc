package model

import (
	"time"

	"github.com/google/uuid"
)

type Officer struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ServiceNumber string     `gorm:"type:varchar(64);not null" json:"service_number"`
	FullName      string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Rank          string     `gorm:"type:varchar(64)" json:"rank"`
	Station       string     `gorm:"type:varchar(255)" json:"station"`
	PinHash       string     `gorm:"type:varchar(255);not null" json:"-"`
	IsActive      bool       `gorm:"not null;default:false" json:"is_active"`
	LastLoginAt   *time.Time `json:"last_login"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Officer) TableName() string {
	return "officers"
}
