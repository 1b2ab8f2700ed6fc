package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"traffic-service/internal/model"
)

type AdminRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewAdminRepository(db *gorm.DB, timeout time.Duration) *AdminRepository {
	return &AdminRepository{db: db, timeout: timeout}
}

func (r *AdminRepository) Create(ctx context.Context, admin *model.Admin) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *AdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var admin model.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var admin model.Admin
	if err := r.db.WithContext(ctx).First(&admin, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return r.db.WithContext(ctx).
		Model(&model.Admin{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}
