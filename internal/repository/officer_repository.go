package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"traffic-service/internal/model"
)

type OfficerRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewOfficerRepository(db *gorm.DB, timeout time.Duration) *OfficerRepository {
	return &OfficerRepository{db: db, timeout: timeout}
}

type OfficerUpdate struct {
	IsActive *bool
	FullName *string
	Rank     *string
	Station  *string
}

func (u OfficerUpdate) Empty() bool {
	return u.IsActive == nil && u.FullName == nil && u.Rank == nil && u.Station == nil
}

func (r *OfficerRepository) Create(ctx context.Context, officer *model.Officer) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return r.db.WithContext(ctx).Create(officer).Error
}

func (r *OfficerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Officer, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var officer model.Officer
	if err := r.db.WithContext(ctx).First(&officer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &officer, nil
}

func (r *OfficerRepository) GetByServiceNumber(ctx context.Context, serviceNumber string) (*model.Officer, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var officer model.Officer
	if err := r.db.WithContext(ctx).First(&officer, "service_number = ?", serviceNumber).Error; err != nil {
		return nil, err
	}
	return &officer, nil
}

func (r *OfficerRepository) List(ctx context.Context) ([]model.Officer, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var officers []model.Officer
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&officers).Error; err != nil {
		return nil, err
	}
	return officers, nil
}

func (r *OfficerRepository) Update(ctx context.Context, id uuid.UUID, upd OfficerUpdate) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	fields := map[string]interface{}{}
	if upd.IsActive != nil {
		fields["is_active"] = *upd.IsActive
	}
	if upd.FullName != nil {
		fields["full_name"] = *upd.FullName
	}
	if upd.Rank != nil {
		fields["rank"] = *upd.Rank
	}
	if upd.Station != nil {
		fields["station"] = *upd.Station
	}

	res := r.db.WithContext(ctx).Model(&model.Officer{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OfficerRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return r.db.WithContext(ctx).
		Model(&model.Officer{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}
