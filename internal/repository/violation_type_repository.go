package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"traffic-service/internal/model"
)

type ViolationTypeRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewViolationTypeRepository(db *gorm.DB, timeout time.Duration) *ViolationTypeRepository {
	return &ViolationTypeRepository{db: db, timeout: timeout}
}

func (r *ViolationTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ViolationType, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var vt model.ViolationType
	if err := r.db.WithContext(ctx).First(&vt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vt, nil
}

func (r *ViolationTypeRepository) ListActive(ctx context.Context) ([]model.ViolationType, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var types []model.ViolationType
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// Upsert inserts the type or refreshes fine and description of an existing one with the same name.
func (r *ViolationTypeRepository) Upsert(ctx context.Context, vt *model.ViolationType) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"base_fine", "description", "is_active"}),
		}).
		Create(vt).Error
}
