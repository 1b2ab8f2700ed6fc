package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"traffic-service/internal/model"
)

type StatsRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewStatsRepository(db *gorm.DB, timeout time.Duration) *StatsRepository {
	return &StatsRepository{db: db, timeout: timeout}
}

func (r *StatsRepository) Dashboard(ctx context.Context, dayStart, dayEnd time.Time) (*model.DashboardStats, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var stats model.DashboardStats

	if err := r.db.WithContext(ctx).
		Table("officers").
		Select("COUNT(*) AS total_officers, COUNT(*) FILTER (WHERE is_active) AS active_officers").
		Scan(&stats).Error; err != nil {
		return nil, err
	}

	var violations struct {
		TotalViolations   int64
		PendingViolations int64
		TotalRevenue      int64
		TodayRevenue      int64
	}
	if err := r.db.WithContext(ctx).
		Table("violations").
		Select(`COUNT(*) AS total_violations,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_violations,
			COALESCE(SUM(fine_amount) FILTER (WHERE status = 'paid'), 0) AS total_revenue,
			COALESCE(SUM(fine_amount) FILTER (WHERE status = 'paid' AND paid_at >= ? AND paid_at < ?), 0) AS today_revenue`,
			dayStart, dayEnd).
		Scan(&violations).Error; err != nil {
		return nil, err
	}

	stats.TotalViolations = violations.TotalViolations
	stats.PendingViolations = violations.PendingViolations
	stats.TotalRevenue = violations.TotalRevenue
	stats.TodayRevenue = violations.TodayRevenue
	return &stats, nil
}

func (r *StatsRepository) Vehicle(ctx context.Context, vehicleID uuid.UUID) (*model.VehicleStats, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	stats := model.VehicleStats{VehicleID: vehicleID}
	if err := r.db.WithContext(ctx).
		Table("violations").
		Select(`COUNT(*) AS total_violations,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_violations,
			COUNT(*) FILTER (WHERE status = 'paid') AS paid_violations,
			COALESCE(SUM(fine_amount) FILTER (WHERE status IN ('pending', 'disputed')), 0) AS outstanding_amount,
			COALESCE(SUM(fine_amount) FILTER (WHERE status = 'paid'), 0) AS paid_amount`).
		Where("vehicle_id = ?", vehicleID).
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	stats.VehicleID = vehicleID
	return &stats, nil
}

// Breakdown shares each violation type and vehicle type in all recorded
// violations. Types without violations are omitted; percentages have two decimals.
func (r *StatsRepository) Breakdown(ctx context.Context) (*model.StatsBreakdown, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	db := r.db.WithContext(ctx)
	breakdown := model.StatsBreakdown{
		ViolationTypes: []model.ViolationTypeShare{},
		VehicleTypes:   []model.VehicleTypeShare{},
	}
	if err := violationTypeShareQuery(db).Scan(&breakdown.ViolationTypes).Error; err != nil {
		return nil, err
	}
	if err := vehicleTypeShareQuery(db).Scan(&breakdown.VehicleTypes).Error; err != nil {
		return nil, err
	}
	return &breakdown, nil
}

const sharePercentage = "ROUND(COUNT(*) * 100.0 / (SELECT COUNT(*) FROM violations), 2)::float8 AS percentage"

func violationTypeShareQuery(db *gorm.DB) *gorm.DB {
	return db.Table("violations v").
		Select("vt.id AS violation_type_id, vt.name AS name, COUNT(*) AS count, " +
			"COALESCE(SUM(v.fine_amount), 0) AS total_revenue, " + sharePercentage).
		Joins("JOIN violation_types vt ON vt.id = v.violation_type_id").
		Group("vt.id, vt.name").
		Order("count DESC, vt.name")
}

func vehicleTypeShareQuery(db *gorm.DB) *gorm.DB {
	return db.Table("violations v").
		Select("vh.vehicle_type AS vehicle_type, COUNT(*) AS count, " + sharePercentage).
		Joins("JOIN vehicles vh ON vh.id = v.vehicle_id").
		Group("vh.vehicle_type").
		Order("count DESC, vh.vehicle_type")
}
