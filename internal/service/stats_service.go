package service

import (
	"context"
	"time"

	"traffic-service/internal/model"
)

type StatsService struct {
	stats StatsStore
	loc   *time.Location
	now   func() time.Time
}

func NewStatsService(stats StatsStore, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{stats: stats, loc: loc, now: time.Now}
}

// Dashboard counts today's revenue on the server-local calendar day.
func (s *StatsService) Dashboard(ctx context.Context, principal model.Principal) (*model.DashboardStats, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	start, end := dayBounds(s.now(), s.loc)
	stats, err := s.stats.Dashboard(ctx, start, end)
	if err != nil {
		return nil, storeError("dashboard stats", err)
	}
	return stats, nil
}

func (s *StatsService) Breakdown(ctx context.Context, principal model.Principal) (*model.StatsBreakdown, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	breakdown, err := s.stats.Breakdown(ctx)
	if err != nil {
		return nil, storeError("stats breakdown", err)
	}
	return breakdown, nil
}
