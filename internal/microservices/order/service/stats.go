package service

import (
	"context"
	"time"

	"dineflow/internal/common/logger"
	"dineflow/internal/microservices/order/domain/dao"
	"dineflow/internal/microservices/order/repository"
)

// Stats counts today's orders except ActiveOrders, which spans all days.
type Stats struct {
	TotalOrders    int   `json:"totalOrders"`
	ActiveOrders   int   `json:"activeOrders"`
	CompletedToday int   `json:"completedToday"`
	TodaysRevenue  int64 `json:"todaysRevenue"`
}

type StatsServiceInterface interface {
	ComputeStats(ctx context.Context) Stats
}

// StatsService derives dashboard figures from a full read of the store.
// "Today" is the calendar day of the clock in loc.
type StatsService struct {
	db  repository.OrderRepositoryInterface
	lg  *logger.Logger
	now func() time.Time
	loc *time.Location
}

func NewStatsService(db repository.OrderRepositoryInterface, lg *logger.Logger, now func() time.Time, loc *time.Location) *StatsService {
	if lg == nil {
		lg = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{db: db, lg: lg, now: now, loc: loc}
}

// ComputeStats never fails; an unreadable store yields zeroed stats.
func (s *StatsService) ComputeStats(ctx context.Context) Stats {
	orders, err := s.db.List(ctx, "")
	if err != nil {
		s.lg.Error("stats_degraded", err, nil)
		return Stats{}
	}
	return Aggregate(orders, s.now().In(s.loc))
}

// Aggregate computes stats for the given snapshot relative to the day of now.
func Aggregate(orders []dao.Order, now time.Time) Stats {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	var st Stats
	for _, o := range orders {
		if o.Status.Active() {
			st.ActiveOrders++
		}
		created := o.CreatedAt.In(now.Location())
		if created.Before(start) || !created.Before(end) {
			continue
		}
		st.TotalOrders++
		if o.Status == dao.StatusCompleted {
			st.CompletedToday++
		}
		if o.Status != dao.StatusCancelled {
			st.TodaysRevenue += o.Total
		}
	}
	return st
}
