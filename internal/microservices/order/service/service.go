package service

import (
	"time"

	"dineflow/internal/common/logger"
	"dineflow/internal/microservices/order/repository"
)

type Service struct {
	OrderService OrderServiceInterface
	StatsService StatsServiceInterface
}

func New(db repository.OrderRepositoryInterface, events EventPublisher, lg *logger.Logger, opts ...Option) *Service {
	orders := NewOrderService(db, events, lg, opts...)
	return &Service{
		OrderService: orders,
		StatsService: NewStatsService(db, lg, orders.now, time.Local),
	}
}
