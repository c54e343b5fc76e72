package handlers

import (
	"dineflow/internal/common/logger"
	"dineflow/internal/microservices/notificator/hub"
	"dineflow/internal/microservices/order/service"
)

// Subscriber is the listener side of the event broadcaster.
type Subscriber interface {
	Subscribe() *hub.Subscription
	Unsubscribe(s *hub.Subscription)
}

type Handler struct {
	OrderHandler  *OrderHandler
	StatsHandler  *StatsHandler
	StreamHandler *StreamHandler
}

func New(s *service.Service, events Subscriber, lg *logger.Logger) *Handler {
	if lg == nil {
		lg = logger.Nop()
	}
	return &Handler{
		OrderHandler:  NewOrderHandler(s.OrderService, lg),
		StatsHandler:  NewStatsHandler(s.StatsService),
		StreamHandler: NewStreamHandler(events, lg),
	}
}
