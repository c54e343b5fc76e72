package service

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dineflow/internal/common/logger"
	"dineflow/internal/microservices/order/domain/dao"
	"dineflow/internal/microservices/order/domain/dto"
	"dineflow/internal/microservices/order/domain/errs"
	"dineflow/internal/microservices/order/repository"
)

const defaultCustomerName = "Guest"

// EventPublisher receives every committed change. Implementations must not
// block the caller.
type EventPublisher interface {
	Publish(kind dao.EventKind, order dao.Order)
}

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (dao.Order, error)
	GetOrder(ctx context.Context, id string) (dao.Order, error)
	ListOrders(ctx context.Context, status dao.Status) ([]dao.Order, error)
	TransitionStatus(ctx context.Context, id string, target dao.Status) (dao.Order, error)
}

type OrderService struct {
	db     repository.OrderRepositoryInterface
	events EventPublisher
	lg     *logger.Logger
	now    func() time.Time
	newID  func() string

	// mu serializes writes so events leave in the same order the store
	// committed them.
	mu sync.Mutex
}

type Option func(*OrderService)

func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *OrderService) { s.newID = gen }
}

func NewOrderService(db repository.OrderRepositoryInterface, events EventPublisher, lg *logger.Logger, opts ...Option) *OrderService {
	if lg == nil {
		lg = logger.Nop()
	}
	s := &OrderService{
		db:     db,
		events: events,
		lg:     lg,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderService) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (dao.Order, error) {
	// 1. Validate before touching the counter
	if err := validateCreate(req); err != nil {
		s.lg.Debug("order_rejected", map[string]any{"reason": err.Error()})
		return dao.Order{}, err
	}

	customer := strings.TrimSpace(req.CustomerName)
	if customer == "" {
		customer = defaultCustomerName
	}
	items := dto.ConvertItems(req.Items)

	s.mu.Lock()
	defer s.mu.Unlock()

	// 2. Allocate number and persist
	number, err := s.db.AllocateOrderNumber(ctx)
	if err != nil {
		s.lg.Error("order_number_allocation_failed", err, nil)
		return dao.Order{}, err
	}

	now := s.now()
	order := dao.Order{
		ID:           s.newID(),
		OrderNumber:  number,
		TableNumber:  req.TableNumber,
		CustomerName: customer,
		Items:        items,
		Total:        dao.ComputeTotal(items),
		Status:       dao.StatusNew,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.Insert(ctx, order); err != nil {
		s.lg.Error("order_insert_failed", err, map[string]any{"order_number": number})
		return dao.Order{}, err
	}

	// 3. Notify listeners
	s.publish(dao.EventNewOrder, order)

	s.lg.Info("order_created", map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"table_number": order.TableNumber,
		"items":        len(order.Items),
		"total":        order.Total,
	})
	return order, nil
}

func validateCreate(req dto.CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return errs.InvalidOrder("order must contain at least one item")
	}
	if req.TableNumber < 0 {
		return errs.InvalidOrder("table number must not be negative, got %d", req.TableNumber)
	}
	var total int64
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return errs.InvalidOrder("item %d (%s): quantity must be positive", i+1, it.Name)
		}
		if it.Price <= 0 {
			return errs.InvalidOrder("item %d (%s): price must be positive", i+1, it.Name)
		}
		if it.Price > math.MaxInt64/int64(it.Quantity) {
			return errs.InvalidOrder("item %d (%s): line total overflows", i+1, it.Name)
		}
		line := it.Price * int64(it.Quantity)
		if total > math.MaxInt64-line {
			return errs.InvalidOrder("order total overflows")
		}
		total += line
	}
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (dao.Order, error) {
	return s.db.Get(ctx, id)
}

// ListOrders returns orders newest first. A store failure is logged and
// yields an empty list so the displays stay up.
func (s *OrderService) ListOrders(ctx context.Context, status dao.Status) ([]dao.Order, error) {
	if status != "" && !status.Valid() {
		return nil, errs.InvalidOrder("unknown status filter %q", status)
	}
	orders, err := s.db.List(ctx, status)
	if err != nil {
		s.lg.Error("list_orders_degraded", err, map[string]any{"status": string(status)})
		return []dao.Order{}, nil
	}
	return orders, nil
}

func (s *OrderService) TransitionStatus(ctx context.Context, id string, target dao.Status) (dao.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var from dao.Status
	updated, err := s.db.Update(ctx, id, func(o *dao.Order) error {
		if !dao.CanTransition(o.Status, target) {
			return errs.InvalidTransition(o.ID, string(o.Status), string(target))
		}
		from = o.Status
		o.Status = target
		o.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		if errs.KindOf(err) == errs.KindStore {
			s.lg.Error("order_transition_failed", err, map[string]any{"order_id": id})
		} else {
			s.lg.Debug("order_transition_rejected", map[string]any{"order_id": id, "reason": err.Error()})
		}
		return dao.Order{}, err
	}

	s.publish(dao.EventOrderUpdated, updated)

	s.lg.Info("order_status_changed", map[string]any{
		"order_id":     updated.ID,
		"order_number": updated.OrderNumber,
		"from":         string(from),
		"to":           string(updated.Status),
	})
	return updated, nil
}

func (s *OrderService) publish(kind dao.EventKind, order dao.Order) {
	if s.events == nil {
		return
	}
	s.events.Publish(kind, order)
}
