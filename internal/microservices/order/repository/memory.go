package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dineflow/internal/microservices/order/domain/dao"
	"dineflow/internal/microservices/order/domain/errs"
)

// MemoryRepository keeps orders in an append-only arena with an id index.
// Nothing survives a restart.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders []dao.Order
	index  map[string]int
	next   int64
}

func NewMemoryRepository(seed int64) *MemoryRepository {
	return &MemoryRepository{index: make(map[string]int), next: seed}
}

func (r *MemoryRepository) AllocateOrderNumber(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.next
	r.next++
	return n, nil
}

func (r *MemoryRepository) Insert(_ context.Context, order dao.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[order.ID]; ok {
		return errs.Store("insert order", fmt.Errorf("order %s already exists", order.ID))
	}
	r.index[order.ID] = len(r.orders)
	r.orders = append(r.orders, order.Clone())
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (dao.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return dao.Order{}, errs.NotFound(id)
	}
	return r.orders[i].Clone(), nil
}

func (r *MemoryRepository) List(_ context.Context, status dao.Status) ([]dao.Order, error) {
	r.mu.RLock()
	out := make([]dao.Order, 0, len(r.orders))
	for i := len(r.orders) - 1; i >= 0; i-- {
		if status != "" && r.orders[i].Status != status {
			continue
		}
		out = append(out, r.orders[i].Clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderNumber > out[j].OrderNumber })
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, mutate Mutator) (dao.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return dao.Order{}, errs.NotFound(id)
	}
	o := r.orders[i].Clone()
	if err := mutate(&o); err != nil {
		return dao.Order{}, err
	}
	r.orders[i].Status = o.Status
	r.orders[i].UpdatedAt = o.UpdatedAt
	return r.orders[i].Clone(), nil
}
