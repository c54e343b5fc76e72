package repository

import (
	"context"

	"dineflow/internal/microservices/order/domain/dao"
)

// Mutator edits a copy of the stored order inside the store's atomic
// section. Returning an error aborts the update and the error is passed
// through unchanged. Only Status and UpdatedAt are persisted.
type Mutator func(o *dao.Order) error

// OrderRepositoryInterface is the storage contract of the order store. All
// implementations return *errs.Error values: NotFound for unknown ids and
// StoreError for persistence failures.
type OrderRepositoryInterface interface {
	// AllocateOrderNumber hands out the next number of the sequence; no two
	// callers ever observe the same value.
	AllocateOrderNumber(ctx context.Context) (int64, error)
	Insert(ctx context.Context, order dao.Order) error
	Get(ctx context.Context, id string) (dao.Order, error)
	// List returns orders newest first, restricted to status when non-empty.
	List(ctx context.Context, status dao.Status) ([]dao.Order, error)
	// Update runs mutate and persists the result as one atomic step with
	// respect to other updates of the same order.
	Update(ctx context.Context, id string, mutate Mutator) (dao.Order, error)
}

var (
	_ OrderRepositoryInterface = (*MemoryRepository)(nil)
	_ OrderRepositoryInterface = (*PostgresRepository)(nil)
	_ OrderRepositoryInterface = (*MongoRepository)(nil)
)
