package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dineflow/internal/microservices/order/domain/dao"
	"dineflow/internal/microservices/order/domain/errs"
)

const (
	counterName     = "orderNumber"
	uniqueViolation = "23505"

	selectOrder = `SELECT id, order_number, table_number, customer_name, notes, items, total, status, created_at, updated_at FROM orders`
)

type PostgresRepository struct {
	pool *pgxpool.Pool
	seed int64
}

func NewPostgresRepository(pool *pgxpool.Pool, seed int64) *PostgresRepository {
	return &PostgresRepository{pool: pool, seed: seed}
}

// AllocateOrderNumber creates the counter at seed on first use and bumps it
// afterwards; the upsert is a single statement so concurrent callers queue
// on the row lock.
func (r *PostgresRepository) AllocateOrderNumber(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO order_counters (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = order_counters.value + 1
		RETURNING value
	`, counterName, r.seed).Scan(&n)
	if err != nil {
		return 0, errs.Store("allocate order number", err)
	}
	return n, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, order dao.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return errs.Store("encode order items", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO orders
		    (id, order_number, table_number, customer_name, notes, items, total, status, created_at, updated_at)
		VALUES
		    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		order.ID,
		order.OrderNumber,
		order.TableNumber,
		order.CustomerName,
		order.Notes,
		items,
		order.Total,
		string(order.Status),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errs.Store("insert order", fmt.Errorf("order %s already exists: %w", order.ID, err))
		}
		return errs.Store("insert order", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (dao.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, selectOrder+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return dao.Order{}, errs.NotFound(id)
	}
	if err != nil {
		return dao.Order{}, errs.Store("get order", err)
	}
	return o, nil
}

func (r *PostgresRepository) List(ctx context.Context, status dao.Status) ([]dao.Order, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = r.pool.Query(ctx, selectOrder+` ORDER BY order_number DESC`)
	} else {
		rows, err = r.pool.Query(ctx, selectOrder+` WHERE status = $1 ORDER BY order_number DESC`, string(status))
	}
	if err != nil {
		return nil, errs.Store("list orders", err)
	}
	defer rows.Close()

	out := make([]dao.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errs.Store("scan order", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Store("list orders", err)
	}
	return out, nil
}

// Update locks the row with SELECT ... FOR UPDATE so that two transitions
// of the same order cannot both pass the mutator's check.
func (r *PostgresRepository) Update(ctx context.Context, id string, mutate Mutator) (dao.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return dao.Order{}, errs.Store("begin update", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := scanOrder(tx.QueryRow(ctx, selectOrder+` WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return dao.Order{}, errs.NotFound(id)
	}
	if err != nil {
		return dao.Order{}, errs.Store("lock order", err)
	}

	if err := mutate(&o); err != nil {
		return dao.Order{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1
	`, id, string(o.Status), o.UpdatedAt); err != nil {
		return dao.Order{}, errs.Store("update order", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return dao.Order{}, errs.Store("commit update", err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (dao.Order, error) {
	var (
		o      dao.Order
		items  []byte
		status string
	)
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.TableNumber,
		&o.CustomerName,
		&o.Notes,
		&items,
		&o.Total,
		&status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return dao.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return dao.Order{}, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}
	o.Status = dao.Status(status)
	return o, nil
}
