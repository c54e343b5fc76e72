package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaV1 = `
CREATE TABLE IF NOT EXISTS order_counters (
    name  TEXT PRIMARY KEY,
    value BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id            TEXT PRIMARY KEY,
    order_number  BIGINT NOT NULL UNIQUE,
    table_number  INTEGER NOT NULL DEFAULT 0 CHECK (table_number >= 0),
    customer_name TEXT NOT NULL DEFAULT 'Guest',
    notes         TEXT NOT NULL DEFAULT '',
    items         JSONB NOT NULL,
    total         BIGINT NOT NULL,
    status        TEXT NOT NULL CHECK (status IN ('new','preparing','ready','completed','cancelled')),
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
`

// ApplyMigrations creates the order tables when they are missing.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaV1); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
