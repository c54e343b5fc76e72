package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"dineflow/internal/common/logger"
)

const (
	maxRetries = 10
	retryDelay = 2 * time.Second
	pingTTL    = 5 * time.Second
)

// Connect opens a pgx pool and waits for the server to answer a ping,
// retrying while the database is still starting up.
func Connect(ctx context.Context, dsn string, lg *logger.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	return connect(ctx, cfg, lg, maxRetries, retryDelay)
}

func connect(ctx context.Context, cfg *pgxpool.Config, lg *logger.Logger, attempts int, delay time.Duration) (*pgxpool.Pool, error) {
	if lg == nil {
		lg = logger.Nop()
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, pingTTL)
			err = pool.Ping(pctx)
			cancel()
			if err == nil {
				lg.Info("db_connected", map[string]any{
					"host":    cfg.ConnConfig.Host,
					"db":      cfg.ConnConfig.Database,
					"attempt": i,
				})
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err
		lg.Warn("db_connect_retry", map[string]any{"attempt": i, "error": err.Error()})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("db connect canceled: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, lastErr)
}
