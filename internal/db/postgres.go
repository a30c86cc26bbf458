package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"mandi-backend/internal/config"
)

// Connect opens the pool and verifies it with a ping. Every connection runs
// with the configured statement_timeout.
//
// Parameters:
//   - ctx: bounds the initial ping
//   - cfg: database section supplies the DSN, pool size and timeout
//
// Returns:
//   - *pgxpool.Pool: ready pool, closed by the caller
//   - error: if the config cannot be parsed or the database does not answer
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	return pool, nil
}

// PoolConfig translates the database section into a pgxpool config
func PoolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.StatementTimeoutMS > 0 {
		poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.Itoa(cfg.Database.StatementTimeoutMS)
	}
	poolCfg.ConnConfig.RuntimeParams["timezone"] = "Asia/Kolkata"
	return poolCfg, nil
}
