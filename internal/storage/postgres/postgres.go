// Package postgres persists the meal catalog in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/mealmax/internal/config"
)

// connectTimeout bounds the initial reachability check when opening a pool.
const connectTimeout = 10 * time.Second

// Pool owns the pgx connection pool shared by the meal repositories. It
// exposes only what the service needs: a health probe, shutdown, and the
// raw pool for repository construction.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool opens a connection pool for the catalog database and verifies it
// is reachable before returning.
//
// Precondition: cfg must describe a reachable PostgreSQL instance.
// Postcondition: Returns a Pool that has answered at least one ping, or a
// non-nil error with no pool left open.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("opening pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("catalog database unreachable: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Health pings the catalog database, failing if it does not answer within
// the given timeout. Used by the db-check endpoint and the periodic health
// service.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging catalog database: %w", err)
	}
	return nil
}

// Close releases every pooled connection.
//
// Postcondition: The pool and any repository built on it are unusable.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB exposes the underlying pgxpool.Pool for repository construction.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
