// Package repository is the Postgres entity store for users, vendors, menus and orders.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository owns every persisted record. Methods are safe for concurrent use;
// each is a single statement or a short transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// New opens a connection pool and pings the database.
// pool_max_conns / pool_min_conns in the URL override the defaults.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if !strings.Contains(databaseURL, "pool_max_conns") {
		cfg.MaxConns = 10
	}
	if !strings.Contains(databaseURL, "pool_min_conns") {
		cfg.MinConns = 2
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = "canteenrush"
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// Ping is used by the readiness probe.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close waits for checked-out connections and closes the pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// withTx runs fn in a read-committed transaction. Row locks taken inside fn
// (SELECT ... FOR UPDATE) serialise concurrent no-shows on the same order.
func (r *Repository) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// Pool exposes the pool to integration test helpers (advisory locks, schema reset).
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
