package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/fit-coach/internal/config"
	"alcyxob/fit-coach/internal/repository"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

// DB is the shared connection pool handed to every repository. database/sql
// waits indefinitely for a free connection, so each operation acquires one
// explicitly with AcquireTimeout and reports repository.ErrUnavailable when
// the wait runs out.
type DB struct {
	db             *sqlx.DB
	acquireTimeout time.Duration
}

// Connect opens the pool, applies the limits and verifies the connection.
func Connect(ctx context.Context, pg config.PostgresConfig, pool config.PoolConfig) (*DB, error) {
	db, err := sqlx.Open("postgres", pg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	db.SetMaxOpenConns(pool.MaxConns)
	db.SetMaxIdleConns(pool.MaxConns)
	db.SetConnMaxIdleTime(pool.IdleTimeout)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return New(db, pool.AcquireTimeout), nil
}

// New wraps an already opened pool.
func New(db *sqlx.DB, acquireTimeout time.Duration) *DB {
	return &DB{db: db, acquireTimeout: acquireTimeout}
}

// Close releases every pooled connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// withConn runs fn on a connection taken from the pool within the acquisition timeout.
func (d *DB) withConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error {
	acquireCtx := ctx
	if d.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, d.acquireTimeout)
		defer cancel()
	}
	conn, err := d.db.Connx(acquireCtx)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("acquire connection: %w", repository.ErrUnavailable)
		}
		return err
	}
	defer conn.Close()
	return mapErr(fn(conn))
}

// inTx runs fn inside a transaction, committing on success and rolling back
// on any error.
func (d *DB) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return d.withConn(ctx, func(conn *sqlx.Conn) error {
		tx, err := conn.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}
