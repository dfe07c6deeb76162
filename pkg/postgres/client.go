// Package postgres wraps a pooled PostgreSQL handle (lib/pq through sqlx)
// and hands out connections scoped to a single call.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/resilience"
)

const driverName = "postgres"

type Client struct {
	DB *sqlx.DB
}

// New opens the pool and waits for the server to answer a ping, retrying
// transient failures. Authentication failures are not retried.
func New(ctx context.Context, cfg config.PostgresConfig, log *slog.Logger) (*Client, error) {
	db, err := sqlx.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	err = resilience.Retry(ctx, log, "postgres-ping", resilience.RetryConfig{MaxAttempts: cfg.ConnectAttempts}, isAuthFailure,
		func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return db.PingContext(pingCtx)
		})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{DB: db}, nil
}

// NewFromDB wraps an already opened *sql.DB, e.g. a sqlmock handle.
func NewFromDB(db *sql.DB) *Client {
	return &Client{DB: sqlx.NewDb(db, driverName)}
}

func (c *Client) Close() error {
	return c.DB.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Connect checks a dedicated connection out of the pool. The caller must
// Close it on every exit path.
func (c *Client) Connect(ctx context.Context) (*sqlx.Conn, error) {
	conn, err := c.DB.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	return conn, nil
}

// InTx runs fn inside a transaction on conn, committing when fn returns nil
// and rolling back otherwise.
func InTx(ctx context.Context, conn *sqlx.Conn, fn func(tx *sqlx.Tx) error) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func isAuthFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "28000" || pqErr.Code == "28P01"
}
