// Package persistence writes accepted rows to PostgreSQL in one transaction
// per upload and exposes the read path used by the aggregate queries.
package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/postgres"
)

// maxParams is the PostgreSQL bind parameter limit for a single statement.
const maxParams = 65535

// Gateway is the only component that talks to the database.
//
// It requires the following tables:
//
//	CREATE TABLE departments (id INTEGER PRIMARY KEY, department TEXT);
//	CREATE TABLE jobs        (id INTEGER PRIMARY KEY, job TEXT);
//	CREATE TABLE employees (
//	    id            INTEGER PRIMARY KEY,
//	    name          TEXT NOT NULL,
//	    datetime      TIMESTAMP NOT NULL,
//	    department_id INTEGER NOT NULL,
//	    job_id        INTEGER NOT NULL
//	);
type Gateway struct {
	db     *postgres.Client
	logger *slog.Logger
}

func New(db *postgres.Client, log *slog.Logger) *Gateway {
	return &Gateway{
		db:     db,
		logger: logger.WithComponent(log, "persistence"),
	}
}

// Insert writes rows into the table of entity with a single multi-row
// statement. Either every row is committed or none is. Zero rows is a
// no-op that never touches the database.
func (g *Gateway) Insert(ctx context.Context, entity ingestion.EntityType, rows []ingestion.RawRow) (ingestion.InsertSummary, error) {
	summary := ingestion.InsertSummary{Table: entity.Table()}
	if len(rows) == 0 {
		return summary, nil
	}
	if len(rows)*entity.Arity() > maxParams {
		return summary, apperrors.Newf(apperrors.ErrTooManyRows, http.StatusUnprocessableEntity,
			"Too many records! Must be at most %d lines.", maxParams/entity.Arity())
	}

	query, args := buildInsert(entity, rows)
	err := g.withConn(ctx, func(conn *sqlx.Conn) error {
		return postgres.InTx(ctx, conn, func(tx *sqlx.Tx) error {
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			summary.RowsInserted = n
			return nil
		})
	})
	if err != nil {
		logger.FromContext(ctx, g.logger).Error("bulk insert failed",
			"table", summary.Table,
			"rows", len(rows),
			"error", err,
		)
		return ingestion.InsertSummary{Table: summary.Table}, classify(err)
	}

	logger.FromContext(ctx, g.logger).Info("bulk insert committed",
		"table", summary.Table,
		"rows_inserted", summary.RowsInserted,
	)
	return summary, nil
}

// DeleteAll removes every row of entity's table.
func (g *Gateway) DeleteAll(ctx context.Context, entity ingestion.EntityType) (int64, error) {
	var deleted int64
	err := g.withConn(ctx, func(conn *sqlx.Conn) error {
		return postgres.InTx(ctx, conn, func(tx *sqlx.Tx) error {
			res, err := tx.ExecContext(ctx, "DELETE FROM "+pq.QuoteIdentifier(entity.Table()))
			if err != nil {
				return err
			}
			deleted, err = res.RowsAffected()
			return err
		})
	})
	if err != nil {
		return 0, classify(err)
	}
	logger.FromContext(ctx, g.logger).Info("table purged", "table", entity.Table(), "rows_deleted", deleted)
	return deleted, nil
}

// Select runs a read-only query and scans every result row into dest,
// which must be a pointer to a slice of structs with db tags.
func (g *Gateway) Select(ctx context.Context, dest any, query string, args ...any) error {
	err := g.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, dest, query, args...)
	})
	return classify(err)
}

func (g *Gateway) Ping(ctx context.Context) error {
	return classify(g.db.Ping(ctx))
}

// withConn checks out a connection for the duration of fn and always hands
// it back to the pool.
func (g *Gateway) withConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error {
	conn, err := g.db.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			g.logger.Warn("failed to release connection", "error", cerr)
		}
	}()
	return fn(conn)
}

// buildInsert renders INSERT INTO "t" ("c1","c2") VALUES ($1,$2),($3,$4)...
// and the flattened argument list in row-major order.
func buildInsert(entity ingestion.EntityType, rows []ingestion.RawRow) (string, []any) {
	cols := entity.Columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pq.QuoteIdentifier(c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", pq.QuoteIdentifier(entity.Table()), strings.Join(quoted, ", "))

	args := make([]any, 0, len(rows)*len(cols))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := range cols {
			if j > 0 {
				b.WriteString(", ")
			}
			args = append(args, row.Field(j))
			fmt.Fprintf(&b, "$%d", len(args))
		}
		b.WriteByte(')')
	}
	return b.String(), args
}
