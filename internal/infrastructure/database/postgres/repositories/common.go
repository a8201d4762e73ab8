// Package repositories implements the domain repository contracts on top of
// PostgreSQL via pgx. All queries are parameterized; repositories never
// interpolate caller input into SQL text.
package repositories

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shelfswap/shelfswap/pkg/errors"
)

// DB is the subset of pgxpool.Pool the repositories use. Tests substitute a
// stub; production wiring passes the pool directly.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// isNoRows reports whether err is pgx's no-rows sentinel.
func isNoRows(err error) bool {
	return stderrors.Is(err, pgx.ErrNoRows)
}

// wrapQueryErr maps a query failure into the unified error type.
func wrapQueryErr(err error, message string) error {
	return errors.Wrap(err, errors.ErrCodeDatabaseError, message)
}
