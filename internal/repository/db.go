package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rosterhq/shift-roster/internal/domain"
)

// DBTX is the subset of *pgxpool.Pool the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const uniqueViolation = "23505"

var (
	// ErrDuplicateEmail is returned when a user email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrSlotTaken is returned when an active assignment already holds the slot.
	ErrSlotTaken = errors.New("slot already assigned")
	// ErrStaleWrite is returned when a conditional update matched no row.
	ErrStaleWrite = errors.New("record changed concurrently")
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// applyPage adds LIMIT/OFFSET only when the caller asked for a page; an unset
// page returns every matching row.
func applyPage(builder sq.SelectBuilder, page domain.Page) sq.SelectBuilder {
	if page.Limit > 0 {
		builder = builder.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		builder = builder.Offset(uint64(page.Offset))
	}
	return builder
}
