package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Shared repository errors.
var (
	ErrNotFound            = errors.New("record not found")
	ErrQuestionInUse       = errors.New("question is referenced by an exam")
	ErrDuplicateSubmission = errors.New("exam already submitted by this student")
	ErrDuplicateEmail      = errors.New("account with this email already exists")
	ErrDuplicateTheme      = errors.New("theme with this name already exists")
	ErrUnknownTheme        = errors.New("referenced theme does not exist")
)

// PostgreSQL error codes the repositories classify.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// notFound converts pgx.ErrNoRows into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
