package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmptyPatch = errors.New("no fields to update")
	// ErrLeadConverted is returned when a sale targets a lead that is no longer new.
	ErrLeadConverted = errors.New("lead already converted")
)

// DuplicateError reports a unique-constraint violation.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value violates %s", e.Constraint)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation (SQLSTATE 23505).
func IsUniqueViolation(err error) (*DuplicateError, bool) {
	if err == nil {
		return nil, false
	}
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup, true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &DuplicateError{Constraint: pgErr.ConstraintName}, true
	}
	return nil, false
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
