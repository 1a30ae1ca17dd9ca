// Package postgres implements repository.Store on PostgreSQL with pgx.
//
// Queries mirrors the sqlc layout (DBTX, New, WithTx) so statements run the
// same way against the pool or inside a pgx.Tx.
//
// Import Path: landledger.io/registry/internal/repository/postgres
package postgres

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"landledger.io/registry/internal/repository"
)

// Schema creates every registry table, sequence and trigger. It is idempotent.
//
//go:embed schema.sql
var Schema string

// SQLSTATE codes mapped to repository sentinels.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// deedNumberLockKey is the pg_advisory_xact_lock key guarding deed number allocation.
const deedNumberLockKey int64 = 0x6465656473 // "deeds"

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries runs registry statements against a DBTX.
type Queries struct {
	db DBTX
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// mapError converts pgx errors into repository sentinels, keeping the cause.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return errors.Join(repository.ErrConflict, err)
		case foreignKeyViolation:
			return errors.Join(repository.ErrNotFound, err)
		}
	}
	return err
}
