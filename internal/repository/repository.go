// Package repository defines the storage contract for lands, owners, deeds,
// audit entries and the integrity ledger.
//
// Two implementations exist: postgres (pgx, one pgx.Tx per InTx call) and
// memory (copy-on-write snapshot swapped on commit). Both return the
// sentinels below; callers translate them into domain errors.
//
// Import Path: landledger.io/registry/internal/repository
package repository

import (
	"context"
	"errors"
	"time"

	"landledger.io/registry/internal/domain"
)

var (
	// ErrNotFound is returned when a keyed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an insert violates a unique key.
	ErrConflict = errors.New("record already exists")
)

// Querier is the set of statements available both inside and outside a
// transaction.
type Querier interface {
	InsertLand(ctx context.Context, land domain.Land) error
	GetLand(ctx context.Context, landNumber string) (domain.Land, error)
	ListLands(ctx context.Context) ([]domain.Land, error)

	InsertOwner(ctx context.Context, owner domain.Owner) error
	GetOwner(ctx context.Context, nic string) (domain.Owner, error)
	ListOwners(ctx context.Context) ([]domain.Owner, error)

	InsertDeed(ctx context.Context, deed domain.Deed) error
	GetDeed(ctx context.Context, deedNumber string) (domain.Deed, error)
	// GetDeedForUpdate locks the deed row until the transaction ends.
	GetDeedForUpdate(ctx context.Context, deedNumber string) (domain.Deed, error)
	// UpdateDeed rewrites the mutable columns only; previous-* stay untouched.
	UpdateDeed(ctx context.Context, deed domain.Deed) error
	SetDeedStatus(ctx context.Context, deedNumber string, status domain.DeedStatus, updatedAt time.Time) error
	DeleteDeed(ctx context.Context, deedNumber string) (domain.Deed, error)
	ListDeeds(ctx context.Context) ([]domain.Deed, error)
	// ListDeedNumbers returns every allocated deed number: live deeds plus
	// numbers sealed in the ledger whose deed was since deleted.
	ListDeedNumbers(ctx context.Context) ([]string, error)
	// SearchDeeds matches query case-insensitively as a substring of the deed
	// number, land number or owner NIC.
	SearchDeeds(ctx context.Context, query string) ([]domain.Deed, error)
	// ListDeedsByLand orders by registration date, newest first.
	ListDeedsByLand(ctx context.Context, landNumber string) ([]domain.Deed, error)
	// LockDeedNumbers serializes deed number allocation until the transaction ends.
	LockDeedNumbers(ctx context.Context) error

	InsertAuditEntry(ctx context.Context, entry domain.AuditEntry) error
	// ListAuditEntries returns the newest entries first; limit <= 0 means all.
	ListAuditEntries(ctx context.Context, limit int) ([]domain.AuditEntry, error)

	// InsertLedgerEntry assigns the next block number.
	InsertLedgerEntry(ctx context.Context, deedNumber, digest string, recordedAt time.Time) (domain.LedgerEntry, error)
	GetLedgerEntry(ctx context.Context, deedNumber string) (domain.LedgerEntry, error)
	// ListLedgerEntries orders by block number ascending.
	ListLedgerEntries(ctx context.Context) ([]domain.LedgerEntry, error)

	Stats(ctx context.Context) (domain.RegistryStats, error)
}

// Store is a Querier that can also run fn atomically. If fn returns an
// error, nothing fn wrote is visible afterwards.
type Store interface {
	Querier
	InTx(ctx context.Context, fn func(q Querier) error) error
	Ping(ctx context.Context) error
}
