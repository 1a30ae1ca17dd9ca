// Package ledger is the append-only record of deed digests.
//
// Each deed is sealed exactly once, at creation, and its entry is never
// rewritten. A later edit to the deed therefore shows up as a digest that
// no longer matches the sealed one.
//
// Import Path: landledger.io/registry/internal/ledger
package ledger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"landledger.io/registry/internal/domain"
	apperrors "landledger.io/registry/internal/pkg/errors"
	"landledger.io/registry/internal/pkg/logger"
	"landledger.io/registry/internal/repository"
)

var digestPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Ledger reads and appends entries through a repository.Querier, which may
// be a store or an open transaction.
type Ledger struct {
	q   repository.Querier
	now func() time.Time
}

// New returns a Ledger over q.
func New(q repository.Querier) *Ledger {
	return &Ledger{q: q, now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }}
}

// WithClock returns a copy of l that timestamps entries with now.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	return &Ledger{q: l.q, now: now}
}

// Append seals digest for deedNumber and returns the recorded entry.
func (l *Ledger) Append(ctx context.Context, deedNumber, digest string) (domain.LedgerEntry, error) {
	if deedNumber == "" {
		return domain.LedgerEntry{}, apperrors.ErrValidationf([]apperrors.FieldError{
			{Field: "deedNumber", Code: "REQUIRED", Message: "is required"},
		})
	}
	if !digestPattern.MatchString(digest) {
		return domain.LedgerEntry{}, apperrors.ErrValidationf([]apperrors.FieldError{
			{Field: "digest", Code: "INVALID_FORMAT", Message: "must be 64 lowercase hex characters"},
		})
	}

	entry, err := l.q.InsertLedgerEntry(ctx, deedNumber, digest, l.now())
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.LedgerEntry{}, apperrors.ErrLedgerEntryExistsf(deedNumber)
		}
		return domain.LedgerEntry{}, fmt.Errorf("append ledger entry for %s: %w", deedNumber, err)
	}

	logger.FromContext(ctx).Info("Deed sealed in ledger",
		zap.String("deed_number", deedNumber),
		zap.Int64("block_number", entry.BlockNumber),
	)
	return entry, nil
}

// Lookup returns the entry for deedNumber.
func (l *Ledger) Lookup(ctx context.Context, deedNumber string) (domain.LedgerEntry, error) {
	entry, err := l.q.GetLedgerEntry(ctx, deedNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.LedgerEntry{}, apperrors.ErrLedgerEntryNotFoundf(deedNumber)
		}
		return domain.LedgerEntry{}, fmt.Errorf("lookup ledger entry for %s: %w", deedNumber, err)
	}
	return entry, nil
}

// All returns every entry in block order.
func (l *Ledger) All(ctx context.Context) ([]domain.LedgerEntry, error) {
	entries, err := l.q.ListLedgerEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}
