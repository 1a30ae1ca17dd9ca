// Package memory implements repository.Store in process memory.
//
// Writers hold the store lock for the whole transaction and work on a
// cloned snapshot; commit swaps the clone in, any error discards it.
// Readers see the last committed snapshot.
//
// Import Path: landledger.io/registry/internal/repository/memory
package memory

import (
	"context"
	"sync"
	"time"

	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/repository"
)

// Store is an in-memory repository.Store.
type Store struct {
	mu   sync.RWMutex
	data *snapshot
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{data: newSnapshot()}
}

// InTx runs fn against a private copy of the data and publishes it only if
// fn succeeds and ctx is still live. fn must not call back into s.
func (s *Store) InTx(ctx context.Context, fn func(q repository.Querier) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&queries{snap: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) view() *queries {
	return &queries{snap: s.data}
}

func (s *Store) write(ctx context.Context, fn func(q repository.Querier) error) error {
	return s.InTx(ctx, fn)
}

func (s *Store) InsertLand(ctx context.Context, land domain.Land) error {
	return s.write(ctx, func(q repository.Querier) error { return q.InsertLand(ctx, land) })
}

func (s *Store) GetLand(ctx context.Context, landNumber string) (domain.Land, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().GetLand(ctx, landNumber)
}

func (s *Store) ListLands(ctx context.Context) ([]domain.Land, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListLands(ctx)
}

func (s *Store) InsertOwner(ctx context.Context, owner domain.Owner) error {
	return s.write(ctx, func(q repository.Querier) error { return q.InsertOwner(ctx, owner) })
}

func (s *Store) GetOwner(ctx context.Context, nic string) (domain.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().GetOwner(ctx, nic)
}

func (s *Store) ListOwners(ctx context.Context) ([]domain.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListOwners(ctx)
}

func (s *Store) InsertDeed(ctx context.Context, deed domain.Deed) error {
	return s.write(ctx, func(q repository.Querier) error { return q.InsertDeed(ctx, deed) })
}

func (s *Store) GetDeed(ctx context.Context, deedNumber string) (domain.Deed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().GetDeed(ctx, deedNumber)
}

// GetDeedForUpdate outside a transaction is a plain read.
func (s *Store) GetDeedForUpdate(ctx context.Context, deedNumber string) (domain.Deed, error) {
	return s.GetDeed(ctx, deedNumber)
}

func (s *Store) UpdateDeed(ctx context.Context, deed domain.Deed) error {
	return s.write(ctx, func(q repository.Querier) error { return q.UpdateDeed(ctx, deed) })
}

func (s *Store) SetDeedStatus(ctx context.Context, deedNumber string, status domain.DeedStatus, updatedAt time.Time) error {
	return s.write(ctx, func(q repository.Querier) error { return q.SetDeedStatus(ctx, deedNumber, status, updatedAt) })
}

func (s *Store) DeleteDeed(ctx context.Context, deedNumber string) (domain.Deed, error) {
	var deleted domain.Deed
	err := s.write(ctx, func(q repository.Querier) error {
		var err error
		deleted, err = q.DeleteDeed(ctx, deedNumber)
		return err
	})
	return deleted, err
}

func (s *Store) ListDeeds(ctx context.Context) ([]domain.Deed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListDeeds(ctx)
}

func (s *Store) ListDeedNumbers(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListDeedNumbers(ctx)
}

func (s *Store) SearchDeeds(ctx context.Context, query string) ([]domain.Deed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().SearchDeeds(ctx, query)
}

func (s *Store) ListDeedsByLand(ctx context.Context, landNumber string) ([]domain.Deed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListDeedsByLand(ctx, landNumber)
}

// LockDeedNumbers outside a transaction has nothing to guard.
func (s *Store) LockDeedNumbers(context.Context) error { return nil }

func (s *Store) InsertAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	return s.write(ctx, func(q repository.Querier) error { return q.InsertAuditEntry(ctx, entry) })
}

func (s *Store) ListAuditEntries(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListAuditEntries(ctx, limit)
}

func (s *Store) InsertLedgerEntry(ctx context.Context, deedNumber, digest string, recordedAt time.Time) (domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := s.write(ctx, func(q repository.Querier) error {
		var err error
		entry, err = q.InsertLedgerEntry(ctx, deedNumber, digest, recordedAt)
		return err
	})
	return entry, err
}

func (s *Store) GetLedgerEntry(ctx context.Context, deedNumber string) (domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().GetLedgerEntry(ctx, deedNumber)
}

func (s *Store) ListLedgerEntries(ctx context.Context) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListLedgerEntries(ctx)
}

func (s *Store) Stats(ctx context.Context) (domain.RegistryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().Stats(ctx)
}
