// Package repositorytest is a behaviour suite every repository.Store must pass.
package repositorytest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/repository"
)

// Factory returns a fresh, empty store.
type Factory func(t *testing.T) repository.Store

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("LandsAndOwners", func(t *testing.T) { testLandsAndOwners(t, newStore(t)) })
	t.Run("DeedLifecycle", func(t *testing.T) { testDeedLifecycle(t, newStore(t)) })
	t.Run("DeedNumbersKeepSealed", func(t *testing.T) { testDeedNumbersKeepSealed(t, newStore(t)) })
	t.Run("DeedReferences", func(t *testing.T) { testDeedReferences(t, newStore(t)) })
	t.Run("SearchAndHistory", func(t *testing.T) { testSearchAndHistory(t, newStore(t)) })
	t.Run("AuditEntries", func(t *testing.T) { testAuditEntries(t, newStore(t)) })
	t.Run("Ledger", func(t *testing.T) { testLedger(t, newStore(t)) })
	t.Run("TxRollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
	t.Run("ConcurrentLedgerAppends", func(t *testing.T) { testConcurrentLedgerAppends(t, newStore(t)) })
	t.Run("Stats", func(t *testing.T) { testStats(t, newStore(t)) })
}

var (
	baseTime = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	regDate  = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
)

// Land returns a valid land fixture.
func Land(number string) domain.Land {
	return domain.Land{
		LandNumber:    number,
		District:      "Colombo",
		Division:      "Thimbirigasyaya",
		LocalDivision: "Kollupitiya",
		Area:          10.5,
		AreaUnit:      "Perches",
		MapReference:  "Map 42/7",
		CreatedAt:     baseTime,
	}
}

// Owner returns a valid owner fixture.
func Owner(nic, name string) domain.Owner {
	return domain.Owner{
		NIC:           nic,
		FullName:      name,
		Address:       "12 Galle Road, Colombo 3",
		ContactNumber: "0771234567",
		CreatedAt:     baseTime,
	}
}

// Deed returns an ACTIVE deed fixture.
func Deed(number, land, nic string) domain.Deed {
	return domain.Deed{
		DeedNumber:       number,
		LandNumber:       land,
		OwnerNIC:         nic,
		RegistrationDate: regDate,
		DeedType:         "Gift",
		Status:           domain.DeedStatusActive,
		SurveyPlanNumber: "SP-1001",
		NotaryName:       "A. Perera",
		CreatedAt:        baseTime,
		UpdatedAt:        baseTime,
	}
}

func seed(t *testing.T, s repository.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.InsertLand(ctx, Land("L001")))
	require.NoError(t, s.InsertLand(ctx, Land("L002")))
	require.NoError(t, s.InsertOwner(ctx, Owner("123456789V", "John Doe")))
	require.NoError(t, s.InsertOwner(ctx, Owner("987654321V", "Jane Silva")))
}

func testLandsAndOwners(t *testing.T, s repository.Store) {
	ctx := context.Background()
	seed(t, s)

	land, err := s.GetLand(ctx, "L001")
	require.NoError(t, err)
	assert.Equal(t, "Colombo", land.District)
	assert.InDelta(t, 10.5, land.Area, 0.0001)
	assert.Equal(t, "10.5 Perches", land.Extent())

	err = s.InsertLand(ctx, Land("L001"))
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = s.GetLand(ctx, "L404")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	lands, err := s.ListLands(ctx)
	require.NoError(t, err)
	require.Len(t, lands, 2)
	assert.Equal(t, "L001", lands[0].LandNumber)

	owner, err := s.GetOwner(ctx, "123456789V")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", owner.FullName)

	err = s.InsertOwner(ctx, Owner("123456789V", "Someone Else"))
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = s.GetOwner(ctx, "000000000V")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	owners, err := s.ListOwners(ctx)
	require.NoError(t, err)
	assert.Len(t, owners, 2)
}

func testDeedLifecycle(t *testing.T, s repository.Store) {
	ctx := context.Background()
	seed(t, s)

	d := Deed("D001", "L001", "123456789V")
	d.Notes = "first registration"
	require.NoError(t, s.InsertDeed(ctx, d))
	assert.ErrorIs(t, s.InsertDeed(ctx, d), repository.ErrConflict)

	got, err := s.GetDeed(ctx, "D001")
	require.NoError(t, err)
	assert.Equal(t, domain.DeedStatusActive, got.Status)
	assert.True(t, got.RegistrationDate.Equal(regDate))
	assert.Equal(t, "first registration", got.Notes)
	assert.Nil(t, got.PreviousRegistrationDate)
	assert.Empty(t, got.PreviousDeedNumber)

	prev := regDate
	chained := Deed("D001-01", "L001", "987654321V")
	chained.PreviousDeedNumber = "D001"
	chained.PreviousOwnerNIC = "123456789V"
	chained.PreviousRegistrationDate = &prev
	require.NoError(t, s.InsertDeed(ctx, chained))

	// UpdateDeed must not touch the previous-* snapshot.
	update := chained
	update.DeedType = "Sale"
	update.PreviousDeedNumber = "HACKED"
	update.PreviousOwnerNIC = ""
	update.PreviousRegistrationDate = nil
	update.UpdatedAt = baseTime.Add(time.Hour)
	require.NoError(t, s.UpdateDeed(ctx, update))

	got, err = s.GetDeed(ctx, "D001-01")
	require.NoError(t, err)
	assert.Equal(t, "Sale", got.DeedType)
	assert.Equal(t, "D001", got.PreviousDeedNumber)
	assert.Equal(t, "123456789V", got.PreviousOwnerNIC)
	require.NotNil(t, got.PreviousRegistrationDate)
	assert.True(t, got.PreviousRegistrationDate.Equal(regDate))
	assert.True(t, got.UpdatedAt.Equal(baseTime.Add(time.Hour)))

	assert.ErrorIs(t, s.UpdateDeed(ctx, Deed("D404", "L001", "123456789V")), repository.ErrNotFound)

	require.NoError(t, s.SetDeedStatus(ctx, "D001", domain.DeedStatusTransferred, baseTime))
	got, err = s.GetDeed(ctx, "D001")
	require.NoError(t, err)
	assert.Equal(t, domain.DeedStatusTransferred, got.Status)
	assert.ErrorIs(t, s.SetDeedStatus(ctx, "D404", domain.DeedStatusActive, baseTime), repository.ErrNotFound)

	numbers, err := s.ListDeedNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"D001", "D001-01"}, numbers)

	deleted, err := s.DeleteDeed(ctx, "D001")
	require.NoError(t, err)
	assert.Equal(t, "L001", deleted.LandNumber)
	assert.Equal(t, "123456789V", deleted.OwnerNIC)

	_, err = s.GetDeed(ctx, "D001")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.DeleteDeed(ctx, "D001")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	deeds, err := s.ListDeeds(ctx)
	require.NoError(t, err)
	require.Len(t, deeds, 1)
	assert.Equal(t, "D001-01", deeds[0].DeedNumber)
}

func testDeedNumbersKeepSealed(t *testing.T, s repository.Store) {
	ctx := context.Background()
	seed(t, s)

	require.NoError(t, s.InsertDeed(ctx, Deed("D001", "L001", "123456789V")))
	require.NoError(t, s.InsertDeed(ctx, Deed("D002", "L001", "123456789V")))
	_, err := s.InsertLedgerEntry(ctx, "D001", digestA, baseTime)
	require.NoError(t, err)
	_, err = s.InsertLedgerEntry(ctx, "D002", digestB, baseTime)
	require.NoError(t, err)

	_, err = s.DeleteDeed(ctx, "D002")
	require.NoError(t, err)

	numbers, err := s.ListDeedNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"D001", "D002"}, numbers)
}

func testDeedReferences(t *testing.T, s repository.Store) {
	ctx := context.Background()
	seed(t, s)

	assert.ErrorIs(t, s.InsertDeed(ctx, Deed("D001", "L404", "123456789V")), repository.ErrNotFound)
	assert.ErrorIs(t, s.InsertDeed(ctx, Deed("D001", "L001", "000000000V")), repository.ErrNotFound)

	require.NoError(t, s.InsertDeed(ctx, Deed("D001", "L001", "123456789V")))
	assert.ErrorIs(t, s.UpdateDeed(ctx, Deed("D001", "L404", "123456789V")), repository.ErrNotFound)
}

func testSearchAndHistory(t *testing.T, s repository.Store) {
	ctx := context.Background()
	seed(t, s)

	older := Deed("D001", "L001", "123456789V")
	older.RegistrationDate = regDate.AddDate(-2, 0, 0)
	newer := Deed("D002", "L001", "987654321V")
	newer.RegistrationDate = regDate
	other := Deed("D003", "L002", "123456789V")
	for _, d := range []domain.Deed{older, newer, other} {
		require.NoError(t, s.InsertDeed(ctx, d))
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", nil},
		{"d00", []string{"D001", "D002", "D003"}},
		{"l002", []string{"D003"}},
		{"987654321v", []string{"D002"}},
		{"%", nil},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("search %q", tt.query), func(t *testing.T) {
			deeds, err := s.SearchDeeds(ctx, tt.query)
			require.NoError(t, err)
			require.NotNil(t, deeds)
			assert.Equal(t, tt.want, deedNumbers(deeds))
		})
	}

	history, err := s.ListDeedsByLand(ctx, "L001")
	require.NoError(t, err)
	assert.Equal(t, []string{"D002", "D001"}, deedNumbers(history))

	history, err = s.ListDeedsByLand(ctx, "L404")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func testAuditEntries(t *testing.T, s repository.Store) {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.InsertAuditEntry(ctx, domain.AuditEntry{
			ID:        fmt.Sprintf("audit-%d", i),
			Timestamp: baseTime.Add(time.Duration(i) * time.Minute),
			Actor:     "Admin",
			Action:    domain.AuditActionCreate,
			Details:   fmt.Sprintf("Registered land: L00%d", i),
		}))
	}
	err := s.InsertAuditEntry(ctx, domain.AuditEntry{
		ID: "audit-0", Timestamp: baseTime, Actor: "Admin", Action: domain.AuditActionCreate, Details: "dup",
	})
	assert.ErrorIs(t, err, repository.ErrConflict)

	entries, err := s.ListAuditEntries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "audit-2", entries[0].ID)
	assert.Equal(t, "audit-0", entries[2].ID)
	assert.Equal(t, domain.AuditActionCreate, entries[0].Action)

	entries, err = s.ListAuditEntries(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

const digestA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
const digestB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

func testLedger(t *testing.T, s repository.Store) {
	ctx := context.Background()

	first, err := s.InsertLedgerEntry(ctx, "D001", digestA, baseTime)
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerBaseBlock+1, first.BlockNumber)
	assert.Equal(t, digestA, first.Digest)

	second, err := s.InsertLedgerEntry(ctx, "D002", digestB, baseTime.Add(time.Second))
	require.NoError(t, err)
	assert.Greater(t, second.BlockNumber, first.BlockNumber)

	_, err = s.InsertLedgerEntry(ctx, "D001", digestB, baseTime)
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := s.GetLedgerEntry(ctx, "D001")
	require.NoError(t, err)
	assert.Equal(t, digestA, got.Digest, "ledger entries are never rewritten")
	assert.True(t, got.Timestamp.Equal(baseTime))

	_, err = s.GetLedgerEntry(ctx, "D404")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	all, err := s.ListLedgerEntries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "D001", all[0].DeedNumber)
	assert.Equal(t, "D002", all[1].DeedNumber)
}

func testTxRollback(t *testing.T, s repository.Store) {
	ctx := context.Background()
	seed(t, s)
	require.NoError(t, s.InsertDeed(ctx, Deed("D001", "L001", "123456789V")))

	boom := errors.New("boom")
	err := s.InTx(ctx, func(q repository.Querier) error {
		if _, err := q.GetDeedForUpdate(ctx, "D001"); err != nil {
			return err
		}
		if err := q.SetDeedStatus(ctx, "D001", domain.DeedStatusTransferred, baseTime); err != nil {
			return err
		}
		if err := q.InsertDeed(ctx, Deed("D001-01", "L001", "987654321V")); err != nil {
			return err
		}
		if _, err := q.InsertLedgerEntry(ctx, "D001-01", digestA, baseTime); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	d, err := s.GetDeed(ctx, "D001")
	require.NoError(t, err)
	assert.Equal(t, domain.DeedStatusActive, d.Status)
	_, err = s.GetDeed(ctx, "D001-01")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.GetLedgerEntry(ctx, "D001-01")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	cctx, cancel := context.WithCancel(ctx)
	err = s.InTx(cctx, func(q repository.Querier) error {
		if err := q.InsertDeed(cctx, Deed("D002", "L001", "987654321V")); err != nil {
			return err
		}
		cancel()
		return cctx.Err()
	})
	require.Error(t, err)
	_, err = s.GetDeed(ctx, "D002")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = s.InTx(ctx, func(q repository.Querier) error {
		if err := q.LockDeedNumbers(ctx); err != nil {
			return err
		}
		return q.InsertDeed(ctx, Deed("D003", "L002", "987654321V"))
	})
	require.NoError(t, err)
	_, err = s.GetDeed(ctx, "D003")
	assert.NoError(t, err)
}

func testConcurrentLedgerAppends(t *testing.T, s repository.Store) {
	ctx := context.Background()
	const n = 20

	var wg sync.WaitGroup
	blocks := make([]int64, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry, err := s.InsertLedgerEntry(ctx, fmt.Sprintf("D%03d", i+1), digestA, baseTime)
			blocks[i], errs[i] = entry.BlockNumber, err
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Greater(t, blocks[i], domain.LedgerBaseBlock)
		assert.False(t, seen[blocks[i]], "block %d allocated twice", blocks[i])
		seen[blocks[i]] = true
	}
}

func testStats(t *testing.T, s repository.Store) {
	ctx := context.Background()
	seed(t, s)
	require.NoError(t, s.InsertDeed(ctx, Deed("D001", "L001", "123456789V")))
	require.NoError(t, s.InsertDeed(ctx, Deed("D002", "L002", "987654321V")))
	require.NoError(t, s.SetDeedStatus(ctx, "D001", domain.DeedStatusTransferred, baseTime))
	_, err := s.InsertLedgerEntry(ctx, "D001", digestA, baseTime)
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistryStats{Lands: 2, Owners: 2, Deeds: 2, ActiveDeeds: 1, LedgerEntries: 1}, stats)
}

func deedNumbers(deeds []domain.Deed) []string {
	var out []string
	for _, d := range deeds {
		out = append(out, d.DeedNumber)
	}
	return out
}
