package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/repository"
)

type snapshot struct {
	lands     map[string]domain.Land
	owners    map[string]domain.Owner
	deeds     map[string]domain.Deed
	audit     []domain.AuditEntry
	ledger    map[string]domain.LedgerEntry
	lastBlock int64
}

func newSnapshot() *snapshot {
	return &snapshot{
		lands:     make(map[string]domain.Land),
		owners:    make(map[string]domain.Owner),
		deeds:     make(map[string]domain.Deed),
		ledger:    make(map[string]domain.LedgerEntry),
		lastBlock: domain.LedgerBaseBlock,
	}
}

func (s *snapshot) clone() *snapshot {
	c := &snapshot{
		lands:     make(map[string]domain.Land, len(s.lands)),
		owners:    make(map[string]domain.Owner, len(s.owners)),
		deeds:     make(map[string]domain.Deed, len(s.deeds)),
		audit:     append([]domain.AuditEntry(nil), s.audit...),
		ledger:    make(map[string]domain.LedgerEntry, len(s.ledger)),
		lastBlock: s.lastBlock,
	}
	for k, v := range s.lands {
		c.lands[k] = v
	}
	for k, v := range s.owners {
		c.owners[k] = v
	}
	for k, v := range s.deeds {
		c.deeds[k] = v
	}
	for k, v := range s.ledger {
		c.ledger[k] = v
	}
	return c
}

// queries implements repository.Querier over one snapshot.
type queries struct {
	snap *snapshot
}

var _ repository.Querier = (*queries)(nil)

func (q *queries) InsertLand(_ context.Context, land domain.Land) error {
	if _, ok := q.snap.lands[land.LandNumber]; ok {
		return repository.ErrConflict
	}
	q.snap.lands[land.LandNumber] = land
	return nil
}

func (q *queries) GetLand(_ context.Context, landNumber string) (domain.Land, error) {
	land, ok := q.snap.lands[landNumber]
	if !ok {
		return domain.Land{}, repository.ErrNotFound
	}
	return land, nil
}

func (q *queries) ListLands(context.Context) ([]domain.Land, error) {
	lands := make([]domain.Land, 0, len(q.snap.lands))
	for _, l := range q.snap.lands {
		lands = append(lands, l)
	}
	sort.Slice(lands, func(i, j int) bool { return lands[i].LandNumber < lands[j].LandNumber })
	return lands, nil
}

func (q *queries) InsertOwner(_ context.Context, owner domain.Owner) error {
	if _, ok := q.snap.owners[owner.NIC]; ok {
		return repository.ErrConflict
	}
	q.snap.owners[owner.NIC] = owner
	return nil
}

func (q *queries) GetOwner(_ context.Context, nic string) (domain.Owner, error) {
	owner, ok := q.snap.owners[nic]
	if !ok {
		return domain.Owner{}, repository.ErrNotFound
	}
	return owner, nil
}

func (q *queries) ListOwners(context.Context) ([]domain.Owner, error) {
	owners := make([]domain.Owner, 0, len(q.snap.owners))
	for _, o := range q.snap.owners {
		owners = append(owners, o)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].NIC < owners[j].NIC })
	return owners, nil
}

// checkReferences mirrors the deeds foreign keys.
func (q *queries) checkReferences(deed domain.Deed) error {
	if _, ok := q.snap.lands[deed.LandNumber]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := q.snap.owners[deed.OwnerNIC]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (q *queries) InsertDeed(_ context.Context, deed domain.Deed) error {
	if _, ok := q.snap.deeds[deed.DeedNumber]; ok {
		return repository.ErrConflict
	}
	if err := q.checkReferences(deed); err != nil {
		return err
	}
	q.snap.deeds[deed.DeedNumber] = deed
	return nil
}

func (q *queries) GetDeed(_ context.Context, deedNumber string) (domain.Deed, error) {
	deed, ok := q.snap.deeds[deedNumber]
	if !ok {
		return domain.Deed{}, repository.ErrNotFound
	}
	return deed, nil
}

// GetDeedForUpdate needs no row lock: the transaction already holds the store lock.
func (q *queries) GetDeedForUpdate(ctx context.Context, deedNumber string) (domain.Deed, error) {
	return q.GetDeed(ctx, deedNumber)
}

func (q *queries) UpdateDeed(_ context.Context, deed domain.Deed) error {
	current, ok := q.snap.deeds[deed.DeedNumber]
	if !ok {
		return repository.ErrNotFound
	}
	if err := q.checkReferences(deed); err != nil {
		return err
	}
	current.LandNumber = deed.LandNumber
	current.OwnerNIC = deed.OwnerNIC
	current.RegistrationDate = deed.RegistrationDate
	current.DeedType = deed.DeedType
	current.Status = deed.Status
	current.SurveyPlanNumber = deed.SurveyPlanNumber
	current.NotaryName = deed.NotaryName
	current.Notes = deed.Notes
	current.UpdatedAt = deed.UpdatedAt
	q.snap.deeds[deed.DeedNumber] = current
	return nil
}

func (q *queries) SetDeedStatus(_ context.Context, deedNumber string, status domain.DeedStatus, updatedAt time.Time) error {
	deed, ok := q.snap.deeds[deedNumber]
	if !ok {
		return repository.ErrNotFound
	}
	deed.Status = status
	deed.UpdatedAt = updatedAt
	q.snap.deeds[deedNumber] = deed
	return nil
}

func (q *queries) DeleteDeed(_ context.Context, deedNumber string) (domain.Deed, error) {
	deed, ok := q.snap.deeds[deedNumber]
	if !ok {
		return domain.Deed{}, repository.ErrNotFound
	}
	delete(q.snap.deeds, deedNumber)
	return deed, nil
}

func (q *queries) ListDeeds(context.Context) ([]domain.Deed, error) {
	return q.filterDeeds(func(domain.Deed) bool { return true }), nil
}

func (q *queries) ListDeedNumbers(context.Context) ([]string, error) {
	numbers := make([]string, 0, len(q.snap.deeds)+len(q.snap.ledger))
	for n := range q.snap.deeds {
		numbers = append(numbers, n)
	}
	for n := range q.snap.ledger {
		if _, live := q.snap.deeds[n]; !live {
			numbers = append(numbers, n)
		}
	}
	sort.Strings(numbers)
	return numbers, nil
}

func (q *queries) SearchDeeds(_ context.Context, query string) ([]domain.Deed, error) {
	if query == "" {
		return []domain.Deed{}, nil
	}
	needle := strings.ToLower(query)
	return q.filterDeeds(func(d domain.Deed) bool {
		return strings.Contains(strings.ToLower(d.DeedNumber), needle) ||
			strings.Contains(strings.ToLower(d.LandNumber), needle) ||
			strings.Contains(strings.ToLower(d.OwnerNIC), needle)
	}), nil
}

func (q *queries) ListDeedsByLand(_ context.Context, landNumber string) ([]domain.Deed, error) {
	deeds := q.filterDeeds(func(d domain.Deed) bool { return d.LandNumber == landNumber })
	sort.SliceStable(deeds, func(i, j int) bool {
		a, b := deeds[i], deeds[j]
		if !a.RegistrationDate.Equal(b.RegistrationDate) {
			return a.RegistrationDate.After(b.RegistrationDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.DeedNumber > b.DeedNumber
	})
	return deeds, nil
}

// LockDeedNumbers is a no-op: the transaction already holds the store lock.
func (q *queries) LockDeedNumbers(context.Context) error { return nil }

// filterDeeds returns matching deeds ordered by deed number.
func (q *queries) filterDeeds(keep func(domain.Deed) bool) []domain.Deed {
	deeds := make([]domain.Deed, 0)
	for _, d := range q.snap.deeds {
		if keep(d) {
			deeds = append(deeds, d)
		}
	}
	sort.Slice(deeds, func(i, j int) bool { return deeds[i].DeedNumber < deeds[j].DeedNumber })
	return deeds
}

func (q *queries) InsertAuditEntry(_ context.Context, entry domain.AuditEntry) error {
	for _, e := range q.snap.audit {
		if e.ID == entry.ID {
			return repository.ErrConflict
		}
	}
	q.snap.audit = append(q.snap.audit, entry)
	return nil
}

func (q *queries) ListAuditEntries(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	entries := append([]domain.AuditEntry(nil), q.snap.audit...)
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].ID > entries[j].ID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return entries, nil
}

func (q *queries) InsertLedgerEntry(_ context.Context, deedNumber, digest string, recordedAt time.Time) (domain.LedgerEntry, error) {
	if _, ok := q.snap.ledger[deedNumber]; ok {
		return domain.LedgerEntry{}, repository.ErrConflict
	}
	q.snap.lastBlock++
	entry := domain.LedgerEntry{
		DeedNumber:  deedNumber,
		Digest:      digest,
		Timestamp:   recordedAt,
		BlockNumber: q.snap.lastBlock,
	}
	q.snap.ledger[deedNumber] = entry
	return entry, nil
}

func (q *queries) GetLedgerEntry(_ context.Context, deedNumber string) (domain.LedgerEntry, error) {
	entry, ok := q.snap.ledger[deedNumber]
	if !ok {
		return domain.LedgerEntry{}, repository.ErrNotFound
	}
	return entry, nil
}

func (q *queries) ListLedgerEntries(context.Context) ([]domain.LedgerEntry, error) {
	entries := make([]domain.LedgerEntry, 0, len(q.snap.ledger))
	for _, e := range q.snap.ledger {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].BlockNumber < entries[j].BlockNumber })
	return entries, nil
}

func (q *queries) Stats(context.Context) (domain.RegistryStats, error) {
	s := domain.RegistryStats{
		Lands:         len(q.snap.lands),
		Owners:        len(q.snap.owners),
		Deeds:         len(q.snap.deeds),
		LedgerEntries: len(q.snap.ledger),
	}
	for _, d := range q.snap.deeds {
		if d.IsActive() {
			s.ActiveDeeds++
		}
	}
	return s, nil
}
