package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/repository"
)

var _ repository.Querier = (*Queries)(nil)

const landColumns = `land_number, district, division, local_division, area, area_unit, map_reference, created_at`

const insertLand = `INSERT INTO lands (` + landColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (q *Queries) InsertLand(ctx context.Context, l domain.Land) error {
	_, err := q.db.Exec(ctx, insertLand,
		l.LandNumber, l.District, l.Division, l.LocalDivision, l.Area, l.AreaUnit, l.MapReference, l.CreatedAt)
	return mapError(err)
}

const getLand = `SELECT ` + landColumns + ` FROM lands WHERE land_number = $1`

func (q *Queries) GetLand(ctx context.Context, landNumber string) (domain.Land, error) {
	land, err := scanLand(q.db.QueryRow(ctx, getLand, landNumber))
	return land, mapError(err)
}

const listLands = `SELECT ` + landColumns + ` FROM lands ORDER BY land_number`

func (q *Queries) ListLands(ctx context.Context) ([]domain.Land, error) {
	rows, err := q.db.Query(ctx, listLands)
	if err != nil {
		return nil, mapError(err)
	}
	lands, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Land, error) {
		return scanLand(row)
	})
	return lands, mapError(err)
}

func scanLand(row pgx.Row) (domain.Land, error) {
	var l domain.Land
	err := row.Scan(&l.LandNumber, &l.District, &l.Division, &l.LocalDivision, &l.Area, &l.AreaUnit, &l.MapReference, &l.CreatedAt)
	return l, err
}

const ownerColumns = `nic, full_name, address, contact_number, previous_owner_name, created_at`

const insertOwner = `INSERT INTO owners (` + ownerColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

func (q *Queries) InsertOwner(ctx context.Context, o domain.Owner) error {
	_, err := q.db.Exec(ctx, insertOwner,
		o.NIC, o.FullName, o.Address, o.ContactNumber, o.PreviousOwnerName, o.CreatedAt)
	return mapError(err)
}

const getOwner = `SELECT ` + ownerColumns + ` FROM owners WHERE nic = $1`

func (q *Queries) GetOwner(ctx context.Context, nic string) (domain.Owner, error) {
	owner, err := scanOwner(q.db.QueryRow(ctx, getOwner, nic))
	return owner, mapError(err)
}

const listOwners = `SELECT ` + ownerColumns + ` FROM owners ORDER BY nic`

func (q *Queries) ListOwners(ctx context.Context) ([]domain.Owner, error) {
	rows, err := q.db.Query(ctx, listOwners)
	if err != nil {
		return nil, mapError(err)
	}
	owners, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Owner, error) {
		return scanOwner(row)
	})
	return owners, mapError(err)
}

func scanOwner(row pgx.Row) (domain.Owner, error) {
	var o domain.Owner
	err := row.Scan(&o.NIC, &o.FullName, &o.Address, &o.ContactNumber, &o.PreviousOwnerName, &o.CreatedAt)
	return o, err
}

const deedColumns = `deed_number, land_number, owner_nic, registration_date, deed_type, status,
	survey_plan_number, notary_name, previous_deed_number, previous_owner_nic,
	previous_registration_date, notes, created_at, updated_at`

const insertDeed = `INSERT INTO deeds (` + deedColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func (q *Queries) InsertDeed(ctx context.Context, d domain.Deed) error {
	_, err := q.db.Exec(ctx, insertDeed,
		d.DeedNumber,
		d.LandNumber,
		d.OwnerNIC,
		d.RegistrationDate,
		d.DeedType,
		string(d.Status),
		d.SurveyPlanNumber,
		d.NotaryName,
		nullText(d.PreviousDeedNumber),
		nullText(d.PreviousOwnerNIC),
		nullDate(d.PreviousRegistrationDate),
		nullText(d.Notes),
		d.CreatedAt,
		d.UpdatedAt,
	)
	return mapError(err)
}

const getDeed = `SELECT ` + deedColumns + ` FROM deeds WHERE deed_number = $1`

func (q *Queries) GetDeed(ctx context.Context, deedNumber string) (domain.Deed, error) {
	deed, err := scanDeed(q.db.QueryRow(ctx, getDeed, deedNumber))
	return deed, mapError(err)
}

const getDeedForUpdate = getDeed + ` FOR UPDATE`

func (q *Queries) GetDeedForUpdate(ctx context.Context, deedNumber string) (domain.Deed, error) {
	deed, err := scanDeed(q.db.QueryRow(ctx, getDeedForUpdate, deedNumber))
	return deed, mapError(err)
}

const updateDeed = `UPDATE deeds
SET land_number = $2,
    owner_nic = $3,
    registration_date = $4,
    deed_type = $5,
    status = $6,
    survey_plan_number = $7,
    notary_name = $8,
    notes = $9,
    updated_at = $10
WHERE deed_number = $1`

func (q *Queries) UpdateDeed(ctx context.Context, d domain.Deed) error {
	tag, err := q.db.Exec(ctx, updateDeed,
		d.DeedNumber,
		d.LandNumber,
		d.OwnerNIC,
		d.RegistrationDate,
		d.DeedType,
		string(d.Status),
		d.SurveyPlanNumber,
		d.NotaryName,
		nullText(d.Notes),
		d.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

const setDeedStatus = `UPDATE deeds SET status = $2, updated_at = $3 WHERE deed_number = $1`

func (q *Queries) SetDeedStatus(ctx context.Context, deedNumber string, status domain.DeedStatus, updatedAt time.Time) error {
	tag, err := q.db.Exec(ctx, setDeedStatus, deedNumber, string(status), updatedAt)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

const deleteDeed = `DELETE FROM deeds WHERE deed_number = $1 RETURNING ` + deedColumns

func (q *Queries) DeleteDeed(ctx context.Context, deedNumber string) (domain.Deed, error) {
	deed, err := scanDeed(q.db.QueryRow(ctx, deleteDeed, deedNumber))
	return deed, mapError(err)
}

const listDeeds = `SELECT ` + deedColumns + ` FROM deeds ORDER BY deed_number`

func (q *Queries) ListDeeds(ctx context.Context) ([]domain.Deed, error) {
	return q.queryDeeds(ctx, listDeeds)
}

// Sealed numbers stay reserved after their deed is deleted.
const listDeedNumbers = `SELECT deed_number FROM deeds
UNION
SELECT deed_number FROM ledger_entries
ORDER BY deed_number`

func (q *Queries) ListDeedNumbers(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listDeedNumbers)
	if err != nil {
		return nil, mapError(err)
	}
	numbers, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return numbers, mapError(err)
}

// strpos avoids treating % and _ in the query as LIKE wildcards.
const searchDeeds = `SELECT ` + deedColumns + ` FROM deeds
WHERE strpos(lower(deed_number), lower($1)) > 0
   OR strpos(lower(land_number), lower($1)) > 0
   OR strpos(lower(owner_nic), lower($1)) > 0
ORDER BY deed_number`

func (q *Queries) SearchDeeds(ctx context.Context, query string) ([]domain.Deed, error) {
	if query == "" {
		return []domain.Deed{}, nil
	}
	return q.queryDeeds(ctx, searchDeeds, query)
}

const listDeedsByLand = `SELECT ` + deedColumns + ` FROM deeds
WHERE land_number = $1
ORDER BY registration_date DESC, created_at DESC, deed_number DESC`

func (q *Queries) ListDeedsByLand(ctx context.Context, landNumber string) ([]domain.Deed, error) {
	return q.queryDeeds(ctx, listDeedsByLand, landNumber)
}

const lockDeedNumbers = `SELECT pg_advisory_xact_lock($1)`

func (q *Queries) LockDeedNumbers(ctx context.Context) error {
	_, err := q.db.Exec(ctx, lockDeedNumbers, deedNumberLockKey)
	return mapError(err)
}

func (q *Queries) queryDeeds(ctx context.Context, sql string, args ...interface{}) ([]domain.Deed, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	deeds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Deed, error) {
		return scanDeed(row)
	})
	return deeds, mapError(err)
}

func scanDeed(row pgx.Row) (domain.Deed, error) {
	var (
		d           domain.Deed
		status      string
		prevDeed    pgtype.Text
		prevOwner   pgtype.Text
		prevRegDate pgtype.Date
		notes       pgtype.Text
	)
	err := row.Scan(
		&d.DeedNumber,
		&d.LandNumber,
		&d.OwnerNIC,
		&d.RegistrationDate,
		&d.DeedType,
		&status,
		&d.SurveyPlanNumber,
		&d.NotaryName,
		&prevDeed,
		&prevOwner,
		&prevRegDate,
		&notes,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return domain.Deed{}, err
	}
	d.Status = domain.DeedStatus(status)
	d.PreviousDeedNumber = prevDeed.String
	d.PreviousOwnerNIC = prevOwner.String
	if prevRegDate.Valid {
		t := prevRegDate.Time
		d.PreviousRegistrationDate = &t
	}
	d.Notes = notes.String
	return d, nil
}

const insertAuditEntry = `INSERT INTO audit_logs (id, created_at, actor, action, details) VALUES ($1, $2, $3, $4, $5)`

func (q *Queries) InsertAuditEntry(ctx context.Context, e domain.AuditEntry) error {
	_, err := q.db.Exec(ctx, insertAuditEntry, e.ID, e.Timestamp, e.Actor, string(e.Action), e.Details)
	return mapError(err)
}

const listAuditEntries = `SELECT id, created_at, actor, action, details FROM audit_logs
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListAuditEntries(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	sql := listAuditEntries
	var args []interface{}
	if limit > 0 {
		sql += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AuditEntry, error) {
		var (
			e      domain.AuditEntry
			action string
		)
		if err := row.Scan(&e.ID, &e.Timestamp, &e.Actor, &action, &e.Details); err != nil {
			return e, err
		}
		e.Action = domain.AuditAction(action)
		return e, nil
	})
	return entries, mapError(err)
}

const insertLedgerEntry = `INSERT INTO ledger_entries (deed_number, digest, recorded_at)
VALUES ($1, $2, $3)
RETURNING deed_number, digest, recorded_at, block_number`

// InsertLedgerEntry takes the block number from ledger_block_seq. A rolled
// back insert leaves a gap; numbers stay strictly increasing.
func (q *Queries) InsertLedgerEntry(ctx context.Context, deedNumber, digest string, recordedAt time.Time) (domain.LedgerEntry, error) {
	entry, err := scanLedgerEntry(q.db.QueryRow(ctx, insertLedgerEntry, deedNumber, digest, recordedAt))
	return entry, mapError(err)
}

const getLedgerEntry = `SELECT deed_number, digest, recorded_at, block_number FROM ledger_entries WHERE deed_number = $1`

func (q *Queries) GetLedgerEntry(ctx context.Context, deedNumber string) (domain.LedgerEntry, error) {
	entry, err := scanLedgerEntry(q.db.QueryRow(ctx, getLedgerEntry, deedNumber))
	return entry, mapError(err)
}

const listLedgerEntries = `SELECT deed_number, digest, recorded_at, block_number FROM ledger_entries ORDER BY block_number`

func (q *Queries) ListLedgerEntries(ctx context.Context) ([]domain.LedgerEntry, error) {
	rows, err := q.db.Query(ctx, listLedgerEntries)
	if err != nil {
		return nil, mapError(err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LedgerEntry, error) {
		return scanLedgerEntry(row)
	})
	return entries, mapError(err)
}

func scanLedgerEntry(row pgx.Row) (domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := row.Scan(&e.DeedNumber, &e.Digest, &e.Timestamp, &e.BlockNumber)
	return e, err
}

const stats = `SELECT
    (SELECT count(*) FROM lands),
    (SELECT count(*) FROM owners),
    (SELECT count(*) FROM deeds),
    (SELECT count(*) FROM deeds WHERE status = 'ACTIVE'),
    (SELECT count(*) FROM ledger_entries)`

func (q *Queries) Stats(ctx context.Context) (domain.RegistryStats, error) {
	var s domain.RegistryStats
	err := q.db.QueryRow(ctx, stats).Scan(&s.Lands, &s.Owners, &s.Deeds, &s.ActiveDeeds, &s.LedgerEntries)
	if err != nil {
		return s, fmt.Errorf("registry stats: %w", mapError(err))
	}
	return s, nil
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func nullDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}
