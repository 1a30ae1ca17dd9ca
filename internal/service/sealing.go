package service

import (
	"context"
	"errors"
	"fmt"

	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/integrity"
	"landledger.io/registry/internal/ledger"
	apperrors "landledger.io/registry/internal/pkg/errors"
	"landledger.io/registry/internal/repository"
)

// DeedDigest computes the current digest of deed from its land and owner as
// they are now in q.
func DeedDigest(ctx context.Context, q repository.Querier, deed domain.Deed) (string, error) {
	land, err := RequireLand(ctx, q, deed.LandNumber)
	if err != nil {
		return "", err
	}
	owner, err := RequireOwner(ctx, q, deed.OwnerNIC)
	if err != nil {
		return "", err
	}
	return integrity.Digest(integrity.FieldsFor(deed, land, owner)), nil
}

// SealDeed records the digest of a newly inserted deed in the ledger. It
// must run in the transaction that inserted the deed.
func SealDeed(ctx context.Context, q repository.Querier, deed domain.Deed) (domain.LedgerEntry, error) {
	digest, err := DeedDigest(ctx, q, deed)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	return ledger.New(q).Append(ctx, deed.DeedNumber, digest)
}

// RequireLand loads a land, mapping absence to LAND_NOT_FOUND.
func RequireLand(ctx context.Context, q repository.Querier, landNumber string) (domain.Land, error) {
	land, err := q.GetLand(ctx, landNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Land{}, apperrors.ErrLandNotFoundf(landNumber)
		}
		return domain.Land{}, fmt.Errorf("get land %s: %w", landNumber, err)
	}
	return land, nil
}

// RequireOwner loads an owner, mapping absence to OWNER_NOT_FOUND.
func RequireOwner(ctx context.Context, q repository.Querier, nic string) (domain.Owner, error) {
	owner, err := q.GetOwner(ctx, nic)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Owner{}, apperrors.ErrOwnerNotFoundf(nic)
		}
		return domain.Owner{}, fmt.Errorf("get owner %s: %w", nic, err)
	}
	return owner, nil
}

// RequireDeed loads a deed, locking it when forUpdate is set.
func RequireDeed(ctx context.Context, q repository.Querier, deedNumber string, forUpdate bool) (domain.Deed, error) {
	get := q.GetDeed
	if forUpdate {
		get = q.GetDeedForUpdate
	}
	deed, err := get(ctx, deedNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Deed{}, apperrors.ErrDeedNotFoundf(deedNumber)
		}
		return domain.Deed{}, fmt.Errorf("get deed %s: %w", deedNumber, err)
	}
	return deed, nil
}

// InsertDeed inserts deed, mapping a duplicate key to DEED_ALREADY_EXISTS.
func InsertDeed(ctx context.Context, q repository.Querier, deed domain.Deed) error {
	if err := q.InsertDeed(ctx, deed); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return apperrors.ErrDeedExistsf(deed.DeedNumber)
		}
		return fmt.Errorf("insert deed %s: %w", deed.DeedNumber, err)
	}
	return nil
}
