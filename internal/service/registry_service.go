// Package service provides the registry's business logic.
//
// Services own the transaction boundary: each mutation is one
// repository.Store.InTx call that also writes its audit entry. Events are
// published only after commit.
//
// Import Path: landledger.io/registry/internal/service
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/governance/audit"
	"landledger.io/registry/internal/ledger"
	apperrors "landledger.io/registry/internal/pkg/errors"
	"landledger.io/registry/internal/pkg/logger"
	"landledger.io/registry/internal/repository"
)

// SealedDeed is a deed with the ledger entry recorded at its creation.
type SealedDeed struct {
	domain.Deed
	LedgerEntry domain.LedgerEntry `json:"ledgerEntry"`
}

// RegistryService manages lands, owners and deeds.
type RegistryService struct {
	store  repository.Store
	audit  *audit.Logger
	events domain.Publisher
	now    func() time.Time
}

// NewRegistryService creates a new RegistryService. A nil events publisher
// discards events.
func NewRegistryService(store repository.Store, auditLogger *audit.Logger, events domain.Publisher) *RegistryService {
	if events == nil {
		events = domain.NopPublisher{}
	}
	return &RegistryService{
		store:  store,
		audit:  auditLogger,
		events: events,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// CreateLand registers a land.
func (s *RegistryService) CreateLand(ctx context.Context, in LandInput, actor string) (domain.Land, error) {
	if err := in.Validate(); err != nil {
		return domain.Land{}, err
	}
	land := domain.Land{
		LandNumber:    strings.TrimSpace(in.LandNumber),
		District:      in.District,
		Division:      in.Division,
		LocalDivision: in.LocalDivision,
		Area:          in.Area,
		AreaUnit:      in.AreaUnit,
		MapReference:  in.MapReference,
		CreatedAt:     s.now(),
	}

	var entry domain.AuditEntry
	err := s.store.InTx(ctx, func(q repository.Querier) error {
		if err := q.InsertLand(ctx, land); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apperrors.ErrLandExistsf(land.LandNumber)
			}
			return fmt.Errorf("insert land %s: %w", land.LandNumber, err)
		}
		var err error
		entry, err = s.audit.LogAction(ctx, q, domain.AuditActionCreate, actor, "Registered land: "+land.LandNumber)
		return err
	})
	if err != nil {
		return domain.Land{}, err
	}

	logger.FromContext(ctx).Info("Land registered",
		zap.String("land_number", land.LandNumber),
		zap.String("actor", entry.Actor),
	)
	s.publishAudit(ctx, domain.EventLandRegistered, "land", land.LandNumber, entry)
	return land, nil
}

// GetLand returns a land by number.
func (s *RegistryService) GetLand(ctx context.Context, landNumber string) (domain.Land, error) {
	return RequireLand(ctx, s.store, landNumber)
}

// ListLands returns every land ordered by number.
func (s *RegistryService) ListLands(ctx context.Context) ([]domain.Land, error) {
	lands, err := s.store.ListLands(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lands: %w", err)
	}
	return lands, nil
}

// CreateOwner registers an owner.
func (s *RegistryService) CreateOwner(ctx context.Context, in OwnerInput, actor string) (domain.Owner, error) {
	if err := in.Validate(); err != nil {
		return domain.Owner{}, err
	}
	owner := domain.Owner{
		NIC:               strings.TrimSpace(in.NIC),
		FullName:          in.FullName,
		Address:           in.Address,
		ContactNumber:     in.ContactNumber,
		PreviousOwnerName: in.PreviousOwnerName,
		CreatedAt:         s.now(),
	}

	var entry domain.AuditEntry
	err := s.store.InTx(ctx, func(q repository.Querier) error {
		if err := q.InsertOwner(ctx, owner); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apperrors.ErrOwnerExistsf(owner.NIC)
			}
			return fmt.Errorf("insert owner %s: %w", owner.NIC, err)
		}
		var err error
		entry, err = s.audit.LogAction(ctx, q, domain.AuditActionCreate, actor,
			fmt.Sprintf("Registered owner: %s (%s)", owner.FullName, owner.NIC))
		return err
	})
	if err != nil {
		return domain.Owner{}, err
	}

	logger.FromContext(ctx).Info("Owner registered",
		zap.String("nic", owner.NIC),
		zap.String("actor", entry.Actor),
	)
	s.publishAudit(ctx, domain.EventOwnerRegistered, "owner", owner.NIC, entry)
	return owner, nil
}

// GetOwner returns an owner by NIC.
func (s *RegistryService) GetOwner(ctx context.Context, nic string) (domain.Owner, error) {
	return RequireOwner(ctx, s.store, nic)
}

// ListOwners returns every owner ordered by NIC.
func (s *RegistryService) ListOwners(ctx context.Context) ([]domain.Owner, error) {
	owners, err := s.store.ListOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return owners, nil
}

// CreateDeed registers an ACTIVE deed and seals it in the ledger in the same
// transaction. An empty DeedNumber is allocated under the allocation lock.
func (s *RegistryService) CreateDeed(ctx context.Context, in DeedInput, actor string) (SealedDeed, error) {
	if err := in.Validate(); err != nil {
		return SealedDeed{}, err
	}
	now := s.now()
	deed := domain.Deed{
		DeedNumber:       strings.TrimSpace(in.DeedNumber),
		LandNumber:       in.LandNumber,
		OwnerNIC:         in.OwnerNIC,
		RegistrationDate: CalendarDate(in.RegistrationDate),
		DeedType:         in.DeedType,
		Status:           domain.DeedStatusActive,
		SurveyPlanNumber: in.SurveyPlanNumber,
		NotaryName:       in.NotaryName,
		Notes:            in.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var (
		sealed domain.LedgerEntry
		entry  domain.AuditEntry
	)
	err := s.store.InTx(ctx, func(q repository.Querier) error {
		if err := q.LockDeedNumbers(ctx); err != nil {
			return fmt.Errorf("lock deed numbers: %w", err)
		}
		if deed.DeedNumber == "" {
			existing, err := q.ListDeedNumbers(ctx)
			if err != nil {
				return fmt.Errorf("list deed numbers: %w", err)
			}
			deed.DeedNumber = NextDeedNumber(existing, "")
		}

		if _, err := q.GetDeed(ctx, deed.DeedNumber); err == nil {
			return apperrors.ErrDeedExistsf(deed.DeedNumber)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("get deed %s: %w", deed.DeedNumber, err)
		}
		if _, err := RequireLand(ctx, q, deed.LandNumber); err != nil {
			return err
		}
		if _, err := RequireOwner(ctx, q, deed.OwnerNIC); err != nil {
			return err
		}

		if err := InsertDeed(ctx, q, deed); err != nil {
			return err
		}
		var err error
		if sealed, err = SealDeed(ctx, q, deed); err != nil {
			return err
		}
		entry, err = s.audit.LogAction(ctx, q, domain.AuditActionCreate, actor,
			fmt.Sprintf("Registered deed: %s for land %s", deed.DeedNumber, deed.LandNumber))
		return err
	})
	if err != nil {
		return SealedDeed{}, err
	}

	logger.FromContext(ctx).Info("Deed registered",
		zap.String("deed_number", deed.DeedNumber),
		zap.String("land_number", deed.LandNumber),
		zap.Int64("block_number", sealed.BlockNumber),
		zap.String("actor", entry.Actor),
	)
	s.publishAudit(ctx, domain.EventDeedRegistered, "deed", deed.DeedNumber, entry)
	return SealedDeed{Deed: deed, LedgerEntry: sealed}, nil
}

// NextDeedNumber previews the number the next registration (or the next
// transfer of previous) would receive. Nothing is reserved.
func (s *RegistryService) NextDeedNumber(ctx context.Context, previous string) (string, error) {
	existing, err := s.store.ListDeedNumbers(ctx)
	if err != nil {
		return "", fmt.Errorf("list deed numbers: %w", err)
	}
	return NextDeedNumber(existing, strings.TrimSpace(previous)), nil
}

// GetDeed returns a deed by number.
func (s *RegistryService) GetDeed(ctx context.Context, deedNumber string) (domain.Deed, error) {
	return RequireDeed(ctx, s.store, deedNumber, false)
}

// ListDeeds returns every deed ordered by number.
func (s *RegistryService) ListDeeds(ctx context.Context) ([]domain.Deed, error) {
	deeds, err := s.store.ListDeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deeds: %w", err)
	}
	return deeds, nil
}

// UpdateDeed replaces the mutable fields of a deed. The ledger is never
// touched, so a changed hashed field makes verification fail afterwards.
func (s *RegistryService) UpdateDeed(ctx context.Context, deedNumber string, in DeedUpdate, actor string) (domain.Deed, error) {
	if err := in.Validate(); err != nil {
		return domain.Deed{}, err
	}

	var (
		updated domain.Deed
		entry   domain.AuditEntry
	)
	err := s.store.InTx(ctx, func(q repository.Querier) error {
		current, err := RequireDeed(ctx, q, deedNumber, true)
		if err != nil {
			return err
		}
		if _, err := RequireLand(ctx, q, in.LandNumber); err != nil {
			return err
		}
		if _, err := RequireOwner(ctx, q, in.OwnerNIC); err != nil {
			return err
		}

		updated = current
		updated.LandNumber = in.LandNumber
		updated.OwnerNIC = in.OwnerNIC
		updated.RegistrationDate = CalendarDate(in.RegistrationDate)
		updated.DeedType = in.DeedType
		if in.Status != "" {
			if current.Status == domain.DeedStatusTransferred && in.Status == domain.DeedStatusActive {
				return apperrors.InvalidState(apperrors.CodeDeedNotActive,
					fmt.Sprintf("Deed %s was transferred and cannot be reactivated", deedNumber))
			}
			updated.Status = in.Status
		}
		updated.SurveyPlanNumber = in.SurveyPlanNumber
		updated.NotaryName = in.NotaryName
		updated.Notes = in.Notes
		updated.UpdatedAt = s.now()

		if err := q.UpdateDeed(ctx, updated); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.ErrDeedNotFoundf(deedNumber)
			}
			return fmt.Errorf("update deed %s: %w", deedNumber, err)
		}
		entry, err = s.audit.LogAction(ctx, q, domain.AuditActionUpdate, actor, "Updated deed: "+deedNumber)
		return err
	})
	if err != nil {
		return domain.Deed{}, err
	}

	logger.FromContext(ctx).Info("Deed updated",
		zap.String("deed_number", deedNumber),
		zap.String("actor", entry.Actor),
	)
	s.publishAudit(ctx, domain.EventDeedUpdated, "deed", deedNumber, entry)
	return updated, nil
}

// DeleteDeed removes a deed. Its ledger entry stays.
func (s *RegistryService) DeleteDeed(ctx context.Context, deedNumber string, actor string) (domain.Deed, error) {
	var (
		deleted domain.Deed
		entry   domain.AuditEntry
	)
	err := s.store.InTx(ctx, func(q repository.Querier) error {
		var err error
		deleted, err = q.DeleteDeed(ctx, deedNumber)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.ErrDeedNotFoundf(deedNumber)
			}
			return fmt.Errorf("delete deed %s: %w", deedNumber, err)
		}
		entry, err = s.audit.LogAction(ctx, q, domain.AuditActionDelete, actor,
			fmt.Sprintf("Deleted deed: %s (land %s, owner %s)", deleted.DeedNumber, deleted.LandNumber, deleted.OwnerNIC))
		return err
	})
	if err != nil {
		return domain.Deed{}, err
	}

	logger.FromContext(ctx).Info("Deed deleted",
		zap.String("deed_number", deedNumber),
		zap.String("actor", entry.Actor),
	)
	s.publishAudit(ctx, domain.EventDeedDeleted, "deed", deedNumber, entry)
	return deleted, nil
}

// Search matches deeds by deed number, land number or owner NIC,
// case-insensitively. The query is matched and audited as given; a blank
// query returns no deeds and is not audited.
func (s *RegistryService) Search(ctx context.Context, query, actor string) ([]domain.Deed, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.Deed{}, nil
	}

	var (
		deeds []domain.Deed
		entry domain.AuditEntry
	)
	err := s.store.InTx(ctx, func(q repository.Querier) error {
		var err error
		deeds, err = q.SearchDeeds(ctx, query)
		if err != nil {
			return fmt.Errorf("search deeds: %w", err)
		}
		entry, err = s.audit.LogAction(ctx, q, domain.AuditActionSearch, actor, "Searched deeds: "+query)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, domain.EventDeedsSearched, "search", query, entry)
	return deeds, nil
}

// History returns the deeds of a land, newest registration first. An
// unknown land yields an empty list.
func (s *RegistryService) History(ctx context.Context, landNumber string) ([]domain.Deed, error) {
	deeds, err := s.store.ListDeedsByLand(ctx, landNumber)
	if err != nil {
		return nil, fmt.Errorf("land history %s: %w", landNumber, err)
	}
	return deeds, nil
}

// ListAuditLogs returns up to limit audit entries, newest first.
func (s *RegistryService) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	return s.audit.List(ctx, s.store, limit)
}

// LedgerEntries returns the ledger in block order.
func (s *RegistryService) LedgerEntries(ctx context.Context) ([]domain.LedgerEntry, error) {
	return ledger.New(s.store).All(ctx)
}

// LedgerEntry returns the ledger entry of a deed.
func (s *RegistryService) LedgerEntry(ctx context.Context, deedNumber string) (domain.LedgerEntry, error) {
	return ledger.New(s.store).Lookup(ctx, deedNumber)
}

// Stats summarises the registry.
func (s *RegistryService) Stats(ctx context.Context) (domain.RegistryStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return domain.RegistryStats{}, fmt.Errorf("registry stats: %w", err)
	}
	return stats, nil
}

// publishAudit emits a committed event. Failures are logged by the dispatcher
// and never undo the committed write.
func (s *RegistryService) publishAudit(ctx context.Context, et domain.EventType, aggregateType, aggregateID string, entry domain.AuditEntry) {
	payload, err := domain.AuditPayload{Entry: entry}.ToJSON()
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to encode event payload", zap.String("event_type", string(et)), zap.Error(err))
		return
	}
	_ = s.events.Dispatch(ctx, domain.NewEvent(et, aggregateType, aggregateID, entry.Actor, payload))
}
