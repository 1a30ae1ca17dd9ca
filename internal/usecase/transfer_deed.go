// Package usecase provides application use cases that span several
// collaborators in one transaction.
//
// UseCases are reusable across HTTP, CLI and River jobs.
//
// Import Path: landledger.io/registry/internal/usecase
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/governance/audit"
	apperrors "landledger.io/registry/internal/pkg/errors"
	"landledger.io/registry/internal/pkg/logger"
	"landledger.io/registry/internal/repository"
	"landledger.io/registry/internal/service"
)

// TransferInput describes the deed that supersedes an ACTIVE one.
// Empty DeedNumber and LandNumber are derived from the old deed.
type TransferInput struct {
	DeedNumber       string
	LandNumber       string
	OwnerNIC         string
	RegistrationDate time.Time
	DeedType         string
	SurveyPlanNumber string
	NotaryName       string
	Notes            string
}

// Validate checks required fields.
func (in TransferInput) Validate() error {
	var fe []apperrors.FieldError
	if strings.TrimSpace(in.OwnerNIC) == "" {
		fe = append(fe, apperrors.FieldError{Field: "ownerNic", Code: "REQUIRED", Message: "is required"})
	}
	if strings.TrimSpace(in.DeedType) == "" {
		fe = append(fe, apperrors.FieldError{Field: "deedType", Code: "REQUIRED", Message: "is required"})
	}
	if in.RegistrationDate.IsZero() {
		fe = append(fe, apperrors.FieldError{Field: "registrationDate", Code: "REQUIRED", Message: "is required"})
	}
	if len(fe) > 0 {
		return apperrors.ErrValidationf(fe)
	}
	return nil
}

// TransferOutput is the result of a completed transfer.
type TransferOutput struct {
	Previous    domain.Deed        `json:"previous"`
	Deed        domain.Deed        `json:"deed"`
	LedgerEntry domain.LedgerEntry `json:"ledgerEntry"`
}

// TransferWorkflow moves ownership from an ACTIVE deed to a new one.
// The old deed flips to TRANSFERRED and the new deed is inserted, sealed
// and audited in one transaction; nothing is visible unless all of it is.
type TransferWorkflow struct {
	store  repository.Store
	audit  *audit.Logger
	events domain.Publisher
	now    func() time.Time
}

// NewTransferWorkflow creates a new TransferWorkflow. A nil events publisher
// discards events.
func NewTransferWorkflow(store repository.Store, auditLogger *audit.Logger, events domain.Publisher) *TransferWorkflow {
	if events == nil {
		events = domain.NopPublisher{}
	}
	return &TransferWorkflow{
		store:  store,
		audit:  auditLogger,
		events: events,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Transfer supersedes oldDeedNumber with the deed described by in.
func (w *TransferWorkflow) Transfer(ctx context.Context, oldDeedNumber string, in TransferInput, actor string) (*TransferOutput, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var (
		out   TransferOutput
		entry domain.AuditEntry
	)
	err := w.store.InTx(ctx, func(q repository.Querier) error {
		if err := q.LockDeedNumbers(ctx); err != nil {
			return fmt.Errorf("lock deed numbers: %w", err)
		}

		old, err := service.RequireDeed(ctx, q, oldDeedNumber, true)
		if err != nil {
			return err
		}
		if !old.IsActive() {
			return apperrors.ErrDeedNotActivef(old.DeedNumber, string(old.Status))
		}

		ownerNIC := strings.TrimSpace(in.OwnerNIC)
		if _, err := service.RequireOwner(ctx, q, ownerNIC); err != nil {
			return err
		}
		landNumber := strings.TrimSpace(in.LandNumber)
		if landNumber == "" {
			landNumber = old.LandNumber
		}
		if _, err := service.RequireLand(ctx, q, landNumber); err != nil {
			return err
		}

		deedNumber := strings.TrimSpace(in.DeedNumber)
		if deedNumber == "" {
			existing, err := q.ListDeedNumbers(ctx)
			if err != nil {
				return fmt.Errorf("list deed numbers: %w", err)
			}
			deedNumber = service.NextDeedNumber(existing, old.DeedNumber)
		}

		now := w.now()
		previousDate := old.RegistrationDate
		next := domain.Deed{
			DeedNumber:               deedNumber,
			LandNumber:               landNumber,
			OwnerNIC:                 ownerNIC,
			RegistrationDate:         service.CalendarDate(in.RegistrationDate),
			DeedType:                 in.DeedType,
			Status:                   domain.DeedStatusActive,
			SurveyPlanNumber:         in.SurveyPlanNumber,
			NotaryName:               in.NotaryName,
			PreviousDeedNumber:       old.DeedNumber,
			PreviousOwnerNIC:         old.OwnerNIC,
			PreviousRegistrationDate: &previousDate,
			Notes:                    in.Notes,
			CreatedAt:                now,
			UpdatedAt:                now,
		}

		if err := q.SetDeedStatus(ctx, old.DeedNumber, domain.DeedStatusTransferred, now); err != nil {
			return fmt.Errorf("mark deed %s transferred: %w", old.DeedNumber, err)
		}
		if err := service.InsertDeed(ctx, q, next); err != nil {
			return err
		}
		sealed, err := service.SealDeed(ctx, q, next)
		if err != nil {
			return err
		}
		entry, err = w.audit.LogAction(ctx, q, domain.AuditActionTransfer, actor,
			fmt.Sprintf("Transferred ownership from deed %s to %s", old.DeedNumber, next.DeedNumber))
		if err != nil {
			return err
		}

		old.Status = domain.DeedStatusTransferred
		old.UpdatedAt = now
		out = TransferOutput{Previous: old, Deed: next, LedgerEntry: sealed}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Warn("Deed transfer rejected",
			zap.String("deed_number", oldDeedNumber),
			zap.Error(err),
		)
		return nil, err
	}

	logger.FromContext(ctx).Info("Deed transferred",
		zap.String("from_deed", out.Previous.DeedNumber),
		zap.String("to_deed", out.Deed.DeedNumber),
		zap.String("to_owner", out.Deed.OwnerNIC),
		zap.Int64("block_number", out.LedgerEntry.BlockNumber),
		zap.String("actor", entry.Actor),
	)
	w.publish(ctx, out, entry)
	return &out, nil
}

func (w *TransferWorkflow) publish(ctx context.Context, out TransferOutput, entry domain.AuditEntry) {
	payload, err := domain.TransferPayload{
		OldDeedNumber: out.Previous.DeedNumber,
		NewDeedNumber: out.Deed.DeedNumber,
		LandNumber:    out.Deed.LandNumber,
		FromOwnerNIC:  out.Previous.OwnerNIC,
		ToOwnerNIC:    out.Deed.OwnerNIC,
		BlockNumber:   out.LedgerEntry.BlockNumber,
		AuditEntry:    entry,
	}.ToJSON()
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to encode transfer payload", zap.Error(err))
		return
	}
	_ = w.events.Dispatch(ctx, domain.NewEvent(domain.EventDeedTransferred, "deed", out.Deed.DeedNumber, entry.Actor, payload))
}
