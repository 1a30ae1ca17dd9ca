package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/integrity"
	"landledger.io/registry/internal/ledger"
	"landledger.io/registry/internal/pkg/logger"
	"landledger.io/registry/internal/pkg/metrics"
	"landledger.io/registry/internal/pkg/worker"
	"landledger.io/registry/internal/repository"
	"landledger.io/registry/internal/service"
)

// Verification compares a deed's current digest with the one sealed at
// registration. Missing is set when the ledger entry outlives its deed.
type Verification struct {
	DeedNumber     string    `json:"deedNumber"`
	IsValid        bool      `json:"isValid"`
	Missing        bool      `json:"missing,omitempty"`
	CurrentDigest  string    `json:"currentHash,omitempty"`
	RecordedDigest string    `json:"recordedHash"`
	BlockNumber    int64     `json:"blockNumber"`
	SealedAt       time.Time `json:"sealedAt"`
	VerifiedAt     time.Time `json:"verifiedAt"`
}

// SweepReport summarises a verification run over the whole ledger.
type SweepReport struct {
	Checked  int            `json:"checked"`
	Valid    int            `json:"valid"`
	Tampered int            `json:"tampered"`
	Missing  int            `json:"missing"`
	Results  []Verification `json:"results"`
	Started  time.Time      `json:"startedAt"`
	Duration time.Duration  `json:"durationNs"`
}

// IntegrityVerifier recomputes deed digests and compares them to the ledger.
type IntegrityVerifier struct {
	store   repository.Querier
	pool    *worker.Pool
	metrics *metrics.Metrics
	events  domain.Publisher
	now     func() time.Time
}

// NewIntegrityVerifier creates a new IntegrityVerifier. pool bounds sweep
// concurrency; a nil pool checks entries one at a time.
func NewIntegrityVerifier(store repository.Querier, pool *worker.Pool, m *metrics.Metrics, events domain.Publisher) *IntegrityVerifier {
	if events == nil {
		events = domain.NopPublisher{}
	}
	return &IntegrityVerifier{
		store:   store,
		pool:    pool,
		metrics: m,
		events:  events,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Verify checks one deed. Both the deed and its ledger entry must exist.
func (v *IntegrityVerifier) Verify(ctx context.Context, deedNumber string) (Verification, error) {
	deed, err := service.RequireDeed(ctx, v.store, deedNumber, false)
	if err != nil {
		return Verification{}, err
	}
	entry, err := ledger.New(v.store).Lookup(ctx, deedNumber)
	if err != nil {
		return Verification{}, err
	}

	result, err := v.check(ctx, deed, entry)
	if err != nil {
		return Verification{}, err
	}
	v.record(ctx, result)
	return result, nil
}

// VerifyAll checks every ledger entry on the worker pool.
func (v *IntegrityVerifier) VerifyAll(ctx context.Context) (*SweepReport, error) {
	started := time.Now()
	entries, err := ledger.New(v.store).All(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Verification, len(entries))
	errs := make([]error, len(entries))
	checkOne := func(ctx context.Context, i int) {
		results[i], errs[i] = v.checkEntry(ctx, entries[i])
	}

	if v.pool != nil {
		if err := v.pool.Each(ctx, len(entries), checkOne); err != nil {
			return nil, fmt.Errorf("integrity sweep: %w", err)
		}
	} else {
		for i := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			checkOne(ctx, i)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("integrity sweep: %w", err)
	}

	report := &SweepReport{Checked: len(results), Results: results, Started: started.UTC()}
	for _, r := range results {
		switch {
		case r.Missing:
			report.Missing++
		case r.IsValid:
			report.Valid++
		default:
			report.Tampered++
		}
		v.record(ctx, r)
	}
	report.Duration = time.Since(started)
	v.metrics.ObserveSweep(len(entries), report.Duration)

	logger.FromContext(ctx).Info("Integrity sweep completed",
		zap.Int("checked", report.Checked),
		zap.Int("tampered", report.Tampered),
		zap.Int("missing", report.Missing),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (v *IntegrityVerifier) checkEntry(ctx context.Context, entry domain.LedgerEntry) (Verification, error) {
	deed, err := v.store.GetDeed(ctx, entry.DeedNumber)
	if errors.Is(err, repository.ErrNotFound) {
		return Verification{
			DeedNumber:     entry.DeedNumber,
			Missing:        true,
			RecordedDigest: entry.Digest,
			BlockNumber:    entry.BlockNumber,
			SealedAt:       entry.Timestamp,
			VerifiedAt:     v.now(),
		}, nil
	}
	if err != nil {
		return Verification{}, fmt.Errorf("get deed %s: %w", entry.DeedNumber, err)
	}
	return v.check(ctx, deed, entry)
}

func (v *IntegrityVerifier) check(ctx context.Context, deed domain.Deed, entry domain.LedgerEntry) (Verification, error) {
	land, err := service.RequireLand(ctx, v.store, deed.LandNumber)
	if err != nil {
		return Verification{}, err
	}
	owner, err := service.RequireOwner(ctx, v.store, deed.OwnerNIC)
	if err != nil {
		return Verification{}, err
	}
	fields := integrity.FieldsFor(deed, land, owner)
	return Verification{
		DeedNumber:     deed.DeedNumber,
		IsValid:        integrity.Verify(fields, entry.Digest),
		CurrentDigest:  integrity.Digest(fields),
		RecordedDigest: entry.Digest,
		BlockNumber:    entry.BlockNumber,
		SealedAt:       entry.Timestamp,
		VerifiedAt:     v.now(),
	}, nil
}

// record updates metrics and emits the verification event.
func (v *IntegrityVerifier) record(ctx context.Context, r Verification) {
	result, et := metrics.ResultValid, domain.EventIntegrityVerified
	switch {
	case r.Missing:
		result, et = metrics.ResultMissing, domain.EventTamperDetected
	case !r.IsValid:
		result, et = metrics.ResultTampered, domain.EventTamperDetected
	}
	v.metrics.IncrementIntegrityCheck(result)

	if et == domain.EventTamperDetected {
		logger.FromContext(ctx).Warn("Deed failed integrity check",
			zap.String("deed_number", r.DeedNumber),
			zap.Bool("missing", r.Missing),
			zap.String("recorded", integrity.ShortDigest(r.RecordedDigest)),
			zap.String("current", integrity.ShortDigest(r.CurrentDigest)),
		)
	}

	payload, err := domain.IntegrityPayload{
		DeedNumber:     r.DeedNumber,
		Valid:          r.IsValid,
		CurrentDigest:  r.CurrentDigest,
		RecordedDigest: r.RecordedDigest,
	}.ToJSON()
	if err != nil {
		return
	}
	_ = v.events.Dispatch(ctx, domain.NewEvent(et, "deed", r.DeedNumber, "", payload))
}
