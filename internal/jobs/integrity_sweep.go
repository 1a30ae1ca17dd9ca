package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"landledger.io/registry/internal/pkg/logger"
	"landledger.io/registry/internal/usecase"
)

// DefaultSweepInterval is used when no sweep interval is configured.
const DefaultSweepInterval = time.Hour

// IntegritySweepArgs is a periodic job that re-verifies every ledger entry.
type IntegritySweepArgs struct{}

// Kind returns the job kind identifier for the integrity sweep.
func (IntegritySweepArgs) Kind() string { return "integrity_sweep" }

// InsertOpts keeps at most one sweep per interval window.
func (IntegritySweepArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: DefaultSweepInterval,
			ByQueue:  true,
			ByArgs:   true,
		},
	}
}

// Sweeper runs a full ledger verification.
type Sweeper interface {
	VerifyAll(ctx context.Context) (*usecase.SweepReport, error)
}

// IntegritySweepWorker runs the sweep and logs the outcome. Tampered deeds
// do not fail the job; the sweep itself reports them.
type IntegritySweepWorker struct {
	river.WorkerDefaults[IntegritySweepArgs]
	sweeper Sweeper
	timeout time.Duration
}

// NewIntegritySweepWorker creates a sweep worker. A non-positive timeout
// falls back to the default sweep interval.
func NewIntegritySweepWorker(sweeper Sweeper, timeout time.Duration) *IntegritySweepWorker {
	if timeout <= 0 {
		timeout = DefaultSweepInterval
	}
	return &IntegritySweepWorker{sweeper: sweeper, timeout: timeout}
}

// Timeout bounds a single sweep.
func (w *IntegritySweepWorker) Timeout(*river.Job[IntegritySweepArgs]) time.Duration {
	return w.timeout
}

// Work verifies every ledger entry.
func (w *IntegritySweepWorker) Work(ctx context.Context, job *river.Job[IntegritySweepArgs]) error {
	if w == nil || w.sweeper == nil {
		return fmt.Errorf("integrity sweep worker is not initialized")
	}

	report, err := w.sweeper.VerifyAll(ctx)
	if err != nil {
		return fmt.Errorf("integrity sweep: %w", err)
	}

	log := logger.FromContext(ctx).With(zap.Int64("job_id", job.ID))
	for _, r := range report.Results {
		if r.Missing || !r.IsValid {
			log.Warn("Ledger entry failed integrity sweep",
				zap.String("deed_number", r.DeedNumber),
				zap.Int64("block_number", r.BlockNumber),
				zap.Bool("missing", r.Missing),
			)
		}
	}
	log.Info("integrity sweep completed",
		zap.Int("checked", report.Checked),
		zap.Int("valid", report.Valid),
		zap.Int("tampered", report.Tampered),
		zap.Int("missing", report.Missing),
	)
	return nil
}
