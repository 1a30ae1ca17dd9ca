package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landledger.io/registry/internal/usecase"
)

type stubSweeper struct {
	report *usecase.SweepReport
	err    error
	calls  int
}

func (s *stubSweeper) VerifyAll(context.Context) (*usecase.SweepReport, error) {
	s.calls++
	return s.report, s.err
}

func sweepJob() *river.Job[IntegritySweepArgs] {
	return &river.Job[IntegritySweepArgs]{JobRow: &rivertype.JobRow{ID: 7}}
}

func TestIntegritySweepArgs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "integrity_sweep", IntegritySweepArgs{}.Kind())

	opts := IntegritySweepArgs{}.InsertOpts()
	assert.Equal(t, river.QueueDefault, opts.Queue)
	assert.Equal(t, 1, opts.MaxAttempts)
	assert.Equal(t, DefaultSweepInterval, opts.UniqueOpts.ByPeriod)
	assert.True(t, opts.UniqueOpts.ByArgs)
}

func TestNewIntegritySweepWorker_Timeout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultSweepInterval, NewIntegritySweepWorker(nil, 0).Timeout(nil))
	assert.Equal(t, 5*time.Minute, NewIntegritySweepWorker(nil, 5*time.Minute).Timeout(nil))
}

func TestIntegritySweepWorker_Work(t *testing.T) {
	t.Parallel()

	sweeper := &stubSweeper{report: &usecase.SweepReport{
		Checked:  2,
		Valid:    1,
		Tampered: 1,
		Results: []usecase.Verification{
			{DeedNumber: "D001", IsValid: true, BlockNumber: 1001},
			{DeedNumber: "D002", BlockNumber: 1002},
		},
	}}
	w := NewIntegritySweepWorker(sweeper, time.Minute)

	require.NoError(t, w.Work(context.Background(), sweepJob()))
	assert.Equal(t, 1, sweeper.calls)
}

func TestIntegritySweepWorker_WorkError(t *testing.T) {
	t.Parallel()

	w := NewIntegritySweepWorker(&stubSweeper{err: errors.New("db down")}, time.Minute)
	err := w.Work(context.Background(), sweepJob())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestIntegritySweepWorker_Uninitialized(t *testing.T) {
	t.Parallel()

	var w *IntegritySweepWorker
	require.Error(t, w.Work(context.Background(), sweepJob()))
	require.Error(t, NewIntegritySweepWorker(nil, 0).Work(context.Background(), sweepJob()))
}

func TestRegisterAndPeriodicJobs(t *testing.T) {
	t.Parallel()

	workers := river.NewWorkers()
	require.NoError(t, Register(workers, NewIntegritySweepWorker(&stubSweeper{}, 0)))
	require.Error(t, Register(workers, NewIntegritySweepWorker(&stubSweeper{}, 0)), "duplicate kind")

	assert.Len(t, PeriodicJobs(0), 1)
	assert.Len(t, PeriodicJobs(10*time.Minute), 1)
}
