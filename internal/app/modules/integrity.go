package modules

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"

	"landledger.io/registry/internal/api/handlers"
	"landledger.io/registry/internal/jobs"
	"landledger.io/registry/internal/usecase"
)

// IntegrityModule composes deed verification and the periodic ledger sweep.
type IntegrityModule struct {
	infra    *Infrastructure
	verifier *usecase.IntegrityVerifier
}

func NewIntegrityModule(infra *Infrastructure) *IntegrityModule {
	return &IntegrityModule{
		infra:    infra,
		verifier: usecase.NewIntegrityVerifier(infra.Store, infra.Pools.Integrity, infra.Metrics, infra.Events),
	}
}

func (m *IntegrityModule) Name() string { return "integrity" }

func (m *IntegrityModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	deps.Verifier = m.verifier
}

func (m *IntegrityModule) RegisterWorkers(workers *river.Workers) error {
	if err := jobs.Register(workers, jobs.NewIntegritySweepWorker(m.verifier, 0)); err != nil {
		return fmt.Errorf("register integrity sweep: %w", err)
	}
	return nil
}

// PeriodicJobs schedules the sweep; a non-positive interval disables it.
func (m *IntegrityModule) PeriodicJobs() []*river.PeriodicJob {
	interval := m.infra.Config.Integrity.SweepInterval
	if interval <= 0 {
		return nil
	}
	return jobs.PeriodicJobs(interval)
}

func (m *IntegrityModule) Shutdown(context.Context) error { return nil }
