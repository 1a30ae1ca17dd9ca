package modules

import (
	"context"

	"github.com/riverqueue/river"

	"landledger.io/registry/internal/api/handlers"
	"landledger.io/registry/internal/service"
	"landledger.io/registry/internal/usecase"
)

// RegistryModule composes land, owner and deed registration plus transfers.
type RegistryModule struct {
	infra     *Infrastructure
	registry  *service.RegistryService
	transfers *usecase.TransferWorkflow
}

func NewRegistryModule(infra *Infrastructure) *RegistryModule {
	return &RegistryModule{
		infra:     infra,
		registry:  service.NewRegistryService(infra.Store, infra.AuditLogger, infra.Events),
		transfers: usecase.NewTransferWorkflow(infra.Store, infra.AuditLogger, infra.Events),
	}
}

func (m *RegistryModule) Name() string { return "registry" }

func (m *RegistryModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	deps.Registry = m.registry
	deps.Transfers = m.transfers
	deps.Store = m.infra.Store
}

func (m *RegistryModule) RegisterWorkers(*river.Workers) error { return nil }

func (m *RegistryModule) PeriodicJobs() []*river.PeriodicJob { return nil }

func (m *RegistryModule) Shutdown(context.Context) error { return nil }
