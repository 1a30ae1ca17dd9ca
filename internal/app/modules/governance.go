package modules

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"landledger.io/registry/internal/api/handlers"
	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/governance/audit"
	"landledger.io/registry/internal/pkg/logger"
	"landledger.io/registry/internal/pkg/worker"
)

// GovernanceModule mirrors committed registry events to Kafka when
// audit.kafka is configured. Without it the module does nothing.
type GovernanceModule struct {
	infra  *Infrastructure
	mirror *audit.KafkaMirror
}

func NewGovernanceModule(infra *Infrastructure) (*GovernanceModule, error) {
	m := &GovernanceModule{infra: infra}
	kafkaCfg := infra.Config.Audit.Kafka
	if !kafkaCfg.Enabled() {
		return m, nil
	}

	mirror, err := audit.NewKafkaMirror(kafkaCfg)
	if err != nil {
		return nil, fmt.Errorf("init kafka audit mirror: %w", err)
	}
	m.mirror = mirror
	infra.Events.RegisterAll(detachedHandler(infra.Pools, mirror.Handle))
	return m, nil
}

// detachedHandler runs h on the general pool so a slow broker never holds
// up the request that committed the event.
func detachedHandler(pools *worker.Pools, h domain.EventHandler) domain.EventHandler {
	return func(_ context.Context, event *domain.DomainEvent) error {
		return pools.SubmitDetached(worker.PoolGeneral, func(ctx context.Context) {
			if err := h(ctx, event); err != nil {
				logger.Debug("Detached event handler failed",
					zap.String("event_id", event.EventID),
					zap.Error(err),
				)
			}
		})
	}
}

func (m *GovernanceModule) Name() string { return "governance" }

func (m *GovernanceModule) ContributeServerDeps(*handlers.ServerDeps) {}

func (m *GovernanceModule) RegisterWorkers(*river.Workers) error { return nil }

func (m *GovernanceModule) PeriodicJobs() []*river.PeriodicJob { return nil }

func (m *GovernanceModule) Shutdown(context.Context) error {
	if m.mirror == nil {
		return nil
	}
	return m.mirror.Close()
}
