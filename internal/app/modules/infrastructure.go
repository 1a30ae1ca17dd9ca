package modules

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"landledger.io/registry/internal/config"
	"landledger.io/registry/internal/domain"
	"landledger.io/registry/internal/governance/audit"
	"landledger.io/registry/internal/infrastructure"
	"landledger.io/registry/internal/pkg/logger"
	"landledger.io/registry/internal/pkg/metrics"
	"landledger.io/registry/internal/pkg/worker"
	"landledger.io/registry/internal/repository"
	"landledger.io/registry/internal/repository/memory"
	"landledger.io/registry/internal/repository/postgres"
)

// Infrastructure holds shared cross-cutting dependencies for all modules.
// It is a provider, not a Module.
type Infrastructure struct {
	Config *config.Config
	// DB is nil on the memory backend.
	DB          *infrastructure.DatabaseClients
	Store       repository.Store
	Pools       *worker.Pools
	Metrics     *metrics.Metrics
	Events      *domain.EventDispatcher
	AuditLogger *audit.Logger
}

// NewInfrastructure opens the configured storage backend and the shared
// worker pools, metrics and event dispatcher.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	infra := &Infrastructure{
		Config:      cfg,
		Metrics:     metrics.New(),
		Events:      domain.NewEventDispatcher(),
		AuditLogger: audit.NewLogger(cfg.Audit.DefaultActor),
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		infra.Store = memory.NewStore()
		logger.Warn("Using in-memory storage; registry state is lost on restart")
	case config.BackendPostgres:
		db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		infra.DB = db
		infra.Store = postgres.NewStore(db.Pool)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	poolCfg := worker.DefaultPoolConfig()
	poolCfg.IntegrityPoolSize = cfg.Integrity.SweepWorkers
	pools, err := worker.NewPools(ctx, poolCfg)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("init worker pools: %w", err)
	}
	infra.Pools = pools

	infra.Events.RegisterAll(infra.Metrics.EventHandler())

	logger.Info("Infrastructure initialized",
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Int("sweep_workers", poolCfg.IntegrityPoolSize),
	)
	return infra, nil
}

// InitRiver creates the River client for the workers and periodic jobs the
// modules registered. It is a no-op on the memory backend, which has no
// job tables.
func (i *Infrastructure) InitRiver(workers *river.Workers, periodic []*river.PeriodicJob) error {
	if i == nil || i.Config == nil {
		return fmt.Errorf("infrastructure is not initialized")
	}
	if i.DB == nil {
		return nil
	}
	if err := i.DB.InitRiverClient(workers, periodic, i.Config.River); err != nil {
		return fmt.Errorf("init river: %w", err)
	}
	return nil
}

// Close releases infra resources in reverse dependency order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.Pools != nil {
		i.Pools.Shutdown()
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
