// Package app is the composition root. Bootstrap wires modules; it holds no
// registry logic of its own.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/riverqueue/river"

	"landledger.io/registry/internal/api/handlers"
	"landledger.io/registry/internal/app/modules"
	"landledger.io/registry/internal/config"
	"landledger.io/registry/internal/infrastructure"
	"landledger.io/registry/internal/pkg/metrics"
	"landledger.io/registry/internal/pkg/worker"
)

// Application holds composed application dependencies.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *infrastructure.DatabaseClients
	Pools   *worker.Pools
	Metrics *metrics.Metrics
	Modules []modules.Module
}

// Bootstrap initializes all dependencies using module-oriented manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	governance, err := modules.NewGovernanceModule(infra)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("init governance module: %w", err)
	}
	allModules := []modules.Module{
		modules.NewRegistryModule(infra),
		modules.NewIntegrityModule(infra),
		governance,
	}

	workers := river.NewWorkers()
	var periodic []*river.PeriodicJob
	for _, mod := range allModules {
		if err := mod.RegisterWorkers(workers); err != nil {
			infra.Close()
			return nil, fmt.Errorf("register %s workers: %w", mod.Name(), err)
		}
		periodic = append(periodic, mod.PeriodicJobs()...)
	}
	if err := infra.InitRiver(workers, periodic); err != nil {
		infra.Close()
		return nil, fmt.Errorf("init river workers: %w", err)
	}

	server := handlers.NewServer(modules.NewServerDeps(allModules))
	router, err := newRouter(cfg, server, infra.Metrics)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("init router: %w", err)
	}

	return &Application{
		Config:  cfg,
		Router:  router,
		DB:      infra.DB,
		Pools:   infra.Pools,
		Metrics: infra.Metrics,
		Modules: allModules,
	}, nil
}
