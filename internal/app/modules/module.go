// Package modules contains the registry's dependency modules.
//
// Each module owns one slice of the composition: it builds its services
// from the shared Infrastructure, contributes them to the HTTP server, and
// registers its background workers.
//
// Import Path: landledger.io/registry/internal/app/modules
package modules

import (
	"context"

	"github.com/riverqueue/river"

	"landledger.io/registry/internal/api/handlers"
)

// Module represents a domain-specific dependency unit in the composition root.
type Module interface {
	// Name returns a stable module identifier for logging/debugging.
	Name() string

	// ContributeServerDeps injects module-owned dependencies into the HTTP server deps.
	ContributeServerDeps(*handlers.ServerDeps)

	// RegisterWorkers registers module workers into a shared River worker registry.
	RegisterWorkers(*river.Workers) error

	// PeriodicJobs lists jobs the module wants scheduled by River.
	PeriodicJobs() []*river.PeriodicJob

	// Shutdown performs module-local graceful cleanup.
	Shutdown(context.Context) error
}
