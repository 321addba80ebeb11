// Where: cli/internal/ports/lifecycle.go
// What: Lifecycle ports consumed by workflows.
// Why: Keep workflows independent from the registry file, the engine, and blob backends.
package ports

import (
	"context"

	"github.com/poruru/envdb/cli/internal/dbops"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/registry"
	"github.com/poruru/envdb/cli/internal/storageops"
)

// EnvironmentResolver turns environment names into resolved profiles.
type EnvironmentResolver interface {
	Names() []string
	Resolve(name string) (registry.Profile, error)
}

// EnvironmentResolverFunc binds a registry to a fixed variable snapshot.
type EnvironmentResolverFunc struct {
	NamesFunc   func() []string
	ResolveFunc func(name string) (registry.Profile, error)
}

func (f EnvironmentResolverFunc) Names() []string {
	if f.NamesFunc == nil {
		return nil
	}
	return f.NamesFunc()
}

func (f EnvironmentResolverFunc) Resolve(name string) (registry.Profile, error) {
	return f.ResolveFunc(name)
}

// DatabaseLifecycle is the guarded database surface.
type DatabaseLifecycle interface {
	Create(ctx context.Context, target registry.Profile, opts dbops.CreateOptions) (dbops.CreateResult, error)
	Drop(ctx context.Context, target registry.Profile, opts dbops.DropOptions) (dbops.DropResult, error)
	Backup(ctx context.Context, source registry.Profile, name string) (lifecycle.DumpArtifact, error)
	Restore(ctx context.Context, target registry.Profile, artifact lifecycle.DumpArtifact) error
	Verify(ctx context.Context, target registry.Profile) ([]string, error)
}

// StorageDuplicator copies one environment container over another.
type StorageDuplicator interface {
	DuplicateStorage(ctx context.Context, source, destination registry.Profile) (storageops.Report, error)
}

// Confirmer asks the operator before a destructive step.
type Confirmer interface {
	Confirm(title, description string) (bool, error)
}

// AutoConfirm accepts every confirmation.
type AutoConfirm struct{}

func (AutoConfirm) Confirm(string, string) (bool, error) {
	return true, nil
}
