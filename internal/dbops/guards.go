// Where: cli/internal/dbops/guards.go
// What: Protection rules evaluated before destructive database operations.
// Why: Reject drops of main, origin, and production databases before any engine call.
package dbops

import (
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/registry"
)

// CheckDropGuards evaluates the drop guards in order: main, origin, production.
// Restore runs the same rules because it drops the target first.
func CheckDropGuards(kind lifecycle.Kind, target registry.Profile) error {
	reject := func(guard lifecycle.Guard) error {
		return &lifecycle.GuardError{
			Guard:       guard,
			Kind:        kind,
			Environment: target.Name,
			Database:    target.Database.Name,
			Origin:      target.Database.OriginDatabaseName,
		}
	}
	if target.IsMain {
		return reject(lifecycle.GuardMain)
	}
	if target.Database.Name == target.Database.OriginDatabaseName {
		return reject(lifecycle.GuardOrigin)
	}
	if target.IsProduction {
		return reject(lifecycle.GuardProduction)
	}
	return nil
}
