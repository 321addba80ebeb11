// Where: cli/internal/workflows/restore.go
// What: Restore workflow for loading an archive into an environment.
// Why: Confirm before replacing a database and report what was loaded.
package workflows

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/poruru/envdb/cli/internal/dbops"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/ports"
)

// RestoreRequest captures inputs for the restore workflow.
type RestoreRequest struct {
	Env  string
	File string
}

// RestoreWorkflow replaces an environment database with an archive.
type RestoreWorkflow struct {
	databaseDeps
	Confirmer ports.Confirmer
}

// NewRestoreWorkflow constructs a RestoreWorkflow.
func NewRestoreWorkflow(
	resolver ports.EnvironmentResolver,
	database ports.DatabaseLifecycle,
	confirmer ports.Confirmer,
	ui ports.UserInterface,
) RestoreWorkflow {
	return RestoreWorkflow{
		databaseDeps: databaseDeps{Resolver: resolver, Database: database, UI: ui},
		Confirmer:    confirmer,
	}
}

// Run executes the restore workflow. A declined confirmation returns
// lifecycle.ErrOperatorAborted without touching the database.
func (w RestoreWorkflow) Run(ctx context.Context, req RestoreRequest) (lifecycle.DumpArtifact, error) {
	if strings.TrimSpace(req.File) == "" {
		return lifecycle.DumpArtifact{}, fmt.Errorf("%w: archive file is required", lifecycle.ErrUsage)
	}
	p, err := w.resolve(lifecycle.NewOperationRequest(lifecycle.KindRestore, req.Env))
	if err != nil {
		return lifecycle.DumpArtifact{}, err
	}
	if err := dbops.CheckDropGuards(lifecycle.KindRestore, p); err != nil {
		return lifecycle.DumpArtifact{}, err
	}
	artifact := ArtifactFromFile(req.File)

	if w.Confirmer == nil {
		return artifact, fmt.Errorf("%w: restore needs confirmation", lifecycle.ErrUsage)
	}
	ok, err := w.Confirmer.Confirm(
		fmt.Sprintf("Replace database %q of %q?", p.Database.Name, p.Name),
		fmt.Sprintf("All data in %q is dropped and replaced with %s.", p.Database.Name, filepath.Base(artifact.FilePath)),
	)
	if err != nil {
		return artifact, err
	}
	if !ok {
		w.warn("restore aborted")
		return artifact, lifecycle.ErrOperatorAborted
	}

	if err := w.Database.Restore(ctx, p, artifact); err != nil {
		return artifact, err
	}
	w.block("♻️", "Restore", []ports.KeyValue{
		{Key: "Environment", Value: p.Name},
		{Key: "Database", Value: p.Database.Name},
		{Key: "File", Value: artifact.FilePath},
	})
	w.success(fmt.Sprintf("database %q restored", p.Database.Name))
	return artifact, nil
}

// ArtifactFromFile describes an archive on disk. Names that follow the
// {env}_{db}_{epoch}.dump pattern yield their timestamp; the environment and
// database parts are ambiguous because both may contain underscores.
func ArtifactFromFile(path string) lifecycle.DumpArtifact {
	artifact := lifecycle.DumpArtifact{FilePath: path}
	base := strings.TrimSuffix(filepath.Base(path), lifecycle.DumpExtension)
	idx := strings.LastIndex(base, "_")
	if idx <= 0 {
		return artifact
	}
	if epoch, err := strconv.ParseInt(base[idx+1:], 10, 64); err == nil {
		artifact.CreatedAtEpochSeconds = epoch
	}
	return artifact
}
