// Where: cli/internal/workflows/database.go
// What: Create, drop, backup, and verify workflows.
// Why: Resolve the environment, run one guarded operation, and report the result.
package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/poruru/envdb/cli/internal/dbops"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/ports"
	"github.com/poruru/envdb/cli/internal/registry"
)

type databaseDeps struct {
	Resolver ports.EnvironmentResolver
	Database ports.DatabaseLifecycle
	UI       ports.UserInterface
}

// resolve validates op and resolves its target environment.
func (d databaseDeps) resolve(op lifecycle.OperationRequest) (registry.Profile, error) {
	if d.Resolver == nil {
		return registry.Profile{}, errors.New("environment resolver not configured")
	}
	if d.Database == nil {
		return registry.Profile{}, errors.New("database operations not configured")
	}
	if err := op.Validate(); err != nil {
		return registry.Profile{}, err
	}
	return d.Resolver.Resolve(strings.TrimSpace(op.TargetEnvironment))
}

func (d databaseDeps) block(emoji, title string, rows []ports.KeyValue) {
	if d.UI != nil {
		d.UI.Block(emoji, title, rows)
	}
}

func (d databaseDeps) success(msg string) {
	if d.UI != nil {
		d.UI.Success(msg)
	}
}

func (d databaseDeps) warn(msg string) {
	if d.UI != nil {
		d.UI.Warn(msg)
	}
}

// CreateRequest captures inputs for the create workflow.
type CreateRequest struct {
	Env               string
	ReassignOwnership bool
}

// CreateWorkflow clones an environment database from its origin.
type CreateWorkflow struct {
	databaseDeps
}

// NewCreateWorkflow constructs a CreateWorkflow.
func NewCreateWorkflow(resolver ports.EnvironmentResolver, database ports.DatabaseLifecycle, ui ports.UserInterface) CreateWorkflow {
	return CreateWorkflow{databaseDeps{Resolver: resolver, Database: database, UI: ui}}
}

// Run executes the create workflow.
func (w CreateWorkflow) Run(ctx context.Context, req CreateRequest) (dbops.CreateResult, error) {
	p, err := w.resolve(lifecycle.NewOperationRequest(lifecycle.KindCreate, req.Env))
	if err != nil {
		return dbops.CreateResult{}, err
	}
	result, err := w.Database.Create(ctx, p, dbops.CreateOptions{ReassignOwnership: req.ReassignOwnership})
	rows := []ports.KeyValue{
		{Key: "Environment", Value: p.Name},
		{Key: "Database", Value: result.Database},
		{Key: "Origin", Value: result.Origin},
		{Key: "Created", Value: result.Created},
		{Key: "Restored", Value: result.Restored},
		{Key: "Granted", Value: result.Granted},
	}
	if req.ReassignOwnership {
		rows = append(rows, ports.KeyValue{Key: "Reassigned", Value: result.Reassigned})
	}
	if result.Artifact.FilePath != "" {
		rows = append(rows, ports.KeyValue{Key: "Artifact", Value: result.Artifact.FilePath})
	}
	w.block("🧬", "Create", rows)
	if err != nil {
		if result.Created {
			w.warn(fmt.Sprintf("database %q was created but not fully cloned; drop it before retrying", result.Database))
		}
		return result, err
	}
	w.success(fmt.Sprintf("database %q cloned from %q", result.Database, result.Origin))
	return result, nil
}

// DropRequest captures inputs for the drop workflow.
// ApplyHint tells the caller how to leave dry-run mode.
type DropRequest struct {
	Env       string
	Options   dbops.DropOptions
	ApplyHint string
}

// DropWorkflow destroys an environment database when the guards allow it.
type DropWorkflow struct {
	databaseDeps
}

// NewDropWorkflow constructs a DropWorkflow.
func NewDropWorkflow(resolver ports.EnvironmentResolver, database ports.DatabaseLifecycle, ui ports.UserInterface) DropWorkflow {
	return DropWorkflow{databaseDeps{Resolver: resolver, Database: database, UI: ui}}
}

// Run executes the drop workflow.
func (w DropWorkflow) Run(ctx context.Context, req DropRequest) (dbops.DropResult, error) {
	op := lifecycle.NewOperationRequest(lifecycle.KindDrop, req.Env)
	op.DryRun = req.Options.DryRun
	op.ForceDisconnect = req.Options.ForceDisconnect
	p, err := w.resolve(op)
	if err != nil {
		return dbops.DropResult{}, err
	}
	result, err := w.Database.Drop(ctx, p, dbops.DropOptions{DryRun: op.DryRun, ForceDisconnect: op.ForceDisconnect})
	if err != nil {
		return result, err
	}
	w.block("🗑️", "Drop", []ports.KeyValue{
		{Key: "Environment", Value: result.Environment},
		{Key: "Database", Value: result.Database},
		{Key: "Dry run", Value: result.DryRun},
		{Key: "Force disconnect", Value: req.Options.ForceDisconnect},
		{Key: "Terminated", Value: result.Terminated},
	})
	if result.DryRun {
		msg := fmt.Sprintf("dry run: database %q would be dropped", result.Database)
		if req.ApplyHint != "" {
			msg += "; " + req.ApplyHint
		}
		w.warn(msg)
		return result, nil
	}
	w.success(fmt.Sprintf("database %q dropped", result.Database))
	return result, nil
}

// BackupRequest captures inputs for the backup workflow.
type BackupRequest struct {
	Env  string
	Name string
}

// BackupWorkflow writes a custom-format archive of an environment database.
type BackupWorkflow struct {
	databaseDeps
}

// NewBackupWorkflow constructs a BackupWorkflow.
func NewBackupWorkflow(resolver ports.EnvironmentResolver, database ports.DatabaseLifecycle, ui ports.UserInterface) BackupWorkflow {
	return BackupWorkflow{databaseDeps{Resolver: resolver, Database: database, UI: ui}}
}

// Run executes the backup workflow.
func (w BackupWorkflow) Run(ctx context.Context, req BackupRequest) (lifecycle.DumpArtifact, error) {
	p, err := w.resolve(lifecycle.NewOperationRequest(lifecycle.KindBackup, req.Env))
	if err != nil {
		return lifecycle.DumpArtifact{}, err
	}
	artifact, err := w.Database.Backup(ctx, p, req.Name)
	if err != nil {
		return artifact, err
	}
	w.block("📦", "Backup", []ports.KeyValue{
		{Key: "Environment", Value: artifact.SourceEnvironment},
		{Key: "Database", Value: artifact.Database},
		{Key: "Created", Value: artifact.CreatedAt().Format("2006-01-02T15:04:05Z")},
		{Key: "File", Value: artifact.FilePath},
	})
	w.success("backup written")
	return artifact, nil
}

// VerifyRequest captures inputs for the verify workflow.
type VerifyRequest struct {
	Env string
}

// ErrVerifyMismatch reports that the database differs from its origin.
var ErrVerifyMismatch = errors.New("database differs from origin")

// VerifyWorkflow compares an environment database with its origin.
type VerifyWorkflow struct {
	databaseDeps
}

// NewVerifyWorkflow constructs a VerifyWorkflow.
func NewVerifyWorkflow(resolver ports.EnvironmentResolver, database ports.DatabaseLifecycle, ui ports.UserInterface) VerifyWorkflow {
	return VerifyWorkflow{databaseDeps{Resolver: resolver, Database: database, UI: ui}}
}

// Run executes the verify workflow. Differences are returned alongside
// ErrVerifyMismatch.
func (w VerifyWorkflow) Run(ctx context.Context, req VerifyRequest) ([]string, error) {
	p, err := w.resolve(lifecycle.NewOperationRequest(lifecycle.KindVerify, req.Env))
	if err != nil {
		return nil, err
	}
	diffs, err := w.Database.Verify(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(diffs) == 0 {
		w.success(fmt.Sprintf("database %q matches origin %q", p.Database.Name, p.Database.OriginDatabaseName))
		return nil, nil
	}
	rows := make([]ports.KeyValue, 0, len(diffs))
	for i, diff := range diffs {
		rows = append(rows, ports.KeyValue{Key: fmt.Sprintf("#%d", i+1), Value: diff})
	}
	w.block("🔎", "Differences", rows)
	return diffs, fmt.Errorf("%w: %d difference(s) in %q", ErrVerifyMismatch, len(diffs), p.Database.Name)
}
