// Where: cli/internal/pipeline/pipeline.go
// What: Two-environment duplication pipeline with operator gates.
// Why: Clone a database and optionally its storage with explicit checkpoints between halves.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poruru/envdb/cli/internal/dbops"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/registry"
	"github.com/poruru/envdb/cli/internal/storageops"
)

// State names a pipeline step.
type State string

const (
	StateStart              State = "start"
	StateBackupOrigin       State = "backup_origin"
	StateGateContextSwitch  State = "gate_context_switch"
	StateRestoreDestination State = "restore_destination"
	StateGateStorage        State = "gate_storage"
	StateDuplicateStorage   State = "duplicate_storage"
	StateDone               State = "done"
	StateAborted            State = "aborted"
)

// Outcome records how far the pipeline got.
type Outcome struct {
	State     State
	AbortedAt State
	Artifact  lifecycle.DumpArtifact
	Restored  bool
	Storage   *storageops.Report
}

// Aborted reports whether an operator stopped the pipeline at a gate.
func (o Outcome) Aborted() bool {
	return o.State == StateAborted
}

// Resolver resolves environment names to profiles.
type Resolver interface {
	Resolve(name string) (registry.Profile, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) (registry.Profile, error)

func (f ResolverFunc) Resolve(name string) (registry.Profile, error) {
	return f(name)
}

// DatabaseOps is the database half of the pipeline.
type DatabaseOps interface {
	Backup(ctx context.Context, source registry.Profile, name string) (lifecycle.DumpArtifact, error)
	Restore(ctx context.Context, target registry.Profile, artifact lifecycle.DumpArtifact) error
}

// StorageOps is the storage half of the pipeline.
type StorageOps interface {
	DuplicateStorage(ctx context.Context, source, destination registry.Profile) (storageops.Report, error)
}

// Pipeline wires the collaborators of one duplication run.
type Pipeline struct {
	Resolver    Resolver
	Database    DatabaseOps
	Storage     StorageOps
	ContextGate Gate
	StorageGate Gate
	Logger      *slog.Logger
	// OnState is called on every transition.
	OnState func(State)
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.Logger
}

func (p *Pipeline) enter(out *Outcome, state State) {
	out.State = state
	p.logger().Info("pipeline state", "state", state)
	if p.OnState != nil {
		p.OnState(state)
	}
}

func (p *Pipeline) check() error {
	switch {
	case p == nil:
		return errors.New("pipeline not configured")
	case p.Resolver == nil:
		return errors.New("pipeline resolver not configured")
	case p.Database == nil:
		return errors.New("pipeline database operations not configured")
	case p.ContextGate == nil || p.StorageGate == nil:
		return errors.New("pipeline gates not configured")
	}
	return nil
}

// Run duplicates origin into destination. An operator abort returns a nil
// error with Outcome.State set to StateAborted.
func (p *Pipeline) Run(ctx context.Context, originName, destinationName string) (Outcome, error) {
	out := Outcome{State: StateStart}
	if err := p.check(); err != nil {
		return out, err
	}
	p.enter(&out, StateStart)
	if originName == destinationName {
		return out, fmt.Errorf("%w: origin and destination are both %q", lifecycle.ErrUsage, originName)
	}
	origin, err := p.Resolver.Resolve(originName)
	if err != nil {
		return out, err
	}
	destination, err := p.Resolver.Resolve(destinationName)
	if err != nil {
		return out, err
	}
	if err := dbops.CheckDropGuards(lifecycle.KindRestore, destination); err != nil {
		return out, err
	}
	log := p.logger().With("origin", origin.Name, "destination", destination.Name)

	p.enter(&out, StateBackupOrigin)
	artifact, err := p.Database.Backup(ctx, origin, "")
	if err != nil {
		return out, err
	}
	out.Artifact = artifact

	p.enter(&out, StateGateContextSwitch)
	proceed, err := p.pass(ctx, p.ContextGate, &out, GateRequest{
		State:       StateGateContextSwitch,
		Origin:      origin.Name,
		Destination: destination.Name,
		Title:       fmt.Sprintf("Restore into %s?", destination.Name),
		Description: fmt.Sprintf("Backup of %s written to %s. Switch to the %s network and credentials before continuing.",
			origin.Name, artifact.FilePath, destination.Name),
	})
	if err != nil || !proceed {
		return out, err
	}

	p.enter(&out, StateRestoreDestination)
	if err := p.Database.Restore(ctx, destination, artifact); err != nil {
		return out, err
	}
	out.Restored = true

	if !origin.Storage.Configured() || !destination.Storage.Configured() || p.Storage == nil {
		log.Info("storage duplication skipped; no container configured on both sides")
		p.enter(&out, StateDone)
		return out, nil
	}

	p.enter(&out, StateGateStorage)
	proceed, err = p.pass(ctx, p.StorageGate, &out, GateRequest{
		State:       StateGateStorage,
		Origin:      origin.Name,
		Destination: destination.Name,
		Title:       fmt.Sprintf("Duplicate storage into %s?", destination.Name),
		Description: fmt.Sprintf("Every object in container %q will be replaced by the contents of %q.",
			destination.Storage.Container, origin.Storage.Container),
	})
	if err != nil || !proceed {
		return out, err
	}

	p.enter(&out, StateDuplicateStorage)
	report, err := p.Storage.DuplicateStorage(ctx, origin, destination)
	if err != nil {
		return out, err
	}
	out.Storage = &report

	p.enter(&out, StateDone)
	return out, nil
}

func (p *Pipeline) pass(ctx context.Context, gate Gate, out *Outcome, req GateRequest) (bool, error) {
	decision, err := gate.Decide(ctx, req)
	if err != nil {
		return false, err
	}
	if decision == lifecycle.Proceed {
		return true, nil
	}
	out.AbortedAt = req.State
	p.enter(out, StateAborted)
	p.logger().Info("pipeline aborted by operator", "gate", req.State)
	return false, nil
}
