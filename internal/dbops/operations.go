// Where: cli/internal/dbops/operations.go
// What: Create, drop, backup, restore, and verify primitives for one environment.
// Why: Sequence engine and archiver calls with guards and explicit partial results.
package dbops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/registry"
)

// Operations runs database primitives against resolved profiles.
type Operations struct {
	Engine   Engine
	Archiver Archiver
	DumpDir  string
	Now      func() time.Time
	Logger   *slog.Logger
}

// New constructs Operations with the wall clock and a discarding logger.
func New(engine Engine, archiver Archiver, dumpDir string) *Operations {
	return &Operations{
		Engine:   engine,
		Archiver: archiver,
		DumpDir:  dumpDir,
		Now:      time.Now,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (o *Operations) check() error {
	if o == nil {
		return errors.New("database operations not configured")
	}
	if o.Engine == nil {
		return errors.New("database engine not configured")
	}
	if o.Archiver == nil {
		return errors.New("archiver not configured")
	}
	return nil
}

func (o *Operations) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o *Operations) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func adminConn(p registry.Profile) Conn {
	return connFor(p, registry.MaintenanceDatabase(), p.Database.Admin())
}

// CreateOptions tunes Create.
type CreateOptions struct {
	// ReassignOwnership hands every table and sequence to the owner so
	// schema-altering statements succeed later.
	ReassignOwnership bool
}

// CreateResult records which Create steps completed.
type CreateResult struct {
	Database   string
	Origin     string
	Created    bool
	Restored   bool
	Granted    bool
	Reassigned bool
	Artifact   lifecycle.DumpArtifact
}

// Create allocates the target database and clones its origin into it.
// A failure after allocation leaves the new database in place; the result
// says how far the operation got.
func (o *Operations) Create(ctx context.Context, target registry.Profile, opts CreateOptions) (CreateResult, error) {
	result := CreateResult{Database: target.Database.Name, Origin: target.Database.OriginDatabaseName}
	if err := o.check(); err != nil {
		return result, err
	}
	if err := target.Validate(); err != nil {
		return result, err
	}
	if strings.TrimSpace(result.Origin) == "" {
		return result, fmt.Errorf("create: environment %q has no origin database configured", target.Name)
	}
	log := o.logger().With("op", lifecycle.KindCreate, "env", target.Name, "db", result.Database, "origin", result.Origin)

	admin := adminConn(target)
	exists, err := o.Engine.DatabaseExists(ctx, admin, result.Origin)
	if err != nil {
		return result, lifecycle.Engine("create", result.Origin, err)
	}
	if !exists {
		return result, lifecycle.Engine("create", result.Origin, fmt.Errorf("origin database %q does not exist", result.Origin))
	}

	owner := target.Database.User
	if err := o.Engine.CreateDatabase(ctx, admin, result.Database, owner); err != nil {
		return result, lifecycle.Engine("create", result.Database, err)
	}
	result.Created = true
	log.Info("database created", "owner", owner)

	origin := connFor(target, result.Origin, target.Database.Admin())
	artifact, err := o.dump(ctx, target.Name, origin, "")
	if err != nil {
		log.Error("origin dump failed; new database left in place", "err", err)
		return result, err
	}
	result.Artifact = artifact

	into := connFor(target, result.Database, target.Database.Owner())
	if err := o.Archiver.Restore(ctx, into, artifact.FilePath); err != nil {
		log.Error("restore into new database failed; new database left in place", "err", err)
		return result, lifecycle.Engine("restore", result.Database, err)
	}
	result.Restored = true

	privileged := connFor(target, result.Database, target.Database.Admin())
	if err := o.Engine.GrantAll(ctx, privileged, owner); err != nil {
		return result, lifecycle.Engine("grant", result.Database, err)
	}
	result.Granted = true

	if opts.ReassignOwnership {
		if err := o.Engine.ReassignOwnership(ctx, privileged, owner); err != nil {
			return result, lifecycle.Engine("reassign", result.Database, err)
		}
		result.Reassigned = true
	}
	log.Info("database cloned from origin", "artifact", artifact.FilePath)
	return result, nil
}

// DropOptions tunes Drop. The zero value is not a dry run; use DefaultDropOptions.
type DropOptions struct {
	DryRun          bool
	ForceDisconnect bool
}

// DefaultDropOptions returns the safe defaults: dry run, no forced disconnect.
func DefaultDropOptions() DropOptions {
	return DropOptions{DryRun: true}
}

// DropResult reports what Drop did or would have done.
type DropResult struct {
	Environment string
	Database    string
	DryRun      bool
	Dropped     bool
	Terminated  int
}

// Drop destroys the target database after the guards pass.
func (o *Operations) Drop(ctx context.Context, target registry.Profile, opts DropOptions) (DropResult, error) {
	result := DropResult{Environment: target.Name, Database: target.Database.Name, DryRun: opts.DryRun}
	if err := CheckDropGuards(lifecycle.KindDrop, target); err != nil {
		return result, err
	}
	if err := o.check(); err != nil {
		return result, err
	}
	log := o.logger().With("op", lifecycle.KindDrop, "env", target.Name, "db", result.Database)
	if opts.DryRun {
		log.Info("dry run: database would be dropped", "force_disconnect", opts.ForceDisconnect)
		return result, nil
	}

	admin := adminConn(target)
	if opts.ForceDisconnect {
		n, err := o.Engine.TerminateSessions(ctx, admin, result.Database)
		if err != nil {
			return result, lifecycle.Engine("terminate", result.Database, err)
		}
		result.Terminated = n
		log.Info("sessions terminated", "count", n)
	} else {
		n, err := o.Engine.CountSessions(ctx, admin, result.Database)
		if err != nil {
			return result, lifecycle.Engine("sessions", result.Database, err)
		}
		if n > 0 {
			return result, fmt.Errorf("%w: database %q of environment %q has %d open session(s); retry with force disconnect",
				lifecycle.ErrDatabaseInUse, result.Database, target.Name, n)
		}
	}

	if err := o.Engine.DropDatabase(ctx, admin, result.Database, false); err != nil {
		return result, lifecycle.Engine("drop", result.Database, err)
	}
	result.Dropped = true
	log.Info("database dropped")
	return result, nil
}

// Backup dumps the source database into a new read-only archive.
// An empty name selects the deterministic {env}_{db}_{epoch}.dump name.
func (o *Operations) Backup(ctx context.Context, source registry.Profile, name string) (lifecycle.DumpArtifact, error) {
	if err := o.check(); err != nil {
		return lifecycle.DumpArtifact{}, err
	}
	conn := connFor(source, source.Database.Name, source.Database.Owner())
	artifact, err := o.dump(ctx, source.Name, conn, name)
	if err != nil {
		return lifecycle.DumpArtifact{}, err
	}
	o.logger().Info("backup written", "op", lifecycle.KindBackup, "env", source.Name, "db", source.Database.Name, "artifact", artifact.FilePath)
	return artifact, nil
}

func (o *Operations) dump(ctx context.Context, envName string, source Conn, name string) (lifecycle.DumpArtifact, error) {
	at := o.now()
	if strings.TrimSpace(name) == "" {
		name = lifecycle.DumpFileName(envName, source.Database, at)
	}
	if filepath.Base(name) != name {
		return lifecycle.DumpArtifact{}, fmt.Errorf("backup name %q must not contain a path", name)
	}
	dir := o.DumpDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return lifecycle.DumpArtifact{}, fmt.Errorf("create dump dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return lifecycle.DumpArtifact{}, fmt.Errorf("dump artifact %s already exists", path)
	}

	// The archive only appears under its final name once it is complete and sealed.
	partial := path + ".partial"
	if err := o.Archiver.Dump(ctx, source, partial); err != nil {
		_ = os.Remove(partial)
		return lifecycle.DumpArtifact{}, lifecycle.Engine("dump", source.Database, err)
	}
	if err := os.Chmod(partial, 0o444); err != nil {
		_ = os.Remove(partial)
		return lifecycle.DumpArtifact{}, fmt.Errorf("seal dump artifact: %w", err)
	}
	if err := os.Rename(partial, path); err != nil {
		_ = os.Remove(partial)
		return lifecycle.DumpArtifact{}, fmt.Errorf("publish dump artifact: %w", err)
	}
	return lifecycle.DumpArtifact{
		SourceEnvironment:     envName,
		Database:              source.Database,
		CreatedAtEpochSeconds: at.Unix(),
		FilePath:              path,
	}, nil
}

// Restore replaces the target database with the artifact contents.
// The drop guards run first because the target is dropped unconditionally.
func (o *Operations) Restore(ctx context.Context, target registry.Profile, artifact lifecycle.DumpArtifact) error {
	if err := CheckDropGuards(lifecycle.KindRestore, target); err != nil {
		return err
	}
	if err := o.check(); err != nil {
		return err
	}
	if _, err := os.Stat(artifact.FilePath); err != nil {
		return fmt.Errorf("restore: artifact: %w", err)
	}
	return o.restore(ctx, target, artifact)
}

// restore is the unguarded primitive: forced drop, recreate from template0, load.
func (o *Operations) restore(ctx context.Context, target registry.Profile, artifact lifecycle.DumpArtifact) error {
	name := target.Database.Name
	log := o.logger().With("op", lifecycle.KindRestore, "env", target.Name, "db", name, "artifact", artifact.FilePath)
	admin := adminConn(target)

	n, err := o.Engine.TerminateSessions(ctx, admin, name)
	if err != nil {
		return lifecycle.Engine("terminate", name, err)
	}
	if err := o.Engine.DropDatabase(ctx, admin, name, true); err != nil {
		return lifecycle.Engine("drop", name, err)
	}
	log.Info("target database dropped", "terminated", n)
	if err := o.Engine.CreateDatabase(ctx, admin, name, target.Database.User); err != nil {
		return lifecycle.Engine("create", name, err)
	}
	into := connFor(target, name, target.Database.Owner())
	if err := o.Archiver.Restore(ctx, into, artifact.FilePath); err != nil {
		return lifecycle.Engine("restore", name, err)
	}
	log.Info("artifact restored", "source_env", artifact.SourceEnvironment, "source_db", artifact.Database)
	return nil
}

// Inspect snapshots the tables and row counts of the target database.
func (o *Operations) Inspect(ctx context.Context, target registry.Profile) (Inventory, error) {
	if err := o.check(); err != nil {
		return Inventory{}, err
	}
	inv, err := o.Engine.Inspect(ctx, connFor(target, target.Database.Name, target.Database.Owner()))
	if err != nil {
		return Inventory{}, lifecycle.Engine("inspect", target.Database.Name, err)
	}
	return inv, nil
}

// Verify compares the target database with its origin and returns the differences.
func (o *Operations) Verify(ctx context.Context, target registry.Profile) ([]string, error) {
	if err := o.check(); err != nil {
		return nil, err
	}
	origin := target.Database.OriginDatabaseName
	if origin == "" {
		return nil, fmt.Errorf("verify: environment %q has no origin database configured", target.Name)
	}
	want, err := o.Engine.Inspect(ctx, connFor(target, origin, target.Database.Admin()))
	if err != nil {
		return nil, lifecycle.Engine("inspect", origin, err)
	}
	got, err := o.Inspect(ctx, target)
	if err != nil {
		return nil, err
	}
	return Diff(want, got), nil
}
