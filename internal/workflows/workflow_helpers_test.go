// Where: cli/internal/workflows/workflow_helpers_test.go
// What: Test helpers and stub ports for workflow unit tests.
// Why: Keep workflow tests focused on orchestration behavior without external dependencies.
package workflows

import (
	"context"
	"fmt"
	"sort"

	"github.com/poruru/envdb/cli/internal/dbops"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/ports"
	"github.com/poruru/envdb/cli/internal/registry"
	"github.com/poruru/envdb/cli/internal/storageops"
)

type testBlock struct {
	title string
	rows  []ports.KeyValue
}

type testUI struct {
	infos     []string
	warns     []string
	successes []string
	blocks    []testBlock
}

func (u *testUI) Info(msg string) {
	u.infos = append(u.infos, msg)
}

func (u *testUI) Warn(msg string) {
	u.warns = append(u.warns, msg)
}

func (u *testUI) Success(msg string) {
	u.successes = append(u.successes, msg)
}

func (u *testUI) Block(_, title string, rows []ports.KeyValue) {
	u.blocks = append(u.blocks, testBlock{title: title, rows: rows})
}

func (u *testUI) row(title, key string) (any, bool) {
	for _, block := range u.blocks {
		if block.title != title {
			continue
		}
		for _, kv := range block.rows {
			if kv.Key == key {
				return kv.Value, true
			}
		}
	}
	return nil, false
}

type staticResolver struct {
	order    []string
	profiles map[string]registry.Profile
	errs     map[string]error
}

func (r staticResolver) Names() []string {
	if r.order != nil {
		return r.order
	}
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r staticResolver) Resolve(name string) (registry.Profile, error) {
	if err, ok := r.errs[name]; ok {
		return r.profiles[name], err
	}
	p, ok := r.profiles[name]
	if !ok {
		return registry.Profile{}, fmt.Errorf("%w %q", lifecycle.ErrUnknownEnvironment, name)
	}
	return p, nil
}

func testProfiles() staticResolver {
	dev := registry.Profile{Name: "dev", Classification: registry.ClassDevelopment, IsMain: true}
	dev.Database.Name = "dev_projects"
	dev.Database.OriginDatabaseName = "dev_projects"
	dev.Storage.Container = "dev-projects"

	alice := registry.Profile{Name: "sandbox_alice", Classification: registry.ClassDevelopment}
	alice.Database.Name = "sandbox_alice"
	alice.Database.OriginDatabaseName = "dev_projects"
	alice.Storage.Container = "sandbox-alice"

	prod := registry.Profile{Name: "production", Classification: registry.ClassProduction, IsProduction: true}
	prod.Database.Name = "projects"
	prod.Database.OriginDatabaseName = "projects_origin"

	local := registry.Profile{Name: "local", Classification: registry.ClassLocal}
	local.Database.Name = "local_projects"
	local.Database.OriginDatabaseName = "dev_projects"
	local.Storage.Container = "local-projects"

	return staticResolver{profiles: map[string]registry.Profile{
		"dev":           dev,
		"sandbox_alice": alice,
		"production":    prod,
		"local":         local,
	}}
}

type recordDatabase struct {
	calls     []string
	createErr error
	dropErr   error
	backupErr error
	restErr   error
	diffs     []string
	created   dbops.CreateResult
}

func (r *recordDatabase) Create(_ context.Context, target registry.Profile, opts dbops.CreateOptions) (dbops.CreateResult, error) {
	r.calls = append(r.calls, fmt.Sprintf("create:%s:%t", target.Name, opts.ReassignOwnership))
	result := r.created
	if result.Database == "" {
		result = dbops.CreateResult{
			Database: target.Database.Name,
			Origin:   target.Database.OriginDatabaseName,
			Created:  true,
			Restored: true,
			Granted:  true,
		}
	}
	return result, r.createErr
}

func (r *recordDatabase) Drop(_ context.Context, target registry.Profile, opts dbops.DropOptions) (dbops.DropResult, error) {
	r.calls = append(r.calls, fmt.Sprintf("drop:%s:dry=%t:force=%t", target.Name, opts.DryRun, opts.ForceDisconnect))
	if err := dbops.CheckDropGuards(lifecycle.KindDrop, target); err != nil {
		return dbops.DropResult{}, err
	}
	if r.dropErr != nil {
		return dbops.DropResult{}, r.dropErr
	}
	return dbops.DropResult{
		Environment: target.Name,
		Database:    target.Database.Name,
		DryRun:      opts.DryRun,
		Dropped:     !opts.DryRun,
	}, nil
}

func (r *recordDatabase) Backup(_ context.Context, source registry.Profile, name string) (lifecycle.DumpArtifact, error) {
	r.calls = append(r.calls, "backup:"+source.Name+":"+name)
	if r.backupErr != nil {
		return lifecycle.DumpArtifact{}, r.backupErr
	}
	return lifecycle.DumpArtifact{
		SourceEnvironment:     source.Name,
		Database:              source.Database.Name,
		CreatedAtEpochSeconds: 1700000000,
		FilePath:              "dumps/" + source.Name + ".dump",
	}, nil
}

func (r *recordDatabase) Restore(_ context.Context, target registry.Profile, artifact lifecycle.DumpArtifact) error {
	r.calls = append(r.calls, "restore:"+target.Name+"<-"+artifact.FilePath)
	return r.restErr
}

func (r *recordDatabase) Verify(_ context.Context, target registry.Profile) ([]string, error) {
	r.calls = append(r.calls, "verify:"+target.Name)
	return r.diffs, nil
}

type recordStorage struct {
	calls []string
	err   error
}

func (r *recordStorage) DuplicateStorage(_ context.Context, source, destination registry.Profile) (storageops.Report, error) {
	r.calls = append(r.calls, "storage:"+source.Name+"->"+destination.Name)
	if r.err != nil {
		return storageops.Report{}, r.err
	}
	return storageops.Report{
		Mode:                 storageops.ModeFor(destination),
		Source:               source.Name,
		Destination:          destination.Name,
		SourceContainer:      source.Storage.Container,
		DestinationContainer: destination.Storage.Container,
		Copied:               3,
		Bytes:                42,
	}, nil
}

type scriptedConfirmer struct {
	answer bool
	err    error
	titles []string
}

func (c *scriptedConfirmer) Confirm(title, _ string) (bool, error) {
	c.titles = append(c.titles, title)
	return c.answer, c.err
}
