// Where: cli/internal/app/runtime.go
// What: Per-invocation runtime assembled from settings, registry, and injected ports.
// Why: Build the collaborators once so handlers only translate flags into workflow requests.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/poruru/envdb/cli/internal/config"
	"github.com/poruru/envdb/cli/internal/dbops"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/envutil"
	"github.com/poruru/envdb/cli/internal/infra/blob"
	"github.com/poruru/envdb/cli/internal/infra/pgtools"
	"github.com/poruru/envdb/cli/internal/infra/postgres"
	"github.com/poruru/envdb/cli/internal/logging"
	"github.com/poruru/envdb/cli/internal/ports"
	"github.com/poruru/envdb/cli/internal/registry"
	"github.com/poruru/envdb/cli/internal/storageops"
)

const (
	localDatabaseService = "postgres"
	localDatabasePort    = 5432
)

type runtime struct {
	ctx      context.Context
	deps     Dependencies
	settings config.Settings
	environ  map[string]string
	registry *registry.Registry
	logger   *slog.Logger
	ui       ports.UserInterface
	job      bool
}

func newRuntime(cli CLI, deps Dependencies, job bool) (*runtime, error) {
	environ, warning := loadEnviron(cli.EnvFile, deps.Environ)
	uiOut := deps.Out
	if job {
		uiOut = deps.ErrOut
	}
	console := ports.NewConsoleUI(uiOut, !cli.NoEmoji && !job)
	if warning != "" {
		console.Warn(warning)
	}

	settings, err := config.LoadSettings(environ)
	if err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		settings.LogLevel = cli.LogLevel
	}
	if cli.Registry != "" {
		settings.RegistryFile = cli.Registry
	}

	// Jobs log JSON to stdout for the cluster log collector.
	logOut, format := deps.ErrOut, logging.Format(cli.LogFormat)
	if job {
		logOut, format = deps.Out, logging.FormatJSON
	}
	logger, err := logging.New(logOut, logging.Options{Level: settings.LogLevel, Format: format})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", lifecycle.ErrUsage, err)
	}

	file, err := loadRegistryFile(settings.RegistryFile)
	if err != nil {
		return nil, err
	}

	return &runtime{
		ctx:      context.Background(),
		deps:     deps,
		settings: settings,
		environ:  environ,
		registry: registry.New(file, settings.ExtraEnvironments...),
		logger:   logger,
		ui:       console,
		job:      job,
	}, nil
}

// loadEnviron snapshots the process environment and fills gaps from the env
// file. Variables already set in the process win, as with godotenv.Load.
func loadEnviron(path string, source func() map[string]string) (map[string]string, string) {
	if source == nil {
		source = envutil.Snapshot
	}
	environ := source()
	if environ == nil {
		environ = map[string]string{}
	}

	explicit := path != ""
	if !explicit {
		if _, err := os.Stat(".env"); err != nil {
			return environ, ""
		}
		path = ".env"
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if explicit {
			return environ, fmt.Sprintf("Warning: failed to load env file %s: %v", path, err)
		}
		return environ, fmt.Sprintf("Warning: failed to load .env: %v", err)
	}
	for key, value := range values {
		if _, ok := environ[key]; !ok {
			environ[key] = value
		}
	}
	return environ, ""
}

func loadRegistryFile(path string) (config.RegistryFile, error) {
	if strings.TrimSpace(path) == "" {
		return config.DefaultRegistry()
	}
	return config.LoadRegistry(path)
}

// resolver binds the registry to this invocation's variables. Local profiles
// pick up the published database port of the compose stack.
func (rt *runtime) resolver() ports.EnvironmentResolver {
	return ports.EnvironmentResolverFunc{
		NamesFunc: rt.registry.Names,
		ResolveFunc: func(name string) (registry.Profile, error) {
			p, err := rt.registry.Resolve(name, rt.environ)
			if err != nil || !p.IsLocal() {
				return p, err
			}
			fallback := p.Database.Port
			if fallback == 0 {
				fallback = localDatabasePort
			}
			p.Database.Port = blob.ResolvePort(rt.ctx, rt.settings.DatabasePort, fallback, blob.PortRequest{
				Project:       rt.settings.ComposeProject,
				Service:       localDatabaseService,
				ContainerPort: localDatabasePort,
			}, rt.deps.PortResolver)
			return p, nil
		},
	}
}

func (rt *runtime) database(dumpDir string) *dbops.Operations {
	engine := rt.deps.Engine
	if engine == nil {
		engine = postgres.NewEngine()
	}
	archiver := rt.deps.Archiver
	if archiver == nil {
		archiver = pgtools.NewArchiver(pgtools.ExecRunner{})
	}
	if dumpDir == "" {
		dumpDir = rt.settings.DumpDir
	}
	ops := dbops.New(engine, archiver, dumpDir)
	ops.Logger = rt.logger
	if rt.deps.Now != nil {
		ops.Now = rt.deps.Now
	}
	return ops
}

func (rt *runtime) storage() *storageops.Operations {
	connector := rt.deps.Connector
	if connector == nil {
		connector = blob.Connector{
			ComposeProject: rt.settings.ComposeProject,
			PortOverride:   rt.settings.S3Port,
			Resolver:       rt.deps.PortResolver,
		}
	}
	ops := storageops.New(connector, rt.settings.StagingDir)
	ops.Logger = rt.logger
	return ops
}

// finish logs and prints the outcome of a handler and maps it to an exit code.
func (rt *runtime) finish(command string, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, lifecycle.ErrOperatorAborted) {
		rt.logger.Info("aborted by operator", "command", command)
		return lifecycle.ExitOK
	}
	code := lifecycle.ExitCode(err)
	if rt.job {
		rt.logger.Error("command failed", "command", command, "exit_code", code, "err", err)
		return code
	}
	fmt.Fprintf(rt.deps.ErrOut, "✗ %v\n", err)
	return code
}
