// Where: cli/internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/poruru/envdb/cli/internal/dbops"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/infra/blob"
	"github.com/poruru/envdb/cli/internal/interaction"
	"github.com/poruru/envdb/cli/internal/meta"
	"github.com/poruru/envdb/cli/internal/storageops"
	"github.com/poruru/envdb/cli/internal/version"
)

// Dependencies holds the injected collaborators of one CLI invocation.
// Nil fields are replaced with the production implementations.
type Dependencies struct {
	Out    io.Writer
	ErrOut io.Writer
	In     io.Reader
	// Environ returns the process environment snapshot.
	Environ func() map[string]string
	// Prompter overrides terminal detection for confirmations and gates.
	Prompter     interaction.Prompter
	Engine       dbops.Engine
	Archiver     dbops.Archiver
	Connector    storageops.Connector
	PortResolver blob.PortResolver
	Now          func() time.Time
}

// CLI defines the command-line interface structure parsed by Kong.
type CLI struct {
	EnvFile   string `name:"env-file" help:"Path to .env file (default: ./.env when present)"`
	Registry  string `name:"registry" help:"Path to the environment registry file"`
	LogLevel  string `name:"log-level" help:"Log level (debug/info/warn/error)"`
	LogFormat string `name:"log-format" enum:"text,json" default:"text" help:"Log format (text/json)"`
	NoEmoji   bool   `name:"no-emoji" help:"Disable emoji output"`

	Env         EnvCmd         `cmd:"" help:"Inspect registered environments"`
	Create      CreateCmd      `cmd:"" help:"Clone an environment database from its origin"`
	Drop        DropCmd        `cmd:"" help:"Drop an environment database (dry run by default)"`
	Backup      BackupCmd      `cmd:"" help:"Dump an environment database to a read-only archive"`
	Restore     RestoreCmd     `cmd:"" help:"Replace an environment database with an archive"`
	SyncStorage SyncStorageCmd `cmd:"" name:"sync-storage" help:"Overwrite one environment container with another"`
	Duplicate   DuplicateCmd   `cmd:"" help:"Duplicate database and storage between environments"`
	Verify      VerifyCmd      `cmd:"" help:"Compare an environment database with its origin"`
	Workflow    WorkflowCmd    `cmd:"" help:"Cluster workflow templates"`
	Job         JobCmd         `cmd:"" help:"Run a workflow template step inside the cluster"`
	Version     VersionCmd     `cmd:"" help:"Show version information"`
}

type (
	EnvCmd struct {
		List EnvListCmd `cmd:"" help:"List environments and their resolution status"`
	}

	EnvListCmd struct {
		Sort bool `help:"Sort by name instead of registry order"`
	}

	CreateCmd struct {
		Env      string `short:"e" required:"" help:"Target environment"`
		Reassign bool   `name:"reassign-ownership" help:"Hand every table and sequence to the application user"`
	}

	DropCmd struct {
		Env             string `short:"e" required:"" help:"Target environment"`
		DryRun          bool   `name:"dry-run" default:"true" negatable:"" help:"Report without dropping (default: true)"`
		ForceDisconnect bool   `name:"force-disconnect" help:"Terminate open sessions before dropping"`
	}

	BackupCmd struct {
		Env  string `short:"e" required:"" help:"Source environment"`
		Name string `help:"Archive file name (default: {env}_{db}_{epoch}.dump)"`
		Dir  string `help:"Archive directory (overrides ENVDB_DUMP_DIR)"`
	}

	RestoreCmd struct {
		Env  string `short:"e" required:"" help:"Target environment"`
		File string `short:"f" required:"" type:"path" help:"Archive to load"`
		Yes  bool   `short:"y" help:"Skip the confirmation prompt"`
	}

	SyncStorageCmd struct {
		From string `required:"" help:"Source environment"`
		To   string `required:"" help:"Destination environment"`
		Yes  bool   `short:"y" help:"Skip the confirmation prompt"`
	}

	DuplicateCmd struct {
		From string `required:"" help:"Origin environment"`
		To   string `required:"" help:"Destination environment"`
		Yes  bool   `short:"y" help:"Proceed through every gate without asking"`
	}

	VerifyCmd struct {
		Env string `short:"e" required:"" help:"Environment to verify"`
	}

	WorkflowCmd struct {
		Render WorkflowRenderCmd `cmd:"" help:"Render workflow templates and bundles for an environment"`
	}

	WorkflowRenderCmd struct {
		Env            string `short:"e" required:"" help:"Environment the templates are bound to"`
		Out            string `short:"o" required:"" type:"path" help:"Output directory"`
		Namespace      string `help:"Cluster namespace"`
		Image          string `help:"Job container image"`
		ServiceAccount string `name:"service-account" help:"Service account running the jobs"`
	}

	JobCmd struct {
		CreateDB JobCreateDBCmd `cmd:"" name:"create-db" help:"create-db template entrypoint"`
		DropDB   JobDropDBCmd   `cmd:"" name:"drop-db" help:"drop-db template entrypoint"`
	}

	JobCreateDBCmd struct {
		Env string `short:"e" help:"Bound environment (default: ENVDB_ENV)"`
	}

	JobDropDBCmd struct {
		Env             string `short:"e" help:"Bound environment (default: ENVDB_ENV)"`
		DryRun          string `name:"dry-run" help:"true or false (default: true)"`
		ForceDisconnect string `name:"force-disconnect" help:"true or false (default: false)"`
	}

	VersionCmd struct{}
)

// Run is the main entry point for CLI command execution.
// It parses args, loads the environment, and dispatches to the handler.
// The return value is the process exit status.
func Run(args []string, deps Dependencies) int {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.ErrOut == nil {
		deps.ErrOut = os.Stderr
	}
	if deps.In == nil {
		deps.In = os.Stdin
	}

	if len(args) == 0 {
		return runNoArgs(deps.Out)
	}

	cli := CLI{}
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name(cliName()),
		kong.Description("Environment database lifecycle orchestrator."),
		kong.Writers(deps.Out, deps.ErrOut),
		kong.Exit(func(code int) {
			if exitCode < 0 {
				exitCode = code
			}
		}),
	)
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	ctx, err := parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		return handleParseError(err, deps.ErrOut)
	}

	command := ctx.Command()
	if command == "version" {
		return runVersion(deps.Out)
	}

	rt, err := newRuntime(cli, deps, strings.HasPrefix(command, "job "))
	if err != nil {
		return exitWithError(deps.ErrOut, err)
	}

	if code, handled := dispatchCommand(command, cli, rt); handled {
		return code
	}
	rt.ui.Warn("unknown command")
	return 1
}

type commandHandler func(CLI, *runtime) error

func dispatchCommand(command string, cli CLI, rt *runtime) (int, bool) {
	handlers := map[string]commandHandler{
		"env list":        runEnvList,
		"create":          runCreate,
		"drop":            runDrop,
		"backup":          runBackup,
		"restore":         runRestore,
		"sync-storage":    runSyncStorage,
		"duplicate":       runDuplicate,
		"verify":          runVerify,
		"workflow render": runWorkflowRender,
		"job create-db":   runJobCreateDB,
		"job drop-db":     runJobDropDB,
	}
	handler, ok := handlers[command]
	if !ok {
		return 1, false
	}
	return rt.finish(command, handler(cli, rt)), true
}

// runVersion prints the version information of the CLI.
func runVersion(out io.Writer) int {
	fmt.Fprintf(out, "%s %s\n", meta.AppName, version.GetVersion())
	return 0
}

// runNoArgs prints a short usage summary.
func runNoArgs(out io.Writer) int {
	cmd := cliName()
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s env list\n", cmd)
	fmt.Fprintf(out, "  %s create --env <name>\n", cmd)
	fmt.Fprintf(out, "  %s drop --env <name> [--no-dry-run] [--force-disconnect]\n", cmd)
	fmt.Fprintf(out, "  %s duplicate --from <origin> --to <destination>\n", cmd)
	fmt.Fprintln(out, "")
	fmt.Fprintf(out, "Try: %s --help\n", cmd)
	return 0
}

// handleParseError reports flag and argument problems as usage errors.
func handleParseError(err error, errOut io.Writer) int {
	fmt.Fprintf(errOut, "✗ %v\n", err)
	var parseErr *kong.ParseError
	if errors.As(err, &parseErr) {
		fmt.Fprintf(errOut, "Try: %s --help\n", cliName())
	}
	return lifecycle.ExitUsage
}

// exitWithError prints err and returns its classified exit code.
func exitWithError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "✗ %v\n", err)
	return lifecycle.ExitCode(err)
}

func cliName() string {
	name := strings.TrimSpace(os.Getenv("CLI_CMD"))
	if name == "" {
		name = strings.TrimSpace(meta.Slug)
	}
	if name == "" {
		name = meta.AppName
	}
	return name
}
