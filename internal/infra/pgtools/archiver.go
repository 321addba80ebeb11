// Where: cli/internal/infra/pgtools/archiver.go
// What: pg_dump and pg_restore implementation of the archiver port.
// Why: Produce and load custom-format archives with credentials kept out of argv.
package pgtools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/poruru/envdb/cli/internal/dbops"
)

const (
	defaultDumpBinary    = "pg_dump"
	defaultRestoreBinary = "pg_restore"
	compressionLevel     = "9"
)

// Archiver shells out to pg_dump and pg_restore.
type Archiver struct {
	Runner        CommandRunner
	DumpBinary    string
	RestoreBinary string
}

// NewArchiver returns an Archiver using the binaries found on PATH.
func NewArchiver(runner CommandRunner) *Archiver {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Archiver{Runner: runner, DumpBinary: defaultDumpBinary, RestoreBinary: defaultRestoreBinary}
}

var _ dbops.Archiver = (*Archiver)(nil)

// Dump writes a compressed custom-format archive of source to path.
func (a *Archiver) Dump(ctx context.Context, source dbops.Conn, path string) error {
	args := append(connArgs(source),
		"--format=custom",
		"--compress="+compressionLevel,
		"--file="+path,
		source.Database,
	)
	return a.run(ctx, binary(a.DumpBinary, defaultDumpBinary), source, args)
}

// Restore loads the archive at path into target without owners or ACLs.
func (a *Archiver) Restore(ctx context.Context, target dbops.Conn, path string) error {
	args := append(connArgs(target),
		"--no-owner",
		"--no-acl",
		"--exit-on-error",
		"--dbname="+target.Database,
		path,
	)
	return a.run(ctx, binary(a.RestoreBinary, defaultRestoreBinary), target, args)
}

func (a *Archiver) run(ctx context.Context, name string, conn dbops.Conn, args []string) error {
	runner := a.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	output, err := runner.RunOutput(ctx, credentialEnv(conn), name, args...)
	if err != nil {
		if detail := strings.TrimSpace(string(output)); detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}

func connArgs(c dbops.Conn) []string {
	return []string{
		"--host=" + c.Host,
		"--port=" + strconv.Itoa(c.Port),
		"--username=" + c.User,
		"--no-password",
	}
}

// credentialEnv carries the password through the environment only.
func credentialEnv(c dbops.Conn) []string {
	if c.Password == "" {
		return nil
	}
	return []string{"PGPASSWORD=" + c.Password}
}

func binary(configured, fallback string) string {
	if strings.TrimSpace(configured) == "" {
		return fallback
	}
	return configured
}
