// Where: cli/internal/infra/pgtools/runner.go
// What: Command runner abstraction for the Postgres client binaries.
// Why: Let tests capture pg_dump and pg_restore invocations without executing them.
package pgtools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// CommandRunner executes an external command with extra environment entries.
type CommandRunner interface {
	RunOutput(ctx context.Context, env []string, name string, args ...string) ([]byte, error)
}

// ExecRunner is the os/exec implementation of CommandRunner.
type ExecRunner struct{}

func (ExecRunner) RunOutput(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("run %s: %w", name, err)
	}
	return output, nil
}
