// Where: cli/cmd/envdb/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"io"
	"os"

	"github.com/poruru/envdb/cli/internal/app"
	"github.com/poruru/envdb/cli/internal/envutil"
	"github.com/poruru/envdb/cli/internal/infra/blob"
	"github.com/poruru/envdb/cli/internal/infra/pgtools"
	"github.com/poruru/envdb/cli/internal/infra/postgres"
)

var newDockerClient = func() (blob.DockerClient, error) {
	return blob.NewDockerClient()
}

// buildDependencies constructs the runtime dependencies of the CLI.
// The Docker client only serves port discovery for the local stack, so a
// failure to create it leaves discovery disabled instead of failing.
// Returns the dependencies and a closer for the Docker client, if any.
func buildDependencies() (app.Dependencies, io.Closer) {
	deps := app.Dependencies{
		Out:      os.Stdout,
		ErrOut:   os.Stderr,
		In:       os.Stdin,
		Environ:  envutil.Snapshot,
		Engine:   postgres.NewEngine(),
		Archiver: pgtools.NewArchiver(pgtools.ExecRunner{}),
	}

	client, err := newDockerClient()
	if err != nil || client == nil {
		return deps, nil
	}
	deps.PortResolver = blob.DockerPortResolver{Client: client}
	return deps, asCloser(client)
}

// asCloser attempts to cast the Docker client to an io.Closer.
// Returns nil if the client does not implement the Closer interface.
func asCloser(client blob.DockerClient) io.Closer {
	if closer, ok := client.(io.Closer); ok {
		return closer
	}
	return nil
}
