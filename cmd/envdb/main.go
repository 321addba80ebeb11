// Where: cli/cmd/envdb/main.go
// What: CLI entrypoint.
// Why: Execute envdb commands with configured dependencies.
package main

import (
	"os"

	"github.com/poruru/envdb/cli/internal/app"
)

func main() {
	deps, closer := buildDependencies()
	code := app.Run(os.Args[1:], deps)
	if closer != nil {
		_ = closer.Close()
	}
	os.Exit(code)
}
