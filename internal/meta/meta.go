// Where: cli/internal/meta/meta.go
// What: CLI-local metadata constants.
// Why: Keep the tool identity in one place for env keys, labels, and generated names.
package meta

const (
	// Project Identity
	AppName     = "envdb"
	Slug        = "envdb"
	EnvPrefix   = "ENVDB"
	LabelPrefix = "io.envdb"

	// Directory Layout
	DumpDir    = "dumps"
	StagingDir = ".staging"

	// Cluster Surface
	JobImage        = "ghcr.io/poruru/envdb"
	WorkflowAccount = "envdb-runner"
)
