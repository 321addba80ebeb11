// Where: cli/internal/workflows/env.go
// What: Environment listing workflow.
// Why: Show every registered environment with its classification and resolution status.
package workflows

import (
	"errors"
	"sort"

	"github.com/poruru/envdb/cli/internal/ports"
	"github.com/poruru/envdb/cli/internal/registry"
)

// EnvInfo represents a single environment entry with status metadata.
type EnvInfo struct {
	Name           string
	Classification string
	Main           bool
	Database       string
	Origin         string
	Container      string
	Status         string
}

// Status values reported for each environment.
const (
	EnvStatusReady      = "ready"
	EnvStatusIncomplete = "incomplete"
)

// EnvListRequest captures inputs for listing environments.
type EnvListRequest struct {
	Sorted bool
}

// EnvListResult returns the computed environment list.
type EnvListResult struct {
	Environments []EnvInfo
}

// EnvListWorkflow computes environment status for listing.
type EnvListWorkflow struct {
	Resolver ports.EnvironmentResolver
	UI       ports.UserInterface
}

// NewEnvListWorkflow constructs an EnvListWorkflow.
func NewEnvListWorkflow(resolver ports.EnvironmentResolver, ui ports.UserInterface) EnvListWorkflow {
	return EnvListWorkflow{Resolver: resolver, UI: ui}
}

// Run executes the env list workflow. Environments that fail to resolve are
// listed as incomplete rather than failing the listing.
func (w EnvListWorkflow) Run(req EnvListRequest) (EnvListResult, error) {
	if w.Resolver == nil {
		return EnvListResult{}, errors.New("environment resolver not configured")
	}
	names := w.Resolver.Names()
	if req.Sorted {
		names = append([]string(nil), names...)
		sort.Strings(names)
	}

	result := EnvListResult{Environments: make([]EnvInfo, 0, len(names))}
	for _, name := range names {
		p, err := w.Resolver.Resolve(name)
		info := describe(name, p)
		if err != nil {
			info.Status = EnvStatusIncomplete
			if w.UI != nil {
				w.UI.Warn(err.Error())
			}
		}
		result.Environments = append(result.Environments, info)
	}

	if w.UI != nil {
		for _, env := range result.Environments {
			w.UI.Block("🌐", env.Name, []ports.KeyValue{
				{Key: "Classification", Value: env.Classification},
				{Key: "Main", Value: env.Main},
				{Key: "Database", Value: env.Database},
				{Key: "Origin", Value: env.Origin},
				{Key: "Container", Value: env.Container},
				{Key: "Status", Value: env.Status},
			})
		}
	}
	return result, nil
}

func describe(name string, p registry.Profile) EnvInfo {
	return EnvInfo{
		Name:           name,
		Classification: string(p.Classification),
		Main:           p.IsMain,
		Database:       p.Database.Name,
		Origin:         p.Database.OriginDatabaseName,
		Container:      p.Storage.Container,
		Status:         EnvStatusReady,
	}
}
