// Where: cli/internal/workflows/render.go
// What: Workflow template rendering workflow.
// Why: Write the cluster manifests bound to one environment into a directory.
package workflows

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poruru/envdb/cli/internal/argo"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/ports"
)

// RenderRequest captures inputs for the render workflow.
type RenderRequest struct {
	Env     string
	OutDir  string
	Options argo.RenderOptions
}

// RenderResult lists the written manifests.
type RenderResult struct {
	Files []string
}

// RenderWorkflow renders workflow templates and bundles for an environment.
type RenderWorkflow struct {
	Resolver ports.EnvironmentResolver
	UI       ports.UserInterface
}

// NewRenderWorkflow constructs a RenderWorkflow.
func NewRenderWorkflow(resolver ports.EnvironmentResolver, ui ports.UserInterface) RenderWorkflow {
	return RenderWorkflow{Resolver: resolver, UI: ui}
}

// Run executes the render workflow.
func (w RenderWorkflow) Run(req RenderRequest) (RenderResult, error) {
	if w.Resolver == nil {
		return RenderResult{}, errors.New("environment resolver not configured")
	}
	if strings.TrimSpace(req.OutDir) == "" {
		return RenderResult{}, fmt.Errorf("%w: output directory is required", lifecycle.ErrUsage)
	}
	p, err := w.Resolver.Resolve(req.Env)
	if err != nil {
		return RenderResult{}, err
	}
	files, err := argo.Render(p, req.Options)
	if err != nil {
		return RenderResult{}, err
	}
	written, err := argo.WriteFiles(req.OutDir, files)
	if err != nil {
		return RenderResult{Files: written}, err
	}
	if w.UI != nil {
		rows := make([]ports.KeyValue, 0, len(written))
		for _, path := range written {
			rows = append(rows, ports.KeyValue{Key: "Wrote", Value: path})
		}
		w.UI.Block("🧾", "Workflow templates", rows)
		w.UI.Success(fmt.Sprintf("manifests for %q written to %s", p.Name, req.OutDir))
	}
	return RenderResult{Files: written}, nil
}
