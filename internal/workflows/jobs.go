// Where: cli/internal/workflows/jobs.go
// What: Cluster job entrypoints for the create-db and drop-db templates.
// Why: Validate invocation parameters before resolving the bound environment.
package workflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/poruru/envdb/cli/internal/argo"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/ports"
)

// JobRequest captures one template invocation.
type JobRequest struct {
	Template string
	Env      string
	Params   map[string]string
}

// JobResult reports the operation a job performed.
type JobResult struct {
	Template string
	Env      string
	Database string
	DryRun   bool
	Done     bool
}

// JobWorkflow runs a workflow template inside the cluster.
type JobWorkflow struct {
	Create CreateWorkflow
	Drop   DropWorkflow
}

// NewJobWorkflow constructs a JobWorkflow.
func NewJobWorkflow(resolver ports.EnvironmentResolver, database ports.DatabaseLifecycle, ui ports.UserInterface) JobWorkflow {
	return JobWorkflow{
		Create: NewCreateWorkflow(resolver, database, ui),
		Drop:   NewDropWorkflow(resolver, database, ui),
	}
}

// Run executes the job selected by req.Template.
func (w JobWorkflow) Run(ctx context.Context, req JobRequest) (JobResult, error) {
	result := JobResult{Template: req.Template, Env: req.Env}
	if strings.TrimSpace(req.Env) == "" {
		return result, fmt.Errorf("%w: job has no bound environment", lifecycle.ErrUsage)
	}
	switch req.Template {
	case argo.TemplateCreateDB:
		if err := argo.ValidateParams(argo.TemplateCreateDB, req.Params); err != nil {
			return result, err
		}
		created, err := w.Create.Run(ctx, CreateRequest{Env: req.Env})
		result.Database = created.Database
		if err != nil {
			return result, err
		}
		result.Done = true
		return result, nil
	case argo.TemplateDropDB:
		opts, err := argo.ParseDropParams(req.Params)
		if err != nil {
			return result, err
		}
		dropped, err := w.Drop.Run(ctx, DropRequest{
			Env:       req.Env,
			Options:   opts,
			ApplyHint: fmt.Sprintf("submit %s with %s=false to drop it", argo.TemplateDropDB, argo.ParamDryRun),
		})
		result.Database = dropped.Database
		result.DryRun = dropped.DryRun
		if err != nil {
			return result, err
		}
		result.Done = dropped.Dropped
		return result, nil
	default:
		return result, fmt.Errorf("%w: unknown workflow template %q", lifecycle.ErrUsage, req.Template)
	}
}
