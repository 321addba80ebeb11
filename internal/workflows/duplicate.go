// Where: cli/internal/workflows/duplicate.go
// What: Duplication workflow over the gated pipeline.
// Why: Run origin-to-destination duplication and print each step to the operator.
package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/poruru/envdb/cli/internal/pipeline"
	"github.com/poruru/envdb/cli/internal/ports"
)

// DuplicateRequest captures inputs for the duplicate workflow.
type DuplicateRequest struct {
	From string
	To   string
}

// DuplicateWorkflow drives one pipeline run.
type DuplicateWorkflow struct {
	Pipeline *pipeline.Pipeline
	UI       ports.UserInterface
}

// NewDuplicateWorkflow constructs a DuplicateWorkflow.
func NewDuplicateWorkflow(p *pipeline.Pipeline, ui ports.UserInterface) DuplicateWorkflow {
	return DuplicateWorkflow{Pipeline: p, UI: ui}
}

// Run executes the duplicate workflow. A gate abort is reported as a
// warning and returns a nil error.
func (w DuplicateWorkflow) Run(ctx context.Context, req DuplicateRequest) (pipeline.Outcome, error) {
	if w.Pipeline == nil {
		return pipeline.Outcome{}, errors.New("pipeline not configured")
	}
	run := *w.Pipeline
	if w.UI != nil {
		next := run.OnState
		run.OnState = func(state pipeline.State) {
			w.UI.Info(fmt.Sprintf("→ %s", state))
			if next != nil {
				next(state)
			}
		}
	}

	out, err := run.Run(ctx, req.From, req.To)
	if err != nil {
		return out, err
	}
	if w.UI == nil {
		return out, nil
	}

	rows := []ports.KeyValue{
		{Key: "Origin", Value: req.From},
		{Key: "Destination", Value: req.To},
		{Key: "Artifact", Value: out.Artifact.FilePath},
		{Key: "Restored", Value: out.Restored},
	}
	if out.Storage != nil {
		rows = append(rows, reportRows(*out.Storage)...)
	}
	w.UI.Block("🧪", "Duplicate", rows)
	if out.Aborted() {
		w.UI.Warn(fmt.Sprintf("duplication aborted at %s", out.AbortedAt))
		return out, nil
	}
	w.UI.Success(fmt.Sprintf("%q duplicated into %q", req.From, req.To))
	return out, nil
}
