// Where: cli/internal/pipeline/gate.go
// What: Operator checkpoints between pipeline halves.
// Why: Require an explicit decision before crossing credential or network contexts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/interaction"
)

// GateRequest describes the checkpoint the operator is asked to pass.
type GateRequest struct {
	State       State
	Origin      string
	Destination string
	Title       string
	Description string
}

// Gate decides whether the pipeline proceeds past a checkpoint.
// Returning Abort is a clean stop, not an error.
type Gate interface {
	Decide(ctx context.Context, req GateRequest) (lifecycle.Decision, error)
}

// PromptGate asks the operator through a Prompter.
type PromptGate struct {
	Prompter interaction.Prompter
}

func (g PromptGate) Decide(ctx context.Context, req GateRequest) (lifecycle.Decision, error) {
	if g.Prompter == nil {
		return lifecycle.Abort, errors.New("prompter not configured")
	}
	if err := ctx.Err(); err != nil {
		return lifecycle.Abort, err
	}
	ok, err := g.Prompter.Confirm(req.Title, req.Description)
	if err != nil {
		return lifecycle.Abort, fmt.Errorf("gate %s: %w", req.State, err)
	}
	if ok {
		return lifecycle.Proceed, nil
	}
	return lifecycle.Abort, nil
}

// FixedGate returns the same decision at every checkpoint.
type FixedGate lifecycle.Decision

func (g FixedGate) Decide(context.Context, GateRequest) (lifecycle.Decision, error) {
	return lifecycle.Decision(g), nil
}

// ScriptedGate replays decisions in order and records each request.
// Running out of decisions aborts.
type ScriptedGate struct {
	mu        sync.Mutex
	Decisions []lifecycle.Decision
	Requests  []GateRequest
}

func (g *ScriptedGate) Decide(_ context.Context, req GateRequest) (lifecycle.Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if len(g.Decisions) == 0 {
		return lifecycle.Abort, nil
	}
	next := g.Decisions[0]
	g.Decisions = g.Decisions[1:]
	return next, nil
}
