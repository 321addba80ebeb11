// Where: cli/internal/app/confirm.go
// What: Prompter and gate selection for destructive commands.
// Why: Ask on a terminal, honor --yes, and refuse to guess in unattended runs.
package app

import (
	"fmt"
	"os"

	"github.com/poruru/envdb/cli/internal/constants"
	"github.com/poruru/envdb/cli/internal/domain/lifecycle"
	"github.com/poruru/envdb/cli/internal/interaction"
	"github.com/poruru/envdb/cli/internal/pipeline"
	"github.com/poruru/envdb/cli/internal/ports"
)

// prompter returns the operator prompter, or nil when nobody can answer.
// ENVDB_INTERACTIVE overrides terminal detection.
func (rt *runtime) prompter() interaction.Prompter {
	if rt.deps.Prompter != nil {
		return rt.deps.Prompter
	}
	enabled, explicit := rt.settings.InteractiveOverride()
	switch {
	case explicit && !enabled:
		return nil
	case interaction.IsTerminal(os.Stdin) && rt.deps.In == os.Stdin:
		return interaction.HuhPrompter{}
	case explicit && enabled:
		return interaction.NewLinePrompter(rt.deps.In, rt.deps.ErrOut)
	}
	return nil
}

func errConfirmationRequired(command string) error {
	return fmt.Errorf("%w: %s needs confirmation; rerun with --yes, from a terminal, or with %s=true",
		lifecycle.ErrUsage, command, constants.EnvInteractive)
}

// confirmer resolves the confirmation source for a single-prompt command.
func (rt *runtime) confirmer(command string, yes bool) (ports.Confirmer, error) {
	if yes {
		return ports.AutoConfirm{}, nil
	}
	p := rt.prompter()
	if p == nil {
		return nil, errConfirmationRequired(command)
	}
	return p, nil
}

// gate resolves the decision source for pipeline checkpoints.
func (rt *runtime) gate(yes bool) (pipeline.Gate, error) {
	if yes {
		return pipeline.FixedGate(lifecycle.Proceed), nil
	}
	p := rt.prompter()
	if p == nil {
		return nil, errConfirmationRequired("duplicate")
	}
	return pipeline.PromptGate{Prompter: p}, nil
}
