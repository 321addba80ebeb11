// Where: cli/internal/interaction/huh.go
// What: Terminal prompts using the huh library.
// Why: Provide keyboard-driven confirmations on a TTY.
package interaction

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// HuhPrompter implements Prompter using the huh TUI library.
type HuhPrompter struct{}

var runConfirm = func(confirm *huh.Confirm) error {
	return confirm.Run()
}

// Confirm returns false when the operator declines or aborts with ctrl+c.
func (p HuhPrompter) Confirm(title, description string) (bool, error) {
	var accepted bool
	confirm := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&accepted)
	if err := runConfirm(confirm); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return accepted, nil
}
