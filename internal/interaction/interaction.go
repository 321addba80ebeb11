// Where: cli/internal/interaction/interaction.go
// What: Interactive primitives for confirmations and TTY detection.
// Why: Keep operator checkpoints out of command handlers and testable without a terminal.
package interaction

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompter asks the operator for decisions.
type Prompter interface {
	Confirm(title, description string) (bool, error)
}

// IsTerminal reports whether the file refers to a terminal device.
var IsTerminal = func(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PromptYesNoWithIO prints a confirmation prompt and returns true for yes.
// End of input counts as no. A *bufio.Reader is used as is so buffered
// answers survive across prompts.
func PromptYesNoWithIO(in io.Reader, out io.Writer, message string) (bool, error) {
	reader, ok := in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(in)
	}
	fmt.Fprintf(out, "%s [y/N]: ", message)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	trimmed := strings.TrimSpace(strings.ToLower(line))
	return trimmed == "y" || trimmed == "yes", nil
}

// LinePrompter is the plain-text Prompter used when stdin is not a terminal.
// Successive prompts share one buffered reader over In.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewLinePrompter returns a LinePrompter reading answers from in.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{In: in, Out: out}
}

func (p *LinePrompter) Confirm(title, description string) (bool, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	message := title
	if description != "" {
		message = description + "\n" + title
	}
	return PromptYesNoWithIO(p.reader, p.Out, message)
}
