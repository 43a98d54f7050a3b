package payouts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

var (
	ErrNotTerminal = errors.New("Standard input is not a terminal; use -y to confirm non-interactively")
)

// Confirmer asks the operator a yes/no question
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// TerminalConfirmer prompts on Out and reads the answer from In. Anything
// other than y/Y is a no.
type TerminalConfirmer struct {
	In  io.Reader
	Out io.Writer

	// Reports whether In is attached to a terminal
	IsTerminal func() bool
}

func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{
		In:  os.Stdin,
		Out: os.Stdout,
		IsTerminal: func() bool {
			return terminal.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

func (c *TerminalConfirmer) Confirm(prompt string) (bool, error) {

	// Refuse to read a piped or closed stdin as an answer
	if c.IsTerminal != nil && !c.IsTerminal() {
		return false, ErrNotTerminal
	}

	fmt.Fprint(c.Out, prompt)

	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, "Unable to read answer")
	}

	return strings.ToLower(strings.TrimSpace(line)) == "y", nil
}
