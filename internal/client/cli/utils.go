package cli

import (
	"os"

	"golang.org/x/term"
)

// isInteractive reports whether f is a terminal. Piped input gets no prompt.
func isInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
