package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Interactive reports whether both stdin and stdout are terminals, so
// prompts and selectors can safely take over the screen. Scripted and piped
// invocations must never block on a TUI.
func Interactive() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
