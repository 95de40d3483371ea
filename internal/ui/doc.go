// Package ui provides terminal UI components for wrt command output.
//
// This package uses the Charm libraries (lipgloss, bubbles, bubbletea) for
// styled terminal output including tables, prompts, and spinners.
//
// # Components
//
//   - [RenderTable]: Aligned, borderless table with bold headers, used by
//     "wrt ls"
//   - [RunSelector]: Fuzzy-search selector over tracked worktrees for
//     commands invoked without a name argument
//   - [Confirm] / [ConfirmDestructive]: y/N prompts, defaulting to no
//   - [WithSpinner]: Progress indication for long-running provisioning steps
//
// # Interactivity
//
// Every interactive component is gated on [Interactive]: when stdin or
// stdout is not a terminal, selectors and prompts are skipped and callers
// fall back to flags or fail with a clear error. Piped output stays free of
// ANSI control sequences from prompts.
package ui
