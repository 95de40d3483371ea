// Package cmd provides helpers for executing shell commands with proper error handling.
//
// This package wraps [os/exec.Cmd] to capture stderr and include it in error
// messages, making command failures more informative for users. Failures are
// wrapped in [ErrExternalTool] so callers can tell tool failures apart from
// wrt's own errors.
//
// # Usage
//
//	if err := cmd.RunContext(ctx, worktreePath, "git", "status"); err != nil {
//	    // err contains stderr output if available
//	    return fmt.Errorf("git failed: %w", err)
//	}
//
//	// For commands that return output:
//	out, err := cmd.OutputContext(ctx, repoRoot, "git", "rev-parse", "--git-common-dir")
//	if err != nil {
//	    // err contains stderr output
//	}
//
// # Design Notes
//
// wrt shells out to the git, supabase, and codex CLIs rather than using Go
// libraries. This approach is simpler, more reliable, and ensures
// compatibility with user configurations (SSH keys, credential helpers,
// docker contexts, etc.).
package cmd
