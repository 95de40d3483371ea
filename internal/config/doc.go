// Package config handles loading and validation of wrt configuration.
//
// Configuration is read from ~/.config/wrt/config.toml, with per-repo
// overrides in a .wrt.toml at the repository root.
//
// # Configuration Sources (highest priority first)
//
//   - Command-line flags (--install, --supabase, --db)
//   - .wrt.toml in the repository root
//   - ~/.config/wrt/config.toml
//   - Default values
//
// # Key Settings
//
//   - worktree_dir: Directory under the repo root for provisioned worktrees
//     (default ".worktrees"; must be relative)
//   - install / supabase / db: Provisioning step modes, each one of "auto",
//     "always", or "never" (default "auto")
//   - lock_timeout_seconds: How long to wait for the allocation registry lock
//     before giving up (default 10)
//
// # Example
//
//	worktree_dir = ".worktrees"
//	install = "auto"
//	supabase = "never"
//	db = "auto"
//	lock_timeout_seconds = 30
package config
