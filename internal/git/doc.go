// Package git provides git operations via shell commands.
//
// All operations use [os/exec.Command] to call the git CLI directly rather than
// using Go git libraries. This approach is simpler, more reliable, and ensures
// compatibility with user configurations (SSH keys, credential helpers, aliases).
//
// # Worktree Operations
//
// Core worktree management:
//
//   - [AddWorktree]: Create a worktree with a new branch
//   - [RemoveWorktree]: Remove a worktree, refusing dirty ones unless forced
//   - [PruneWorktrees]: Drop stale administrative data for deleted checkouts
//   - [ListWorktreePaths]: Enumerate all registered worktree paths
//
// # Repository Operations
//
// Repository and branch queries:
//
//   - [DetectRepo]: Resolve the working copy root and the shared common dir
//   - [DefaultBranch]: Detect main/master branch
//   - [HasLocalBranch], [DeleteBranch]: Branch operations
//   - [Repo.EnsureInfoExclude]: Keep generated files out of git status
//   - [SkipWorktree]: Hide local config patches from the index
package git
