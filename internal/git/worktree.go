package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrDirtyWorktree indicates a worktree has uncommitted changes and removal
// was not forced.
var ErrDirtyWorktree = errors.New("worktree has uncommitted changes")

// AddWorktree creates a new worktree at path with a new branch cut from
// fromRef.
func AddWorktree(ctx context.Context, repoRoot, path, branch, fromRef string) error {
	return runGit(ctx, repoRoot, "worktree", "add", "-b", branch, path, fromRef)
}

// RemoveWorktree removes the worktree at path. Without force, a dirty
// worktree fails with ErrDirtyWorktree before git is asked to remove
// anything.
func RemoveWorktree(ctx context.Context, repoRoot, path string, force bool) error {
	if !force && IsDirty(ctx, path) {
		return fmt.Errorf("%w: %s (use --force to discard)", ErrDirtyWorktree, path)
	}

	args := []string{"worktree", "remove", path}
	if force {
		args = []string{"worktree", "remove", "--force", path}
	}
	return runGit(ctx, repoRoot, args...)
}

// PruneWorktrees drops stale worktree administrative data for checkouts whose
// directories no longer exist.
func PruneWorktrees(ctx context.Context, repoRoot string) error {
	return runGit(ctx, repoRoot, "worktree", "prune")
}

// IsDirty reports whether the worktree at path has uncommitted changes,
// including untracked files. Errors count as clean so a broken checkout can
// still be removed.
func IsDirty(ctx context.Context, path string) bool {
	out, err := outputGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return false
	}
	return out != ""
}

// DeleteBranch force-deletes a local branch.
func DeleteBranch(ctx context.Context, repoRoot, branch string) error {
	return runGit(ctx, repoRoot, "branch", "-D", branch)
}

// HasLocalBranch reports whether branch exists locally.
func HasLocalBranch(ctx context.Context, repoRoot, branch string) bool {
	return runGit(ctx, repoRoot, "rev-parse", "--verify", "refs/heads/"+branch) == nil
}

// SkipWorktree marks relPath inside the worktree with the skip-worktree bit
// so local modifications (the patched supabase config) never show up in git
// status or get committed by accident.
func SkipWorktree(ctx context.Context, worktreePath, relPath string) error {
	return runGit(ctx, worktreePath, "update-index", "--skip-worktree", filepath.ToSlash(relPath))
}

// ListWorktreePaths returns the paths of all worktrees registered with the
// repository, including the main checkout.
func ListWorktreePaths(ctx context.Context, repoRoot string) ([]string, error) {
	out, err := outputGit(ctx, repoRoot, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "worktree "); ok {
			paths = append(paths, rest)
		}
	}
	return paths, nil
}
