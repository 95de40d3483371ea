package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAddWorktree(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	wtPath := filepath.Join(filepath.Dir(repoPath), "wt-add")
	if err := AddWorktree(ctx, repoPath, wtPath, "feature-add", "HEAD"); err != nil {
		t.Fatalf("AddWorktree() error = %v", err)
	}

	if _, err := os.Stat(wtPath); err != nil {
		t.Fatalf("worktree dir should exist: %v", err)
	}

	branch, err := outputGit(ctx, wtPath, "branch", "--show-current")
	if err != nil {
		t.Fatal(err)
	}
	if branch != "feature-add" {
		t.Errorf("branch = %q, want feature-add", branch)
	}
	if !HasLocalBranch(ctx, repoPath, "feature-add") {
		t.Error("HasLocalBranch() = false after AddWorktree")
	}
}

func TestAddWorktreeBadRef(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	wtPath := filepath.Join(filepath.Dir(repoPath), "wt-bad")
	err := AddWorktree(ctx, repoPath, wtPath, "feature-bad", "no-such-ref")
	if err == nil {
		t.Fatal("AddWorktree with bad ref should fail")
	}
	if _, statErr := os.Stat(wtPath); statErr == nil {
		t.Error("failed AddWorktree should not leave a directory behind")
	}
}

func TestRemoveWorktreeClean(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	wtPath := filepath.Join(filepath.Dir(repoPath), "wt-clean")
	if err := AddWorktree(ctx, repoPath, wtPath, "feature-clean", "HEAD"); err != nil {
		t.Fatal(err)
	}

	if err := RemoveWorktree(ctx, repoPath, wtPath, false); err != nil {
		t.Fatalf("RemoveWorktree() error = %v", err)
	}
	if _, err := os.Stat(wtPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("worktree directory should be gone")
	}
}

func TestRemoveWorktreeDirty(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	wtPath := filepath.Join(filepath.Dir(repoPath), "wt-dirty")
	if err := AddWorktree(ctx, repoPath, wtPath, "feature-dirty", "HEAD"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(wtPath, "scratch.txt"), []byte("wip\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := RemoveWorktree(ctx, repoPath, wtPath, false)
	if !errors.Is(err, ErrDirtyWorktree) {
		t.Fatalf("RemoveWorktree() error = %v, want ErrDirtyWorktree", err)
	}
	if _, statErr := os.Stat(wtPath); statErr != nil {
		t.Error("dirty worktree must survive an unforced remove")
	}

	// Forced removal discards the changes.
	if err := RemoveWorktree(ctx, repoPath, wtPath, true); err != nil {
		t.Fatalf("forced RemoveWorktree() error = %v", err)
	}
	if _, statErr := os.Stat(wtPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("forced remove should delete the worktree")
	}
}

func TestIsDirty(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	if IsDirty(ctx, repoPath) {
		t.Error("fresh repo should be clean")
	}

	if err := os.WriteFile(filepath.Join(repoPath, "untracked.txt"), []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if !IsDirty(ctx, repoPath) {
		t.Error("untracked file should count as dirty")
	}
}

func TestDeleteBranch(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	if err := runGit(ctx, repoPath, "branch", "doomed"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteBranch(ctx, repoPath, "doomed"); err != nil {
		t.Fatalf("DeleteBranch() error = %v", err)
	}
	if HasLocalBranch(ctx, repoPath, "doomed") {
		t.Error("branch should be gone")
	}
}

func TestPruneWorktrees(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	wtPath := filepath.Join(filepath.Dir(repoPath), "wt-vanish")
	if err := AddWorktree(ctx, repoPath, wtPath, "feature-vanish", "HEAD"); err != nil {
		t.Fatal(err)
	}

	// Simulate an rm -rf outside of git.
	if err := os.RemoveAll(wtPath); err != nil {
		t.Fatal(err)
	}
	if err := PruneWorktrees(ctx, repoPath); err != nil {
		t.Fatalf("PruneWorktrees() error = %v", err)
	}

	paths, err := ListWorktreePaths(ctx, repoPath)
	if err != nil {
		t.Fatalf("ListWorktreePaths() error = %v", err)
	}
	for _, p := range paths {
		if p == wtPath {
			t.Error("pruned worktree still listed")
		}
	}
}

func TestListWorktreePaths(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	wtPath := filepath.Join(filepath.Dir(repoPath), "wt-list")
	if err := AddWorktree(ctx, repoPath, wtPath, "feature-list", "HEAD"); err != nil {
		t.Fatal(err)
	}

	paths, err := ListWorktreePaths(ctx, repoPath)
	if err != nil {
		t.Fatalf("ListWorktreePaths() error = %v", err)
	}
	found := map[string]bool{}
	for _, p := range paths {
		found[p] = true
	}
	if !found[repoPath] || !found[wtPath] {
		t.Errorf("ListWorktreePaths() = %v, want main checkout and worktree", paths)
	}
}

func TestSkipWorktree(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	cfgDir := filepath.Join(repoPath, "supabase")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	rel := filepath.Join("supabase", "config.toml")
	if err := os.WriteFile(filepath.Join(repoPath, rel), []byte("project_id = \"x\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := runGit(ctx, repoPath, "add", rel); err != nil {
		t.Fatal(err)
	}
	if err := runGit(ctx, repoPath, "commit", "-m", "add config"); err != nil {
		t.Fatal(err)
	}

	if err := SkipWorktree(ctx, repoPath, rel); err != nil {
		t.Fatalf("SkipWorktree() error = %v", err)
	}

	// A local edit no longer shows up as dirty.
	if err := os.WriteFile(filepath.Join(repoPath, rel), []byte("project_id = \"y\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if IsDirty(ctx, repoPath) {
		t.Error("skip-worktree file edit should not make the repo dirty")
	}
}
