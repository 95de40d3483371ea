package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pascalporedda/wrt-cli/internal/config"
	"github.com/pascalporedda/wrt-cli/internal/git"
	"github.com/pascalporedda/wrt-cli/internal/name"
	"github.com/pascalporedda/wrt-cli/internal/state"
	"github.com/pascalporedda/wrt-cli/internal/ui"
)

// excludePatterns are kept out of git status via info/exclude in every repo
// wrt touches.
var excludePatterns = []string{".worktrees/", ".wrt.env", ".wrt.json"}

// requireRepo detects the repository for the current directory, merges the
// per-repo config, and makes sure generated files stay excluded. Every
// command that needs a repo goes through here.
func requireRepo(ctx context.Context) (git.Repo, config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return git.Repo{}, config.Config{}, fmt.Errorf("get working directory: %w", err)
	}

	repo, err := git.DetectRepo(ctx, wd)
	if err != nil {
		return git.Repo{}, config.Config{}, err
	}

	local, err := config.LoadLocal(repo.Root)
	if err != nil {
		return git.Repo{}, config.Config{}, err
	}
	merged := config.Merge(*cfg, local)

	if err := repo.EnsureInfoExclude(excludePatterns...); err != nil {
		return git.Repo{}, config.Config{}, err
	}

	return repo, merged, nil
}

// lookupAllocation resolves the target worktree for commands taking an
// optional name: an explicit name wins, then the current directory, then an
// interactive selector on a terminal.
func lookupAllocation(ctx context.Context, st *state.State, target string) (state.Allocation, error) {
	if target != "" {
		// Registry keys are slugs, so "Fix Login" finds fix-login.
		return st.Get(name.Slugify(target))
	}

	wd, err := os.Getwd()
	if err == nil {
		if a, err := st.ResolveDir(wd); err == nil {
			return a, nil
		}
	}

	if !ui.Interactive() {
		return state.Allocation{}, errors.New("no worktree name given and not inside a tracked worktree")
	}

	result, err := ui.RunSelector(st.Sorted())
	if err != nil {
		return state.Allocation{}, err
	}
	if result.Cancelled || !result.Selected {
		return state.Allocation{}, errors.New("no worktree selected")
	}
	return result.Allocation, nil
}

// loadState reads the registry without taking the lock, for read-only
// commands.
func loadState(repo git.Repo) (*state.State, error) {
	return state.Load(repo.CommonDir)
}
