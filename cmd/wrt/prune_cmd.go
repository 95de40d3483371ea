package main

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pascalporedda/wrt-cli/internal/git"
	"github.com/pascalporedda/wrt-cli/internal/log"
	"github.com/pascalporedda/wrt-cli/internal/output"
	"github.com/pascalporedda/wrt-cli/internal/state"
)

func newPruneCmd() *cobra.Command {
	var dryRun bool

	c := &cobra.Command{
		Use:     "prune",
		Short:   "Reclaim port blocks of deleted worktrees",
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Drop registry entries whose worktree directory no longer exists.

Worktrees deleted with plain rm keep their port block reserved until
pruned. Surviving allocations keep their blocks; freed blocks are reused
by the next 'wrt new'. Also runs 'git worktree prune' to clean git's own
records.`,
		Example: `  wrt prune
  wrt prune --dry-run`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			repo, conf, err := requireRepo(ctx)
			if err != nil {
				return err
			}

			exists := func(path string) bool {
				_, err := os.Stat(path)
				return err == nil
			}

			if dryRun {
				st, err := loadState(repo)
				if err != nil {
					return err
				}
				removed := st.PruneMissing(exists)
				if len(removed) == 0 {
					out.Println("Nothing to prune.")
					return nil
				}
				for _, slug := range removed {
					out.Printf("Would prune %s\n", slug)
				}
				return nil
			}

			if err := git.PruneWorktrees(ctx, repo.Root); err != nil {
				l.Printf("Warning: git worktree prune failed: %v\n", err)
			}

			gitPaths, err := git.ListWorktreePaths(ctx, repo.Root)
			if err != nil {
				l.Debug("listing worktrees failed", "err", err)
			}

			var removed, untracked []string
			err = state.WithLock(ctx, repo.CommonDir, conf.LockTimeout(), func(st *state.State) error {
				removed = st.PruneMissing(exists)
				untracked = untrackedWorktrees(gitPaths, st, repo.Root)
				return nil
			})
			if err != nil {
				return err
			}

			// Worktrees added with plain git have no port block; flag them so
			// the user knows wrt cannot provision or remove them.
			for _, p := range untracked {
				l.Printf("Not tracked by wrt: %s\n", p)
			}

			if len(removed) == 0 {
				out.Println("Nothing to prune.")
				return nil
			}
			for _, slug := range removed {
				out.Printf("Pruned %s\n", slug)
			}
			return nil
		},
	}

	c.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be pruned without changing anything")

	return c
}

// untrackedWorktrees returns git-registered worktree paths the registry does
// not know about, excluding the main checkout.
func untrackedWorktrees(paths []string, st *state.State, repoRoot string) []string {
	known := make(map[string]bool, len(st.Allocations))
	for _, a := range st.Allocations {
		known[filepath.Clean(a.Path)] = true
	}

	var out []string
	for _, p := range paths {
		p = filepath.Clean(p)
		if p == filepath.Clean(repoRoot) || known[p] {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
