package main

import (
	"github.com/spf13/cobra"

	"github.com/pascalporedda/wrt-cli/internal/cmd"
	"github.com/pascalporedda/wrt-cli/internal/git"
	"github.com/pascalporedda/wrt-cli/internal/log"
	"github.com/pascalporedda/wrt-cli/internal/state"
	"github.com/pascalporedda/wrt-cli/internal/supa"
)

func newRmCmd() *cobra.Command {
	var (
		force        bool
		deleteBranch bool
	)

	c := &cobra.Command{
		Use:     "rm [name]",
		Short:   "Remove a worktree and free its port block",
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `Remove a worktree and its registry entry, freeing the port block.

Without a name, the worktree is resolved from the current directory or
picked interactively. Dirty worktrees are refused unless --force is given.
The supabase stack of the worktree is stopped first so no containers keep
running against freed ports. The branch survives unless --delete-branch
is given.`,
		Example: `  wrt rm feature-x          # Remove by name
  wrt rm                    # Pick interactively / use current dir
  wrt rm feature-x --force  # Discard uncommitted changes
  wrt rm feature-x --delete-branch`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			l := log.FromContext(ctx)

			repo, conf, err := requireRepo(ctx)
			if err != nil {
				return err
			}

			st, err := loadState(repo)
			if err != nil {
				return err
			}

			target := ""
			if len(args) > 0 {
				target = args[0]
			}
			alloc, err := lookupAllocation(ctx, st, target)
			if err != nil {
				return err
			}

			l.Debug("removing worktree", "slug", alloc.Slug, "path", alloc.Path)

			// Best effort: a missing supabase CLI or an already-stopped stack
			// must not block removal.
			if supa.HasConfig(alloc.Path) {
				if err := cmd.RunContext(ctx, alloc.Path, "supabase", "stop"); err != nil {
					l.Printf("Warning: supabase stop failed: %v\n", err)
				}
			}

			err = state.WithLock(ctx, repo.CommonDir, conf.LockTimeout(), func(st *state.State) error {
				// Re-read under the lock; the allocation may have changed.
				current, err := st.Get(alloc.Slug)
				if err != nil {
					return err
				}
				if err := git.RemoveWorktree(ctx, repo.Root, current.Path, force); err != nil {
					return err
				}
				_, err = st.Remove(current.Slug)
				return err
			})
			if err != nil {
				return err
			}

			if deleteBranch {
				if def := git.DefaultBranch(ctx, repo.Root); alloc.Branch == def {
					l.Printf("Keeping branch %s (repository default)\n", def)
				} else if err := git.DeleteBranch(ctx, repo.Root, alloc.Branch); err != nil {
					l.Printf("Warning: could not delete branch %s: %v\n", alloc.Branch, err)
				}
			}

			l.Printf("Removed worktree %s (block %d freed)\n", alloc.Slug, alloc.Block)
			return nil
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "Remove even with uncommitted changes")
	c.Flags().BoolVar(&deleteBranch, "delete-branch", false, "Also delete the branch")

	return c
}
