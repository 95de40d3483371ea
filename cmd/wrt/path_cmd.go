package main

import (
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/pascalporedda/wrt-cli/internal/log"
	"github.com/pascalporedda/wrt-cli/internal/output"
)

func newPathCmd() *cobra.Command {
	var copyToClipboard bool

	c := &cobra.Command{
		Use:     "path [name]",
		Short:   "Print a worktree's path",
		GroupID: GroupUtility,
		Args:    cobra.MaximumNArgs(1),
		Long: `Print the absolute path of a tracked worktree.

Prints only the path, so it composes with cd and scripts.`,
		Example: `  cd "$(wrt path feature-x)"
  wrt path feature-x --copy`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			out := output.FromContext(ctx)

			repo, _, err := requireRepo(ctx)
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

			if copyToClipboard {
				if err := clipboard.WriteAll(alloc.Path); err != nil {
					log.FromContext(ctx).Printf("Warning: clipboard unavailable: %v\n", err)
				}
			}

			out.Println(alloc.Path)
			return nil
		},
	}

	c.Flags().BoolVarP(&copyToClipboard, "copy", "c", false, "Also copy the path to the clipboard")

	return c
}
