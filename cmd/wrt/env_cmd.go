package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pascalporedda/wrt-cli/internal/envfile"
	"github.com/pascalporedda/wrt-cli/internal/output"
)

func newEnvCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "env [name]",
		Short:   "Print a worktree's WRT_* variables as shell exports",
		GroupID: GroupUtility,
		Args:    cobra.MaximumNArgs(1),
		Long: `Print export lines for the worktree's WRT_* variables.

Without a name, the worktree is resolved from the current directory, so
'eval "$(wrt env)"' inside any worktree loads its port block into the
shell.`,
		Example: `  eval "$(wrt env)"           # Inside a worktree
  eval "$(wrt env feature-x)" # By name`,
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

			for _, kv := range envfile.Vars(alloc) {
				key, value, _ := strings.Cut(kv, "=")
				out.Printf("export %s=%s\n", key, envfile.ShellQuote(value))
			}
			return nil
		},
	}

	return c
}
