package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pascalporedda/wrt-cli/internal/cmd"
	"github.com/pascalporedda/wrt-cli/internal/envfile"
)

func newRunCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "run <name> -- <command> [args...]",
		Short:   "Run a command inside a worktree with its WRT_* environment",
		GroupID: GroupUtility,
		Args:    cobra.MinimumNArgs(1),
		Long: `Run a command in a worktree's directory with its WRT_* variables set.

The command after -- inherits the terminal, so dev servers and interactive
tools work. The exit status of the command is passed through.`,
		Example: `  wrt run feature-x -- pnpm dev
  wrt run feature-x -- supabase status`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()

			dash := c.ArgsLenAtDash()
			if dash < 1 || dash >= len(args) {
				return errors.New("usage: wrt run <name> -- <command> [args...]")
			}
			target := args[dash-1]
			argv := args[dash:]
			if dash != 1 {
				return fmt.Errorf("expected exactly one worktree name before --, got %d", dash)
			}

			repo, _, err := requireRepo(ctx)
			if err != nil {
				return err
			}
			st, err := loadState(repo)
			if err != nil {
				return err
			}
			alloc, err := lookupAllocation(ctx, st, target)
			if err != nil {
				return err
			}

			err = cmd.RunInteractive(ctx, alloc.Path, envfile.Vars(alloc), argv[0], argv[1:]...)

			// Pass the command's exit status through instead of flattening
			// every failure to 1.
			var exitErr *cmd.ExitError
			if errors.As(err, &exitErr) {
				os.Exit(exitErr.Code)
			}
			return err
		},
	}

	return c
}
