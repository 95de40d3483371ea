package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pascalporedda/wrt-cli/internal/cmd"
	"github.com/pascalporedda/wrt-cli/internal/discover"
	"github.com/pascalporedda/wrt-cli/internal/envfile"
	"github.com/pascalporedda/wrt-cli/internal/log"
	"github.com/pascalporedda/wrt-cli/internal/output"
	"github.com/pascalporedda/wrt-cli/internal/pm"
	"github.com/pascalporedda/wrt-cli/internal/state"
	"github.com/pascalporedda/wrt-cli/internal/ui"
)

func newDBCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "db",
		Short:   "Run database commands inside a worktree",
		GroupID: GroupUtility,
		Long: `Run the repository's database commands inside a worktree.

Commands come from .wrt.json (written by 'wrt init'); without one, 'reset'
falls back to 'supabase db reset' when migrations or a seed file exist.
All commands run in the worktree's directory with its WRT_* variables set,
so a shifted supabase stack is targeted correctly.`,
	}

	c.AddCommand(newDBResetCmd())
	c.AddCommand(newDBSeedCmd())
	c.AddCommand(newDBMigrateCmd())

	return c
}

func newDBResetCmd() *cobra.Command {
	var (
		yes       bool
		printOnly bool
	)

	c := &cobra.Command{
		Use:   "reset [name]",
		Short: "Reset the worktree's database",
		Args:  cobra.MaximumNArgs(1),
		Example: `  wrt db reset             # Inside a worktree, asks first
  wrt db reset feature-x --yes`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			l := log.FromContext(ctx)

			alloc, argv, err := resolveDBCommand(c, args, "reset")
			if err != nil {
				return err
			}
			if printOnly {
				output.FromContext(ctx).Println(strings.Join(argv, " "))
				return nil
			}

			if !yes {
				if !ui.Interactive() {
					return fmt.Errorf("refusing to reset %q without --yes in a non-interactive session", alloc.Slug)
				}
				res, err := ui.ConfirmDestructive(
					fmt.Sprintf("Reset the database of %q?", alloc.Slug),
					"This discards all data in the worktree's database.")
				if err != nil {
					return err
				}
				if !res.Confirmed {
					l.Println("Aborted.")
					return nil
				}
			}

			return cmd.RunInteractive(ctx, alloc.Path, envfile.Vars(alloc), argv[0], argv[1:]...)
		},
	}

	c.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	c.Flags().BoolVar(&printOnly, "print", false, "Print the command instead of running it")

	return c
}

func newDBSeedCmd() *cobra.Command {
	var printOnly bool

	c := &cobra.Command{
		Use:     "seed [name]",
		Short:   "Seed the worktree's database",
		Args:    cobra.MaximumNArgs(1),
		Example: `  wrt db seed feature-x`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()

			alloc, argv, err := resolveDBCommand(c, args, "seed")
			if err != nil {
				return err
			}
			if printOnly {
				output.FromContext(ctx).Println(strings.Join(argv, " "))
				return nil
			}
			return cmd.RunInteractive(ctx, alloc.Path, envfile.Vars(alloc), argv[0], argv[1:]...)
		},
	}

	c.Flags().BoolVar(&printOnly, "print", false, "Print the command instead of running it")

	return c
}

func newDBMigrateCmd() *cobra.Command {
	var printOnly bool

	c := &cobra.Command{
		Use:     "migrate [name]",
		Short:   "Apply migrations in the worktree",
		Args:    cobra.MaximumNArgs(1),
		Example: `  wrt db migrate feature-x`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()

			alloc, argv, err := resolveDBCommand(c, args, "migrate")
			if err != nil {
				return err
			}
			if printOnly {
				output.FromContext(ctx).Println(strings.Join(argv, " "))
				return nil
			}
			return cmd.RunInteractive(ctx, alloc.Path, envfile.Vars(alloc), argv[0], argv[1:]...)
		},
	}

	c.Flags().BoolVar(&printOnly, "print", false, "Print the command instead of running it")

	return c
}

// resolveDBCommand picks the target worktree and the command to run for a db
// operation, preferring .wrt.json over heuristics.
func resolveDBCommand(c *cobra.Command, args []string, op string) (alloc state.Allocation, argv []string, err error) {
	ctx := c.Context()

	repo, _, err := requireRepo(ctx)
	if err != nil {
		return alloc, nil, err
	}
	st, err := loadState(repo)
	if err != nil {
		return alloc, nil, err
	}

	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	alloc, err = lookupAllocation(ctx, st, target)
	if err != nil {
		return alloc, nil, err
	}

	kind := "database"
	disc, err := discover.Load(repo.Root)
	if err != nil {
		log.FromContext(ctx).Printf("Warning: %v\n", err)
	} else if disc != nil && disc.Database.Detected {
		if disc.Database.Kind != "" {
			kind = disc.Database.Kind
		}
		switch op {
		case "reset":
			argv = disc.Database.ResetCommand
		case "seed":
			argv = disc.Database.SeedCommand
		case "migrate":
			argv = disc.Database.MigrateCommand
		}
	}

	if len(argv) == 0 && op == "reset" && pm.HasSupabaseMigrations(alloc.Path) {
		argv = []string{"supabase", "db", "reset"}
	}
	if len(argv) == 0 {
		return alloc, nil, fmt.Errorf("%s: no %s command known; run 'wrt init' to generate %s", kind, op, discover.FileName)
	}
	return alloc, argv, nil
}
