package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pascalporedda/wrt-cli/internal/discover"
	"github.com/pascalporedda/wrt-cli/internal/log"
	"github.com/pascalporedda/wrt-cli/internal/output"
	"github.com/pascalporedda/wrt-cli/internal/ui"
)

func newInitCmd() *cobra.Command {
	var (
		force       bool
		printPrompt bool
		model       string
	)

	c := &cobra.Command{
		Use:     "init",
		Short:   "Survey the repository and write .wrt.json",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		Long: `Survey the repository with codex and write the result to .wrt.json.

The discovery file records the package manager, runnable services, database
commands, and supabase setup. 'wrt new' and 'wrt db' use it to provision
worktrees without re-detecting anything.`,
		Example: `  wrt init                 # Survey and write .wrt.json
  wrt init --force         # Overwrite an existing .wrt.json
  wrt init --print         # Show the survey prompt, don't run codex
  wrt init --model o3      # Pick the codex model`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			if printPrompt {
				out.Print(discover.Prompt())
				return nil
			}

			repo, _, err := requireRepo(ctx)
			if err != nil {
				return err
			}

			if _, err := os.Stat(discover.Path(repo.Root)); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", discover.FileName)
			}

			l.Println("Surveying repository with codex (this can take a minute)")
			var raw []byte
			var disc *discover.Discovery
			err = ui.WithSpinner("Running discovery...", func() error {
				raw, disc, err = discover.Run(ctx, repo.Root, model)
				return err
			})
			if err != nil {
				return err
			}

			if err := discover.Write(repo.Root, raw); err != nil {
				return err
			}

			l.Printf("Wrote %s\n", discover.FileName)
			if disc.PackageManager.Name != "" {
				l.Printf("  package manager: %s\n", disc.PackageManager.Name)
			}
			if len(disc.Services) > 0 {
				l.Printf("  services: %d\n", len(disc.Services))
			}
			if disc.Supabase.Detected {
				l.Println("  supabase: detected")
			}
			if disc.Database.Detected {
				l.Printf("  database: %s\n", disc.Database.Kind)
			}
			return nil
		},
	}

	c.Flags().BoolVar(&force, "force", false, "Overwrite an existing .wrt.json")
	c.Flags().BoolVar(&printPrompt, "print", false, "Print the discovery prompt instead of running codex")
	c.Flags().StringVar(&model, "model", "", "Codex model to use")

	return c
}
