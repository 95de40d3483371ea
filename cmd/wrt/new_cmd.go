package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pascalporedda/wrt-cli/internal/cmd"
	"github.com/pascalporedda/wrt-cli/internal/config"
	"github.com/pascalporedda/wrt-cli/internal/discover"
	"github.com/pascalporedda/wrt-cli/internal/envfile"
	"github.com/pascalporedda/wrt-cli/internal/git"
	"github.com/pascalporedda/wrt-cli/internal/log"
	"github.com/pascalporedda/wrt-cli/internal/name"
	"github.com/pascalporedda/wrt-cli/internal/output"
	"github.com/pascalporedda/wrt-cli/internal/pm"
	"github.com/pascalporedda/wrt-cli/internal/state"
	"github.com/pascalporedda/wrt-cli/internal/supa"
	"github.com/pascalporedda/wrt-cli/internal/ui"
)

// portBlockSize is the number of ports reserved per worktree.
const portBlockSize = 100

func newNewCmd() *cobra.Command {
	var (
		fromRef      string
		branchName   string
		installMode  string
		supabaseMode string
		dbMode       string
		printCD      bool
	)

	c := &cobra.Command{
		Use:     "new <name>",
		Short:   "Create a provisioned worktree",
		GroupID: GroupCore,
		Args:    cobra.ExactArgs(1),
		Long: `Create a new worktree with a reserved port block.

The name is slugified for the directory and registry entry, and doubles as
the branch name unless --branch is given. The worktree gets a block of 100
ports; supabase/config.toml (if present) is patched so its ports and
project_id don't collide with other copies of the repo.`,
		Example: `  wrt new feature-x                  # Branch feature-x from HEAD
  wrt new "Fix Login" --from main    # Slug fix-login, branched from main
  wrt new feature-x --branch feat/x  # Explicit branch name
  wrt new feature-x --supabase never # Skip the supabase stack
  cd "$(wrt new feature-x --cd)"     # Create and jump into it`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			repo, conf, err := requireRepo(ctx)
			if err != nil {
				return err
			}
			if err := applyModeFlags(&conf, installMode, supabaseMode, dbMode); err != nil {
				return err
			}

			rawName := args[0]
			slug := name.Slugify(rawName)

			branch := branchName
			if branch == "" {
				branch, err = name.NormalizeBranch(rawName)
				if err != nil {
					return err
				}
			} else {
				branch, err = name.NormalizeBranch(branch)
				if err != nil {
					return err
				}
			}

			wtPath := filepath.Join(repo.Root, conf.WorktreeDir, slug)

			l.Debug("creating worktree", "slug", slug, "branch", branch, "path", wtPath)

			var alloc state.Allocation
			err = state.WithLock(ctx, repo.CommonDir, conf.LockTimeout(), func(st *state.State) error {
				if _, err := st.Get(slug); err == nil {
					return fmt.Errorf("%w: %q", state.ErrNameCollision, slug)
				}

				block, err := st.AllocateBlock()
				if err != nil {
					return err
				}
				offset := block * portBlockSize

				if err := os.MkdirAll(filepath.Dir(wtPath), 0o755); err != nil {
					return fmt.Errorf("create worktree dir: %w", err)
				}

				// The worktree is created while holding the lock so a git
				// failure leaves no trace: the tentative block reservation is
				// never persisted.
				if err := git.AddWorktree(ctx, repo.Root, wtPath, branch, fromRef); err != nil {
					return err
				}

				patchSupabase(ctx, wtPath, offset, slug, conf)

				alloc = state.Allocation{
					Slug:      slug,
					RawName:   rawName,
					Branch:    branch,
					Path:      wtPath,
					Block:     block,
					Offset:    offset,
					CreatedAt: time.Now().UTC(),
				}
				return st.Add(alloc)
			})
			if err != nil {
				return err
			}

			if err := envfile.Write(alloc); err != nil {
				l.Printf("Warning: %v\n", err)
			}
			if copied, err := envfile.CopyRootEnv(repo.Root, wtPath); err != nil {
				l.Printf("Warning: %v\n", err)
			} else if copied {
				l.Println("Copied .env from main checkout")
			}

			disc, err := discover.Load(repo.Root)
			if err != nil {
				l.Printf("Warning: %v\n", err)
			}

			if err := installDependencies(ctx, wtPath, conf, disc); err != nil {
				l.Printf("Warning: dependency install failed: %v\n", err)
			}
			if err := startSupabase(ctx, wtPath, conf, disc); err != nil {
				l.Printf("Warning: supabase start failed: %v\n", err)
			}
			if err := setupDatabase(ctx, wtPath, alloc, conf, disc); err != nil {
				l.Printf("Warning: database setup failed: %v\n", err)
			}

			if printCD {
				out.Println(wtPath)
				return nil
			}

			l.Printf("Created worktree %s (block %d, ports +%d)\n", slug, alloc.Block, alloc.Offset)
			out.Println(wtPath)
			return nil
		},
	}

	c.Flags().StringVar(&fromRef, "from", "HEAD", "Ref to branch the worktree from")
	c.Flags().StringVar(&branchName, "branch", "", "Branch name (default: normalized worktree name)")
	c.Flags().StringVar(&installMode, "install", "", "Install dependencies: auto, always, or never")
	c.Flags().StringVar(&supabaseMode, "supabase", "", "Start the supabase stack: auto, always, or never")
	c.Flags().StringVar(&dbMode, "db", "", "Set up the database: auto, always, or never")
	c.Flags().BoolVar(&printCD, "cd", false, "Print only the worktree path, for cd \"$(wrt new ... --cd)\"")

	return c
}

// applyModeFlags overrides config modes with command-line flags.
func applyModeFlags(conf *config.Config, install, supabase, db string) error {
	for _, m := range []struct {
		flag   string
		value  string
		target *string
	}{
		{"--install", install, &conf.Install},
		{"--supabase", supabase, &conf.Supabase},
		{"--db", db, &conf.DB},
	} {
		if m.value == "" {
			continue
		}
		if m.value != config.ModeAuto && m.value != config.ModeAlways && m.value != config.ModeNever {
			return fmt.Errorf("invalid %s value %q: must be auto, always, or never", m.flag, m.value)
		}
		*m.target = m.value
	}
	return nil
}

// patchSupabase patches the worktree's supabase config and hides the local
// change from git. Patch failures are warnings: the allocation is still
// committed, the user just has to fix the config by hand.
func patchSupabase(ctx context.Context, wtPath string, offset int, slug string, conf config.Config) {
	l := log.FromContext(ctx)

	if conf.Supabase == config.ModeNever || !supa.HasConfig(wtPath) {
		return
	}

	if err := supa.PatchFile(wtPath, offset, slug); err != nil {
		l.Printf("Warning: supabase config patch failed: %v\n", err)
		return
	}
	if err := git.SkipWorktree(ctx, wtPath, supa.ConfigRelPath); err != nil {
		l.Printf("Warning: %v\n", err)
	}
	l.Printf("Patched %s (+%d ports)\n", supa.ConfigRelPath, offset)
}

// installDependencies runs the project's install command, preferring the
// discovery file over lockfile detection.
func installDependencies(ctx context.Context, wtPath string, conf config.Config, disc *discover.Discovery) error {
	l := log.FromContext(ctx)

	if conf.Install == config.ModeNever {
		return nil
	}

	var install pm.InstallCommand
	if disc != nil && len(disc.PackageManager.InstallCommand) > 0 {
		argv := disc.PackageManager.InstallCommand
		install = pm.InstallCommand{Name: argv[0], Args: argv[1:]}
	} else if detected, ok := pm.DetectInstallCommand(wtPath); ok {
		install = detected
	} else {
		if conf.Install == config.ModeAlways {
			return fmt.Errorf("no package manager detected")
		}
		return nil
	}

	l.Printf("Installing dependencies: %s\n", install.String())
	return cmd.RunInteractive(ctx, wtPath, nil, install.Name, install.Args...)
}

// startSupabase brings up the worktree's supabase stack.
func startSupabase(ctx context.Context, wtPath string, conf config.Config, disc *discover.Discovery) error {
	l := log.FromContext(ctx)

	if conf.Supabase == config.ModeNever {
		return nil
	}
	if !supa.HasConfig(wtPath) {
		if conf.Supabase == config.ModeAlways {
			return fmt.Errorf("no %s found", supa.ConfigRelPath)
		}
		return nil
	}

	argv := []string{"supabase", "start"}
	if disc != nil && len(disc.Supabase.StartCommand) > 0 {
		argv = disc.Supabase.StartCommand
	}

	l.Printf("Starting supabase stack\n")
	return cmd.RunInteractive(ctx, wtPath, nil, argv[0], argv[1:]...)
}

// setupDatabase applies migrations and seeds to the worktree's database.
// Destructive, so it asks first on a terminal and is skipped otherwise
// unless forced with --db always.
func setupDatabase(ctx context.Context, wtPath string, alloc state.Allocation, conf config.Config, disc *discover.Discovery) error {
	l := log.FromContext(ctx)

	if conf.DB == config.ModeNever {
		return nil
	}

	argv := dbResetCommand(wtPath, disc)
	if argv == nil {
		if conf.DB == config.ModeAlways {
			return fmt.Errorf("no database setup command detected")
		}
		return nil
	}

	if conf.DB != config.ModeAlways {
		if !ui.Interactive() {
			l.Println("Skipping database setup (no terminal; use --db always to force)")
			return nil
		}
		result, err := ui.Confirm(fmt.Sprintf("Set up the database now (%v)?", argv))
		if err != nil {
			return err
		}
		if result.Cancelled || !result.Confirmed {
			l.Println("Skipped database setup")
			return nil
		}
	}

	return cmd.RunInteractive(ctx, wtPath, envfile.Vars(alloc), argv[0], argv[1:]...)
}

// dbResetCommand picks the command that brings a fresh database to a usable
// state.
func dbResetCommand(wtPath string, disc *discover.Discovery) []string {
	if disc != nil && disc.Database.Detected && len(disc.Database.ResetCommand) > 0 {
		return disc.Database.ResetCommand
	}
	if pm.HasSupabaseMigrations(wtPath) {
		return []string{"supabase", "db", "reset"}
	}
	return nil
}
