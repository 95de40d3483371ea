package main

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pascalporedda/wrt-cli/internal/git"
	"github.com/pascalporedda/wrt-cli/internal/output"
	"github.com/pascalporedda/wrt-cli/internal/ui"
)

// worktreeDisplay holds one allocation for JSON output.
type worktreeDisplay struct {
	Name      string    `json:"name"`
	Branch    string    `json:"branch"`
	Path      string    `json:"path"`
	Block     int       `json:"block"`
	Offset    int       `json:"offset"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func newLsCmd() *cobra.Command {
	var jsonOutput bool

	c := &cobra.Command{
		Use:     "ls",
		Short:   "List tracked worktrees",
		Aliases: []string{"list"},
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `List every tracked worktree with its port block and status.

Status is "clean", "dirty" (uncommitted changes), or "missing" (directory
deleted outside of wrt; run "wrt prune" to reclaim the block).`,
		Example: `  wrt ls
  wrt ls --json`,
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

			display := make([]worktreeDisplay, 0, len(st.Allocations))
			for _, a := range st.Sorted() {
				status := "clean"
				if _, err := os.Stat(a.Path); err != nil {
					status = "missing"
				} else if git.IsDirty(ctx, a.Path) {
					status = "dirty"
				}
				display = append(display, worktreeDisplay{
					Name:      a.Slug,
					Branch:    a.Branch,
					Path:      a.Path,
					Block:     a.Block,
					Offset:    a.Offset,
					Status:    status,
					CreatedAt: a.CreatedAt,
				})
			}

			if jsonOutput {
				return out.JSON(display)
			}

			if len(display) == 0 {
				out.Println("No worktrees. Create one with 'wrt new <name>'.")
				return nil
			}

			rows := make([][]string, 0, len(display))
			for _, d := range display {
				rows = append(rows, []string{
					d.Name,
					strconv.Itoa(d.Block),
					"+" + strconv.Itoa(d.Offset),
					d.Status,
					d.Branch,
					d.Path,
				})
			}
			out.Print(ui.RenderTable(
				[]string{"NAME", "BLOCK", "PORTS", "STATUS", "BRANCH", "PATH"},
				rows,
			))
			return nil
		},
	}

	c.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return c
}
