package main

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pascalporedda/wrt-cli/internal/state"
)

func TestUntrackedWorktrees(t *testing.T) {
	t.Parallel()

	root := filepath.Join("/repo")
	st := &state.State{Allocations: map[string]state.Allocation{
		"feature-x": {Slug: "feature-x", Path: filepath.Join(root, ".worktrees", "feature-x")},
	}}

	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "main checkout and tracked worktrees are skipped",
			paths: []string{root, filepath.Join(root, ".worktrees", "feature-x")},
			want:  nil,
		},
		{
			name: "plain git worktrees are reported sorted",
			paths: []string{
				root,
				filepath.Join(root, ".worktrees", "feature-x"),
				"/elsewhere/manual-b",
				"/elsewhere/manual-a",
			},
			want: []string{"/elsewhere/manual-a", "/elsewhere/manual-b"},
		},
		{
			name:  "unclean paths match after cleaning",
			paths: []string{root + "/", filepath.Join(root, ".worktrees", "x", "..", "feature-x")},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := untrackedWorktrees(tt.paths, st, root); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("untrackedWorktrees() = %v, want %v", got, tt.want)
			}
		})
	}
}
