// Package state persists the worktree allocation registry.
//
// The registry lives at <git-common-dir>/.wrt/state.json so it is shared by
// every worktree of a repository and survives the removal of any one of them.
// All read-modify-write cycles go through WithLock, which serializes access
// across processes with a file lock on a sibling lock file.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	dirName  = ".wrt"
	fileName = "state.json"
	lockName = "state.lock"

	currentVersion = 1

	// maxBlocks bounds the first-fit search. Block 0 is reserved for the
	// main working copy and is never allocated.
	maxBlocks = 10000
)

var (
	// ErrStateCorrupt indicates an unparseable state file. It is surfaced to
	// the caller, never silently reset to an empty state.
	ErrStateCorrupt = errors.New("state file corrupt")

	// ErrNameCollision indicates the slug is already allocated.
	ErrNameCollision = errors.New("worktree already exists")

	// ErrNotFound indicates the slug has no allocation.
	ErrNotFound = errors.New("unknown worktree")

	// ErrNotInsideWorktree indicates the directory is not inside any tracked
	// worktree.
	ErrNotInsideWorktree = errors.New("not inside a tracked worktree")

	// ErrNoFreeBlocks indicates the block space is exhausted.
	ErrNoFreeBlocks = errors.New("no free port blocks")
)

// Allocation records the port block reserved for one live worktree.
type Allocation struct {
	Slug      string    `json:"name"`
	RawName   string    `json:"rawName,omitempty"`
	Branch    string    `json:"branch"`
	Path      string    `json:"path"`
	Block     int       `json:"block"`
	Offset    int       `json:"offset"`
	CreatedAt time.Time `json:"createdAt"`
}

// State is the persisted registry of all allocations for one repository.
type State struct {
	Version     int                   `json:"version"`
	Allocations map[string]Allocation `json:"allocations"`
}

// Dir returns the registry directory under the git common dir.
func Dir(commonDir string) string {
	return filepath.Join(commonDir, dirName)
}

// Path returns the state file path.
func Path(commonDir string) string {
	return filepath.Join(commonDir, dirName, fileName)
}

// LockPath returns the lock file path, a sibling of the state file.
func LockPath(commonDir string) string {
	return filepath.Join(commonDir, dirName, lockName)
}

// Load reads the registry. A missing file yields an empty state; a file that
// fails to parse yields ErrStateCorrupt.
func Load(commonDir string) (*State, error) {
	path := Path(commonDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{Version: currentVersion, Allocations: map[string]Allocation{}}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrStateCorrupt, path, err)
	}

	if st.Version == 0 {
		st.Version = currentVersion
	}
	if st.Allocations == nil {
		st.Allocations = map[string]Allocation{}
	}
	return &st, nil
}

// Persist writes the registry atomically: marshal, write to a temp file in
// the same directory, then rename over the target. A reader never observes a
// partially written state.
func (s *State) Persist(commonDir string) error {
	if err := os.MkdirAll(Dir(commonDir), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data = append(data, '\n')

	path := Path(commonDir)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// AllocateBlock returns the smallest positive block not currently allocated.
// Removing block 3 from {1,2,3,4} and allocating again yields 3, not 5.
func (s *State) AllocateBlock() (int, error) {
	used := make(map[int]bool, len(s.Allocations))
	for _, a := range s.Allocations {
		used[a.Block] = true
	}
	for b := 1; b < maxBlocks; b++ {
		if !used[b] {
			return b, nil
		}
	}
	return 0, ErrNoFreeBlocks
}

// Add inserts an allocation. Re-creating under an existing slug is a
// conflict, not an overwrite.
func (s *State) Add(a Allocation) error {
	if _, ok := s.Allocations[a.Slug]; ok {
		return fmt.Errorf("%w: %q", ErrNameCollision, a.Slug)
	}
	s.Allocations[a.Slug] = a
	return nil
}

// Remove deletes the allocation for slug and returns it.
func (s *State) Remove(slug string) (Allocation, error) {
	a, ok := s.Allocations[slug]
	if !ok {
		return Allocation{}, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}
	delete(s.Allocations, slug)
	return a, nil
}

// Get looks up the allocation for slug.
func (s *State) Get(slug string) (Allocation, error) {
	a, ok := s.Allocations[slug]
	if !ok {
		return Allocation{}, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}
	return a, nil
}

// PruneMissing drops every allocation whose path fails existsFn and returns
// the removed slugs. Surviving allocations keep their blocks.
func (s *State) PruneMissing(existsFn func(path string) bool) []string {
	var removed []string
	for slug, a := range s.Allocations {
		if !existsFn(a.Path) {
			delete(s.Allocations, slug)
			removed = append(removed, slug)
		}
	}
	sort.Strings(removed)
	return removed
}

// Sorted returns all allocations ordered by slug.
func (s *State) Sorted() []Allocation {
	out := make([]Allocation, 0, len(s.Allocations))
	for _, a := range s.Allocations {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// ResolveDir finds the allocation whose path contains dir. Ties go to the
// deepest match. Returns ErrNotInsideWorktree if dir is outside every
// tracked worktree.
func (s *State) ResolveDir(dir string) (Allocation, error) {
	dir = filepath.Clean(dir)

	var best Allocation
	found := false
	for _, a := range s.Allocations {
		root := filepath.Clean(a.Path)
		if dir != root && !strings.HasPrefix(dir, root+string(filepath.Separator)) {
			continue
		}
		if !found || len(root) > len(best.Path) {
			best = a
			found = true
		}
	}
	if !found {
		return Allocation{}, fmt.Errorf("%w: %s", ErrNotInsideWorktree, dir)
	}
	return best, nil
}
