// Package envfile writes the per-worktree .wrt.env file and exposes the
// WRT_* variables describing an allocation.
package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pascalporedda/wrt-cli/internal/state"
)

// FileName is the env file written into each worktree root.
const FileName = ".wrt.env"

// Vars returns the WRT_* variables for an allocation as KEY=value pairs, in
// stable order.
func Vars(a state.Allocation) []string {
	name := a.RawName
	if name == "" {
		name = a.Slug
	}
	return []string{
		"WRT_NAME=" + name,
		"WRT_SLUG=" + a.Slug,
		"WRT_BRANCH=" + a.Branch,
		"WRT_PORT_BLOCK=" + strconv.Itoa(a.Block),
		"WRT_PORT_OFFSET=" + strconv.Itoa(a.Offset),
		"WRT_PATH=" + a.Path,
	}
}

// Write creates the .wrt.env file in the worktree root with export lines for
// every WRT_* variable, shell-quoted so it can be sourced directly.
func Write(a state.Allocation) error {
	var b strings.Builder
	b.WriteString("# generated by wrt, do not edit\n")
	for _, kv := range Vars(a) {
		key, value, _ := strings.Cut(kv, "=")
		fmt.Fprintf(&b, "export %s=%s\n", key, ShellQuote(value))
	}

	path := filepath.Join(a.Path, FileName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", FileName, err)
	}
	return nil
}

// CopyRootEnv copies the main checkout's .env into the worktree when the
// worktree doesn't have one yet. Returns true when a copy happened.
func CopyRootEnv(repoRoot, worktreeRoot string) (bool, error) {
	src := filepath.Join(repoRoot, ".env")
	dst := filepath.Join(worktreeRoot, ".env")

	if _, err := os.Stat(dst); err == nil {
		return false, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read root .env: %w", err)
	}

	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return false, fmt.Errorf("copy .env: %w", err)
	}
	return true, nil
}

// ShellQuote quotes s for POSIX shells.
func ShellQuote(s string) string {
	// Single quotes preserve everything literally except single quotes themselves.
	// To include a single quote, we end the quoted string, add an escaped quote, and restart.
	// e.g., "it's" becomes 'it'\''s'
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
