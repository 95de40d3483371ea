package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Repo describes the repository wrt operates on. Root is the working copy
// the command runs in; CommonDir is the shared .git directory, identical for
// the main checkout and all of its linked worktrees.
type Repo struct {
	Root      string
	CommonDir string
}

// DetectRepo resolves the repository for dir. The common dir is reported by
// git relative to the working directory for the main checkout, so it is
// anchored to dir before being cleaned.
func DetectRepo(ctx context.Context, dir string) (Repo, error) {
	root, err := outputGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return Repo{}, fmt.Errorf("not inside a git repository: %w", err)
	}

	commonDir, err := outputGit(ctx, dir, "rev-parse", "--git-common-dir")
	if err != nil {
		return Repo{}, fmt.Errorf("resolve git common dir: %w", err)
	}
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(dir, commonDir)
	}

	return Repo{
		Root:      filepath.Clean(root),
		CommonDir: filepath.Clean(commonDir),
	}, nil
}

// Name returns the repository folder name.
func (r Repo) Name() string {
	return filepath.Base(r.Root)
}

// EnsureInfoExclude appends the given patterns to the repository's
// info/exclude file, skipping patterns already present. The file is local to
// the clone and never committed, so generated files stay out of git status
// without touching .gitignore.
func (r Repo) EnsureInfoExclude(patterns ...string) error {
	infoDir := filepath.Join(r.CommonDir, "info")
	if err := os.MkdirAll(infoDir, 0o755); err != nil {
		return fmt.Errorf("create info dir: %w", err)
	}
	path := filepath.Join(infoDir, "exclude")

	existing := map[string]bool{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read info/exclude: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		existing[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, p := range patterns {
		if !existing[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open info/exclude: %w", err)
	}
	defer f.Close()

	text := strings.Join(missing, "\n") + "\n"
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		text = "\n" + text
	}
	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("append info/exclude: %w", err)
	}
	return nil
}

// DefaultBranch returns the default branch name, preferring the remote HEAD
// and falling back to main, then master.
func DefaultBranch(ctx context.Context, repoPath string) string {
	ref, err := outputGit(ctx, repoPath, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err == nil {
		if parts := strings.Split(ref, "/"); len(parts) > 0 {
			return parts[len(parts)-1]
		}
	}
	if runGit(ctx, repoPath, "rev-parse", "--verify", "origin/main") == nil {
		return "main"
	}
	if runGit(ctx, repoPath, "rev-parse", "--verify", "origin/master") == nil {
		return "master"
	}
	return "main"
}
