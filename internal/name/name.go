// Package name normalizes user-supplied worktree names into filesystem-safe
// slugs and valid git branch names.
package name

import (
	"fmt"
	"strings"
)

// ErrInvalidBranchName indicates a name that cannot be repaired into a valid ref.
var ErrInvalidBranchName = fmt.Errorf("invalid branch name")

// FallbackSlug is returned by Slugify when nothing safe remains after
// sanitizing. Directories must never be named from an empty slug.
const FallbackSlug = "worktree"

// Slugify converts a name into a lowercase slug over [a-z0-9-].
// Path separators, whitespace and punctuation become single dashes.
// Idempotent: Slugify(Slugify(x)) == Slugify(x).
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	prevDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		return FallbackSlug
	}
	return out
}

// NormalizeBranch converts a name into a valid git branch name.
// Slashes are kept (branches may be hierarchical), whitespace becomes dashes,
// and characters or sequences that git refuses in ref names are stripped or
// repaired. Returns ErrInvalidBranchName if nothing safe remains.
func NormalizeBranch(s string) (string, error) {
	trimmed := strings.TrimSpace(s)

	var b strings.Builder
	for _, r := range trimmed {
		switch {
		case r == ' ' || r == '\t':
			b.WriteByte('-')
		case r < 0x20 || r == 0x7f:
			// control characters are never valid in refs
		case strings.ContainsRune(`~^:?*[]\`, r):
			// forbidden by git-check-ref-format
		default:
			b.WriteRune(r)
		}
	}

	out := b.String()
	out = strings.ReplaceAll(out, "@{", "@")
	for strings.Contains(out, "..") {
		out = strings.ReplaceAll(out, "..", ".")
	}
	for strings.Contains(out, "//") {
		out = strings.ReplaceAll(out, "//", "/")
	}
	out = strings.Trim(out, "/")
	out = strings.TrimLeft(out, "-.")
	out = strings.TrimSuffix(out, ".lock")
	out = strings.TrimRight(out, ".")

	// No component may start with a dot.
	parts := strings.Split(out, "/")
	kept := parts[:0]
	for _, p := range parts {
		p = strings.TrimLeft(p, ".")
		if p != "" {
			kept = append(kept, p)
		}
	}
	out = strings.Join(kept, "/")

	if out == "" || out == "@" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBranchName, s)
	}
	return out, nil
}
