// Package supa patches a worktree's supabase/config.toml so multiple local
// stacks can run side by side: known port assignments and loopback URLs are
// shifted by the worktree's offset, and project_id gets a per-worktree suffix.
//
// The patch is line-oriented on purpose. A TOML round-trip would not preserve
// comments and formatting byte-for-byte, and everything outside the handful of
// recognized fields must be left untouched.
package supa

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrConfigPatch indicates the config file is not in the expected shape.
// The file is left untouched when this is returned.
var ErrConfigPatch = errors.New("supabase config patch failed")

// ConfigRelPath is the config file location relative to a worktree root.
var ConfigRelPath = filepath.Join("supabase", "config.toml")

var (
	portAssignRe = regexp.MustCompile(`^(\s*(?:port|shadow_port|smtp_port|pop3_port)\s*=\s*)(\d+)(\s*(?:#.*)?)$`)
	projectIDRe  = regexp.MustCompile(`^(\s*project_id\s*=\s*)"(.*)"(\s*(?:#.*)?)$`)
	loopbackRe   = regexp.MustCompile(`(https?://(?:127\.0\.0\.1|localhost)):(\d+)`)
)

// suffixHashLen is the number of hex digits of the slug hash appended to the
// sanitized prefix. 24 bits keeps accidental collisions between truncated
// prefixes unlikely while staying short enough for docker resource names.
const suffixHashLen = 6

// HasConfig reports whether a supabase config exists under root.
func HasConfig(root string) bool {
	_, err := os.Stat(filepath.Join(root, ConfigRelPath))
	return err == nil
}

// DeriveSuffix returns the project_id suffix for a slug: a sanitized prefix
// (up to 16 chars) plus a short hash of the full slug, so distinct slugs stay
// distinct even after truncation. Deterministic.
func DeriveSuffix(slug string) string {
	clean := sanitize(slug)
	if len(clean) > 16 {
		clean = strings.TrimRight(clean[:16], "-")
	}

	sum := sha256.Sum256([]byte(slug))
	short := hex.EncodeToString(sum[:])[:suffixHashLen]

	if clean == "" {
		return short
	}
	return clean + "-" + short
}

// Patch rewrites text for one worktree: the four recognized port keys and any
// loopback URL ports get +offset, and project_id gets "-<suffix>" appended.
//
// Idempotent: a project_id already carrying the suffix marks the text as
// patched and the whole call is a no-op. Without that marker a re-run would
// double-apply the offset, so a config with no project_id assignment fails
// with ErrConfigPatch.
func Patch(text string, offset int, slug string) (string, error) {
	suffix := DeriveSuffix(slug)
	lines := strings.Split(text, "\n")

	idLine := -1
	for i, line := range lines {
		m := projectIDRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if strings.HasSuffix(m[2], "-"+suffix) {
			// Already patched for this slug.
			return text, nil
		}
		idLine = i
		break
	}
	if idLine < 0 {
		return "", fmt.Errorf("%w: no project_id assignment found", ErrConfigPatch)
	}

	for i, line := range lines {
		if i == idLine {
			m := projectIDRe.FindStringSubmatch(line)
			lines[i] = m[1] + `"` + m[2] + "-" + suffix + `"` + m[3]
			continue
		}

		if m := portAssignRe.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[2])
			if err != nil || n <= 0 {
				continue
			}
			shifted := n + offset
			if shifted < 1 || shifted > 65535 {
				return "", fmt.Errorf("%w: port out of range after offset: %d -> %d", ErrConfigPatch, n, shifted)
			}
			lines[i] = m[1] + strconv.Itoa(shifted) + m[3]
			continue
		}

		if strings.Contains(line, "http://") || strings.Contains(line, "https://") {
			lines[i] = loopbackRe.ReplaceAllStringFunc(line, func(match string) string {
				mm := loopbackRe.FindStringSubmatch(match)
				port, err := strconv.Atoi(mm[2])
				if err != nil {
					return match
				}
				shifted := port + offset
				if shifted < 1 || shifted > 65535 {
					return match
				}
				return mm[1] + ":" + strconv.Itoa(shifted)
			})
		}
	}

	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

// PatchFile applies Patch to the supabase config inside a worktree. The file
// is read fully, transformed in memory, and replaced atomically. A failed
// patch leaves the file untouched.
func PatchFile(worktreeRoot string, offset int, slug string) error {
	path := filepath.Join(worktreeRoot, ConfigRelPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	patched, err := Patch(string(data), offset, slug)
	if err != nil {
		return err
	}
	if patched == string(data) {
		return nil
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(patched), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// sanitize lower-cases and maps anything outside [a-z0-9] to a dash,
// collapsing runs and trimming the ends.
func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	prevDash := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			prevDash = false
		} else if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
