package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.WorktreeDir != DefaultWorktreeDir {
		t.Errorf("WorktreeDir = %q, want %q", cfg.WorktreeDir, DefaultWorktreeDir)
	}
	for field, mode := range map[string]string{"install": cfg.Install, "supabase": cfg.Supabase, "db": cfg.DB} {
		if mode != ModeAuto {
			t.Errorf("%s mode = %q, want %q", field, mode, ModeAuto)
		}
	}
	if cfg.LockTimeout() != 10*time.Second {
		t.Errorf("LockTimeout() = %v, want 10s", cfg.LockTimeout())
	}
}

func TestLoadFromMissing(t *testing.T) {
	t.Parallel()

	cfg, err := loadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("loadFrom(missing) error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("missing config should yield defaults, got %+v", cfg)
	}
}

func TestLoadFromValid(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
worktree_dir = "wt"
install = "never"
supabase = "always"
lock_timeout_seconds = 30
`)
	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}
	if cfg.WorktreeDir != "wt" {
		t.Errorf("WorktreeDir = %q, want wt", cfg.WorktreeDir)
	}
	if cfg.Install != ModeNever || cfg.Supabase != ModeAlways {
		t.Errorf("modes = %q/%q, want never/always", cfg.Install, cfg.Supabase)
	}
	// Unset field keeps its default.
	if cfg.DB != ModeAuto {
		t.Errorf("DB = %q, want auto", cfg.DB)
	}
	if cfg.LockTimeout() != 30*time.Second {
		t.Errorf("LockTimeout() = %v, want 30s", cfg.LockTimeout())
	}
}

func TestLoadFromInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "worktree_dir = "},
		{"absolute worktree dir", `worktree_dir = "/tmp/worktrees"`},
		{"bad mode", `install = "sometimes"`},
		{"negative timeout", `lock_timeout_seconds = -1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tt.content)
			if _, err := loadFrom(path); err == nil {
				t.Error("loadFrom() = nil, want error")
			}
		})
	}
}

func TestLockTimeoutZeroFallsBack(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	if cfg.LockTimeout() != DefaultLockTimeoutSeconds*time.Second {
		t.Errorf("LockTimeout() = %v, want default", cfg.LockTimeout())
	}
}
