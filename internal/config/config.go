package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Mode values for the provisioning steps. "auto" detects from the repository
// contents, "always" forces the step, "never" skips it.
const (
	ModeAuto   = "auto"
	ModeAlways = "always"
	ModeNever  = "never"
)

// DefaultWorktreeDir is the directory under the repo root that holds
// provisioned worktrees.
const DefaultWorktreeDir = ".worktrees"

// DefaultLockTimeoutSeconds bounds registry lock acquisition.
const DefaultLockTimeoutSeconds = 10

// Config holds the wrt configuration.
type Config struct {
	WorktreeDir        string `toml:"worktree_dir"`
	Install            string `toml:"install"`
	Supabase           string `toml:"supabase"`
	DB                 string `toml:"db"`
	LockTimeoutSeconds int    `toml:"lock_timeout_seconds"`
}

// LockTimeout returns the configured lock timeout as a duration.
func (c *Config) LockTimeout() time.Duration {
	if c.LockTimeoutSeconds <= 0 {
		return DefaultLockTimeoutSeconds * time.Second
	}
	return time.Duration(c.LockTimeoutSeconds) * time.Second
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		WorktreeDir:        DefaultWorktreeDir,
		Install:            ModeAuto,
		Supabase:           ModeAuto,
		DB:                 ModeAuto,
		LockTimeoutSeconds: DefaultLockTimeoutSeconds,
	}
}

// validMode reports whether s is one of auto, always, never.
func validMode(s string) bool {
	return s == ModeAuto || s == ModeAlways || s == ModeNever
}

// configPath returns the path to the config file
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wrt", "config.toml"), nil
}

// Load reads config from ~/.config/wrt/config.toml.
// Returns Default() if the file doesn't exist (no error).
// Returns an error only if the file exists but is invalid.
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Default(), nil
	}
	return loadFrom(path)
}

// loadFrom reads and validates a config file at path.
func loadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	// worktree_dir is relative to the repo root; absolute paths would place
	// every repo's worktrees in one shared directory.
	if filepath.IsAbs(cfg.WorktreeDir) {
		return Default(), fmt.Errorf("worktree_dir must be relative to the repo root, got %q", cfg.WorktreeDir)
	}
	if cfg.WorktreeDir == "" {
		cfg.WorktreeDir = DefaultWorktreeDir
	}

	for _, m := range []struct {
		field string
		value string
	}{
		{"install", cfg.Install},
		{"supabase", cfg.Supabase},
		{"db", cfg.DB},
	} {
		if !validMode(m.value) {
			return Default(), fmt.Errorf("invalid %s mode %q: must be %q, %q, or %q", m.field, m.value, ModeAuto, ModeAlways, ModeNever)
		}
	}

	if cfg.LockTimeoutSeconds < 0 {
		return Default(), fmt.Errorf("lock_timeout_seconds must not be negative, got %d", cfg.LockTimeoutSeconds)
	}

	return cfg, nil
}
