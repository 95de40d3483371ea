package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-repo override file, committed or not at the
// team's discretion.
const LocalConfigFileName = ".wrt.toml"

// LocalConfig holds per-repo configuration overrides from .wrt.toml.
// Empty strings and zero values mean "not set" (inherit from global).
type LocalConfig struct {
	WorktreeDir string `toml:"worktree_dir"`
	Install     string `toml:"install"`
	Supabase    string `toml:"supabase"`
	DB          string `toml:"db"`
}

// LoadLocal reads a per-repo .wrt.toml from the given repo path.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(repoPath string) (*LocalConfig, error) {
	path := filepath.Join(repoPath, LocalConfigFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", LocalConfigFileName, err)
	}

	var local LocalConfig
	if err := toml.Unmarshal(data, &local); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", LocalConfigFileName, err)
	}

	if filepath.IsAbs(local.WorktreeDir) {
		return nil, fmt.Errorf("%s: worktree_dir must be relative to the repo root", LocalConfigFileName)
	}
	for _, m := range []struct {
		field string
		value string
	}{
		{"install", local.Install},
		{"supabase", local.Supabase},
		{"db", local.DB},
	} {
		if m.value != "" && !validMode(m.value) {
			return nil, fmt.Errorf("%s: invalid %s mode %q", LocalConfigFileName, m.field, m.value)
		}
	}

	return &local, nil
}

// Merge applies local overrides on top of the global config. A nil local
// config returns the global config unchanged.
func Merge(global Config, local *LocalConfig) Config {
	if local == nil {
		return global
	}
	if local.WorktreeDir != "" {
		global.WorktreeDir = local.WorktreeDir
	}
	if local.Install != "" {
		global.Install = local.Install
	}
	if local.Supabase != "" {
		global.Supabase = local.Supabase
	}
	if local.DB != "" {
		global.DB = local.DB
	}
	return global
}
