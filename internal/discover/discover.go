// Package discover runs an AI-assisted survey of a repository and persists
// the result as .wrt.json. The survey is delegated to the codex CLI with an
// embedded prompt and a strict output schema; the checked-in file then drives
// db and service commands without further tool calls.
package discover

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pascalporedda/wrt-cli/internal/log"
)

// FileName is the discovery file written to the repository root.
const FileName = ".wrt.json"

// MockOutputEnv names a file whose contents stand in for a codex run.
// Used by tests and CI where codex is unavailable.
const MockOutputEnv = "WRT_CODEX_MOCK_OUTPUT"

// ErrCodexNotFound indicates the codex CLI is not installed.
var ErrCodexNotFound = errors.New("codex not found in PATH: install it or set " + MockOutputEnv)

//go:embed assets/discover.txt
var promptText string

//go:embed assets/discovery.schema.json
var schemaBytes []byte

// Discovery is the persisted repository survey.
type Discovery struct {
	Version        int            `json:"version"`
	PortBlockSize  int            `json:"port_block_size"`
	PackageManager PackageManager `json:"package_manager"`
	Services       []Service      `json:"services"`
	Database       Database       `json:"database"`
	Supabase       Supabase       `json:"supabase"`
	Notes          string         `json:"notes,omitempty"`
}

// PackageManager describes how dependencies are installed.
type PackageManager struct {
	Name           string   `json:"name"`
	InstallCommand []string `json:"install_command"`
	Notes          string   `json:"notes,omitempty"`
}

// Service is one locally runnable process of the repository.
type Service struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind,omitempty"`
	DevCommand []string `json:"dev_command"`
	BasePort   int      `json:"base_port,omitempty"`
	PortEnv    string   `json:"port_env,omitempty"`
	URLEnv     string   `json:"url_env,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// Database describes the database tooling of the repository.
type Database struct {
	Detected       bool     `json:"detected"`
	Kind           string   `json:"kind,omitempty"`
	MigrateCommand []string `json:"migrate_command,omitempty"`
	SeedCommand    []string `json:"seed_command,omitempty"`
	ResetCommand   []string `json:"reset_command,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// Supabase describes a local supabase stack, if any.
type Supabase struct {
	Detected     bool      `json:"detected"`
	ConfigPath   string    `json:"config_path,omitempty"`
	StartCommand []string  `json:"start_command,omitempty"`
	BasePorts    BasePorts `json:"base_ports"`
	Notes        string    `json:"notes,omitempty"`
}

// BasePorts holds the unshifted supabase ports from config.toml.
type BasePorts struct {
	API      int `json:"api,omitempty"`
	DB       int `json:"db,omitempty"`
	ShadowDB int `json:"shadow_db,omitempty"`
	Studio   int `json:"studio,omitempty"`
	Inbucket int `json:"inbucket,omitempty"`
}

// Path returns the discovery file path for a repository root.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, FileName)
}

// Load reads the discovery file from the repository root. A missing file
// yields nil without error.
func Load(repoRoot string) (*Discovery, error) {
	data, err := os.ReadFile(Path(repoRoot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}

	var d Discovery
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}
	return &d, nil
}

// Run surveys the repository with codex and returns the raw JSON plus the
// parsed discovery. With MockOutputEnv set, the named file is read instead
// and codex is never invoked.
func Run(ctx context.Context, repoRoot, model string) ([]byte, *Discovery, error) {
	if mock := os.Getenv(MockOutputEnv); mock != "" {
		data, err := os.ReadFile(mock)
		if err != nil {
			return nil, nil, fmt.Errorf("read mock output: %w", err)
		}
		return parseRaw(data)
	}

	codex, err := exec.LookPath("codex")
	if err != nil {
		return nil, nil, ErrCodexNotFound
	}

	tmp, err := os.MkdirTemp("", "wrt-discover-*")
	if err != nil {
		return nil, nil, err
	}
	defer os.RemoveAll(tmp)

	schemaPath := filepath.Join(tmp, "schema.json")
	outPath := filepath.Join(tmp, "out.json")
	if err := os.WriteFile(schemaPath, schemaBytes, 0o600); err != nil {
		return nil, nil, fmt.Errorf("write schema: %w", err)
	}

	args := []string{"exec", promptText, "--output-schema", schemaPath, "-o", outPath}
	if model != "" {
		args = append(args, "--model", model)
	}

	done := log.FromContext(ctx).Command(repoRoot, "codex", "exec", "...")
	start := time.Now()
	c := exec.CommandContext(ctx, codex, args...)
	c.Dir = repoRoot
	// codex streams progress to stderr and may prompt on stdin.
	c.Stdin = os.Stdin
	c.Stderr = os.Stderr
	err = c.Run()
	done(time.Since(start))
	if err != nil {
		return nil, nil, fmt.Errorf("codex exec failed: %w", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read codex output: %w", err)
	}
	return parseRaw(data)
}

// Write persists raw discovery JSON to the repository root.
func Write(repoRoot string, raw []byte) error {
	if err := os.WriteFile(Path(repoRoot), raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", FileName, err)
	}
	return nil
}

// Prompt returns the embedded discovery prompt for --print.
func Prompt() string {
	return promptText
}

func parseRaw(data []byte) ([]byte, *Discovery, error) {
	var d Discovery
	if err := json.Unmarshal(data, &d); err != nil {
		// Keep the raw bytes usable even when the shape drifted.
		return data, &Discovery{}, nil
	}
	return data, &d, nil
}
