// Package cmd executes external tools (git, supabase, codex, package
// managers) with captured stderr and verbose command tracing.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pascalporedda/wrt-cli/internal/log"
)

// ErrExternalTool wraps any failure of an invoked external tool so callers
// can distinguish tool failures from wrt's own errors.
var ErrExternalTool = errors.New("external tool failed")

// Run executes a command and folds its stderr into the returned error.
func Run(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return wrapToolErr(cmd, err, stderr.String())
	}
	return nil
}

// Output executes a command and returns stdout, folding stderr into the
// returned error on failure.
func Output(cmd *exec.Cmd) ([]byte, error) {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, wrapToolErr(cmd, err, stderr.String())
	}
	return out, nil
}

// RunContext executes name with args in dir, tracing the invocation when
// verbose logging is on.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	err := Run(cmd)
	done(time.Since(start))
	return err
}

// OutputContext executes name with args in dir and returns trimmed stdout.
func OutputContext(ctx context.Context, dir, name string, args ...string) (string, error) {
	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := Output(cmd)
	done(time.Since(start))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// RunInteractive executes name with args in dir with inherited stdio, for
// long-running or interactive tools. extraEnv entries are appended to the
// current environment.
func RunInteractive(ctx context.Context, dir string, extraEnv []string, name string, args ...string) error {
	done := log.FromContext(ctx).Command(dir, name, args...)
	defer func(start time.Time) { done(time.Since(start)) }(time.Now())

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Stderr already went to the terminal; keep the exit code visible.
			return &ExitError{Tool: name, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("%w: %s: %v", ErrExternalTool, name, err)
	}
	return nil
}

// ExitError reports a tool that ran but exited non-zero. It matches
// ErrExternalTool with errors.Is so callers can either treat it as a generic
// tool failure or pass the exit code through.
type ExitError struct {
	Tool string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.Code)
}

func (e *ExitError) Is(target error) bool {
	return target == ErrExternalTool
}

func wrapToolErr(cmd *exec.Cmd, err error, stderr string) error {
	name := cmd.Path
	if len(cmd.Args) > 0 {
		name = cmd.Args[0]
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		return fmt.Errorf("%w: %s: %s", ErrExternalTool, name, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrExternalTool, name, err)
}
