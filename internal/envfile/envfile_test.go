package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pascalporedda/wrt-cli/internal/state"
)

func testAlloc(t *testing.T) state.Allocation {
	t.Helper()
	return state.Allocation{
		Slug:      "feature-x",
		RawName:   "Feature X",
		Branch:    "feature/x",
		Path:      t.TempDir(),
		Block:     3,
		Offset:    300,
		CreatedAt: time.Now().UTC(),
	}
}

func TestVars(t *testing.T) {
	t.Parallel()

	a := testAlloc(t)
	vars := Vars(a)

	want := map[string]string{
		"WRT_NAME":        "Feature X",
		"WRT_SLUG":        "feature-x",
		"WRT_BRANCH":      "feature/x",
		"WRT_PORT_BLOCK":  "3",
		"WRT_PORT_OFFSET": "300",
		"WRT_PATH":        a.Path,
	}
	got := map[string]string{}
	for _, kv := range vars {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			t.Fatalf("malformed var %q", kv)
		}
		got[key] = value
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestVarsFallsBackToSlug(t *testing.T) {
	t.Parallel()

	a := testAlloc(t)
	a.RawName = ""
	for _, kv := range Vars(a) {
		if kv == "WRT_NAME=feature-x" {
			return
		}
	}
	t.Error("WRT_NAME should fall back to the slug")
}

func TestWrite(t *testing.T) {
	t.Parallel()

	a := testAlloc(t)
	if err := Write(a); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(a.Path, FileName))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, want := range []string{
		"export WRT_NAME='Feature X'",
		"export WRT_SLUG='feature-x'",
		"export WRT_PORT_OFFSET='300'",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("env file missing %q:\n%s", want, content)
		}
	}
}

func TestShellQuote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"has space", "'has space'"},
		{"it's", `'it'\''s'`},
		{"$HOME", "'$HOME'"},
	}
	for _, tt := range tests {
		if got := ShellQuote(tt.in); got != tt.want {
			t.Errorf("ShellQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCopyRootEnv(t *testing.T) {
	t.Parallel()

	t.Run("copies when worktree has none", func(t *testing.T) {
		t.Parallel()
		repo, wt := t.TempDir(), t.TempDir()
		if err := os.WriteFile(filepath.Join(repo, ".env"), []byte("SECRET=1\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		copied, err := CopyRootEnv(repo, wt)
		if err != nil {
			t.Fatalf("CopyRootEnv() error = %v", err)
		}
		if !copied {
			t.Fatal("copied = false, want true")
		}
		data, err := os.ReadFile(filepath.Join(wt, ".env"))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "SECRET=1\n" {
			t.Errorf("copied content = %q", data)
		}
	})

	t.Run("no source env", func(t *testing.T) {
		t.Parallel()
		copied, err := CopyRootEnv(t.TempDir(), t.TempDir())
		if err != nil || copied {
			t.Errorf("CopyRootEnv() = %v, %v; want false, nil", copied, err)
		}
	})

	t.Run("existing worktree env untouched", func(t *testing.T) {
		t.Parallel()
		repo, wt := t.TempDir(), t.TempDir()
		if err := os.WriteFile(filepath.Join(repo, ".env"), []byte("FROM_ROOT=1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(wt, ".env"), []byte("LOCAL=1\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		copied, err := CopyRootEnv(repo, wt)
		if err != nil || copied {
			t.Fatalf("CopyRootEnv() = %v, %v; want false, nil", copied, err)
		}
		data, _ := os.ReadFile(filepath.Join(wt, ".env"))
		if string(data) != "LOCAL=1\n" {
			t.Error("existing .env was overwritten")
		}
	})
}
