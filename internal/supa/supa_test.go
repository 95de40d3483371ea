package supa

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `project_id = "acme"

[api]
enabled = true
port = 54321

[db]
port = 54322
shadow_port = 54320

[db.pooler]
port = 54329

[studio]
port = 54323
api_url = "http://127.0.0.1:54321"

[inbucket]
port = 54324
smtp_port = 54325
pop3_port = 54326

[auth]
site_url = "http://localhost:3000"
additional_redirect_urls = ["https://127.0.0.1:3000"]
`

func TestPatchShiftsPortsAndURLs(t *testing.T) {
	t.Parallel()

	got, err := Patch(sampleConfig, 300, "feature-x")
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}

	for _, want := range []string{
		"port = 54621",
		"port = 54622",
		"shadow_port = 54620",
		"port = 54629",
		"port = 54623",
		`api_url = "http://127.0.0.1:54621"`,
		"smtp_port = 54625",
		"pop3_port = 54626",
		`site_url = "http://localhost:3300"`,
		`["https://127.0.0.1:3300"]`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("patched config missing %q\n%s", want, got)
		}
	}

	suffix := DeriveSuffix("feature-x")
	if !strings.Contains(got, `project_id = "acme-`+suffix+`"`) {
		t.Errorf("project_id not suffixed with %q\n%s", suffix, got)
	}
}

func TestPatchIdempotent(t *testing.T) {
	t.Parallel()

	once, err := Patch(sampleConfig, 300, "feature-x")
	if err != nil {
		t.Fatalf("first Patch() error = %v", err)
	}
	twice, err := Patch(once, 300, "feature-x")
	if err != nil {
		t.Fatalf("second Patch() error = %v", err)
	}
	if once != twice {
		t.Error("second Patch must be a byte-for-byte no-op")
	}
}

func TestPatchPreservesUnrelatedLines(t *testing.T) {
	t.Parallel()

	cfg := "project_id = \"acme\"\n\n# keep me\nmajor_version = 15\nmax_rows = 1000\n"
	got, err := Patch(cfg, 100, "wt")
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	for _, want := range []string{"# keep me", "major_version = 15", "max_rows = 1000"} {
		if !strings.Contains(got, want) {
			t.Errorf("unrelated line %q was modified\n%s", want, got)
		}
	}
}

func TestPatchPreservesInlineComments(t *testing.T) {
	t.Parallel()

	cfg := "project_id = \"acme\"\nport = 54321 # api port\n"
	got, err := Patch(cfg, 100, "wt")
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if !strings.Contains(got, "port = 54421 # api port") {
		t.Errorf("inline comment lost:\n%s", got)
	}
}

func TestPatchMissingProjectID(t *testing.T) {
	t.Parallel()

	_, err := Patch("port = 54321\n", 100, "wt")
	if !errors.Is(err, ErrConfigPatch) {
		t.Errorf("Patch() error = %v, want ErrConfigPatch", err)
	}
}

func TestPatchPortOutOfRange(t *testing.T) {
	t.Parallel()

	cfg := "project_id = \"acme\"\nport = 65500\n"
	_, err := Patch(cfg, 100, "wt")
	if !errors.Is(err, ErrConfigPatch) {
		t.Errorf("Patch() error = %v, want ErrConfigPatch", err)
	}
}

func TestDeriveSuffix(t *testing.T) {
	t.Parallel()

	if DeriveSuffix("feature-x") != DeriveSuffix("feature-x") {
		t.Error("suffix must be deterministic")
	}
	if DeriveSuffix("feature-x") == DeriveSuffix("feature-y") {
		t.Error("distinct slugs must yield distinct suffixes")
	}

	long := DeriveSuffix("a-very-long-worktree-name-that-keeps-going")
	other := DeriveSuffix("a-very-long-worktree-name-that-diverges-late")
	if long == other {
		t.Error("truncated prefixes must still be disambiguated by the hash")
	}
	if got := strings.Split(long, "-"); len(got[len(got)-1]) != 6 {
		t.Errorf("hash fragment length = %d, want 6", len(got[len(got)-1]))
	}
}

func TestPatchFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "supabase")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	if !HasConfig(root) {
		t.Fatal("HasConfig() = false, want true")
	}

	if err := PatchFile(root, 300, "feature-x"); err != nil {
		t.Fatalf("PatchFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "port = 54621") {
		t.Errorf("file not rewritten:\n%s", data)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Error("temp file should not survive PatchFile")
	}

	// Second run is a no-op.
	before := string(data)
	if err := PatchFile(root, 300, "feature-x"); err != nil {
		t.Fatalf("second PatchFile() error = %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != before {
		t.Error("second PatchFile changed the file")
	}
}

func TestPatchFileFailureLeavesFileUntouched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "supabase")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.toml")
	orig := "port = 54321\n"
	if err := os.WriteFile(path, []byte(orig), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := PatchFile(root, 100, "wt"); !errors.Is(err, ErrConfigPatch) {
		t.Fatalf("PatchFile() error = %v, want ErrConfigPatch", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != orig {
		t.Error("failed patch must leave the file untouched")
	}
}
