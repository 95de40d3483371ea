package name

import (
	"errors"
	"testing"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"feature/login", "feature-login"},
		{"Fix Payment Flow", "fix-payment-flow"},
		{"  spaced  out  ", "spaced-out"},
		{"UPPER_case.name", "upper-case-name"},
		{"a--b---c", "a-b-c"},
		{"-leading-trailing-", "leading-trailing"},
		{"weird!@#chars", "weird-chars"},
		{"ümläut", "ml-ut"},
		{"already-a-slug", "already-a-slug"},
		{"", FallbackSlug},
		{"///", FallbackSlug},
		{"!!!", FallbackSlug},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Feature/Login", "a b c", "", "x--y", "Hello, World!"}
	for _, in := range inputs {
		once := Slugify(in)
		twice := Slugify(once)
		if once != twice {
			t.Errorf("Slugify not idempotent for %q: %q != %q", in, once, twice)
		}
		if once == "" {
			t.Errorf("Slugify(%q) returned empty string", in)
		}
	}
}

func TestNormalizeBranch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"feature/login", "feature/login"},
		{"fix payment flow", "fix-payment-flow"},
		{"feature//double", "feature/double"},
		{"/leading/slash", "leading/slash"},
		{"trailing/", "trailing"},
		{"trailing.dot.", "trailing.dot"},
		{"rel..notation", "rel.notation"},
		{"weird~^:?*[chars", "weirdchars"},
		{"branch.lock", "branch"},
		{"-leading-dash", "leading-dash"},
		{"a/.hidden", "a/hidden"},
		{"ref@{1}", "ref@1}"},
	}

	for _, tt := range tests {
		got, err := NormalizeBranch(tt.in)
		if err != nil {
			t.Errorf("NormalizeBranch(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeBranch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeBranchInvalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "///", "...", "~^:?*", "@"} {
		_, err := NormalizeBranch(in)
		if !errors.Is(err, ErrInvalidBranchName) {
			t.Errorf("NormalizeBranch(%q) error = %v, want ErrInvalidBranchName", in, err)
		}
	}
}
