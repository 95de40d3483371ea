// Package pm detects the JavaScript package manager and database tooling of
// a repository from its lockfiles and project markers.
package pm

import (
	"os"
	"path/filepath"
)

// InstallCommand is a resolved dependency install invocation.
type InstallCommand struct {
	Name string
	Args []string
}

// String returns the command as it would be typed in a shell.
func (c InstallCommand) String() string {
	out := c.Name
	for _, a := range c.Args {
		out += " " + a
	}
	return out
}

// HasProject reports whether root contains a JavaScript project.
func HasProject(root string) bool {
	return exists(filepath.Join(root, "package.json"))
}

// DetectInstallCommand picks the install command from the lockfile present in
// root. Lockfiles win over package.json so the package manager the team
// actually uses is respected. Returns false when root has no JavaScript
// project at all.
func DetectInstallCommand(root string) (InstallCommand, bool) {
	switch {
	case exists(filepath.Join(root, "pnpm-lock.yaml")):
		return InstallCommand{Name: "pnpm", Args: []string{"install"}}, true
	case exists(filepath.Join(root, "package-lock.json")):
		return InstallCommand{Name: "npm", Args: []string{"ci"}}, true
	case exists(filepath.Join(root, "yarn.lock")):
		return InstallCommand{Name: "yarn", Args: []string{"install"}}, true
	case exists(filepath.Join(root, "bun.lockb")), exists(filepath.Join(root, "bun.lock")):
		return InstallCommand{Name: "bun", Args: []string{"install"}}, true
	case exists(filepath.Join(root, "package.json")):
		return InstallCommand{Name: "npm", Args: []string{"install"}}, true
	}
	return InstallCommand{}, false
}

// HasSupabaseMigrations reports whether root carries supabase migrations or
// seed data worth applying to a fresh database.
func HasSupabaseMigrations(root string) bool {
	if exists(filepath.Join(root, "supabase", "seed.sql")) {
		return true
	}
	entries, err := os.ReadDir(filepath.Join(root, "supabase", "migrations"))
	return err == nil && len(entries) > 0
}

// HasPrismaSchema reports whether root uses prisma.
func HasPrismaSchema(root string) bool {
	return exists(filepath.Join(root, "prisma", "schema.prisma"))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
