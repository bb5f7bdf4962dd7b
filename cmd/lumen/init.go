package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lumen/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new lumen project",
	Long: `Initialize a new lumen project by creating a project manifest (lumen.toml)
and an example unit (units/app.toml). If [path|name] is omitted, initializes
the current directory. A non-existing name creates the directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	name := projectName(filepath.Base(target))
	if err := os.WriteFile(manifestPath, []byte(defaultManifest(name)), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	unitPath := filepath.Join(target, "units", "app.toml")
	createdUnit := false
	if _, err := os.Stat(unitPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(unitPath), 0o750); err != nil {
			return fmt.Errorf("failed to create units dir: %w", err)
		}
		if err := os.WriteFile(unitPath, []byte(defaultUnit(name)), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", unitPath, err)
		}
		createdUnit = true
	}

	out := cmd.OutOrStdout()
	rel := target
	if wd, err := os.Getwd(); err == nil {
		rel = formatPathForOutput(wd, target)
	}
	fmt.Fprintf(out, "Initialized lumen project in %s\n", rel)
	fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	if createdUnit {
		fmt.Fprintf(out, "  - units/app.toml\n")
	} else {
		fmt.Fprintf(out, "  - units/app.toml (existing)\n")
	}
	return nil
}

// projectName turns a directory name into a valid namespace identifier.
func projectName(dir string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(dir) {
		switch {
		case r == '-' || r == ' ' || r == '.':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	name := b.String()
	if !project.IsValidIdent(name) {
		return "app"
	}
	return name
}

func defaultManifest(name string) string {
	return fmt.Sprintf(`# lumen project manifest
[project]
name = %q
units = ["units/*.toml"]
output = "out/%s.js"

[build]
freeze = true
`, name, name)
}

func defaultUnit(name string) string {
	return fmt.Sprintf(`namespace = %q

[[class]]
name = "Named"
kind = "trait"
methods = ["name"]

[[class]]
name = "Greeter"
supers = ["Named"]
fields = ["greeting"]
methods = ["greet"]
`, name)
}
