package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"lumen/internal/driver"
	"lumen/internal/project"
)

const noManifestMessage = "no lumen.toml found\nplease list unit manifests or directories explicitly, e.g.:\n  lumen build units/"

// projectInput is the set of unit manifests a command works on.
type projectInput struct {
	files    []string
	baseDir  string
	manifest *project.Manifest // nil when the inputs came from arguments
}

// resolveInputs uses the arguments when given (files or directories) and
// otherwise the [project].units of the nearest lumen.toml.
func resolveInputs(args []string) (projectInput, error) {
	if len(args) == 0 {
		manifest, ok, err := project.LoadManifest(".")
		if err != nil {
			return projectInput{}, err
		}
		if !ok {
			return projectInput{}, errors.New(noManifestMessage)
		}
		files, err := manifest.UnitFiles()
		if err != nil {
			return projectInput{}, err
		}
		return projectInput{files: files, baseDir: manifest.Root, manifest: manifest}, nil
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return projectInput{}, fmt.Errorf("failed to stat %q: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(arg))
			continue
		}
		found, err := driver.ListUnitFiles(arg)
		if err != nil {
			return projectInput{}, fmt.Errorf("failed to list %q: %w", arg, err)
		}
		if len(found) == 0 {
			return projectInput{}, fmt.Errorf("no unit manifests in %q", arg)
		}
		files = append(files, found...)
	}
	slices.Sort(files)
	files = slices.Compact(files)

	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = ""
	}
	// аргументы внутри проекта всё равно берут настройки из lumen.toml
	manifest, ok, err := project.LoadManifest(filepath.Dir(files[0]))
	if err != nil {
		return projectInput{}, err
	}
	in := projectInput{files: files, baseDir: baseDir}
	if ok {
		in.manifest = manifest
	}
	return in, nil
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
