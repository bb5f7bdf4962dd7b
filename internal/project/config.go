package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project manifest file searched for by FindManifest.
const ManifestName = "lumen.toml"

// Config is the decoded lumen.toml:
//
//	[project]
//	name = "demo"
//	units = ["units/*.toml", "ui.yaml"]
//	output = "out/demo.js"
//
//	[build]
//	jobs = 4
//	freeze = true
type Config struct {
	Project ProjectConfig `toml:"project"`
	Build   BuildConfig   `toml:"build"`
}

type ProjectConfig struct {
	Name   string   `toml:"name"`
	Units  []string `toml:"units"`
	Output string   `toml:"output"`
}

// BuildConfig holds lowering options. Zero values mean "use the default";
// Freeze and Prelude are pointers so an explicit false is kept.
type BuildConfig struct {
	Jobs             int    `toml:"jobs"`
	Indent           int    `toml:"indent"`
	Freeze           *bool  `toml:"freeze"`
	Prelude          *bool  `toml:"prelude"`
	DeclarationsName string `toml:"declarations_name"`
	Runtime          string `toml:"runtime"`
}

// Manifest is a located and decoded lumen.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// FindManifest walks up from startDir to locate lumen.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest finds and decodes the project manifest above startDir.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes and validates a lumen.toml file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return Config{}, fmt.Errorf("%s: missing [project]", path)
	}
	if !meta.IsDefined("project", "units") || len(cfg.Project.Units) == 0 {
		return Config{}, fmt.Errorf("%s: missing [project].units", path)
	}
	if cfg.Build.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if cfg.Build.Indent < 0 || cfg.Build.Indent > 8 {
		return Config{}, fmt.Errorf("%s: [build].indent must be between 0 and 8", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// UnitFiles expands [project].units relative to the manifest directory.
// Patterns are expanded with filepath.Glob; the result is sorted and
// deduplicated, and a pattern that matches nothing is an error.
func (m *Manifest) UnitFiles() ([]string, error) {
	var files []string
	for _, pattern := range m.Config.Project.Units {
		full := filepath.Join(m.Root, filepath.FromSlash(strings.TrimSpace(pattern)))
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("%s: bad unit pattern %q: %w", m.Path, pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: unit pattern %q matches no files", m.Path, pattern)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// OutputPath resolves [project].output; empty means stdout.
func (m *Manifest) OutputPath() string {
	out := strings.TrimSpace(m.Config.Project.Output)
	if out == "" {
		return ""
	}
	return filepath.Join(m.Root, filepath.FromSlash(out))
}
