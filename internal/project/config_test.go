package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `
[project]
name = "demo"
units = ["units/*.toml", "ui.yaml"]
output = "out/demo.js"

[build]
jobs = 2
freeze = false
`)
	writeFile(t, filepath.Join(root, "units", "b.toml"), "namespace = \"b\"\n")
	writeFile(t, filepath.Join(root, "units", "a.toml"), "namespace = \"a\"\n")
	writeFile(t, filepath.Join(root, "ui.yaml"), "namespace: ui\n")
	nested := filepath.Join(root, "units", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, ok, err := LoadManifest(nested)
	if err != nil || !ok {
		t.Fatalf("LoadManifest = %v, %v", ok, err)
	}
	if m.Config.Project.Name != "demo" || m.Config.Build.Jobs != 2 {
		t.Fatalf("config = %+v", m.Config)
	}
	if m.Config.Build.Freeze == nil || *m.Config.Build.Freeze {
		t.Fatalf("explicit freeze = false must be kept")
	}
	files, err := m.UnitFiles()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "ui.yaml"),
		filepath.Join(root, "units", "a.toml"),
		filepath.Join(root, "units", "b.toml"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v", files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
	if got := m.OutputPath(); got != filepath.Join(root, "out", "demo.js") {
		t.Fatalf("output = %s", got)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := map[string]string{
		"no project":  "[build]\njobs = 1\n",
		"no units":    "[project]\nname = \"x\"\n",
		"bad jobs":    "[project]\nunits = [\"a.toml\"]\n[build]\njobs = -1\n",
		"unknown key": "[project]\nunits = [\"a.toml\"]\nmain = \"x\"\n",
		"bad toml":    "[project\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, body)
			if _, err := LoadConfig(path); err == nil {
				t.Fatalf("LoadConfig must fail")
			}
		})
	}
}

func TestUnitFilesRejectsEmptyPattern(t *testing.T) {
	root := t.TempDir()
	m := &Manifest{Path: filepath.Join(root, ManifestName), Root: root}
	m.Config.Project.Units = []string{"missing/*.toml"}
	if _, err := m.UnitFiles(); err == nil {
		t.Fatalf("pattern without matches must fail")
	}
}
