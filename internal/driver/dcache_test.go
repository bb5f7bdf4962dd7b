package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"lumen/internal/driver"
	"lumen/internal/project"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	c, err := driver.OpenDiskCacheAt(filepath.Join(t.TempDir(), "lumen"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := digest('k')
	art := &driver.UnitArtifact{
		Namespace:  "shapes",
		DeclObject: "shapes$classes",
		Exports:    []driver.ExportRecord{{Global: "Circle", Class: "shapes.Circle"}},
		JS:         []byte("var shapes$classes = 1;\n"),
	}

	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Put(key, art); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Namespace != "shapes" || got.DeclObject != "shapes$classes" || string(got.JS) != string(art.JS) {
		t.Fatalf("artifact = %+v", got)
	}
	if len(got.Exports) != 1 || got.Exports[0] != art.Exports[0] {
		t.Fatalf("exports = %+v", got.Exports)
	}

	entries, err := os.ReadDir(filepath.Join(c.Dir(), "units"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("temp files left behind: %v %v", entries, err)
	}

	if err := c.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Fatal("DropAll must invalidate entries")
	}
}

func TestDiskCacheCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c, err := driver.OpenDiskCacheAt(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := project.Digest{7}
	path := filepath.Join(dir, "units", key.String()+".mp")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{0xc1, 0xc1}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(key); ok || err == nil {
		t.Fatalf("corrupt entry: ok=%v err=%v", ok, err)
	}
}

func TestNilDiskCache(t *testing.T) {
	var c *driver.DiskCache
	if err := c.Put(project.Digest{1}, &driver.UnitArtifact{}); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(project.Digest{1}); ok || err != nil {
		t.Fatal("nil cache must miss without error")
	}
}
