package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lumen/internal/lower"
)

func writeUnit(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildWritesLinkedProgram(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeUnit(t, dir, "core.toml", "namespace = \"core\"\n[[class]]\nname = \"Base\"\nmethods = [\"describe\"]\n"),
		writeUnit(t, dir, "app.toml", "namespace = \"app\"\nimports = [\"core\"]\n[[class]]\nname = \"Main\"\nsupers = [\"core.Base\"]\n"),
	}
	out := filepath.Join(dir, "out", "app.js")
	sink := &RecordingSink{}

	res, err := Build(context.Background(), &BuildRequest{
		CompileRequest: CompileRequest{
			Files:    files,
			BaseDir:  dir,
			Lower:    lower.DefaultOptions(),
			Progress: sink,
		},
		OutputPath: out,
		Prelude:    true,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(data) != string(res.Output) {
		t.Fatalf("written output differs from result")
	}
	text := string(data)
	prelude := strings.Index(text, "var $lumen =")
	core := strings.Index(text, "var core$classes =")
	app := strings.Index(text, "var app$classes =")
	if prelude != 0 || core < prelude || app < core {
		t.Fatalf("unexpected layout (prelude %d, core %d, app %d):\n%s", prelude, core, app, text)
	}
	if !strings.Contains(text, `throw $lumen.notImplemented("core.Base.describe");`) {
		t.Fatalf("method stub missing:\n%s", text)
	}
	for _, stage := range Stages {
		if _, ok := res.Timings.Lookup(stage); !ok {
			t.Fatalf("missing timing for %s", stage)
		}
	}

	done := map[string]string{}
	for _, ev := range sink.Events() {
		if ev.Stage == StageLower && ev.Status == StatusDone && ev.File != "" {
			done[ev.File] = ev.Namespace
		}
	}
	if done["core.toml"] != "core" || done["app.toml"] != "app" {
		t.Fatalf("lower events = %v", done)
	}
}

func TestBuildStopsOnDiagnostics(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeUnit(t, dir, "bad.toml", "namespace = \"bad\"\n[[class]]\nname = \"A\"\nsupers = [\"A\"]\n")}
	out := filepath.Join(dir, "bad.js")

	res, err := Build(context.Background(), &BuildRequest{
		CompileRequest: CompileRequest{Files: files},
		OutputPath:     out,
	})
	if !errors.Is(err, ErrDiagnostics) {
		t.Fatalf("err = %v, want ErrDiagnostics", err)
	}
	if res.Compile.Lower == nil || !res.Compile.Lower.HasErrors() {
		t.Fatalf("diagnostics must be returned with the error")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("no output may be written for a failed build")
	}
}

func TestBuildAllowDiagnosticsKeepsHealthyUnits(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeUnit(t, dir, "bad.toml", "namespace = \"bad\"\n[[class]]\nname = \"A\"\nsupers = [\"A\"]\n"),
		writeUnit(t, dir, "good.toml", "namespace = \"good\"\n[[class]]\nname = \"B\"\n"),
	}
	res, err := Build(context.Background(), &BuildRequest{
		CompileRequest: CompileRequest{Files: files, AllowDiagnosticsError: true},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	text := string(res.Output)
	if strings.Contains(text, "bad$classes") || !strings.Contains(text, "good$classes") {
		t.Fatalf("output:\n%s", text)
	}
}

func TestDisplayFiles(t *testing.T) {
	base := t.TempDir()
	got := DisplayFiles([]string{filepath.Join(base, "units", "a.toml"), "/elsewhere/b.yaml"}, base)
	if got[0] != "units/a.toml" || got[1] != "/elsewhere/b.yaml" {
		t.Fatalf("DisplayFiles = %v", got)
	}
}

func TestTimings(t *testing.T) {
	var tm Timings
	if _, ok := tm.Lookup(StageLower); ok || tm.Total() != 0 {
		t.Fatal("zero Timings must be empty")
	}
	tm.Set(StageLoad, 2)
	tm.Set(StageLower, 3)
	tm.Set(Stage("emit"), 100)
	snapshot := tm
	tm.Set(StageLink, 5)
	if snapshot.Total() != 5 || tm.Total() != 10 {
		t.Fatalf("Total = %v / %v", snapshot.Total(), tm.Total())
	}
	if d, ok := tm.Lookup(StageLower); !ok || d != 3 {
		t.Fatalf("Lookup(lower) = %v, %v", d, ok)
	}
}

func TestStatusLabels(t *testing.T) {
	tests := []struct {
		status Status
		stage  Stage
		want   string
		final  bool
	}{
		{StatusQueued, StageLoad, "queued", false},
		{StatusWorking, StageOrder, "ordering", false},
		{StatusWorking, StageLower, "lowering", false},
		{StatusCached, StageLower, "cached", true},
		{StatusError, StageLink, "error", true},
		{StatusDone, StageLink, "done", true},
	}
	for _, tt := range tests {
		if got := tt.status.Label(tt.stage); got != tt.want {
			t.Fatalf("Label(%s) = %q, want %q", tt.stage, got, tt.want)
		}
		if tt.status.Finished() != tt.final {
			t.Fatalf("%q finished = %v", tt.want, !tt.final)
		}
	}
}
