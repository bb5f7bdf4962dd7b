package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"lumen/internal/diag"
	"lumen/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	bag := unknownSuper(fs, "/work/units/app.toml")

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected one diagnostic, got %+v", output)
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "PRJ5007" || d.Title != "Unknown supertype" {
		t.Errorf("unexpected header: %+v", d)
	}
	loc := d.Location
	if loc.File != "app.toml" || loc.StartByte != 29 || loc.EndByte != 36 {
		t.Errorf("unexpected location: %+v", loc)
	}
	if loc.StartLine != 2 || loc.StartCol != 12 || loc.EndLine != 2 || loc.EndCol != 19 {
		t.Errorf("unexpected positions: %+v", loc)
	}
	if len(d.Notes) != 0 {
		t.Errorf("notes included without IncludeNotes: %+v", d.Notes)
	}
}

func TestJSONWithNotes(t *testing.T) {
	fs := source.NewFileSet()
	bag := unknownSuper(fs, "app.toml")

	output := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeNotes: true})
	notes := output.Diagnostics[0].Notes
	if len(notes) != 1 || notes[0].Message != "namespace declared here" {
		t.Fatalf("notes = %+v", notes)
	}
	// без IncludePositions строк и колонок нет
	if notes[0].Location.StartLine != 0 || notes[0].Location.EndByte != 9 {
		t.Errorf("note location = %+v", notes[0].Location)
	}
}

func TestJSONTimingsAlwaysCarryNotes(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(4)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "timings").
		WithNote(source.Span{}, `{"phases":[]}`))

	output := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if len(output.Diagnostics[0].Notes) != 1 {
		t.Fatalf("timing notes dropped: %+v", output.Diagnostics[0])
	}
	if output.Diagnostics[0].Location.File != "<unknown>" {
		t.Errorf("file = %q", output.Diagnostics[0].Location.File)
	}
}

// TestJSONMaxLimit проверяет ограничение количества диагностик
func TestJSONMaxLimit(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("app.toml", []byte(unitText))
	bag := diag.NewBag(10)
	for i := range uint32(5) {
		bag.Add(diag.NewError(diag.ProjInvalidName, source.Span{File: fileID, Start: i, End: i + 1}, "bad name"))
	}

	output := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 3})
	if output.Count != 3 || !output.Truncated {
		t.Fatalf("count = %d truncated = %v", output.Count, output.Truncated)
	}
	output = BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if output.Count != 5 || output.Truncated {
		t.Fatalf("count = %d truncated = %v", output.Count, output.Truncated)
	}
}

func TestJSONNilBag(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, nil, source.NewFileSet(), JSONOpts{}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	if got := buf.String(); got != "{\n  \"diagnostics\": [],\n  \"count\": 0\n}\n" {
		t.Fatalf("output = %q", got)
	}
}
