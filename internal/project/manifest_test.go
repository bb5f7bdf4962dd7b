package project

import (
	"testing"

	"lumen/internal/diag"
	"lumen/internal/source"
	"lumen/internal/testkit"
)

const shapesTOML = `namespace = "shapes"
imports = ["core"]

[[class]]
name = "Shape"
kind = "trait"
methods = ["area"]

[[class]]
name = "Circle"
supers = ["Shape", "core.Named"]
fields = ["radius", "center: geo.Point"]
`

const widgetYAML = `namespace: app/ui
imports: [core]
classes:
  - name: Widget
    kind: class
    supers: [core.Base]
    fields: ["label: core.Text"]
    methods: [render]
`

func text(fs *source.FileSet, sp source.Span) string {
	return string(sp.Text(fs.Get(sp.File).Content))
}

func TestDecodeTOMLUnit(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("shapes.toml", []byte(shapesTOML))
	bag := diag.NewBag(10)

	meta, ok := DecodeUnit(fs, id, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("decode failed: %+v", bag.Items())
	}
	if meta.Namespace != "shapes" || len(meta.Imports) != 1 || meta.Imports[0].Path != "core" {
		t.Fatalf("unit header = %+v", meta)
	}
	if len(meta.Classes) != 2 {
		t.Fatalf("classes = %d", len(meta.Classes))
	}
	shape, circle := meta.Classes[0], meta.Classes[1]
	if shape.Kind != "trait" || len(shape.Methods) != 1 || shape.Methods[0].Name != "area" {
		t.Fatalf("Shape = %+v", shape)
	}
	if got := text(fs, circle.Span); got != "Circle" {
		t.Fatalf("Circle span covers %q", got)
	}
	if got := text(fs, circle.Supers[0].Span); got != "Shape" || circle.Supers[0].Span.Start < circle.Span.Start {
		t.Fatalf("super span covers %q at %v", got, circle.Supers[0].Span)
	}
	if f := circle.Fields[1]; f.Name != "center" || f.Type != "geo.Point" {
		t.Fatalf("field = %+v", f)
	}
	if meta.ContentHash != Digest(fs.Get(id).Hash) {
		t.Fatalf("content hash not taken from the file set")
	}
}

func TestDecodeYAMLUnit(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("ui.yaml", []byte(widgetYAML))
	bag := diag.NewBag(10)

	meta, ok := DecodeUnit(fs, id, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("decode failed: %+v", bag.Items())
	}
	if meta.Namespace != "app.ui" {
		t.Fatalf("namespace = %q, want normalized app.ui", meta.Namespace)
	}
	if len(meta.Classes) != 1 {
		t.Fatalf("classes = %+v", meta.Classes)
	}
	w := meta.Classes[0]
	if got := text(fs, w.Span); got != "Widget" {
		t.Fatalf("Widget span covers %q", got)
	}
	if got := text(fs, w.Supers[0].Span); got != "core.Base" {
		t.Fatalf("super span covers %q", got)
	}
	if got := text(fs, w.Fields[0].Span); got != `"label: core.Text"` {
		t.Fatalf("field span covers %q", got)
	}
	if w.Fields[0].Type != "core.Text" || w.Methods[0].Name != "render" {
		t.Fatalf("class = %+v", w)
	}
}

func TestDecodeUnitErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		code diag.Code
	}{
		{"missing namespace", "a.toml", "[[class]]\nname = \"A\"\n", diag.IODecodeManifest},
		{"broken toml", "b.toml", "namespace = \n", diag.IODecodeManifest},
		{"broken yaml", "c.yaml", "namespace: [\n", diag.IODecodeManifest},
		{"bad class name", "d.yaml", "namespace: d\nclasses:\n  - name: 1st\n", diag.ProjInvalidName},
		{"bad namespace", "e.toml", "namespace = \"a..b\"\n", diag.ProjInvalidName},
		{"unknown extension", "f.json", "{}", diag.IODecodeManifest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.AddVirtual(tt.path, []byte(tt.body))
			bag := diag.NewBag(10)
			if _, ok := DecodeUnit(fs, id, diag.BagReporter{Bag: bag}); ok {
				t.Fatalf("decode must fail")
			}
			if !bag.HasErrors() || bag.Items()[0].Code != tt.code {
				t.Fatalf("diagnostics = %+v, want %v", bag.Items(), tt.code)
			}
		})
	}
}

func TestDecodeUnitWarnsOnUnknownKeys(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("w.yaml", []byte("namespace: w\ncolour: blue\n"))
	bag := diag.NewBag(10)
	if _, ok := DecodeUnit(fs, id, diag.BagReporter{Bag: bag}); !ok {
		t.Fatalf("unknown keys must not fail the unit")
	}
	if !bag.HasWarnings() || bag.HasErrors() {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
}

func TestBuildProgram(t *testing.T) {
	fs := source.NewFileSet()
	core := fs.AddVirtual("core.toml", []byte("namespace = \"core\"\n[[class]]\nname = \"Named\"\nkind = \"trait\"\n"))
	shapes := fs.AddVirtual("shapes.toml", []byte(shapesTOML))
	bag := diag.NewBag(10)
	r := diag.BagReporter{Bag: bag}

	var units []*UnitMeta
	for _, id := range []source.FileID{core, shapes} {
		meta, ok := DecodeUnit(fs, id, r)
		if !ok {
			t.Fatalf("decode: %+v", bag.Items())
		}
		units = append(units, meta)
	}
	prog, ok := BuildProgram(units, r)
	if !ok {
		t.Fatalf("build program: %+v", bag.Items())
	}
	circle, found := prog.Lookup("shapes.Circle")
	if !found || len(circle.Supers) != 2 || circle.Supers[1].IsExternal() {
		t.Fatalf("Circle = %+v", circle)
	}
	// geo is not a known namespace, so the field type stays external
	if !circle.Fields[1].Type.IsExternal() {
		t.Fatalf("field type = %+v", circle.Fields[1].Type)
	}
	if err := testkit.CheckClassSpans(prog, fs); err != nil {
		t.Fatal(err)
	}
}

func TestBuildProgramReportsDuplicatesAndKinds(t *testing.T) {
	units := []*UnitMeta{{
		Namespace: "dup",
		Classes: []ClassMeta{
			{Name: "A"},
			{Name: "A"},
			{Name: "B", Kind: "struct"},
		},
	}}
	bag := diag.NewBag(10)
	if _, ok := BuildProgram(units, diag.BagReporter{Bag: bag}); ok {
		t.Fatalf("program must fail")
	}
	codes := map[diag.Code]int{}
	for _, d := range bag.Items() {
		codes[d.Code]++
	}
	if codes[diag.ProjDuplicateClass] != 1 || codes[diag.ProjInvalidKind] != 1 {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
}

func TestNormalizeNamespace(t *testing.T) {
	good := map[string]string{
		"core":      "core",
		"app/ui":    "app.ui",
		" app.ui ":  "app.ui",
		`lib\util`:  "lib.util",
		"_private2": "_private2",
	}
	for in, want := range good {
		got, err := NormalizeNamespace(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeNamespace(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "a..b", ".a", "a/", "1a", "a-b"} {
		if _, err := NormalizeNamespace(bad); err == nil {
			t.Fatalf("NormalizeNamespace(%q) must fail", bad)
		}
	}
}

func TestCombineDependsOnOrder(t *testing.T) {
	a, b, c := Digest{1}, Digest{2}, Digest{3}
	if Combine(a, b, c) == Combine(a, c, b) {
		t.Fatalf("dependency order must change the digest")
	}
	if Combine(a, b) != Combine(a, b) {
		t.Fatalf("Combine must be deterministic")
	}
	if a.WithSalt("freeze") == a.WithSalt("nofreeze") {
		t.Fatalf("salt must change the digest")
	}
	if !(Digest{}).IsZero() || len(a.String()) != 64 {
		t.Fatalf("unexpected zero/hex behaviour")
	}
}
