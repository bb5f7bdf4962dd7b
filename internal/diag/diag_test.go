package diag

import (
	"testing"

	"lumen/internal/source"
)

func TestBagLimitAndErrors(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(New(SevWarning, ProjUnknownSuper, source.Span{}, "w")) {
		t.Fatalf("first add rejected")
	}
	if bag.HasErrors() {
		t.Fatalf("warning must not count as error")
	}
	bag.Add(NewError(LowerClassCycle, source.Span{}, "e"))
	if bag.Add(NewError(LowerNotReady, source.Span{}, "dropped")) {
		t.Fatalf("add beyond limit must fail")
	}
	if bag.Len() != 2 || !bag.HasErrors() {
		t.Fatalf("unexpected bag state: len=%d errors=%v", bag.Len(), bag.HasErrors())
	}
}

func TestBagSortDedup(t *testing.T) {
	bag := NewBag(10)
	bag.Add(NewError(LowerClassCycle, source.Span{File: 1, Start: 5, End: 6}, "b"))
	bag.Add(NewError(LowerClassCycle, source.Span{File: 0, Start: 9, End: 10}, "a"))
	bag.Add(NewError(LowerClassCycle, source.Span{File: 1, Start: 5, End: 6}, "b"))
	bag.Sort()
	bag.Dedup()
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("dedup left %d items, want 2", len(items))
	}
	if items[0].Message != "a" || items[1].Message != "b" {
		t.Fatalf("sort order = %q,%q", items[0].Message, items[1].Message)
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	rb := ReportError(BagReporter{Bag: bag}, LowerClassCycle, source.Span{}, "cycle").
		WithNote(source.Span{Start: 1, End: 2}, "A declared here")
	rb.Emit()
	rb.Emit()
	if bag.Len() != 1 {
		t.Fatalf("emitted %d diagnostics, want 1", bag.Len())
	}
	if got := len(bag.Items()[0].Notes); got != 1 {
		t.Fatalf("notes = %d, want 1", got)
	}
}

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("units/shapes.yaml", []byte("a\nb\n"))

	diags := []Diagnostic{
		NewError(LowerClassCycle, source.Span{File: file, Start: 0, End: 1}, "cycle\nfound").
			WithNote(source.Span{File: file, Start: 2, End: 3}, "B declared here"),
	}
	want := "error LOW6001 units/shapes.yaml:1:1 cycle found\n" +
		"note LOW6001 units/shapes.yaml:2:1 B declared here"
	if got := FormatShortDiagnostics(diags, fs, true); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LowerNotReady:   "LOW6003",
		ProjImportCycle: "PRJ5004",
		IOLoadFileError: "IO4001",
		UnknownCode:     "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Fatalf("%d.ID() = %s, want %s", code, got, want)
		}
	}
}

func TestFileRouter(t *testing.T) {
	first, second, rest := NewBag(10), NewBag(10), NewBag(10)
	r := NewFileRouter(BagReporter{Bag: rest})
	r.Route(1, BagReporter{Bag: first})
	r.Route(2, BagReporter{Bag: second})

	ReportError(r, ProjDuplicateClass, source.Span{File: 2, Start: 3, End: 4}, "dup").Emit()
	ReportError(r, ProjDuplicateClass, source.Span{File: 1}, "dup").Emit()
	ReportError(r, ProjDuplicateClass, source.Span{File: 7}, "elsewhere").Emit()

	if first.Len() != 1 || second.Len() != 1 || rest.Len() != 1 {
		t.Fatalf("routed %d/%d/%d, want 1/1/1", first.Len(), second.Len(), rest.Len())
	}
	if rest.Items()[0].Message != "elsewhere" {
		t.Fatalf("fallback got %q", rest.Items()[0].Message)
	}
}

func TestSeverityParseAndFilter(t *testing.T) {
	for _, in := range []string{"warning", "WARN", " Warning "} {
		if sev, err := ParseSeverity(in); err != nil || sev != SevWarning {
			t.Fatalf("ParseSeverity(%q) = %v, %v", in, sev, err)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Fatalf("expected error for unknown severity")
	}

	bag := NewBag(4)
	bag.Add(NewInfo(ObsTimings, "timings"))
	bag.Add(New(SevWarning, IOCacheUnreadable, source.Span{}, "stale"))
	bag.Add(NewError(LowerClassCycle, source.Span{}, "cycle"))

	filtered := bag.Filter(SevWarning)
	if filtered.Len() != 2 || bag.Len() != 3 {
		t.Fatalf("filtered %d of %d", filtered.Len(), bag.Len())
	}
	if got := filtered.Items()[0].Severity.Label(); got != "warning" {
		t.Fatalf("Label = %q", got)
	}
}
