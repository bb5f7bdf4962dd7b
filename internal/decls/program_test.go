package decls

import (
	"testing"

	"lumen/internal/diag"
	"lumen/internal/source"
)

func newClass(ns, name string, kind ClassKind, supers ...string) *ClassDecl {
	decl := &ClassDecl{Name: name, Namespace: ns, Kind: kind}
	for _, s := range supers {
		decl.AddSuperName(s, source.Span{})
	}
	return decl
}

func TestLinkResolvesSupertypes(t *testing.T) {
	p := NewProgram(0)
	p.AddNamespace("core", source.Span{}, nil)
	p.AddNamespace("shapes", source.Span{}, []Import{{Path: "core"}})

	named, _ := p.AddClass(newClass("core", "Named", KindTrait))
	shape, _ := p.AddClass(newClass("shapes", "Shape", KindClass, "Named"))
	circle, _ := p.AddClass(newClass("shapes", "Circle", KindClass, "Shape", "core.Named", "Any"))

	bag := diag.NewBag(10)
	if !p.Link(diag.BagReporter{Bag: bag}) {
		t.Fatalf("link failed: %v", bag.Items())
	}

	if got := p.Class(shape).Supers; len(got) != 1 || got[0].Class != named {
		t.Fatalf("Shape supers = %+v, want [Named]", got)
	}
	supers := p.Class(circle).Supers
	if len(supers) != 3 {
		t.Fatalf("Circle supers = %+v", supers)
	}
	if supers[0].Class != shape || supers[1].Class != named {
		t.Fatalf("Circle in-program supers = %+v", supers[:2])
	}
	if !supers[2].IsExternal() || supers[2].External != "Any" {
		t.Fatalf("Circle third super = %+v, want external Any", supers[2])
	}
}

func TestLinkReportsUnknownAndUnimported(t *testing.T) {
	p := NewProgram(0)
	p.AddNamespace("core", source.Span{}, nil)
	p.AddNamespace("app", source.Span{}, nil)
	p.AddClass(newClass("core", "Named", KindTrait))
	p.AddClass(newClass("app", "Main", KindClass, "core.Named"))
	p.AddClass(newClass("app", "Other", KindClass, "app.Missing"))

	bag := diag.NewBag(10)
	if p.Link(diag.BagReporter{Bag: bag}) {
		t.Fatalf("link must fail")
	}
	if bag.Len() != 2 {
		t.Fatalf("diagnostics = %d, want 2: %+v", bag.Len(), bag.Items())
	}
	for _, d := range bag.Items() {
		if d.Code != diag.ProjUnknownSuper {
			t.Fatalf("code = %v, want ProjUnknownSuper", d.Code)
		}
	}
}

func TestLinkChecksShape(t *testing.T) {
	p := NewProgram(0)
	p.AddNamespace("m", source.Span{}, nil)
	p.AddClass(newClass("m", "A", KindClass))
	p.AddClass(newClass("m", "B", KindClass))
	p.AddClass(newClass("m", "O", KindObject))
	p.AddClass(newClass("m", "Both", KindClass, "A", "B"))
	p.AddClass(newClass("m", "T", KindTrait, "A"))
	p.AddClass(newClass("m", "FromObject", KindClass, "O"))

	bag := diag.NewBag(10)
	if p.Link(diag.BagReporter{Bag: bag}) {
		t.Fatalf("link must fail")
	}
	if bag.Len() != 3 {
		t.Fatalf("diagnostics = %d, want 3: %+v", bag.Len(), bag.Items())
	}
}

func TestAddClassRejectsDuplicates(t *testing.T) {
	p := NewProgram(0)
	p.AddNamespace("m", source.Span{}, nil)
	first, ok := p.AddClass(newClass("m", "A", KindClass))
	if !ok {
		t.Fatalf("first add failed")
	}
	second, ok := p.AddClass(newClass("m", "A", KindClass))
	if ok || second != first {
		t.Fatalf("duplicate add = (%v, %v), want (%v, false)", second, ok, first)
	}
	if got := len(p.ClassesIn("m")); got != 1 {
		t.Fatalf("ClassesIn = %d, want 1", got)
	}
}

func TestManglerNames(t *testing.T) {
	p := NewProgram(0)
	p.AddNamespace("app/ui", source.Span{}, nil)
	a, _ := p.AddClass(newClass("app/ui", "Widget-1", KindClass))
	b, _ := p.AddClass(newClass("app/ui", "Widget_1", KindClass))
	c, _ := p.AddClass(newClass("app/ui", "class", KindClass))
	d, _ := p.AddClass(newClass("app/ui", "9lives", KindClass))
	p.Link(nil)

	m := NewMangler(p)
	want := map[ClassID]string{a: "Widget_1", b: "Widget_12", c: "class$", d: "_9lives"}
	for id, name := range want {
		if got := m.GlobalNameFor(p.Class(id)); got != name {
			t.Fatalf("GlobalNameFor(%s) = %q, want %q", p.Class(id).Name, got, name)
		}
	}
	if got := m.NamespaceIdent("app/ui"); got != "app$ui" {
		t.Fatalf("NamespaceIdent = %q", got)
	}
}

func TestSanitizeNormalizes(t *testing.T) {
	// "e" + combining acute composes to a single rune under NFC
	if got := Sanitize("Cafe\u0301"); got != "Caf\u00e9" {
		t.Fatalf("Sanitize = %q", got)
	}
}
