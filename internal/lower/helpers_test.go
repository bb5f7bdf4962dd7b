package lower

import (
	"testing"

	"lumen/internal/decls"
	"lumen/internal/diag"
	"lumen/internal/source"
)

func class(ns, name string, supers ...string) *decls.ClassDecl {
	decl := &decls.ClassDecl{Name: name, Namespace: ns}
	for _, s := range supers {
		decl.AddSuperName(s, source.Span{})
	}
	return decl
}

func trait(ns, name string, supers ...string) *decls.ClassDecl {
	decl := class(ns, name, supers...)
	decl.Kind = decls.KindTrait
	return decl
}

// program links classes into a Program and returns the stored declarations
// in input order. Namespaces are declared on first use without imports.
func program(t *testing.T, classes ...*decls.ClassDecl) (*decls.Program, []*decls.ClassDecl) {
	t.Helper()
	p := decls.NewProgram(len(classes))
	for _, c := range classes {
		if _, ok := p.Namespace(c.Namespace); !ok {
			p.AddNamespace(c.Namespace, source.Span{}, nil)
		}
		if _, ok := p.AddClass(c); !ok {
			t.Fatalf("duplicate class %s", c)
		}
	}
	link(t, p)
	out := make([]*decls.ClassDecl, 0, len(classes))
	for _, c := range classes {
		stored, ok := p.Lookup(c.QualifiedName())
		if !ok {
			t.Fatalf("class %s not stored", c)
		}
		out = append(out, stored)
	}
	return p, out
}

func link(t *testing.T, p *decls.Program) {
	t.Helper()
	bag := diag.NewBag(16)
	if !p.Link(diag.BagReporter{Bag: bag}) {
		t.Fatalf("link failed: %+v", bag.Items())
	}
}

func names(order []*decls.ClassDecl) []string {
	out := make([]string, 0, len(order))
	for _, c := range order {
		out = append(out, c.Name)
	}
	return out
}

func sameNames(got []*decls.ClassDecl, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i, c := range got {
		if c.Name != want[i] {
			return false
		}
	}
	return true
}
