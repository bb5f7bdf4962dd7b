package jsast

import "testing"

func TestDeclareTemporaryIsFresh(t *testing.T) {
	root := NewRootScope("module")
	root.DeclareName("tmp$1")
	fn := NewScope(root, "classes")

	a := fn.DeclareTemporary()
	b := fn.DeclareTemporary()
	if a.Ident() != "tmp$0" {
		t.Fatalf("first temporary = %q", a.Ident())
	}
	if b.Ident() != "tmp$2" {
		t.Fatalf("second temporary = %q, want tmp$2 (tmp$1 is taken by the parent)", b.Ident())
	}
	if a == b || a.Serial() == b.Serial() {
		t.Fatalf("temporaries must be distinct")
	}
	if fn.FindName("tmp$1") == nil {
		t.Fatalf("expected parent name to be visible")
	}
}

func TestDeclareFreshNameAvoidsCollisions(t *testing.T) {
	root := NewRootScope("module")
	root.Reserve("$lumen")
	first := root.DeclareFreshName("classes")
	second := root.DeclareFreshName("classes")
	third := root.DeclareFreshName("classes")
	if first.Ident() != "classes" || second.Ident() != "classes2" || third.Ident() != "classes3" {
		t.Fatalf("got %q %q %q", first.Ident(), second.Ident(), third.Ident())
	}
	if got := root.DeclareFreshName("$lumen").Ident(); got != "$lumen2" {
		t.Fatalf("reserved ident reused: %q", got)
	}
}

func TestSiblingScopesAreIndependent(t *testing.T) {
	root := NewRootScope("module")
	a := NewScope(root, "a").DeclareTemporary()
	b := NewScope(root, "b").DeclareTemporary()
	if a.Ident() != b.Ident() {
		t.Fatalf("sibling scopes should print the same first temporary, got %q and %q", a.Ident(), b.Ident())
	}
	if a == b {
		t.Fatalf("names from different scopes must not be identical")
	}
}

func TestDeclareNameIsIdempotent(t *testing.T) {
	root := NewRootScope("module")
	if root.DeclareName("core") != root.DeclareName("core") {
		t.Fatalf("DeclareName should return the existing binding")
	}
	if root.OwnNames() != 1 {
		t.Fatalf("OwnNames = %d", root.OwnNames())
	}
}
