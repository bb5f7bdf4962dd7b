package lower

import (
	"errors"
	"testing"

	"lumen/internal/jsast"
)

func TestAliasLifecycle(t *testing.T) {
	_, in := program(t, class("", "A"), class("", "B"))
	a, b := in[0], in[1]
	scope := NewAliasScope(jsast.NewRootScope("classes"))

	aliasA, err := scope.Assign(a)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := scope.Assign(b); err != nil {
		t.Fatalf("assign: %v", err)
	}
	var lifetime *AliasLifecycleError
	if _, err := scope.Assign(a); !errors.As(err, &lifetime) {
		t.Fatalf("second assign must fail, got %v", err)
	}
	if got, ok := scope.Resolve(a); !ok || got != aliasA {
		t.Fatalf("resolve = %+v, %v", got, ok)
	}
	if scope.Len() != 2 {
		t.Fatalf("live aliases = %d", scope.Len())
	}

	if err := scope.Teardown(); err != nil {
		t.Fatalf("teardown: %v", err)
	}
	if _, ok := scope.Resolve(a); ok {
		t.Fatalf("alias resolved after teardown")
	}
	if _, err := scope.MustResolve(b); !errors.As(err, &lifetime) {
		t.Fatalf("MustResolve after teardown must fail, got %v", err)
	}
	if err := scope.Teardown(); !errors.As(err, &lifetime) {
		t.Fatalf("second teardown must fail, got %v", err)
	}
	if _, err := scope.Assign(a); !errors.As(err, &lifetime) {
		t.Fatalf("assign after teardown must fail, got %v", err)
	}
}

func TestAliasesAreNeverReused(t *testing.T) {
	_, in := program(t, class("", "A"))
	first := NewAliasScope(jsast.NewRootScope("unit one"))
	second := NewAliasScope(jsast.NewRootScope("unit two"))

	x, _ := first.Assign(in[0])
	if err := first.Teardown(); err != nil {
		t.Fatal(err)
	}
	y, _ := second.Assign(in[0])
	if x.Name.Ident() != y.Name.Ident() {
		t.Fatalf("expected both batches to start at the same identifier, got %s and %s", x.Name.Ident(), y.Name.Ident())
	}
	if x == y || x.Serial == y.Serial || x.Name == y.Name {
		t.Fatalf("aliases of different batches must differ: %+v %+v", x, y)
	}
}

func TestMustResolveBeforeAssign(t *testing.T) {
	_, in := program(t, class("", "A"))
	scope := NewAliasScope(jsast.NewRootScope("classes"))
	_, err := scope.MustResolve(in[0])
	var lifetime *AliasLifecycleError
	if !errors.As(err, &lifetime) || lifetime.Class != in[0] {
		t.Fatalf("expected AliasLifecycleError for A, got %v", err)
	}
}

func TestInProgressMarkers(t *testing.T) {
	_, in := program(t, class("", "A"))
	scope := NewAliasScope(jsast.NewRootScope("classes"))
	scope.MarkInProgress(in[0])
	if !scope.InProgress(in[0]) {
		t.Fatalf("marker not set")
	}
	scope.ClearInProgress(in[0])
	if scope.InProgress(in[0]) {
		t.Fatalf("marker not cleared")
	}
	scope.MarkInProgress(in[0])
	if err := scope.Teardown(); err != nil {
		t.Fatal(err)
	}
	if scope.InProgress(in[0]) {
		t.Fatalf("teardown must drop markers")
	}
}
