package jsprint

import (
	"testing"

	"lumen/internal/jsast"
)

func TestPrintInitializerShape(t *testing.T) {
	module := jsast.NewRootScope("module")
	classes := module.DeclareFreshName("classes")
	fn := jsast.NewFunction(module, "classes")
	base := fn.Scope.DeclareTemporary()
	derived := fn.Scope.DeclareTemporary()
	create := jsast.QualifiedIdent("createClass", jsast.IdentRef("$lumen"))
	fn.Body.Stmts = append(fn.Body.Stmts,
		jsast.NewVar(base, jsast.NewInvocation(create, &jsast.NullLit{})),
		jsast.NewVar(derived, jsast.NewInvocation(create, base.MakeRef())),
		&jsast.Return{Value: &jsast.ObjectLit{Props: []jsast.Property{
			{Key: "Base", Value: base.MakeRef()},
			{Key: "Derived", Value: derived.MakeRef()},
		}}},
	)
	prog := &jsast.Program{Scope: module, Stmts: []jsast.Stmt{jsast.NewVar(classes, jsast.NewInvocation(fn))}}

	want := "var classes = (function () {\n" +
		"  var tmp$0 = $lumen.createClass(null);\n" +
		"  var tmp$1 = $lumen.createClass(tmp$0);\n" +
		"  return {Base: tmp$0, Derived: tmp$1};\n" +
		"})();\n"
	if got := string(Program(prog, Options{IndentWidth: 2})); got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintQualifiedNames(t *testing.T) {
	obj := jsast.IdentRef("classes")
	tests := []struct {
		expr jsast.Expr
		want string
	}{
		{jsast.QualifiedIdent("Shape", obj), "classes.Shape"},
		{jsast.QualifiedIdent("my-class", obj), `classes["my-class"]`},
		{jsast.QualifiedIdent("x", jsast.NewInvocation(jsast.IdentRef("f"))), "f().x"},
		{&jsast.ObjectLit{Props: []jsast.Property{{Key: "a b", Value: &jsast.NumberLit{Value: 3}}}}, `{"a b": 3}`},
		{&jsast.ArrayLit{Elems: []jsast.Expr{jsast.Str("x"), &jsast.BoolLit{Value: true}}}, `["x", true]`},
	}
	for _, tt := range tests {
		if got := Expr(tt.expr, Options{}); got != tt.want {
			t.Fatalf("Expr = %s, want %s", got, tt.want)
		}
	}
}

func TestPrintNestedObjectIsMultiline(t *testing.T) {
	module := jsast.NewRootScope("module")
	method := jsast.NewFunction(module, "m")
	method.Body.Stmts = append(method.Body.Stmts, &jsast.Return{Value: &jsast.This{}})
	obj := &jsast.ObjectLit{Props: []jsast.Property{{Key: "self", Value: method}}}
	want := "({\n    self: function () {\n        return this;\n    }\n});\n"
	if got := string(Stmts([]jsast.Stmt{&jsast.ExprStmt{X: obj}}, Options{})); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"plain":       `"plain"`,
		`say "hi"`:    `"say \"hi\""`,
		"a\\b":        `"a\\b"`,
		"line\nbreak": `"line\nbreak"`,
		"\x01":        `"\u0001"`,
		"sep\u2028":   `"sep\u2028"`,
		"caf\u00e9":   "\"caf\u00e9\"",
	}
	for in, want := range tests {
		if got := Quote(in); got != want {
			t.Fatalf("Quote(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	for _, ok := range []string{"a", "$lumen", "_x1", "café"} {
		if !IsIdentifier(ok) {
			t.Fatalf("%q should be an identifier", ok)
		}
	}
	for _, bad := range []string{"", "1a", "a-b", "a b"} {
		if IsIdentifier(bad) {
			t.Fatalf("%q should not be an identifier", bad)
		}
	}
}
