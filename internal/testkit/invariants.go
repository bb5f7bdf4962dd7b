package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"lumen/internal/decls"
	"lumen/internal/jsast"
	"lumen/internal/source"
)

// Supertypes is the slice of the declaration model the order check needs.
type Supertypes interface {
	SupertypesOf(decl *decls.ClassDecl) []decls.TypeRef
}

// CheckInheritanceOrder verifies that order is a permutation of in where every
// class follows each of its supertypes that belongs to in.
func CheckInheritanceOrder(in, order []*decls.ClassDecl, supers Supertypes) error {
	if len(in) != len(order) {
		return fmt.Errorf("order has %d classes, input has %d", len(order), len(in))
	}
	pos := make(map[decls.ClassID]int, len(order))
	for i, c := range order {
		if _, dup := pos[c.ID]; dup {
			return fmt.Errorf("%s appears twice in order", c)
		}
		pos[c.ID] = i
	}
	for _, c := range in {
		if _, ok := pos[c.ID]; !ok {
			return fmt.Errorf("%s is missing from order", c)
		}
	}
	for i, c := range order {
		for _, ref := range supers.SupertypesOf(c) {
			if ref.IsExternal() {
				continue
			}
			at, inSet := pos[ref.Class]
			if !inSet {
				continue
			}
			if at >= i {
				return fmt.Errorf("%s (at %d) precedes its supertype at %d", c, i, at)
			}
		}
	}
	return nil
}

// CheckInitializerShape verifies that stmt has the form
//
//	var D = (function () { var a1 = ...; ...; return {G1: a1, ...}; })();
//
// (optionally Object.freeze around the literal) with entries named globals,
// in order, each returning a distinct binding of the function.
func CheckInitializerShape(stmt *jsast.Var, globals []string) error {
	if stmt == nil || stmt.Name == nil {
		return fmt.Errorf("nil initializer")
	}
	call, ok := stmt.Init.(*jsast.Invocation)
	if !ok || len(call.Args) != 0 {
		return fmt.Errorf("initializer is not a call without arguments: %T", stmt.Init)
	}
	fn, ok := call.Callee.(*jsast.Function)
	if !ok || fn.Body == nil {
		return fmt.Errorf("initializer callee is not a function: %T", call.Callee)
	}
	stmts := fn.Body.Stmts
	if len(stmts) == 0 {
		return fmt.Errorf("initializer body is empty")
	}
	bound := make(map[*jsast.Name]int, len(stmts))
	for i, st := range stmts[:len(stmts)-1] {
		v, ok := st.(*jsast.Var)
		if !ok {
			return fmt.Errorf("statement %d is %T, want var", i, st)
		}
		if v.Name.Scope() != fn.Scope {
			return fmt.Errorf("binding %s is not declared in the initializer scope", v.Name.Ident())
		}
		if _, dup := bound[v.Name]; dup {
			return fmt.Errorf("binding %s declared twice", v.Name.Ident())
		}
		bound[v.Name] = i
	}
	ret, ok := stmts[len(stmts)-1].(*jsast.Return)
	if !ok {
		return fmt.Errorf("last statement is %T, want return", stmts[len(stmts)-1])
	}
	obj, ok := ret.Value.(*jsast.ObjectLit)
	if !ok {
		if freeze, isCall := ret.Value.(*jsast.Invocation); isCall && len(freeze.Args) == 1 {
			obj, ok = freeze.Args[0].(*jsast.ObjectLit)
		}
	}
	if !ok {
		return fmt.Errorf("initializer does not return an object literal")
	}
	if len(obj.Props) != len(globals) {
		return fmt.Errorf("returned object has %d entries, want %d", len(obj.Props), len(globals))
	}
	used := make(map[*jsast.Name]struct{}, len(obj.Props))
	for i, prop := range obj.Props {
		if prop.Key != globals[i] {
			return fmt.Errorf("entry %d is %q, want %q", i, prop.Key, globals[i])
		}
		ref, isRef := prop.Value.(*jsast.NameRef)
		if !isRef || ref.Name == nil || ref.Qualifier != nil {
			return fmt.Errorf("entry %q is not a local binding", prop.Key)
		}
		if _, ok := bound[ref.Name]; !ok {
			return fmt.Errorf("entry %q refers to %s which the initializer does not bind", prop.Key, ref.Name.Ident())
		}
		if _, dup := used[ref.Name]; dup {
			return fmt.Errorf("entry %q reuses binding %s", prop.Key, ref.Name.Ident())
		}
		used[ref.Name] = struct{}{}
	}
	return nil
}

// CheckClassSpans verifies that every class span of p lies inside its file.
func CheckClassSpans(p *decls.Program, fs *source.FileSet) error {
	for _, ns := range p.Namespaces() {
		for _, c := range p.ClassesIn(ns.Path) {
			sp := c.Span
			if sp.Empty() {
				return fmt.Errorf("%s has an empty span", c)
			}
			f := fs.Get(sp.File)
			if f == nil {
				return fmt.Errorf("%s points to unknown file %d", c, sp.File)
			}
			size, err := safecast.Conv[uint32](len(f.Content))
			if err != nil {
				return fmt.Errorf("len content overflow: %w", err)
			}
			if !sp.Fits(size) {
				return fmt.Errorf("%s span %v is outside %s", c, sp, f.Path)
			}
		}
	}
	return nil
}
