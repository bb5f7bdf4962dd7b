package decls

import (
	"fmt"
	"strings"

	"lumen/internal/diag"
)

// Link resolves supertype and field-type names of every class to TypeRefs and
// checks the inheritance shape (one superclass, traits extend traits only,
// objects are never extended). It returns false when an error was reported.
func (p *Program) Link(r diag.Reporter) bool {
	ok := true
	for i := 1; i < len(p.classes); i++ {
		decl := &p.classes[i]
		decl.Supers = decl.Supers[:0]
		for _, ref := range decl.superNames {
			tr, good := p.resolve(decl, ref, r)
			ok = ok && good
			if good {
				decl.Supers = append(decl.Supers, tr)
			}
		}
		for j, ref := range decl.fieldTypes {
			if ref.name == "" {
				continue
			}
			tr, good := p.resolve(decl, ref, r)
			ok = ok && good
			if good {
				decl.Fields[j].Type = tr
			}
		}
	}
	for i := 1; i < len(p.classes); i++ {
		if !p.checkShape(&p.classes[i], r) {
			ok = false
		}
	}
	p.linked = true
	return ok
}

func (p *Program) resolve(decl *ClassDecl, ref nameRef, r diag.Reporter) (TypeRef, bool) {
	name := strings.TrimSpace(ref.name)
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		nsPath, className := name[:idx], name[idx+1:]
		target, known := p.namespaces[nsPath]
		if !known {
			return TypeRef{External: name, Span: ref.span}, true
		}
		if nsPath != decl.Namespace && !p.namespaces[decl.Namespace].ImportsPath(nsPath) {
			diag.ReportError(r, diag.ProjUnknownSuper, ref.span,
				fmt.Sprintf("%s refers to %s, but namespace %q is not imported by %q", decl.QualifiedName(), name, nsPath, decl.Namespace)).
				WithNote(target.Span, fmt.Sprintf("namespace %q declared here", nsPath)).
				Emit()
			return TypeRef{}, false
		}
		id, found := p.qualified[name]
		if !found {
			diag.ReportError(r, diag.ProjUnknownSuper, ref.span,
				fmt.Sprintf("namespace %q declares no class %q", nsPath, className)).
				Emit()
			return TypeRef{}, false
		}
		return TypeRef{Class: id, Span: ref.span}, true
	}

	if id, found := p.qualified[qualify(decl.Namespace, name)]; found {
		return TypeRef{Class: id, Span: ref.span}, true
	}
	for _, imp := range p.namespaces[decl.Namespace].Imports {
		if id, found := p.qualified[qualify(imp.Path, name)]; found {
			return TypeRef{Class: id, Span: ref.span}, true
		}
	}
	return TypeRef{External: name, Span: ref.span}, true
}

func (p *Program) checkShape(decl *ClassDecl, r diag.Reporter) bool {
	ok := true
	superclasses := 0
	for _, sup := range decl.Supers {
		target := p.Class(sup.Class)
		if target == nil {
			continue
		}
		switch {
		case target.Kind == KindObject:
			diag.ReportError(r, diag.ProjInvalidKind, sup.Span,
				fmt.Sprintf("%s cannot extend object %s", decl.QualifiedName(), target.QualifiedName())).
				WithNote(target.Span, "object declared here").
				Emit()
			ok = false
		case decl.Kind == KindTrait && target.Kind != KindTrait:
			diag.ReportError(r, diag.ProjInvalidKind, sup.Span,
				fmt.Sprintf("trait %s can only extend traits, %s is a %s", decl.QualifiedName(), target.QualifiedName(), target.Kind)).
				Emit()
			ok = false
		case target.Kind == KindClass:
			superclasses++
			if superclasses > 1 {
				diag.ReportError(r, diag.ProjInvalidKind, sup.Span,
					fmt.Sprintf("%s has more than one superclass", decl.QualifiedName())).
					Emit()
				ok = false
			}
		}
	}
	return ok
}
