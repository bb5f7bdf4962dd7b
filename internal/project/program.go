package project

import (
	"fmt"

	"lumen/internal/decls"
	"lumen/internal/diag"
)

// BuildProgram registers every unit and its classes in a new Program and
// links it. Units whose namespace repeats an earlier one are skipped; the
// dag package reports them. ok is false when an error was reported.
func BuildProgram(units []*UnitMeta, r diag.Reporter) (prog *decls.Program, ok bool) {
	total := 0
	for _, u := range units {
		total += len(u.Classes)
	}
	prog = decls.NewProgram(total)
	ok = true

	var accepted []*UnitMeta
	for _, u := range units {
		imports := make([]decls.Import, 0, len(u.Imports))
		for _, imp := range u.Imports {
			imports = append(imports, decls.Import{Path: imp.Path, Span: imp.Span})
		}
		if _, fresh := prog.AddNamespace(u.Namespace, u.Span, imports); fresh {
			accepted = append(accepted, u)
		}
	}

	for _, u := range accepted {
		for _, c := range u.Classes {
			kind, err := decls.ParseClassKind(c.Kind)
			if err != nil {
				diag.ReportError(r, diag.ProjInvalidKind, c.KindSpan, fmt.Sprintf("class %s: %v", c.Name, err)).Emit()
				ok = false
				continue
			}
			decl := &decls.ClassDecl{Name: c.Name, Namespace: u.Namespace, Kind: kind, Span: c.Span}
			for _, s := range c.Supers {
				decl.AddSuperName(s.Name, s.Span)
			}
			for _, f := range c.Fields {
				decl.AddField(f.Name, f.Type, f.Span)
			}
			for _, m := range c.Methods {
				decl.Methods = append(decl.Methods, m.Name)
			}
			if id, fresh := prog.AddClass(decl); !fresh {
				prev := prog.Class(id)
				diag.ReportError(r, diag.ProjDuplicateClass, c.Span,
					fmt.Sprintf("class %s is declared twice in namespace %q", c.Name, u.Namespace)).
					WithNote(prev.Span, "previous declaration here").
					Emit()
				ok = false
			}
		}
	}

	if !prog.Link(r) {
		ok = false
	}
	return prog, ok
}
