package decls

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"lumen/internal/source"
)

// Import is one namespace dependency of a unit.
type Import struct {
	Path string
	Span source.Span
}

// Namespace is one compilation unit: its classes share one declarations object.
type Namespace struct {
	Path    string
	Span    source.Span
	Imports []Import
	Classes []ClassID // declaration order
}

// ImportsPath reports whether ns lists path among its imports.
func (ns *Namespace) ImportsPath(path string) bool {
	for _, imp := range ns.Imports {
		if imp.Path == path {
			return true
		}
	}
	return false
}

// Program owns every class declaration of a build in a slice-based arena.
type Program struct {
	classes    []ClassDecl
	namespaces map[string]*Namespace
	order      []string
	qualified  map[string]ClassID
	linked     bool
}

// NewProgram creates an empty program with an optional class capacity hint.
func NewProgram(capacity int) *Program {
	if capacity <= 0 {
		capacity = 32
	}
	return &Program{
		classes:    make([]ClassDecl, 1, capacity+1), // index 0 reserved for NoClassID
		namespaces: make(map[string]*Namespace),
		qualified:  make(map[string]ClassID),
	}
}

// AddNamespace registers a namespace. It returns the existing namespace and
// false when path was already declared.
func (p *Program) AddNamespace(path string, span source.Span, imports []Import) (*Namespace, bool) {
	if ns, ok := p.namespaces[path]; ok {
		return ns, false
	}
	ns := &Namespace{Path: path, Span: span, Imports: imports}
	p.namespaces[path] = ns
	p.order = append(p.order, path)
	return ns, true
}

// AddClass copies decl into the arena under its namespace and returns the new ID.
// A duplicate qualified name yields the existing ID and false.
func (p *Program) AddClass(decl *ClassDecl) (ClassID, bool) {
	if decl == nil {
		panic("decls.AddClass: nil declaration")
	}
	ns, ok := p.namespaces[decl.Namespace]
	if !ok {
		panic(fmt.Errorf("decls.AddClass: namespace %q is not declared", decl.Namespace))
	}
	if existing, dup := p.qualified[decl.QualifiedName()]; dup {
		return existing, false
	}
	value, err := safecast.Conv[uint32](len(p.classes))
	if err != nil {
		panic(fmt.Errorf("class arena overflow: %w", err))
	}
	id := ClassID(value)
	stored := *decl
	stored.ID = id
	stored.Supers = slices.Clone(decl.Supers)
	stored.Fields = slices.Clone(decl.Fields)
	stored.Methods = slices.Clone(decl.Methods)
	stored.superNames = slices.Clone(decl.superNames)
	stored.fieldTypes = slices.Clone(decl.fieldTypes)
	p.classes = append(p.classes, stored)
	p.qualified[stored.QualifiedName()] = id
	ns.Classes = append(ns.Classes, id)
	p.linked = false
	return id, true
}

// Class returns the declaration for id, or nil.
func (p *Program) Class(id ClassID) *ClassDecl {
	if !id.IsValid() || int(id) >= len(p.classes) {
		return nil
	}
	return &p.classes[id]
}

// Lookup finds a class by its qualified name.
func (p *Program) Lookup(qualified string) (*ClassDecl, bool) {
	id, ok := p.qualified[qualified]
	if !ok {
		return nil, false
	}
	return p.Class(id), true
}

// Namespace returns the namespace registered under path.
func (p *Program) Namespace(path string) (*Namespace, bool) {
	ns, ok := p.namespaces[path]
	return ns, ok
}

// Namespaces returns all namespaces in registration order.
func (p *Program) Namespaces() []*Namespace {
	out := make([]*Namespace, 0, len(p.order))
	for _, path := range p.order {
		out = append(out, p.namespaces[path])
	}
	return out
}

// ClassesIn returns the classes defined in namespace path, in declaration order.
func (p *Program) ClassesIn(path string) []*ClassDecl {
	ns, ok := p.namespaces[path]
	if !ok {
		return nil
	}
	out := make([]*ClassDecl, 0, len(ns.Classes))
	for _, id := range ns.Classes {
		out = append(out, p.Class(id))
	}
	return out
}

// SupertypesOf returns the ordered declared supertypes of decl.
func (p *Program) SupertypesOf(decl *ClassDecl) []TypeRef {
	if decl == nil {
		return nil
	}
	return decl.Supers
}

// Len reports the number of declared classes.
func (p *Program) Len() int { return len(p.classes) - 1 }

// Linked reports whether Link ran after the last AddClass.
func (p *Program) Linked() bool { return p.linked }
