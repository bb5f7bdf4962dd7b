package decls

import (
	"fmt"
	"strings"

	"lumen/internal/source"
)

// ClassKind distinguishes the runtime shape a declaration lowers to.
type ClassKind uint8

const (
	KindClass  ClassKind = iota // constructible class
	KindTrait                   // interface/trait, mixed into implementers
	KindObject                  // singleton object, constructed eagerly
)

func (k ClassKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindTrait:
		return "trait"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// ParseClassKind accepts the manifest spelling of a kind; empty means class.
func ParseClassKind(s string) (ClassKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "class":
		return KindClass, nil
	case "trait", "interface":
		return KindTrait, nil
	case "object":
		return KindObject, nil
	default:
		return KindClass, fmt.Errorf("unknown class kind %q (expected class|trait|object)", s)
	}
}

// TypeRef points either at a class declared in the Program or at an opaque
// external type the program does not declare (e.g. Any).
type TypeRef struct {
	Class    ClassID
	External string
	Span     source.Span
}

// IsExternal reports whether the reference leaves the program.
func (r TypeRef) IsExternal() bool { return !r.Class.IsValid() }

// Field is a constructor-initialized property. Type is optional.
type Field struct {
	Name    string
	Type    TypeRef
	HasType bool
	Span    source.Span
}

// ClassDecl is one class declaration as collected from a unit manifest.
// It is immutable once the Program has been linked.
type ClassDecl struct {
	ID        ClassID
	Name      string
	Namespace string
	Kind      ClassKind
	Span      source.Span
	Supers    []TypeRef
	Fields    []Field
	Methods   []string

	// unresolved names, consumed by Link
	superNames []nameRef
	fieldTypes []nameRef
}

type nameRef struct {
	name string
	span source.Span
}

// QualifiedName returns "namespace.Name".
func (c *ClassDecl) QualifiedName() string {
	return qualify(c.Namespace, c.Name)
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

func (c *ClassDecl) String() string {
	if c == nil {
		return "<nil class>"
	}
	return c.QualifiedName()
}

// AddSuperName records a supertype by name; Link resolves it.
func (c *ClassDecl) AddSuperName(name string, span source.Span) {
	c.superNames = append(c.superNames, nameRef{name: name, span: span})
}

// AddField records a field with an optional type name; Link resolves the type.
func (c *ClassDecl) AddField(name, typeName string, span source.Span) {
	c.Fields = append(c.Fields, Field{Name: name, HasType: typeName != "", Span: span})
	c.fieldTypes = append(c.fieldTypes, nameRef{name: typeName, span: span})
}
