package lower

import (
	"errors"

	"lumen/internal/decls"
	"lumen/internal/jsast"
	"lumen/internal/trace"
)

// ClassSource is the read side of the declaration model a Translator needs.
type ClassSource interface {
	SupertypeSource
	Class(id decls.ClassID) *decls.ClassDecl
	ClassesIn(namespace string) []*decls.ClassDecl
}

// Context is what a BodyLowerer sees while one batch is emitted.
type Context struct {
	Namespace  string
	Classes    ClassSource
	Naming     Naming
	Aliases    *AliasScope
	DeclObject *jsast.Name
	Imports    ExportSource
	Runtime    string

	tracer trace.Tracer
	span   uint64
}

// Scope is the initializer's function scope.
func (c *Context) Scope() *jsast.Scope { return c.Aliases.Scope() }

// RuntimeRef builds $lumen.<member>.
func (c *Context) RuntimeRef(member string) *jsast.NameRef {
	return jsast.QualifiedIdent(member, jsast.IdentRef(c.Runtime))
}

// Eager returns an expression evaluated while the initializer runs. Classes
// of this namespace resolve through their alias, so they must already be
// bound; classes of other namespaces resolve through the importer's export
// table; external types go through the runtime.
func (c *Context) Eager(ref decls.TypeRef) (jsast.Expr, error) {
	if ref.IsExternal() {
		return c.external(ref.External), nil
	}
	target := c.Classes.Class(ref.Class)
	if target == nil {
		return nil, &NotReadyError{Namespace: c.Namespace}
	}
	if target.Namespace != c.Namespace {
		return c.imported(target)
	}
	if c.Aliases.InProgress(target) {
		return nil, &AliasLifecycleError{Op: "resolve", Class: target, Reason: "referenced eagerly while its construction is in progress"}
	}
	alias, err := c.Aliases.MustResolve(target)
	if err != nil {
		return nil, err
	}
	return alias.Ref(), nil
}

// Lazy returns `function () { return <ref>; }`. Classes of this namespace
// that are not bound yet are read from the declarations object instead of
// their alias.
func (c *Context) Lazy(ref decls.TypeRef) (jsast.Expr, error) {
	var value jsast.Expr
	switch {
	case ref.IsExternal():
		value = c.external(ref.External)
	default:
		target := c.Classes.Class(ref.Class)
		if target == nil {
			return nil, &NotReadyError{Namespace: c.Namespace}
		}
		if target.Namespace != c.Namespace {
			imported, err := c.imported(target)
			if err != nil {
				return nil, err
			}
			value = imported
		} else if alias, ok := c.Aliases.Resolve(target); ok {
			value = alias.Ref()
		} else {
			value = jsast.QualifiedIdent(c.Naming.GlobalNameFor(target), c.DeclObject.MakeRef())
		}
	}
	return jsast.Thunk(c.Scope(), value), nil
}

func (c *Context) external(name string) jsast.Expr {
	return jsast.NewInvocation(c.RuntimeRef("external"), jsast.Str(name))
}

func (c *Context) imported(target *decls.ClassDecl) (jsast.Expr, error) {
	if c.Imports == nil {
		return nil, &NotReadyError{Namespace: target.Namespace, Class: target}
	}
	table, err := c.Imports.ExportsFor(target.Namespace)
	if err != nil {
		var notReady *NotReadyError
		if errors.As(err, &notReady) && notReady.Class == nil {
			return nil, &NotReadyError{Namespace: notReady.Namespace, Class: target}
		}
		return nil, err
	}
	entry, ok := table.Find(target)
	if !ok {
		return nil, &NotReadyError{Namespace: target.Namespace, Class: target}
	}
	return table.Reference(entry), nil
}

func (c *Context) classDone(decl *decls.ClassDecl) {
	trace.Point(c.tracer, trace.ScopeClass, "class", decl.QualifiedName(), c.span)
}
