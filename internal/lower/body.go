package lower

import (
	"lumen/internal/decls"
	"lumen/internal/jsast"
)

// RuntimeBodyLowerer lowers a declaration to a call into the runtime prelude:
//
//	$lumen.createClass(name, superclass, [traits], {initialize, methods}, {fieldTypes})
//	$lumen.createTrait(name, [traits], {methods})
//	$lumen.createObject(name, superclass, [traits], {initialize, methods})
//
// Supertypes are eager references; field types are lazy thunks. Method
// bodies are not lowered here, each method is a stub that throws.
type RuntimeBodyLowerer struct{}

func (RuntimeBodyLowerer) LowerClassBody(decl *decls.ClassDecl, ctx *Context) (jsast.Expr, error) {
	superclass, traits, err := lowerSupers(decl, ctx)
	if err != nil {
		return nil, err
	}
	name := jsast.Str(decl.QualifiedName())

	switch decl.Kind {
	case decls.KindTrait:
		return jsast.NewInvocation(ctx.RuntimeRef("createTrait"), name, traits, methodTable(decl, ctx, false)), nil
	case decls.KindObject:
		return jsast.NewInvocation(ctx.RuntimeRef("createObject"), name, superclass, traits, methodTable(decl, ctx, true)), nil
	}
	fieldTypes, err := fieldTypeTable(decl, ctx)
	if err != nil {
		return nil, err
	}
	return jsast.NewInvocation(ctx.RuntimeRef("createClass"), name, superclass, traits, methodTable(decl, ctx, true), fieldTypes), nil
}

// lowerSupers splits the supertypes into the superclass slot and the trait
// list. External supertypes take the superclass slot when it is free.
func lowerSupers(decl *decls.ClassDecl, ctx *Context) (jsast.Expr, *jsast.ArrayLit, error) {
	var superclass jsast.Expr
	traits := &jsast.ArrayLit{}
	for _, ref := range ctx.Classes.SupertypesOf(decl) {
		expr, err := ctx.Eager(ref)
		if err != nil {
			return nil, nil, err
		}
		isTrait := false
		if !ref.IsExternal() {
			if target := ctx.Classes.Class(ref.Class); target != nil {
				isTrait = target.Kind == decls.KindTrait
			}
		}
		if !isTrait && superclass == nil && decl.Kind != decls.KindTrait {
			superclass = expr
			continue
		}
		traits.Elems = append(traits.Elems, expr)
	}
	if superclass == nil {
		superclass = &jsast.NullLit{}
	}
	return superclass, traits, nil
}

func methodTable(decl *decls.ClassDecl, ctx *Context, withInit bool) *jsast.ObjectLit {
	obj := &jsast.ObjectLit{}
	if withInit && len(decl.Fields) > 0 {
		obj.Props = append(obj.Props, jsast.Property{Key: "initialize", Value: initializer(decl, ctx)})
	}
	for _, m := range decl.Methods {
		stub := jsast.NewFunction(ctx.Scope(), m)
		stub.Body.Stmts = append(stub.Body.Stmts, &jsast.Throw{
			Value: jsast.NewInvocation(ctx.RuntimeRef("notImplemented"), jsast.Str(decl.QualifiedName()+"."+m)),
		})
		obj.Props = append(obj.Props, jsast.Property{Key: m, Value: stub})
	}
	return obj
}

// initializer assigns every constructor parameter to the field of the same name.
func initializer(decl *decls.ClassDecl, ctx *Context) *jsast.Function {
	fn := jsast.NewFunction(ctx.Scope(), "initialize")
	for _, f := range decl.Fields {
		param := fn.Scope.DeclareFreshName(decls.Sanitize(f.Name))
		fn.Params = append(fn.Params, param)
		fn.Body.Stmts = append(fn.Body.Stmts, &jsast.ExprStmt{X: &jsast.Assign{
			Target: jsast.QualifiedIdent(f.Name, &jsast.This{}),
			Value:  param.MakeRef(),
		}})
	}
	return fn
}

func fieldTypeTable(decl *decls.ClassDecl, ctx *Context) (*jsast.ObjectLit, error) {
	obj := &jsast.ObjectLit{}
	for _, f := range decl.Fields {
		if !f.HasType {
			continue
		}
		thunk, err := ctx.Lazy(f.Type)
		if err != nil {
			return nil, err
		}
		obj.Props = append(obj.Props, jsast.Property{Key: f.Name, Value: thunk})
	}
	return obj, nil
}
