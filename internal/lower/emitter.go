package lower

import (
	"fmt"

	"lumen/internal/decls"
	"lumen/internal/jsast"
)

// Naming yields the stable global name of a class.
type Naming interface {
	GlobalNameFor(decl *decls.ClassDecl) string
}

// BodyLowerer produces the expression that constructs a class's runtime
// object. It is called once per class while that class's alias is live.
type BodyLowerer interface {
	LowerClassBody(decl *decls.ClassDecl, ctx *Context) (jsast.Expr, error)
}

// AliasPair records which local alias a global name is exported under.
type AliasPair struct {
	Local  LocalAlias
	Global string
	Class  *decls.ClassDecl
}

// EmitResult holds the bindings of one batch in emission order.
type EmitResult struct {
	Bindings []jsast.Stmt
	Pairs    []AliasPair
}

// Emitter lowers an ordered batch into `var <alias> = <expr>;` bindings.
type Emitter struct {
	ctx    *Context
	body   BodyLowerer
	naming Naming
}

// NewEmitter creates an emitter bound to ctx. The emitter tears down
// ctx.Aliases when Emit returns.
func NewEmitter(ctx *Context, body BodyLowerer, naming Naming) *Emitter {
	return &Emitter{ctx: ctx, body: body, naming: naming}
}

// Emit visits ordered in order. On error the result is empty: a failed
// batch has no usable partial output.
func (e *Emitter) Emit(ordered []*decls.ClassDecl) (res EmitResult, err error) {
	aliases := e.ctx.Aliases
	defer func() {
		for _, decl := range ordered {
			aliases.ClearInProgress(decl)
		}
		if tdErr := aliases.Teardown(); tdErr != nil && err == nil {
			err = tdErr
		}
		if err != nil {
			res = EmitResult{}
		}
	}()

	res.Bindings = make([]jsast.Stmt, 0, len(ordered))
	res.Pairs = make([]AliasPair, 0, len(ordered))
	for _, decl := range ordered {
		alias, err := aliases.Assign(decl)
		if err != nil {
			return res, err
		}
		aliases.MarkInProgress(decl)
		expr, err := e.body.LowerClassBody(decl, e.ctx)
		aliases.ClearInProgress(decl)
		if err != nil {
			return res, fmt.Errorf("lowering %s: %w", decl.QualifiedName(), err)
		}
		if expr == nil {
			return res, fmt.Errorf("lowering %s: body lowerer returned no expression", decl.QualifiedName())
		}
		res.Bindings = append(res.Bindings, jsast.NewVar(alias.Name, expr))
		res.Pairs = append(res.Pairs, AliasPair{Local: alias, Global: e.naming.GlobalNameFor(decl), Class: decl})
		e.ctx.classDone(decl)
	}
	return res, nil
}
