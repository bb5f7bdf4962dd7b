package lower

import (
	"errors"
	"fmt"

	"lumen/internal/jsast"
)

// BuildInitializer fills fn with the batch bindings followed by
// `return {G: alias, ...};` and binds the invocation of fn to declObject:
//
//	var classes = (function () { var tmp$0 = ...; return Object.freeze({A: tmp$0}); })();
//
// Entries follow emission order. With freeze set the returned object is
// wrapped in Object.freeze so no entry can change after initialization.
func BuildInitializer(fn *jsast.Function, declObject *jsast.Name, res EmitResult, freeze bool) (*jsast.Var, error) {
	if fn == nil || declObject == nil {
		return nil, errors.New("initializer: missing function or declarations name")
	}
	if fn.Body == nil {
		fn.Body = jsast.NewBlock()
	}
	if len(fn.Body.Stmts) != 0 {
		return nil, errors.New("initializer: function body already built")
	}
	if len(res.Bindings) != len(res.Pairs) {
		return nil, fmt.Errorf("initializer: %d bindings for %d aliases", len(res.Bindings), len(res.Pairs))
	}

	seen := make(map[string]struct{}, len(res.Pairs))
	props := make([]jsast.Property, 0, len(res.Pairs))
	for _, pair := range res.Pairs {
		if pair.Local.IsZero() {
			return nil, &AliasLifecycleError{Op: "export", Class: pair.Class, Reason: "pair has no local alias"}
		}
		if _, dup := seen[pair.Global]; dup {
			return nil, fmt.Errorf("initializer: global name %q exported twice", pair.Global)
		}
		seen[pair.Global] = struct{}{}
		props = append(props, jsast.Property{Key: pair.Global, Value: pair.Local.Ref()})
	}

	var result jsast.Expr = &jsast.ObjectLit{Props: props}
	if freeze {
		result = jsast.NewInvocation(jsast.QualifiedIdent("freeze", jsast.IdentRef("Object")), result)
	}
	fn.Body.Stmts = append(fn.Body.Stmts, res.Bindings...)
	fn.Body.Stmts = append(fn.Body.Stmts, &jsast.Return{Value: result})
	return jsast.NewVar(declObject, jsast.NewInvocation(fn)), nil
}
