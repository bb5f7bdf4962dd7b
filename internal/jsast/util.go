package jsast

// NewVar builds `var name = init;`.
func NewVar(name *Name, init Expr) *Var {
	return &Var{Name: name, Init: init}
}

// NewBlock builds a block from statements.
func NewBlock(stmts ...Stmt) *Block {
	return &Block{Stmts: stmts}
}

// NewInvocation builds callee(args...).
func NewInvocation(callee Expr, args ...Expr) *Invocation {
	return &Invocation{Callee: callee, Args: args}
}

// NewFunction creates a function expression whose scope is a child of parent.
func NewFunction(parent *Scope, description string) *Function {
	return &Function{Scope: NewScope(parent, description), Body: NewBlock()}
}

// FunctionWithScope wraps an existing scope into a function expression.
func FunctionWithScope(scope *Scope) *Function {
	return &Function{Scope: scope, Body: NewBlock()}
}

// Qualified builds qualifier.name for a bound name.
func Qualified(name *Name, qualifier Expr) *NameRef {
	return &NameRef{Name: name, Qualifier: qualifier}
}

// QualifiedIdent builds qualifier.ident for a property that is not a bound name.
func QualifiedIdent(ident string, qualifier Expr) *NameRef {
	return &NameRef{Ident: ident, Qualifier: qualifier}
}

// IdentRef references a global identifier that is not declared in any scope.
func IdentRef(ident string) *NameRef {
	return &NameRef{Ident: ident}
}

// Thunk wraps value into `function () { return value; }`.
func Thunk(parent *Scope, value Expr) *Function {
	fn := NewFunction(parent, "thunk")
	fn.Body.Stmts = append(fn.Body.Stmts, &Return{Value: value})
	return fn
}

// Str builds a string literal.
func Str(value string) *StringLit { return &StringLit{Value: value} }
