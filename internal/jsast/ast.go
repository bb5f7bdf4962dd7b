package jsast

// Node is any node of the generated JavaScript tree.
type Node interface{ isNode() }

// Expr is an expression node.
type Expr interface {
	Node
	isExpr()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	isStmt()
}

// NameRef references a bound Name, or a bare property Ident when Name is nil.
// Qualifier, when set, turns the reference into a property access
// Qualifier.Ident.
type NameRef struct {
	Name      *Name
	Ident     string
	Qualifier Expr
}

// Text returns the identifier the reference prints.
func (r *NameRef) Text() string {
	if r.Name != nil {
		return r.Name.Ident()
	}
	return r.Ident
}

type (
	StringLit struct{ Value string }
	NumberLit struct{ Value float64 }
	BoolLit   struct{ Value bool }
	NullLit   struct{}
	This      struct{}

	ArrayLit struct{ Elems []Expr }

	// Property is one entry of an object literal.
	Property struct {
		Key   string
		Value Expr
	}

	ObjectLit struct{ Props []Property }

	// Function is a function expression with its own scope.
	Function struct {
		Scope  *Scope
		Params []*Name
		Body   *Block
	}

	Invocation struct {
		Callee Expr
		Args   []Expr
	}

	// Assign is target = value.
	Assign struct {
		Target Expr
		Value  Expr
	}
)

type (
	// Var is `var name = init;`.
	Var struct {
		Name *Name
		Init Expr
	}

	Return struct{ Value Expr }

	Throw struct{ Value Expr }

	ExprStmt struct{ X Expr }

	Block struct{ Stmts []Stmt }

	// Comment is a line comment statement, printed verbatim after "// ".
	Comment struct{ Text string }
)

// Program is a whole generated file.
type Program struct {
	Scope *Scope
	Stmts []Stmt
}

func (*NameRef) isNode()    {}
func (*StringLit) isNode()  {}
func (*NumberLit) isNode()  {}
func (*BoolLit) isNode()    {}
func (*NullLit) isNode()    {}
func (*This) isNode()       {}
func (*ArrayLit) isNode()   {}
func (*ObjectLit) isNode()  {}
func (*Function) isNode()   {}
func (*Invocation) isNode() {}
func (*Assign) isNode()     {}
func (*Var) isNode()        {}
func (*Return) isNode()     {}
func (*Throw) isNode()      {}
func (*ExprStmt) isNode()   {}
func (*Block) isNode()      {}
func (*Comment) isNode()    {}
func (*Program) isNode()    {}

func (*NameRef) isExpr()    {}
func (*StringLit) isExpr()  {}
func (*NumberLit) isExpr()  {}
func (*BoolLit) isExpr()    {}
func (*NullLit) isExpr()    {}
func (*This) isExpr()       {}
func (*ArrayLit) isExpr()   {}
func (*ObjectLit) isExpr()  {}
func (*Function) isExpr()   {}
func (*Invocation) isExpr() {}
func (*Assign) isExpr()     {}

func (*Var) isStmt()      {}
func (*Return) isStmt()   {}
func (*Throw) isStmt()    {}
func (*ExprStmt) isStmt() {}
func (*Block) isStmt()    {}
func (*Comment) isStmt()  {}
