package jsprint

import (
	"strconv"

	"lumen/internal/jsast"
)

type Options struct {
	IndentWidth int
	UseTabs     bool
}

func (o Options) withDefaults() Options {
	if o.IndentWidth == 0 {
		o.IndentWidth = 4
	}
	return o
}

type printer struct {
	w *writer
}

// Program prints a whole program; every top-level statement ends with a newline.
func Program(prog *jsast.Program, opt Options) []byte {
	p := printer{w: newWriter(opt.withDefaults())}
	if prog != nil {
		for _, st := range prog.Stmts {
			p.stmt(st)
			p.w.newline()
		}
	}
	return p.w.bytes()
}

// Stmts prints a statement list at indentation zero.
func Stmts(stmts []jsast.Stmt, opt Options) []byte {
	return Program(&jsast.Program{Stmts: stmts}, opt)
}

// Expr prints a single expression.
func Expr(e jsast.Expr, opt Options) string {
	p := printer{w: newWriter(opt.withDefaults())}
	p.expr(e)
	return string(p.w.bytes())
}

func (p *printer) stmt(st jsast.Stmt) {
	switch s := st.(type) {
	case *jsast.Var:
		p.w.writeString("var ")
		p.w.writeString(s.Name.Ident())
		if s.Init != nil {
			p.w.writeString(" = ")
			p.expr(s.Init)
		}
		p.w.writeByte(';')
	case *jsast.Return:
		p.w.writeString("return")
		if s.Value != nil {
			p.w.writeByte(' ')
			p.expr(s.Value)
		}
		p.w.writeByte(';')
	case *jsast.Throw:
		p.w.writeString("throw ")
		p.expr(s.Value)
		p.w.writeByte(';')
	case *jsast.ExprStmt:
		// a leading function or object literal would parse as a declaration or block
		switch s.X.(type) {
		case *jsast.Function, *jsast.ObjectLit:
			p.w.writeByte('(')
			p.expr(s.X)
			p.w.writeByte(')')
		default:
			p.expr(s.X)
		}
		p.w.writeByte(';')
	case *jsast.Block:
		p.block(s)
	case *jsast.Comment:
		p.w.writeString("// ")
		p.w.writeString(s.Text)
	default:
		panic("jsprint: unexpected statement node")
	}
}

func (p *printer) block(b *jsast.Block) {
	if b == nil || len(b.Stmts) == 0 {
		p.w.writeString("{}")
		return
	}
	p.w.writeByte('{')
	p.w.newline()
	p.w.indentPush()
	for _, st := range b.Stmts {
		p.stmt(st)
		p.w.newline()
	}
	p.w.indentPop()
	p.w.writeByte('}')
}

func (p *printer) expr(e jsast.Expr) {
	switch x := e.(type) {
	case nil:
		p.w.writeString("undefined")
	case *jsast.NameRef:
		p.nameRef(x)
	case *jsast.StringLit:
		p.w.writeString(Quote(x.Value))
	case *jsast.NumberLit:
		p.w.writeString(strconv.FormatFloat(x.Value, 'g', -1, 64))
	case *jsast.BoolLit:
		p.w.writeString(strconv.FormatBool(x.Value))
	case *jsast.NullLit:
		p.w.writeString("null")
	case *jsast.This:
		p.w.writeString("this")
	case *jsast.ArrayLit:
		p.w.writeByte('[')
		p.list(x.Elems)
		p.w.writeByte(']')
	case *jsast.ObjectLit:
		p.object(x)
	case *jsast.Function:
		p.function(x)
	case *jsast.Invocation:
		p.operand(x.Callee)
		p.w.writeByte('(')
		p.list(x.Args)
		p.w.writeByte(')')
	case *jsast.Assign:
		p.expr(x.Target)
		p.w.writeString(" = ")
		p.expr(x.Value)
	default:
		panic("jsprint: unexpected expression node")
	}
}

// operand prints e in callee or member-object position.
func (p *printer) operand(e jsast.Expr) {
	switch e.(type) {
	case *jsast.Function, *jsast.Assign, *jsast.ObjectLit:
		p.w.writeByte('(')
		p.expr(e)
		p.w.writeByte(')')
	default:
		p.expr(e)
	}
}

func (p *printer) nameRef(r *jsast.NameRef) {
	text := r.Text()
	if r.Qualifier == nil {
		p.w.writeString(text)
		return
	}
	p.operand(r.Qualifier)
	if IsIdentifier(text) {
		p.w.writeByte('.')
		p.w.writeString(text)
		return
	}
	p.w.writeByte('[')
	p.w.writeString(Quote(text))
	p.w.writeByte(']')
}

func (p *printer) list(items []jsast.Expr) {
	for i, item := range items {
		if i > 0 {
			p.w.writeString(", ")
		}
		p.expr(item)
	}
}

func (p *printer) function(fn *jsast.Function) {
	p.w.writeString("function (")
	for i, param := range fn.Params {
		if i > 0 {
			p.w.writeString(", ")
		}
		p.w.writeString(param.Ident())
	}
	p.w.writeString(") ")
	p.block(fn.Body)
}

func (p *printer) object(obj *jsast.ObjectLit) {
	if len(obj.Props) == 0 {
		p.w.writeString("{}")
		return
	}
	if !multiline(obj) {
		p.w.writeByte('{')
		for i, prop := range obj.Props {
			if i > 0 {
				p.w.writeString(", ")
			}
			p.property(prop)
		}
		p.w.writeByte('}')
		return
	}
	p.w.writeByte('{')
	p.w.newline()
	p.w.indentPush()
	for i, prop := range obj.Props {
		p.property(prop)
		if i < len(obj.Props)-1 {
			p.w.writeByte(',')
		}
		p.w.newline()
	}
	p.w.indentPop()
	p.w.writeByte('}')
}

func (p *printer) property(prop jsast.Property) {
	if IsIdentifier(prop.Key) {
		p.w.writeString(prop.Key)
	} else {
		p.w.writeString(Quote(prop.Key))
	}
	p.w.writeString(": ")
	p.expr(prop.Value)
}

// multiline reports whether an object literal holds nested non-empty
// functions or objects.
func multiline(obj *jsast.ObjectLit) bool {
	for _, prop := range obj.Props {
		switch v := prop.Value.(type) {
		case *jsast.Function:
			if v.Body != nil && len(v.Body.Stmts) > 0 {
				return true
			}
		case *jsast.ObjectLit:
			if len(v.Props) > 0 {
				return true
			}
		}
	}
	return false
}
