package ast

import (
	"github.com/andrewsen/ucompiler-sub000/types"
)

// Base carries what every expression node gets from type resolution.
type Base struct {
	Pos  types.Span
	Type types.Type
	Ref  types.Referent
}

func (b *Base) Info() *Base { return b }

type Node interface {
	is_Node()
	Info() *Base
}

type Const struct {
	Base
	Tok types.Token
}

func (v *Const) is_Node() {}

type Ident struct {
	Base
	Tok types.Token
}

func (v *Ident) is_Node() {}

func (v *Ident) Name() string { return v.Tok.Text }

type Unary struct {
	Base
	Op types.Operation
	X  Node
	// Reload is set on ++/-- nodes whose value is used by an enclosing
	// expression.
	Reload bool
}

func (v *Unary) is_Node() {}

type Binary struct {
	Base
	Op   types.Operation
	L, R Node
	// Reload is set on assignments whose value is used by an enclosing
	// expression: the target is stored and then loaded again.
	Reload bool
}

func (v *Binary) is_Node() {}

type Call struct {
	Base
	Callee *Ident
	Args   []Node
}

func (v *Call) is_Node() {}

// New constructs an object. Call.Callee names the class.
type New struct {
	Base
	Call *Call
}

func (v *New) is_Node() {}

type NewArray struct {
	Base
	Elem string
	// Dims counts rank specifiers written after the size, as in new int[n][].
	Dims int
	Size Node
}

func (v *NewArray) is_Node() {}

// Cast is only ever inserted by the type resolver.
type Cast struct {
	Base
	X Node
}

func (v *Cast) is_Node() {}

type Stmt interface {
	is_Stmt()
}

type Block struct {
	Pos   types.Span
	Stmts []Stmt
}

func (v *Block) is_Stmt() {}

type ExprStmt struct {
	X Node
}

func (v *ExprStmt) is_Stmt() {}

type Declarator struct {
	Name types.Token
	// Init is the assignment name = value, or nil.
	Init  *Binary
	Local *types.Local
}

type VarDecl struct {
	Pos      types.Span
	TypeName string
	Vars     []*Declarator
}

func (v *VarDecl) is_Stmt() {}

type If struct {
	Pos    types.Span
	Conds  []Node
	Bodies []Stmt
	Else   Stmt
}

func (v *If) is_Stmt() {}

type While struct {
	Pos  types.Span
	Cond Node
	Body Stmt
	Else Stmt
}

func (v *While) is_Stmt() {}

type DoWhile struct {
	Pos  types.Span
	Body Stmt
	Cond Node
}

func (v *DoWhile) is_Stmt() {}

type For struct {
	Pos  types.Span
	Init Stmt
	Cond Node
	Iter Node
	Body Stmt
	Else Stmt
}

func (v *For) is_Stmt() {}

type Break struct {
	Pos types.Span
}

func (v *Break) is_Stmt() {}

type Continue struct {
	Pos types.Span
}

func (v *Continue) is_Stmt() {}

type Return struct {
	Pos types.Span
	X   Node
}

func (v *Return) is_Stmt() {}

// TypeOf returns the resolved type of n, or nil before resolution.
func TypeOf(n Node) types.Type {
	if n == nil {
		return nil
	}
	return n.Info().Type
}

// Clone deep-copies an expression tree.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Const:
		c := *v
		return &c
	case *Ident:
		c := *v
		return &c
	case *Unary:
		c := *v
		c.X = Clone(v.X)
		return &c
	case *Binary:
		c := *v
		c.L = Clone(v.L)
		c.R = Clone(v.R)
		return &c
	case *Call:
		return cloneCall(v)
	case *New:
		c := *v
		c.Call = cloneCall(v.Call)
		return &c
	case *NewArray:
		c := *v
		c.Size = Clone(v.Size)
		return &c
	case *Cast:
		c := *v
		c.X = Clone(v.X)
		return &c
	}
	return nil
}

func cloneCall(v *Call) *Call {
	c := *v
	callee := *v.Callee
	c.Callee = &callee
	c.Args = make([]Node, len(v.Args))
	for i, a := range v.Args {
		c.Args[i] = Clone(a)
	}
	return &c
}
