// Package resolver assigns a type and a referent to every node of a parsed
// method body and inserts the implicit conversions the operator tables call
// for.
package resolver

import (
	"fmt"

	"github.com/coreos/pkg/capnslog"

	"github.com/andrewsen/ucompiler-sub000/ast"
	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/types"
)

var plog = capnslog.NewPackageLogger("github.com/andrewsen/ucompiler-sub000", "resolver")

// Body is a resolved method body.
type Body struct {
	Method *types.Method
	Block  *ast.Block
	// Locals is every local of the method in slot order.
	Locals []*types.Local
}

type Resolver struct {
	sink     *errors.Sink
	registry *types.Registry

	method *types.Method
	class  *types.Class
	scopes []map[string]*types.Local
	locals []*types.Local
	loops  int
}

func New(registry *types.Registry, sink *errors.Sink) *Resolver {
	return &Resolver{sink: sink, registry: registry}
}

// Resolve types the body of m in place.
func (r *Resolver) Resolve(m *types.Method, block *ast.Block) *Body {
	r.method = m
	r.class = m.Owner
	r.scopes = nil
	r.locals = nil
	r.loops = 0

	plog.Debugf("resolving %s", m.Signature())
	r.block(block)
	return &Body{Method: m, Block: block, Locals: r.locals}
}

func (r *Resolver) push() {
	r.scopes = append(r.scopes, map[string]*types.Local{})
}

func (r *Resolver) pop() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) lookupLocal(name string) *types.Local {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if l, ok := r.scopes[i][name]; ok {
			return l
		}
	}
	return nil
}

func (r *Resolver) lookupParam(name string) *types.Param {
	for _, p := range r.method.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// declare adds a local to the innermost scope. Locals may not shadow other
// locals or parameters of the same method.
func (r *Resolver) declare(name types.Token, t types.Type) *types.Local {
	if prev := r.lookupLocal(name.Text); prev != nil {
		r.sink.Report(errors.Redeclared{Name: name.Text, Previous: prev.Decl, Location: name.Location}, errors.Naming)
	} else if r.lookupParam(name.Text) != nil || name.Text == "this" {
		r.sink.AddError(fmt.Sprintf("'%s' is already a parameter", name.Text), errors.Naming, name.Location)
	}
	l := &types.Local{Name: name.Text, Type: t, Slot: len(r.locals), Decl: name.Location}
	r.scopes[len(r.scopes)-1][name.Text] = l
	r.locals = append(r.locals, l)
	return l
}

func (r *Resolver) block(b *ast.Block) {
	r.push()
	for _, s := range b.Stmts {
		r.stmt(s)
	}
	r.pop()
}

func (r *Resolver) stmt(s ast.Stmt) {
	switch v := s.(type) {
	case nil:
	case *ast.Block:
		r.block(v)
	case *ast.ExprStmt:
		if v.X != nil {
			r.expr(v.X)
			r.notType(v.X)
		}
	case *ast.VarDecl:
		r.varDecl(v)
	case *ast.If:
		for i, cond := range v.Conds {
			r.condition(cond)
			r.scoped(v.Bodies[i])
		}
		r.scoped(v.Else)
	case *ast.While:
		r.condition(v.Cond)
		r.loop(v.Body)
		r.scoped(v.Else)
	case *ast.DoWhile:
		r.loop(v.Body)
		r.condition(v.Cond)
	case *ast.For:
		r.push()
		r.stmt(v.Init)
		if v.Cond != nil {
			r.condition(v.Cond)
		}
		if v.Iter != nil {
			r.expr(v.Iter)
			r.notType(v.Iter)
		}
		r.loop(v.Body)
		r.scoped(v.Else)
		r.pop()
	case *ast.Break:
		if r.loops == 0 {
			r.sink.AddError("'break' outside of a loop", errors.Shape, v.Pos)
		}
	case *ast.Continue:
		if r.loops == 0 {
			r.sink.AddError("'continue' outside of a loop", errors.Shape, v.Pos)
		}
	case *ast.Return:
		r.ret(v)
	default:
		r.sink.Internal(types.Span{}, "unknown statement %T", s)
	}
}

// scoped resolves a statement that gets a scope of its own even without
// braces.
func (r *Resolver) scoped(s ast.Stmt) {
	r.push()
	r.stmt(s)
	r.pop()
}

func (r *Resolver) loop(body ast.Stmt) {
	r.loops++
	r.scoped(body)
	r.loops--
}

// condition requires a bool. Anything else cannot be lowered to a branch,
// so it ends the compilation.
func (r *Resolver) condition(n ast.Node) {
	if n == nil {
		return
	}
	t := r.expr(n)
	if !types.IsKind(t, types.Bool) {
		r.sink.AddFatal(fmt.Sprintf("condition must be of type bool, not %s", t), errors.Type, n.Info().Pos)
	}
}

func (r *Resolver) varDecl(v *ast.VarDecl) {
	var t types.Type = types.Inferred{}
	if v.TypeName != "var" {
		var ok bool
		if t, ok = r.registry.Lookup(v.TypeName); !ok {
			r.sink.AddFatal(fmt.Sprintf("unknown type '%s'", v.TypeName), errors.Naming, v.Pos)
		}
		if types.IsVoid(t) {
			r.sink.AddError("a local cannot be of type void", errors.Type, v.Pos)
			return
		}
	}
	for _, d := range v.Vars {
		d.Local = r.declare(d.Name, t)
		if d.Init != nil {
			r.expr(d.Init)
		}
	}
}

func (r *Resolver) ret(v *ast.Return) {
	want := r.method.Returns
	switch {
	case v.X == nil && !types.IsVoid(want):
		r.sink.AddError(fmt.Sprintf("missing return value of type %s", want), errors.Type, v.Pos)
	case v.X != nil && types.IsVoid(want):
		r.expr(v.X)
		r.sink.AddError(fmt.Sprintf("%s returns void and cannot return a value", r.method.Name), errors.Type, v.Pos)
	case v.X != nil:
		got := r.expr(v.X)
		if !Convertible(v.X, want) {
			r.sink.Fail(errors.NoConversion{From: got, To: want, Location: v.X.Info().Pos}, errors.Type)
		}
	}
}
