// Package lower turns a resolved method body into a flat ir.Func where
// every control construct is a sequence of labels and jumps.
package lower

import (
	"fmt"

	"github.com/coreos/pkg/capnslog"

	"github.com/andrewsen/ucompiler-sub000/ast"
	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/ir"
	"github.com/andrewsen/ucompiler-sub000/resolver"
	"github.com/andrewsen/ucompiler-sub000/types"
)

var plog = capnslog.NewPackageLogger("github.com/andrewsen/ucompiler-sub000", "lower")

type loop struct {
	cont, brk *ir.Label
}

type ctx struct {
	sink   *errors.Sink
	f      *ir.Func
	method *types.Method
	loops  []loop
	temps  int
}

// Lower emits the instruction stream of body. The body must have resolved
// without errors.
func Lower(sink *errors.Sink, body *resolver.Body) *ir.Func {
	locals := make([]*types.Local, len(body.Locals))
	copy(locals, body.Locals)

	c := &ctx{sink: sink, f: ir.NewFunc(body.Method, locals), method: body.Method}
	plog.Debugf("lowering %s", body.Method.Signature())

	c.block(body.Block)
	if types.IsVoid(c.method.Returns) && !c.endsWithRet() {
		c.emit(ir.OpRet, nil, nil)
	}

	if err := c.f.Verify(); err != nil {
		sink.Internal(types.Span{}, "lowering %s: %v", body.Method.Signature(), err)
	}
	plog.Debugf("%s: %d instructions, %d labels", body.Method.Name, len(c.f.Code), len(c.f.Labels()))
	return c.f
}

func (c *ctx) emit(op ir.Opcode, t types.Type, arg ir.Operand) {
	c.f.Emit(op, t, arg)
}

func (c *ctx) endsWithRet() bool {
	n := len(c.f.Code)
	return n > 0 && c.f.Code[n-1].Op == ir.OpRet
}

// temp allocates a hidden local past the declared ones.
func (c *ctx) temp(t types.Type) *types.Local {
	l := &types.Local{Name: fmt.Sprintf("$t%d", c.temps), Type: t, Slot: len(c.f.Locals)}
	c.temps++
	c.f.Locals = append(c.f.Locals, l)
	return l
}

func (c *ctx) block(b *ast.Block) {
	for _, s := range b.Stmts {
		c.stmt(s)
	}
}

func (c *ctx) stmt(s ast.Stmt) {
	switch v := s.(type) {
	case nil:
	case *ast.Block:
		c.block(v)
	case *ast.ExprStmt:
		c.discard(v.X)
	case *ast.VarDecl:
		for _, d := range v.Vars {
			if d.Init != nil {
				c.discard(d.Init)
			}
		}
	case *ast.If:
		c.ifStmt(v)
	case *ast.While:
		c.whileStmt(v)
	case *ast.DoWhile:
		c.doStmt(v)
	case *ast.For:
		c.forStmt(v)
	case *ast.Break:
		if l, ok := c.innermost(v.Pos, "break"); ok {
			c.f.Jump(ir.OpJmp, l.brk)
		}
	case *ast.Continue:
		if l, ok := c.innermost(v.Pos, "continue"); ok {
			c.f.Jump(ir.OpJmp, l.cont)
		}
	case *ast.Return:
		if v.X != nil {
			keep(v.X)
			c.expr(resolver.Coerce(c.sink, v.X, c.method.Returns))
		}
		c.emit(ir.OpRet, nil, nil)
	default:
		c.sink.Internal(types.Span{}, "cannot lower %T", s)
	}
}

func (c *ctx) innermost(at types.Span, what string) (loop, bool) {
	if len(c.loops) == 0 {
		c.sink.AddError(fmt.Sprintf("'%s' outside of a loop", what), errors.Shape, at)
		return loop{}, false
	}
	return c.loops[len(c.loops)-1], true
}

func (c *ctx) inLoop(l loop, body ast.Stmt) {
	c.loops = append(c.loops, l)
	c.stmt(body)
	c.loops = c.loops[:len(c.loops)-1]
}

// ifStmt: each condition falls through to its body or jumps to its own next
// label; every body leaves through the shared out label.
func (c *ctx) ifStmt(v *ast.If) {
	out := c.f.NewLabel("if.out")
	for i, cond := range v.Conds {
		next := c.f.NewLabel("if.next")
		c.cond(cond)
		c.f.Jump(ir.OpJf, next)
		c.stmt(v.Bodies[i])
		c.f.Jump(ir.OpJmp, out)
		c.f.Mark(next)
	}
	c.stmt(v.Else)
	c.f.Mark(out)
}

// whileStmt: a failed condition runs the else body, break skips it.
func (c *ctx) whileStmt(v *ast.While) {
	in, els, out := c.f.NewLabel("while.in"), c.f.NewLabel("while.else"), c.f.NewLabel("while.out")
	c.f.Mark(in)
	c.cond(v.Cond)
	c.f.Jump(ir.OpJf, els)
	c.inLoop(loop{cont: in, brk: out}, v.Body)
	c.f.Jump(ir.OpJmp, in)
	c.f.Mark(els)
	c.stmt(v.Else)
	c.f.Mark(out)
}

// doStmt jumps back both when the condition holds and unconditionally
// after it, so the loop is left through break or return.
func (c *ctx) doStmt(v *ast.DoWhile) {
	in, out := c.f.NewLabel("do.in"), c.f.NewLabel("do.out")
	c.f.Mark(in)
	c.inLoop(loop{cont: in, brk: out}, v.Body)
	c.cond(v.Cond)
	c.f.Jump(ir.OpJt, in)
	c.f.Jump(ir.OpJmp, in)
	c.f.Mark(out)
}

// forStmt runs init once ahead of the loop label; continue lands on the
// iteration expression.
func (c *ctx) forStmt(v *ast.For) {
	c.stmt(v.Init)
	in, next := c.f.NewLabel("for.in"), c.f.NewLabel("for.next")
	els, out := c.f.NewLabel("for.else"), c.f.NewLabel("for.out")
	c.f.Mark(in)
	if v.Cond != nil {
		c.cond(v.Cond)
		c.f.Jump(ir.OpJf, els)
	}
	c.inLoop(loop{cont: next, brk: out}, v.Body)
	c.f.Mark(next)
	if v.Iter != nil {
		c.discard(v.Iter)
	}
	c.f.Jump(ir.OpJmp, in)
	c.f.Mark(els)
	c.stmt(v.Else)
	c.f.Mark(out)
}

// cond lowers a condition, which has to leave its value.
func (c *ctx) cond(n ast.Node) {
	keep(n)
	c.expr(n)
}

// keep marks a statement-level assignment or increment whose value is used.
func keep(n ast.Node) {
	switch v := n.(type) {
	case *ast.Binary:
		if v.Op.IsAssign() {
			v.Reload = true
		}
	case *ast.Unary:
		if v.Op.IsIncDec() {
			v.Reload = true
		}
	}
}

// discard lowers n for its side effects only.
func (c *ctx) discard(n ast.Node) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *ast.Binary:
		if v.Op.IsAssign() {
			c.assign(v)
			if v.Reload {
				c.emit(ir.OpPop, nil, nil)
			}
			return
		}
	case *ast.Unary:
		if v.Op.IsIncDec() {
			c.step(v)
			if v.Reload {
				c.emit(ir.OpPop, nil, nil)
			}
			return
		}
	}
	c.expr(n)
	if !types.IsVoid(ast.TypeOf(n)) {
		c.emit(ir.OpPop, nil, nil)
	}
}
