package lower

import (
	"github.com/andrewsen/ucompiler-sub000/ast"
	"github.com/andrewsen/ucompiler-sub000/ir"
	"github.com/andrewsen/ucompiler-sub000/types"
)

var binaryOps = map[types.OpKind]ir.Opcode{
	types.OpAdd:    ir.OpAdd,
	types.OpSub:    ir.OpSub,
	types.OpMul:    ir.OpMul,
	types.OpDiv:    ir.OpDiv,
	types.OpMod:    ir.OpRem,
	types.OpBitAnd: ir.OpAnd,
	types.OpBitOr:  ir.OpOr,
	types.OpBitXor: ir.OpXor,
	types.OpShl:    ir.OpShl,
	types.OpShr:    ir.OpShr,
	types.OpLt:     ir.OpClt,
	types.OpLe:     ir.OpCle,
	types.OpGt:     ir.OpCgt,
	types.OpGe:     ir.OpCge,
	types.OpEq:     ir.OpCeq,
	types.OpNe:     ir.OpCne,
}

// expr lowers n so that it leaves its value on the stack, or nothing for
// void calls.
func (c *ctx) expr(n ast.Node) {
	switch v := n.(type) {
	case *ast.Const:
		if v.Tok.Const == types.ConstNull {
			c.emit(ir.OpLdnull, nil, nil)
			return
		}
		c.emit(ir.OpLdc, v.Type, ir.Lit{Tok: v.Tok})
	case *ast.Ident:
		c.fetch(c.place(v))
	case *ast.Unary:
		c.unary(v)
	case *ast.Binary:
		c.binary(v)
	case *ast.Call:
		c.call(v, nil)
	case *ast.New:
		for _, a := range v.Call.Args {
			c.expr(a)
		}
		var ctor *types.Method
		if v.Ref != nil {
			ctor = v.Ref.(*types.Method)
		}
		c.emit(ir.OpNewobj, nil, ir.Ctor{Class: v.Type.(*types.Class), Method: ctor})
	case *ast.NewArray:
		c.expr(v.Size)
		c.emit(ir.OpNewarr, nil, ir.TypeRef{Type: types.ElemOf(v.Type.(types.Array))})
	case *ast.Cast:
		c.expr(v.X)
		c.emit(ir.OpConv, ast.TypeOf(v.X), ir.TypeRef{Type: v.Type})
	default:
		c.sink.Internal(types.Span{}, "cannot lower expression %T", n)
	}
}

func (c *ctx) unary(v *ast.Unary) {
	switch v.Op.Kind {
	case types.OpPreInc, types.OpPreDec, types.OpPostInc, types.OpPostDec:
		keep(v)
		c.step(v)
	case types.OpPlus:
		c.expr(v.X)
	case types.OpNeg:
		c.expr(v.X)
		c.emit(ir.OpNeg, v.Type, nil)
	case types.OpNot, types.OpBitNot:
		c.expr(v.X)
		c.emit(ir.OpNot, v.Type, nil)
	default:
		c.sink.Internal(v.Pos, "cannot lower unary %s", v.Op.Kind)
	}
}

func (c *ctx) binary(v *ast.Binary) {
	switch {
	case v.Op.IsAssign():
		keep(v)
		c.assign(v)
		return
	case v.Op.Kind == types.OpMember:
		c.member(v)
		return
	case v.Op.Kind == types.OpIndex:
		c.fetch(c.place(v))
		return
	case v.Op.Kind == types.OpLogAnd || v.Op.Kind == types.OpLogOr:
		c.shortCircuit(v)
		return
	}

	c.expr(v.L)
	c.expr(v.R)
	if v.Op.Kind == types.OpAdd && types.IsKind(v.Type, types.String) {
		c.emit(ir.OpConcat, v.Type, nil)
		return
	}
	op, ok := binaryOps[v.Op.Kind]
	if !ok {
		c.sink.Internal(v.Pos, "cannot lower binary %s", v.Op.Kind)
	}
	t := v.Type
	if op >= ir.OpCeq && op <= ir.OpCge {
		// comparisons are typed by their operands; against null they
		// compare references
		t = ast.TypeOf(v.L)
		if types.IsKind(ast.TypeOf(v.R), types.Null) {
			t = types.NullType
		}
	}
	c.emit(op, t, nil)
}

// shortCircuit keeps the left operand as the result when it decides the
// outcome and replaces it with the right one otherwise.
func (c *ctx) shortCircuit(v *ast.Binary) {
	done := c.f.NewLabel("sc.done")
	c.expr(v.L)
	c.emit(ir.OpDup, nil, nil)
	if v.Op.Kind == types.OpLogAnd {
		c.f.Jump(ir.OpJf, done)
	} else {
		c.f.Jump(ir.OpJt, done)
	}
	c.emit(ir.OpPop, nil, nil)
	c.expr(v.R)
	c.f.Mark(done)
}

func (c *ctx) member(v *ast.Binary) {
	if _, ok := ast.TypeOf(v.L).(types.Array); ok {
		c.expr(v.L)
		c.emit(ir.OpLdlen, nil, nil)
		return
	}
	if call, ok := v.R.(*ast.Call); ok {
		c.call(call, v.L)
		return
	}
	c.fetch(c.place(v))
}

// call pushes the receiver (recv, or this when recv is nil) for instance
// methods, then the arguments.
func (c *ctx) call(v *ast.Call, recv ast.Node) {
	m := v.Ref.(*types.Method)
	if !m.Static {
		if recv == nil {
			c.emit(ir.OpLdarg, nil, ir.Ref{Referent: c.method.This})
		} else {
			c.expr(recv)
		}
	}
	for _, a := range v.Args {
		c.expr(a)
	}
	c.emit(ir.OpCall, nil, ir.Ref{Referent: m})
}

// assign stores v.R into v.L. With Reload set the stored value is left on
// the stack afterwards.
func (c *ctx) assign(v *ast.Binary) {
	p := c.place(v.L)
	c.address(p, false)
	c.expr(v.R)
	switch {
	case !v.Reload:
		c.store(p)
	case p.direct():
		c.store(p)
		c.load(p)
	default:
		tmp := c.temp(p.typ)
		c.emit(ir.OpDup, nil, nil)
		c.emit(ir.OpStloc, nil, ir.Ref{Referent: tmp})
		c.store(p)
		c.emit(ir.OpLdloc, nil, ir.Ref{Referent: tmp})
	}
}

// step lowers ++ and --. As a value, the postfix forms leave the old value
// and the prefix forms the new one.
func (c *ctx) step(v *ast.Unary) {
	p := c.place(v.X)
	t := v.Type
	op := ir.OpAdd
	if v.Op.Kind == types.OpPreDec || v.Op.Kind == types.OpPostDec {
		op = ir.OpSub
	}
	post := v.Op.Kind == types.OpPostInc || v.Op.Kind == types.OpPostDec
	lit := types.Token{Kind: types.CONST, Text: "1", Const: constKind(t)}
	if lit.Const == types.ConstChar {
		lit.Text = "\x01"
	}
	one := func() {
		c.emit(ir.OpLdc, t, ir.Lit{Tok: lit})
		c.emit(op, t, nil)
	}

	if p.direct() {
		c.load(p)
		if v.Reload && post {
			c.load(p)
		}
		one()
		c.store(p)
		if v.Reload && !post {
			c.load(p)
		}
		return
	}

	c.address(p, true)
	c.again(p)
	c.load(p)
	var tmp *types.Local
	if v.Reload {
		tmp = c.temp(t)
	}
	if v.Reload && post {
		c.emit(ir.OpDup, nil, nil)
		c.emit(ir.OpStloc, nil, ir.Ref{Referent: tmp})
	}
	one()
	if v.Reload && !post {
		c.emit(ir.OpDup, nil, nil)
		c.emit(ir.OpStloc, nil, ir.Ref{Referent: tmp})
	}
	c.store(p)
	if v.Reload {
		c.emit(ir.OpLdloc, nil, ir.Ref{Referent: tmp})
	}
}

var constKinds = map[types.Kind]types.ConstKind{
	types.Char:   types.ConstChar,
	types.Int8:   types.ConstInt8,
	types.UInt8:  types.ConstUInt8,
	types.Int16:  types.ConstInt16,
	types.UInt16: types.ConstUInt16,
	types.Int32:  types.ConstInt32,
	types.UInt32: types.ConstUInt32,
	types.Int64:  types.ConstInt64,
	types.UInt64: types.ConstUInt64,
	types.Double: types.ConstDouble,
}

func constKind(t types.Type) types.ConstKind {
	return constKinds[types.Ordinal(t)]
}
