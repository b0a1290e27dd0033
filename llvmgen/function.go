package llvmgen

import (
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	lowered "github.com/andrewsen/ucompiler-sub000/ir"
	"github.com/andrewsen/ucompiler-sub000/types"
)

type spill struct {
	label *lowered.Label
	index int
}

// function renders one lowered method. The operand stack becomes SSA
// values; values still on the stack at a label travel through spill slots.
type function struct {
	g  *Generator
	f  *lowered.Func
	fn *ir.Func

	entry *ir.Block
	cur   *ir.Block
	live  bool
	stack []value.Value

	args   map[int]*ir.InstAlloca
	locals map[int]*ir.InstAlloca
	blocks map[*lowered.Label]*ir.Block
	depth  map[*lowered.Label]int
	spills map[spill]*ir.InstAlloca
}

func newFunction(g *Generator, f *lowered.Func) *function {
	return &function{
		g:      g,
		f:      f,
		fn:     g.declare(f.Method),
		args:   map[int]*ir.InstAlloca{},
		locals: map[int]*ir.InstAlloca{},
		blocks: map[*lowered.Label]*ir.Block{},
		depth:  map[*lowered.Label]int{},
		spills: map[spill]*ir.InstAlloca{},
	}
}

func (r *function) render() {
	r.entry = r.fn.NewBlock("entry")
	body := r.fn.NewBlock("body")

	for i, p := range r.fn.Params {
		slot := r.entry.NewAlloca(p.Type())
		r.entry.NewStore(p, slot)
		r.args[i] = slot
	}
	for _, l := range r.f.Locals {
		r.locals[l.Slot] = r.entry.NewAlloca(r.g.llType(l.Type))
	}

	r.cur, r.live = body, true
	for _, in := range r.f.Code {
		if !r.live && in.Op != lowered.OpLabel {
			continue
		}
		r.instruction(in)
	}
	if r.live {
		if types.IsVoid(r.f.Method.Returns) {
			r.cur.NewRet(nil)
		} else {
			r.cur.NewUnreachable()
		}
	}
	r.entry.NewBr(body)
}

func (r *function) push(v value.Value) {
	r.stack = append(r.stack, v)
}

func (r *function) pop() value.Value {
	if len(r.stack) == 0 {
		r.g.fail("%s: operand stack underflow", r.f.Method.Signature())
	}
	v := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	return v
}

func (r *function) popN(n int) []value.Value {
	vals := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		vals[i] = r.pop()
	}
	return vals
}

func (r *function) block(l *lowered.Label) *ir.Block {
	if b, ok := r.blocks[l]; ok {
		return b
	}
	b := r.fn.NewBlock(l.String())
	r.blocks[l] = b
	return b
}

// leave hands the current stack to the code at l.
func (r *function) leave(l *lowered.Label) {
	d, seen := r.depth[l]
	if !seen {
		r.depth[l] = len(r.stack)
	} else if d != len(r.stack) {
		r.g.fail("%s: %s reached with %d values on the stack, earlier with %d", r.f.Method.Signature(), l, len(r.stack), d)
	}
	for i, v := range r.stack {
		key := spill{l, i}
		slot, ok := r.spills[key]
		if !ok {
			slot = r.entry.NewAlloca(v.Type())
			r.spills[key] = slot
		}
		r.cur.NewStore(v, slot)
	}
}

func (r *function) enter(l *lowered.Label) {
	if r.live {
		r.leave(l)
		r.cur.NewBr(r.block(l))
	}
	r.cur, r.live = r.block(l), true
	r.stack = nil
	for i := 0; i < r.depth[l]; i++ {
		slot := r.spills[spill{l, i}]
		r.push(r.cur.NewLoad(slot.ElemType, slot))
	}
}

func slotOf(ref lowered.Operand) int {
	switch v := ref.(lowered.Ref).Referent.(type) {
	case *types.Local:
		return v.Slot
	case *types.Param:
		return v.Slot
	}
	return -1
}

// fit reconciles pointer types that differ only nominally, such as null or
// a derived class stored where a base class is expected.
func (r *function) fit(v value.Value, t lltypes.Type) value.Value {
	if v.Type().Equal(t) {
		return v
	}
	if lltypes.IsPointer(v.Type()) && lltypes.IsPointer(t) {
		return r.cur.NewBitCast(v, t)
	}
	return v
}

func (r *function) load(slot *ir.InstAlloca) {
	r.push(r.cur.NewLoad(slot.ElemType, slot))
}

func (r *function) store(slot *ir.InstAlloca) {
	r.cur.NewStore(r.fit(r.pop(), slot.ElemType), slot)
}

func (r *function) field(in lowered.Instruction) (value.Value, lltypes.Type) {
	f := in.Arg.(lowered.Ref).Referent.(*types.Field)
	st := r.g.classStruct(f.Owner)
	obj := r.fit(r.pop(), lltypes.NewPointer(st))
	return getStructElm(r.cur, st, obj, int64(r.g.fieldIndex[f])), r.g.llType(f.Type)
}

func (r *function) element(in lowered.Instruction) (value.Value, lltypes.Type) {
	idx := r.pop()
	arr := r.pop()
	st := arr.Type().(*lltypes.PointerType).ElemType.(*lltypes.StructType)
	elem := st.Fields[1].(*lltypes.PointerType).ElemType
	data := r.cur.NewLoad(st.Fields[1], getStructElm(r.cur, st, arr, 1))
	return r.cur.NewGetElementPtr(elem, data, idx), elem
}

func (r *function) instruction(in lowered.Instruction) {
	b := func() *ir.Block { return r.cur }
	switch in.Op {
	case lowered.OpNop:
	case lowered.OpDup:
		v := r.pop()
		r.push(v)
		r.push(v)
	case lowered.OpPop:
		r.pop()
	case lowered.OpLdc:
		r.push(r.constant(in))
	case lowered.OpLdnull:
		r.push(constant.NewNull(RawPtr))

	case lowered.OpLdarg:
		r.load(r.args[slotOf(in.Arg)])
	case lowered.OpStarg:
		r.store(r.args[slotOf(in.Arg)])
	case lowered.OpLdloc:
		r.load(r.locals[slotOf(in.Arg)])
	case lowered.OpStloc:
		r.store(r.locals[slotOf(in.Arg)])

	case lowered.OpLdfld:
		ptr, t := r.field(in)
		r.push(b().NewLoad(t, ptr))
	case lowered.OpStfld:
		v := r.pop()
		ptr, t := r.field(in)
		b().NewStore(r.fit(v, t), ptr)
	case lowered.OpLdsfld:
		glob := r.g.static(in.Arg.(lowered.Ref).Referent.(*types.Field))
		r.push(b().NewLoad(glob.ContentType, glob))
	case lowered.OpStsfld:
		glob := r.g.static(in.Arg.(lowered.Ref).Referent.(*types.Field))
		b().NewStore(r.fit(r.pop(), glob.ContentType), glob)

	case lowered.OpNewarr:
		elem := in.Arg.(lowered.TypeRef).Type
		r.newArray(types.ArrayOf(elem), elem)
	case lowered.OpLdelem:
		ptr, t := r.element(in)
		r.push(b().NewLoad(t, ptr))
	case lowered.OpStelem:
		v := r.pop()
		ptr, t := r.element(in)
		b().NewStore(r.fit(v, t), ptr)
	case lowered.OpLdlen:
		arr := r.pop()
		st := arr.Type().(*lltypes.PointerType).ElemType
		r.push(b().NewLoad(Int32, getStructElm(b(), st, arr, 0)))

	case lowered.OpNewobj:
		ctor := in.Arg.(lowered.Ctor)
		var args []value.Value
		if ctor.Method != nil {
			args = r.popN(len(ctor.Method.Params))
		}
		obj := r.g.alloc(b(), r.g.classStruct(ctor.Class))
		if ctor.Method != nil {
			r.call(ctor.Method, append([]value.Value{obj}, args...))
		}
		r.push(obj)
	case lowered.OpCall:
		m := in.Arg.(lowered.Ref).Referent.(*types.Method)
		n := len(m.Params)
		if m.This != nil {
			n++
		}
		if v := r.call(m, r.popN(n)); v != nil {
			r.push(v)
		}
	case lowered.OpConv:
		r.push(r.convert(r.pop(), in.Type, in.Arg.(lowered.TypeRef).Type))

	case lowered.OpNeg:
		x := r.pop()
		if types.IsKind(in.Type, types.Double) {
			r.push(b().NewFNeg(x))
		} else {
			r.push(b().NewSub(constant.NewInt(x.Type().(*lltypes.IntType), 0), x))
		}
	case lowered.OpNot:
		x := r.pop()
		r.push(b().NewXor(x, constant.NewInt(x.Type().(*lltypes.IntType), -1)))
	case lowered.OpConcat:
		y, x := r.pop(), r.pop()
		r.push(b().NewCall(r.g.builtin(rtConcat), x, y))
	case lowered.OpAdd, lowered.OpSub, lowered.OpMul, lowered.OpDiv, lowered.OpRem,
		lowered.OpAnd, lowered.OpOr, lowered.OpXor, lowered.OpShl, lowered.OpShr:
		y, x := r.pop(), r.pop()
		r.push(r.arith(in.Op, in.Type, x, y))
	case lowered.OpCeq, lowered.OpCne, lowered.OpClt, lowered.OpCle, lowered.OpCgt, lowered.OpCge:
		y, x := r.pop(), r.pop()
		r.push(r.compare(in.Op, in.Type, x, y))

	case lowered.OpLabel:
		r.enter(in.Arg.(lowered.LabelRef).Label)
	case lowered.OpJmp:
		l := in.Arg.(lowered.LabelRef).Label
		r.leave(l)
		b().NewBr(r.block(l))
		r.live = false
	case lowered.OpJt, lowered.OpJf:
		cond := r.pop()
		l := in.Arg.(lowered.LabelRef).Label
		r.leave(l)
		next := r.fn.NewBlock("")
		if in.Op == lowered.OpJt {
			b().NewCondBr(cond, r.block(l), next)
		} else {
			b().NewCondBr(cond, next, r.block(l))
		}
		r.cur = next
	case lowered.OpRet:
		if types.IsVoid(r.f.Method.Returns) {
			b().NewRet(nil)
		} else {
			b().NewRet(r.fit(r.pop(), r.fn.Sig.RetType))
		}
		r.live = false
	default:
		r.g.fail("cannot render %s", in.Op)
	}
}

func (r *function) call(m *types.Method, args []value.Value) value.Value {
	fn := r.g.declare(m)
	for i, p := range fn.Params {
		args[i] = r.fit(args[i], p.Type())
	}
	call := r.cur.NewCall(fn, args...)
	if types.IsVoid(m.Returns) {
		return nil
	}
	return call
}

func (r *function) newArray(arr types.Array, elem types.Type) {
	n := r.pop()
	st := r.g.arrayStruct(arr)
	et := r.g.llType(elem)

	header := r.g.alloc(r.cur, st)
	bytes := r.cur.NewMul(r.cur.NewSExt(n, Int64), constant.NewInt(Int64, r.g.size(elem)))
	raw := r.cur.NewCall(r.g.builtin(rtAlloc), bytes)
	data := r.cur.NewBitCast(raw, lltypes.NewPointer(et))

	r.cur.NewStore(n, getStructElm(r.cur, st, header, 0))
	r.cur.NewStore(data, getStructElm(r.cur, st, header, 1))
	r.push(header)
}

func (r *function) constant(in lowered.Instruction) value.Value {
	tok := in.Arg.(lowered.Lit).Tok
	t := r.g.llType(in.Type)
	switch types.Ordinal(in.Type) {
	case types.Bool:
		return constant.NewBool(tok.Text == "true")
	case types.String:
		return r.g.stringConst(tok.Text)
	case types.Char:
		return constant.NewInt(Int16, int64([]rune(tok.Text + "\x00")[0]))
	case types.Double:
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			r.g.fail("bad double constant %q", tok.Text)
		}
		return constant.NewFloat(Double, v)
	}
	it, ok := t.(*lltypes.IntType)
	if !ok {
		r.g.fail("constant %s of type %s", tok.Text, in.Type)
	}
	v, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(tok.Text, 10, 64)
		if uerr != nil {
			r.g.fail("bad integer constant %q", tok.Text)
		}
		v = int64(u)
	}
	return constant.NewInt(it, v)
}

// resize converts an integer between widths.
func (r *function) resize(x value.Value, to *lltypes.IntType, signed bool) value.Value {
	from := x.Type().(*lltypes.IntType)
	switch {
	case from.BitSize == to.BitSize:
		return x
	case from.BitSize > to.BitSize:
		return r.cur.NewTrunc(x, to)
	case signed:
		return r.cur.NewSExt(x, to)
	}
	return r.cur.NewZExt(x, to)
}

func (r *function) convert(x value.Value, from, to types.Type) value.Value {
	fk, tk := types.Ordinal(from), types.Ordinal(to)
	b := r.cur
	switch {
	case tk == types.String:
		switch {
		case fk == types.Double:
			return b.NewCall(r.g.builtin(rtDoubleToString), x)
		case fk == types.Char:
			return b.NewCall(r.g.builtin(rtCharToString), x)
		case fk == types.Bool:
			return b.NewCall(r.g.builtin(rtBoolToString), x)
		case fk.IsIntegral() && fk.IsSigned():
			return b.NewCall(r.g.builtin(rtIntToString), r.resize(x, Int64, true))
		case fk.IsIntegral():
			return b.NewCall(r.g.builtin(rtUIntToString), r.resize(x, Int64, false))
		}
		return r.fit(x, StringPointer)
	case tk == types.Double && fk.IsIntegral():
		if fk.IsSigned() {
			return b.NewSIToFP(x, Double)
		}
		return b.NewUIToFP(x, Double)
	case fk == types.Double && tk.IsIntegral():
		if tk.IsSigned() {
			return b.NewFPToSI(x, kindTypes[tk])
		}
		return b.NewFPToUI(x, kindTypes[tk])
	case fk.IsIntegral() && tk.IsIntegral():
		return r.resize(x, kindTypes[tk].(*lltypes.IntType), fk.IsSigned())
	}
	return r.fit(x, r.g.llType(to))
}

func (r *function) arith(op lowered.Opcode, t types.Type, x, y value.Value) value.Value {
	b := r.cur
	k := types.Ordinal(t)
	if k == types.Double {
		switch op {
		case lowered.OpAdd:
			return b.NewFAdd(x, y)
		case lowered.OpSub:
			return b.NewFSub(x, y)
		case lowered.OpMul:
			return b.NewFMul(x, y)
		case lowered.OpDiv:
			return b.NewFDiv(x, y)
		case lowered.OpRem:
			return b.NewFRem(x, y)
		}
		r.g.fail("%s on double", op)
	}

	signed := k.IsSigned()
	switch op {
	case lowered.OpAdd:
		return b.NewAdd(x, y)
	case lowered.OpSub:
		return b.NewSub(x, y)
	case lowered.OpMul:
		return b.NewMul(x, y)
	case lowered.OpDiv:
		if signed {
			return b.NewSDiv(x, y)
		}
		return b.NewUDiv(x, y)
	case lowered.OpRem:
		if signed {
			return b.NewSRem(x, y)
		}
		return b.NewURem(x, y)
	case lowered.OpAnd:
		return b.NewAnd(x, y)
	case lowered.OpOr:
		return b.NewOr(x, y)
	case lowered.OpXor:
		return b.NewXor(x, y)
	case lowered.OpShl:
		return b.NewShl(x, r.resize(y, x.Type().(*lltypes.IntType), false))
	case lowered.OpShr:
		y = r.resize(y, x.Type().(*lltypes.IntType), false)
		if signed {
			return b.NewAShr(x, y)
		}
		return b.NewLShr(x, y)
	}
	r.g.fail("%s is not arithmetic", op)
	return nil
}

var (
	signedPreds   = map[lowered.Opcode]enum.IPred{lowered.OpCeq: enum.IPredEQ, lowered.OpCne: enum.IPredNE, lowered.OpClt: enum.IPredSLT, lowered.OpCle: enum.IPredSLE, lowered.OpCgt: enum.IPredSGT, lowered.OpCge: enum.IPredSGE}
	unsignedPreds = map[lowered.Opcode]enum.IPred{lowered.OpCeq: enum.IPredEQ, lowered.OpCne: enum.IPredNE, lowered.OpClt: enum.IPredULT, lowered.OpCle: enum.IPredULE, lowered.OpCgt: enum.IPredUGT, lowered.OpCge: enum.IPredUGE}
	floatPreds    = map[lowered.Opcode]enum.FPred{lowered.OpCeq: enum.FPredOEQ, lowered.OpCne: enum.FPredUNE, lowered.OpClt: enum.FPredOLT, lowered.OpCle: enum.FPredOLE, lowered.OpCgt: enum.FPredOGT, lowered.OpCge: enum.FPredOGE}
)

func (r *function) compare(op lowered.Opcode, t types.Type, x, y value.Value) value.Value {
	b := r.cur
	switch k := types.Ordinal(t); {
	case k == types.Double:
		return b.NewFCmp(floatPreds[op], x, y)
	case k == types.String && x.Type().Equal(StringPointer) && y.Type().Equal(StringPointer):
		c := b.NewCall(r.g.builtin(rtStrCmp), x, y)
		return b.NewICmp(signedPreds[op], c, constant.NewInt(Int32, 0))
	case k == types.String || k == types.Object || k == types.Null:
		return b.NewICmp(unsignedPreds[op], r.fit(x, RawPtr), r.fit(y, RawPtr))
	case k.IsSigned():
		return b.NewICmp(signedPreds[op], x, y)
	}
	return b.NewICmp(unsignedPreds[op], x, y)
}
