package resolver

import (
	"fmt"

	"github.com/andrewsen/ucompiler-sub000/ast"
	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/types"
)

var constTypes = map[types.ConstKind]types.Kind{
	types.ConstChar:   types.Char,
	types.ConstInt8:   types.Int8,
	types.ConstUInt8:  types.UInt8,
	types.ConstInt16:  types.Int16,
	types.ConstUInt16: types.UInt16,
	types.ConstInt32:  types.Int32,
	types.ConstUInt32: types.UInt32,
	types.ConstInt64:  types.Int64,
	types.ConstUInt64: types.UInt64,
	types.ConstDouble: types.Double,
	types.ConstBool:   types.Bool,
	types.ConstString: types.String,
	types.ConstNull:   types.Null,
}

// expr resolves n and its children and returns the type of n.
func (r *Resolver) expr(n ast.Node) types.Type {
	if n == nil {
		return types.VoidType
	}
	var t types.Type
	switch v := n.(type) {
	case *ast.Const:
		kind, ok := constTypes[v.Tok.Const]
		if !ok {
			r.sink.Internal(v.Pos, "constant %q has no kind", v.Tok.Text)
		}
		t = types.Primitive{Kind: kind}
	case *ast.Ident:
		t = r.ident(v)
	case *ast.Unary:
		t = r.unary(v)
	case *ast.Binary:
		t = r.binary(v)
	case *ast.Call:
		t = r.call(v, r.class, false)
	case *ast.New:
		t = r.newObject(v)
	case *ast.NewArray:
		t = r.newArray(v)
	case *ast.Cast:
		t = v.Type
	default:
		r.sink.Internal(types.Span{}, "unknown expression %T", n)
	}
	n.Info().Type = t
	return t
}

func (r *Resolver) ident(v *ast.Ident) types.Type {
	name := v.Name()
	if l := r.lookupLocal(name); l != nil {
		v.Ref = l
		return l.Type
	}
	if p := r.lookupParam(name); p != nil {
		v.Ref = p
		return p.Type
	}
	if name == "this" {
		if r.method.This == nil {
			r.sink.AddFatal("'this' is not available in a static method", errors.Naming, v.Pos)
		}
		v.Ref = r.method.This
		return r.class
	}
	if r.class != nil {
		if f := r.class.LookupField(name); f != nil {
			r.checkStatic(f.Static, name, v.Pos)
			v.Ref = f
			return f.Type
		}
		if p := r.class.LookupProperty(name); p != nil {
			r.checkStatic(p.Static, name, v.Pos)
			v.Ref = p
			return p.Type
		}
		if len(r.class.Overloads(name)) > 0 {
			r.sink.AddFatal(fmt.Sprintf("method '%s' used as a value", name), errors.Type, v.Pos)
		}
	}
	if c := r.registry.Class(name); c != nil {
		// a class name on the left of '.' names its static members
		return c
	}
	r.sink.Fail(errors.Undeclared{Name: name, Location: v.Pos}, errors.Naming)
	return nil
}

// checkStatic rejects instance members named from a static method.
func (r *Resolver) checkStatic(static bool, name string, at types.Span) {
	if !static && r.method.Static {
		r.sink.AddFatal(fmt.Sprintf("instance member '%s' used in a static method", name), errors.Naming, at)
	}
}

// IsTypeName reports whether n names a class rather than a value.
func IsTypeName(n ast.Node) bool {
	id, ok := n.(*ast.Ident)
	if !ok || id.Ref != nil {
		return false
	}
	_, isClass := id.Type.(*types.Class)
	return isClass
}

func (r *Resolver) unary(v *ast.Unary) types.Type {
	t := r.expr(v.X)
	r.value(v.X)
	r.readable(v.X)

	var table *types.Vector
	var name string
	switch v.Op.Kind {
	case types.OpNeg:
		table, name = &types.Negate, "negate"
	case types.OpPlus:
		table, name = &types.UnaryPlus, "unary plus"
	case types.OpBitNot:
		table, name = &types.Complement, "complement"
	case types.OpNot:
		table, name = &types.LogicalNot, "logical not"
	case types.OpPreInc, types.OpPreDec, types.OpPostInc, types.OpPostDec:
		table, name = &types.Step, "step"
		r.assignable(v.X)
	default:
		r.sink.Internal(v.Pos, "unary operator %s", v.Op.Kind)
	}

	kind, err := table.At(name, types.Ordinal(t))
	if err != nil {
		r.sink.Internal(v.Pos, "%v", err)
	}
	if kind == types.Void {
		r.sink.Fail(errors.OperatorMismatch{Op: v.Op.Kind, Left: t, Location: v.Pos}, errors.Type)
	}
	result := types.Primitive{Kind: kind}
	if !v.Op.IsIncDec() {
		v.X = widen(v.X, result)
	}
	return result
}

// value rejects operands that do not produce a value.
func (r *Resolver) value(n ast.Node) {
	if types.IsVoid(ast.TypeOf(n)) {
		r.sink.AddFatal("a void expression has no value", errors.Type, n.Info().Pos)
	}
	r.notType(n)
}

// notType rejects a bare class name where an expression is expected.
func (r *Resolver) notType(n ast.Node) {
	if IsTypeName(n) {
		r.sink.AddFatal(fmt.Sprintf("'%s' is a type, not a value", ast.TypeOf(n)), errors.Type, n.Info().Pos)
	}
}

// assignable reports a node that cannot be stored to.
func (r *Resolver) assignable(n ast.Node) {
	ok := false
	switch v := n.(type) {
	case *ast.Ident:
		switch ref := v.Ref.(type) {
		case *types.Local, *types.Field:
			ok = true
		case *types.Param:
			ok = ref.Name != "this"
		case *types.Property:
			ok = ref.Setter != nil
		}
	case *ast.Binary:
		switch v.Op.Kind {
		case types.OpIndex:
			ok = true
		case types.OpMember:
			switch ref := v.Ref.(type) {
			case *types.Field:
				ok = true
			case *types.Property:
				ok = ref.Setter != nil
			}
		}
	}
	if !ok {
		r.sink.AddError(fmt.Sprintf("cannot assign to %s", ast.String(n)), errors.Type, n.Info().Pos)
	}
}

// readable reports a property without a getter used as a value.
func (r *Resolver) readable(n ast.Node) {
	if p, ok := n.Info().Ref.(*types.Property); ok && p.Getter == nil {
		r.sink.AddError(fmt.Sprintf("property '%s' has no getter", p.Name), errors.Type, n.Info().Pos)
	}
}

func (r *Resolver) binary(v *ast.Binary) types.Type {
	switch {
	case v.Op.Kind == types.OpMember:
		return r.member(v)
	case v.Op.Kind == types.OpIndex:
		return r.index(v)
	case v.Op.IsAssign():
		return r.assign(v)
	}

	lt := r.expr(v.L)
	rt := r.expr(v.R)
	r.value(v.L)
	r.value(v.R)
	r.readable(v.L)
	r.readable(v.R)

	table, name := family(v.Op.Kind, lt, rt)
	kind, err := table.At(name, types.Ordinal(lt), types.Ordinal(rt))
	if err == nil && kind == types.Void {
		lt, rt = narrowOperand(v.L, v.R, lt, rt)
		kind, err = table.At(name, types.Ordinal(lt), types.Ordinal(rt))
	}
	if err != nil {
		r.sink.Internal(v.Pos, "%v", err)
	}
	if kind == types.Void {
		r.sink.Fail(errors.OperatorMismatch{Op: v.Op.Kind, Left: lt, Right: rt, Location: v.Pos}, errors.Type)
	}
	result := types.Primitive{Kind: kind}

	switch name {
	case "arithmetic", "modulo/bitwise":
		v.L = widen(v.L, result)
		v.R = widen(v.R, result)
	case "shift":
		v.L = widen(v.L, result)
		v.R = widen(v.R, types.Int32Type)
	case "concatenation":
		v.L = widen(v.L, types.StringType)
		v.R = widen(v.R, types.StringType)
	case "comparison", "equality":
		if common, err := types.Arith.At("arithmetic", types.Ordinal(lt), types.Ordinal(rt)); err == nil && common != types.Void {
			v.L = widen(v.L, types.Primitive{Kind: common})
			v.R = widen(v.R, types.Primitive{Kind: common})
		}
	}
	return result
}

// family picks the table an operator is typed with.
func family(op types.OpKind, lt, rt types.Type) (*types.Matrix, string) {
	bothBool := types.IsKind(lt, types.Bool) && types.IsKind(rt, types.Bool)
	switch op {
	case types.OpAdd:
		if types.IsKind(lt, types.String) || types.IsKind(rt, types.String) {
			return &types.Concat, "concatenation"
		}
		return &types.Arith, "arithmetic"
	case types.OpSub, types.OpMul, types.OpDiv:
		return &types.Arith, "arithmetic"
	case types.OpBitAnd, types.OpBitOr, types.OpBitXor:
		if bothBool {
			return &types.Logical, "logical"
		}
		return &types.ModBit, "modulo/bitwise"
	case types.OpMod:
		return &types.ModBit, "modulo/bitwise"
	case types.OpShl, types.OpShr:
		return &types.Shift, "shift"
	case types.OpLt, types.OpLe, types.OpGt, types.OpGe:
		return &types.Compare, "comparison"
	case types.OpEq, types.OpNe:
		return &types.Equality, "equality"
	}
	return &types.Logical, "logical"
}

// narrowOperand gives an integer constant operand the type of the other
// side when the pair has no table cell, as in ulong > 0.
func narrowOperand(l, r ast.Node, lt, rt types.Type) (types.Type, types.Type) {
	if p, ok := lt.(types.Primitive); ok && fits(r, p.Kind) {
		retype(r, lt)
		return lt, lt
	}
	if p, ok := rt.(types.Primitive); ok && fits(l, p.Kind) {
		retype(l, rt)
		return rt, rt
	}
	return lt, rt
}

// widen wraps n in a cast when its type differs from to. Callers have
// already checked the conversion against a table.
func widen(n ast.Node, to types.Type) ast.Node {
	if types.Equal(ast.TypeOf(n), to) {
		return n
	}
	return &ast.Cast{Base: ast.Base{Pos: n.Info().Pos, Type: to}, X: n}
}

func (r *Resolver) assign(v *ast.Binary) types.Type {
	lt := r.expr(v.L)
	r.assignable(v.L)
	rt := r.expr(v.R)
	r.value(v.R)
	r.readable(v.R)

	if local, ok := v.L.Info().Ref.(*types.Local); ok {
		if _, inferred := local.Type.(types.Inferred); inferred {
			if types.IsKind(rt, types.Null) || types.Equal(rt, types.Inferred{}) {
				r.sink.AddFatal(fmt.Sprintf("cannot infer the type of '%s' from %s", local.Name, rt), errors.Type, v.Pos)
			}
			plog.Tracef("local %s inferred as %s", local.Name, rt)
			local.Type = rt
			lt = rt
			v.L.Info().Type = rt
		}
	}

	lp, lprim := lt.(types.Primitive)
	rp, rprim := rt.(types.Primitive)
	if lprim && rprim {
		kind, err := types.Assign.At("assignment", lp.Kind, rp.Kind)
		if err != nil {
			r.sink.Internal(v.Pos, "%v", err)
		}
		if kind == types.Void && !fits(v.R, lp.Kind) {
			r.sink.Fail(errors.NoConversion{From: rt, To: lt, Location: v.R.Info().Pos}, errors.Type)
		}
	}
	v.R = Coerce(r.sink, v.R, lt)
	return lt
}

// member resolves L.R: L first, then R against L's class.
func (r *Resolver) member(v *ast.Binary) types.Type {
	lt := r.expr(v.L)
	static := IsTypeName(v.L)
	if !static {
		r.value(v.L)
		r.readable(v.L)
	}

	if _, ok := lt.(types.Array); ok {
		if id, isIdent := v.R.(*ast.Ident); isIdent && id.Name() == "Length" {
			id.Type = types.Int32Type
			return types.Int32Type
		}
		r.sink.AddFatal(fmt.Sprintf("arrays have no member %s", ast.String(v.R)), errors.Naming, v.R.Info().Pos)
	}

	kind, err := types.Member.At("member access", types.Ordinal(lt), types.Void)
	if err != nil {
		r.sink.Internal(v.Pos, "%v", err)
	}
	class, isClass := lt.(*types.Class)
	if kind != types.PassThrough || !isClass {
		r.sink.AddFatal(fmt.Sprintf("'%s' has no members", lt), errors.Type, v.L.Info().Pos)
	}

	switch m := v.R.(type) {
	case *ast.Ident:
		t := r.field(class, m, static)
		v.Ref = m.Ref
		return t
	case *ast.Call:
		t := r.call(m, class, true)
		m.Type = t
		if static && !m.Ref.(*types.Method).Static {
			r.sink.AddFatal(fmt.Sprintf("'%s' needs an instance of %s", m.Callee.Name(), class), errors.Naming, m.Pos)
		}
		v.Ref = m.Ref
		return t
	}
	r.sink.AddFatal(fmt.Sprintf("expected a member name after '.', got %s", ast.String(v.R)), errors.Shape, v.R.Info().Pos)
	return nil
}

func (r *Resolver) field(class *types.Class, id *ast.Ident, static bool) types.Type {
	name := id.Name()
	var t types.Type
	var isStatic bool
	if f := class.LookupField(name); f != nil {
		id.Ref, t, isStatic = f, f.Type, f.Static
	} else if p := class.LookupProperty(name); p != nil {
		id.Ref, t, isStatic = p, p.Type, p.Static
	} else {
		r.sink.AddFatal(fmt.Sprintf("%s has no field or property '%s'", class, name), errors.Naming, id.Pos)
	}
	if static && !isStatic {
		r.sink.AddFatal(fmt.Sprintf("'%s' needs an instance of %s", name, class), errors.Naming, id.Pos)
	}
	id.Type = t
	return t
}

func (r *Resolver) index(v *ast.Binary) types.Type {
	lt := r.expr(v.L)
	r.value(v.L)
	r.readable(v.L)
	it := r.expr(v.R)
	r.value(v.R)

	arr, ok := lt.(types.Array)
	if !ok {
		r.sink.AddFatal(fmt.Sprintf("cannot index a value of type %s", lt), errors.Type, v.L.Info().Pos)
	}
	if p, isPrim := it.(types.Primitive); !isPrim || !p.Kind.IsIntegral() {
		r.sink.AddFatal(fmt.Sprintf("array index must be an integer, not %s", it), errors.Type, v.R.Info().Pos)
	}
	v.R = Coerce(r.sink, v.R, types.Int32Type)
	return types.ElemOf(arr)
}

// call resolves the arguments first, then the overload among the methods
// of class.
func (r *Resolver) call(c *ast.Call, class *types.Class, member bool) types.Type {
	for _, a := range c.Args {
		r.expr(a)
		r.value(a)
		r.readable(a)
	}
	name := c.Callee.Name()
	if class == nil {
		r.sink.Fail(errors.Undeclared{Name: name, Location: c.Callee.Pos}, errors.Naming)
	}
	m := r.pick(name, class.Overloads(name), c.Args, c.Pos)
	if !member {
		r.checkStatic(m.Static, name, c.Callee.Pos)
	}
	r.convertArgs(c, m)
	c.Ref = m
	c.Callee.Ref = m
	return m.Returns
}

func (r *Resolver) convertArgs(c *ast.Call, m *types.Method) {
	for i, p := range m.Params {
		c.Args[i] = Coerce(r.sink, c.Args[i], p.Type)
	}
}

func (r *Resolver) newObject(v *ast.New) types.Type {
	name := v.Call.Callee.Name()
	class := r.registry.Class(name)
	if class == nil {
		r.sink.AddFatal(fmt.Sprintf("unknown class '%s'", name), errors.Naming, v.Call.Callee.Pos)
	}
	for _, a := range v.Call.Args {
		r.expr(a)
		r.value(a)
		r.readable(a)
	}
	v.Call.Type = class
	if len(class.Constructors) == 0 && len(v.Call.Args) == 0 {
		// implicit parameterless constructor
		return class
	}
	ctor := r.pick(name, class.Constructors, v.Call.Args, v.Pos)
	r.convertArgs(v.Call, ctor)
	v.Ref = ctor
	v.Call.Ref = ctor
	return class
}

func (r *Resolver) newArray(v *ast.NewArray) types.Type {
	elem, ok := r.registry.Lookup(v.Elem)
	if !ok {
		r.sink.AddFatal(fmt.Sprintf("unknown type '%s'", v.Elem), errors.Naming, v.Pos)
	}
	if types.IsVoid(elem) {
		r.sink.AddFatal("cannot create an array of void", errors.Type, v.Pos)
	}
	st := r.expr(v.Size)
	r.value(v.Size)
	if p, isPrim := st.(types.Primitive); !isPrim || !p.Kind.IsIntegral() {
		r.sink.AddFatal(fmt.Sprintf("array size must be an integer, not %s", st), errors.Type, v.Size.Info().Pos)
	}
	v.Size = Coerce(r.sink, v.Size, types.Int32Type)

	arr := types.ArrayOf(elem)
	arr.Dims += v.Dims
	return arr
}
