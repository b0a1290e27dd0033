package resolver

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/andrewsen/ucompiler-sub000/ast"
	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/types"
)

// Convertible reports whether the resolved node n can be used where to is
// expected, counting integer constants that fit the target.
func Convertible(n ast.Node, to types.Type) bool {
	if types.Convertible(ast.TypeOf(n), to) {
		return true
	}
	p, ok := to.(types.Primitive)
	return ok && fits(n, p.Kind)
}

// Coerce returns n converted to to: unchanged when the types already agree
// or the conversion is a reference conversion, retyped when n is an integer
// constant that fits, and wrapped in a cast otherwise. A missing
// conversion is fatal.
func Coerce(sink *errors.Sink, n ast.Node, to types.Type) ast.Node {
	from := ast.TypeOf(n)
	if types.Equal(from, to) {
		return n
	}
	target, toPrim := to.(types.Primitive)
	if toPrim && fits(n, target.Kind) && !types.Convertible(from, to) {
		retype(n, to)
		return n
	}
	if !types.Convertible(from, to) {
		sink.Fail(errors.NoConversion{From: from, To: to, Location: n.Info().Pos}, errors.Type)
	}
	if _, fromPrim := from.(types.Primitive); !toPrim || !fromPrim || target.Kind == types.Object || types.IsKind(from, types.Null) {
		return n
	}
	return &ast.Cast{Base: ast.Base{Pos: n.Info().Pos, Type: to}, X: n}
}

// constValue reads an integer constant, possibly negated.
func constValue(n ast.Node) (neg bool, mag uint64, ok bool) {
	switch v := n.(type) {
	case *ast.Const:
		k := v.Tok.Const
		if k < types.ConstInt8 || k > types.ConstUInt64 {
			return false, 0, false
		}
		mag, err := strconv.ParseUint(strings.TrimPrefix(v.Tok.Text, "+"), 10, 64)
		return false, mag, err == nil
	case *ast.Unary:
		if v.Op.Kind != types.OpNeg {
			return false, 0, false
		}
		x := v.X
		if c, isCast := x.(*ast.Cast); isCast {
			x = c.X
		}
		neg, mag, ok := constValue(x)
		return !neg, mag, ok
	}
	return false, 0, false
}

var limits = map[types.Kind]struct {
	min int64
	max uint64
}{
	types.Char:   {0, math.MaxUint16},
	types.Int8:   {math.MinInt8, math.MaxInt8},
	types.UInt8:  {0, math.MaxUint8},
	types.Int16:  {math.MinInt16, math.MaxInt16},
	types.UInt16: {0, math.MaxUint16},
	types.Int32:  {math.MinInt32, math.MaxInt32},
	types.UInt32: {0, math.MaxUint32},
	types.Int64:  {math.MinInt64, math.MaxInt64},
	types.UInt64: {0, math.MaxUint64},
}

// fits reports an integer constant whose value is representable in kind.
// Char is excluded: integers never become chars implicitly.
func fits(n ast.Node, kind types.Kind) bool {
	if kind == types.Char {
		return false
	}
	lim, ok := limits[kind]
	if !ok {
		return false
	}
	neg, mag, isConst := constValue(n)
	if !isConst {
		return false
	}
	if neg {
		return mag <= uint64(-(lim.min+1))+1
	}
	return mag <= lim.max
}

// retype gives a fitting constant (and a negation around it) the target type.
func retype(n ast.Node, to types.Type) {
	n.Info().Type = to
	if u, ok := n.(*ast.Unary); ok {
		if c, isCast := u.X.(*ast.Cast); isCast {
			u.X = c.X
		}
		retype(u.X, to)
	}
}

// pick selects the overload for args: exact matches first, then
// candidates reachable by implicit conversions.
func (r *Resolver) pick(name string, cands []*types.Method, args []ast.Node, at types.Span) *types.Method {
	var exact, widening []*types.Method
	for _, m := range cands {
		if len(m.Params) != len(args) {
			continue
		}
		same, conv := true, true
		for i, p := range m.Params {
			if !types.Equal(ast.TypeOf(args[i]), p.Type) {
				same = false
			}
			if !Convertible(args[i], p.Type) {
				conv = false
			}
		}
		if same {
			exact = append(exact, m)
		} else if conv {
			widening = append(widening, m)
		}
	}

	found := exact
	if len(found) == 0 {
		found = widening
	}
	switch len(found) {
	case 0:
		r.sink.AddFatal(fmt.Sprintf("no overload of %s accepts (%s)", name, argTypes(args)), errors.Overload, at)
	case 1:
	default:
		var sigs []string
		for _, m := range found {
			sigs = append(sigs, m.Signature())
		}
		r.sink.AddError(fmt.Sprintf("call to %s(%s) is ambiguous between %s", name, argTypes(args), strings.Join(sigs, " and ")), errors.Overload, at)
	}
	plog.Tracef("%s(%s) -> %s", name, argTypes(args), found[0].Signature())
	return found[0]
}

func argTypes(args []ast.Node) string {
	var s []string
	for _, a := range args {
		s = append(s, fmt.Sprint(ast.TypeOf(a)))
	}
	return strings.Join(s, ", ")
}
