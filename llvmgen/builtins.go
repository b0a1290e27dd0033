package llvmgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Runtime support the generated code calls into. They are declared on
// first use and provided by the runtime library at link time.
const (
	rtAlloc          = "ucompiler_alloc"
	rtConcat         = "ucompiler_concat"
	rtStrCmp         = "ucompiler_strcmp"
	rtIntToString    = "ucompiler_int_to_string"
	rtUIntToString   = "ucompiler_uint_to_string"
	rtDoubleToString = "ucompiler_double_to_string"
	rtCharToString   = "ucompiler_char_to_string"
	rtBoolToString   = "ucompiler_bool_to_string"
)

type signature struct {
	ret    lltypes.Type
	params []lltypes.Type
}

var builtins = map[string]signature{
	rtAlloc:          {RawPtr, []lltypes.Type{Int64}},
	rtConcat:         {StringPointer, []lltypes.Type{StringPointer, StringPointer}},
	rtStrCmp:         {Int32, []lltypes.Type{StringPointer, StringPointer}},
	rtIntToString:    {StringPointer, []lltypes.Type{Int64}},
	rtUIntToString:   {StringPointer, []lltypes.Type{Int64}},
	rtDoubleToString: {StringPointer, []lltypes.Type{Double}},
	rtCharToString:   {StringPointer, []lltypes.Type{Int16}},
	rtBoolToString:   {StringPointer, []lltypes.Type{Boolean}},
}

func (g *Generator) builtin(name string) *ir.Func {
	if fn, ok := g.runtime[name]; ok {
		return fn
	}
	sig, ok := builtins[name]
	if !ok {
		g.fail("no runtime function %s", name)
	}
	var params []*ir.Param
	for _, p := range sig.params {
		params = append(params, ir.NewParam("", p))
	}
	fn := g.m.NewFunc(name, sig.ret, params...)
	g.runtime[name] = fn
	return fn
}

func getStructElm(b *ir.Block, t lltypes.Type, v value.Value, idx int64) value.Value {
	return b.NewGetElementPtr(t, v, constant.NewInt(lltypes.I32, 0), constant.NewInt(lltypes.I32, idx))
}

// sizeOf is the classic getelementptr null, 1 size expression.
func sizeOf(t lltypes.Type) constant.Constant {
	end := constant.NewGetElementPtr(t, constant.NewNull(lltypes.NewPointer(t)), constant.NewInt(lltypes.I32, 1))
	return constant.NewPtrToInt(end, Int64)
}

// alloc allocates a zeroed value of t and returns it typed as a t*.
func (g *Generator) alloc(b *ir.Block, t lltypes.Type) value.Value {
	raw := b.NewCall(g.builtin(rtAlloc), sizeOf(t))
	return b.NewBitCast(raw, lltypes.NewPointer(t))
}
