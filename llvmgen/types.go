package llvmgen

import (
	"sort"

	lltypes "github.com/llir/llvm/ir/types"

	"github.com/andrewsen/ucompiler-sub000/types"
)

var (
	Int8    = &lltypes.IntType{BitSize: 8}
	Int16   = &lltypes.IntType{BitSize: 16}
	Int32   = &lltypes.IntType{BitSize: 32}
	Int64   = &lltypes.IntType{BitSize: 64}
	Boolean = &lltypes.IntType{BitSize: 1}
	Double  = &lltypes.FloatType{Kind: lltypes.FloatKindDouble}
	Byte    = lltypes.I8
	RawPtr  = lltypes.NewPointer(lltypes.I8)

	// String is the layout of string values: a length and the bytes.
	String        = lltypes.NewStruct(Int64, lltypes.NewPointer(Byte))
	StringPointer = lltypes.NewPointer(String)
)

var kindTypes = map[types.Kind]lltypes.Type{
	types.Void:   lltypes.Void,
	types.Bool:   Boolean,
	types.Char:   Int16,
	types.Int8:   Int8,
	types.UInt8:  Int8,
	types.Int16:  Int16,
	types.UInt16: Int16,
	types.Int32:  Int32,
	types.UInt32: Int32,
	types.Int64:  Int64,
	types.UInt64: Int64,
	types.Double: Double,
	types.String: StringPointer,
	types.Null:   RawPtr,
	types.Object: RawPtr,
}

// llType maps a source type onto its LLVM representation. Classes and
// arrays are pointers to named structs.
func (g *Generator) llType(t types.Type) lltypes.Type {
	switch v := t.(type) {
	case types.Primitive:
		return kindTypes[v.Kind]
	case types.Array:
		return lltypes.NewPointer(g.arrayStruct(v))
	case *types.Class:
		return lltypes.NewPointer(g.classStruct(v))
	}
	g.fail("type %s has no machine representation", t)
	return nil
}

// arrayStruct is {i32 length, elem* data}.
func (g *Generator) arrayStruct(a types.Array) *lltypes.StructType {
	name := "array." + a.String()
	if st, ok := g.arrays[name]; ok {
		return st
	}
	st := &lltypes.StructType{}
	g.arrays[name] = st
	g.m.NewTypeDef(name, st)
	st.Fields = []lltypes.Type{Int32, lltypes.NewPointer(g.llType(types.ElemOf(a)))}
	return st
}

// classStruct lays out the instance fields of c after those of its
// parents, each class's own fields in name order.
func (g *Generator) classStruct(c *types.Class) *lltypes.StructType {
	if st, ok := g.classes[c]; ok {
		return st
	}
	st := &lltypes.StructType{}
	g.classes[c] = st
	g.m.NewTypeDef("class."+c.Name, st)

	if c.Parent != nil {
		// inherited fields keep their indices
		st.Fields = append(st.Fields, g.classStruct(c.Parent).Fields...)
	}
	for _, f := range instanceFields(c) {
		g.fieldIndex[f] = len(st.Fields)
		st.Fields = append(st.Fields, g.llType(f.Type))
	}
	if len(st.Fields) == 0 {
		// no zero-sized objects
		st.Fields = []lltypes.Type{Byte}
	}
	return st
}

func instanceFields(c *types.Class) []*types.Field {
	var fields []*types.Field
	for _, f := range c.Fields {
		if !f.Static {
			fields = append(fields, f)
		}
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

// size returns the store size of an element of t, used to size arrays.
func (g *Generator) size(t types.Type) int64 {
	if p, ok := t.(types.Primitive); ok {
		if n := p.Kind.Size(); n > 0 {
			return int64(n)
		}
	}
	return 8
}
