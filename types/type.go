package types

import (
	"fmt"
	"strings"
)

// Kind is the ordinal of a primitive type. The ordinals index the operator
// tables in tables.go, so the order is part of their layout.
type Kind int

const (
	Void Kind = iota
	Bool
	Char
	Int8
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
	Double
	String
	Null
	Object

	numKinds
)

var kindNames = [numKinds]string{
	Void:   "void",
	Bool:   "bool",
	Char:   "char",
	Int8:   "int8",
	UInt8:  "uint8",
	Int16:  "int16",
	UInt16: "uint16",
	Int32:  "int32",
	UInt32: "uint32",
	Int64:  "int64",
	UInt64: "uint64",
	Double: "double",
	String: "string",
	Null:   "null",
	Object: "object",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) IsIntegral() bool {
	return k >= Char && k <= UInt64
}

func (k Kind) IsNumeric() bool {
	return k >= Char && k <= Double
}

func (k Kind) IsSigned() bool {
	switch k {
	case Int8, Int16, Int32, Int64, Double:
		return true
	}
	return false
}

// Size is the storage width in bytes of a numeric kind.
func (k Kind) Size() int {
	switch k {
	case Bool, Int8, UInt8:
		return 1
	case Char, Int16, UInt16:
		return 2
	case Int32, UInt32:
		return 4
	case Int64, UInt64, Double:
		return 8
	}
	return 0
}

type Type interface {
	is_Type()
	String() string
}

type Primitive struct {
	Kind Kind
}

func (v Primitive) is_Type() {}

func (v Primitive) String() string { return v.Kind.String() }

type Array struct {
	Inner Type
	Dims  int
}

func (v Array) is_Type() {}

func (v Array) String() string {
	return v.Inner.String() + strings.Repeat("[]", v.Dims)
}

// Inferred is the declared type of a `var` local until its initializer has
// been resolved.
type Inferred struct{}

func (v Inferred) is_Type() {}

func (v Inferred) String() string { return "var" }

var (
	VoidType   Type = Primitive{Void}
	BoolType   Type = Primitive{Bool}
	CharType   Type = Primitive{Char}
	Int32Type  Type = Primitive{Int32}
	DoubleType Type = Primitive{Double}
	StringType Type = Primitive{String}
	NullType   Type = Primitive{Null}
	ObjectType Type = Primitive{Object}
)

// Equal compares two types structurally.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case Primitive:
		y, ok := b.(Primitive)
		return ok && x.Kind == y.Kind
	case Array:
		y, ok := b.(Array)
		return ok && x.Dims == y.Dims && Equal(x.Inner, y.Inner)
	case *Class:
		y, ok := b.(*Class)
		return ok && x.Name == y.Name
	case Inferred:
		_, ok := b.(Inferred)
		return ok
	}
	return false
}

// Ordinal maps a type onto the row/column index used by the operator
// tables. Classes and arrays share the object ordinal.
func Ordinal(t Type) Kind {
	switch x := t.(type) {
	case Primitive:
		return x.Kind
	case Array, *Class:
		return Object
	}
	return Void
}

func IsVoid(t Type) bool {
	p, ok := t.(Primitive)
	return t == nil || ok && p.Kind == Void
}

func IsKind(t Type, k Kind) bool {
	p, ok := t.(Primitive)
	return ok && p.Kind == k
}

// ArrayOf wraps elem in one more array rank.
func ArrayOf(elem Type) Array {
	if a, ok := elem.(Array); ok {
		return Array{Inner: a.Inner, Dims: a.Dims + 1}
	}
	return Array{Inner: elem, Dims: 1}
}

// ElemOf strips one array rank.
func ElemOf(a Array) Type {
	if a.Dims <= 1 {
		return a.Inner
	}
	return Array{Inner: a.Inner, Dims: a.Dims - 1}
}

var primitiveNames = map[string]Kind{
	"void":   Void,
	"bool":   Bool,
	"char":   Char,
	"sbyte":  Int8,
	"byte":   UInt8,
	"short":  Int16,
	"ushort": UInt16,
	"int":    Int32,
	"uint":   UInt32,
	"long":   Int64,
	"ulong":  UInt64,
	"double": Double,
	"string": String,
	"object": Object,
}

// IsTypeName reports whether name is a primitive type keyword.
func IsTypeName(name string) bool {
	_, ok := PrimitiveNamed(name)
	return ok
}

// PrimitiveNamed resolves both the source keywords (int, long, …) and the
// canonical names (int32, int64, …).
func PrimitiveNamed(name string) (Type, bool) {
	if k, ok := primitiveNames[name]; ok {
		return Primitive{k}, true
	}
	for k := Void; k < numKinds; k++ {
		if kindNames[k] == name && k != Null {
			return Primitive{k}, true
		}
	}
	return nil, false
}
