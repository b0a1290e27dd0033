package types

import (
	"testing"
)

func TestMatrixCells(t *testing.T) {
	tests := []struct {
		name  string
		table *Matrix
		l, r  Kind
		want  Kind
	}{
		{"arithmetic", &Arith, Int32, Int32, Int32},
		{"arithmetic", &Arith, Int32, UInt32, Int64},
		{"arithmetic", &Arith, UInt64, Int32, Void},
		{"arithmetic", &Arith, Char, Char, Int32},
		{"arithmetic", &Arith, Int8, Double, Double},
		{"arithmetic", &Arith, Bool, Bool, Void},
		{"arithmetic", &Arith, Void, Int32, Void},
		{"modulo/bitwise", &ModBit, Double, Int32, Void},
		{"modulo/bitwise", &ModBit, UInt8, UInt32, UInt32},
		{"shift", &Shift, Int64, Int32, Int64},
		{"shift", &Shift, Int32, UInt32, Void},
		{"concatenation", &Concat, String, Null, String},
		{"concatenation", &Concat, Double, String, String},
		{"concatenation", &Concat, Int32, Int32, Void},
		{"comparison", &Compare, String, String, Void},
		{"comparison", &Compare, Char, Double, Bool},
		{"equality", &Equality, String, Null, Bool},
		{"equality", &Equality, Object, String, Void},
		{"equality", &Equality, Bool, Int32, Void},
		{"logical", &Logical, Bool, Bool, Bool},
		{"member", &Member, Object, Int32, PassThrough},
		{"member", &Member, Int32, Int32, Void},
		{"assignment", &Assign, Int16, UInt8, Int16},
		{"assignment", &Assign, UInt16, Int8, Void},
		{"assignment", &Assign, Object, Null, Object},
		{"assignment", &Assign, Void, Void, Void},
	}
	for _, tt := range tests {
		got, err := tt.table.At(tt.name, tt.l, tt.r)
		if err != nil {
			t.Errorf("%s(%s, %s): %v", tt.name, tt.l, tt.r, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s(%s, %s) = %s, want %s", tt.name, tt.l, tt.r, got, tt.want)
		}
	}
}

func TestImplicitCells(t *testing.T) {
	tests := []struct {
		from, to Kind
		want     bool
	}{
		{Int32, Int64, true},
		{Int64, Int32, false},
		{UInt8, Int16, true},
		{Int8, UInt16, false},
		{Char, Int32, true},
		{Int32, Char, false},
		{Int64, Double, true},
		{Double, Int64, false},
		{Null, String, true},
		{String, Object, false},
		{Void, Void, false},
		{Bool, Bool, true},
	}
	for _, tt := range tests {
		got, err := Implicit.At(tt.from, tt.to)
		if err != nil || got != tt.want {
			t.Errorf("Implicit(%s, %s) = %v, %v; want %v", tt.from, tt.to, got, err, tt.want)
		}
	}
}

func TestVectorCells(t *testing.T) {
	tests := []struct {
		name  string
		table *Vector
		k     Kind
		want  Kind
	}{
		{"-", &Negate, UInt32, Int64},
		{"-", &Negate, UInt64, Void},
		{"+", &UnaryPlus, UInt64, UInt64},
		{"~", &Complement, Double, Void},
		{"!", &LogicalNot, Bool, Bool},
		{"!", &LogicalNot, Int32, Void},
		{"++", &Step, Char, Char},
		{"++", &Step, String, Void},
	}
	for _, tt := range tests {
		got, err := tt.table.At(tt.name, tt.k)
		if err != nil || got != tt.want {
			t.Errorf("%s(%s) = %s, %v; want %s", tt.name, tt.k, got, err, tt.want)
		}
	}
}

func TestOutOfRange(t *testing.T) {
	for _, k := range []Kind{-1, numKinds, numKinds + 7} {
		if _, err := Arith.At("arithmetic", k, Int32); err == nil {
			t.Errorf("Arith.At(%d, int32) succeeded", int(k))
		}
		if _, err := Arith.At("arithmetic", Int32, k); err == nil {
			t.Errorf("Arith.At(int32, %d) succeeded", int(k))
		}
		if _, err := Implicit.At(k, Int32); err == nil {
			t.Errorf("Implicit.At(%d, int32) succeeded", int(k))
		}
		if _, err := Negate.At("-", k); err == nil {
			t.Errorf("Negate.At(%d) succeeded", int(k))
		}
	}

	_, err := Compare.At("comparison", Kind(99), Int32)
	oor, ok := err.(OutOfRange)
	if !ok || oor.Table != "comparison" || oor.Left != Kind(99) {
		t.Fatalf("err = %#v", err)
	}
	if got, want := oor.Error(), "no comparison table entry for (kind(99), int32)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestConvertible(t *testing.T) {
	base := NewClass("Base", nil)
	derived := NewClass("Derived", base)
	ints := ArrayOf(Int32Type)

	tests := []struct {
		from, to Type
		want     bool
	}{
		{derived, base, true},
		{base, derived, false},
		{NullType, derived, true},
		{derived, ObjectType, true},
		{ints, ObjectType, true},
		{NullType, ints, true},
		{ints, ArrayOf(Primitive{Int64}), false},
		{Int32Type, DoubleType, true},
		{DoubleType, Int32Type, false},
		{StringType, base, false},
	}
	for _, tt := range tests {
		if got := Convertible(tt.from, tt.to); got != tt.want {
			t.Errorf("Convertible(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
