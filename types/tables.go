package types

import "fmt"

// PassThrough marks a member-access cell whose result is the member's own
// type.
const PassThrough Kind = -1

type (
	Matrix     [numKinds][numKinds]Kind
	ConvMatrix [numKinds][numKinds]bool
	Vector     [numKinds]Kind
)

const (
	__ = Void
	vo = Void
	bo = Bool
	ch = Char
	i1 = Int8
	u1 = UInt8
	i2 = Int16
	u2 = UInt16
	i4 = Int32
	u4 = UInt32
	i8 = Int64
	u8 = UInt64
	db = Double
	st = String
	nl = Null
	ob = Object
	pt = PassThrough

	ok = true
	no = false
)

// OutOfRange is returned by the table accessors for an ordinal the tables do
// not cover.
type OutOfRange struct {
	Table string
	Left  Kind
	Right Kind
}

func (e OutOfRange) Error() string {
	return fmt.Sprintf("no %s table entry for (%s, %s)", e.Table, e.Left, e.Right)
}

func inRange(k Kind) bool {
	return k >= 0 && k < numKinds
}

// At looks up a cell. Void means the operator has no result for the pair.
func (m *Matrix) At(name string, l, r Kind) (Kind, error) {
	if !inRange(l) || !inRange(r) {
		return Void, OutOfRange{name, l, r}
	}
	return m[l][r], nil
}

func (m *ConvMatrix) At(from, to Kind) (bool, error) {
	if !inRange(from) || !inRange(to) {
		return false, OutOfRange{"implicit", from, to}
	}
	return m[from][to], nil
}

func (v *Vector) At(name string, k Kind) (Kind, error) {
	if !inRange(k) {
		return Void, OutOfRange{name, k, Void}
	}
	return v[k], nil
}

// Convertible reports whether a value of type from can be used where to is
// expected without an explicit cast. Classes convert to their ancestors and
// to object; arrays convert only to an equal array type or object.
func Convertible(from, to Type) bool {
	if Equal(from, to) {
		return true
	}
	switch t := to.(type) {
	case *Class:
		if IsKind(from, Null) {
			return true
		}
		c, ok := from.(*Class)
		return ok && c.IsA(t)
	case Array:
		return IsKind(from, Null)
	case Primitive:
		if t.Kind == Object {
			switch from.(type) {
			case *Class, Array:
				return true
			}
		}
		f, isPrim := from.(Primitive)
		if !isPrim {
			return false
		}
		conv, err := Implicit.At(f.Kind, t.Kind)
		return err == nil && conv
	}
	return false
}

// Arith gives the result of + - * / on numeric operands; it is also the
// common operand type comparisons and equality promote to.
var Arith = Matrix{
	//   vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	vo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	bo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ch: {__, __, i4, i4, i4, i4, i4, i4, u4, i8, u8, db, __, __, __},
	i1: {__, __, i4, i4, i4, i4, i4, i4, i8, i8, __, db, __, __, __},
	u1: {__, __, i4, i4, i4, i4, i4, i4, u4, i8, u8, db, __, __, __},
	i2: {__, __, i4, i4, i4, i4, i4, i4, i8, i8, __, db, __, __, __},
	u2: {__, __, i4, i4, i4, i4, i4, i4, u4, i8, u8, db, __, __, __},
	i4: {__, __, i4, i4, i4, i4, i4, i4, i8, i8, __, db, __, __, __},
	u4: {__, __, u4, i8, u4, i8, u4, i8, u4, i8, u8, db, __, __, __},
	i8: {__, __, i8, i8, i8, i8, i8, i8, i8, i8, __, db, __, __, __},
	u8: {__, __, u8, __, u8, __, u8, __, u8, __, u8, db, __, __, __},
	db: {__, __, db, db, db, db, db, db, db, db, db, db, __, __, __},
	st: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	nl: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ob: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
}

// ModBit covers % & | ^ on integral operands.
var ModBit = Matrix{
	//   vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	vo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	bo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ch: {__, __, i4, i4, i4, i4, i4, i4, u4, i8, u8, __, __, __, __},
	i1: {__, __, i4, i4, i4, i4, i4, i4, i8, i8, __, __, __, __, __},
	u1: {__, __, i4, i4, i4, i4, i4, i4, u4, i8, u8, __, __, __, __},
	i2: {__, __, i4, i4, i4, i4, i4, i4, i8, i8, __, __, __, __, __},
	u2: {__, __, i4, i4, i4, i4, i4, i4, u4, i8, u8, __, __, __, __},
	i4: {__, __, i4, i4, i4, i4, i4, i4, i8, i8, __, __, __, __, __},
	u4: {__, __, u4, i8, u4, i8, u4, i8, u4, i8, u8, __, __, __, __},
	i8: {__, __, i8, i8, i8, i8, i8, i8, i8, i8, __, __, __, __, __},
	u8: {__, __, u8, __, u8, __, u8, __, u8, __, u8, __, __, __, __},
	db: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	st: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	nl: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ob: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
}

// Shift covers << and >>: the left operand is promoted, the count must
// fit an int32.
var Shift = Matrix{
	//   vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	vo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	bo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ch: {__, __, i4, i4, i4, i4, i4, i4, __, __, __, __, __, __, __},
	i1: {__, __, i4, i4, i4, i4, i4, i4, __, __, __, __, __, __, __},
	u1: {__, __, i4, i4, i4, i4, i4, i4, __, __, __, __, __, __, __},
	i2: {__, __, i4, i4, i4, i4, i4, i4, __, __, __, __, __, __, __},
	u2: {__, __, i4, i4, i4, i4, i4, i4, __, __, __, __, __, __, __},
	i4: {__, __, i4, i4, i4, i4, i4, i4, __, __, __, __, __, __, __},
	u4: {__, __, u4, u4, u4, u4, u4, u4, __, __, __, __, __, __, __},
	i8: {__, __, i8, i8, i8, i8, i8, i8, __, __, __, __, __, __, __},
	u8: {__, __, u8, u8, u8, u8, u8, u8, __, __, __, __, __, __, __},
	db: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	st: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	nl: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ob: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
}

// Concat is + with a string on either side.
var Concat = Matrix{
	//   vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	vo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	bo: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
	ch: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
	i1: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
	u1: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
	i2: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
	u2: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
	i4: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
	u4: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
	i8: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
	u8: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
	db: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
	st: {__, st, st, st, st, st, st, st, st, st, st, st, st, st, st},
	nl: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
	ob: {__, __, __, __, __, __, __, __, __, __, __, __, st, __, __},
}

// Compare covers < <= > >=.
var Compare = Matrix{
	//   vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	vo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	bo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ch: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, bo, bo, __, __, __},
	i1: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, __, bo, __, __, __},
	u1: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, bo, bo, __, __, __},
	i2: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, __, bo, __, __, __},
	u2: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, bo, bo, __, __, __},
	i4: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, __, bo, __, __, __},
	u4: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, bo, bo, __, __, __},
	i8: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, __, bo, __, __, __},
	u8: {__, __, bo, __, bo, __, bo, __, bo, __, bo, bo, __, __, __},
	db: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, bo, bo, __, __, __},
	st: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	nl: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ob: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
}

// Equality covers == and !=.
var Equality = Matrix{
	//   vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	vo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	bo: {__, bo, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ch: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, bo, bo, __, __, __},
	i1: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, __, bo, __, __, __},
	u1: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, bo, bo, __, __, __},
	i2: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, __, bo, __, __, __},
	u2: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, bo, bo, __, __, __},
	i4: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, __, bo, __, __, __},
	u4: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, bo, bo, __, __, __},
	i8: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, __, bo, __, __, __},
	u8: {__, __, bo, __, bo, __, bo, __, bo, __, bo, bo, __, __, __},
	db: {__, __, bo, bo, bo, bo, bo, bo, bo, bo, bo, bo, __, __, __},
	st: {__, __, __, __, __, __, __, __, __, __, __, __, bo, bo, __},
	nl: {__, __, __, __, __, __, __, __, __, __, __, __, bo, bo, bo},
	ob: {__, __, __, __, __, __, __, __, __, __, __, __, __, bo, bo},
}

// Logical covers && || and & | ^ on bool operands.
var Logical = Matrix{
	//   vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	vo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	bo: {__, bo, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ch: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	i1: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	u1: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	i2: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	u2: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	i4: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	u4: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	i8: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	u8: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	db: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	st: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	nl: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ob: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
}

// Member access passes the member type through on the object side.
var Member = Matrix{
	//   vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	vo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	bo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ch: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	i1: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	u1: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	i2: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	u2: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	i4: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	u4: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	i8: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	u8: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	db: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	st: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	nl: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ob: {pt, pt, pt, pt, pt, pt, pt, pt, pt, pt, pt, pt, pt, pt, pt},
}

// Assign is indexed [target][value].
var Assign = Matrix{
	//   vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	vo: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	bo: {__, bo, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ch: {__, __, ch, __, __, __, __, __, __, __, __, __, __, __, __},
	i1: {__, __, __, i1, __, __, __, __, __, __, __, __, __, __, __},
	u1: {__, __, __, __, u1, __, __, __, __, __, __, __, __, __, __},
	i2: {__, __, __, i2, i2, i2, __, __, __, __, __, __, __, __, __},
	u2: {__, __, u2, __, u2, __, u2, __, __, __, __, __, __, __, __},
	i4: {__, __, i4, i4, i4, i4, i4, i4, __, __, __, __, __, __, __},
	u4: {__, __, u4, __, u4, __, u4, __, u4, __, __, __, __, __, __},
	i8: {__, __, i8, i8, i8, i8, i8, i8, i8, i8, __, __, __, __, __},
	u8: {__, __, u8, __, u8, __, u8, __, u8, __, u8, __, __, __, __},
	db: {__, __, db, db, db, db, db, db, db, db, db, db, __, __, __},
	st: {__, __, __, __, __, __, __, __, __, __, __, __, st, st, __},
	nl: {__, __, __, __, __, __, __, __, __, __, __, __, __, __, __},
	ob: {__, __, __, __, __, __, __, __, __, __, __, __, __, ob, ob},
}

// Implicit is indexed [from][to]; a cell is ok when a value converts
// without an explicit cast.
var Implicit = ConvMatrix{
	//   vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	vo: {no, no, no, no, no, no, no, no, no, no, no, no, no, no, no},
	bo: {no, ok, no, no, no, no, no, no, no, no, no, no, no, no, no},
	ch: {no, no, ok, no, no, no, ok, ok, ok, ok, ok, ok, no, no, no},
	i1: {no, no, no, ok, no, ok, no, ok, no, ok, no, ok, no, no, no},
	u1: {no, no, no, no, ok, ok, ok, ok, ok, ok, ok, ok, no, no, no},
	i2: {no, no, no, no, no, ok, no, ok, no, ok, no, ok, no, no, no},
	u2: {no, no, no, no, no, no, ok, ok, ok, ok, ok, ok, no, no, no},
	i4: {no, no, no, no, no, no, no, ok, no, ok, no, ok, no, no, no},
	u4: {no, no, no, no, no, no, no, no, ok, ok, ok, ok, no, no, no},
	i8: {no, no, no, no, no, no, no, no, no, ok, no, ok, no, no, no},
	u8: {no, no, no, no, no, no, no, no, no, no, ok, ok, no, no, no},
	db: {no, no, no, no, no, no, no, no, no, no, no, ok, no, no, no},
	st: {no, no, no, no, no, no, no, no, no, no, no, no, ok, no, no},
	nl: {no, no, no, no, no, no, no, no, no, no, no, no, ok, ok, ok},
	ob: {no, no, no, no, no, no, no, no, no, no, no, no, no, no, ok},
}

// Negate is unary -.
var Negate = Vector{
	//  vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	__, __, i4, i4, i4, i4, i4, i4, i8, i8, __, db, __, __, __,
}

// UnaryPlus is unary +.
var UnaryPlus = Vector{
	//  vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	__, __, i4, i4, i4, i4, i4, i4, u4, i8, u8, db, __, __, __,
}

// Complement is ~.
var Complement = Vector{
	//  vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	__, __, i4, i4, i4, i4, i4, i4, u4, i8, u8, __, __, __, __,
}

// LogicalNot is !.
var LogicalNot = Vector{
	//  vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	__, bo, __, __, __, __, __, __, __, __, __, __, __, __, __,
}

// Step covers ++ and -- in both positions.
var Step = Vector{
	//  vo  bo  ch  i1  u1  i2  u2  i4  u4  i8  u8  db  st  nl  ob
	__, __, ch, i1, u1, i2, u2, i4, u4, i8, u8, db, __, __, __,
}
