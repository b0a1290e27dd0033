package ir

import (
	"fmt"
	"strconv"

	"github.com/andrewsen/ucompiler-sub000/types"
)

type Operand interface {
	is_Operand()
	String() string
}

// Ref names a parameter, local, field or method.
type Ref struct {
	Referent types.Referent
}

func (v Ref) is_Operand() {}

func (v Ref) String() string {
	switch r := v.Referent.(type) {
	case *types.Local:
		return fmt.Sprintf("%d (%s)", r.Slot, r.Name)
	case *types.Param:
		return fmt.Sprintf("%d (%s)", r.Slot, r.Name)
	case *types.Field:
		return r.Owner.Name + "::" + r.Name
	case *types.Method:
		return r.Signature()
	case nil:
		return "<nil>"
	}
	return v.Referent.RefName()
}

// Lit is a constant as the lexer read it.
type Lit struct {
	Tok types.Token
}

func (v Lit) is_Operand() {}

func (v Lit) String() string {
	switch v.Tok.Const {
	case types.ConstString:
		return strconv.Quote(v.Tok.Text)
	case types.ConstChar:
		return strconv.QuoteRune([]rune(v.Tok.Text + "\x00")[0])
	}
	return v.Tok.Text
}

type TypeRef struct {
	Type types.Type
}

func (v TypeRef) is_Operand() {}

func (v TypeRef) String() string { return v.Type.String() }

type LabelRef struct {
	Label *Label
}

func (v LabelRef) is_Operand() {}

func (v LabelRef) String() string { return v.Label.String() }

// Ctor is the constructor newobj runs. Method is nil for the implicit
// parameterless constructor of a class that declares none.
type Ctor struct {
	Class  *types.Class
	Method *types.Method
}

func (v Ctor) is_Operand() {}

func (v Ctor) String() string {
	if v.Method == nil {
		return fmt.Sprintf("void %s::.ctor()", v.Class.Name)
	}
	return v.Method.Signature()
}

// Label is a jump target. IDs are dense per function.
type Label struct {
	ID   int
	Hint string
}

func (l *Label) String() string { return fmt.Sprintf("L%d", l.ID) }

type Instruction struct {
	Op Opcode
	// Type is the operand type of arithmetic, comparison, constant and
	// element instructions, and nil where the opcode does not need one.
	Type types.Type
	Arg  Operand
}

func (i Instruction) String() string {
	if i.Op == OpLabel {
		return i.Arg.String() + ":"
	}
	s := i.Op.String()
	if i.Type != nil {
		s += "." + i.Type.String()
	}
	if i.Arg != nil {
		s += " " + i.Arg.String()
	}
	return s
}

// Func is the lowered body of one method.
type Func struct {
	Method *types.Method
	Locals []*types.Local
	Code   []Instruction

	labels []*Label
}

func NewFunc(m *types.Method, locals []*types.Local) *Func {
	return &Func{Method: m, Locals: locals}
}

// NewLabel allocates a label; it is placed with Mark.
func (f *Func) NewLabel(hint string) *Label {
	l := &Label{ID: len(f.labels), Hint: hint}
	f.labels = append(f.labels, l)
	return l
}

func (f *Func) Labels() []*Label {
	return f.labels
}

func (f *Func) Emit(op Opcode, t types.Type, arg Operand) {
	f.Code = append(f.Code, Instruction{Op: op, Type: t, Arg: arg})
}

func (f *Func) Jump(op Opcode, l *Label) {
	f.Emit(op, nil, LabelRef{l})
}

func (f *Func) Mark(l *Label) {
	f.Emit(OpLabel, nil, LabelRef{l})
}

// Positions maps each placed label to the index of its label instruction.
func (f *Func) Positions() map[*Label]int {
	pos := map[*Label]int{}
	for i, in := range f.Code {
		if in.Op == OpLabel {
			if ref, ok := in.Arg.(LabelRef); ok {
				pos[ref.Label] = i
			}
		}
	}
	return pos
}

type DanglingLabel struct {
	Label *Label
	At    int
}

func (e DanglingLabel) Error() string {
	return fmt.Sprintf("instruction %d jumps to %s, which is never placed", e.At, e.Label)
}

type DuplicateLabel struct {
	Label *Label
	At    int
}

func (e DuplicateLabel) Error() string {
	return fmt.Sprintf("%s placed a second time at instruction %d", e.Label, e.At)
}

type BadOperand struct {
	Op  Opcode
	Arg Operand
	At  int
}

func (e BadOperand) Error() string {
	return fmt.Sprintf("instruction %d: %s cannot take operand %#v", e.At, e.Op, e.Arg)
}

// Verify checks that every operand suits its opcode and that every jump
// lands on a label placed exactly once in f.
func (f *Func) Verify() error {
	placed := map[*Label]bool{}
	for i, in := range f.Code {
		if !operandFits(in.Op.Operand(), in.Arg) {
			return BadOperand{Op: in.Op, Arg: in.Arg, At: i}
		}
		if in.Op == OpLabel {
			l := in.Arg.(LabelRef).Label
			if placed[l] {
				return DuplicateLabel{Label: l, At: i}
			}
			placed[l] = true
		}
	}
	for i, in := range f.Code {
		if in.Op.IsJump() {
			if l := in.Arg.(LabelRef).Label; !placed[l] {
				return DanglingLabel{Label: l, At: i}
			}
		}
	}
	return nil
}

func operandFits(kind OperandKind, arg Operand) bool {
	switch kind {
	case NoOperand:
		return arg == nil
	case RefOperand:
		r, ok := arg.(Ref)
		return ok && r.Referent != nil
	case LitOperand:
		_, ok := arg.(Lit)
		return ok
	case TypeOperand:
		t, ok := arg.(TypeRef)
		return ok && t.Type != nil
	case LabelOperand:
		l, ok := arg.(LabelRef)
		return ok && l.Label != nil
	case CtorOperand:
		c, ok := arg.(Ctor)
		return ok && c.Class != nil
	}
	return false
}
