// Package ir is the flat, label-based instruction stream a method body is
// lowered to, together with its text and binary renderings.
package ir

import "fmt"

//go:generate sh -c "cd ../tool && go run . ../ir/opcodes.def ../ir/opcode_gen.go ir"

type Opcode uint8

// OperandKind is the operand an opcode carries.
type OperandKind int

const (
	NoOperand OperandKind = iota
	RefOperand
	LitOperand
	TypeOperand
	LabelOperand
	CtorOperand
)

func (o Opcode) String() string {
	if o >= numOpcodes {
		return fmt.Sprintf("op(%d)", uint8(o))
	}
	return opcodeNames[o]
}

// Operand reports the operand kind o expects.
func (o Opcode) Operand() OperandKind {
	if o >= numOpcodes {
		return NoOperand
	}
	return opcodeOperands[o]
}

// Group is the section of opcodes.def o is declared in.
func (o Opcode) Group() string {
	if o >= numOpcodes {
		return ""
	}
	return opcodeGroups[o]
}

// IsJump reports opcodes that transfer control to a label.
func (o Opcode) IsJump() bool {
	return o == OpJmp || o == OpJt || o == OpJf
}

// OpcodeNamed looks an opcode up by its mnemonic.
func OpcodeNamed(name string) (Opcode, bool) {
	for o := Opcode(0); o < numOpcodes; o++ {
		if opcodeNames[o] == name {
			return o, true
		}
	}
	return 0, false
}
