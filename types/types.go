package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

type Span struct {
	From Position
	To   Position
}

type TokenKind int

const (
	EOF TokenKind = iota
	ILLEGAL

	IDENT
	CONST
	OPERATOR
	ASSIGN
	DELIM
	SEMI
)

func (t TokenKind) String() string {
	data := map[TokenKind]string{
		EOF:      "EOF",
		ILLEGAL:  "ILLEGAL",
		IDENT:    "IDENT",
		CONST:    "CONST",
		OPERATOR: "OPERATOR",
		ASSIGN:   "ASSIGN",
		DELIM:    "DELIM",
		SEMI:     "SEMI",
	}
	return data[t]
}

// ConstKind classifies the literal carried by a CONST token.
type ConstKind int

const (
	NotConst ConstKind = iota
	ConstChar
	ConstInt8
	ConstUInt8
	ConstInt16
	ConstUInt16
	ConstInt32
	ConstUInt32
	ConstInt64
	ConstUInt64
	ConstDouble
	ConstBool
	ConstString
	ConstNull
)

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.From, s.To.Line, s.To.Column)
}

func SingleCharSpan(p Position) Span {
	return Span{p, p}
}

func JoinSpan(a, b Span) Span {
	return Span{a.From, b.To}
}

type Token struct {
	Kind     TokenKind
	Text     string
	Location Span

	// Const is set for CONST tokens. String and char constants hold their
	// decoded value in Text.
	Const ConstKind
	// Op is resolved by the lexer for OPERATOR and ASSIGN tokens and refined
	// by the expression parser (unary forms, call markers).
	Op Operation
}

func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "end of input"
	}
	if t.Kind == CONST && t.Const == ConstString {
		return fmt.Sprintf("%q", t.Text)
	}
	return fmt.Sprintf("'%s'", t.Text)
}
