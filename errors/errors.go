package errors

import (
	"fmt"
	"strings"

	"github.com/andrewsen/ucompiler-sub000/types"
)

type ExpectedKindGotKind struct {
	Expected types.TokenKind
	Got      types.Token
	Location types.Span
}

func (e ExpectedKindGotKind) Error() string {
	return fmt.Sprintf("got %s, expected a %s", e.Got, e.Expected)
}

type ExpectedOneOfKindGotKind struct {
	Expected []string
	Got      types.Token
	Location types.Span
}

func (e ExpectedOneOfKindGotKind) Error() string {
	if len(e.Expected) == 1 {
		return fmt.Sprintf("got %s, expected '%s'", e.Got, e.Expected[0])
	}
	return fmt.Sprintf("got %s, expected one of '%s'", e.Got, strings.Join(e.Expected, "', '"))
}

type Redeclared struct {
	Name     string
	Previous types.Span
	Location types.Span
}

func (e Redeclared) Error() string {
	return fmt.Sprintf("'%s' is already declared at %s", e.Name, e.Previous.From)
}

type Undeclared struct {
	Name     string
	Location types.Span
}

func (e Undeclared) Error() string {
	return fmt.Sprintf("undeclared identifier '%s'", e.Name)
}

type NoConversion struct {
	From     types.Type
	To       types.Type
	Location types.Span
}

func (e NoConversion) Error() string {
	return fmt.Sprintf("cannot implicitly convert '%s' to '%s'", e.From, e.To)
}

type OperatorMismatch struct {
	Op       types.OpKind
	Left     types.Type
	Right    types.Type
	Location types.Span
}

func (e OperatorMismatch) Error() string {
	if e.Right == nil {
		return fmt.Sprintf("operator '%s' cannot be applied to '%s'", e.Op, e.Left)
	}
	return fmt.Sprintf("operator '%s' cannot be applied to '%s' and '%s'", e.Op, e.Left, e.Right)
}
