package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrewsen/ucompiler-sub000/types"
)

// String renders an expression in-order with every operator parenthesized.
func String(n Node) string {
	var sb strings.Builder
	write(&sb, n)
	return sb.String()
}

func write(sb *strings.Builder, n Node) {
	switch v := n.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *Const:
		switch v.Tok.Const {
		case types.ConstString:
			sb.WriteString(strconv.Quote(v.Tok.Text))
		case types.ConstChar:
			sb.WriteString(strconv.QuoteRune([]rune(v.Tok.Text + "\x00")[0]))
		default:
			sb.WriteString(v.Tok.Text)
		}
	case *Ident:
		sb.WriteString(v.Name())
	case *Unary:
		sb.WriteByte('(')
		if v.Op.Kind == types.OpPostInc || v.Op.Kind == types.OpPostDec {
			write(sb, v.X)
			sb.WriteString(v.Op.Kind.String())
		} else {
			sb.WriteString(v.Op.Kind.String())
			write(sb, v.X)
		}
		sb.WriteByte(')')
	case *Binary:
		sb.WriteByte('(')
		write(sb, v.L)
		switch v.Op.Kind {
		case types.OpMember:
			sb.WriteByte('.')
			write(sb, v.R)
		case types.OpIndex:
			sb.WriteByte('[')
			write(sb, v.R)
			sb.WriteByte(']')
		default:
			fmt.Fprintf(sb, " %s ", v.Op.Kind)
			write(sb, v.R)
		}
		sb.WriteByte(')')
	case *Call:
		writeCall(sb, v)
	case *New:
		sb.WriteString("new ")
		writeCall(sb, v.Call)
	case *NewArray:
		fmt.Fprintf(sb, "new %s[", v.Elem)
		write(sb, v.Size)
		sb.WriteString("]" + strings.Repeat("[]", v.Dims))
	case *Cast:
		fmt.Fprintf(sb, "((%s)", v.Type)
		write(sb, v.X)
		sb.WriteByte(')')
	}
}

func writeCall(sb *strings.Builder, c *Call) {
	sb.WriteString(c.Callee.Name())
	sb.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		write(sb, a)
	}
	sb.WriteByte(')')
}
