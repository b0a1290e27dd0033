package ast

import (
	"strings"
	"testing"

	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/types"
)

func ident(name string) types.Token {
	return types.Token{Kind: types.IDENT, Text: name}
}

func num(text string) types.Token {
	return types.Token{Kind: types.CONST, Text: text, Const: types.ConstInt32}
}

func op(kind types.OpKind) types.Token {
	return types.Token{Kind: types.OPERATOR, Text: kind.String(), Op: types.Op(kind)}
}

func call(name string, args int) types.Token {
	o := types.Op(types.OpCall)
	o.Args = args
	return types.Token{Kind: types.OPERATOR, Text: name, Op: o}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		postfix []types.Token
		want    string
	}{
		{"precedence", []types.Token{num("2"), num("3"), num("4"), op(types.OpMul), op(types.OpAdd)}, "(2 + (3 * 4))"},
		{"unary", []types.Token{ident("x"), op(types.OpNeg)}, "(-x)"},
		{"postfix", []types.Token{ident("x"), op(types.OpPostInc)}, "(x++)"},
		{"call", []types.Token{ident("f"), num("1"), ident("a"), call("f", 2)}, "f(1, a)"},
		{"member call", []types.Token{ident("o"), ident("m"), call("m", 0), op(types.OpMember)}, "(o.m())"},
		{"new", []types.Token{ident("P"), call("P", 0), op(types.OpNewObject)}, "new P()"},
		{"index", []types.Token{ident("a"), num("0"), op(types.OpIndex)}, "(a[0])"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := errors.NewSink(10)
			n := Build(tt.postfix, sink)
			if sink.HasErrors() {
				t.Fatalf("diagnostics: %v", sink.Diagnostics())
			}
			if got := String(n); got != tt.want {
				t.Errorf("Build = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildMarksReload(t *testing.T) {
	// a = b = 1
	postfix := []types.Token{ident("a"), ident("b"), num("1"), op(types.OpAssign), op(types.OpAssign)}
	n := Build(postfix, errors.NewSink(10)).(*Binary)
	if n.Reload {
		t.Errorf("outer assignment marked for reload")
	}
	if inner := n.R.(*Binary); !inner.Reload {
		t.Errorf("nested assignment not marked for reload")
	}
}

func TestBuildShapeErrors(t *testing.T) {
	tests := []struct {
		name    string
		postfix []types.Token
		want    string
	}{
		{"missing operand", []types.Token{num("1"), op(types.OpAdd)}, "missing operand"},
		{"missing operator", []types.Token{num("1"), num("2")}, "missing operator"},
		{"not callable", []types.Token{num("1"), call("f", 0)}, "not callable"},
		{"new without call", []types.Token{ident("a"), op(types.OpNewObject)}, "constructor call"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := errors.NewSink(10)
			if n := Build(tt.postfix, sink); n != nil {
				t.Errorf("Build returned %s", String(n))
			}
			diags := sink.Diagnostics()
			if len(diags) != 1 || !strings.Contains(diags[0].Message, tt.want) || diags[0].Kind != errors.Shape {
				t.Errorf("diagnostics = %v, want a shape error containing %q", diags, tt.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	postfix := []types.Token{ident("a"), ident("b"), op(types.OpMember)}
	orig := Build(postfix, errors.NewSink(10)).(*Binary)
	c := Clone(orig).(*Binary)
	c.L.(*Ident).Tok.Text = "z"
	if String(orig) != "(a.b)" {
		t.Errorf("clone shares nodes: %s", String(orig))
	}
}
