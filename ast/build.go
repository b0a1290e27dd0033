package ast

import (
	"fmt"

	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/types"
)

type builder struct {
	stack []Node
	sink  *errors.Sink
}

func (b *builder) push(n Node) {
	b.stack = append(b.stack, n)
}

func (b *builder) pop(tok types.Token) (Node, bool) {
	if len(b.stack) == 0 {
		b.sink.AddError(fmt.Sprintf("missing operand for %s", tok), errors.Shape, tok.Location)
		return nil, false
	}
	n := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return n, true
}

// operand pops a node that becomes the child of another one. Assignments
// and increments used this way must leave their value behind.
func (b *builder) operand(tok types.Token) (Node, bool) {
	n, ok := b.pop(tok)
	if !ok {
		return nil, false
	}
	switch v := n.(type) {
	case *Binary:
		if v.Op.IsAssign() {
			v.Reload = true
		}
	case *Unary:
		if v.Op.IsIncDec() {
			v.Reload = true
		}
	}
	return n, true
}

// Build turns a postfix sequence into an expression tree. It returns nil
// when the sequence is empty or malformed; the problem is reported to sink.
func Build(postfix []types.Token, sink *errors.Sink) Node {
	if len(postfix) == 0 {
		return nil
	}
	b := &builder{sink: sink}

	for _, tok := range postfix {
		switch tok.Kind {
		case types.CONST:
			b.push(&Const{Base: Base{Pos: tok.Location}, Tok: tok})
			continue
		case types.IDENT:
			b.push(&Ident{Base: Base{Pos: tok.Location}, Tok: tok})
			continue
		}

		if !b.apply(tok) {
			return nil
		}
	}

	if len(b.stack) != 1 {
		at := postfix[len(postfix)-1].Location
		if len(b.stack) > 1 {
			at = b.stack[1].Info().Pos
		}
		sink.AddError("missing operator between operands", errors.Shape, at)
		return nil
	}
	return b.stack[0]
}

func (b *builder) apply(tok types.Token) bool {
	op := tok.Op
	switch op.Kind {
	case types.OpCall:
		nodes := make([]Node, op.Args+1)
		for i := op.Args; i >= 0; i-- {
			n, ok := b.operand(tok)
			if !ok {
				return false
			}
			nodes[i] = n
		}
		callee, ok := nodes[0].(*Ident)
		if !ok {
			b.sink.AddError("expression is not callable", errors.Shape, nodes[0].Info().Pos)
			return false
		}
		b.push(&Call{Base: Base{Pos: types.JoinSpan(callee.Pos, tok.Location)}, Callee: callee, Args: nodes[1:]})

	case types.OpNewObject:
		n, ok := b.pop(tok)
		if !ok {
			return false
		}
		call, isCall := n.(*Call)
		if !isCall {
			b.sink.AddError("'new' must be followed by a constructor call", errors.Shape, tok.Location)
			return false
		}
		b.push(&New{Base: Base{Pos: types.JoinSpan(tok.Location, call.Pos)}, Call: call})

	case types.OpNewArray:
		size, ok := b.operand(tok)
		if !ok {
			return false
		}
		b.push(&NewArray{Base: Base{Pos: types.JoinSpan(tok.Location, size.Info().Pos)}, Elem: tok.Text, Dims: op.Dims, Size: size})

	default:
		switch op.Arity {
		case 1:
			x, ok := b.operand(tok)
			if !ok {
				return false
			}
			pos := types.JoinSpan(tok.Location, x.Info().Pos)
			if op.Kind == types.OpPostInc || op.Kind == types.OpPostDec {
				pos = types.JoinSpan(x.Info().Pos, tok.Location)
			}
			b.push(&Unary{Base: Base{Pos: pos}, Op: op, X: x})
		case 2:
			r, ok := b.operand(tok)
			if !ok {
				return false
			}
			l, ok := b.operand(tok)
			if !ok {
				return false
			}
			b.push(binary(op, l, r))
		default:
			b.sink.Internal(tok.Location, "operator %s has no arity", tok.Text)
		}
	}
	return true
}

// binary builds an operator node; compound assignments become target =
// target op value.
func binary(op types.Operation, l, r Node) Node {
	pos := types.JoinSpan(l.Info().Pos, r.Info().Pos)
	if inner, ok := op.Compound(); ok {
		value := &Binary{Base: Base{Pos: pos}, Op: inner, L: Clone(l), R: r}
		return &Binary{Base: Base{Pos: pos}, Op: types.Op(types.OpAssign), L: l, R: value}
	}
	return &Binary{Base: Base{Pos: pos}, Op: op, L: l, R: r}
}
