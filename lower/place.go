package lower

import (
	"github.com/andrewsen/ucompiler-sub000/ast"
	"github.com/andrewsen/ucompiler-sub000/ir"
	"github.com/andrewsen/ucompiler-sub000/resolver"
	"github.com/andrewsen/ucompiler-sub000/types"
)

// place is something that can be loaded from and stored to. Its address
// parts (receiver, array and index) are pushed ahead of the value.
type place struct {
	ref types.Referent
	typ types.Type

	// recv is the receiver expression of an instance member; implicit says
	// the receiver is this.
	recv     ast.Node
	implicit bool
	// index is set for array elements, with recv holding the array.
	index ast.Node

	spilled []*types.Local
}

// direct places have no address parts and load and store in one
// instruction each.
func (p *place) direct() bool {
	switch r := p.ref.(type) {
	case *types.Local, *types.Param:
		return true
	case *types.Field:
		return r.Static
	}
	return false
}

func (c *ctx) place(n ast.Node) *place {
	switch v := n.(type) {
	case *ast.Ident:
		p := &place{ref: v.Ref, typ: v.Type}
		switch r := v.Ref.(type) {
		case *types.Field:
			p.implicit = !r.Static
		case *types.Property:
			p.implicit = !r.Static
		case *types.Local, *types.Param:
		default:
			c.sink.Internal(v.Pos, "'%s' is not a storage location", v.Name())
		}
		return p
	case *ast.Binary:
		switch v.Op.Kind {
		case types.OpMember:
			id, ok := v.R.(*ast.Ident)
			if !ok {
				break
			}
			p := &place{ref: id.Ref, typ: id.Type}
			if !resolver.IsTypeName(v.L) && !isStatic(id.Ref) {
				p.recv = v.L
			}
			return p
		case types.OpIndex:
			return &place{typ: v.Type, recv: v.L, index: v.R}
		}
	}
	c.sink.Internal(n.Info().Pos, "%s is not a storage location", ast.String(n))
	return nil
}

func isStatic(ref types.Referent) bool {
	switch r := ref.(type) {
	case *types.Field:
		return r.Static
	case *types.Property:
		return r.Static
	}
	return false
}

func (p *place) parts() []ast.Node {
	var parts []ast.Node
	if p.recv != nil {
		parts = append(parts, p.recv)
	}
	if p.index != nil {
		parts = append(parts, p.index)
	}
	return parts
}

// address pushes the address parts of p. With spill they are kept in
// temporaries so again can push them a second time.
func (c *ctx) address(p *place, spill bool) {
	if p.implicit {
		c.emit(ir.OpLdarg, nil, ir.Ref{Referent: c.method.This})
		return
	}
	for _, part := range p.parts() {
		c.expr(part)
		if spill {
			tmp := c.temp(ast.TypeOf(part))
			c.emit(ir.OpDup, nil, nil)
			c.emit(ir.OpStloc, nil, ir.Ref{Referent: tmp})
			p.spilled = append(p.spilled, tmp)
		}
	}
}

func (c *ctx) again(p *place) {
	if p.implicit {
		c.emit(ir.OpLdarg, nil, ir.Ref{Referent: c.method.This})
		return
	}
	for _, tmp := range p.spilled {
		c.emit(ir.OpLdloc, nil, ir.Ref{Referent: tmp})
	}
}

// fetch pushes the value of p.
func (c *ctx) fetch(p *place) {
	c.address(p, false)
	c.load(p)
}

// load and store expect the address parts of p on the stack.
func (c *ctx) load(p *place) {
	switch r := p.ref.(type) {
	case *types.Local:
		c.emit(ir.OpLdloc, nil, ir.Ref{Referent: r})
	case *types.Param:
		c.emit(ir.OpLdarg, nil, ir.Ref{Referent: r})
	case *types.Field:
		if r.Static {
			c.emit(ir.OpLdsfld, nil, ir.Ref{Referent: r})
		} else {
			c.emit(ir.OpLdfld, nil, ir.Ref{Referent: r})
		}
	case *types.Property:
		c.emit(ir.OpCall, nil, ir.Ref{Referent: r.Getter})
	case nil:
		c.emit(ir.OpLdelem, p.typ, nil)
	}
}

func (c *ctx) store(p *place) {
	switch r := p.ref.(type) {
	case *types.Local:
		c.emit(ir.OpStloc, nil, ir.Ref{Referent: r})
	case *types.Param:
		c.emit(ir.OpStarg, nil, ir.Ref{Referent: r})
	case *types.Field:
		if r.Static {
			c.emit(ir.OpStsfld, nil, ir.Ref{Referent: r})
		} else {
			c.emit(ir.OpStfld, nil, ir.Ref{Referent: r})
		}
	case *types.Property:
		c.emit(ir.OpCall, nil, ir.Ref{Referent: r.Setter})
	case nil:
		c.emit(ir.OpStelem, p.typ, nil)
	}
}
