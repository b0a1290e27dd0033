package ir

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ztrue/tracerr"

	"github.com/andrewsen/ucompiler-sub000/types"
)

// Magic opens every assembled method.
var Magic = []byte("UCB\x01")

// Ref operands are tagged so a reader can tell slots from names.
const (
	refArg byte = iota + 1
	refLocal
	refField
	refStaticField
	refMethod
)

type assembler struct {
	buf    bytes.Buffer
	labels map[*Label]uint32
	fixups map[int]*Label
}

func (a *assembler) uvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	a.buf.Write(tmp[:n])
}

func (a *assembler) str(s string) {
	a.uvarint(uint64(len(s)))
	a.buf.WriteString(s)
}

func (a *assembler) typ(t types.Type) {
	if t == nil {
		a.str("")
		return
	}
	a.str(t.String())
}

// Assemble encodes f compactly. Jump operands are fixed-width byte offsets
// of the target label instruction, counted from the first instruction.
func Assemble(f *Func) ([]byte, error) {
	if err := f.Verify(); err != nil {
		return nil, tracerr.Wrap(err)
	}
	a := &assembler{labels: map[*Label]uint32{}, fixups: map[int]*Label{}}

	a.buf.Write(Magic)
	a.str(f.Method.Signature())
	a.uvarint(uint64(len(f.Locals)))
	for _, l := range f.Locals {
		a.typ(l.Type)
	}
	a.uvarint(uint64(len(f.Code)))
	start := a.buf.Len()

	for _, in := range f.Code {
		if in.Op == OpLabel {
			a.labels[in.Arg.(LabelRef).Label] = uint32(a.buf.Len() - start)
		}
		a.buf.WriteByte(byte(in.Op))
		a.typ(in.Type)
		if err := a.operand(in.Arg); err != nil {
			return nil, err
		}
	}

	out := a.buf.Bytes()
	for at, l := range a.fixups {
		binary.LittleEndian.PutUint32(out[at:], a.labels[l])
	}
	return out, nil
}

func (a *assembler) operand(arg Operand) error {
	switch v := arg.(type) {
	case nil:
	case Ref:
		switch r := v.Referent.(type) {
		case *types.Param:
			a.buf.WriteByte(refArg)
			a.uvarint(uint64(r.Slot))
		case *types.Local:
			a.buf.WriteByte(refLocal)
			a.uvarint(uint64(r.Slot))
		case *types.Field:
			if r.Static {
				a.buf.WriteByte(refStaticField)
			} else {
				a.buf.WriteByte(refField)
			}
			a.str(r.Owner.Name + "::" + r.Name)
		case *types.Method:
			a.buf.WriteByte(refMethod)
			a.str(r.Signature())
		default:
			return tracerr.Errorf("cannot assemble referent %T", v.Referent)
		}
	case Lit:
		a.buf.WriteByte(byte(v.Tok.Const))
		a.str(v.Tok.Text)
	case TypeRef:
		a.typ(v.Type)
	case LabelRef:
		a.uvarint(uint64(v.Label.ID))
		a.fixups[a.buf.Len()] = v.Label
		a.buf.Write(make([]byte, 4))
	case Ctor:
		a.str(v.Class.Name)
		if v.Method == nil {
			a.str("")
		} else {
			a.str(v.Method.Signature())
		}
	default:
		return tracerr.Errorf("cannot assemble operand %T", arg)
	}
	return nil
}

// Decoded is one instruction read back from an assembled method.
type Decoded struct {
	Offset int
	Op     Opcode
	Type   string
	// Label is the label ID of label and jump instructions, -1 otherwise.
	Label int
	// Target is the byte offset a jump lands on.
	Target int
	Text   string
}

type disassembler struct {
	r *bytes.Reader
}

func (d *disassembler) uvarint() (uint64, error) {
	return binary.ReadUvarint(d.r)
}

func (d *disassembler) str() (string, error) {
	n, err := d.uvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(d.r.Len()) {
		return "", fmt.Errorf("string of %d bytes overruns the input", n)
	}
	b := make([]byte, n)
	_, err = io.ReadFull(d.r, b)
	return string(b), err
}

// Disassemble reads back the instruction stream written by Assemble. It
// returns the method signature and the decoded instructions.
func Disassemble(data []byte) (string, []Decoded, error) {
	if !bytes.HasPrefix(data, Magic) {
		return "", nil, tracerr.New("not an assembled method")
	}
	d := &disassembler{r: bytes.NewReader(data[len(Magic):])}
	sig, err := d.str()
	if err != nil {
		return "", nil, tracerr.Wrap(err)
	}
	nlocals, err := d.uvarint()
	if err != nil {
		return "", nil, tracerr.Wrap(err)
	}
	for i := uint64(0); i < nlocals; i++ {
		if _, err := d.str(); err != nil {
			return "", nil, tracerr.Wrap(err)
		}
	}
	count, err := d.uvarint()
	if err != nil {
		return "", nil, tracerr.Wrap(err)
	}
	start := d.r.Size() - int64(d.r.Len())

	var out []Decoded
	for i := uint64(0); i < count; i++ {
		in, err := d.instruction(int(d.r.Size() - int64(d.r.Len()) - start))
		if err != nil {
			return "", nil, tracerr.Wrap(err)
		}
		out = append(out, in)
	}
	return sig, out, nil
}

func (d *disassembler) instruction(offset int) (Decoded, error) {
	in := Decoded{Offset: offset, Label: -1}
	b, err := d.r.ReadByte()
	if err != nil {
		return in, err
	}
	in.Op = Opcode(b)
	if in.Op >= numOpcodes {
		return in, fmt.Errorf("unknown opcode %d at offset %d", b, offset)
	}
	if in.Type, err = d.str(); err != nil {
		return in, err
	}

	switch in.Op.Operand() {
	case RefOperand:
		tag, err := d.r.ReadByte()
		if err != nil {
			return in, err
		}
		switch tag {
		case refArg, refLocal:
			slot, err := d.uvarint()
			in.Text = fmt.Sprint(slot)
			return in, err
		case refField, refStaticField, refMethod:
			in.Text, err = d.str()
			return in, err
		}
		return in, fmt.Errorf("unknown reference tag %d at offset %d", tag, offset)
	case LitOperand:
		if _, err := d.r.ReadByte(); err != nil {
			return in, err
		}
		in.Text, err = d.str()
	case TypeOperand:
		in.Text, err = d.str()
	case LabelOperand:
		id, err := d.uvarint()
		if err != nil {
			return in, err
		}
		var target [4]byte
		if _, err := io.ReadFull(d.r, target[:]); err != nil {
			return in, err
		}
		in.Label = int(id)
		in.Target = int(binary.LittleEndian.Uint32(target[:]))
	case CtorOperand:
		if _, err := d.str(); err != nil {
			return in, err
		}
		in.Text, err = d.str()
	}
	return in, err
}
