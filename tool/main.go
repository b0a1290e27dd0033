package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle"

	. "github.com/dave/jennifer/jen"
)

type OpcodeDefs struct {
	Groups []*Group `@@*`
}

type Group struct {
	Name    string    `"group" @String "{"`
	Opcodes []*Opcode `@@* "}"`
}

type Opcode struct {
	Name    string `@Ident`
	Operand string `@Ident`
	Doc     string `@String ";"`
}

func (o *Opcode) GoName() string {
	return "Op" + strings.Title(o.Name)
}

var operandKinds = map[string]string{
	"none":  "NoOperand",
	"ref":   "RefOperand",
	"lit":   "LitOperand",
	"type":  "TypeOperand",
	"label": "LabelOperand",
	"ctor":  "CtorOperand",
}

func (d *OpcodeDefs) Validate() error {
	seen := map[string]bool{}
	for _, g := range d.Groups {
		for _, op := range g.Opcodes {
			if seen[op.Name] {
				return fmt.Errorf("opcode %s defined twice", op.Name)
			}
			seen[op.Name] = true
			if _, ok := operandKinds[op.Operand]; !ok {
				return fmt.Errorf("opcode %s: unknown operand kind %q", op.Name, op.Operand)
			}
		}
	}
	return nil
}

func GenerateOpcodes(pkgname, source string, d *OpcodeDefs) string {
	f := NewFile(pkgname)
	f.HeaderComment(fmt.Sprintf("Code generated by opgen from %s. DO NOT EDIT.", source))

	first := true
	f.Const().DefsFunc(func(g *Group) {
		for _, grp := range d.Groups {
			for _, op := range grp.Opcodes {
				g.Comment(fmt.Sprintf("%s %s", op.Name, op.Doc))
				if first {
					g.Id(op.GoName()).Id("Opcode").Op("=").Iota()
					first = false
				} else {
					g.Id(op.GoName())
				}
			}
		}
		g.Line()
		g.Id("numOpcodes")
	})

	table := func(name, elem string, value func(grp *Group, op *Opcode) Code) {
		f.Var().Id(name).Op("=").Index(Id("numOpcodes")).Id(elem).Values(DictFunc(func(dict Dict) {
			for _, grp := range d.Groups {
				for _, op := range grp.Opcodes {
					dict[Id(op.GoName())] = value(grp, op)
				}
			}
		}))
	}
	table("opcodeNames", "string", func(_ *Group, op *Opcode) Code { return Lit(op.Name) })
	table("opcodeOperands", "OperandKind", func(_ *Group, op *Opcode) Code { return Id(operandKinds[op.Operand]) })
	table("opcodeGroups", "string", func(grp *Group, _ *Opcode) Code { return Lit(grp.Name) })

	return fmt.Sprintf("%#v", f)
}

func main() {
	parser := participle.MustBuild(&OpcodeDefs{}, participle.Unquote("String"))

	in := os.Args[1]
	out := os.Args[2]
	pkgname := os.Args[3]

	inData, err := ioutil.ReadFile(in)
	if err != nil {
		panic(err)
	}

	defs := OpcodeDefs{}
	err = parser.ParseBytes(inData, &defs)
	if err != nil {
		panic(err)
	}
	if err = defs.Validate(); err != nil {
		panic(err)
	}

	err = ioutil.WriteFile(out, []byte(GenerateOpcodes(pkgname, filepath.Base(in), &defs)), 0644)
	if err != nil {
		panic(err)
	}
}
