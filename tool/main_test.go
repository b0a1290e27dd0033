package main

import (
	"strings"
	"testing"

	"github.com/alecthomas/participle"
)

const defs = `
// comment
group "stack" {
	nop none "does nothing";
	dup none "duplicates";
}
group "control" {
	jmp label "jumps";
}
`

func parse(t *testing.T, src string) *OpcodeDefs {
	t.Helper()
	parser := participle.MustBuild(&OpcodeDefs{}, participle.Unquote("String"))
	d := &OpcodeDefs{}
	if err := parser.ParseString(src, d); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestGenerateOpcodes(t *testing.T) {
	d := parse(t, defs)
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}
	out := GenerateOpcodes("ir", "opcodes.def", d)
	for _, want := range []string{
		"Code generated by opgen from opcodes.def. DO NOT EDIT.",
		"OpNop Opcode = iota",
		"OpJmp:",
		"LabelOperand",
		`"control"`,
		"numOpcodes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestValidate(t *testing.T) {
	for _, src := range []string{
		`group "a" { nop none "x"; nop none "y"; }`,
		`group "a" { nop register "x"; }`,
	} {
		if err := parse(t, src).Validate(); err == nil {
			t.Errorf("Validate(%q) succeeded", src)
		}
	}
}
