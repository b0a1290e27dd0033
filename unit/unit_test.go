package unit

import (
	"strings"
	"testing"

	"github.com/alecthomas/repr"

	"github.com/andrewsen/ucompiler-sub000/types"
)

const manifest = `
name: shapes
options:
  errorLimit: 5
  format: llvm
classes:
- name: Square
  parent: Shape
  fields:
  - {name: side, type: int}
  constructors:
  - params: [{name: side, type: int}]
    body: {source: "this.side = side;"}
  methods:
  - name: Area
    returns: long
    body: {source: "return side * side;", line: 12}
- name: Shape
  fields:
  - {name: count, type: int, static: true}
  properties:
  - name: Name
    type: string
    get: {source: "return \"shape\";"}
  methods:
  - name: Scale
    params: [{name: by, type: double}, {name: into, type: "double[]"}]
`

func TestBuild(t *testing.T) {
	u, err := Parse([]byte(manifest))
	if err != nil {
		t.Fatal(err)
	}
	if u.Options.Format != FormatLLVM || u.Options.ErrorLimit != 5 {
		t.Errorf("options = %s", repr.String(u.Options))
	}

	reg, sources, err := u.Build()
	if err != nil {
		t.Fatal(err)
	}

	square, shape := reg.Class("Square"), reg.Class("Shape")
	if square.Parent != shape {
		t.Errorf("Square.Parent = %v, want Shape", square.Parent)
	}
	if f := square.LookupField("count"); f == nil || !f.Static {
		t.Errorf("inherited static field = %s", repr.String(f))
	}
	if p := shape.LookupProperty("Name"); p == nil || p.Getter == nil || p.Setter != nil {
		t.Errorf("property Name = %s", repr.String(p))
	}

	scale := shape.Overloads("Scale")[0]
	if got := scale.Signature(); got != "void Shape::Scale(double, double[])" {
		t.Errorf("Scale = %q", got)
	}
	if scale.Params[0].Slot != 1 {
		t.Errorf("first parameter of an instance method is in slot %d", scale.Params[0].Slot)
	}

	var got []string
	for _, s := range sources {
		got = append(got, s.Filename)
	}
	want := []string{"Square..ctor", "Square.Area", "Shape.get_Name"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("sources = %q, want %q", got, want)
	}
	if sources[1].Line != 12 || sources[0].Line != 1 {
		t.Errorf("lines = %d, %d", sources[0].Line, sources[1].Line)
	}
	if !types.Equal(sources[1].Method.Returns, types.Primitive{Kind: types.Int64}) {
		t.Errorf("Area returns %s", sources[1].Method.Returns)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown parent", "classes: [{name: A, parent: B}]", "unknown parent B"},
		{"cycle", "classes: [{name: A, parent: B}, {name: B, parent: A}]", "inherits from itself"},
		{"duplicate class", "classes: [{name: A}, {name: A}]", "more than once"},
		{"void field", "classes: [{name: A, fields: [{name: x, type: void}]}]", "unknown type void"},
		{"unknown type", "classes: [{name: A, methods: [{name: m, returns: Thing}]}]", "unknown type Thing"},
		{"duplicate param", "classes: [{name: A, methods: [{name: m, params: [{name: x, type: int}, {name: x, type: int}]}]}]", "parameter x"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			u, err := Parse([]byte(test.yaml))
			if err != nil {
				t.Fatal(err)
			}
			_, _, err = u.Build()
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("Build() = %v, want error containing %q", err, test.want)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, doc := range []string{
		"name: x\nbogus: 1\n",
		"name: x\noptions: {format: elf}\n",
	} {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("Parse(%q) succeeded", doc)
		}
	}
}

func TestSkeletonRoundTrips(t *testing.T) {
	out, err := Skeleton("demo").Marshal()
	if err != nil {
		t.Fatal(err)
	}
	u, err := Parse(out)
	if err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	if _, sources, err := u.Build(); err != nil || len(sources) != 1 {
		t.Errorf("skeleton: %v %s", err, repr.String(sources))
	}
}
