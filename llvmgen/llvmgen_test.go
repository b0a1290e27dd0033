package llvmgen

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/llir/llvm/ir"

	"github.com/andrewsen/ucompiler-sub000/compiler"
	"github.com/andrewsen/ucompiler-sub000/unit"
)

const vec = `
name: vec
classes:
- name: Vec
  fields:
  - {name: items, type: "int[]"}
  - {name: count, type: int}
  - {name: made, type: int, static: true}
  constructors:
  - params: [{name: size, type: int}]
    body: {source: "items = new int[size]; made++;"}
  methods:
  - name: Push
    returns: bool
    params: [{name: x, type: int}]
    body:
      source: |
        if (count < items.Length && x >= 0) {
            items[count++] = x;
            return true;
        }
        return false;
  - name: Describe
    returns: string
    body: {source: "return \"count=\" + count;"}
  - name: Main
    returns: int
    static: true
    body:
      source: |
        Vec v = new Vec(4);
        int i = 0;
        while (v.Push(i * 2))
            i++;
        double avg = i / 2.0;
        return i;
`

func build(t *testing.T, doc string) *ir.Module {
	t.Helper()
	u, err := unit.Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	res := compiler.Compile(u, compiler.Options{})
	if !res.Success {
		t.Fatalf("compile: %v %s", res.Err, repr.String(res.Diagnostics))
	}
	g := New(res.Registry)
	for _, f := range res.Funcs {
		if err := g.Add(f); err != nil {
			t.Fatalf("%s: %v", f.Method.Signature(), err)
		}
	}
	m, err := g.Module()
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestModule(t *testing.T) {
	text := build(t, vec).String()
	for _, want := range []string{
		"%class.Vec = type { i32, ",
		"@Vec.made = global i32",
		"define i1 @Vec.Push.int32(%class.Vec* %this, i32 %x)",
		"define void @Vec..ctor.int32(%class.Vec* %this, i32 %size)",
		"define i32 @Vec.Main()",
		"declare %string* @ucompiler_concat(",
		"declare %string* @ucompiler_int_to_string(",
		"sitofp i32",
		"icmp slt i32",
		"L0:",
		"@" + TypeInfoGlobal,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("module lacks %q:\n%s", want, text)
		}
	}
}

func TestSymbol(t *testing.T) {
	u, err := unit.Parse([]byte(vec))
	if err != nil {
		t.Fatal(err)
	}
	reg, _, err := u.Build()
	if err != nil {
		t.Fatal(err)
	}
	c := reg.Class("Vec")
	tests := map[string]string{
		"Vec.Push.int32":  Symbol(c.Overloads("Push")[0]),
		"Vec.Main":        Symbol(c.Overloads("Main")[0]),
		"Vec..ctor.int32": Symbol(c.Constructors[0]),
	}
	for want, got := range tests {
		if got != want {
			t.Errorf("Symbol = %q, want %q", got, want)
		}
	}
}

func TestTypeInfoRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vec.ll")
	if err := ioutil.WriteFile(path, []byte(build(t, vec).String()), 0644); err != nil {
		t.Fatal(err)
	}

	info, err := ReadTypeInfo(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := info.Classes["Vec"].Fields["items"]; got != "int32[]" {
		t.Errorf("Vec.items = %q, %s", got, repr.String(info))
	}
	if got := info.Methods["Vec.Push.int32"]; got != "bool Vec::Push(int32)" {
		t.Errorf("Vec.Push = %q, %s", got, repr.String(info))
	}
}

func TestTypeInfoMissing(t *testing.T) {
	if _, err := typeInfoOf(ir.NewModule()); err == nil {
		t.Error("a module without type information was accepted")
	}
}

func TestNullComparisonComparesPointers(t *testing.T) {
	text := build(t, `
classes:
- name: Text
  methods:
  - name: Count
    returns: int
    static: true
    params: [{name: s, type: string}]
    body:
      source: |
        int r = 0;
        if (s == null) r++;
        if (null != s) r++;
        if (s == "x") r++;
        return r;
`).String()
	if !strings.Contains(text, "icmp eq i8*") || !strings.Contains(text, "icmp ne i8*") {
		t.Errorf("null comparisons are not pointer comparisons:\n%s", text)
	}
	if n := strings.Count(text, "call i32 @ucompiler_strcmp("); n != 1 {
		t.Errorf("%d strcmp calls, want 1:\n%s", n, text)
	}
}
