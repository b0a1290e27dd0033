package compiler

import (
	"strings"
	"testing"

	"github.com/alecthomas/repr"

	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/ir"
	"github.com/andrewsen/ucompiler-sub000/unit"
)

func parse(t *testing.T, doc string) *unit.Unit {
	t.Helper()
	u, err := unit.Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return u
}

const counter = `
name: counter
classes:
- name: Counter
  fields:
  - {name: value, type: int}
  methods:
  - name: Add
    returns: int
    params: [{name: by, type: int}]
    body:
      source: |
        value += by;
        return value;
  - name: Sum
    returns: long
    static: true
    params: [{name: n, type: int}]
    body:
      source: |
        long total = 0;
        for (int i = 1; i <= n; i++)
            total += i;
        return total;
`

func TestCompile(t *testing.T) {
	res := Compile(parse(t, counter), Options{})
	if !res.Success || res.Err != nil {
		t.Fatalf("Compile: %v %s", res.Err, repr.String(res.Diagnostics))
	}
	if len(res.Funcs) != 2 {
		t.Fatalf("got %d functions", len(res.Funcs))
	}
	for _, f := range res.Funcs {
		if err := f.Verify(); err != nil {
			t.Errorf("%s: %v", f.Method.Signature(), err)
		}
	}
	if got := res.Funcs[1].Method.Signature(); got != "int64 Counter::Sum(int32)" {
		t.Errorf("second function = %q", got)
	}
	if !strings.Contains(ir.Sprint(res.Funcs[1]), ".local 1 int32 i") {
		t.Errorf("listing:\n%s", ir.Sprint(res.Funcs[1]))
	}
}

func TestErrorsStopLowering(t *testing.T) {
	res := Compile(parse(t, `
classes:
- name: A
  methods:
  - name: f
    static: true
    body: {source: "break;", line: 7}
  - name: g
    static: true
    body: {source: "continue;"}
`), Options{})
	if res.Success || res.Err != nil {
		t.Fatalf("Success = %v, Err = %v", res.Success, res.Err)
	}
	if len(res.Funcs) != 0 {
		t.Errorf("lowered %d functions despite errors", len(res.Funcs))
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %s", repr.String(res.Diagnostics))
	}
	first := res.Diagnostics[0]
	if first.Location.From.Filename != "A.f" || first.Location.From.Line != 7 || first.Snippet != "break;" {
		t.Errorf("first diagnostic = %s", repr.String(first))
	}
	if !strings.Contains(res.Diagnostics[1].Message, "continue") {
		t.Errorf("second diagnostic = %s", res.Diagnostics[1])
	}
}

func TestFatalStopsUnit(t *testing.T) {
	res := Compile(parse(t, `
classes:
- name: A
  methods:
  - name: f
    returns: int
    static: true
    body: {source: "return missing;"}
  - name: g
    static: true
    body: {source: "break;"}
`), Options{})
	if res.Err == nil || res.Success {
		t.Fatalf("Err = %v, Success = %v", res.Err, res.Success)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Severity != errors.Fatal {
		t.Errorf("diagnostics = %s", repr.String(res.Diagnostics))
	}
}

func TestErrorLimit(t *testing.T) {
	u := parse(t, `
options: {errorLimit: 10}
classes:
- name: A
  methods:
  - name: f
    static: true
    body: {source: "break; break; break; break;"}
`)
	res := Compile(u, Options{ErrorLimit: 3})
	if res.Err == nil {
		t.Fatal("error limit did not abort")
	}
	if len(res.Diagnostics) != 3 {
		t.Errorf("diagnostics = %s", repr.String(res.Diagnostics))
	}
}

func TestDeclarationErrors(t *testing.T) {
	res := Compile(parse(t, "classes: [{name: A, parent: Nope}]"), Options{})
	if res.Err == nil || res.Success {
		t.Errorf("Compile: Err = %v, Success = %v", res.Err, res.Success)
	}
}
