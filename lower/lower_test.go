package lower

import (
	"strings"
	"testing"

	"github.com/alecthomas/repr"

	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/ir"
	"github.com/andrewsen/ucompiler-sub000/lexer"
	"github.com/andrewsen/ucompiler-sub000/parser"
	"github.com/andrewsen/ucompiler-sub000/reader"
	"github.com/andrewsen/ucompiler-sub000/resolver"
	"github.com/andrewsen/ucompiler-sub000/types"
)

var int64Type = types.Primitive{Kind: types.Int64}

// program is a class whose methods get their bodies compiled on demand.
type program struct {
	reg   *types.Registry
	class *types.Class
	funcs map[*types.Method]*ir.Func
}

func newProgram() *program {
	reg := types.NewRegistry()
	c := types.NewClass("Box", nil)
	c.AddField("count", types.Int32Type, false)
	c.AddField("total", types.Int32Type, true)
	c.AddProperty("Size", types.Int32Type, false, true, true)
	if err := reg.Add(c); err != nil {
		panic(err)
	}
	return &program{reg: reg, class: c, funcs: map[*types.Method]*ir.Func{}}
}

func (p *program) method(name string, returns types.Type, static bool, params ...*types.Param) *types.Method {
	return p.class.AddMethod(name, returns, static, params...)
}

// compile lowers src as the body of m.
func (p *program) compile(t *testing.T, m *types.Method, src string) *ir.Func {
	t.Helper()
	f, sink, err := p.try(m, src)
	if err != nil || sink.HasErrors() {
		t.Fatalf("compile(%q): %v %s", src, err, repr.String(sink.Diagnostics()))
	}
	p.funcs[m] = f
	return f
}

func (p *program) try(m *types.Method, src string) (f *ir.Func, sink *errors.Sink, err error) {
	sink = errors.NewSink(100)
	defer errors.Recover(&err)
	block := parser.New(reader.New(lexer.Tokenize(src, "test", 1, sink), sink)).Body()
	body := resolver.New(p.reg, sink).Resolve(m, block)
	return Lower(sink, body), sink, nil
}

func nParam() *types.Param {
	return &types.Param{Name: "n", Type: types.Int32Type}
}

func listing(f *ir.Func) string {
	var lines []string
	for _, in := range f.Code {
		lines = append(lines, in.String())
	}
	return strings.Join(lines, "\n")
}

func TestIfChain(t *testing.T) {
	p := newProgram()
	f := p.compile(t, p.method("run", types.VoidType, true, nParam()),
		"if (n == 1) n = 2; else if (n == 2) n = 3; else n = 4;")
	want := strings.Join([]string{
		"ldarg 0 (n)", "ldc.int32 1", "ceq.int32", "jf L1",
		"ldc.int32 2", "starg 0 (n)", "jmp L0",
		"L1:",
		"ldarg 0 (n)", "ldc.int32 2", "ceq.int32", "jf L2",
		"ldc.int32 3", "starg 0 (n)", "jmp L0",
		"L2:",
		"ldc.int32 4", "starg 0 (n)",
		"L0:",
		"ret",
	}, "\n")
	if got := listing(f); got != want {
		t.Errorf("listing:\n%s\nwant:\n%s", got, want)
	}
}

func TestBreakJumpsToLoopExit(t *testing.T) {
	p := newProgram()
	f := p.compile(t, p.method("run", types.VoidType, true, nParam()),
		"while (n > 0) { if (n == 3) break; n--; }")

	var jumps []*ir.Label
	for _, in := range f.Code {
		if in.Op == ir.OpJmp {
			jumps = append(jumps, in.Arg.(ir.LabelRef).Label)
		}
	}
	// break, the end of the if body, the back edge
	if len(jumps) != 3 {
		t.Fatalf("jumps = %s", repr.String(jumps))
	}
	if jumps[0].Hint != "while.out" || jumps[2].Hint != "while.in" {
		t.Errorf("break jumps to %s, back edge to %s", jumps[0].Hint, jumps[2].Hint)
	}
}

func TestDoWhileKeepsBothBackEdges(t *testing.T) {
	p := newProgram()
	f := p.compile(t, p.method("run", types.VoidType, true, nParam()),
		"do { n--; if (n < 0) break; } while (n > 0);")
	got := listing(f)
	if !strings.HasSuffix(got, "cgt.int32\njt L0\njmp L0\nL1:\nret") {
		t.Errorf("listing:\n%s", got)
	}
}

func TestForRunsInitOutsideTheLoop(t *testing.T) {
	p := newProgram()
	f := p.compile(t, p.method("run", types.VoidType, true, nParam()),
		"for (int i = 0; i < n; i++) continue;")
	want := strings.Join([]string{
		"ldc.int32 0", "stloc 0 (i)",
		"L0:",
		"ldloc 0 (i)", "ldarg 0 (n)", "clt.int32", "jf L2",
		"jmp L1",
		"L1:",
		"ldloc 0 (i)", "ldc.int32 1", "add.int32", "stloc 0 (i)",
		"jmp L0",
		"L2:",
		"L3:",
		"ret",
	}, "\n")
	if got := listing(f); got != want {
		t.Errorf("listing:\n%s\nwant:\n%s", got, want)
	}
}

func TestAssignmentChainReloads(t *testing.T) {
	p := newProgram()
	f := p.compile(t, p.method("run", types.VoidType, true), "int a; int b; a = b = 1;")
	want := "ldc.int32 1\nstloc 1 (b)\nldloc 1 (b)\nstloc 0 (a)\nret"
	if got := listing(f); got != want {
		t.Errorf("listing:\n%s\nwant:\n%s", got, want)
	}
}

func TestIncrementForms(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"n++;", "ldarg 0 (n)\nldc.int32 1\nadd.int32\nstarg 0 (n)\nret"},
		{"int a = n++;", "ldarg 0 (n)\nldarg 0 (n)\nldc.int32 1\nadd.int32\nstarg 0 (n)\nstloc 0 (a)\nret"},
		{"int a = ++n;", "ldarg 0 (n)\nldc.int32 1\nadd.int32\nstarg 0 (n)\nldarg 0 (n)\nstloc 0 (a)\nret"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p := newProgram()
			f := p.compile(t, p.method("run", types.VoidType, true, nParam()), tt.src)
			if got := listing(f); got != tt.want {
				t.Errorf("listing:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestMembersLowerByReferent(t *testing.T) {
	p := newProgram()
	f := p.compile(t, p.method("run", types.VoidType, false),
		"count = 1; total = count; Size = 2; Box b = new Box(); b.count = b.Size;")
	want := strings.Join([]string{
		"ldarg 0 (this)", "ldc.int32 1", "stfld Box::count",
		"ldarg 0 (this)", "ldfld Box::count", "stsfld Box::total",
		"ldarg 0 (this)", "ldc.int32 2", "call void Box::set_Size(int32)",
		"newobj void Box::.ctor()", "stloc 0 (b)",
		"ldloc 0 (b)", "ldloc 0 (b)", "call int32 Box::get_Size()", "stfld Box::count",
		"ret",
	}, "\n")
	if got := listing(f); got != want {
		t.Errorf("listing:\n%s\nwant:\n%s", got, want)
	}
}

func TestIndirectIncrementUsesTemporaries(t *testing.T) {
	p := newProgram()
	f := p.compile(t, p.method("run", types.Int32Type, true),
		"int[] xs = new int[2]; return xs[1]++;")
	if len(f.Locals) != 4 || f.Locals[1].Name != "$t0" {
		t.Errorf("locals = %s", repr.String(f.Locals))
	}
}

func TestReturnInsertsCast(t *testing.T) {
	p := newProgram()
	f := p.compile(t, p.method("run", int64Type, true, nParam()), "return n;")
	if got := listing(f); got != "ldarg 0 (n)\nconv.int32 int64\nret" {
		t.Errorf("listing:\n%s", got)
	}
}

func TestBreakOutsideLoopIsReported(t *testing.T) {
	p := newProgram()
	f, sink, err := p.try(p.method("run", types.VoidType, true), "break;")
	if err != nil {
		t.Fatalf("aborted: %v", err)
	}
	if !sink.HasErrors() {
		t.Errorf("no diagnostics")
	}
	for _, in := range f.Code {
		if in.Op == ir.OpJmp {
			t.Errorf("emitted %s", in)
		}
	}
}

func TestClassNameStatementIsNotInternal(t *testing.T) {
	p := newProgram()
	_, sink, err := p.try(p.method("run", types.VoidType, true), "Box;")
	if err == nil {
		t.Fatal("Box; compiled")
	}
	diags := sink.Diagnostics()
	if last := diags[len(diags)-1]; last.Kind != errors.Type {
		t.Errorf("diagnostic = %s, want a type error", last)
	}
}

func TestNullComparisonIsReferenceTyped(t *testing.T) {
	p := newProgram()
	f := p.compile(t, p.method("run", types.BoolType, true, &types.Param{Name: "s", Type: types.StringType}),
		"return s == null;")
	if got := listing(f); got != "ldarg 0 (s)\nldnull\nceq.null\nret" {
		t.Errorf("listing:\n%s", got)
	}
}
