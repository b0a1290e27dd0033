package resolver

import (
	"strings"
	"testing"

	"github.com/alecthomas/repr"

	"github.com/andrewsen/ucompiler-sub000/ast"
	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/lexer"
	"github.com/andrewsen/ucompiler-sub000/parser"
	"github.com/andrewsen/ucompiler-sub000/reader"
	"github.com/andrewsen/ucompiler-sub000/types"
)

var (
	int64Type  = types.Primitive{Kind: types.Int64}
	uint8Type  = types.Primitive{Kind: types.UInt8}
	uint64Type = types.Primitive{Kind: types.UInt64}
)

func fixture() (*types.Registry, *types.Method) {
	reg := types.NewRegistry()
	base := types.NewClass("Base", nil)
	base.AddField("count", types.Int32Type, false)

	c := types.NewClass("Counter", base)
	c.AddField("total", int64Type, true)
	c.AddProperty("Name", types.StringType, false, true, true)
	c.AddProperty("Id", types.Int32Type, false, true, false)
	c.AddMethod("f", types.Int32Type, false, &types.Param{Name: "x", Type: types.Int32Type})
	c.AddMethod("f", int64Type, false, &types.Param{Name: "x", Type: int64Type})
	c.AddMethod("g", types.VoidType, false, &types.Param{Name: "x", Type: int64Type})
	c.AddMethod("g", types.VoidType, false, &types.Param{Name: "x", Type: types.DoubleType})
	c.AddMethod("log", types.VoidType, true)
	c.AddConstructor(&types.Param{Name: "start", Type: types.Int32Type})
	run := c.AddMethod("run", types.Int32Type, false, &types.Param{Name: "n", Type: types.Int32Type})

	if err := reg.Add(base); err != nil {
		panic(err)
	}
	if err := reg.Add(c); err != nil {
		panic(err)
	}
	return reg, run
}

func resolve(src string) (body *Body, sink *errors.Sink, err error) {
	reg, run := fixture()
	sink = errors.NewSink(100)
	defer errors.Recover(&err)
	block := parser.New(reader.New(lexer.Tokenize(src, "test", 1, sink), sink)).Body()
	body = New(reg, sink).Resolve(run, block)
	return body, sink, nil
}

func mustResolve(t *testing.T, src string) *Body {
	t.Helper()
	body, sink, err := resolve(src)
	if err != nil || sink.HasErrors() {
		t.Fatalf("resolve(%q): %v %s", src, err, repr.String(sink.Diagnostics()))
	}
	return body
}

func stmtExpr(b *Body, i int) ast.Node {
	switch s := b.Block.Stmts[i].(type) {
	case *ast.ExprStmt:
		return s.X
	case *ast.VarDecl:
		return s.Vars[0].Init
	case *ast.Return:
		return s.X
	}
	return nil
}

func TestImplicitCasts(t *testing.T) {
	tests := []struct {
		src  string
		want string
		typ  string
	}{
		{"double x = 2 + 3.0 * 4;", "(x = (((double)2) + (3.0 * ((double)4))))", "double"},
		{"long l = n;", "(l = ((int64)n))", "int64"},
		{"byte b = 200;", "(b = 200)", "uint8"},
		{"sbyte s = -1;", "(s = (-1))", "int8"},
		{"var s = \"n=\" + n;", "(s = (\"n=\" + ((string)n)))", "string"},
		{"bool eq = n == 2L;", "(eq = (((int64)n) == 2))", "bool"},
		{"long sh = 1L << n;", "(sh = (1 << n))", "int64"},
		{"char c = 'a'; int i = c + 1;", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			body := mustResolve(t, tt.src)
			if tt.want == "" {
				return
			}
			n := stmtExpr(body, 0)
			if got := ast.String(n); got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
			if got := ast.TypeOf(n).String(); got != tt.typ {
				t.Errorf("type = %s, want %s", got, tt.typ)
			}
		})
	}
}

func TestConstantNarrowingKeepsNoCast(t *testing.T) {
	body := mustResolve(t, "byte b = 7;")
	value := stmtExpr(body, 0).(*ast.Binary).R
	if _, ok := value.(*ast.Const); !ok || !types.Equal(ast.TypeOf(value), uint8Type) {
		t.Errorf("value = %s of type %s", ast.String(value), ast.TypeOf(value))
	}
}

func TestConstantOperandTakesTheOtherSide(t *testing.T) {
	body := mustResolve(t, "ulong u = 5; bool b = u > 0; u = u + 1;")
	cmp := stmtExpr(body, 1).(*ast.Binary).R.(*ast.Binary)
	if _, ok := cmp.R.(*ast.Const); !ok || !types.Equal(ast.TypeOf(cmp.R), uint64Type) {
		t.Errorf("u > 0: right operand %s of type %s", ast.String(cmp.R), ast.TypeOf(cmp.R))
	}
	sum := stmtExpr(body, 2).(*ast.Binary).R
	if !types.Equal(ast.TypeOf(sum), uint64Type) {
		t.Errorf("u + 1 has type %s", ast.TypeOf(sum))
	}
}

func TestInferredLocal(t *testing.T) {
	body := mustResolve(t, "var x = 1.5; var y = x * 2;")
	if got := body.Locals[1].Type.String(); got != "double" {
		t.Errorf("y inferred as %s", got)
	}
	if len(body.Locals) != 2 || body.Locals[1].Slot != 1 {
		t.Errorf("locals = %d", len(body.Locals))
	}
}

func TestReferents(t *testing.T) {
	body := mustResolve(t, `
Counter c = new Counter(1);
c.count = n;
Counter.total = c.count;
Name = "x";
int[][] xs = new int[3][];
this.count++;
return xs.Length + Id;
`)
	assign := stmtExpr(body, 1).(*ast.Binary)
	if _, ok := assign.L.Info().Ref.(*types.Field); !ok {
		t.Errorf("c.count resolved to %T", assign.L.Info().Ref)
	}
	static := stmtExpr(body, 2).(*ast.Binary)
	if f, ok := static.L.Info().Ref.(*types.Field); !ok || !f.Static {
		t.Errorf("Counter.total resolved to %s", repr.String(static.L.Info().Ref))
	}
	if got := ast.String(static.R); got != "((int64)(c.count))" {
		t.Errorf("Counter.total value = %s", got)
	}
	prop := stmtExpr(body, 3).(*ast.Binary)
	if _, ok := prop.L.Info().Ref.(*types.Property); !ok {
		t.Errorf("Name resolved to %T", prop.L.Info().Ref)
	}
	arr := body.Locals[1]
	if got := arr.Type.String(); got != "int32[][]" {
		t.Errorf("array local type = %s", got)
	}
	newObj := stmtExpr(body, 0).(*ast.Binary).R.(*ast.New)
	if m, ok := newObj.Ref.(*types.Method); !ok || !m.Ctor {
		t.Errorf("new resolved to %T", newObj.Ref)
	}
}

func TestOverloads(t *testing.T) {
	body := mustResolve(t, "f(1); f(1L);")
	first := stmtExpr(body, 0).(*ast.Call).Ref.(*types.Method)
	second := stmtExpr(body, 1).(*ast.Call).Ref.(*types.Method)
	if !types.Equal(first.Params[0].Type, types.Int32Type) || !types.Equal(second.Params[0].Type, int64Type) {
		t.Errorf("picked %s and %s", first.Signature(), second.Signature())
	}

	_, sink, err := resolve("g(n);")
	if err != nil {
		t.Fatalf("ambiguous call aborted: %v", err)
	}
	diags := sink.Diagnostics()
	if len(diags) != 1 || diags[0].Kind != errors.Overload || !strings.Contains(diags[0].Message, "ambiguous") {
		t.Errorf("diagnostics = %s", repr.String(diags))
	}
}

func TestFatalErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind errors.Kind
		want string
	}{
		{"int a = missing;", errors.Naming, "undeclared identifier 'missing'"},
		{"if (\"s\") n = 1;", errors.Type, "condition must be of type bool, not string"},
		{"while (n) n = 1;", errors.Type, "condition must be of type bool"},
		{"f(\"s\");", errors.Overload, "no overload of f accepts (string)"},
		{"int a = 1.5;", errors.Type, "cannot implicitly convert 'double' to 'int32'"},
		{"bool b = !n;", errors.Type, "operator '!' cannot be applied to 'int32'"},
		{"int a = n + log();", errors.Type, "void expression"},
		{"string s = \"a\" - 1;", errors.Type, "operator '-' cannot be applied"},
		{"int a = n.x;", errors.Type, "'int32' has no members"},
		{"ulong u = 5; bool b = u > -1;", errors.Type, "operator '>' cannot be applied"},
		{"Counter;", errors.Type, "'Counter' is a type, not a value"},
		{"for (;;Counter) break;", errors.Type, "'Counter' is a type, not a value"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, sink, err := resolve(tt.src)
			if err == nil {
				t.Fatalf("no abort, diagnostics = %s", repr.String(sink.Diagnostics()))
			}
			diags := sink.Diagnostics()
			last := diags[len(diags)-1]
			if last.Severity != errors.Fatal || last.Kind != tt.kind || !strings.Contains(last.Message, tt.want) {
				t.Errorf("last diagnostic = %s, want %s containing %q", last, tt.kind, tt.want)
			}
		})
	}
}

func TestRecoverableErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"break;", "'break' outside of a loop"},
		{"if (n > 0) continue;", "'continue' outside of a loop"},
		{"int a; int a;", "already declared"},
		{"int n;", "already a parameter"},
		{"Id = 3;", "cannot assign to Id"},
		{"return;", "missing return value"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, sink, err := resolve(tt.src)
			if err != nil {
				t.Fatalf("aborted: %v", err)
			}
			found := false
			for _, d := range sink.Diagnostics() {
				if d.Severity == errors.Error && strings.Contains(d.Message, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("diagnostics = %s, want %q", repr.String(sink.Diagnostics()), tt.want)
			}
		})
	}
}

func TestBreakInsideLoopIsFine(t *testing.T) {
	mustResolve(t, "while (n > 0) { if (n == 3) break; n--; } do { continue; } while (false);")
}
