package parser

import (
	"strings"
	"testing"

	"github.com/alecthomas/repr"

	"github.com/andrewsen/ucompiler-sub000/ast"
	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/lexer"
	"github.com/andrewsen/ucompiler-sub000/reader"
	"github.com/andrewsen/ucompiler-sub000/types"
)

func newReader(src string) *reader.Reader {
	sink := errors.NewSink(100)
	return reader.New(lexer.Tokenize(src, "test", 1, sink), sink)
}

func postfixText(tokens []types.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		switch tok.Op.Kind {
		case types.OpCall:
			parts[i] = "call/" + repr.String(tok.Op.Args)
		case types.OpNewArray:
			parts[i] = "newarr:" + tok.Text
		default:
			parts[i] = tok.Text
			if tok.Op.Kind == types.OpNeg || tok.Op.Kind == types.OpPreInc || tok.Op.Kind == types.OpPreDec {
				parts[i] = "u" + tok.Text
			}
		}
	}
	return strings.Join(parts, " ")
}

func TestPostfix(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"2 + 3 * 4", "2 3 4 * +"},
		{"1 - 2 - 3", "1 2 - 3 -"},
		{"a = b = 1", "a b 1 = ="},
		{"a += b * 2", "a b 2 * +="},
		{"(1 + 2) * 3", "1 2 + 3 *"},
		{"- -x", "x u- u-"},
		{"-a * b", "a u- b *"},
		{"!a && b || c", "a ! b && c ||"},
		{"x++ + ++y", "x ++ y u++ +"},
		{"a.b.c", "a b . c ."},
		{"a.b++", "a b . ++"},
		{"a[i + 1] = 2", "a i 1 + [] 2 ="},
		{"f()", "f call/0"},
		{"f(a, g(b, c), d[0])", "f a g b c call/2 d 0 [] call/3"},
		{"o.m(1).n", "o m 1 call/1 . n ."},
		{"new Foo(1, 2).x", "Foo 1 2 call/2 new x ."},
		{"new int[n + 1]", "n 1 + newarr:int"},
		{"1 << 2 < 3 == true", "1 2 << 3 < true =="},
		{"a & b | c ^ d", "a b & c d ^ |"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			r := newReader(tt.src)
			got := postfixText(Postfix(r, StopSemi))
			if r.Sink().HasErrors() {
				t.Fatalf("diagnostics: %s", repr.String(r.Sink().Diagnostics()))
			}
			if got != tt.want {
				t.Errorf("Postfix(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestNewArrayTrailingRanks(t *testing.T) {
	r := newReader("new int[4][][]")
	out := Postfix(r, StopSemi)
	last := out[len(out)-1]
	if last.Op.Kind != types.OpNewArray || last.Op.Dims != 2 || last.Text != "int" {
		t.Errorf("marker = %s", repr.String(last))
	}
	if !r.EOF() {
		t.Errorf("stopped at %s, want EOF", r.Current())
	}
}

func TestStopPolicy(t *testing.T) {
	r := newReader("a + (b - c)) + d")
	out := Postfix(r, StopParen)
	if got := postfixText(out); got != "a b c - +" {
		t.Errorf("postfix = %q", got)
	}
	if !r.Current().Is(types.DELIM, ")") {
		t.Errorf("terminator consumed, current = %s", r.Current())
	}

	r = newReader("f(a, b), c")
	out = Postfix(r, Stop{Texts: []string{","}})
	if got := postfixText(out); got != "f a b call/2" {
		t.Errorf("postfix = %q", got)
	}
	if !r.Current().Is(types.DELIM, ",") {
		t.Errorf("current = %s, want ','", r.Current())
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"2 + 3 * 4", "(2 + (3 * 4))"},
		{"a = b = c + 1", "(a = (b = (c + 1)))"},
		{"x++ + ++y", "((x++) + (++y))"},
		{"o.f(a, -b)[2]", "((o.f(a, (-b)))[2])"},
		{"new P(1).q", "(new P(1).q)"},
		{"s = \"hi\" + 'c'", "(s = (\"hi\" + 'c'))"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			first := ast.String(New(newReader(tt.src)).Expression(StopSemi))
			if first != tt.want {
				t.Fatalf("tree = %s, want %s", first, tt.want)
			}
			second := ast.String(New(newReader(first)).Expression(StopSemi))
			if second != first {
				t.Errorf("reparse = %s, want %s", second, first)
			}
		})
	}
}

func TestCompoundAssignmentDesugars(t *testing.T) {
	n := New(newReader("a.b -= 2")).Expression(StopSemi)
	if got := ast.String(n); got != "((a.b) = ((a.b) - 2))" {
		t.Errorf("tree = %s", got)
	}
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(a + b", "missing ')'"},
		{"a + b)", "unmatched ')'"},
		{"a[1", "missing ']'"},
		{"f(a]", "expected ')' but found ']'"},
		{"(a) b", "unexpected identifier 'b'"},
		{"a * ", "missing operand"},
		{"* a", "missing operand before '*'"},
		{"()", "nothing between"},
		{"a !", "'!' cannot follow an operand"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p := New(newReader(tt.src))
			p.Expression(StopSemi)
			found := false
			for _, d := range p.sink.Diagnostics() {
				if strings.Contains(d.Message, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("diagnostics = %s, want one containing %q", repr.String(p.sink.Diagnostics()), tt.want)
			}
		})
	}
}

func TestStatements(t *testing.T) {
	src := `
int a = 1, b;
var s = "x";
int[] xs = new int[3];
if (a < 2) b = 1; else if (a < 3) { b = 2; } else b = 3;
while (a < 10) a++; else b = 0;
do { a--; } while (a > 0);
for (int i = 0; i < 3; i++) { if (i == 1) continue; break; }
for (;;) ;
return a + b;
`
	p := New(newReader(src))
	body := p.Body()
	if p.sink.HasErrors() {
		t.Fatalf("diagnostics: %s", repr.String(p.sink.Diagnostics()))
	}
	if len(body.Stmts) != 9 {
		t.Fatalf("got %d statements, want 9", len(body.Stmts))
	}

	decl := body.Stmts[0].(*ast.VarDecl)
	if decl.TypeName != "int" || len(decl.Vars) != 2 || decl.Vars[1].Init != nil {
		t.Errorf("decl = %s %d", decl.TypeName, len(decl.Vars))
	}
	if got := ast.String(decl.Vars[0].Init); got != "(a = 1)" {
		t.Errorf("init = %s", got)
	}
	if arr := body.Stmts[2].(*ast.VarDecl); arr.TypeName != "int[]" {
		t.Errorf("array decl type = %s", arr.TypeName)
	}

	ifs := body.Stmts[3].(*ast.If)
	if len(ifs.Conds) != 2 || ifs.Else == nil {
		t.Errorf("if has %d conditions, else %v", len(ifs.Conds), ifs.Else != nil)
	}
	if w := body.Stmts[4].(*ast.While); w.Else == nil {
		t.Errorf("while else lost")
	}
	if d := body.Stmts[5].(*ast.DoWhile); ast.String(d.Cond) != "(a > 0)" {
		t.Errorf("do-while condition = %s", ast.String(d.Cond))
	}

	f := body.Stmts[6].(*ast.For)
	if _, ok := f.Init.(*ast.VarDecl); !ok || ast.String(f.Iter) != "(i++)" {
		t.Errorf("for init = %T iter = %s", f.Init, ast.String(f.Iter))
	}
	empty := body.Stmts[7].(*ast.For)
	if empty.Init != nil || empty.Cond != nil || empty.Iter != nil {
		t.Errorf("empty for header parsed parts")
	}
	if ret := body.Stmts[8].(*ast.Return); ast.String(ret.X) != "(a + b)" {
		t.Errorf("return = %s", ast.String(ret.X))
	}
}

func TestStatementRecovery(t *testing.T) {
	p := New(newReader("a = (1 + ; b = 2; else c = 3; d = 4;"))
	body := p.Body()
	if p.sink.ErrorCount() < 2 {
		t.Errorf("errors = %d, want at least 2", p.sink.ErrorCount())
	}
	last := body.Stmts[len(body.Stmts)-1].(*ast.ExprStmt)
	if ast.String(last.X) != "(d = 4)" {
		t.Errorf("last statement = %s", ast.String(last.X))
	}
}
