package reader

import (
	"testing"

	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/lexer"
	"github.com/andrewsen/ucompiler-sub000/types"
)

func newReader(src string) *Reader {
	sink := errors.NewSink(100)
	return New(lexer.Tokenize(src, "test", 1, sink), sink)
}

func TestForkIsIndependent(t *testing.T) {
	r := newReader("a b c")
	f := r.Fork()
	f.Next()
	f.Next()
	if r.Current().Text != "a" {
		t.Errorf("original moved to %q", r.Current().Text)
	}
	if f.Current().Text != "c" {
		t.Errorf("fork at %q, want c", f.Current().Text)
	}
	r.Next()
	if f.Current().Text != "c" {
		t.Errorf("fork moved with original to %q", f.Current().Text)
	}
	r.Sync(f)
	if r.Current().Text != "c" {
		t.Errorf("sync left original at %q", r.Current().Text)
	}
}

func TestPushbackAndEOF(t *testing.T) {
	r := newReader("x")
	tok := r.Next()
	r.Back()
	if r.Current() != tok {
		t.Errorf("pushback gave %s, want %s", r.Current(), tok)
	}
	r.Next()
	for i := 0; i < 3; i++ {
		if got := r.Next(); got.Kind != types.EOF {
			t.Fatalf("past end got %s", got)
		}
	}
	if r.Peek(5).Kind != types.EOF {
		t.Errorf("peek past end is not EOF")
	}
}

func TestNewAppendsEOF(t *testing.T) {
	r := New([]types.Token{{Kind: types.IDENT, Text: "a"}}, errors.NewSink(1))
	r.Next()
	if !r.EOF() {
		t.Errorf("missing EOF after last token")
	}
}

func TestExpectReports(t *testing.T) {
	r := newReader("a ;")
	if _, ok := r.Expect("("); ok {
		t.Fatalf("expected mismatch")
	}
	if r.Current().Text != "a" {
		t.Errorf("failed expect moved the cursor")
	}
	diags := r.Sink().Diagnostics()
	if len(diags) != 1 || diags[0].Kind != errors.Syntax {
		t.Errorf("diagnostics = %v", diags)
	}
	if !r.Accept("a") || !r.Is(";") {
		t.Errorf("accept did not advance")
	}
}

func TestSkipToJumpsOverGroups(t *testing.T) {
	r := newReader("f(a; b) { c; } d; e")
	r.SkipTo(";")
	if prev, _ := r.Previous(); prev.Text != "d" {
		t.Errorf("stopped after %q, want d", prev.Text)
	}
	if !r.Is(";") {
		t.Errorf("current = %s", r.Current())
	}
}
