package parser

import (
	"fmt"

	"github.com/coreos/pkg/capnslog"

	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/reader"
	"github.com/andrewsen/ucompiler-sub000/types"
)

var plog = capnslog.NewPackageLogger("github.com/andrewsen/ucompiler-sub000", "parser")

// Stop tells the expression parser where an expression ends. The terminator
// is left for the caller.
type Stop struct {
	// Texts end the expression when met outside of any bracket.
	Texts []string
	// Balanced ends the expression at a closing bracket that has no opener,
	// as in the condition of an if statement.
	Balanced bool
}

var (
	StopSemi  = Stop{Texts: []string{";"}}
	StopParen = Stop{Balanced: true}
)

// what the previous token left the parser expecting
type position int

const (
	wantOperand position = iota
	afterOperand
)

type frame struct {
	open   string
	call   bool
	args   int
	commas int
	empty  bool
}

type shunter struct {
	r      *reader.Reader
	sink   *errors.Sink
	stop   Stop
	out    []types.Token
	ops    []types.Token
	frames []*frame
	pos    position
}

// Postfix reads one expression from r and returns it in postfix order.
// Problems are reported to the reader's sink; the result is best effort.
func Postfix(r *reader.Reader, stop Stop) []types.Token {
	s := &shunter{r: r, sink: r.Sink(), stop: stop}
	s.run()
	return s.out
}

func (s *shunter) stopHere() bool {
	tok := s.r.Current()
	if tok.Kind == types.EOF {
		return true
	}
	if len(s.frames) > 0 {
		return false
	}
	return s.r.Is(s.stop.Texts...)
}

func (s *shunter) run() {
	for !s.stopHere() {
		tok := s.r.Current()
		switch tok.Kind {
		case types.CONST:
			s.operand(tok)
		case types.IDENT:
			if tok.Text == "new" {
				s.newExpr(tok)
				continue
			}
			if s.r.Peek(1).Is(types.DELIM, "(") && s.pos == wantOperand {
				s.call(tok)
				continue
			}
			s.operand(tok)
		case types.OPERATOR, types.ASSIGN:
			s.operator(tok)
		case types.DELIM:
			if !s.delim(tok) {
				s.finish()
				return
			}
		case types.SEMI:
			// a statement terminator inside an open bracket
			s.finish()
			return
		case types.ILLEGAL:
			// already reported by the lexer
		}
		s.r.Next()
	}
	s.finish()
}

func (s *shunter) operand(tok types.Token) {
	if s.pos == afterOperand {
		s.sink.AddError(fmt.Sprintf("unexpected %s after an operand", describe(tok)), errors.Syntax, tok.Location)
		return
	}
	plog.Tracef("operand %s", tok.Text)
	s.out = append(s.out, tok)
	s.pos = afterOperand
	s.markNotEmpty()
}

func (s *shunter) markNotEmpty() {
	if n := len(s.frames); n > 0 {
		s.frames[n-1].empty = false
	}
}

// call pushes a call marker with its argument count, counted ahead through
// a fork, then opens the argument list.
func (s *shunter) call(name types.Token) {
	s.out = append(s.out, name)
	s.r.Next()
	open := s.r.Next()

	op := types.Op(types.OpCall)
	op.Args = countArgs(s.r.Fork())
	plog.Tracef("call %s with %d arguments", name.Text, op.Args)

	s.ops = append(s.ops, types.Token{Kind: types.OPERATOR, Text: name.Text, Location: name.Location, Op: op})
	s.ops = append(s.ops, open)
	s.frames = append(s.frames, &frame{open: "(", call: true, args: op.Args, empty: true})
	s.markParentNotEmpty()
	s.pos = wantOperand
}

func (s *shunter) markParentNotEmpty() {
	if n := len(s.frames); n > 1 {
		s.frames[n-2].empty = false
	}
}

// countArgs counts the top-level arguments starting right after '('.
func countArgs(f *reader.Reader) int {
	if f.Is(")") {
		return 0
	}
	depth, commas := 0, 0
	for !f.EOF() {
		tok := f.Next()
		switch tok.Kind {
		case types.SEMI:
			return commas + 1
		case types.DELIM:
			switch tok.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return commas + 1
				}
				depth--
			case ",":
				if depth == 0 {
					commas++
				}
			}
		}
	}
	return commas + 1
}

func (s *shunter) operator(tok types.Token) {
	op := tok.Op
	if s.pos == wantOperand {
		prefix, ok := op.Prefix()
		if !ok {
			s.sink.AddError(fmt.Sprintf("missing operand before '%s'", tok.Text), errors.Shape, tok.Location)
			return
		}
		tok.Op = prefix
		plog.Tracef("prefix %s", tok.Text)
		s.ops = append(s.ops, tok)
		s.markNotEmpty()
		return
	}

	if op.IsPrefixOnly() {
		s.sink.AddError(fmt.Sprintf("'%s' cannot follow an operand", tok.Text), errors.Shape, tok.Location)
		return
	}
	s.reduce(op)
	s.ops = append(s.ops, tok)
	if !op.IsIncDec() {
		s.pos = wantOperand
	}
}

// reduce moves operators that bind at least as tightly as op to the output.
// Right-associative operators only give way to strictly tighter ones.
func (s *shunter) reduce(op types.Operation) {
	for len(s.ops) > 0 {
		top := s.ops[len(s.ops)-1]
		if top.Kind == types.DELIM {
			return
		}
		if op.Assoc == types.Left && op.Prec > top.Op.Prec {
			return
		}
		if op.Assoc == types.Right && op.Prec >= top.Op.Prec {
			return
		}
		plog.Tracef("reduce %s before %s", top.Text, op.Kind)
		s.out = append(s.out, top)
		s.ops = s.ops[:len(s.ops)-1]
	}
}

// delim handles brackets and commas. It returns false when tok ends the
// expression.
func (s *shunter) delim(tok types.Token) bool {
	switch tok.Text {
	case "(":
		if s.pos == afterOperand {
			s.sink.AddError("unexpected '(' after an operand", errors.Syntax, tok.Location)
		}
		s.markNotEmpty()
		s.ops = append(s.ops, tok)
		s.frames = append(s.frames, &frame{open: "(", empty: true})
		s.pos = wantOperand

	case "[":
		if s.pos != afterOperand {
			s.sink.AddError("missing array expression before '['", errors.Shape, tok.Location)
			s.r.SkipBalanced()
			s.r.Back()
			return true
		}
		op := types.Op(types.OpIndex)
		s.reduce(op)
		s.ops = append(s.ops, types.Token{Kind: types.OPERATOR, Text: "[]", Location: tok.Location, Op: op})
		s.ops = append(s.ops, tok)
		s.frames = append(s.frames, &frame{open: "[", empty: true})
		s.pos = wantOperand

	case ")", "]":
		if len(s.frames) == 0 {
			if s.stop.Balanced {
				return false
			}
			s.sink.AddError(fmt.Sprintf("unmatched '%s'", tok.Text), errors.Syntax, tok.Location)
			return true
		}
		s.close(tok)

	case ",":
		if len(s.frames) == 0 || !s.frames[len(s.frames)-1].call {
			s.sink.AddError("unexpected ','", errors.Syntax, tok.Location)
			return len(s.frames) > 0
		}
		f := s.frames[len(s.frames)-1]
		if s.pos == wantOperand {
			s.sink.AddError("missing argument before ','", errors.Shape, tok.Location)
		}
		s.flush()
		f.commas++
		s.pos = wantOperand

	default:
		// braces end an expression at any depth
		return false
	}
	return true
}

// flush pops operators down to the innermost open bracket.
func (s *shunter) flush() {
	for len(s.ops) > 0 {
		top := s.ops[len(s.ops)-1]
		if top.Kind == types.DELIM {
			return
		}
		s.out = append(s.out, top)
		s.ops = s.ops[:len(s.ops)-1]
	}
}

func (s *shunter) close(tok types.Token) {
	f := s.frames[len(s.frames)-1]
	want := ")"
	if f.open == "[" {
		want = "]"
	}
	if tok.Text != want {
		s.sink.AddError(fmt.Sprintf("expected '%s' but found '%s'", want, tok.Text), errors.Syntax, tok.Location)
	}
	switch {
	case f.empty && !f.call:
		s.sink.AddError(fmt.Sprintf("nothing between '%s' and '%s'", f.open, tok.Text), errors.Shape, tok.Location)
	case !f.empty && s.pos == wantOperand:
		s.sink.AddError(fmt.Sprintf("missing operand before '%s'", tok.Text), errors.Shape, tok.Location)
	}

	s.flush()
	s.ops = s.ops[:len(s.ops)-1]
	s.frames = s.frames[:len(s.frames)-1]
	s.pos = afterOperand

	switch {
	case f.call:
		marker := s.pop()
		if got := argCount(f); got != f.args {
			if !s.sink.HasErrors() {
				s.sink.Internal(tok.Location, "call %s counted %d arguments, parsed %d", marker.Text, f.args, got)
			}
			marker.Op.Args = got
		}
		s.out = append(s.out, marker)
	case f.open == "[":
		marker := s.pop()
		if marker.Op.Kind == types.OpNewArray {
			for s.r.Peek(1).Is(types.DELIM, "[") && s.r.Peek(2).Is(types.DELIM, "]") {
				s.r.Next()
				s.r.Next()
				marker.Op.Dims++
			}
		}
		s.out = append(s.out, marker)
	}
}

func argCount(f *frame) int {
	if f.empty {
		return 0
	}
	return f.commas + 1
}

func (s *shunter) pop() types.Token {
	tok := s.ops[len(s.ops)-1]
	s.ops = s.ops[:len(s.ops)-1]
	return tok
}

// newExpr handles both forms of 'new'. For new T(args) a construction
// marker is pushed and T is read again as an ordinary call; new T[n] pushes
// an array marker that closes with its bracket.
func (s *shunter) newExpr(tok types.Token) {
	if s.pos == afterOperand {
		s.sink.AddError("unexpected 'new' after an operand", errors.Syntax, tok.Location)
	}
	s.markNotEmpty()

	f := s.r.Fork()
	f.Next()
	name, ok := f.ExpectKind(types.IDENT)
	if !ok {
		s.r.Sync(f)
		return
	}
	elem := name.Text
	for f.Is("[") && f.Peek(1).Is(types.DELIM, "]") {
		f.Next()
		f.Next()
		elem += "[]"
	}

	switch {
	case f.Is("(") && elem == name.Text:
		s.r.Next()
		s.ops = append(s.ops, types.Token{Kind: types.OPERATOR, Text: "new", Location: tok.Location, Op: types.Op(types.OpNewObject)})
		s.pos = wantOperand

	case f.Is("["):
		open := f.Next()
		s.r.Sync(f)
		s.ops = append(s.ops, types.Token{Kind: types.OPERATOR, Text: elem, Location: tok.Location, Op: types.Op(types.OpNewArray)})
		s.ops = append(s.ops, open)
		s.frames = append(s.frames, &frame{open: "[", empty: true})
		s.pos = wantOperand

	default:
		s.sink.AddError(fmt.Sprintf("expected '(' or '[' after 'new %s'", elem), errors.Syntax, f.Current().Location)
		s.r.Sync(f)
		s.pos = afterOperand
	}
}

// finish drains the operator stack, reporting brackets left open.
func (s *shunter) finish() {
	for len(s.ops) > 0 {
		top := s.pop()
		if top.Kind == types.DELIM {
			closer := ")"
			if top.Text == "[" {
				closer = "]"
			}
			s.sink.AddError(fmt.Sprintf("missing '%s' for '%s'", closer, top.Text), errors.Syntax, top.Location)
			continue
		}
		if top.Op.Kind == types.OpCall || top.Op.Kind == types.OpIndex || top.Op.Kind == types.OpNewArray {
			// marker of an unclosed bracket, already reported
			continue
		}
		s.out = append(s.out, top)
	}
	s.frames = nil
}

func describe(tok types.Token) string {
	switch tok.Kind {
	case types.CONST:
		return fmt.Sprintf("constant %s", tok.Text)
	case types.IDENT:
		return fmt.Sprintf("identifier '%s'", tok.Text)
	}
	return fmt.Sprintf("'%s'", tok.Text)
}
