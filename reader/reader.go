package reader

import (
	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/types"
)

// Reader is a cursor over a token slice. It is a small value: copying it
// (Fork) gives an independent cursor over the same immutable tokens.
type Reader struct {
	tokens []types.Token
	pos    int
	sink   *errors.Sink
}

// New expects tokens to end with EOF, as lexer.All produces.
func New(tokens []types.Token, sink *errors.Sink) *Reader {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != types.EOF {
		var at types.Span
		if len(tokens) > 0 {
			at = tokens[len(tokens)-1].Location
		}
		tokens = append(tokens, types.Token{Kind: types.EOF, Location: at})
	}
	return &Reader{tokens: tokens, sink: sink}
}

func (r *Reader) Sink() *errors.Sink {
	return r.sink
}

func (r *Reader) Current() types.Token {
	return r.tokens[r.pos]
}

// Next returns the current token and advances past it. EOF is sticky.
func (r *Reader) Next() types.Token {
	tok := r.tokens[r.pos]
	if r.pos < len(r.tokens)-1 {
		r.pos++
	}
	return tok
}

// Peek looks n tokens ahead of the current one without moving.
func (r *Reader) Peek(n int) types.Token {
	if r.pos+n >= len(r.tokens) {
		return r.tokens[len(r.tokens)-1]
	}
	return r.tokens[r.pos+n]
}

// Previous is the token before the current one, if any.
func (r *Reader) Previous() (types.Token, bool) {
	if r.pos == 0 {
		return types.Token{}, false
	}
	return r.tokens[r.pos-1], true
}

// Back pushes the last consumed token back.
func (r *Reader) Back() {
	if r.pos > 0 {
		r.pos--
	}
}

// Offset is the index of the current token.
func (r *Reader) Offset() int {
	return r.pos
}

func (r *Reader) EOF() bool {
	return r.tokens[r.pos].Kind == types.EOF
}

// Fork returns an independent cursor at the same position. Moving either
// one never affects the other.
func (r *Reader) Fork() *Reader {
	f := *r
	return &f
}

// Sync moves r to where fork stopped.
func (r *Reader) Sync(fork *Reader) {
	r.pos = fork.pos
}

func (r *Reader) Is(texts ...string) bool {
	tok := r.Current()
	if tok.Kind == types.EOF || tok.Kind == types.CONST {
		return false
	}
	for _, text := range texts {
		if tok.Text == text {
			return true
		}
	}
	return false
}

func (r *Reader) IsKind(kinds ...types.TokenKind) bool {
	tok := r.Current()
	for _, kind := range kinds {
		if tok.Kind == kind {
			return true
		}
	}
	return false
}

// Accept consumes the current token if it is one of texts.
func (r *Reader) Accept(texts ...string) bool {
	if r.Is(texts...) {
		r.Next()
		return true
	}
	return false
}

// Expect consumes one of texts or records a syntax error and leaves the
// cursor where it is.
func (r *Reader) Expect(texts ...string) (types.Token, bool) {
	if r.Is(texts...) {
		return r.Next(), true
	}
	tok := r.Current()
	r.sink.Report(errors.ExpectedOneOfKindGotKind{
		Expected: texts,
		Got:      tok,
		Location: tok.Location,
	}, errors.Syntax)
	return tok, false
}

func (r *Reader) ExpectKind(kind types.TokenKind) (types.Token, bool) {
	if r.IsKind(kind) {
		return r.Next(), true
	}
	tok := r.Current()
	r.sink.Report(errors.ExpectedKindGotKind{
		Expected: kind,
		Got:      tok,
		Location: tok.Location,
	}, errors.Syntax)
	return tok, false
}

// SkipTo advances until the current token is one of texts (not consumed)
// or EOF. Bracketed groups are skipped whole.
func (r *Reader) SkipTo(texts ...string) {
	for !r.EOF() && !r.Is(texts...) {
		if r.Is("(", "[", "{") {
			r.SkipBalanced()
			continue
		}
		r.Next()
	}
}

var closers = map[string]string{"(": ")", "[": "]", "{": "}"}

// SkipBalanced consumes a bracketed group starting at the current opening
// bracket, including its closer.
func (r *Reader) SkipBalanced() {
	var stack []string
	for !r.EOF() {
		tok := r.Next()
		if tok.Kind != types.DELIM {
			if len(stack) == 0 {
				return
			}
			continue
		}
		if closer, ok := closers[tok.Text]; ok {
			stack = append(stack, closer)
			continue
		}
		if len(stack) > 0 && tok.Text == stack[len(stack)-1] {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			return
		}
	}
}
