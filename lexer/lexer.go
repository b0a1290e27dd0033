package lexer

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/types"
)

type Lexer struct {
	pos    types.Position
	reader *bufio.Reader
	sink   *errors.Sink
	last   int
}

func NewLexer(reader io.Reader, filename string, sink *errors.Sink) *Lexer {
	return &Lexer{
		pos:    types.Position{Line: 1, Column: 0, Filename: filename},
		reader: bufio.NewReader(reader),
		sink:   sink,
	}
}

// Tokenize lexes a whole string, for method bodies taken from a manifest.
func Tokenize(src, filename string, line int, sink *errors.Sink) []types.Token {
	l := NewLexer(strings.NewReader(src), filename, sink)
	if line > 0 {
		l.pos.Line = line
	}
	return l.All()
}

func (l *Lexer) read() (rune, error) {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		return r, err
	}
	l.last = l.pos.Column
	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 0
	} else {
		l.pos.Column++
	}
	return r, nil
}

func (l *Lexer) backup(r rune) {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}
	if r == '\n' {
		l.pos.Line--
		l.pos.Column = l.last
	} else {
		l.pos.Column--
	}
}

func (l *Lexer) peekByte() byte {
	byt, err := l.reader.Peek(1)
	if err != nil {
		return 0
	}
	return byt[0]
}

func (l *Lexer) peekBytes(n int) string {
	byt, _ := l.reader.Peek(n)
	return string(byt)
}

func (l *Lexer) skip(n int) {
	for i := 0; i < n; i++ {
		if _, err := l.read(); err != nil {
			return
		}
	}
}

func (l *Lexer) errorf(at types.Position, msg string) {
	if l.sink != nil {
		l.sink.AddError(msg, errors.Lexical, types.SingleCharSpan(at))
	}
}

func firstChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func otherChar(r rune) bool {
	return firstChar(r) || unicode.IsDigit(r)
}

func (l *Lexer) lexIdent(from types.Position) types.Token {
	var lit strings.Builder
	to := from

	for {
		r, err := l.read()
		if err != nil {
			break
		}
		if !otherChar(r) {
			l.backup(r)
			break
		}
		lit.WriteRune(r)
		to = l.pos
	}

	tok := types.Token{Kind: types.IDENT, Text: lit.String(), Location: types.Span{From: from, To: to}}
	switch tok.Text {
	case "true", "false":
		tok.Kind = types.CONST
		tok.Const = types.ConstBool
	case "null":
		tok.Kind = types.CONST
		tok.Const = types.ConstNull
	}
	return tok
}

var escapes = map[rune]rune{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'0':  0,
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
}

// lexQuoted reads a string or char literal up to the closing quote and
// returns the decoded text.
func (l *Lexer) lexQuoted(from types.Position, quote rune) (string, types.Position) {
	var lit strings.Builder

	for {
		r, err := l.read()
		if err != nil || r == '\n' {
			l.errorf(from, "unterminated literal")
			return lit.String(), l.pos
		}

		switch r {
		case quote:
			return lit.String(), l.pos
		case '\\':
			e, err := l.read()
			if err != nil {
				l.errorf(from, "unterminated literal")
				return lit.String(), l.pos
			}
			if v, ok := escapes[e]; ok {
				lit.WriteRune(v)
			} else {
				l.errorf(l.pos, "unknown escape sequence \\"+string(e))
			}
		default:
			lit.WriteRune(r)
		}
	}
}

var suffixes = map[string]types.ConstKind{
	"":   types.NotConst,
	"u":  types.ConstUInt32,
	"l":  types.ConstInt64,
	"ul": types.ConstUInt64,
	"lu": types.ConstUInt64,
	"b":  types.ConstUInt8,
	"sb": types.ConstInt8,
	"s":  types.ConstInt16,
	"us": types.ConstUInt16,
	"d":  types.ConstDouble,
}

var limits = map[types.ConstKind][2]float64{
	types.ConstInt8:   {math.MinInt8, math.MaxInt8},
	types.ConstUInt8:  {0, math.MaxUint8},
	types.ConstInt16:  {math.MinInt16, math.MaxInt16},
	types.ConstUInt16: {0, math.MaxUint16},
	types.ConstInt32:  {math.MinInt32, math.MaxInt32},
	types.ConstUInt32: {0, math.MaxUint32},
	types.ConstInt64:  {math.MinInt64, math.MaxInt64},
	types.ConstUInt64: {0, math.MaxUint64},
}

func (l *Lexer) lexNumber(from types.Position, first rune) types.Token {
	var digits strings.Builder
	digits.WriteRune(first)
	isFloat := false
	hex := false

	if first == '0' && (l.peekByte() == 'x' || l.peekByte() == 'X') {
		l.skip(1)
		digits.WriteString("x")
		hex = true
	}

scan:
	for {
		next := l.peekBytes(3)
		if next == "" {
			break
		}
		c := rune(next[0])
		switch {
		case unicode.IsDigit(c) || hex && strings.ContainsRune("abcdefABCDEF", c):
		case c == '.' && !hex && !isFloat && len(next) > 1 && unicode.IsDigit(rune(next[1])):
			isFloat = true
		case (c == 'e' || c == 'E') && !hex && len(next) > 1:
			if unicode.IsDigit(rune(next[1])) {
				isFloat = true
			} else if len(next) == 3 && (next[1] == '-' || next[1] == '+') && unicode.IsDigit(rune(next[2])) {
				isFloat = true
				digits.WriteRune(c)
				l.skip(1)
				c = rune(next[1])
			} else {
				break scan
			}
		default:
			break scan
		}
		digits.WriteRune(c)
		l.skip(1)
	}

	var suffix strings.Builder
	for firstChar(rune(l.peekByte())) {
		r, _ := l.read()
		suffix.WriteRune(unicode.ToLower(r))
	}

	tok := types.Token{Kind: types.CONST, Text: digits.String(), Location: types.Span{From: from, To: l.pos}}
	kind, ok := suffixes[suffix.String()]
	if !ok {
		l.errorf(from, "unknown numeric suffix '"+suffix.String()+"'")
	}

	if isFloat || kind == types.ConstDouble {
		if kind != types.NotConst && kind != types.ConstDouble {
			l.errorf(from, "integer suffix on a floating point constant")
		}
		if _, err := strconv.ParseFloat(tok.Text, 64); err != nil {
			l.errorf(from, "malformed number "+tok.Text)
		}
		tok.Const = types.ConstDouble
		return tok
	}

	v, err := strconv.ParseUint(tok.Text, 0, 64)
	if err != nil {
		l.errorf(from, "integer constant out of range "+tok.Text)
		tok.Const = types.ConstInt32
		return tok
	}
	if hex {
		tok.Text = strconv.FormatUint(v, 10)
	}

	if kind != types.NotConst {
		if float64(v) > limits[kind][1] {
			l.errorf(from, "constant "+tok.Text+" does not fit its suffix")
		}
		tok.Const = kind
		return tok
	}

	for _, k := range []types.ConstKind{types.ConstInt32, types.ConstUInt32, types.ConstInt64, types.ConstUInt64} {
		if float64(v) <= limits[k][1] {
			tok.Const = k
			break
		}
	}
	return tok
}

var operators = []string{
	"<<=", ">>=",
	"<<", ">>", "<=", ">=", "==", "!=", "&&", "||", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"+", "-", "*", "/", "%", "&", "|", "^", "!", "~", "<", ">", "=", ".",
}

func (l *Lexer) lexOperator(from types.Position, r rune) (types.Token, bool) {
	rest := l.peekBytes(2)
	for _, op := range operators {
		if op[0] != byte(r) || !strings.HasPrefix(rest, op[1:]) {
			continue
		}
		l.skip(len(op) - 1)
		tok := types.Token{Kind: types.OPERATOR, Text: op, Location: types.Span{From: from, To: l.pos}}
		tok.Op, _ = types.OpForSymbol(op)
		if tok.Op.IsAssign() {
			tok.Kind = types.ASSIGN
		}
		return tok, true
	}
	return types.Token{}, false
}

func (l *Lexer) skipComment() bool {
	switch l.peekByte() {
	case '/':
		for {
			r, err := l.read()
			if err != nil || r == '\n' {
				return true
			}
		}
	case '*':
		from := l.pos
		l.skip(1)
		for {
			r, err := l.read()
			if err != nil {
				l.errorf(from, "unterminated comment")
				return true
			}
			if r == '*' && l.peekByte() == '/' {
				l.skip(1)
				return true
			}
		}
	}
	return false
}

func (l *Lexer) Lex() types.Token {
	for {
		r, err := l.read()
		if err != nil {
			if err != io.EOF {
				panic(err)
			}
			return types.Token{Kind: types.EOF, Location: types.SingleCharSpan(l.pos)}
		}
		from := l.pos

		switch {
		case unicode.IsSpace(r):
			continue
		case r == '/' && l.skipComment():
			continue
		case r == ';':
			return types.Token{Kind: types.SEMI, Text: ";", Location: types.SingleCharSpan(from)}
		case strings.ContainsRune("()[]{},", r):
			return types.Token{Kind: types.DELIM, Text: string(r), Location: types.SingleCharSpan(from)}
		case r == '"':
			text, to := l.lexQuoted(from, '"')
			return types.Token{Kind: types.CONST, Const: types.ConstString, Text: text, Location: types.Span{From: from, To: to}}
		case r == '\'':
			text, to := l.lexQuoted(from, '\'')
			if len([]rune(text)) != 1 {
				l.errorf(from, "character literal must hold exactly one character")
			}
			return types.Token{Kind: types.CONST, Const: types.ConstChar, Text: text, Location: types.Span{From: from, To: to}}
		case unicode.IsDigit(r):
			return l.lexNumber(from, r)
		case firstChar(r):
			l.backup(r)
			return l.lexIdent(types.Position{Line: from.Line, Column: from.Column, Filename: from.Filename})
		}

		if tok, ok := l.lexOperator(from, r); ok {
			return tok
		}

		l.errorf(from, "unknown symbol '"+string(r)+"'")
		return types.Token{Kind: types.ILLEGAL, Text: string(r), Location: types.SingleCharSpan(from)}
	}
}

// All lexes to the end of input. The last token is always EOF.
func (l *Lexer) All() (ret []types.Token) {
	for {
		t := l.Lex()
		ret = append(ret, t)
		if t.Kind == types.EOF {
			return
		}
	}
}
