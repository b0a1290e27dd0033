package errors

import (
	"fmt"
	"strings"

	"github.com/ztrue/tracerr"

	"github.com/andrewsen/ucompiler-sub000/types"
)

type Severity int

const (
	Warning Severity = iota
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "fatal"
}

type Kind int

const (
	Lexical Kind = iota
	Syntax
	Shape
	Naming
	Type
	Overload
	Internal
)

func (k Kind) String() string {
	return [...]string{"lexical", "syntax", "expression", "naming", "type", "overload", "internal"}[k]
}

type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Location types.Span
	Snippet  string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s %s: %s", d.Location.From, d.Kind, d.Severity, d.Message)
	if d.Snippet != "" {
		s += "\n\t" + d.Snippet
	}
	return s
}

// Abort is panicked by AddFatal and by the error limit. Recover turns it back
// into an error at the pipeline boundary.
type Abort struct {
	Diagnostic Diagnostic
	cause      error
}

func (a *Abort) Error() string {
	return a.Diagnostic.Message
}

func (a *Abort) Unwrap() error {
	return a.cause
}

// DefaultLimit is the number of error diagnostics after which compilation
// stops even if every error was recoverable.
const DefaultLimit = 10

// Sink collects diagnostics for one compilation unit.
type Sink struct {
	Limit int

	diags  []Diagnostic
	errors int
	source map[string][]string
}

func NewSink(limit int) *Sink {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Sink{Limit: limit, source: map[string][]string{}}
}

// AddSource registers the text of a file so diagnostics can quote the
// offending line.
func (s *Sink) AddSource(filename, text string) {
	s.source[filename] = strings.Split(text, "\n")
}

func (s *Sink) snippet(at types.Span) string {
	lines := s.source[at.From.Filename]
	if at.From.Line < 1 || at.From.Line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[at.From.Line-1], "\r")
}

func (s *Sink) add(sev Severity, kind Kind, msg string, at types.Span) Diagnostic {
	d := Diagnostic{
		Severity: sev,
		Kind:     kind,
		Message:  msg,
		Location: at,
		Snippet:  s.snippet(at),
	}
	s.diags = append(s.diags, d)
	return d
}

func (s *Sink) AddWarning(msg string, kind Kind, at types.Span) {
	s.add(Warning, kind, msg, at)
}

// AddError records a recoverable diagnostic. Reaching the limit aborts.
func (s *Sink) AddError(msg string, kind Kind, at types.Span) {
	d := s.add(Error, kind, msg, at)
	s.errors++
	if s.errors >= s.Limit {
		panic(&Abort{Diagnostic: d, cause: tracerr.Errorf("too many errors (%d)", s.errors)})
	}
}

// AddFatal records the diagnostic and unwinds the pipeline.
func (s *Sink) AddFatal(msg string, kind Kind, at types.Span) {
	d := s.add(Fatal, kind, msg, at)
	s.errors++
	panic(&Abort{Diagnostic: d})
}

// Report records err as an error, using its location when it has one.
func (s *Sink) Report(err error, kind Kind) {
	s.AddError(err.Error(), kind, locationOf(err))
}

// Fail records err as fatal.
func (s *Sink) Fail(err error, kind Kind) {
	s.AddFatal(err.Error(), kind, locationOf(err))
}

// Internal reports a broken invariant of the compiler itself.
func (s *Sink) Internal(at types.Span, format string, args ...interface{}) {
	cause := tracerr.Errorf(format, args...)
	d := s.add(Fatal, Internal, "internal compiler error: "+cause.Error(), at)
	s.errors++
	panic(&Abort{Diagnostic: d, cause: cause})
}

func (s *Sink) Diagnostics() []Diagnostic {
	return s.diags
}

func (s *Sink) HasErrors() bool {
	return s.errors > 0
}

func (s *Sink) ErrorCount() int {
	return s.errors
}

// Recover converts an Abort panic into *err. Other panics keep unwinding.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if abort, ok := r.(*Abort); ok {
		*err = tracerr.Wrap(abort)
		return
	}
	panic(r)
}

func locationOf(err error) types.Span {
	switch e := err.(type) {
	case ExpectedKindGotKind:
		return e.Location
	case ExpectedOneOfKindGotKind:
		return e.Location
	case Redeclared:
		return e.Location
	case Undeclared:
		return e.Location
	case NoConversion:
		return e.Location
	case OperatorMismatch:
		return e.Location
	}
	return types.Span{}
}
