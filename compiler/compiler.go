// Package compiler drives a unit through the pipeline: tokens, statements,
// resolution and lowering.
package compiler

import (
	"strings"

	"github.com/coreos/pkg/capnslog"

	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/ir"
	"github.com/andrewsen/ucompiler-sub000/lexer"
	"github.com/andrewsen/ucompiler-sub000/lower"
	"github.com/andrewsen/ucompiler-sub000/parser"
	"github.com/andrewsen/ucompiler-sub000/reader"
	"github.com/andrewsen/ucompiler-sub000/resolver"
	"github.com/andrewsen/ucompiler-sub000/types"
	"github.com/andrewsen/ucompiler-sub000/unit"
)

var plog = capnslog.NewPackageLogger("github.com/andrewsen/ucompiler-sub000", "compiler")

type Options struct {
	// ErrorLimit overrides the unit's own limit when positive.
	ErrorLimit int
}

type Result struct {
	Registry    *types.Registry
	Funcs       []*ir.Func
	Diagnostics []errors.Diagnostic
	Success     bool
	// Err is set when the unit could not be declared or a fatal
	// diagnostic stopped the pipeline.
	Err error
}

// Compile compiles every method body of u. Lowering runs only when no body
// produced an error.
func Compile(u *unit.Unit, opts Options) *Result {
	reg, sources, err := u.Build()
	if err != nil {
		return &Result{Err: err}
	}

	limit := u.Options.ErrorLimit
	if opts.ErrorLimit > 0 {
		limit = opts.ErrorLimit
	}
	sink := errors.NewSink(limit)
	res := &Result{Registry: reg}

	var bodies []*resolver.Body
	res.Err = run(func() {
		for _, src := range sources {
			bodies = append(bodies, front(reg, sink, src))
		}
	})

	if res.Err == nil && !sink.HasErrors() {
		res.Err = run(func() {
			for _, body := range bodies {
				plog.Debugf("lowering %s", body.Method.Signature())
				res.Funcs = append(res.Funcs, lower.Lower(sink, body))
			}
		})
	} else if len(bodies) > 0 {
		plog.Warningf("%s: not lowering %d methods, %d errors", u.Name, len(sources), sink.ErrorCount())
	}

	res.Diagnostics = sink.Diagnostics()
	res.Success = res.Err == nil && !sink.HasErrors()
	plog.Infof("%s: %d methods, %d diagnostics", u.Name, len(res.Funcs), len(res.Diagnostics))
	return res
}

// front reads, parses and resolves one body.
func front(reg *types.Registry, sink *errors.Sink, src unit.Source) *resolver.Body {
	plog.Debugf("compiling %s", src.Method.Signature())
	sink.AddSource(src.Filename, strings.Repeat("\n", src.Line-1)+src.Text)

	toks := lexer.Tokenize(src.Text, src.Filename, src.Line, sink)
	block := parser.New(reader.New(toks, sink)).Body()
	return resolver.New(reg, sink).Resolve(src.Method, block)
}

func run(f func()) (err error) {
	defer errors.Recover(&err)
	f()
	return nil
}
