package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/coreos/pkg/capnslog"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"github.com/andrewsen/ucompiler-sub000/ast"
	"github.com/andrewsen/ucompiler-sub000/compiler"
	"github.com/andrewsen/ucompiler-sub000/errors"
	"github.com/andrewsen/ucompiler-sub000/ir"
	"github.com/andrewsen/ucompiler-sub000/lexer"
	"github.com/andrewsen/ucompiler-sub000/llvmgen"
	"github.com/andrewsen/ucompiler-sub000/parser"
	"github.com/andrewsen/ucompiler-sub000/reader"
	"github.com/andrewsen/ucompiler-sub000/unit"
)

var plog = capnslog.NewPackageLogger("github.com/andrewsen/ucompiler-sub000", "main")

var extensions = map[string]string{
	unit.FormatText:   ".uil",
	unit.FormatBinary: ".ucb",
	unit.FormatLLVM:   ".ll",
}

func setLogLevel(name string) error {
	level, err := capnslog.ParseLevel(strings.ToUpper(name))
	if err != nil {
		return err
	}
	capnslog.SetFormatter(capnslog.NewPrettyFormatter(os.Stderr, level >= capnslog.DEBUG))
	capnslog.SetGlobalLogLevel(level)
	return nil
}

func printDiagnostics(diags []errors.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d)
	}
}

// expression reads a single expression from the command line arguments.
func expression(c *cli.Context) (*errors.Sink, *reader.Reader) {
	src := strings.Join(c.Args().Slice(), " ")
	sink := errors.NewSink(errors.DefaultLimit)
	sink.AddSource("<args>", src)
	r := reader.New(lexer.Tokenize(src, "<args>", 1, sink), sink)
	return sink, r
}

func render(res *compiler.Result, format string) ([]byte, error) {
	switch format {
	case unit.FormatText:
		var sb strings.Builder
		for i, f := range res.Funcs {
			if i > 0 {
				sb.WriteString("\n")
			}
			if err := ir.Fprint(&sb, f); err != nil {
				return nil, err
			}
		}
		return []byte(sb.String()), nil
	case unit.FormatBinary:
		var out []byte
		for _, f := range res.Funcs {
			data, err := ir.Assemble(f)
			if err != nil {
				return nil, err
			}
			out = append(out, data...)
		}
		return out, nil
	case unit.FormatLLVM:
		g := llvmgen.New(res.Registry)
		for _, f := range res.Funcs {
			if err := g.Add(f); err != nil {
				return nil, err
			}
		}
		m, err := g.Module()
		if err != nil {
			return nil, err
		}
		return []byte(m.String()), nil
	}
	return nil, tracerr.Errorf("unknown output format %q", format)
}

func main() {
	app := &cli.App{
		Name:  "ucompiler",
		Usage: "method body compiler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "CRITICAL, ERROR, WARNING, NOTICE, INFO, DEBUG or TRACE",
			},
		},
		Before: func(c *cli.Context) error {
			level := c.String("log-level")
			if level == "" {
				level = "NOTICE"
			}
			return setLogLevel(level)
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "write a unit manifest skeleton",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Value: "unit.yaml"},
				},
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return cli.Exit("no unit name provided", 1)
					}
					out, err := unit.Skeleton(name).Marshal()
					if err != nil {
						return err
					}
					if _, err := os.Stat(c.String("output")); err == nil {
						return cli.Exit(fmt.Sprintf("%s already exists", c.String("output")), 1)
					}
					return ioutil.WriteFile(c.String("output"), out, 0644)
				},
			},
			{
				Name:      "build",
				Usage:     "compile every method of a unit",
				ArgsUsage: "<manifest>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output"},
					&cli.StringFlag{Name: "format", Usage: "text, binary or llvm"},
					&cli.IntFlag{Name: "error-limit"},
					&cli.BoolFlag{Name: "dump", Usage: "print the output instead of writing it"},
				},
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						path = "unit.yaml"
					}
					u, err := unit.Load(path)
					if err != nil {
						return err
					}
					if u.Options.LogLevel != "" && !c.IsSet("log-level") {
						if err := setLogLevel(u.Options.LogLevel); err != nil {
							return err
						}
					}
					format := u.Options.Format
					if c.IsSet("format") {
						format = c.String("format")
					}
					if _, ok := extensions[format]; !ok {
						return cli.Exit(fmt.Sprintf("unknown output format %q", format), 1)
					}

					res := compiler.Compile(u, compiler.Options{ErrorLimit: c.Int("error-limit")})
					printDiagnostics(res.Diagnostics)
					if res.Err != nil {
						if abort, ok := tracerr.Unwrap(res.Err).(*errors.Abort); !ok || abort.Diagnostic.Kind == errors.Internal {
							tracerr.PrintSourceColor(res.Err)
						}
						return cli.Exit("compilation failed", 1)
					}
					if !res.Success {
						return cli.Exit(fmt.Sprintf("%d errors", len(res.Diagnostics)), 1)
					}

					data, err := render(res, format)
					if err != nil {
						tracerr.PrintSourceColor(err)
						return cli.Exit("rendering failed", 1)
					}
					if c.Bool("dump") {
						if format == unit.FormatBinary {
							repr.Println(data)
						} else {
							fmt.Print(string(data))
						}
						return nil
					}

					out := c.String("output")
					if out == "" {
						out = u.Name + extensions[format]
					}
					plog.Infof("writing %s", out)
					return ioutil.WriteFile(out, data, 0644)
				},
			},
			{
				Name:      "postfix",
				Usage:     "print the postfix form of an expression",
				ArgsUsage: "<expression>",
				Action: func(c *cli.Context) error {
					sink, r := expression(c)
					var err error
					var texts []string
					func() {
						defer errors.Recover(&err)
						for _, tok := range parser.Postfix(r, parser.StopSemi) {
							texts = append(texts, tok.Text)
						}
					}()
					printDiagnostics(sink.Diagnostics())
					if err != nil {
						return cli.Exit("", 1)
					}
					repr.Println(texts)
					return nil
				},
			},
			{
				Name:      "tree",
				Usage:     "print the tree built for an expression",
				ArgsUsage: "<expression>",
				Action: func(c *cli.Context) error {
					sink, r := expression(c)
					var err error
					var tree ast.Node
					func() {
						defer errors.Recover(&err)
						tree = parser.New(r).Expression(parser.StopSemi)
					}()
					printDiagnostics(sink.Diagnostics())
					if err != nil || tree == nil {
						return cli.Exit("", 1)
					}
					fmt.Println(ast.String(tree))
					return nil
				},
			},
			{
				Name:      "typeinfo",
				Usage:     "dump the type information of a compiled module",
				ArgsUsage: "<file.ll>",
				Action: func(c *cli.Context) error {
					info, err := llvmgen.ReadTypeInfo(c.Args().First())
					if err != nil {
						return err
					}
					repr.Println(info)
					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		tracerr.PrintSourceColor(err)
		os.Exit(1)
	}
}
