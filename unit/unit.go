// Package unit loads the YAML manifest describing a compilation unit: its
// classes, their members, and the source text of every method body.
package unit

import (
	"fmt"
	"io/ioutil"

	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"

	"github.com/andrewsen/ucompiler-sub000/types"
)

var plog = capnslog.NewPackageLogger("github.com/andrewsen/ucompiler-sub000", "unit")

const (
	FormatText   = "text"
	FormatBinary = "binary"
	FormatLLVM   = "llvm"
)

type Unit struct {
	Name    string   `yaml:"name"`
	Options Options  `yaml:"options,omitempty"`
	Classes []*Class `yaml:"classes"`
}

type Options struct {
	ErrorLimit int    `yaml:"errorLimit,omitempty"`
	LogLevel   string `yaml:"logLevel,omitempty"`
	Format     string `yaml:"format,omitempty"`
}

type Class struct {
	Name         string      `yaml:"name"`
	Parent       string      `yaml:"parent,omitempty"`
	Fields       []*Field    `yaml:"fields,omitempty"`
	Properties   []*Property `yaml:"properties,omitempty"`
	Constructors []*Method   `yaml:"constructors,omitempty"`
	Methods      []*Method   `yaml:"methods,omitempty"`
}

type Field struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Static bool   `yaml:"static,omitempty"`
}

// Property accessors are methods; Get and Set hold their bodies when the
// unit defines them.
type Property struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Static bool   `yaml:"static,omitempty"`
	Get    *Body  `yaml:"get,omitempty"`
	Set    *Body  `yaml:"set,omitempty"`
}

type Method struct {
	Name    string   `yaml:"name,omitempty"`
	Returns string   `yaml:"returns,omitempty"`
	Static  bool     `yaml:"static,omitempty"`
	Params  []*Param `yaml:"params,omitempty"`
	Body    *Body    `yaml:"body,omitempty"`
}

type Param struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Body is method source. Line is where the text starts in whatever file
// the body was cut from, for diagnostics.
type Body struct {
	Source string `yaml:"source"`
	Line   int    `yaml:"line,omitempty"`
}

// Source pairs a declared method with the text of its body.
type Source struct {
	Method   *types.Method
	Filename string
	Line     int
	Text     string
}

func Load(path string) (*Unit, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Unit, error) {
	var u Unit
	if err := yaml.UnmarshalStrict(data, &u); err != nil {
		return nil, tracerr.Wrap(err)
	}
	if u.Options.Format == "" {
		u.Options.Format = FormatText
	}
	switch u.Options.Format {
	case FormatText, FormatBinary, FormatLLVM:
	default:
		return nil, tracerr.Errorf("unknown output format %q", u.Options.Format)
	}
	return &u, nil
}

func (u *Unit) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(u)
	return out, tracerr.Wrap(err)
}

// Skeleton is the manifest written by "init".
func Skeleton(name string) *Unit {
	return &Unit{
		Name:    name,
		Options: Options{ErrorLimit: 10, LogLevel: "NOTICE", Format: FormatText},
		Classes: []*Class{{
			Name: "Program",
			Methods: []*Method{{
				Name:    "main",
				Returns: "int",
				Static:  true,
				Body:    &Body{Source: "return 0;\n", Line: 1},
			}},
		}},
	}
}

type builder struct {
	reg     *types.Registry
	sources []Source
	names   map[string]int
}

// Build declares every class of the unit and returns the method bodies in
// declaration order.
func (u *Unit) Build() (*types.Registry, []Source, error) {
	b := &builder{reg: types.NewRegistry(), names: map[string]int{}}

	for _, c := range u.Classes {
		if err := b.reg.Add(types.NewClass(c.Name, nil)); err != nil {
			return nil, nil, tracerr.Wrap(err)
		}
	}
	for _, c := range u.Classes {
		if c.Parent == "" {
			continue
		}
		parent := b.reg.Class(c.Parent)
		if parent == nil {
			return nil, nil, tracerr.Errorf("class %s: unknown parent %s", c.Name, c.Parent)
		}
		b.reg.Class(c.Name).Parent = parent
	}
	for _, c := range b.reg.Classes() {
		depth := 0
		for p := c.Parent; p != nil; p = p.Parent {
			if depth++; p == c || depth > len(u.Classes) {
				return nil, nil, tracerr.Errorf("class %s inherits from itself", c.Name)
			}
		}
	}

	for _, c := range u.Classes {
		if err := b.members(b.reg.Class(c.Name), c); err != nil {
			return nil, nil, err
		}
	}
	plog.Debugf("unit %s: %d classes, %d bodies", u.Name, len(u.Classes), len(b.sources))
	return b.reg, b.sources, nil
}

func (b *builder) typ(name string, void bool) (types.Type, error) {
	if name == "" {
		name = "void"
	}
	t, ok := b.reg.Lookup(name)
	if !ok || !void && types.IsVoid(t) {
		return nil, tracerr.Errorf("unknown type %s", name)
	}
	return t, nil
}

func (b *builder) members(c *types.Class, decl *Class) error {
	wrap := func(member string, err error) error {
		return tracerr.Errorf("%s.%s: %v", c.Name, member, err)
	}

	for _, f := range decl.Fields {
		if _, dup := c.Fields[f.Name]; dup {
			return wrap(f.Name, fmt.Errorf("declared more than once"))
		}
		t, err := b.typ(f.Type, false)
		if err != nil {
			return wrap(f.Name, err)
		}
		c.AddField(f.Name, t, f.Static)
	}

	for _, p := range decl.Properties {
		t, err := b.typ(p.Type, false)
		if err != nil {
			return wrap(p.Name, err)
		}
		prop := c.AddProperty(p.Name, t, p.Static, p.Get != nil, p.Set != nil)
		b.body(prop.Getter, p.Get)
		b.body(prop.Setter, p.Set)
	}

	for _, m := range decl.Constructors {
		params, err := b.params(m)
		if err != nil {
			return wrap(".ctor", err)
		}
		b.body(c.AddConstructor(params...), m.Body)
	}

	for _, m := range decl.Methods {
		params, err := b.params(m)
		if err != nil {
			return wrap(m.Name, err)
		}
		ret, err := b.typ(m.Returns, true)
		if err != nil {
			return wrap(m.Name, err)
		}
		b.body(c.AddMethod(m.Name, ret, m.Static, params...), m.Body)
	}
	return nil
}

func (b *builder) params(m *Method) ([]*types.Param, error) {
	var params []*types.Param
	seen := map[string]bool{}
	for _, p := range m.Params {
		if seen[p.Name] {
			return nil, fmt.Errorf("parameter %s declared more than once", p.Name)
		}
		seen[p.Name] = true
		t, err := b.typ(p.Type, false)
		if err != nil {
			return nil, err
		}
		params = append(params, &types.Param{Name: p.Name, Type: t})
	}
	return params, nil
}

func (b *builder) body(m *types.Method, body *Body) {
	if m == nil || body == nil {
		return
	}
	line := body.Line
	if line < 1 {
		line = 1
	}
	name := m.Owner.Name + "." + m.Name
	if n := b.names[name]; n > 0 {
		name = fmt.Sprintf("%s#%d", name, n)
	}
	b.names[m.Owner.Name+"."+m.Name]++
	b.sources = append(b.sources, Source{
		Method:   m,
		Filename: name,
		Line:     line,
		Text:     body.Source,
	})
}
