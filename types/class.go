package types

import (
	"fmt"
	"strings"
)

// Referent is whatever an identifier resolves to.
type Referent interface {
	is_Referent()
	RefName() string
}

type Local struct {
	Name string
	Type Type
	Slot int
	Decl Span
}

func (v *Local) is_Referent()    {}
func (v *Local) RefName() string { return v.Name }

type Param struct {
	Name string
	Type Type
	Slot int
}

func (v *Param) is_Referent()    {}
func (v *Param) RefName() string { return v.Name }

type Field struct {
	Name   string
	Type   Type
	Static bool
	Owner  *Class
}

func (v *Field) is_Referent()    {}
func (v *Field) RefName() string { return v.Name }

// Property is accessed through its getter and setter methods.
type Property struct {
	Name   string
	Type   Type
	Static bool
	Owner  *Class
	Getter *Method
	Setter *Method
}

func (v *Property) is_Referent()    {}
func (v *Property) RefName() string { return v.Name }

type Method struct {
	Name    string
	Owner   *Class
	Params  []*Param
	Returns Type
	Static  bool
	Ctor    bool
	// This is the implicit receiver parameter of instance methods, slot 0.
	This *Param
}

func (v *Method) is_Referent()    {}
func (v *Method) RefName() string { return v.Name }

// Signature renders the method the way listings and type info refer to it.
func (v *Method) Signature() string {
	var params []string
	for _, p := range v.Params {
		params = append(params, p.Type.String())
	}
	owner := "<global>"
	if v.Owner != nil {
		owner = v.Owner.Name
	}
	return fmt.Sprintf("%s %s::%s(%s)", v.Returns, owner, v.Name, strings.Join(params, ", "))
}

type Class struct {
	Name         string
	Parent       *Class
	Fields       map[string]*Field
	Properties   map[string]*Property
	Methods      map[string][]*Method
	Constructors []*Method
}

func (v *Class) is_Type() {}

func (v *Class) String() string { return v.Name }

func NewClass(name string, parent *Class) *Class {
	return &Class{
		Name:       name,
		Parent:     parent,
		Fields:     map[string]*Field{},
		Properties: map[string]*Property{},
		Methods:    map[string][]*Method{},
	}
}

func (v *Class) AddField(name string, t Type, static bool) *Field {
	f := &Field{Name: name, Type: t, Static: static, Owner: v}
	v.Fields[name] = f
	return f
}

// AddMethod registers a method overload. Parameter slots start at 1 for
// instance methods, slot 0 being the receiver.
func (v *Class) AddMethod(name string, returns Type, static bool, params ...*Param) *Method {
	m := newMethod(v, name, returns, static, params)
	v.Methods[name] = append(v.Methods[name], m)
	return m
}

func (v *Class) AddConstructor(params ...*Param) *Method {
	m := newMethod(v, ".ctor", VoidType, false, params)
	m.Ctor = true
	v.Constructors = append(v.Constructors, m)
	return m
}

// AddProperty registers a property with generated accessor methods.
func (v *Class) AddProperty(name string, t Type, static, get, set bool) *Property {
	p := &Property{Name: name, Type: t, Static: static, Owner: v}
	if get {
		p.Getter = v.AddMethod("get_"+name, t, static)
	}
	if set {
		p.Setter = v.AddMethod("set_"+name, VoidType, static, &Param{Name: "value", Type: t})
	}
	v.Properties[name] = p
	return p
}

func newMethod(owner *Class, name string, returns Type, static bool, params []*Param) *Method {
	m := &Method{Name: name, Owner: owner, Params: params, Returns: returns, Static: static}
	first := 0
	if !static {
		m.This = &Param{Name: "this", Type: owner, Slot: 0}
		first = 1
	}
	for i, p := range params {
		p.Slot = first + i
	}
	return m
}

func (v *Class) LookupField(name string) *Field {
	for c := v; c != nil; c = c.Parent {
		if f, ok := c.Fields[name]; ok {
			return f
		}
	}
	return nil
}

func (v *Class) LookupProperty(name string) *Property {
	for c := v; c != nil; c = c.Parent {
		if p, ok := c.Properties[name]; ok {
			return p
		}
	}
	return nil
}

// Overloads collects every method called name along the inheritance chain,
// nearest class first. Overrides with an identical parameter list hide the
// inherited declaration.
func (v *Class) Overloads(name string) []*Method {
	var ret []*Method
	for c := v; c != nil; c = c.Parent {
	next:
		for _, m := range c.Methods[name] {
			for _, seen := range ret {
				if sameParams(seen, m) {
					continue next
				}
			}
			ret = append(ret, m)
		}
	}
	return ret
}

// IsA reports whether v is other or derives from it.
func (v *Class) IsA(other *Class) bool {
	for c := v; c != nil; c = c.Parent {
		if c.Name == other.Name {
			return true
		}
	}
	return false
}

func sameParams(a, b *Method) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !Equal(a.Params[i].Type, b.Params[i].Type) {
			return false
		}
	}
	return true
}

// Registry holds every class declared for a compilation unit. It is built
// once by the declaration pass and only read afterwards.
type Registry struct {
	classes map[string]*Class
	order   []*Class
}

func NewRegistry() *Registry {
	return &Registry{classes: map[string]*Class{}}
}

func (r *Registry) Add(c *Class) error {
	if _, ok := r.classes[c.Name]; ok {
		return fmt.Errorf("class %s declared more than once", c.Name)
	}
	r.classes[c.Name] = c
	r.order = append(r.order, c)
	return nil
}

func (r *Registry) Class(name string) *Class {
	return r.classes[name]
}

func (r *Registry) Classes() []*Class {
	return r.order
}

// Lookup resolves a type name: primitives first, then classes. Trailing
// "[]" pairs add array ranks.
func (r *Registry) Lookup(name string) (Type, bool) {
	dims := 0
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSuffix(name, "[]")
		dims++
	}
	var t Type
	if p, ok := PrimitiveNamed(name); ok {
		t = p
	} else if c := r.classes[name]; c != nil {
		t = c
	} else {
		return nil, false
	}
	if dims > 0 {
		if IsVoid(t) {
			return nil, false
		}
		t = Array{Inner: t, Dims: dims}
	}
	return t, true
}
