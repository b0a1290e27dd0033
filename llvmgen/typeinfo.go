package llvmgen

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/ztrue/tracerr"
)

// TypeInfoGlobal names the global holding a module's type information.
const TypeInfoGlobal = "__ucompiler_types"

// TypeInfo describes the classes and methods of a compiled module, so
// later units can link against it without its source.
type TypeInfo struct {
	Classes map[string]ClassInfo `json:"classes"`
	Methods map[string]string    `json:"methods"`
}

type ClassInfo struct {
	Parent string            `json:"parent,omitempty"`
	Fields map[string]string `json:"fields"`
}

func (g *Generator) typeInfo() TypeInfo {
	t := TypeInfo{
		Classes: map[string]ClassInfo{},
		Methods: map[string]string{},
	}
	for _, c := range g.registry.Classes() {
		info := ClassInfo{Fields: map[string]string{}}
		if c.Parent != nil {
			info.Parent = c.Parent.Name
		}
		for name, f := range c.Fields {
			info.Fields[name] = f.Type.String()
		}
		t.Classes[c.Name] = info
	}
	for m, fn := range g.funcs {
		t.Methods[fn.Name()] = m.Signature()
	}
	return t
}

func registerTypeInfoWithModule(t TypeInfo, m *ir.Module) {
	data, err := json.Marshal(t)
	if err != nil {
		panic(err)
	}

	g := m.NewGlobalDef(TypeInfoGlobal, constant.NewCharArray(append(data, 0)))
	g.Immutable = true
}

// ReadTypeInfo loads the type information from an LLVM assembly file
// produced by this package.
func ReadTypeInfo(path string) (TypeInfo, error) {
	m, err := asm.ParseFile(path)
	if err != nil {
		return TypeInfo{}, tracerr.Wrap(err)
	}
	return typeInfoOf(m)
}

func typeInfoOf(m *ir.Module) (t TypeInfo, err error) {
	for _, g := range m.Globals {
		if g.Name() != TypeInfoGlobal {
			continue
		}
		data, ok := g.Init.(*constant.CharArray)
		if !ok {
			return t, tracerr.New(fmt.Sprintf("%s is not a character array", TypeInfoGlobal))
		}
		err = json.Unmarshal(bytes.TrimRight(data.X, "\x00"), &t)
		return t, tracerr.Wrap(err)
	}
	return t, tracerr.New("module carries no type information")
}
