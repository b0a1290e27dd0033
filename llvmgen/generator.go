// Package llvmgen renders lowered instruction streams as an LLVM module.
package llvmgen

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/ztrue/tracerr"

	lowered "github.com/andrewsen/ucompiler-sub000/ir"
	"github.com/andrewsen/ucompiler-sub000/types"
)

var plog = capnslog.NewPackageLogger("github.com/andrewsen/ucompiler-sub000", "llvmgen")

type genError struct {
	msg string
}

func (e genError) Error() string { return e.msg }

// Generator accumulates the functions of one compilation unit.
type Generator struct {
	m        *ir.Module
	registry *types.Registry

	classes    map[*types.Class]*lltypes.StructType
	arrays     map[string]*lltypes.StructType
	fieldIndex map[*types.Field]int
	statics    map[*types.Field]*ir.Global
	funcs      map[*types.Method]*ir.Func
	runtime    map[string]*ir.Func
	strings    map[string]*ir.Global
}

func New(registry *types.Registry) *Generator {
	g := &Generator{
		m:          ir.NewModule(),
		registry:   registry,
		classes:    map[*types.Class]*lltypes.StructType{},
		arrays:     map[string]*lltypes.StructType{},
		fieldIndex: map[*types.Field]int{},
		statics:    map[*types.Field]*ir.Global{},
		funcs:      map[*types.Method]*ir.Func{},
		runtime:    map[string]*ir.Func{},
		strings:    map[string]*ir.Global{},
	}
	g.m.NewTypeDef("string", String)
	return g
}

func (g *Generator) fail(format string, args ...interface{}) {
	panic(genError{fmt.Sprintf(format, args...)})
}

func catch(err *error) {
	if v := recover(); v != nil {
		if e, ok := v.(genError); ok {
			*err = tracerr.Wrap(e)
			return
		}
		panic(v)
	}
}

// Add renders f into the module.
func (g *Generator) Add(f *lowered.Func) (err error) {
	defer catch(&err)
	plog.Debugf("rendering %s", f.Method.Signature())
	newFunction(g, f).render()
	return nil
}

// Module finishes the module: every class gets its layout and the type
// information global is attached.
func (g *Generator) Module() (m *ir.Module, err error) {
	defer catch(&err)
	for _, c := range g.registry.Classes() {
		g.classStruct(c)
	}
	registerTypeInfoWithModule(g.typeInfo(), g.m)
	return g.m, nil
}

// Symbol is the LLVM name of a method: owner, name and parameter types.
func Symbol(m *types.Method) string {
	parts := []string{m.Owner.Name, m.Name}
	for _, p := range m.Params {
		parts = append(parts, p.Type.String())
	}
	return strings.Join(parts, ".")
}

// declare returns the function for m, declaring it on first use. Instance
// methods take the receiver as their first parameter.
func (g *Generator) declare(m *types.Method) *ir.Func {
	if fn, ok := g.funcs[m]; ok {
		return fn
	}
	var params []*ir.Param
	if m.This != nil {
		params = append(params, ir.NewParam("this", g.llType(m.Owner)))
	}
	for _, p := range m.Params {
		params = append(params, ir.NewParam(p.Name, g.llType(p.Type)))
	}
	fn := g.m.NewFunc(Symbol(m), g.llType(m.Returns), params...)
	g.funcs[m] = fn
	return fn
}

func (g *Generator) static(f *types.Field) *ir.Global {
	if glob, ok := g.statics[f]; ok {
		return glob
	}
	glob := g.m.NewGlobalDef(f.Owner.Name+"."+f.Name, constant.NewZeroInitializer(g.llType(f.Type)))
	g.statics[f] = glob
	return glob
}

func hash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return strconv.FormatUint(uint64(h.Sum32()), 10)
}

// stringConst returns a string* to a constant string value.
func (g *Generator) stringConst(s string) *ir.Global {
	if glob, ok := g.strings[s]; ok {
		return glob
	}
	data := constant.NewCharArrayFromString(s)
	raw := g.m.NewGlobalDef("_str_"+hash(s), data)
	raw.Immutable = true

	zero := constant.NewInt(lltypes.I32, 0)
	value := constant.NewStruct(String,
		constant.NewInt(Int64, int64(len(s))),
		constant.NewGetElementPtr(data.Typ, raw, zero, zero),
	)
	glob := g.m.NewGlobalDef("_strv_"+hash(s), value)
	glob.Immutable = true
	g.strings[s] = glob
	return glob
}
