// Package irbind exposes package ir to Lua through protobind.
//
// Importing the package registers its types on protobind.Default. Open
// builds a namespace holding them:
//
//	L := lua.NewState()
//	ns, err := irbind.Open(L, "llvm")
//	ns.SetGlobal("llvm")
//
//	-- Lua
//	local ctx = llvm.Context.new()
//	local mod = llvm.Module.new("demo", ctx)
package irbind

import (
	_ "embed"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/protobind"
	"github.com/feather-lang/protobind/internal/ir"
)

// Version is exposed to scripts as a constant of the namespace.
const Version = "0.1.0"

var (
	pContext      *protobind.Proto[*ir.Context]
	pType         *protobind.Proto[ir.Type]
	pFunctionType *protobind.Proto[*ir.FunctionType]
	pValue        *protobind.Proto[ir.Value]
	pFunction     *protobind.Proto[*ir.Function]
	pBasicBlock   *protobind.Proto[*ir.BasicBlock]
	pModule       *protobind.Proto[*ir.Module]
	pIRBuilder    *protobind.Proto[*ir.Builder]
)

func init() {
	r := protobind.Default
	pContext = protobind.NewProto[*ir.Context](r, "Context", initContext)
	pType = protobind.NewProto[ir.Type](r, "Type", initType)
	pFunctionType = protobind.NewProto[*ir.FunctionType](r, "FunctionType", initFunctionType)
	pValue = protobind.NewProto[ir.Value](r, "Value", initValue)
	pFunction = protobind.NewProto[*ir.Function](r, "Function", initFunction)
	pBasicBlock = protobind.NewProto[*ir.BasicBlock](r, "BasicBlock", initBasicBlock)
	pModule = protobind.NewProto[*ir.Module](r, "Module", initModule)
	pIRBuilder = protobind.NewProto[*ir.Builder](r, "IRBuilder", initIRBuilder)
}

//go:embed prelude.lua
var prelude string

// Open creates a namespace called name in L, populates it with every type
// registered on protobind.Default and runs the script-side prelude. When
// the package library is open the namespace is also available through
// require(name).
func Open(L *lua.LState, name string) (*protobind.Namespace, error) {
	ns := protobind.NewNamespace(L, name)
	protobind.InitAll(ns)
	ns.DefineConst("version", lua.LString(Version))

	fn, err := L.Load(strings.NewReader(prelude), "@prelude.lua")
	if err != nil {
		return nil, fmt.Errorf("failed to load prelude: %w", err)
	}
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, ns.Value()); err != nil {
		return nil, fmt.Errorf("failed to run prelude: %w", err)
	}
	if L.GetGlobal("package") != lua.LNil {
		if err := ns.Preload(name); err != nil {
			return nil, err
		}
	}
	return ns, nil
}

// wrapValue wraps v with the most specific bound type.
func wrapValue(L *lua.LState, v ir.Value) (lua.LValue, error) {
	switch v := v.(type) {
	case *ir.Function:
		return pFunction.Create(L, v)
	case *ir.BasicBlock:
		return pBasicBlock.Create(L, v)
	}
	return pValue.Create(L, v)
}

// wrapType wraps t with the most specific bound type.
func wrapType(L *lua.LState, t ir.Type) (lua.LValue, error) {
	if ft, ok := t.(*ir.FunctionType); ok {
		return pFunctionType.Create(L, ft)
	}
	return pType.Create(L, t)
}

// optString extracts an optional string that may also be passed as nil.
func optString(c *protobind.Call, name string, pos int) (string, error) {
	if c.Arg(pos) == lua.LNil {
		return "", nil
	}
	return c.String(name, pos)
}

// wrapErr turns a failure of the native library into a script error.
func wrapErr(op string, err error) error {
	return protobind.Errorf("%s: %v", op, err)
}
