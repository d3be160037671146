package irbind

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/protobind"
	"github.com/feather-lang/protobind/internal/ir"
)

func initModule(ns *protobind.Namespace) {
	pModule.Init(protobind.Constructor{
		MinArgs: 2,
		New: func(c *protobind.Call) (any, error) {
			name, err := c.String("name", 0)
			if err != nil {
				return nil, err
			}
			ctx, err := pContext.Arg(c, "context", 1)
			if err != nil {
				return nil, err
			}
			return ir.NewModule(name, ctx), nil
		},
	})

	pModule.Accessor("name", func(m *ir.Module, c *protobind.Call) (lua.LValue, error) {
		return lua.LString(m.Name()), nil
	}, nil)
	pModule.Accessor("context", func(m *ir.Module, c *protobind.Call) (lua.LValue, error) {
		return pContext.Create(c.L, m.Context())
	}, nil)

	pModule.Method("getOrInsertFunction", 2, func(m *ir.Module, c *protobind.Call) (lua.LValue, error) {
		name, err := c.String("name", 0)
		if err != nil {
			return nil, err
		}
		ft, err := pFunctionType.Arg(c, "functionType", 1)
		if err != nil {
			return nil, err
		}
		f, err := m.GetOrInsertFunction(name, ft)
		if err != nil {
			return nil, wrapErr("getOrInsertFunction", err)
		}
		return pFunction.Create(c.L, f, c.This())
	})
	pModule.Method("getFunction", 1, func(m *ir.Module, c *protobind.Call) (lua.LValue, error) {
		name, err := c.String("name", 0)
		if err != nil {
			return nil, err
		}
		return pFunction.Create(c.L, m.Function(name), c.This())
	})
	pModule.Method("getFunctions", 0, func(m *ir.Module, c *protobind.Call) (lua.LValue, error) {
		funcs := m.Functions()
		tb := c.L.CreateTable(len(funcs), 0)
		for _, f := range funcs {
			v, err := pFunction.Create(c.L, f, c.This())
			if err != nil {
				return nil, err
			}
			tb.Append(v)
		}
		return tb, nil
	})
	pModule.Method("getFunctionNames", 0, func(m *ir.Module, c *protobind.Call) (lua.LValue, error) {
		funcs := m.Functions()
		names := make([]string, len(funcs))
		for i, f := range funcs {
			names[i] = f.Name()
		}
		return protobind.ToLua(c.L, names), nil
	})
	pModule.Method("dump", 0, func(m *ir.Module, c *protobind.Call) (lua.LValue, error) {
		return lua.LString(m.String()), nil
	})
	pModule.AddToModule(ns)
}
