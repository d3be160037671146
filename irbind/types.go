package irbind

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/protobind"
	"github.com/feather-lang/protobind/internal/ir"
)

func initContext(ns *protobind.Namespace) {
	pContext.Init(protobind.Constructor{
		New: func(c *protobind.Call) (any, error) {
			return ir.NewContext(), nil
		},
	})
	pContext.AddToModule(ns)
}

// typeStatic binds Type.name(ctx) returning one of the basic types of ctx.
func typeStatic(name string, get func(ctx *ir.Context) ir.Type) {
	pType.AddStaticMethod(name, 1, func(c *protobind.Call) (lua.LValue, error) {
		ctx, err := pContext.Arg(c, "context", 0)
		if err != nil {
			return nil, err
		}
		return wrapType(c.L, get(ctx))
	})
}

func initType(ns *protobind.Namespace) {
	pType.Init(protobind.Constructor{})

	typeStatic("getDoubleTy", func(ctx *ir.Context) ir.Type { return ctx.DoubleType() })
	typeStatic("getVoidTy", func(ctx *ir.Context) ir.Type { return ctx.VoidType() })
	typeStatic("getLabelTy", func(ctx *ir.Context) ir.Type { return ctx.LabelType() })
	typeStatic("getInt32Ty", func(ctx *ir.Context) ir.Type { return ctx.IntType(32) })
	pType.AddStaticMethod("getIntNTy", 2, func(c *protobind.Call) (lua.LValue, error) {
		ctx, err := pContext.Arg(c, "context", 0)
		if err != nil {
			return nil, err
		}
		bits, err := c.Int("bits", 1)
		if err != nil {
			return nil, err
		}
		if bits < 1 || bits > 64 {
			return nil, protobind.Errorf("integer width must be between 1 and 64, got %d", bits)
		}
		return wrapType(c.L, ctx.IntType(int(bits)))
	})

	pType.Accessor("kind", func(t ir.Type, c *protobind.Call) (lua.LValue, error) {
		return lua.LString(t.Kind().String()), nil
	}, nil)
	pType.Method("isDoubleTy", 0, func(t ir.Type, c *protobind.Call) (lua.LValue, error) {
		return lua.LBool(t.Kind() == ir.DoubleKind), nil
	})
	pType.Method("isVoidTy", 0, func(t ir.Type, c *protobind.Call) (lua.LValue, error) {
		return lua.LBool(t.Kind() == ir.VoidKind), nil
	})
	pType.Method("isIntegerTy", 0, func(t ir.Type, c *protobind.Call) (lua.LValue, error) {
		return lua.LBool(t.Kind() == ir.IntegerKind), nil
	})
	pType.Method("dump", 0, func(t ir.Type, c *protobind.Call) (lua.LValue, error) {
		return lua.LString(t.String()), nil
	})
	pType.AddToModule(ns)
}

func initFunctionType(ns *protobind.Namespace) {
	pFunctionType.Init(protobind.Constructor{})
	pFunctionType.Inherit(pType)

	// FunctionType.get(result, params, isVarArg)
	pFunctionType.AddStaticMethod("get", 3, func(c *protobind.Call) (lua.LValue, error) {
		result, err := pType.Arg(c, "result", 0)
		if err != nil {
			return nil, err
		}
		params, err := pType.ArrayArg(c, "params", 1)
		if err != nil {
			return nil, err
		}
		varArg, err := c.Bool("isVarArg", 2)
		if err != nil {
			return nil, err
		}
		ft, err := ir.NewFunctionType(result, params, varArg)
		if err != nil {
			return nil, wrapErr("FunctionType.get", err)
		}
		return pFunctionType.Create(c.L, ft)
	})

	pFunctionType.Accessor("returnType", func(ft *ir.FunctionType, c *protobind.Call) (lua.LValue, error) {
		return wrapType(c.L, ft.ReturnType())
	}, nil)
	pFunctionType.Accessor("numParams", func(ft *ir.FunctionType, c *protobind.Call) (lua.LValue, error) {
		return lua.LNumber(len(ft.Params())), nil
	}, nil)
	pFunctionType.Accessor("isVarArg", func(ft *ir.FunctionType, c *protobind.Call) (lua.LValue, error) {
		return lua.LBool(ft.IsVarArg()), nil
	}, nil)
	pFunctionType.Method("getParamType", 1, func(ft *ir.FunctionType, c *protobind.Call) (lua.LValue, error) {
		i, err := c.Int("index", 0)
		if err != nil {
			return nil, err
		}
		params := ft.Params()
		if i < 0 || int(i) >= len(params) {
			return lua.LNil, nil
		}
		return wrapType(c.L, params[i])
	})
	pFunctionType.AddToModule(ns)
}
