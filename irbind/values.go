package irbind

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/protobind"
	"github.com/feather-lang/protobind/internal/ir"
)

func initValue(ns *protobind.Namespace) {
	pValue.Init(protobind.Constructor{})

	pValue.Accessor("name",
		func(v ir.Value, c *protobind.Call) (lua.LValue, error) {
			return lua.LString(v.Name()), nil
		},
		func(v ir.Value, c *protobind.Call, _ lua.LValue) error {
			name, err := c.String("name", 0)
			if err != nil {
				return err
			}
			v.SetName(name)
			return nil
		})
	pValue.Accessor("type", func(v ir.Value, c *protobind.Call) (lua.LValue, error) {
		return wrapType(c.L, v.Type())
	}, nil)
	pValue.Method("dump", 0, func(v ir.Value, c *protobind.Call) (lua.LValue, error) {
		return lua.LString(ir.Dump(v)), nil
	})
	pValue.AddToModule(ns)
}

func initFunction(ns *protobind.Namespace) {
	pFunction.Init(protobind.Constructor{
		// The first extra value is the wrapper of the owning module. It is
		// kept on the instance so fn.module returns that same wrapper.
		Setup: func(c *protobind.Call) error {
			m := c.Arg(0)
			if m == lua.LNil {
				f, err := pFunction.Self(c)
				if err != nil {
					return err
				}
				if m, err = pModule.Create(c.L, f.Module()); err != nil {
					return err
				}
			}
			c.L.SetField(c.This(), "module", m)
			return nil
		},
	})
	pFunction.Inherit(pValue)

	pFunction.Accessor("context", func(f *ir.Function, c *protobind.Call) (lua.LValue, error) {
		return pContext.Create(c.L, f.Context())
	}, nil)
	pFunction.Accessor("functionType", func(f *ir.Function, c *protobind.Call) (lua.LValue, error) {
		return pFunctionType.Create(c.L, f.FunctionType())
	}, nil)
	pFunction.Accessor("numArgs", func(f *ir.Function, c *protobind.Call) (lua.LValue, error) {
		return lua.LNumber(len(f.Args())), nil
	}, nil)
	pFunction.Accessor("isDeclaration", func(f *ir.Function, c *protobind.Call) (lua.LValue, error) {
		return lua.LBool(f.IsDeclaration()), nil
	}, nil)

	pFunction.Method("getArg", 1, func(f *ir.Function, c *protobind.Call) (lua.LValue, error) {
		i, err := c.Int("index", 0)
		if err != nil {
			return nil, err
		}
		return pValue.Create(c.L, f.Arg(int(i)))
	})
	pFunction.Method("getEntryBlock", 0, func(f *ir.Function, c *protobind.Call) (lua.LValue, error) {
		return pBasicBlock.Create(c.L, f.EntryBlock())
	})
	pFunction.Method("getBasicBlocks", 0, func(f *ir.Function, c *protobind.Call) (lua.LValue, error) {
		blocks := f.Blocks()
		tb := c.L.CreateTable(len(blocks), 0)
		for _, bb := range blocks {
			v, err := pBasicBlock.Create(c.L, bb)
			if err != nil {
				return nil, err
			}
			tb.Append(v)
		}
		return tb, nil
	})
	// _addBasicBlock is wrapped by addBasicBlock in the prelude.
	pFunction.Method("_addBasicBlock", 1, func(f *ir.Function, c *protobind.Call) (lua.LValue, error) {
		bb, err := pBasicBlock.Arg(c, "block", 0)
		if err != nil {
			return nil, err
		}
		if err := f.AppendBlock(bb); err != nil {
			return nil, wrapErr("addBasicBlock", err)
		}
		return c.Arg(0), nil
	})
	pFunction.Method("verify", 0, func(f *ir.Function, c *protobind.Call) (lua.LValue, error) {
		if err := f.Verify(); err != nil {
			return nil, wrapErr("verify", err)
		}
		return lua.LTrue, nil
	})
	pFunction.AddToModule(ns)
}

func initBasicBlock(ns *protobind.Namespace) {
	pBasicBlock.Init(protobind.Constructor{
		MinArgs: 1,
		New: func(c *protobind.Call) (any, error) {
			ctx, err := pContext.Arg(c, "context", 0)
			if err != nil {
				return nil, err
			}
			name, err := optString(c, "name", 1)
			if err != nil {
				return nil, err
			}
			return ir.NewBasicBlock(ctx, name), nil
		},
	})
	pBasicBlock.Inherit(pValue)

	pBasicBlock.Accessor("parent", func(bb *ir.BasicBlock, c *protobind.Call) (lua.LValue, error) {
		return pFunction.Create(c.L, bb.Parent())
	}, nil)
	pBasicBlock.Accessor("size", func(bb *ir.BasicBlock, c *protobind.Call) (lua.LValue, error) {
		return lua.LNumber(len(bb.Instructions())), nil
	}, nil)
	pBasicBlock.Method("isTerminated", 0, func(bb *ir.BasicBlock, c *protobind.Call) (lua.LValue, error) {
		return lua.LBool(bb.Terminator() != nil), nil
	})
	pBasicBlock.AddToModule(ns)
}
