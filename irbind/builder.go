package irbind

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/protobind"
	"github.com/feather-lang/protobind/internal/ir"
)

type binaryOp func(b *ir.Builder, lhs, rhs ir.Value, name string) (*ir.Instruction, error)

func initIRBuilder(ns *protobind.Namespace) {
	pIRBuilder.Init(protobind.Constructor{
		MinArgs: 1,
		New: func(c *protobind.Call) (any, error) {
			ctx, err := pContext.Arg(c, "context", 0)
			if err != nil {
				return nil, err
			}
			return ir.NewBuilder(ctx), nil
		},
	})

	pIRBuilder.Accessor("insertBlock", func(b *ir.Builder, c *protobind.Call) (lua.LValue, error) {
		return pBasicBlock.Create(c.L, b.InsertBlock())
	}, nil)
	pIRBuilder.Method("setInsertPoint", 1, func(b *ir.Builder, c *protobind.Call) (lua.LValue, error) {
		bb, err := pBasicBlock.Arg(c, "block", 0)
		if err != nil {
			return nil, err
		}
		if err := b.SetInsertPoint(bb); err != nil {
			return nil, wrapErr("setInsertPoint", err)
		}
		return nil, nil
	})

	binary := protobind.Schema{
		{Name: "lhs", Kind: protobind.ArgObject, Type: pValue},
		{Name: "rhs", Kind: protobind.ArgObject, Type: pValue},
		{Name: "name", Kind: protobind.ArgString, Optional: true},
	}
	for _, bop := range []struct {
		name string
		op   binaryOp
	}{
		{"createFAdd", (*ir.Builder).CreateFAdd},
		{"createFSub", (*ir.Builder).CreateFSub},
		{"createFMul", (*ir.Builder).CreateFMul},
		{"createFDiv", (*ir.Builder).CreateFDiv},
		{"createAdd", (*ir.Builder).CreateAdd},
		{"createSub", (*ir.Builder).CreateSub},
		{"createMul", (*ir.Builder).CreateMul},
	} {
		name, op := bop.name, bop.op
		pIRBuilder.AddMethodSchema(name, binary, func(c *protobind.Call, args protobind.Values) (lua.LValue, error) {
			b, err := pIRBuilder.Self(c)
			if err != nil {
				return nil, err
			}
			in, err := op(b, args.Object(0).(ir.Value), args.Object(1).(ir.Value), args.String(2))
			if err != nil {
				return nil, wrapErr(name, err)
			}
			return pValue.Create(c.L, in)
		})
	}

	pIRBuilder.AddMethodSchema("createCall", protobind.Schema{
		{Name: "callee", Kind: protobind.ArgObject, Type: pFunction},
		{Name: "args", Kind: protobind.ArgArray, Type: pValue},
		{Name: "name", Kind: protobind.ArgString, Optional: true},
	}, func(c *protobind.Call, args protobind.Values) (lua.LValue, error) {
		b, err := pIRBuilder.Self(c)
		if err != nil {
			return nil, err
		}
		elems := args.Array(1)
		operands := make([]ir.Value, 0, len(elems))
		for _, e := range elems {
			operands = append(operands, e.(ir.Value))
		}
		in, err := b.CreateCall(args.Object(0).(*ir.Function), operands, args.String(2))
		if err != nil {
			return nil, wrapErr("createCall", err)
		}
		return pValue.Create(c.L, in)
	})

	pIRBuilder.Method("createRet", 1, func(b *ir.Builder, c *protobind.Call) (lua.LValue, error) {
		v, err := pValue.Arg(c, "value", 0)
		if err != nil {
			return nil, err
		}
		in, err := b.CreateRet(v)
		if err != nil {
			return nil, wrapErr("createRet", err)
		}
		return pValue.Create(c.L, in)
	})
	pIRBuilder.Method("createRetVoid", 0, func(b *ir.Builder, c *protobind.Call) (lua.LValue, error) {
		in, err := b.CreateRetVoid()
		if err != nil {
			return nil, wrapErr("createRetVoid", err)
		}
		return pValue.Create(c.L, in)
	})
	pIRBuilder.Method("createBr", 1, func(b *ir.Builder, c *protobind.Call) (lua.LValue, error) {
		dest, err := pBasicBlock.Arg(c, "dest", 0)
		if err != nil {
			return nil, err
		}
		in, err := b.CreateBr(dest)
		if err != nil {
			return nil, wrapErr("createBr", err)
		}
		return pValue.Create(c.L, in)
	})

	pIRBuilder.AddMethodSchema("constFP", protobind.Schema{
		{Name: "value", Kind: protobind.ArgDouble},
	}, func(c *protobind.Call, args protobind.Values) (lua.LValue, error) {
		b, err := pIRBuilder.Self(c)
		if err != nil {
			return nil, err
		}
		return pValue.Create(c.L, ir.ConstFP(b.Context(), args.Double(0)))
	})
	pIRBuilder.AddMethodSchema("constInt", protobind.Schema{
		{Name: "value", Kind: protobind.ArgInt},
		{Name: "bits", Kind: protobind.ArgInt, Optional: true},
	}, func(c *protobind.Call, args protobind.Values) (lua.LValue, error) {
		b, err := pIRBuilder.Self(c)
		if err != nil {
			return nil, err
		}
		bits := 32
		if args.Object(1) != nil {
			bits = int(args.Int(1))
		}
		if bits < 1 || bits > 64 {
			return nil, protobind.Errorf("integer width must be between 1 and 64, got %d", bits)
		}
		k, err := ir.ConstInt(b.Context().IntType(bits), int64(args.Int(0)))
		if err != nil {
			return nil, wrapErr("constInt", err)
		}
		return pValue.Create(c.L, k)
	})
	pIRBuilder.AddToModule(ns)
}
