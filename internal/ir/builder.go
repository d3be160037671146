package ir

import (
	"errors"
	"fmt"
)

// ErrNoInsertPoint is returned by Builder methods before SetInsertPoint.
var ErrNoInsertPoint = errors.New("builder has no insert point")

// Builder appends instructions to the end of a block.
type Builder struct {
	ctx *Context
	bb  *BasicBlock
}

// NewBuilder returns a builder without an insert point.
func NewBuilder(ctx *Context) *Builder {
	return &Builder{ctx: ctx}
}

func (b *Builder) Context() *Context { return b.ctx }

// InsertBlock returns the current block, or nil.
func (b *Builder) InsertBlock() *BasicBlock { return b.bb }

// SetInsertPoint makes b append to the end of bb.
func (b *Builder) SetInsertPoint(bb *BasicBlock) error {
	if bb.ctx != b.ctx {
		return fmt.Errorf("insert point %q belongs to another context", bb.name)
	}
	b.bb = bb
	return nil
}

func (b *Builder) insert(in *Instruction) (*Instruction, error) {
	if b.bb == nil {
		return nil, ErrNoInsertPoint
	}
	if t := b.bb.Terminator(); t != nil {
		return nil, fmt.Errorf("block %q is already terminated by %s", b.bb.name, t.op)
	}
	b.bb.append(in)
	return in, nil
}

func (b *Builder) binary(op Opcode, lhs, rhs Value, name string) (*Instruction, error) {
	if lhs == nil || rhs == nil {
		return nil, fmt.Errorf("%s: nil operand", op)
	}
	lt, rt := lhs.Type(), rhs.Type()
	if lt != rt {
		return nil, fmt.Errorf("%s: operand types differ (%s, %s)", op, lt, rt)
	}
	switch op {
	case OpFAdd, OpFSub, OpFMul, OpFDiv:
		if lt.Kind() != DoubleKind {
			return nil, fmt.Errorf("%s: operands must be double, got %s", op, lt)
		}
	default:
		if lt.Kind() != IntegerKind {
			return nil, fmt.Errorf("%s: operands must be integers, got %s", op, lt)
		}
	}
	in := &Instruction{op: op, typ: lt, operands: []Value{lhs, rhs}}
	in.name = name
	return b.insert(in)
}

func (b *Builder) CreateFAdd(lhs, rhs Value, name string) (*Instruction, error) {
	return b.binary(OpFAdd, lhs, rhs, name)
}

func (b *Builder) CreateFSub(lhs, rhs Value, name string) (*Instruction, error) {
	return b.binary(OpFSub, lhs, rhs, name)
}

func (b *Builder) CreateFMul(lhs, rhs Value, name string) (*Instruction, error) {
	return b.binary(OpFMul, lhs, rhs, name)
}

func (b *Builder) CreateFDiv(lhs, rhs Value, name string) (*Instruction, error) {
	return b.binary(OpFDiv, lhs, rhs, name)
}

func (b *Builder) CreateAdd(lhs, rhs Value, name string) (*Instruction, error) {
	return b.binary(OpAdd, lhs, rhs, name)
}

func (b *Builder) CreateSub(lhs, rhs Value, name string) (*Instruction, error) {
	return b.binary(OpSub, lhs, rhs, name)
}

func (b *Builder) CreateMul(lhs, rhs Value, name string) (*Instruction, error) {
	return b.binary(OpMul, lhs, rhs, name)
}

// CreateCall calls fn with args, checked against its signature.
func (b *Builder) CreateCall(fn *Function, args []Value, name string) (*Instruction, error) {
	ft := fn.typ
	if len(args) < len(ft.params) || (!ft.varArg && len(args) > len(ft.params)) {
		return nil, fmt.Errorf("call %s: expected %d arguments, got %d", fn.name, len(ft.params), len(args))
	}
	for i, p := range ft.params {
		if args[i] == nil || args[i].Type() != p {
			return nil, fmt.Errorf("call %s: argument %d must be %s", fn.name, i, p)
		}
	}
	if ft.result.Kind() == VoidKind {
		name = ""
	}
	in := &Instruction{op: OpCall, typ: ft.result, operands: append([]Value{fn}, args...)}
	in.name = name
	return b.insert(in)
}

// CreateRet returns v.
func (b *Builder) CreateRet(v Value) (*Instruction, error) {
	if v == nil {
		return nil, errors.New("ret: nil value")
	}
	return b.insert(&Instruction{op: OpRet, typ: b.ctx.VoidType(), operands: []Value{v}})
}

// CreateRetVoid returns from a void function.
func (b *Builder) CreateRetVoid() (*Instruction, error) {
	return b.insert(&Instruction{op: OpRet, typ: b.ctx.VoidType()})
}

// CreateBr branches unconditionally to dest.
func (b *Builder) CreateBr(dest *BasicBlock) (*Instruction, error) {
	return b.insert(&Instruction{op: OpBr, typ: b.ctx.VoidType(), operands: []Value{dest}})
}
