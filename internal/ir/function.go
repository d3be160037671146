package ir

import (
	"errors"
	"fmt"
)

// Function is a function declaration or definition inside a Module.
// It is a declaration until the first block is added.
type Function struct {
	named
	typ    *FunctionType
	module *Module
	args   []*Argument
	blocks []*BasicBlock
}

func newFunction(m *Module, name string, ft *FunctionType) *Function {
	f := &Function{typ: ft, module: m}
	f.name = name
	for i, p := range ft.params {
		f.args = append(f.args, &Argument{typ: p, parent: f, index: i})
	}
	return f
}

// Type returns the signature of f.
func (f *Function) Type() Type { return f.typ }

func (f *Function) FunctionType() *FunctionType { return f.typ }
func (f *Function) Module() *Module             { return f.module }
func (f *Function) Context() *Context           { return f.typ.ctx }
func (f *Function) IsDeclaration() bool         { return len(f.blocks) == 0 }

// Args returns the formal arguments.
func (f *Function) Args() []*Argument {
	return append([]*Argument(nil), f.args...)
}

// Arg returns argument i, or nil when out of range.
func (f *Function) Arg(i int) *Argument {
	if i < 0 || i >= len(f.args) {
		return nil
	}
	return f.args[i]
}

// Blocks returns the basic blocks in layout order.
func (f *Function) Blocks() []*BasicBlock {
	return append([]*BasicBlock(nil), f.blocks...)
}

// EntryBlock returns the first block, or nil for a declaration.
func (f *Function) EntryBlock() *BasicBlock {
	if len(f.blocks) == 0 {
		return nil
	}
	return f.blocks[0]
}

// ErrBlockInUse is returned when a block is appended to a second function.
var ErrBlockInUse = errors.New("basic block already belongs to a function")

// AppendBlock adds bb at the end of f.
func (f *Function) AppendBlock(bb *BasicBlock) error {
	if bb.parent != nil {
		return ErrBlockInUse
	}
	if bb.ctx != f.Context() {
		return fmt.Errorf("basic block %q belongs to another context", bb.name)
	}
	bb.parent = f
	f.blocks = append(f.blocks, bb)
	return nil
}

// Verify checks that every block ends in exactly one terminator and that
// return instructions match the signature.
func (f *Function) Verify() error {
	var errs []error
	for i, bb := range f.blocks {
		label := bb.name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if len(bb.instrs) == 0 {
			errs = append(errs, fmt.Errorf("%s: block %s is empty", f.name, label))
			continue
		}
		for j, in := range bb.instrs {
			last := j == len(bb.instrs)-1
			if in.op.isTerminator() != last {
				if last {
					errs = append(errs, fmt.Errorf("%s: block %s does not end in a terminator", f.name, label))
				} else {
					errs = append(errs, fmt.Errorf("%s: block %s has a terminator before its end", f.name, label))
				}
			}
			if in.op == OpRet {
				if err := f.checkReturn(in); err != nil {
					errs = append(errs, fmt.Errorf("%s: block %s: %w", f.name, label, err))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func (f *Function) checkReturn(in *Instruction) error {
	want := f.typ.result
	if len(in.operands) == 0 {
		if want.Kind() != VoidKind {
			return fmt.Errorf("ret void in function returning %s", want)
		}
		return nil
	}
	if got := in.operands[0].Type(); got != want {
		return fmt.Errorf("ret %s in function returning %s", got, want)
	}
	return nil
}
