package ir

// BasicBlock is a straight-line sequence of instructions ending in a
// terminator.
type BasicBlock struct {
	named
	ctx    *Context
	parent *Function
	instrs []*Instruction
}

// NewBasicBlock creates a detached block. Append it to a function with
// Function.AppendBlock.
func NewBasicBlock(ctx *Context, name string) *BasicBlock {
	bb := &BasicBlock{ctx: ctx}
	bb.name = name
	return bb
}

func (bb *BasicBlock) Type() Type        { return bb.ctx.LabelType() }
func (bb *BasicBlock) Context() *Context { return bb.ctx }
func (bb *BasicBlock) Parent() *Function { return bb.parent }

// Instructions returns the instructions in order.
func (bb *BasicBlock) Instructions() []*Instruction {
	return append([]*Instruction(nil), bb.instrs...)
}

// Terminator returns the last instruction when it is a terminator.
func (bb *BasicBlock) Terminator() *Instruction {
	if len(bb.instrs) == 0 {
		return nil
	}
	if last := bb.instrs[len(bb.instrs)-1]; last.op.isTerminator() {
		return last
	}
	return nil
}

func (bb *BasicBlock) append(in *Instruction) {
	in.block = bb
	bb.instrs = append(bb.instrs, in)
}
