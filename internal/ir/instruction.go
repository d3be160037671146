package ir

import "fmt"

// Opcode identifies an instruction.
type Opcode int

const (
	OpFAdd Opcode = iota
	OpFSub
	OpFMul
	OpFDiv
	OpAdd
	OpSub
	OpMul
	OpCall
	OpRet
	OpBr
)

var opcodeNames = [...]string{
	OpFAdd: "fadd",
	OpFSub: "fsub",
	OpFMul: "fmul",
	OpFDiv: "fdiv",
	OpAdd:  "add",
	OpSub:  "sub",
	OpMul:  "mul",
	OpCall: "call",
	OpRet:  "ret",
	OpBr:   "br",
}

func (op Opcode) String() string {
	if op >= 0 && int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

func (op Opcode) isTerminator() bool {
	return op == OpRet || op == OpBr
}

// Instruction is a single operation inside a BasicBlock.
type Instruction struct {
	named
	op       Opcode
	typ      Type
	operands []Value
	block    *BasicBlock
}

func (in *Instruction) Type() Type          { return in.typ }
func (in *Instruction) Opcode() Opcode      { return in.op }
func (in *Instruction) Parent() *BasicBlock { return in.block }

// Operands returns the operands in order. For calls the callee comes first.
func (in *Instruction) Operands() []Value {
	return append([]Value(nil), in.operands...)
}
