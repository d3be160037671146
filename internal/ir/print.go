package ir

import (
	"fmt"
	"strings"
)

// slots numbers the unnamed values of a function the way textual IR does.
type slots map[Value]int

func newSlots(f *Function) slots {
	s := make(slots)
	if f == nil {
		return s
	}
	n := 0
	for _, a := range f.args {
		if a.name == "" {
			s[a] = n
			n++
		}
	}
	for _, bb := range f.blocks {
		if bb.name == "" {
			s[bb] = n
			n++
		}
		for _, in := range bb.instrs {
			if in.name == "" && in.typ.Kind() != VoidKind {
				s[in] = n
				n++
			}
		}
	}
	return s
}

func (s slots) ref(v Value) string {
	switch v := v.(type) {
	case constant:
		return v.literal()
	case *Function:
		return "@" + v.name
	}
	if v.Name() != "" {
		return "%" + v.Name()
	}
	if n, ok := s[v]; ok {
		return fmt.Sprintf("%%%d", n)
	}
	return "%<badref>"
}

func (s slots) operand(v Value) string {
	if _, ok := v.(*BasicBlock); ok {
		return "label " + s.ref(v)
	}
	return v.Type().String() + " " + s.ref(v)
}

func (s slots) instruction(in *Instruction) string {
	var sb strings.Builder
	sb.WriteString("  ")
	if in.typ.Kind() != VoidKind {
		sb.WriteString(s.ref(in))
		sb.WriteString(" = ")
	}
	switch in.op {
	case OpRet:
		if len(in.operands) == 0 {
			sb.WriteString("ret void")
		} else {
			sb.WriteString("ret " + s.operand(in.operands[0]))
		}
	case OpBr:
		sb.WriteString("br " + s.operand(in.operands[0]))
	case OpCall:
		fn := in.operands[0].(*Function)
		args := make([]string, 0, len(in.operands)-1)
		for _, a := range in.operands[1:] {
			args = append(args, s.operand(a))
		}
		fmt.Fprintf(&sb, "call %s @%s(%s)", fn.typ.result, fn.name, strings.Join(args, ", "))
	default:
		fmt.Fprintf(&sb, "%s %s %s, %s", in.op, in.typ, s.ref(in.operands[0]), s.ref(in.operands[1]))
	}
	return sb.String()
}

func (s slots) block(bb *BasicBlock) string {
	var sb strings.Builder
	label := bb.name
	if label == "" {
		if n, ok := s[bb]; ok {
			label = fmt.Sprint(n)
		}
	}
	if label != "" {
		sb.WriteString(label + ":\n")
	}
	for _, in := range bb.instrs {
		sb.WriteString(s.instruction(in))
		sb.WriteString("\n")
	}
	return sb.String()
}

// String prints f as a declaration or definition.
func (f *Function) String() string {
	s := newSlots(f)
	params := make([]string, 0, len(f.args)+1)
	for _, a := range f.args {
		if f.IsDeclaration() {
			params = append(params, a.typ.String())
		} else {
			params = append(params, s.operand(a))
		}
	}
	if f.typ.varArg {
		params = append(params, "...")
	}
	head := fmt.Sprintf("%s @%s(%s)", f.typ.result, f.name, strings.Join(params, ", "))
	if f.IsDeclaration() {
		return "declare " + head + "\n"
	}

	var sb strings.Builder
	sb.WriteString("define " + head + " {\n")
	for i, bb := range f.blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s.block(bb))
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Dump prints any value in textual IR. Functions print in full, blocks
// print their instructions, other values print as a typed operand.
func Dump(v Value) string {
	switch v := v.(type) {
	case *Function:
		return v.String()
	case *BasicBlock:
		return newSlots(v.parent).block(v)
	case *Instruction:
		var f *Function
		if v.block != nil {
			f = v.block.parent
		}
		return newSlots(f).instruction(v)
	case *Argument:
		return newSlots(v.parent).operand(v)
	}
	return slots(nil).operand(v)
}
