package ir

import (
	"fmt"
	"strings"
)

// Module is a named collection of functions.
type Module struct {
	name  string
	ctx   *Context
	funcs []*Function
	index map[string]*Function
}

// NewModule creates an empty module.
func NewModule(name string, ctx *Context) *Module {
	return &Module{name: name, ctx: ctx, index: make(map[string]*Function)}
}

func (m *Module) Name() string      { return m.name }
func (m *Module) Context() *Context { return m.ctx }

// Functions returns the functions in insertion order.
func (m *Module) Functions() []*Function {
	return append([]*Function(nil), m.funcs...)
}

// Function returns the function called name, or nil.
func (m *Module) Function(name string) *Function {
	return m.index[name]
}

// GetOrInsertFunction returns the function called name, declaring it with
// signature ft when it does not exist yet.
func (m *Module) GetOrInsertFunction(name string, ft *FunctionType) (*Function, error) {
	if name == "" {
		return nil, fmt.Errorf("module %s: function needs a name", m.name)
	}
	if ft.ctx != m.ctx {
		return nil, fmt.Errorf("module %s: signature of %s belongs to another context", m.name, name)
	}
	if f, ok := m.index[name]; ok {
		if f.typ.String() != ft.String() {
			return nil, fmt.Errorf("module %s: %s already declared as %s", m.name, name, f.typ)
		}
		return f, nil
	}
	f := newFunction(m, name, ft)
	m.funcs = append(m.funcs, f)
	m.index[name] = f
	return f, nil
}

// String prints the module in textual IR.
func (m *Module) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; ModuleID = '%s'\n", m.name)
	for _, f := range m.funcs {
		sb.WriteString("\n")
		sb.WriteString(f.String())
	}
	return sb.String()
}
