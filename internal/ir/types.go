// Package ir is a small SSA intermediate representation in the style of
// LLVM IR. It is the native library bound to Lua by package irbind.
package ir

import (
	"fmt"
	"strings"
)

// TypeKind identifies the shape of a Type.
type TypeKind int

const (
	VoidKind TypeKind = iota
	IntegerKind
	DoubleKind
	LabelKind
	FunctionKind
)

func (k TypeKind) String() string {
	switch k {
	case VoidKind:
		return "void"
	case IntegerKind:
		return "integer"
	case DoubleKind:
		return "double"
	case LabelKind:
		return "label"
	case FunctionKind:
		return "function"
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// Type is implemented by every IR type.
type Type interface {
	Kind() TypeKind
	String() string
	Context() *Context
}

// BasicType is a void, integer, double or label type.
type BasicType struct {
	ctx  *Context
	kind TypeKind
	bits int
}

func (t *BasicType) Kind() TypeKind    { return t.kind }
func (t *BasicType) Context() *Context { return t.ctx }

// Bits returns the width of an integer type, or 0.
func (t *BasicType) Bits() int { return t.bits }

func (t *BasicType) String() string {
	if t.kind == IntegerKind {
		return fmt.Sprintf("i%d", t.bits)
	}
	return t.kind.String()
}

// FunctionType is the signature of a function.
type FunctionType struct {
	ctx    *Context
	result Type
	params []Type
	varArg bool
}

func (t *FunctionType) Kind() TypeKind    { return FunctionKind }
func (t *FunctionType) Context() *Context { return t.ctx }
func (t *FunctionType) ReturnType() Type  { return t.result }
func (t *FunctionType) IsVarArg() bool    { return t.varArg }

// Params returns a copy of the parameter types.
func (t *FunctionType) Params() []Type {
	return append([]Type(nil), t.params...)
}

func (t *FunctionType) String() string {
	parts := make([]string, 0, len(t.params)+1)
	for _, p := range t.params {
		parts = append(parts, p.String())
	}
	if t.varArg {
		parts = append(parts, "...")
	}
	return fmt.Sprintf("%s (%s)", t.result, strings.Join(parts, ", "))
}

// NewFunctionType returns the signature result(params...). All types must
// belong to the same context.
func NewFunctionType(result Type, params []Type, varArg bool) (*FunctionType, error) {
	if result == nil {
		return nil, fmt.Errorf("function type: nil result type")
	}
	ctx := result.Context()
	for i, p := range params {
		if p == nil {
			return nil, fmt.Errorf("function type: nil parameter type %d", i)
		}
		if p.Context() != ctx {
			return nil, fmt.Errorf("function type: parameter %d belongs to another context", i)
		}
		if p.Kind() == VoidKind {
			return nil, fmt.Errorf("function type: parameter %d is void", i)
		}
	}
	return &FunctionType{ctx: ctx, result: result, params: append([]Type(nil), params...), varArg: varArg}, nil
}

// Context owns the uniqued basic types.
type Context struct {
	void  *BasicType
	dbl   *BasicType
	label *BasicType
	ints  map[int]*BasicType
}

// NewContext creates an empty context.
func NewContext() *Context {
	c := &Context{ints: make(map[int]*BasicType)}
	c.void = &BasicType{ctx: c, kind: VoidKind}
	c.dbl = &BasicType{ctx: c, kind: DoubleKind}
	c.label = &BasicType{ctx: c, kind: LabelKind}
	return c
}

func (c *Context) VoidType() *BasicType   { return c.void }
func (c *Context) DoubleType() *BasicType { return c.dbl }
func (c *Context) LabelType() *BasicType  { return c.label }

// IntType returns the integer type of the given width.
func (c *Context) IntType(bits int) *BasicType {
	if t, ok := c.ints[bits]; ok {
		return t
	}
	t := &BasicType{ctx: c, kind: IntegerKind, bits: bits}
	c.ints[bits] = t
	return t
}
