package ir

import (
	"fmt"
	"strconv"
)

// Value is anything that can be an instruction operand.
type Value interface {
	Type() Type
	Name() string
	SetName(name string)
}

// named is embedded by values that carry a name.
type named struct {
	name string
}

func (n *named) Name() string        { return n.name }
func (n *named) SetName(name string) { n.name = name }

// Argument is a formal parameter of a Function.
type Argument struct {
	named
	typ    Type
	parent *Function
	index  int
}

func (a *Argument) Type() Type        { return a.typ }
func (a *Argument) Parent() *Function { return a.parent }
func (a *Argument) Index() int        { return a.index }

// ConstantFP is a double constant.
type ConstantFP struct {
	named
	typ   Type
	value float64
}

// ConstFP returns a double constant in ctx.
func ConstFP(ctx *Context, v float64) *ConstantFP {
	return &ConstantFP{typ: ctx.DoubleType(), value: v}
}

func (c *ConstantFP) Type() Type      { return c.typ }
func (c *ConstantFP) Value() float64  { return c.value }
func (c *ConstantFP) literal() string { return strconv.FormatFloat(c.value, 'e', 6, 64) }

// ConstantInt is an integer constant.
type ConstantInt struct {
	named
	typ   *BasicType
	value int64
}

// ConstInt returns an integer constant of type t.
func ConstInt(t *BasicType, v int64) (*ConstantInt, error) {
	if t.Kind() != IntegerKind {
		return nil, fmt.Errorf("constant int: %s is not an integer type", t)
	}
	return &ConstantInt{typ: t, value: v}, nil
}

func (c *ConstantInt) Type() Type      { return c.typ }
func (c *ConstantInt) Value() int64    { return c.value }
func (c *ConstantInt) literal() string { return strconv.FormatInt(c.value, 10) }

// constant is implemented by values printed as literals.
type constant interface {
	literal() string
}
