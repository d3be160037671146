package protobind

import lua "github.com/yuin/gopher-lua"

// Call carries the information of one invocation of a bound function:
// the script arguments, the receiver and whether it is a construct call.
// Argument positions are zero-based and exclude the receiver.
type Call struct {
	L *lua.LState

	args      []lua.LValue
	this      lua.LValue
	self      any
	construct bool
}

// callFromStack collects the stack values from position first onwards.
func callFromStack(L *lua.LState, first int) *Call {
	top := L.GetTop()
	var args []lua.LValue
	if top >= first {
		args = make([]lua.LValue, 0, top-first+1)
		for i := first; i <= top; i++ {
			args = append(args, L.Get(i))
		}
	}
	return &Call{L: L, args: args, this: lua.LNil}
}

// NewCall returns a non-construct call with the given arguments and no
// receiver. It lets binding code be exercised without a running script.
func NewCall(L *lua.LState, args ...lua.LValue) *Call {
	return &Call{L: L, args: args, this: lua.LNil}
}

// NArgs returns the number of script arguments.
func (c *Call) NArgs() int {
	return len(c.args)
}

// Arg returns the argument at pos, or lua.LNil when it was not passed.
func (c *Call) Arg(pos int) lua.LValue {
	if pos < 0 || pos >= len(c.args) {
		return lua.LNil
	}
	return c.args[pos]
}

// Args returns the script arguments.
func (c *Call) Args() []lua.LValue {
	return c.args
}

// This returns the receiver: the instance a method or accessor was invoked
// on, or the freshly wrapped instance inside a Setup hook.
func (c *Call) This() lua.LValue {
	return c.this
}

// Self returns the native value behind This.
func (c *Call) Self() any {
	return c.self
}

// IsConstruct reports whether the call came through T.new or Create.
func (c *Call) IsConstruct() bool {
	return c.construct
}

