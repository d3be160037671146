package protobind

import (
	lua "github.com/yuin/gopher-lua"
)

// Proto is a typed view of a Descriptor whose native values are T.
//
// A parent type whose descendants use different Go types should use an
// interface for T, so that Unwrap succeeds for every descendant:
//
//	pValue    = protobind.NewProto[ir.Value](r, "Value", initValue)
//	pFunction = protobind.NewProto[*ir.Function](r, "Function", initFunction)
type Proto[T any] struct {
	*Descriptor
}

// NewProto registers a type in r and returns its typed view.
func NewProto[T any](r *Registry, name string, init InitFunc) *Proto[T] {
	return &Proto[T]{Descriptor: r.Register(name, init)}
}

// Create wraps v. A nil v returns lua.LNil.
func (p *Proto[T]) Create(L *lua.LState, v T, extra ...lua.LValue) (lua.LValue, error) {
	return p.Descriptor.Create(L, v, extra...)
}

// Unwrap returns the native value of v as a T.
func (p *Proto[T]) Unwrap(v lua.LValue) (T, bool) {
	var zero T
	native, ok := p.Descriptor.Unwrap(v)
	if !ok {
		return zero, false
	}
	t, ok := native.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Arg unwraps the argument at pos.
func (p *Proto[T]) Arg(c *Call, name string, pos int) (T, error) {
	var zero T
	t, ok := p.Unwrap(c.Arg(pos))
	if !ok {
		return zero, TypeErrorf(msgParamIncorrectType, name, pos)
	}
	return t, nil
}

// OptArg is Arg for an optional argument: a missing or nil argument
// returns the zero T.
func (p *Proto[T]) OptArg(c *Call, name string, pos int) (T, error) {
	var zero T
	if c.Arg(pos) == lua.LNil {
		return zero, nil
	}
	return p.Arg(c, name, pos)
}

// ArrayArg unwraps every element of the sequence at pos.
func (p *Proto[T]) ArrayArg(c *Call, name string, pos int) ([]T, error) {
	tb, n, ok := sequence(c.Arg(pos))
	if !ok {
		return nil, TypeErrorf(msgParamShouldBe, name, pos, "array")
	}
	out := make([]T, 0, n)
	for i := 1; i <= n; i++ {
		t, ok := p.Unwrap(tb.RawGetInt(i))
		if !ok {
			return nil, TypeErrorf(msgParamInvalidElem, name, pos)
		}
		out = append(out, t)
	}
	return out, nil
}

// Self returns the receiver of c as a T.
func (p *Proto[T]) Self(c *Call) (T, error) {
	t, ok := c.Self().(T)
	if !ok {
		var zero T
		return zero, TypeErrorf(MsgIllegalInvocation)
	}
	return t, nil
}

// Method binds a method whose body receives the receiver as a T.
func (p *Proto[T]) Method(name string, minArgs int, fn func(self T, c *Call) (lua.LValue, error)) {
	p.AddMethod(name, minArgs, func(c *Call) (lua.LValue, error) {
		self, err := p.Self(c)
		if err != nil {
			return nil, err
		}
		return fn(self, c)
	})
}

// Accessor binds a property whose getter and setter receive the holder as
// a T. A nil set makes the property read-only.
func (p *Proto[T]) Accessor(name string, get func(self T, c *Call) (lua.LValue, error), set func(self T, c *Call, v lua.LValue) error) {
	var setter Setter
	if set != nil {
		setter = func(c *Call, v lua.LValue) error {
			self, err := p.Self(c)
			if err != nil {
				return err
			}
			return set(self, c, v)
		}
	}
	p.AddAccessor(name, func(c *Call) (lua.LValue, error) {
		self, err := p.Self(c)
		if err != nil {
			return nil, err
		}
		return get(self, c)
	}, setter)
}
