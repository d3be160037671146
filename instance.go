package protobind

import (
	"fmt"
	"reflect"

	lua "github.com/yuin/gopher-lua"
)

// instance is the handle stored in a wrapped userdata. The native value is
// set once by the construction trampoline and never reassigned. Scripts
// cannot create userdata, so a handle can only come from construct.
type instance struct {
	desc   *Descriptor
	native any

	// props holds expando fields assigned by scripts or Setup hooks.
	props *lua.LTable
}

// instanceOf returns the handle inside v, or nil when v is not a wrapped
// instance.
func instanceOf(v lua.LValue) *instance {
	ud, ok := v.(*lua.LUserData)
	if !ok {
		return nil
	}
	inst, _ := ud.Value.(*instance)
	return inst
}

func (inst *instance) String() string {
	return fmt.Sprintf("<%s: %p>", inst.desc.name, inst)
}

// isNil reports whether v is nil or a typed nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// construct is the single construction trampoline. The script path passes
// native == nil and internal == false; Create passes the native value.
func (d *Descriptor) construct(c *Call, native any, internal bool) (lua.LValue, error) {
	if !c.construct {
		return nil, Errorf(MsgNotConstructCall)
	}

	if !internal {
		if d.ctor.New == nil {
			return nil, TypeErrorf(MsgCannotCreate)
		}
		if c.NArgs() < d.ctor.MinArgs {
			return nil, TypeErrorf(msgExpectedArgs, d.ctor.MinArgs)
		}
		v, err := d.ctor.New(c)
		if err != nil {
			return nil, err
		}
		if isNil(v) {
			return lua.LNil, nil
		}
		native = v
	}

	t := d.template(c.L)
	ud := c.L.NewUserData()
	ud.Value = &instance{desc: d, native: native}
	ud.Metatable = t.meta

	c.this = ud
	c.self = native
	if d.ctor.Setup != nil {
		if err := d.ctor.Setup(c); err != nil {
			return nil, err
		}
	}
	return ud, nil
}
