package protobind

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// template is the materialization of a descriptor inside one LState.
type template struct {
	class *lua.LTable // T: callable, holds new, statics and prototype
	proto *lua.LTable // T.prototype: methods, chained to the parent prototype
	meta  *lua.LTable // metatable of every instance
	gen   uint64
}

// template returns the template of d in L, building it on first use and
// resynchronizing it when the descriptor changed since.
func (d *Descriptor) template(L *lua.LState) *template {
	d.mustInit("template")
	sd := stateOf(L)
	t, ok := sd.templates[d]
	if !ok {
		t = d.materialize(L)
		sd.templates[d] = t
		d.sync(L, t)
		return t
	}
	if t.gen != d.gen {
		d.sync(L, t)
	}
	return t
}

func (d *Descriptor) materialize(L *lua.LState) *template {
	t := &template{
		class: L.NewTable(),
		proto: L.NewTable(),
		meta:  L.NewTable(),
	}

	t.class.RawSetString("prototype", t.proto)
	t.class.RawSetString("new", L.NewFunction(func(L *lua.LState) int {
		c := callFromStack(L, 1)
		c.construct = true
		return d.finishConstruct(L, c)
	}))
	classMeta := L.NewTable()
	classMeta.RawSetString("__call", L.NewFunction(func(L *lua.LState) int {
		// the class table itself is argument 1
		return d.finishConstruct(L, callFromStack(L, 2))
	}))
	// statics added after materialization show up on first lookup
	classMeta.RawSetString("__index", L.NewFunction(func(L *lua.LState) int {
		L.Push(d.template(L).class.RawGet(L.Get(2)))
		return 1
	}))
	classMeta.RawSetString("__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(fmt.Sprintf("[class %s]", d.name)))
		return 1
	}))
	classMeta.RawSetString("__metatable", lua.LString("class"))
	L.SetMetatable(t.class, classMeta)

	t.proto.RawSetString("constructor", t.class)

	t.meta.RawSetString("__index", L.NewFunction(d.index))
	t.meta.RawSetString("__newindex", L.NewFunction(d.newindex))
	t.meta.RawSetString("__tostring", L.NewFunction(func(L *lua.LState) int {
		if inst := instanceOf(L.Get(1)); inst != nil {
			L.Push(lua.LString(inst.String()))
			return 1
		}
		L.Push(lua.LString(d.name))
		return 1
	}))
	t.meta.RawSetString("__metatable", lua.LString(d.name))

	Logger().Debug("type materialized", zap.String("type", d.name))
	return t
}

// sync brings the prototype, statics and parent link of t up to date.
// Method entries look their body up at call time, so an entry only has to
// exist for the name.
func (d *Descriptor) sync(L *lua.LState, t *template) {
	for _, name := range d.methodOrder {
		t.proto.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
			return d.callMethod(L, name, d.methods[name])
		}))
	}
	for _, name := range d.staticOrder {
		t.class.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
			return d.callStatic(L, d.statics[name])
		}))
	}
	if d.parent != nil {
		pt := d.parent.template(L)
		protoMeta := L.NewTable()
		protoMeta.RawSetString("__index", pt.proto)
		L.SetMetatable(t.proto, protoMeta)
	}
	t.gen = d.gen
}

// syncChain makes sure every prototype on the chain of d is current.
func (d *Descriptor) syncChain(L *lua.LState) *template {
	t := d.template(L)
	for a := d.parent; a != nil; a = a.parent {
		a.template(L)
	}
	return t
}

func (d *Descriptor) finishConstruct(L *lua.LState, c *Call) int {
	v, err := d.construct(c, nil, false)
	if err != nil {
		raise(L, err)
	}
	L.Push(v)
	return 1
}

// index resolves a field of an instance: accessors first, then expando
// fields, then the prototype chain.
func (d *Descriptor) index(L *lua.LState) int {
	self := L.Get(1)
	key := L.Get(2)
	inst := instanceOf(self)
	if inst == nil {
		raise(L, TypeErrorf(MsgIllegalInvocation))
	}

	if name, ok := key.(lua.LString); ok {
		if acc, ok := d.lookupAccessor(string(name)); ok {
			c := &Call{L: L, this: self, self: inst.native}
			v, err := acc.get(c)
			if err != nil {
				raise(L, err)
			}
			if v == nil {
				v = lua.LNil
			}
			L.Push(v)
			return 1
		}
	}
	if inst.props != nil {
		if v := inst.props.RawGet(key); v != lua.LNil {
			L.Push(v)
			return 1
		}
	}

	t := d.syncChain(L)
	L.Push(L.GetTable(t.proto, key))
	return 1
}

// newindex handles assignments to instance fields. Accessors with a
// setter run it, getter-only accessors ignore the write and anything else
// becomes an expando field of the instance.
func (d *Descriptor) newindex(L *lua.LState) int {
	self := L.Get(1)
	key := L.Get(2)
	val := L.Get(3)
	inst := instanceOf(self)
	if inst == nil {
		raise(L, TypeErrorf(MsgIllegalInvocation))
	}

	if name, ok := key.(lua.LString); ok {
		if acc, ok := d.lookupAccessor(string(name)); ok {
			if acc.set == nil {
				Logger().Debug("write to read-only accessor ignored",
					zap.String("type", d.name), zap.String("property", string(name)))
				return 0
			}
			c := &Call{L: L, args: []lua.LValue{val}, this: self, self: inst.native}
			if err := acc.set(c, val); err != nil {
				raise(L, err)
			}
			return 0
		}
	}
	if key == lua.LNil {
		raise(L, TypeErrorf("index is nil"))
	}
	if inst.props == nil {
		if val == lua.LNil {
			return 0
		}
		inst.props = L.NewTable()
	}
	inst.props.RawSet(key, val)
	return 0
}
