package protobind

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// PropertyAttr controls how scripts may treat a namespace property.
type PropertyAttr uint8

const (
	// ReadOnly rejects assignments.
	ReadOnly PropertyAttr = 1 << iota
	// DontEnum hides the property from Keys and from script iteration.
	DontEnum
	// DontDelete rejects assigning nil.
	DontDelete
)

// Const is the attribute set of constants: read-only and not deletable.
const Const = ReadOnly | DontDelete

func (a PropertyAttr) String() string {
	s := ""
	for _, f := range []struct {
		bit  PropertyAttr
		name string
	}{{ReadOnly, "ReadOnly"}, {DontEnum, "DontEnum"}, {DontDelete, "DontDelete"}} {
		if a&f.bit == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += f.name
	}
	if s == "" {
		return "None"
	}
	return s
}

// Namespace is the module object that initializers populate. Scripts see
// it as a userdata proxy: reads go straight to the stored values while
// writes are checked against the property attributes. Calling the proxy
// returns an iterator over the enumerable properties in definition order:
//
//	for name, class in llvm() do print(name, class) end
type Namespace struct {
	L    *lua.LState
	name string

	values *lua.LTable
	attrs  map[string]PropertyAttr
	order  []string
	proxy  *lua.LUserData
}

// NewNamespace creates an empty namespace in L.
func NewNamespace(L *lua.LState, name string) *Namespace {
	ns := &Namespace{
		L:      L,
		name:   name,
		values: L.NewTable(),
		attrs:  make(map[string]PropertyAttr),
	}

	mt := L.NewTable()
	mt.RawSetString("__index", ns.values)
	mt.RawSetString("__newindex", L.NewFunction(ns.assign))
	mt.RawSetString("__call", L.NewFunction(ns.iterate))
	mt.RawSetString("__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(fmt.Sprintf("[namespace %s]", ns.name)))
		return 1
	}))
	mt.RawSetString("__metatable", lua.LString("namespace"))

	ns.proxy = L.NewUserData()
	ns.proxy.Value = ns
	ns.proxy.Metatable = mt
	return ns
}

// Name returns the namespace name.
func (ns *Namespace) Name() string { return ns.name }

// Value returns the script-visible namespace object.
func (ns *Namespace) Value() lua.LValue { return ns.proxy }

// Define sets name to v with the given attributes. Go code may redefine
// any property; attributes only constrain scripts.
func (ns *Namespace) Define(name string, v lua.LValue, attr PropertyAttr) {
	if v == nil || v == lua.LNil {
		ns.remove(name)
		return
	}
	if _, ok := ns.attrs[name]; !ok {
		ns.order = append(ns.order, name)
	}
	ns.attrs[name] = attr
	ns.values.RawSetString(name, v)
}

// DefineConst defines a read-only, non-deletable property.
func (ns *Namespace) DefineConst(name string, v lua.LValue) {
	ns.Define(name, v, Const)
}

// Get returns the value of name, or lua.LNil.
func (ns *Namespace) Get(name string) lua.LValue {
	return ns.values.RawGetString(name)
}

// Has reports whether name is defined.
func (ns *Namespace) Has(name string) bool {
	_, ok := ns.attrs[name]
	return ok
}

// Attr returns the attributes of name.
func (ns *Namespace) Attr(name string) (PropertyAttr, bool) {
	a, ok := ns.attrs[name]
	return a, ok
}

// Keys returns the enumerable property names in definition order.
func (ns *Namespace) Keys() []string {
	keys := make([]string, 0, len(ns.order))
	for _, k := range ns.order {
		if ns.attrs[k]&DontEnum == 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// SetGlobal binds the namespace as a global variable.
func (ns *Namespace) SetGlobal(name string) {
	ns.L.SetGlobal(name, ns.proxy)
}

// Preload makes the namespace available through require(module). It
// fails when the package library is not open in the state.
func (ns *Namespace) Preload(module string) error {
	pkg, ok := ns.L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return fmt.Errorf("namespace %s: package library not loaded", ns.name)
	}
	if _, ok := pkg.RawGetString("preload").(*lua.LTable); !ok {
		return fmt.Errorf("namespace %s: package.preload is not a table", ns.name)
	}
	ns.L.PreloadModule(module, func(L *lua.LState) int {
		L.Push(ns.proxy)
		return 1
	})
	return nil
}

func (ns *Namespace) remove(name string) {
	if _, ok := ns.attrs[name]; !ok {
		return
	}
	delete(ns.attrs, name)
	for i, k := range ns.order {
		if k == name {
			ns.order = append(ns.order[:i], ns.order[i+1:]...)
			break
		}
	}
	ns.values.RawSetString(name, lua.LNil)
}

// assign is the __newindex handler of the proxy.
func (ns *Namespace) assign(L *lua.LState) int {
	key := L.CheckString(2)
	val := L.Get(3)

	attr, exists := ns.attrs[key]
	switch {
	case exists && val == lua.LNil && attr&DontDelete != 0:
		raise(L, TypeErrorf("Cannot delete property '%s' of %s", key, ns.name))
	case exists && val != lua.LNil && attr&ReadOnly != 0:
		raise(L, TypeErrorf("Cannot assign to read only property '%s' of %s", key, ns.name))
	}

	if val == lua.LNil {
		ns.remove(key)
		return 0
	}
	if !exists {
		attr = 0
	}
	ns.Define(key, val, attr)
	return 0
}

// iterate is the __call handler of the proxy. The iterator walks the keys
// enumerable at call time and skips those removed since.
func (ns *Namespace) iterate(L *lua.LState) int {
	keys := ns.Keys()
	i := 0
	L.Push(L.NewFunction(func(L *lua.LState) int {
		for i < len(keys) {
			k := keys[i]
			i++
			if v := ns.values.RawGetString(k); v != lua.LNil {
				L.Push(lua.LString(k))
				L.Push(v)
				return 2
			}
		}
		L.Push(lua.LNil)
		return 1
	}))
	return 1
}
