package protobind

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Func is the body of a bound method or static method. A nil value
// returns nothing to the script; a non-nil error is raised.
type Func func(c *Call) (lua.LValue, error)

// Getter reads an accessor property of c.This().
type Getter func(c *Call) (lua.LValue, error)

// Setter writes an accessor property of c.This().
type Setter func(c *Call, v lua.LValue) error

// Constructor describes how a type is built.
type Constructor struct {
	// MinArgs is the minimum number of arguments T.new accepts.
	MinArgs int

	// New builds the native value for T.new. A nil New makes the type
	// internal-only: scripts get "This type cannot be created directly!"
	// and instances can only come from Create. Returning a nil value
	// makes T.new return nil.
	New func(c *Call) (any, error)

	// Setup runs after every construction with c.This() set to the new
	// instance. Its arguments are the script arguments for T.new and the
	// extra values passed to Create.
	Setup func(c *Call) error
}

// Type is implemented by *Descriptor and *Proto.
type Type interface {
	descriptor() *Descriptor
}

type method struct {
	minArgs int
	fn      Func
	params  Schema
}

type accessor struct {
	get Getter
	set Setter
}

// Descriptor is the process-wide description of one exposed native type.
//
// It is created by Register and filled in by its initializer: Init first,
// then any of Inherit, AddMethod, AddStaticMethod and AddAccessor, and
// finally AddToModule. The script-visible class table is materialized
// separately in every LState that uses the type.
type Descriptor struct {
	name string
	ctor *Constructor

	parent    *Descriptor
	derived   []*Descriptor
	ancestors map[*Descriptor]struct{}

	methods       map[string]method
	methodOrder   []string
	statics       map[string]method
	staticOrder   []string
	accessors     map[string]accessor
	accessorOrder []string

	// gen increases on every change that affects materialized templates.
	gen uint64
}

func newDescriptor(name string) *Descriptor {
	d := &Descriptor{
		name:      name,
		ancestors: make(map[*Descriptor]struct{}),
		methods:   make(map[string]method),
		statics:   make(map[string]method),
		accessors: make(map[string]accessor),
	}
	d.ancestors[d] = struct{}{}
	return d
}

func (d *Descriptor) descriptor() *Descriptor { return d }

// Name returns the class name.
func (d *Descriptor) Name() string { return d.name }

// Parent returns the descriptor d inherits from, or nil.
func (d *Descriptor) Parent() *Descriptor { return d.parent }

// Initialized reports whether Init has been called.
func (d *Descriptor) Initialized() bool { return d.ctor != nil }

// Constructible reports whether scripts may call T.new.
func (d *Descriptor) Constructible() bool { return d.ctor != nil && d.ctor.New != nil }

func (d *Descriptor) mustInit(op string) {
	if d.ctor == nil {
		panic(fmt.Sprintf("protobind: %s.%s called before Init", d.name, op))
	}
}

// Init creates the template of the type. Calling it again replaces the
// constructor; methods and accessors are kept.
func (d *Descriptor) Init(ctor Constructor) {
	if ctor.MinArgs < 0 {
		panic(fmt.Sprintf("protobind: %s.Init: negative MinArgs", d.name))
	}
	d.ctor = &ctor
	d.gen++
	Logger().Debug("type initialized",
		zap.String("type", d.name),
		zap.Int("minArgs", ctor.MinArgs),
		zap.Bool("constructible", ctor.New != nil))
}

// Inherit links d below parent. Both must be initialized. Linking to the
// same parent twice is a no-op; a second parent or a cycle panics.
func (d *Descriptor) Inherit(parent Type) {
	p := parent.descriptor()
	d.mustInit("Inherit")
	p.mustInit("Inherit")

	if d.parent == p {
		return
	}
	if d.parent != nil {
		panic(fmt.Sprintf("protobind: %s already inherits from %s", d.name, d.parent.name))
	}
	if p.IsA(d) {
		panic(fmt.Sprintf("protobind: %s cannot inherit from its descendant %s", d.name, p.name))
	}

	d.parent = p
	p.derived = append(p.derived, d)
	d.linkAncestors(p.ancestors)
	d.gen++
	Logger().Debug("type inherits", zap.String("type", d.name), zap.String("parent", p.name))
}

// linkAncestors adds anc to d and every descriptor already derived from it.
func (d *Descriptor) linkAncestors(anc map[*Descriptor]struct{}) {
	for a := range anc {
		d.ancestors[a] = struct{}{}
	}
	for _, c := range d.derived {
		c.linkAncestors(anc)
	}
}

// IsA reports whether d is t or inherits from it, directly or transitively.
func (d *Descriptor) IsA(t Type) bool {
	if d == nil || t == nil {
		return false
	}
	_, ok := d.ancestors[t.descriptor()]
	return ok
}

// AddMethod binds fn as name on the prototype of the type. The receiver
// must be an instance of d or of a descendant, and at least minArgs
// arguments must be passed. Rebinding a name replaces the previous body.
func (d *Descriptor) AddMethod(name string, minArgs int, fn Func) {
	d.mustInit("AddMethod")
	d.addMethod(name, method{minArgs: minArgs, fn: fn})
}

func (d *Descriptor) addMethod(name string, m method) {
	if _, ok := d.methods[name]; !ok {
		d.methodOrder = append(d.methodOrder, name)
	}
	d.methods[name] = m
	d.gen++
}

// AddStaticMethod binds fn as name on the class table. Static methods are
// called with a dot (T.name(...)) and are not inherited.
func (d *Descriptor) AddStaticMethod(name string, minArgs int, fn Func) {
	d.mustInit("AddStaticMethod")
	if _, ok := d.statics[name]; !ok {
		d.staticOrder = append(d.staticOrder, name)
	}
	d.statics[name] = method{minArgs: minArgs, fn: fn}
	d.gen++
}

// AddAccessor binds a property on every instance. A nil set makes the
// property read-only; writes to it are ignored.
func (d *Descriptor) AddAccessor(name string, get Getter, set Setter) {
	d.mustInit("AddAccessor")
	if get == nil {
		panic(fmt.Sprintf("protobind: %s.AddAccessor(%q): nil getter", d.name, name))
	}
	if _, ok := d.accessors[name]; !ok {
		d.accessorOrder = append(d.accessorOrder, name)
	}
	d.accessors[name] = accessor{get: get, set: set}
	d.gen++
}

// lookupAccessor searches d and its ancestors for name.
func (d *Descriptor) lookupAccessor(name string) (accessor, bool) {
	for a := d; a != nil; a = a.parent {
		if acc, ok := a.accessors[name]; ok {
			return acc, true
		}
	}
	return accessor{}, false
}

// AddToModule defines the class table of d in ns under the class name.
// The property is enumerable, read-only and cannot be deleted.
func (d *Descriptor) AddToModule(ns *Namespace) {
	d.mustInit("AddToModule")
	ns.Define(d.name, d.Class(ns.L), ReadOnly|DontDelete)
}

// Class returns the class table of d in L.
func (d *Descriptor) Class(L *lua.LState) *lua.LTable {
	return d.template(L).class
}

// Prototype returns the prototype table of d in L.
func (d *Descriptor) Prototype(L *lua.LState) *lua.LTable {
	return d.template(L).proto
}

// Create wraps an existing native value without going through the script
// constructor. A nil native returns lua.LNil. Up to two extra values are
// handed to Constructor.Setup; passing more is a programming error.
func (d *Descriptor) Create(L *lua.LState, native any, extra ...lua.LValue) (lua.LValue, error) {
	d.mustInit("Create")
	if len(extra) > 2 {
		panic(fmt.Sprintf("protobind: %s.Create: at most 2 extra values, got %d", d.name, len(extra)))
	}
	if isNil(native) {
		return lua.LNil, nil
	}
	c := &Call{L: L, args: extra, this: lua.LNil, construct: true}
	return d.construct(c, native, true)
}

// Unwrap returns the native value of v when v is an instance of d or of
// one of its descendants. It never raises.
func (d *Descriptor) Unwrap(v lua.LValue) (any, bool) {
	inst := instanceOf(v)
	if inst == nil || !inst.desc.IsA(d) {
		return nil, false
	}
	return inst.native, true
}

// callMethod runs the method preamble and body for the receiver at stack
// position 1.
func (d *Descriptor) callMethod(L *lua.LState, name string, m method) int {
	c := callFromStack(L, 2)
	c.this = L.Get(1)
	if c.NArgs() < m.minArgs {
		raise(L, TypeErrorf(msgExpectedArgs, m.minArgs))
	}
	self, ok := d.Unwrap(c.this)
	if !ok {
		raise(L, TypeErrorf(MsgIllegalInvocation))
	}
	c.self = self
	return finish(L, c, m.fn)
}

func (d *Descriptor) callStatic(L *lua.LState, m method) int {
	c := callFromStack(L, 1)
	if c.NArgs() < m.minArgs {
		raise(L, TypeErrorf(msgExpectedArgs, m.minArgs))
	}
	return finish(L, c, m.fn)
}

// finish runs fn and pushes its result.
func finish(L *lua.LState, c *Call, fn Func) int {
	v, err := fn(c)
	if err != nil {
		raise(L, err)
	}
	if v == nil {
		return 0
	}
	L.Push(v)
	return 1
}
