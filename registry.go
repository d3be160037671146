package protobind

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// InitFunc describes one type and adds it to a namespace. It usually
// calls Init, adds methods and accessors and ends with AddToModule.
//
// An InitFunc runs once per registry, against the first namespace it is
// applied to. Later namespaces only receive the class table, so other
// namespace changes made by an InitFunc are not repeated.
type InitFunc func(ns *Namespace)

// Registration is one entry of a Registry, in registration order.
type Registration struct {
	Name       string
	Descriptor *Descriptor

	init  InitFunc
	state *initState
}

// initState records the single run of an initializer.
type initState struct {
	once     sync.Once
	exported bool
}

// Registry collects type registrations and replays their initializers
// against a namespace.
//
// Registration normally happens from package init functions through the
// package-level Register; a driver then calls InitAll once per LState.
// Apply may run concurrently for namespaces of different LStates:
//
//	L := lua.NewState()
//	ns := protobind.NewNamespace(L, "llvm")
//	protobind.InitAll(ns)
//	ns.SetGlobal("llvm")
type Registry struct {
	mu      sync.Mutex
	entries []Registration
	byName  map[string]*Descriptor
	applied bool

	sealOnApply bool
	logger      *zap.Logger
}

// registryConfig accumulates options during NewRegistry.
type registryConfig struct {
	sealOnApply bool
	logger      *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

// WithSealOnApply makes Register panic once the registry has been applied.
func WithSealOnApply(seal bool) RegistryOption {
	return func(c *registryConfig) {
		c.sealOnApply = seal
	}
}

// WithLogger sets the logger used by the registry. The package logger is
// used otherwise.
func WithLogger(l *zap.Logger) RegistryOption {
	return func(c *registryConfig) {
		c.logger = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := &registryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Registry{
		byName:      make(map[string]*Descriptor),
		sealOnApply: cfg.sealOnApply,
		logger:      cfg.logger,
	}
}

func (r *Registry) log() *zap.Logger {
	if r.logger != nil {
		return r.logger
	}
	return Logger()
}

// Register creates the descriptor of a new type and appends init to the
// list run by Apply. A nil init registers the descriptor without an
// initializer. Duplicate names panic.
func (r *Registry) Register(name string, init InitFunc) *Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		panic("protobind: Register with empty type name")
	}
	if _, exists := r.byName[name]; exists {
		panic(fmt.Sprintf("protobind: duplicate type registration %q", name))
	}
	if r.applied && r.sealOnApply {
		panic(fmt.Sprintf("protobind: Register(%q) after the registry was applied", name))
	}

	d := newDescriptor(name)
	r.byName[name] = d
	r.entries = append(r.entries, Registration{Name: name, Descriptor: d, init: init, state: &initState{}})
	r.log().Debug("type registered", zap.String("type", name), zap.Int("position", len(r.entries)))
	return d
}

// Apply adds every registered type to ns in registration order. The first
// Apply of a registration runs its initializer; later ones reuse the
// descriptor and define its class table in ns.
func (r *Registry) Apply(ns *Namespace) {
	r.mu.Lock()
	entries := make([]Registration, len(r.entries))
	copy(entries, r.entries)
	r.applied = true
	r.mu.Unlock()

	for _, e := range entries {
		if e.init == nil {
			continue
		}
		ran := false
		e.state.once.Do(func() {
			ran = true
			e.init(ns)
			e.state.exported = exportedIn(ns, e.Descriptor)
		})
		if !ran && e.state.exported {
			e.Descriptor.AddToModule(ns)
		}
	}
	r.log().Debug("registry applied", zap.String("namespace", ns.Name()), zap.Int("types", len(entries)))
}

// exportedIn reports whether the class table of d is defined in ns.
func exportedIn(ns *Namespace, d *Descriptor) bool {
	if !d.Initialized() || !ns.Has(d.name) {
		return false
	}
	return ns.Get(d.name) == lua.LValue(d.Class(ns.L))
}

// InitAll is an alias of Apply.
func (r *Registry) InitAll(ns *Namespace) {
	r.Apply(ns)
}

// Registrations returns the registrations in order.
func (r *Registry) Registrations() []Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Registration, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byName[name]
	return d, ok
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Default is the process-wide registry used by Register and InitAll.
var Default = NewRegistry()

// Register adds a type to Default.
func Register(name string, init InitFunc) *Descriptor {
	return Default.Register(name, init)
}

// InitAll applies Default to ns.
func InitAll(ns *Namespace) {
	Default.Apply(ns)
}
