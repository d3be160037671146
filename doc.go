// Package protobind exposes native Go objects to Lua scripts as classes.
//
// # Overview
//
// A native library is bound by registering one Descriptor per exposed type.
// Each registration carries an initializer that describes the type: its
// constructor, its parent, its methods, static methods and accessor
// properties. The initializer finishes by adding the class to a Namespace,
// the module object scripts import. It runs on the first Apply only;
// every later Apply, possibly from another goroutine with its own Lua
// state, adds the already described class to its namespace.
//
// Scripts see every type as a class table:
//
//	local m = llvm.Module.new("demo", ctx)   -- construct call
//	llvm.Module("demo", ctx)                 -- error: Must be called with `new`!
//	m:dump()                                 -- method from Module.prototype
//	print(m.name)                            -- accessor property
//
// Instances are userdata holding a private handle to the native value.
// Scripts cannot forge one, and methods check their receiver before they
// touch the native value.
//
// # Quick Start
//
//	type Counter struct{ n int }
//
//	var pCounter *protobind.Proto[*Counter]
//
//	func init() {
//	    pCounter = protobind.NewProto[*Counter](protobind.Default, "Counter", func(ns *protobind.Namespace) {
//	        pCounter.Init(protobind.Constructor{
//	            New: func(c *protobind.Call) (any, error) { return &Counter{}, nil },
//	        })
//	        pCounter.Method("incr", 0, func(self *Counter, c *protobind.Call) (lua.LValue, error) {
//	            self.n++
//	            return lua.LNumber(self.n), nil
//	        })
//	        pCounter.AddToModule(ns)
//	    })
//	}
//
//	func main() {
//	    L := lua.NewState()
//	    defer L.Close()
//
//	    ns := protobind.NewNamespace(L, "demo")
//	    protobind.InitAll(ns)
//	    ns.SetGlobal("demo")
//
//	    L.DoString(`local c = demo.Counter.new(); print(c:incr())`)
//	}
//
// # Construction
//
// There are two ways to obtain an instance. Scripts call T.new, which runs
// Constructor.New after checking the argument count; a type without New is
// internal-only and raises "This type cannot be created directly!". Go
// code wraps values it already has with Create, typically to return them
// from a method. Both paths end in the same trampoline, which stores the
// native value and then runs Constructor.Setup.
//
// # Inheritance
//
// Inherit links a type below a parent. Instances of the child are accepted
// wherever the parent is expected, and the child prototype falls back to
// the parent prototype. IsA answers from a precomputed ancestor set.
//
// # Arguments
//
// Call provides per-position extractors (Int, Double, String, Bool, Object,
// Array) that produce TypeErrors with the parameter name and position.
// A Schema declares all parameters at once for AddMethodSchema.
//
// # Errors
//
// A bound function reports failure by returning an error. It is raised as
// an error object with name and message fields; *Error values keep their
// kind. Go callers recover it with AsError. Misuse of the binding API
// itself, such as adding methods before Init, panics.
package protobind
