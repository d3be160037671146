package protobind_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/protobind"
)

type shape interface {
	Area() float64
	Kind() string
}

type circle struct {
	r float64
}

func (c *circle) Area() float64 { return math.Pi * c.r * c.r }
func (c *circle) Kind() string  { return "circle" }

type square struct {
	side float64
}

func (s *square) Area() float64 { return s.side * s.side }
func (s *square) Kind() string  { return "square" }

type point struct {
	x, y int32
}

// shapes is a small native library bound into a fresh registry.
//
//	Shape   internal-only, parent of Circle and Square
//	Circle  Circle.new(radius), inherits Shape
//	Square  internal-only, inherits Shape
//	Point   Point.new(x, y), unrelated
type shapes struct {
	reg    *protobind.Registry
	shape  *protobind.Proto[shape]
	circle *protobind.Proto[*circle]
	square *protobind.Proto[*square]
	point  *protobind.Proto[*point]

	// setups records the arguments every Circle Setup hook saw.
	setups [][]lua.LValue

	L  *lua.LState
	ns *protobind.Namespace
}

func newShapes(t *testing.T) *shapes {
	t.Helper()
	s := &shapes{reg: protobind.NewRegistry()}

	s.shape = protobind.NewProto[shape](s.reg, "Shape", func(ns *protobind.Namespace) {
		s.shape.Init(protobind.Constructor{})
		s.shape.Method("area", 0, func(self shape, c *protobind.Call) (lua.LValue, error) {
			return lua.LNumber(self.Area()), nil
		})
		s.shape.Accessor("kind", func(self shape, c *protobind.Call) (lua.LValue, error) {
			return lua.LString(self.Kind()), nil
		}, nil)
		s.shape.AddToModule(ns)
	})

	s.circle = protobind.NewProto[*circle](s.reg, "Circle", func(ns *protobind.Namespace) {
		s.circle.Init(protobind.Constructor{
			MinArgs: 1,
			New: func(c *protobind.Call) (any, error) {
				r, err := c.Double("radius", 0)
				if err != nil {
					return nil, err
				}
				if r < 0 {
					return nil, protobind.Errorf("negative radius")
				}
				if r == 0 {
					return (*circle)(nil), nil
				}
				return &circle{r: r}, nil
			},
			Setup: func(c *protobind.Call) error {
				args := append([]lua.LValue(nil), c.Args()...)
				s.setups = append(s.setups, args)
				return nil
			},
		})
		s.circle.Inherit(s.shape)
		s.circle.Accessor("radius",
			func(self *circle, c *protobind.Call) (lua.LValue, error) {
				return lua.LNumber(self.r), nil
			},
			func(self *circle, c *protobind.Call, v lua.LValue) error {
				r, err := c.Double("radius", 0)
				if err != nil {
					return err
				}
				self.r = r
				return nil
			})
		s.circle.Method("grow", 1, func(self *circle, c *protobind.Call) (lua.LValue, error) {
			by, err := c.Double("by", 0)
			if err != nil {
				return nil, err
			}
			self.r += by
			return c.This(), nil
		})
		s.circle.Method("inscribed", 0, func(self *circle, c *protobind.Call) (lua.LValue, error) {
			return s.square.Create(c.L, &square{side: self.r * math.Sqrt2})
		})
		s.circle.Method("copy", 0, func(self *circle, c *protobind.Call) (lua.LValue, error) {
			cp := *self
			return s.circle.Create(c.L, &cp, c.This())
		})
		s.circle.AddStaticMethod("unit", 0, func(c *protobind.Call) (lua.LValue, error) {
			return s.circle.Create(c.L, &circle{r: 1})
		})
		s.circle.AddToModule(ns)
	})

	s.square = protobind.NewProto[*square](s.reg, "Square", func(ns *protobind.Namespace) {
		s.square.Init(protobind.Constructor{})
		s.square.Inherit(s.shape)
		s.square.Accessor("side", func(self *square, c *protobind.Call) (lua.LValue, error) {
			return lua.LNumber(self.side), nil
		}, nil)
		s.square.AddToModule(ns)
	})

	s.point = protobind.NewProto[*point](s.reg, "Point", func(ns *protobind.Namespace) {
		s.point.Init(protobind.Constructor{
			MinArgs: 2,
			New: func(c *protobind.Call) (any, error) {
				x, err := c.Int("x", 0)
				if err != nil {
					return nil, err
				}
				y, err := c.Int("y", 1)
				if err != nil {
					return nil, err
				}
				return &point{x: x, y: y}, nil
			},
		})
		s.point.Accessor("x", func(self *point, c *protobind.Call) (lua.LValue, error) {
			return lua.LNumber(self.x), nil
		}, nil)
		s.point.Accessor("y", func(self *point, c *protobind.Call) (lua.LValue, error) {
			return lua.LNumber(self.y), nil
		}, nil)
		s.point.AddMethodSchema("moveBy", protobind.Schema{
			{Name: "dx", Kind: protobind.ArgInt},
			{Name: "dy", Kind: protobind.ArgInt, Optional: true},
		}, func(c *protobind.Call, args protobind.Values) (lua.LValue, error) {
			p := c.Self().(*point)
			p.x += args.Int(0)
			p.y += args.Int(1)
			return nil, nil
		})
		s.point.Method("totalArea", 1, func(self *point, c *protobind.Call) (lua.LValue, error) {
			all, err := s.shape.ArrayArg(c, "shapes", 0)
			if err != nil {
				return nil, err
			}
			total := 0.0
			for _, sh := range all {
				total += sh.Area()
			}
			return lua.LNumber(total), nil
		})
		s.point.AddToModule(ns)
	})

	s.L = lua.NewState()
	t.Cleanup(s.L.Close)
	s.ns = protobind.NewNamespace(s.L, "shapes")
	s.reg.Apply(s.ns)
	s.ns.SetGlobal("shapes")
	return s
}

// eval runs "return <expr>" and returns the first result.
func (s *shapes) eval(t *testing.T, expr string) lua.LValue {
	t.Helper()
	top := s.L.GetTop()
	require.NoError(t, s.L.DoString("return "+expr))
	v := s.L.Get(top + 1)
	s.L.SetTop(top)
	return v
}

// global returns a global set by a previous script.
func (s *shapes) global(name string) lua.LValue {
	return s.L.GetGlobal(name)
}

// requireScriptError asserts that err is an uncaught script exception of
// the given kind and message.
func requireScriptError(t *testing.T, err error, kind protobind.ErrorKind, msg string) {
	t.Helper()
	require.Error(t, err)
	e, ok := protobind.AsError(err)
	require.True(t, ok, "not a protobind error: %v", err)
	require.Equal(t, kind, e.Kind)
	require.Equal(t, msg, e.Message)
}
