package protobind

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	lua "github.com/yuin/gopher-lua"
)

// Int extracts the number at pos converted to int32 the way ECMAScript
// ToInt32 does: truncate, then wrap modulo 2^32. NaN and infinities give 0.
func (c *Call) Int(name string, pos int) (int32, error) {
	n, ok := c.Arg(pos).(lua.LNumber)
	if !ok {
		return 0, TypeErrorf(msgParamShouldBe, name, pos, "number")
	}
	return toInt32(float64(n)), nil
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(f), 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return int32(uint32(m))
}

// Double extracts the number at pos.
func (c *Call) Double(name string, pos int) (float64, error) {
	n, ok := c.Arg(pos).(lua.LNumber)
	if !ok {
		return 0, TypeErrorf(msgParamShouldBe, name, pos, "number")
	}
	return float64(n), nil
}

// String extracts the string at pos. The argument is optional: a missing
// argument gives "". A nil passed explicitly is still an error.
func (c *Call) String(name string, pos int) (string, error) {
	if pos >= c.NArgs() {
		return "", nil
	}
	s, ok := c.Arg(pos).(lua.LString)
	if !ok {
		return "", TypeErrorf(msgParamShouldBe, name, pos, "string")
	}
	return string(s), nil
}

// Bool extracts the boolean at pos.
func (c *Call) Bool(name string, pos int) (bool, error) {
	b, ok := c.Arg(pos).(lua.LBool)
	if !ok {
		return false, TypeErrorf(msgParamShouldBe, name, pos, "boolean")
	}
	return bool(b), nil
}

// Object unwraps the argument at pos against t.
func (c *Call) Object(t Type, name string, pos int) (any, error) {
	v, ok := t.descriptor().Unwrap(c.Arg(pos))
	if !ok {
		return nil, TypeErrorf(msgParamIncorrectType, name, pos)
	}
	return v, nil
}

// Array unwraps every element of the sequence at pos against t. Elements
// are read from t[1] to t[#t]. On failure no partial result is returned.
func (c *Call) Array(t Type, name string, pos int) ([]any, error) {
	tb, n, ok := sequence(c.Arg(pos))
	if !ok {
		return nil, TypeErrorf(msgParamShouldBe, name, pos, "array")
	}
	d := t.descriptor()
	out := make([]any, 0, n)
	for i := 1; i <= n; i++ {
		v, ok := d.Unwrap(tb.RawGetInt(i))
		if !ok {
			return nil, TypeErrorf(msgParamInvalidElem, name, pos)
		}
		out = append(out, v)
	}
	return out, nil
}

// sequence returns v as a table with its length. A table without
// elements at 1..n but with other keys is not a sequence.
func sequence(v lua.LValue) (*lua.LTable, int, bool) {
	tb, ok := v.(*lua.LTable)
	if !ok {
		return nil, 0, false
	}
	n := tb.Len()
	if n == 0 {
		if k, _ := tb.Next(lua.LNil); k != lua.LNil {
			return nil, 0, false
		}
	}
	return tb, n, true
}

// ArgKind selects the extraction applied to a Param.
type ArgKind int

const (
	ArgAny ArgKind = iota + 1
	ArgInt
	ArgDouble
	ArgString
	ArgBool
	ArgObject
	ArgArray
)

var argKindNames = map[ArgKind]string{
	ArgAny:    "any",
	ArgInt:    "int",
	ArgDouble: "double",
	ArgString: "string",
	ArgBool:   "bool",
	ArgObject: "object",
	ArgArray:  "array",
}

func (k ArgKind) String() string {
	if s, ok := argKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ArgKind(%d)", int(k))
}

// Param declares one positional argument.
type Param struct {
	Name     string  `validate:"required"`
	Kind     ArgKind `validate:"min=1,max=7"`
	Optional bool
	// Type is the descriptor for ArgObject and ArgArray.
	Type Type `validate:"-"`
}

// Schema declares the arguments of a bound function in order.
type Schema []Param

// Min returns the number of arguments that must be passed: the position
// of the last required parameter plus one.
func (s Schema) Min() int {
	n := 0
	for i, p := range s {
		if !p.Optional {
			n = i + 1
		}
	}
	return n
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(Param)
		if (p.Kind == ArgObject || p.Kind == ArgArray) && p.Type == nil {
			sl.ReportError(p.Type, "Type", "Type", "required_for_kind", p.Kind.String())
		}
	}, Param{})
	return v
}

// Validate checks that every parameter is well formed.
func (s Schema) Validate() error {
	for i, p := range s {
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("param %d (%s): %w", i, p.Name, err)
		}
	}
	return nil
}

// Values holds arguments extracted by Extract, indexed like the schema.
// Optional parameters that were not passed hold nil.
type Values []any

func (v Values) Int(i int) int32 {
	n, _ := v[i].(int32)
	return n
}

func (v Values) Double(i int) float64 {
	n, _ := v[i].(float64)
	return n
}

func (v Values) String(i int) string {
	s, _ := v[i].(string)
	return s
}

func (v Values) Bool(i int) bool {
	b, _ := v[i].(bool)
	return b
}

func (v Values) Object(i int) any {
	return v[i]
}

func (v Values) Array(i int) []any {
	a, _ := v[i].([]any)
	return a
}

func (v Values) Value(i int) lua.LValue {
	lv, _ := v[i].(lua.LValue)
	if lv == nil {
		return lua.LNil
	}
	return lv
}

// Extract checks the arity and converts every argument declared by s, in
// order. The first failing parameter determines the error.
func (c *Call) Extract(s Schema) (Values, error) {
	if n := s.Min(); c.NArgs() < n {
		return nil, TypeErrorf(msgExpectedArgs, n)
	}
	out := make(Values, len(s))
	for i, p := range s {
		if p.Optional && (i >= c.NArgs() || c.Arg(i) == lua.LNil) {
			continue
		}
		var (
			v   any
			err error
		)
		switch p.Kind {
		case ArgInt:
			v, err = c.Int(p.Name, i)
		case ArgDouble:
			v, err = c.Double(p.Name, i)
		case ArgString:
			v, err = c.String(p.Name, i)
		case ArgBool:
			v, err = c.Bool(p.Name, i)
		case ArgObject:
			v, err = c.Object(p.Type, p.Name, i)
		case ArgArray:
			v, err = c.Array(p.Type, p.Name, i)
		default:
			v = c.Arg(i)
		}
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// AddMethodSchema binds a method whose arguments are declared by s. The
// arguments are extracted before fn runs. An invalid schema panics.
func (d *Descriptor) AddMethodSchema(name string, s Schema, fn func(c *Call, args Values) (lua.LValue, error)) {
	d.mustInit("AddMethodSchema")
	if err := s.Validate(); err != nil {
		panic(fmt.Sprintf("protobind: %s.%s: %v", d.name, name, err))
	}
	d.addMethod(name, method{
		minArgs: s.Min(),
		params:  s,
		fn: func(c *Call) (lua.LValue, error) {
			args, err := c.Extract(s)
			if err != nil {
				return nil, err
			}
			return fn(c, args)
		},
	})
}
