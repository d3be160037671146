package protobind_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/protobind"
)

func TestIntConversion(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	tests := []struct {
		in   float64
		want int32
	}{
		{0, 0},
		{42, 42},
		{-42, -42},
		{3.9, 3},
		{-3.9, -3},
		{2147483647, 2147483647},
		{2147483648, -2147483648},
		{4294967295, -1},
		{4294967296, 0},
		{-2147483649, 2147483647},
		{1e20, 1661992960},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		got, err := protobind.NewCall(L, lua.LNumber(tt.in)).Int("n", 0)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ToInt32(%v)", tt.in)
	}
}

func TestScalarExtractionErrors(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	c := protobind.NewCall(L, lua.LString("x"), lua.LNumber(1), lua.LTrue)

	_, err := c.Int("count", 0)
	assert.EqualError(t, err, "TypeError: Parameter count (0) should be number")
	_, err = c.Double("ratio", 2)
	assert.EqualError(t, err, "TypeError: Parameter ratio (2) should be number")
	_, err = c.String("name", 1)
	assert.EqualError(t, err, "TypeError: Parameter name (1) should be string")
	_, err = c.Bool("flag", 0)
	assert.EqualError(t, err, "TypeError: Parameter flag (0) should be boolean")
	_, err = c.Int("missing", 5)
	assert.EqualError(t, err, "TypeError: Parameter missing (5) should be number")

	assert.ErrorIs(t, err, protobind.ErrType)
}

func TestScalarExtraction(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	c := protobind.NewCall(L, lua.LNumber(2.5), lua.LString("hi"), lua.LFalse)

	d, err := c.Double("d", 0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, d)

	s, err := c.String("s", 1)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	b, err := c.Bool("b", 2)
	require.NoError(t, err)
	assert.False(t, b)
}

func TestStringIsOptional(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	s, err := protobind.NewCall(L).String("name", 0)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	_, err = protobind.NewCall(L, lua.LNil).String("name", 0)
	assert.EqualError(t, err, "TypeError: Parameter name (0) should be string")
}

func TestObjectExtraction(t *testing.T) {
	s := newShapes(t)

	native := &circle{r: 1}
	v, err := s.circle.Create(s.L, native)
	require.NoError(t, err)
	pv, err := s.point.Create(s.L, &point{})
	require.NoError(t, err)

	got, err := protobind.NewCall(s.L, v).Object(s.shape, "shape", 0)
	require.NoError(t, err)
	assert.Same(t, native, got)

	typed, err := s.circle.Arg(protobind.NewCall(s.L, lua.LNumber(0), v), "c", 1)
	require.NoError(t, err)
	assert.Same(t, native, typed)

	_, err = protobind.NewCall(s.L, pv).Object(s.shape, "shape", 0)
	assert.EqualError(t, err, "TypeError: Parameter shape (0) is of incorrect type")

	_, err = s.circle.Arg(protobind.NewCall(s.L), "c", 0)
	assert.EqualError(t, err, "TypeError: Parameter c (0) is of incorrect type")

	opt, err := s.circle.OptArg(protobind.NewCall(s.L), "c", 0)
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestArrayExtraction(t *testing.T) {
	s := newShapes(t)

	natives := []shape{&circle{r: 1}, &square{side: 2}, &circle{r: 3}}
	tb := s.L.NewTable()
	for i, n := range natives {
		var v lua.LValue
		var err error
		switch n := n.(type) {
		case *circle:
			v, err = s.circle.Create(s.L, n)
		case *square:
			v, err = s.square.Create(s.L, n)
		}
		require.NoError(t, err, "element %d", i)
		tb.Append(v)
	}

	got, err := s.shape.ArrayArg(protobind.NewCall(s.L, tb), "shapes", 0)
	require.NoError(t, err)
	require.Len(t, got, len(natives))
	for i := range natives {
		assert.Same(t, natives[i], got[i])
	}

	raw, err := protobind.NewCall(s.L, tb).Array(s.shape, "shapes", 0)
	require.NoError(t, err)
	assert.Len(t, raw, 3)

	empty, err := s.shape.ArrayArg(protobind.NewCall(s.L, s.L.NewTable()), "shapes", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestArrayExtractionErrors(t *testing.T) {
	s := newShapes(t)

	good, err := s.circle.Create(s.L, &circle{r: 1})
	require.NoError(t, err)
	other, err := s.point.Create(s.L, &point{})
	require.NoError(t, err)

	mixed := s.L.NewTable()
	mixed.Append(good)
	mixed.Append(other)
	mixed.Append(good)

	got, err := s.shape.ArrayArg(protobind.NewCall(s.L, mixed), "shapes", 0)
	assert.EqualError(t, err, "TypeError: Parameter shapes (0) contains element of invalid type")
	assert.Nil(t, got, "no partial result")

	raw, err := protobind.NewCall(s.L, mixed).Array(s.shape, "shapes", 0)
	assert.EqualError(t, err, "TypeError: Parameter shapes (0) contains element of invalid type")
	assert.Nil(t, raw)

	for _, v := range []lua.LValue{good, lua.LNumber(1), lua.LString("x"), lua.LNil} {
		_, err = s.shape.ArrayArg(protobind.NewCall(s.L, lua.LNumber(0), v), "shapes", 1)
		assert.EqualError(t, err, "TypeError: Parameter shapes (1) should be array")
	}

	keyed := s.L.NewTable()
	keyed.RawSetString("a", good)
	_, err = s.shape.ArrayArg(protobind.NewCall(s.L, keyed), "shapes", 0)
	assert.EqualError(t, err, "TypeError: Parameter shapes (0) should be array")
	_, err = protobind.NewCall(s.L, keyed).Array(s.shape, "shapes", 0)
	assert.EqualError(t, err, "TypeError: Parameter shapes (0) should be array")

	err = s.L.DoString(`shapes.Point.new(0, 0):totalArea({a = 1})`)
	requireScriptError(t, err, protobind.KindTypeError, "Parameter shapes (0) should be array")
}

func TestArrayArgumentFromScript(t *testing.T) {
	s := newShapes(t)

	area := s.eval(t, `shapes.Point.new(0, 0):totalArea({shapes.Circle.new(1):inscribed(), shapes.Circle.new(1):inscribed()})`)
	assert.InDelta(t, 4.0, float64(area.(lua.LNumber)), 1e-9)

	err := s.L.DoString(`shapes.Point.new(0, 0):totalArea({shapes.Point.new(1, 1)})`)
	requireScriptError(t, err, protobind.KindTypeError, "Parameter shapes (0) contains element of invalid type")

	err = s.L.DoString(`shapes.Point.new(0, 0):totalArea(shapes.Circle.new(1))`)
	requireScriptError(t, err, protobind.KindTypeError, "Parameter shapes (0) should be array")
}

func TestSchema(t *testing.T) {
	s := newShapes(t)

	require.NoError(t, s.L.DoString(`
		p = shapes.Point.new(1, 2)
		p:moveBy(10)
		p:moveBy(1, 1)
	`))
	assert.Equal(t, lua.LNumber(12), s.eval(t, "p.x"))
	assert.Equal(t, lua.LNumber(3), s.eval(t, "p.y"))

	requireScriptError(t, s.L.DoString("p:moveBy()"), protobind.KindTypeError, "Expected 1 arguments")
	requireScriptError(t, s.L.DoString("p:moveBy(1, 'a')"), protobind.KindTypeError, "Parameter dy (1) should be number")
	requireScriptError(t, s.L.DoString("p:moveBy('a', 'b')"), protobind.KindTypeError, "Parameter dx (0) should be number")
	assert.Equal(t, lua.LNumber(12), s.eval(t, "p.x"), "failed calls must not mutate")
}

func TestSchemaMin(t *testing.T) {
	assert.Equal(t, 0, protobind.Schema{}.Min())
	assert.Equal(t, 2, protobind.Schema{
		{Name: "a", Kind: protobind.ArgInt},
		{Name: "b", Kind: protobind.ArgString},
		{Name: "c", Kind: protobind.ArgBool, Optional: true},
	}.Min())
	assert.Equal(t, 3, protobind.Schema{
		{Name: "a", Kind: protobind.ArgInt, Optional: true},
		{Name: "b", Kind: protobind.ArgString},
		{Name: "c", Kind: protobind.ArgBool},
	}.Min())
}

func TestSchemaValidate(t *testing.T) {
	s := newShapes(t)

	assert.NoError(t, protobind.Schema{
		{Name: "a", Kind: protobind.ArgObject, Type: s.shape},
		{Name: "b", Kind: protobind.ArgArray, Type: s.circle.Descriptor},
		{Name: "c", Kind: protobind.ArgAny},
	}.Validate())

	assert.Error(t, protobind.Schema{{Kind: protobind.ArgInt}}.Validate(), "name required")
	assert.Error(t, protobind.Schema{{Name: "a"}}.Validate(), "kind required")
	assert.Error(t, protobind.Schema{{Name: "a", Kind: protobind.ArgObject}}.Validate(), "object needs a type")
	assert.Error(t, protobind.Schema{{Name: "a", Kind: protobind.ArgArray}}.Validate(), "array needs a type")

	assert.Panics(t, func() {
		s.point.AddMethodSchema("bad", protobind.Schema{{Name: "a", Kind: protobind.ArgArray}},
			func(c *protobind.Call, args protobind.Values) (lua.LValue, error) { return nil, nil })
	})
}

func TestExtract(t *testing.T) {
	s := newShapes(t)

	v, err := s.circle.Create(s.L, &circle{r: 1})
	require.NoError(t, err)
	arr := s.L.NewTable()
	arr.Append(v)

	schema := protobind.Schema{
		{Name: "n", Kind: protobind.ArgInt},
		{Name: "d", Kind: protobind.ArgDouble},
		{Name: "s", Kind: protobind.ArgString},
		{Name: "b", Kind: protobind.ArgBool},
		{Name: "o", Kind: protobind.ArgObject, Type: s.shape},
		{Name: "a", Kind: protobind.ArgArray, Type: s.circle},
		{Name: "x", Kind: protobind.ArgAny, Optional: true},
	}
	c := protobind.NewCall(s.L, lua.LNumber(7.8), lua.LNumber(1.5), lua.LString("str"), lua.LTrue, v, arr, lua.LString("any"))

	vals, err := c.Extract(schema)
	require.NoError(t, err)
	assert.Equal(t, int32(7), vals.Int(0))
	assert.Equal(t, 1.5, vals.Double(1))
	assert.Equal(t, "str", vals.String(2))
	assert.True(t, vals.Bool(3))
	assert.IsType(t, &circle{}, vals.Object(4))
	assert.Len(t, vals.Array(5), 1)
	assert.Equal(t, lua.LString("any"), vals.Value(6))

	vals, err = protobind.NewCall(s.L, lua.LNumber(1), lua.LNumber(1), lua.LString(""), lua.LFalse, v, arr).Extract(schema)
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, vals.Value(6))

	_, err = protobind.NewCall(s.L, lua.LNumber(1)).Extract(schema)
	assert.EqualError(t, err, "TypeError: Expected 6 arguments")
}
