package protobind_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/protobind"
)

func TestNamespaceClassesAreProtected(t *testing.T) {
	s := newShapes(t)

	err := s.L.DoString("shapes.Circle = 1")
	requireScriptError(t, err, protobind.KindTypeError, "Cannot assign to read only property 'Circle' of shapes")

	err = s.L.DoString("shapes.Circle = nil")
	requireScriptError(t, err, protobind.KindTypeError, "Cannot delete property 'Circle' of shapes")

	assert.Equal(t, lua.LString("[class Circle]"), s.eval(t, "tostring(shapes.Circle)"))
}

func TestNamespaceCannotBeBypassed(t *testing.T) {
	s := newShapes(t)

	err := s.L.DoString("rawset(shapes, 'Circle', 1)")
	require.Error(t, err)

	err = s.L.DoString("setmetatable(shapes, nil)")
	require.Error(t, err)

	assert.Equal(t, lua.LString("namespace"), s.eval(t, "getmetatable(shapes)"))
	assert.IsType(t, &lua.LTable{}, s.ns.Get("Circle"))
}

func TestNamespaceScriptProperties(t *testing.T) {
	s := newShapes(t)

	require.NoError(t, s.L.DoString("shapes.version = '1.0'"))
	attr, ok := s.ns.Attr("version")
	require.True(t, ok)
	assert.Equal(t, protobind.PropertyAttr(0), attr)
	assert.Equal(t, lua.LString("1.0"), s.ns.Get("version"))

	require.NoError(t, s.L.DoString("shapes.version = '2.0'"))
	assert.Equal(t, lua.LString("2.0"), s.eval(t, "shapes.version"))

	require.NoError(t, s.L.DoString("shapes.version = nil"))
	assert.False(t, s.ns.Has("version"))
	assert.NotContains(t, s.ns.Keys(), "version")
}

func TestNamespaceDefine(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	ns := protobind.NewNamespace(L, "cfg")
	ns.SetGlobal("cfg")

	ns.DefineConst("PI", lua.LNumber(3.14))
	ns.Define("hidden", lua.LTrue, protobind.DontEnum)
	ns.Define("mutable", lua.LNumber(1), 0)

	assert.Equal(t, []string{"PI", "mutable"}, ns.Keys())
	assert.True(t, ns.Has("hidden"))

	requireScriptError(t, L.DoString("cfg.PI = 3"), protobind.KindTypeError, "Cannot assign to read only property 'PI' of cfg")
	require.NoError(t, L.DoString("cfg.hidden = false; cfg.mutable = 2"))
	assert.Equal(t, lua.LFalse, ns.Get("hidden"))
	assert.Equal(t, lua.LNumber(2), ns.Get("mutable"))

	// Go code is not bound by the attributes
	ns.Define("PI", lua.LNumber(3), protobind.Const)
	assert.Equal(t, lua.LNumber(3), ns.Get("PI"))
	ns.Define("PI", lua.LNil, 0)
	assert.False(t, ns.Has("PI"))
}

func TestNamespaceIteration(t *testing.T) {
	s := newShapes(t)
	s.ns.Define("hidden", lua.LTrue, protobind.DontEnum)

	require.NoError(t, s.L.DoString(`
		names = {}
		for name, class in shapes() do
			assert(shapes[name] == class)
			names[#names + 1] = name
		end
		joined = table.concat(names, ",")
	`))
	assert.Equal(t, lua.LString("Shape,Circle,Square,Point"), s.global("joined"))

	require.NoError(t, s.L.DoString(`
		shapes.extra = 1
		local next_entry = shapes()
		shapes.extra = nil
		count = 0
		for name in next_entry do count = count + 1 end
	`))
	assert.Equal(t, lua.LNumber(4), s.global("count"))
}

func TestNamespacePreload(t *testing.T) {
	s := newShapes(t)
	require.NoError(t, s.ns.Preload("shapes.core"))

	require.NoError(t, s.L.DoString(`
		local m = require("shapes.core")
		same = m == shapes
		r = m.Circle.new(3).radius
	`))
	assert.Equal(t, lua.LTrue, s.global("same"))
	assert.Equal(t, lua.LNumber(3), s.global("r"))
}

func TestNamespacePreloadWithoutPackageLib(t *testing.T) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	ns := protobind.NewNamespace(L, "bare")
	assert.Error(t, ns.Preload("bare"))
}

func TestPropertyAttrString(t *testing.T) {
	assert.Equal(t, "None", protobind.PropertyAttr(0).String())
	assert.Equal(t, "ReadOnly|DontDelete", protobind.Const.String())
	assert.Equal(t, "ReadOnly|DontEnum|DontDelete", (protobind.Const | protobind.DontEnum).String())
}
