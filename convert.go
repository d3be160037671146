package protobind

import (
	"fmt"
	"reflect"

	lua "github.com/yuin/gopher-lua"
)

// ToLua converts a plain Go value to a Lua value. Slices and arrays become
// sequences and maps become tables. Wrapped instances are not produced
// here; use Create for native objects.
func ToLua(L *lua.LState, v any) lua.LValue {
	if v == nil {
		return lua.LNil
	}

	switch val := v.(type) {
	case lua.LValue:
		return val
	case string:
		return lua.LString(val)
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case []string:
		tb := L.CreateTable(len(val), 0)
		for _, s := range val {
			tb.Append(lua.LString(s))
		}
		return tb
	case error:
		return lua.LString(val.Error())
	case fmt.Stringer:
		return lua.LString(val.String())
	}

	// Use reflection for other types
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return lua.LNil
		}
		tb := L.CreateTable(rv.Len(), 0)
		for i := 0; i < rv.Len(); i++ {
			tb.Append(ToLua(L, rv.Index(i).Interface()))
		}
		return tb
	case reflect.Map:
		if rv.IsNil() {
			return lua.LNil
		}
		tb := L.CreateTable(0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			tb.RawSet(ToLua(L, iter.Key().Interface()), ToLua(L, iter.Value().Interface()))
		}
		return tb
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return lua.LNil
		}
		return ToLua(L, rv.Elem().Interface())
	default:
		return lua.LString(fmt.Sprintf("%v", v))
	}
}

// FromLua converts a Lua value to a plain Go value: nil, bool, float64,
// string, []any for sequences, map[string]any for other tables, and the
// native value for wrapped instances. Functions and other userdata are
// returned as their string form.
func FromLua(v lua.LValue) any {
	return fromLua(v, 0)
}

const maxConvertDepth = 32

func fromLua(v lua.LValue, depth int) any {
	switch val := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LUserData:
		if inst, ok := val.Value.(*instance); ok {
			return inst.native
		}
		return val.String()
	case *lua.LTable:
		if depth >= maxConvertDepth {
			return val.String()
		}
		if n := val.Len(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(val.RawGetInt(i), depth+1))
			}
			return out
		}
		out := make(map[string]any)
		val.ForEach(func(k, v lua.LValue) {
			out[k.String()] = fromLua(v, depth+1)
		})
		return out
	default:
		return v.String()
	}
}
