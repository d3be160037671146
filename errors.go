package protobind

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ErrorKind is the script-visible class of an Error.
type ErrorKind string

const (
	KindError     ErrorKind = "Error"
	KindTypeError ErrorKind = "TypeError"
)

// Messages raised by the construction and call trampolines.
const (
	MsgNotConstructCall   = "Must be called with `new`!"
	MsgCannotCreate       = "This type cannot be created directly!"
	MsgIllegalInvocation  = "Illegal invocation"
	msgExpectedArgs       = "Expected %d arguments"
	msgParamShouldBe      = "Parameter %s (%d) should be %s"
	msgParamIncorrectType = "Parameter %s (%d) is of incorrect type"
	msgParamInvalidElem   = "Parameter %s (%d) contains element of invalid type"
)

// Error is an exception raised into a script.
//
// When a bound function returns an *Error it reaches Lua unchanged, so
// scripts can inspect e.name and e.message. Any other error is raised
// with KindError and its Error() text as the message.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind. An empty target message
// matches any message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Sentinels for errors.Is.
var (
	ErrType  = &Error{Kind: KindTypeError}
	ErrError = &Error{Kind: KindError}
)

// TypeErrorf returns a TypeError with a formatted message.
func TypeErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindTypeError, Message: fmt.Sprintf(format, args...)}
}

// Errorf returns a generic Error with a formatted message.
func Errorf(format string, args ...any) *Error {
	return &Error{Kind: KindError, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts the *Error carried by err. It understands errors
// returned by bound functions as well as *lua.ApiError values produced by
// DoString, PCall and CallByParam when a script did not catch the exception.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		return errorFromValue(apiErr.Object)
	}
	return nil, false
}

// errorFromValue recovers an *Error from a value caught by pcall.
func errorFromValue(v lua.LValue) (*Error, bool) {
	ud, ok := v.(*lua.LUserData)
	if !ok {
		return nil, false
	}
	e, ok := ud.Value.(*Error)
	return e, ok
}

// toError normalizes any error returned by a bound function.
func toError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindError, Message: err.Error(), Cause: err}
}

const errorTypeName = "protobind.Error"

// raise throws err into the running script. It does not return.
func raise(L *lua.LState, err error) {
	e := toError(err)
	ud := L.NewUserData()
	ud.Value = e
	ud.Metatable = errorMetatable(L)
	L.Error(ud, 0)
}

// errorMetatable returns the per-state metatable shared by all raised errors.
func errorMetatable(L *lua.LState) *lua.LTable {
	if mt, ok := L.GetTypeMetatable(errorTypeName).(*lua.LTable); ok {
		return mt
	}
	mt := L.NewTypeMetatable(errorTypeName)
	mt.RawSetString("__tostring", L.NewFunction(func(L *lua.LState) int {
		e, _ := errorFromValue(L.Get(1))
		if e == nil {
			L.Push(lua.LString("Error"))
			return 1
		}
		L.Push(lua.LString(e.Error()))
		return 1
	}))
	mt.RawSetString("__index", L.NewFunction(func(L *lua.LState) int {
		e, _ := errorFromValue(L.Get(1))
		if e == nil {
			return 0
		}
		switch L.CheckString(2) {
		case "name":
			L.Push(lua.LString(e.Kind))
		case "message":
			L.Push(lua.LString(e.Message))
		default:
			L.Push(lua.LNil)
		}
		return 1
	}))
	mt.RawSetString("__metatable", lua.LString(errorTypeName))
	return mt
}
