package protobind

import lua "github.com/yuin/gopher-lua"

const stateKey = "protobind.state"

// stateData holds everything protobind materializes inside one LState.
type stateData struct {
	templates map[*Descriptor]*template
}

// stateOf returns the data attached to L, creating it on first use.
// It lives in the Lua registry so it is collected with the state.
func stateOf(L *lua.LState) *stateData {
	reg := L.Get(lua.RegistryIndex)
	if ud, ok := L.GetField(reg, stateKey).(*lua.LUserData); ok {
		if sd, ok := ud.Value.(*stateData); ok {
			return sd
		}
	}
	sd := &stateData{templates: make(map[*Descriptor]*template)}
	ud := L.NewUserData()
	ud.Value = sd
	L.SetField(reg, stateKey, ud)
	return sd
}
