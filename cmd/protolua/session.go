package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"go.uber.org/zap"

	"github.com/feather-lang/protobind"
	"github.com/feather-lang/protobind/irbind"
)

var libFuncs = map[string]lua.LGFunction{
	"package":   lua.OpenPackage,
	"base":      lua.OpenBase,
	"table":     lua.OpenTable,
	"io":        lua.OpenIo,
	"os":        lua.OpenOs,
	"string":    lua.OpenString,
	"math":      lua.OpenMath,
	"debug":     lua.OpenDebug,
	"channel":   lua.OpenChannel,
	"coroutine": lua.OpenCoroutine,
}

// session is a Lua state with the bindings open.
type session struct {
	L   *lua.LState
	ns  *protobind.Namespace
	log *zap.Logger
}

func newSession(c Config, log *zap.Logger) (*session, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	enabled := make(map[string]bool, len(c.Libs))
	for _, name := range c.Libs {
		enabled[name] = true
	}
	for _, name := range allLibs {
		if !enabled[name] {
			continue
		}
		libName := name
		if name == "base" {
			libName = lua.BaseLibName
		}
		L.Push(L.NewFunction(libFuncs[name]))
		L.Push(lua.LString(libName))
		L.Call(1, 0)
	}

	ns, err := irbind.Open(L, c.Module)
	if err != nil {
		L.Close()
		return nil, err
	}
	if c.Global != "" {
		ns.SetGlobal(c.Global)
	}
	log.Debug("session ready",
		zap.String("module", c.Module),
		zap.String("global", c.Global),
		zap.Strings("libs", c.Libs),
		zap.Strings("types", ns.Keys()))
	return &session{L: L, ns: ns, log: log}, nil
}

func (s *session) Close() {
	s.L.Close()
}

// runFile executes a script file.
func (s *session) runFile(path string) error {
	s.log.Debug("running file", zap.String("path", path))
	return s.L.DoFile(path)
}

// eval runs src and returns the values it produces. Source that parses as
// an expression is evaluated as one, the way an interactive prompt does.
func (s *session) eval(src string) ([]lua.LValue, error) {
	fn, err := s.L.Load(strings.NewReader("return "+src), "=eval")
	if err != nil {
		fn, err = s.L.Load(strings.NewReader(src), "=eval")
		if err != nil {
			return nil, err
		}
	}
	top := s.L.GetTop()
	s.L.Push(fn)
	if err := s.L.PCall(0, lua.MultRet, nil); err != nil {
		return nil, err
	}
	n := s.L.GetTop() - top
	out := make([]lua.LValue, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, s.L.Get(top+i))
	}
	s.L.Pop(n)
	return out, nil
}

// incomplete reports whether src failed to parse only because it ended
// early, so more input may complete it.
func incomplete(src string) bool {
	_, err := parse.Parse(strings.NewReader(src), "=repl")
	var perr *parse.Error
	return errors.As(err, &perr) && perr.Pos.Line == parse.EOF
}

// parses reports whether src is a complete chunk.
func parses(src string) bool {
	_, err := parse.Parse(strings.NewReader(src), "=repl")
	return err == nil
}

// needsMore reports whether a REPL buffer should wait for another line:
// the statement form ended early and the expression form is not valid.
func needsMore(buf string) bool {
	return incomplete(buf) && !parses("return "+buf)
}

// completions returns the globals starting with prefix, sorted. A prefix
// of the form "ns.x" completes members of the namespace in definition order.
func (s *session) completions(prefix string) []string {
	var out []string
	if head, rest, ok := strings.Cut(prefix, "."); ok {
		if head != s.ns.Name() && s.L.GetGlobal(head) != s.ns.Value() {
			return nil
		}
		for _, k := range s.ns.Keys() {
			if strings.HasPrefix(k, rest) {
				out = append(out, head+"."+k)
			}
		}
		return out
	}
	if g, ok := s.L.Get(lua.GlobalsIndex).(*lua.LTable); ok {
		g.ForEach(func(k, _ lua.LValue) {
			if ks, ok := k.(lua.LString); ok && strings.HasPrefix(string(ks), prefix) {
				out = append(out, string(ks))
			}
		})
	}
	slices.Sort(out)
	return out
}

// formatError renders err for the terminal. Errors raised by bound types
// print as "Kind: message".
func formatError(err error) string {
	if e, ok := protobind.AsError(err); ok {
		return e.Error()
	}
	return strings.TrimSpace(err.Error())
}

// jsonValues converts values to plain Go values for JSON output. Wrapped
// native objects are rendered through their String method.
func jsonValues(values []lua.LValue) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = plain(protobind.FromLua(v))
	}
	return out
}

func plain(v any) any {
	switch v := v.(type) {
	case nil, bool, float64, string:
		return v
	case []any:
		for i := range v {
			v[i] = plain(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = plain(v[k])
		}
		return v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%v", v)
}

// printValues writes values tab separated, honoring __tostring.
func (s *session) printValues(w io.Writer, values []lua.LValue) {
	if len(values) == 0 {
		return
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = s.L.ToStringMeta(v).String()
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}
