package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/feather-lang/protobind"
)

func newTestSession(t *testing.T) *session {
	t.Helper()
	s, err := newSession(defaultConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"no global", func(c *Config) { c.Global = "" }, false},
		{"empty module", func(c *Config) { c.Module = "" }, true},
		{"module not an identifier", func(c *Config) { c.Module = "my-mod" }, true},
		{"global not an identifier", func(c *Config) { c.Global = "1x" }, true},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"unknown lib", func(c *Config) { c.Libs = []string{"base", "net"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaultConfig()
			tt.mutate(&c)
			if tt.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}

func TestBindFlags(t *testing.T) {
	cfg := defaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	bindFlags(fs, &cfg)

	require.NoError(t, fs.Parse([]string{"-m", "ir", "--global=", "--lib", "base,string", "--log-level", "debug"}))
	assert.Equal(t, Config{Module: "ir", Global: "", LogLevel: "debug", Libs: []string{"base", "string"}}, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		c := defaultConfig()
		c.LogLevel = level
		l, err := newLogger(c)
		require.NoError(t, err, level)
		assert.NotNil(t, l)
	}
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"x = 1", false},
		{"function f(a)", true},
		{"if x then", true},
		{"local t = {", true},
		{`s = "open`, true},
		{"x = = 1", false},
		{"end", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, incomplete(tt.src), tt.src)
	}
}

func TestNeedsMore(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"function twice(a)", true},
		{"function twice(a)\n  return a * 2", true},
		{"function twice(a)\n  return a * 2\nend", false},
		{"for i = 1, 3 do", true},
		{"local t = {", true},
		{"f(1,", true},
		{"1 + 2", false},
		{"x = = 1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, needsMore(tt.src), tt.src)
	}
}

func TestEval(t *testing.T) {
	s := newTestSession(t)

	values, err := s.eval("1 + 2")
	require.NoError(t, err)
	assert.Equal(t, []lua.LValue{lua.LNumber(3)}, values)

	values, err = s.eval("x = 5")
	require.NoError(t, err)
	assert.Empty(t, values)

	values, err = s.eval("x, x * 2")
	require.NoError(t, err)
	assert.Equal(t, []lua.LValue{lua.LNumber(5), lua.LNumber(10)}, values)

	_, err = s.eval("llvm.Type.new()")
	require.Error(t, err)
	assert.Equal(t, "TypeError: This type cannot be created directly!", formatError(err))
}

func TestREPL(t *testing.T) {
	s := newTestSession(t)
	input := strings.Join([]string{
		"function twice(a)",
		"  return a * 2",
		"end",
		"twice(21)",
		"llvm.Context()",
		"llvm.Module.new('m', llvm.Context.new()).name",
		"if true then",
	}, "\n")

	var out, errOut bytes.Buffer
	var chunks []string
	err := s.repl(scannerReader(strings.NewReader(input), &out, false), &out, &errOut, func(c string) {
		chunks = append(chunks, c)
	})
	require.NoError(t, err)

	assert.Equal(t, "42\nm\n", out.String())
	assert.Contains(t, errOut.String(), "error: Error: Must be called with `new`!")
	assert.Contains(t, errOut.String(), "incomplete input discarded")
	assert.Equal(t, "function twice(a)\n  return a * 2\nend", chunks[0])
}

func TestCompletions(t *testing.T) {
	s := newTestSession(t)

	assert.Equal(t, []string{"llvm.Module"}, s.completions("llvm.Mo"))
	assert.Equal(t, []string{"llvm.FunctionType", "llvm.Function"}, s.completions("llvm.Fun"))
	assert.Contains(t, s.completions("ll"), "llvm")
	assert.Nil(t, s.completions("string.fo"))
}

func TestSessionWithoutLibs(t *testing.T) {
	c := defaultConfig()
	c.Libs = nil
	s, err := newSession(c, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, lua.LNil, s.L.GetGlobal("require"))
	values, err := s.eval("llvm.Module.new('bare', llvm.Context.new()).name")
	require.NoError(t, err)
	assert.Equal(t, []lua.LValue{lua.LString("bare")}, values)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestEvalCommand(t *testing.T) {
	out, _, err := execute(t, "eval", "llvm.Module.new('m', llvm.Context.new()).name")
	require.NoError(t, err)
	assert.Equal(t, "m\n", out)

	out, _, err = execute(t, "--module", "ir", "--global", "IR", "eval", "IR.version")
	require.NoError(t, err)
	assert.Equal(t, "0.1.0\n", out)

	out, _, err = execute(t, "eval", "--json", "{1, 'a', {x = true}}, llvm.Context.new() ~= nil")
	require.NoError(t, err)
	assert.JSONEq(t, `[[1, "a", {"x": true}], true]`, out)

	out, _, err = execute(t, "eval", "--json", "llvm.Module.new('j', llvm.Context.new())")
	require.NoError(t, err)
	assert.JSONEq(t, `["; ModuleID = 'j'\n"]`, out)

	_, errOut, err := execute(t, "eval", "llvm.Value.new()")
	require.Error(t, err)
	assert.Contains(t, errOut, "TypeError: This type cannot be created directly!")

	_, errOut, err = execute(t, "--log-level", "loud", "eval", "1")
	require.Error(t, err)
	assert.Contains(t, errOut, "invalid configuration")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.lua")
	second := filepath.Join(dir, "second.lua")
	require.NoError(t, os.WriteFile(first, []byte(`
		ctx = llvm.Context.new()
		mod = llvm.Module.new("demo", ctx)
	`), 0o644))
	require.NoError(t, os.WriteFile(second, []byte(`
		local d = llvm.Type.getDoubleTy(ctx)
		local fn = mod:getOrInsertFunction("f", llvm.FunctionType.get(d, {}, false))
		assert(fn.module == mod)
		fn:addBasicBlock("body")
		fn:verify()
	`), 0o644))

	_, _, err := execute(t, "run", first)
	require.NoError(t, err)

	_, errOut, err := execute(t, "run", first, second)
	require.Error(t, err)
	assert.Contains(t, errOut, "second.lua: Error: verify:")
}

func TestDescribeCommand(t *testing.T) {
	out, _, err := execute(t, "describe")
	require.NoError(t, err)

	var m protobind.Manifest
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	names := make([]string, 0, len(m.Types))
	for _, ti := range m.Types {
		names = append(names, ti.Name)
	}
	assert.Equal(t, []string{"Context", "Type", "FunctionType", "Value", "Function", "BasicBlock", "Module", "IRBuilder"}, names)

	out, _, err = execute(t, "describe", "--schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"types"`)
}
