package templua

import (
	"fmt"
	"log/slog"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Tag delimiters of the template grammar.
const (
	openOutput  = "<<"
	closeOutput = ">>"
	openCode    = "<%"
	closeCode   = "%>"
)

// Compiler turns template source into a Lua chunk and executes it against
// an Environment. Compiled chunks are ephemeral: every render compiles and
// runs in a fresh interpreter state because the bindings differ per call.
type Compiler struct {
	logger *slog.Logger
}

// NewCompiler creates a Compiler and applies options.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render compiles source and runs it, returning the concatenated output.
// Malformed tag syntax, a chunk that fails to load, and a runtime error of
// the generated program all return an error wrapping ErrCompile; no partial
// output is returned. env may be nil, in which case output tags resolve
// only against the Lua globals.
func (c *Compiler) Render(source string, env *Environment) (string, error) {
	if source == "" {
		c.logger.Debug("empty template source, nothing to render")
		return "", nil
	}
	chunk, err := c.generate(source)
	if err != nil {
		return "", err
	}
	return c.execute(chunk, env)
}

// Check validates tag syntax and loads the generated chunk without
// executing it. Useful for validating a template directory offline.
func (c *Compiler) Check(source string) error {
	if source == "" {
		return nil
	}
	chunk, err := c.generate(source)
	if err != nil {
		return err
	}
	L := lua.NewState()
	defer L.Close()
	if _, err := L.LoadString(chunk); err != nil {
		return fmt.Errorf("%w: %v", ErrCompile, err)
	}
	return nil
}

// generate performs a single left-to-right scan over source, splicing
// literal runs and tags into a Lua chunk that accumulates output and
// returns the concatenation.
func (c *Compiler) generate(source string) (string, error) {
	var b strings.Builder
	b.WriteString("local __out = {}\n")
	pos := 0
	for {
		idx, marker := nextTag(source[pos:])
		if idx < 0 {
			writeLiteral(&b, source[pos:])
			break
		}
		writeLiteral(&b, source[pos:pos+idx])
		tagStart := pos + idx
		bodyStart := tagStart + len(marker)
		switch marker {
		case openOutput:
			end := strings.Index(source[bodyStart:], closeOutput)
			if end < 0 {
				return "", &TagError{Offset: tagStart, Marker: openOutput, Err: ErrUnterminatedTag}
			}
			b.WriteString("__out[#__out+1] = tostr(")
			b.WriteString(strings.TrimSpace(source[bodyStart : bodyStart+end]))
			b.WriteString(")\n")
			pos = bodyStart + end + len(closeOutput)
		case openCode:
			end := strings.Index(source[bodyStart:], closeCode)
			if end < 0 {
				return "", &TagError{Offset: tagStart, Marker: openCode, Err: ErrUnterminatedTag}
			}
			b.WriteString(source[bodyStart : bodyStart+end])
			b.WriteString("\n")
			pos = bodyStart + end + len(closeCode)
		}
	}
	b.WriteString("return table.concat(__out)\n")
	return b.String(), nil
}

// nextTag reports the offset of the earliest open marker in s and which
// marker it is, or -1 when s holds no more tags.
func nextTag(s string) (int, string) {
	out := strings.Index(s, openOutput)
	code := strings.Index(s, openCode)
	switch {
	case out < 0 && code < 0:
		return -1, ""
	case code < 0 || (out >= 0 && out < code):
		return out, openOutput
	default:
		return code, openCode
	}
}

// writeLiteral splices lit into the chunk as a long-bracket string. The
// bracket level grows until the closing delimiter cannot occur inside the
// literal, including a literal that itself ends with "]". The newline
// emitted right after the opening bracket is stripped by the Lua lexer,
// which keeps a literal that starts with a newline intact.
func writeLiteral(b *strings.Builder, lit string) {
	if lit == "" {
		return
	}
	level := 0
	for strings.Contains(lit+"]", "]"+strings.Repeat("=", level)+"]") {
		level++
	}
	fence := strings.Repeat("=", level)
	b.WriteString("__out[#__out+1] = [")
	b.WriteString(fence)
	b.WriteString("[\n")
	b.WriteString(lit)
	b.WriteString("]")
	b.WriteString(fence)
	b.WriteString("]\n")
}

// execute loads the chunk in a fresh interpreter, swaps its variable scope
// to the environment chain, and runs it.
func (c *Compiler) execute(chunk string, env *Environment) (string, error) {
	L := lua.NewState()
	defer L.Close()
	fn, err := L.LoadString(chunk)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompile, err)
	}
	fn.Env = scopeTable(L, env)
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompile, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsString(ret), nil
}

// scopeTable builds the chunk's variable scope: explicit bindings first,
// then the ambient scope, then the interpreter globals. The tostr helper
// output tags go through is installed alongside the bindings.
func scopeTable(L *lua.LState, env *Environment) *lua.LTable {
	ambient := L.NewTable()
	ambientMT := L.NewTable()
	ambientMT.RawSetString("__index", L.G.Global)
	L.SetMetatable(ambient, ambientMT)

	scope := L.NewTable()
	scopeMT := L.NewTable()
	scopeMT.RawSetString("__index", ambient)
	L.SetMetatable(scope, scopeMT)

	if env != nil {
		for k, v := range env.ambient {
			ambient.RawSetString(k, toLValue(L, v))
		}
		for k, v := range env.bindings {
			scope.RawSetString(k, toLValue(L, v))
		}
	}
	scope.RawSetString("tostr", L.NewFunction(stringifyOrEmpty))
	return scope
}

// stringifyOrEmpty converts its argument to a string, mapping nil to "".
func stringifyOrEmpty(L *lua.LState) int {
	v := L.Get(1)
	if v == lua.LNil {
		L.Push(lua.LString(""))
		return 1
	}
	L.Push(L.ToStringMeta(v))
	return 1
}
