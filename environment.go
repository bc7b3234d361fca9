package templua

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"strconv"
)

// HeaderKey is the environment binding that holds the rendered header text.
const HeaderKey = HeaderName

// Environment is the key/value context one render executes against.
// Lookups check the explicit bindings first and fall back to a read-only
// ambient scope; inside the interpreter the same chain continues into the
// Lua globals so templates can use the standard library.
type Environment struct {
	bindings map[string]any
	ambient  map[string]any
}

// NewEnvironment builds an environment over defensive copies of both maps.
func NewEnvironment(bindings, ambient map[string]any) *Environment {
	e := &Environment{
		bindings: maps.Clone(bindings),
		ambient:  maps.Clone(ambient),
	}
	if e.bindings == nil {
		e.bindings = make(map[string]any)
	}
	return e
}

// Set stores an explicit binding, shadowing any ambient value of that name.
func (e *Environment) Set(name string, value any) {
	e.bindings[name] = value
}

// Lookup resolves name against the bindings, then the ambient scope.
func (e *Environment) Lookup(name string) (any, bool) {
	if v, ok := e.bindings[name]; ok {
		return v, true
	}
	v, ok := e.ambient[name]
	return v, ok
}

// Stringify is the nil-safe string conversion output tags rely on:
// nil becomes the empty string, everything else a plain string form.
func (e *Environment) Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// HeaderSource supplies the reserved header template's source text.
// fs.ErrNotExist reports that no header template exists.
type HeaderSource func() (string, error)

// EnvironmentBuilder assembles the per-invocation environment: ambient
// values from the context provider plus the rendered header slot.
type EnvironmentBuilder struct {
	provider ContextProvider
	compiler *Compiler
	header   HeaderSource
	ambient  map[string]any
	logger   *slog.Logger
}

// NewEnvironmentBuilder creates a builder around a context provider and the
// compiler used to render the header template.
func NewEnvironmentBuilder(provider ContextProvider, compiler *Compiler, opts ...BuilderOption) *EnvironmentBuilder {
	b := &EnvironmentBuilder{
		provider: provider,
		compiler: compiler,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build asks the provider for the current context and derives the Header
// binding. There is no partial environment: a provider failure fails the
// build, and a header template that fails to render fails it too. A missing
// header template yields an empty Header binding, not an error.
func (b *EnvironmentBuilder) Build() (*Environment, error) {
	bindings, err := b.provider.CurrentContext()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContextUnavailable, err)
	}
	if bindings == nil {
		return nil, ErrContextUnavailable
	}
	env := NewEnvironment(bindings, b.ambient)
	header := ""
	if b.header != nil {
		src, err := b.header()
		switch {
		case errors.Is(err, fs.ErrNotExist):
			b.logger.Debug("no header template, leaving header slot empty")
		case err != nil:
			return nil, fmt.Errorf("%w: header template: %w", ErrScriptRead, err)
		default:
			header, err = b.compiler.Render(src, env)
			if err != nil {
				return nil, fmt.Errorf("header template: %w", err)
			}
		}
	}
	env.Set(HeaderKey, header)
	return env, nil
}
