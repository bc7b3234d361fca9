package templua

import "log/slog"

// CompilerOption configures a Compiler (functional options pattern).
type CompilerOption func(*Compiler)

// WithCompilerLogger sets the logger used for no-op and diagnostic logging.
func WithCompilerLogger(logger *slog.Logger) CompilerOption {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// BuilderOption configures an EnvironmentBuilder.
type BuilderOption func(*EnvironmentBuilder)

// WithAmbient sets the read-only ambient scope environments fall back to
// when a binding is missing.
func WithAmbient(ambient map[string]any) BuilderOption {
	return func(b *EnvironmentBuilder) {
		b.ambient = ambient
	}
}

// WithHeaderSource sets the function that supplies the reserved header
// template's source text. Returning fs.ErrNotExist means no header template
// exists and the Header binding is left empty.
func WithHeaderSource(source HeaderSource) BuilderOption {
	return func(b *EnvironmentBuilder) {
		b.header = source
	}
}

// WithBuilderLogger sets the builder's logger.
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *EnvironmentBuilder) {
		b.logger = logger
	}
}
