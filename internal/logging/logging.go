// Package logging configures zerolog loggers and carries them in contexts.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config captures logger options.
type Config struct {
	Level   string    // "debug", "info", ...; defaults to info
	Format  string    // "json" (default) or "console"
	Output  io.Writer // defaults to os.Stderr
	Service string    // attached to every entry when set
}

// New builds a logger from cfg. An unknown level falls back to info.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
			level = parsed
		}
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	builder := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.Service != "" {
		builder = builder.Str("service", cfg.Service)
	}
	return builder.Logger()
}

// ContextWithLogger returns a derived context that carries the provided logger.
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithContext(ctx)
}

// FromContext extracts a logger previously attached to the context. The
// second result is false when none was attached.
func FromContext(ctx context.Context) (zerolog.Logger, bool) {
	if ctx == nil {
		return zerolog.Nop(), false
	}
	logger := zerolog.Ctx(ctx)
	if logger == nil || logger.GetLevel() == zerolog.Disabled {
		return zerolog.Nop(), false
	}
	return *logger, true
}

// Component returns the context logger, or base when the context carries
// none, annotated with the component and operation.
func Component(ctx context.Context, base zerolog.Logger, component, operation string) zerolog.Logger {
	logger, ok := FromContext(ctx)
	if !ok {
		logger = base
	}
	builder := logger.With().Str("component", component)
	if operation != "" {
		builder = builder.Str("operation", operation)
	}
	return builder.Logger()
}
