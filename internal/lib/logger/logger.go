package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

const (
	envDevelopment = "development"
	envTest        = "test"
)

const (
	LevelTrace = slog.LevelDebug - 4
	LevelFatal = slog.LevelError + 4
)

func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// ParseLevel maps LOG_LEVEL names onto slog levels. The second result is false
// for "silent".
func ParseLevel(level string) (slog.Level, bool) {
	switch level {
	case "trace":
		return LevelTrace, true
	case "debug":
		return slog.LevelDebug, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	case "fatal":
		return LevelFatal, true
	case "silent":
		return slog.LevelInfo, false
	default:
		return slog.LevelInfo, true
	}
}

// Setup builds the process logger: text output in development and test,
// JSON everywhere else.
func Setup(env, level string) *slog.Logger {
	return New(os.Stdout, env, level)
}

func New(w io.Writer, env, level string) *slog.Logger {
	lvl, enabled := ParseLevel(level)
	if !enabled {
		return slog.New(slog.DiscardHandler)
	}

	opts := &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceLevel}

	switch env {
	case envDevelopment, envTest:
		return slog.New(slog.NewTextHandler(w, opts))
	default:
		return slog.New(slog.NewJSONHandler(w, opts))
	}
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}

	switch a.Value.Any() {
	case LevelTrace:
		a.Value = slog.StringValue("TRACE")
	case LevelFatal:
		a.Value = slog.StringValue("FATAL")
	}

	return a
}

type ctxKey struct{}

func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext returns the request-scoped logger, or fallback when none is set.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}

	return fallback
}
