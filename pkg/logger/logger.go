// Package logger is the service's log/slog setup: JSON in production, text
// elsewhere, and a per-request logger carried on the context.
//
//	log := logger.WithCtx(r.Context())
//	log.Info("basket updated", "product", id, "quantity", 2)
//	// → time=... level=INFO msg="basket updated" request_id=a1b2c3d4 product=3 quantity=2
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/diybuddy/projectbuddy/config"
)

// L is the process logger. Request code should prefer WithCtx.
var L *slog.Logger

var stderr io.Writer = os.Stderr

func init() {
	L = NewLevel(os.Stdout, config.AppEnv(), config.LogLevel())
	slog.SetDefault(L)
}

// New builds a logger for env: JSON at INFO in production, text at DEBUG
// everywhere else.
func New(w io.Writer, env string) *slog.Logger { return NewLevel(w, env, "") }

// NewLevel is New with an explicit level name ("debug", "info", "warn",
// "error"). An empty or unknown name keeps the env default.
func NewLevel(w io.Writer, env, level string) *slog.Logger {
	prod := env == "production" || env == "prod"

	lvl := slog.LevelDebug
	if prod {
		lvl = slog.LevelInfo
	}
	if level != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(strings.ToUpper(level))); err == nil {
			lvl = parsed
		}
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if prod {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Attach adds h as a second destination for L and the slog default.
func Attach(h slog.Handler) {
	L = slog.New(NewMultiHandler(L.Handler(), h))
	slog.SetDefault(L)
}

type ctxKey struct{}

// InjectLogger stores log on ctx for WithCtx to find.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// WithCtx returns the logger injected into ctx, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return L
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
