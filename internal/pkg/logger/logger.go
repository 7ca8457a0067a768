// Package logger exposes the process-wide structured logger: a sugared zap
// logger emitting JSON to stdout, teed into the OTEL logging bridge when
// telemetry is active. Call Init before any logging; repeated Init calls
// after the first successful one are no-ops.
package logger

import (
	"context"
	"os"
	"sync"

	"github.com/luccasmb/chainhook/internal/pkg/telemetry"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log      *zap.SugaredLogger
	initOnce sync.Once
)

type config struct {
	level string
}

// Option configures the logger at Init time.
type Option func(*config)

// WithLevel sets the minimum emitted level ("debug", "info", "warn",
// "error", "panic", "fatal"). Default: "info".
func WithLevel(l string) Option {
	return func(c *config) {
		c.level = l
	}
}

// Init builds the global logger. When telemetry.LoggerProvider() reports an
// active provider, log records are forwarded there as well as to stdout.
// Returns an error only for an unparseable level.
func Init(opts ...Option) error {
	cfg := config{level: "info"}
	for _, opt := range opts {
		opt(&cfg)
	}

	level, err := zapcore.ParseLevel(cfg.level)
	if err != nil {
		return err
	}

	initOnce.Do(func() {
		cores := []zapcore.Core{
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				level,
			),
		}

		if lp := telemetry.LoggerProvider(); lp != nil {
			cores = append(cores, otelzap.NewCore("", otelzap.WithLoggerProvider(lp)))
		}

		log = zap.New(zapcore.NewTee(cores...)).Sugar()
	})

	return nil
}

// Sync flushes buffered entries. Call it on shutdown.
func Sync() error {
	return log.Sync()
}

// Debug logs at debug level with alternating key/value context.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	log.Debugw(msg, keysAndValues...)
}

// Info logs at info level with alternating key/value context.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	log.Infow(msg, keysAndValues...)
}

// Warn logs at warn level with alternating key/value context.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	log.Warnw(msg, keysAndValues...)
}

// Error logs at error level with alternating key/value context.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	log.Errorw(msg, keysAndValues...)
}

// Panic logs at panic level and panics.
func Panic(ctx context.Context, msg string, keysAndValues ...any) {
	log.Panicw(msg, keysAndValues...)
}

// Fatal logs at fatal level and exits.
func Fatal(ctx context.Context, msg string, keysAndValues ...any) {
	log.Fatalw(msg, keysAndValues...)
}
