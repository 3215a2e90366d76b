// Package zaplog adapts go.uber.org/zap to the domain Logger interface.
package zaplog

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ochairo/appshortcuts/internal/domain/interfaces"
)

// Config selects the level and encoding of a logger
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// Logger implements interfaces.Logger on top of a zap logger
type Logger struct {
	zl *zap.Logger
}

// New builds a zap-backed logger. JSON production config is the default;
// the console format uses zap's development encoder.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if cfg.Level == "" {
		level, err = zapcore.InfoLevel, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	switch cfg.Format {
	case "", "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	zl, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &Logger{zl: zl}, nil
}

// Wrap adapts an existing zap logger
func Wrap(zl *zap.Logger) *Logger {
	return &Logger{zl: zl}
}

// Debug implements interfaces.Logger
func (l *Logger) Debug(msg string, fields ...interfaces.Field) {
	l.zl.Debug(msg, toZap(fields)...)
}

// Info implements interfaces.Logger
func (l *Logger) Info(msg string, fields ...interfaces.Field) {
	l.zl.Info(msg, toZap(fields)...)
}

// Warn implements interfaces.Logger
func (l *Logger) Warn(msg string, fields ...interfaces.Field) {
	l.zl.Warn(msg, toZap(fields)...)
}

// Error implements interfaces.Logger
func (l *Logger) Error(msg string, fields ...interfaces.Field) {
	l.zl.Error(msg, toZap(fields)...)
}

// With implements interfaces.Logger
func (l *Logger) With(fields ...interfaces.Field) interfaces.Logger {
	return &Logger{zl: l.zl.With(toZap(fields)...)}
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func toZap(fields []interfaces.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
