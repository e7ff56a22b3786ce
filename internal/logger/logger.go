// Package logger wraps zap with category-scoped child loggers, redaction of
// sensitive payload fields, and a timing helper.
package logger

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a leveled, category-scoped logger. Child loggers inherit the
// parent's minimum level and redaction rules and prefix their category with
// the parent's (e.g., "Sync" + child "GitHub" → "Sync:GitHub").
type Logger struct {
	zl        *zap.Logger
	category  string
	debugMode bool
}

// New builds a Logger backed by a zap production or development config.
// level is one of debug, info, warn, error; unknown values keep zap's
// default. When debugMode is true, sensitive-field redaction is disabled.
func New(level string, pretty bool, debugMode bool) *Logger {
	var cfg zap.Config
	if pretty {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	if lvl := parseLevel(level); lvl != nil {
		cfg.Level = zap.NewAtomicLevelAt(*lvl)
	}

	base, err := cfg.Build(
		zap.AddStacktrace(zapcore.FatalLevel),
	)
	if err != nil {
		panic(err)
	}

	return &Logger{zl: base, debugMode: debugMode}
}

// FromZap wraps an existing zap logger. Tests use this with an observer core.
func FromZap(zl *zap.Logger, category string, debugMode bool) *Logger {
	return &Logger{zl: zl, category: category, debugMode: debugMode}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zap.NewNop()}
}

func parseLevel(lvl string) *zapcore.Level {
	switch lvl {
	case "debug":
		l := zapcore.DebugLevel
		return &l
	case "info":
		l := zapcore.InfoLevel
		return &l
	case "warn":
		l := zapcore.WarnLevel
		return &l
	case "error":
		l := zapcore.ErrorLevel
		return &l
	default:
		return nil
	}
}

// Child returns a scoped logger whose category is the parent's category
// joined with name by ":".
func (l *Logger) Child(name string) *Logger {
	category := name
	if l.category != "" {
		category = l.category + ":" + name
	}
	return &Logger{zl: l.zl, category: category, debugMode: l.debugMode}
}

// Category returns the logger's full category path.
func (l *Logger) Category() string {
	return l.category
}

func (l *Logger) log(level zapcore.Level, msg string, fields []zap.Field) {
	if !l.debugMode {
		fields = redactFields(fields)
	}
	if l.category != "" {
		fields = append([]zap.Field{zap.String("category", l.category)}, fields...)
	}
	if ce := l.zl.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.log(zapcore.DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.log(zapcore.InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.log(zapcore.WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.log(zapcore.ErrorLevel, msg, fields) }

// Timed runs fn, logging the elapsed wall-clock time in milliseconds on
// completion. On failure the error is logged and returned; timing is never
// silently swallowed.
func (l *Logger) Timed(msg string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	if err != nil {
		l.Error(msg+" failed",
			zap.Error(err),
			zap.Int64("elapsed_ms", elapsed.Milliseconds()))
		return err
	}

	l.Info(msg, zap.Int64("elapsed_ms", elapsed.Milliseconds()))
	return nil
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// Field is the structured log field type accepted by the logging methods.
type Field = zap.Field

// Field constructors (re-exported from zap for convenience)
// This allows other packages to use structured logging without importing zap directly.
func String(key, val string) zap.Field                 { return zap.String(key, val) }
func Int(key string, val int) zap.Field                { return zap.Int(key, val) }
func Bool(key string, val bool) zap.Field              { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) zap.Field { return zap.Duration(key, val) }
func Any(key string, val interface{}) zap.Field        { return zap.Any(key, val) }
func Error(err error) zap.Field                        { return zap.Error(err) }
