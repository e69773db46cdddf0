package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
	Critical(message string, args ...any)
	BusinessError(message string, err error, args ...any)
	InternalError(message string, err error, args ...any)
	With(args ...any) Logger
	Sync() error
}

type zapLogger struct {
	base *zap.SugaredLogger
}

func NewFromEnv() Logger {
	env := normalizeValue(os.Getenv("ENV"))
	level := parseLevel(os.Getenv("LOG_LEVEL"), env)
	format := parseFormat(os.Getenv("LOG_FORMAT"))
	return New(os.Stdout, level, format)
}

func New(output io.Writer, level zapcore.Level, format string) Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch normalizeValue(format) {
	case "console":
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(output), level)
	return &zapLogger{base: zap.New(core, zap.AddStacktrace(zapcore.DPanicLevel)).Sugar()}
}

// Nop discards everything. Used by tests and by commands that run before
// the real logger is configured.
func Nop() Logger {
	return &zapLogger{base: zap.NewNop().Sugar()}
}

func (l *zapLogger) Debug(message string, args ...any) {
	l.base.Debugw(message, args...)
}

func (l *zapLogger) Info(message string, args ...any) {
	l.base.Infow(message, args...)
}

func (l *zapLogger) Warn(message string, args ...any) {
	l.base.Warnw(message, args...)
}

func (l *zapLogger) Error(message string, args ...any) {
	l.base.Errorw(message, args...)
}

func (l *zapLogger) Critical(message string, args ...any) {
	attrs := append([]any{"critical", true}, args...)
	l.base.Errorw(message, attrs...)
}

func (l *zapLogger) BusinessError(message string, err error, args ...any) {
	if err == nil {
		return
	}

	attrs := append([]any{"err", err}, args...)
	l.base.Warnw(message, attrs...)
}

func (l *zapLogger) InternalError(message string, err error, args ...any) {
	if err == nil {
		return
	}

	attrs := append([]any{"err", err}, args...)
	l.base.Errorw(message, attrs...)
}

func (l *zapLogger) With(args ...any) Logger {
	return &zapLogger{base: l.base.With(args...)}
}

func (l *zapLogger) Sync() error {
	return l.base.Sync()
}

func parseLevel(value string, env string) zapcore.Level {
	switch normalizeValue(value) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		if env == "development" {
			return zapcore.DebugLevel
		}
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error", "critical", "fatal":
		return zapcore.ErrorLevel
	default:
		if env == "development" {
			return zapcore.DebugLevel
		}
		return zapcore.InfoLevel
	}
}

func parseFormat(value string) string {
	switch normalizeValue(value) {
	case "json", "console":
		return normalizeValue(value)
	default:
		return "json"
	}
}

func normalizeValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
