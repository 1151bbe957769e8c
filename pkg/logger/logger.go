/*
Package logger 提供项目统一日志能力。

全局 zap logger 在 Init 之前为 nil，所有导出函数都对 nil 安全。
*/
package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"expoadmin/config"
	"expoadmin/infrastructure/persistence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	log       *zap.Logger
	atomLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func Init(cfg *config.LogConfig, env string) error {
	atomLevel = zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		if env == "dev" || env == "development" {
			encoder = zapcore.NewConsoleEncoder(encoderConfig)
		} else {
			encoder = zapcore.NewJSONEncoder(encoderConfig)
		}
	}

	var writeSyncer zapcore.WriteSyncer
	switch cfg.Output {
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		writeSyncer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     7,
			Compress:   true,
		})
	default:
		writeSyncer = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, writeSyncer, atomLevel)
	log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

// Replace swaps the global logger, returning a func that restores the previous one.
// Tests use it with zaptest/observer.
func Replace(l *zap.Logger) func() {
	prev := log
	log = l
	return func() { log = prev }
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func Get() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

func UpdateLevel(level string) {
	atomLevel.SetLevel(parseLevel(level))
}

func Sync() error {
	if log == nil {
		return nil
	}
	if err := log.Sync(); err != nil {
		errStr := err.Error()
		if !strings.Contains(errStr, "inappropriate ioctl for device") &&
			!strings.Contains(errStr, "invalid argument") &&
			!strings.Contains(errStr, "bad file descriptor") {
			return err
		}
	}
	return nil
}

func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

func WithRequestID(requestID string) *zap.Logger {
	return Get().With(zap.String("request_id", requestID))
}

// FromContext returns a logger tagged with the request id carried by ctx, if any.
func FromContext(ctx context.Context) *zap.Logger {
	if id := persistence.RequestIDFromContext(ctx); id != "" {
		return WithRequestID(id)
	}
	return Get()
}

func Debug(msg string, fields ...zap.Field) {
	if log != nil {
		log.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...zap.Field) {
	if log != nil {
		log.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if log != nil {
		log.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if log != nil {
		log.Error(msg, fields...)
	}
}

func Fatal(msg string, fields ...zap.Field) {
	if log != nil {
		log.Fatal(msg, fields...)
	}
	os.Exit(1)
}
