/*
Package logger 提供 GORM 到 Zap 的日志适配。
*/
package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expoadmin/infrastructure/persistence"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

type GormLoggerConfig struct {
	SlowThreshold             time.Duration
	IgnoreRecordNotFoundError bool
}

func DefaultGormLoggerConfig() *GormLoggerConfig {
	return &GormLoggerConfig{
		SlowThreshold:             200 * time.Millisecond,
		IgnoreRecordNotFoundError: true,
	}
}

// GormLoggerAdapter routes gorm's logger.Interface into the global zap logger.
type GormLoggerAdapter struct {
	logLevel gormlogger.LogLevel
	logger   *zap.Logger
	config   *GormLoggerConfig
}

func NewGormLoggerAdapter(logLevel gormlogger.LogLevel) *GormLoggerAdapter {
	return NewGormLoggerAdapterWithConfig(logLevel, DefaultGormLoggerConfig())
}

func NewGormLoggerAdapterWithConfig(logLevel gormlogger.LogLevel, config *GormLoggerConfig) *GormLoggerAdapter {
	if config == nil {
		config = DefaultGormLoggerConfig()
	}
	return &GormLoggerAdapter{logLevel: logLevel, logger: Get().Named("gorm"), config: config}
}

// ParseGormLevel maps the database.log_level setting onto gorm levels.
func ParseGormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug", "info":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	case "silent":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}

func (l *GormLoggerAdapter) LogMode(logLevel gormlogger.LogLevel) gormlogger.Interface {
	return &GormLoggerAdapter{logLevel: logLevel, logger: l.logger, config: l.config}
}

func (l *GormLoggerAdapter) loggerFor(ctx context.Context) *zap.Logger {
	if requestID := persistence.RequestIDFromContext(ctx); requestID != "" {
		return l.logger.With(zap.String("request_id", requestID))
	}
	return l.logger
}

func (l *GormLoggerAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.logLevel >= gormlogger.Info {
		l.loggerFor(ctx).Info(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLoggerAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.logLevel >= gormlogger.Warn {
		l.loggerFor(ctx).Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLoggerAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.logLevel >= gormlogger.Error {
		l.loggerFor(ctx).Error(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}

	sql, rows := fc()
	elapsed := time.Since(begin)
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}
	log := l.loggerFor(ctx)

	switch {
	case err != nil && l.logLevel >= gormlogger.Error:
		if errors.Is(err, gormlogger.ErrRecordNotFound) && l.config.IgnoreRecordNotFoundError {
			return
		}
		log.Error("Database operation failed", append(fields, zap.Error(err))...)
	case l.config.SlowThreshold != 0 && elapsed > l.config.SlowThreshold && l.logLevel >= gormlogger.Warn:
		log.Warn("Slow SQL query", append(fields, zap.Duration("threshold", l.config.SlowThreshold))...)
	case l.logLevel >= gormlogger.Info:
		log.Debug("SQL query executed", fields...)
	}
}

var _ gormlogger.Interface = (*GormLoggerAdapter)(nil)
