package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"expoadmin/infrastructure/persistence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLoggerAdapterLevels(t *testing.T) {
	testCases := []struct {
		name      string
		level     gormlogger.LogLevel
		wantInfo  bool
		wantWarn  bool
		wantTrace bool
	}{
		{"silent", gormlogger.Silent, false, false, false},
		{"warn", gormlogger.Warn, false, true, false},
		{"info", gormlogger.Info, true, true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			restore := Replace(zap.New(core))
			defer restore()

			adapter := NewGormLoggerAdapter(tc.level)
			ctx := context.Background()
			adapter.Info(ctx, "info %d", 1)
			adapter.Warn(ctx, "warn %d", 2)
			adapter.Trace(ctx, time.Now(), func() (string, int64) {
				return "SELECT * FROM blog_posts", 1
			}, nil)

			if got := logs.FilterMessage("info 1").Len() == 1; got != tc.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tc.wantInfo)
			}
			if got := logs.FilterMessage("warn 2").Len() == 1; got != tc.wantWarn {
				t.Errorf("warn logged = %v, want %v", got, tc.wantWarn)
			}
			if got := logs.FilterMessage("SQL query executed").Len() == 1; got != tc.wantTrace {
				t.Errorf("trace logged = %v, want %v", got, tc.wantTrace)
			}
		})
	}
}

func TestGormLoggerAdapterTraceErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	adapter := NewGormLoggerAdapterWithConfig(gormlogger.Warn, &GormLoggerConfig{
		SlowThreshold:             time.Millisecond,
		IgnoreRecordNotFoundError: true,
	})
	ctx := persistence.ContextWithRequestID(context.Background(), "req-1")

	adapter.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT * FROM cities WHERE id = 'x'", 0
	}, gormlogger.ErrRecordNotFound)
	if logs.Len() != 0 {
		t.Fatalf("record not found should be ignored, got %d entries", logs.Len())
	}

	adapter.Trace(ctx, time.Now(), func() (string, int64) {
		return "INSERT INTO cities", 0
	}, errors.New("boom"))
	failed := logs.FilterMessage("Database operation failed").All()
	if len(failed) != 1 {
		t.Fatalf("expected one failure entry, got %d", len(failed))
	}
	if failed[0].ContextMap()["request_id"] != "req-1" {
		t.Error("request id should be propagated from context")
	}

	adapter.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT * FROM trade_shows", 3
	}, nil)
	if logs.FilterMessage("Slow SQL query").Len() != 1 {
		t.Error("slow query should be logged at warn level")
	}
}

func TestParseGormLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"debug":  gormlogger.Info,
		"info":   gormlogger.Info,
		"warn":   gormlogger.Warn,
		"error":  gormlogger.Error,
		"silent": gormlogger.Silent,
		"":       gormlogger.Warn,
	}
	for in, want := range cases {
		if got := ParseGormLevel(in); got != want {
			t.Errorf("ParseGormLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
