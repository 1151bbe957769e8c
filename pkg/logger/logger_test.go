package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"expoadmin/config"
	"expoadmin/infrastructure/persistence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNilLoggerSafety(t *testing.T) {
	restore := Replace(nil)
	defer restore()

	Debug("test debug")
	Info("test info")
	Warn("test warn")
	Error("test error")

	if With(zap.String("key", "value")) == nil {
		t.Error("With() returned nil logger")
	}
	if WithRequestID("test-id") == nil {
		t.Error("WithRequestID() returned nil logger")
	}
	if FromContext(context.Background()) == nil {
		t.Error("FromContext() returned nil logger")
	}
}

func TestFromContextCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	ctx := persistence.ContextWithRequestID(context.Background(), "req-42")
	FromContext(ctx).Info("hello")

	entries := logs.FilterMessage("hello").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-42" {
		t.Errorf("request_id = %v, want req-42", got)
	}
}

func TestDynamicLogLevel(t *testing.T) {
	if err := Init(&config.LogConfig{Level: "debug", Output: "stdout"}, "development"); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	defer Sync()

	if !Get().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug should be enabled")
	}
	UpdateLevel("warn")
	if Get().Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled after UpdateLevel(warn)")
	}
	UpdateLevel("debug")
}

func TestFileOutput(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "logs", "test_file.log")

	err := Init(&config.LogConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: testFile,
	}, "production")
	if err != nil {
		t.Fatalf("Failed to initialize file logger: %v", err)
	}

	for i := 0; i < 10; i++ {
		Info("Log entry for test", zap.Int("entry", i))
	}
	_ = Sync()

	fileInfo, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("Log file not created: %v", err)
	}
	if fileInfo.Size() == 0 {
		t.Fatal("Log file is empty")
	}
}
