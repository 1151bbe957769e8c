package resource

import (
	"context"
	"sync"
)

// Warning 成功操作附带的非致命诊断
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	WarningRevalidation = "REVALIDATION_FAILED"
	WarningMediaCleanup = "MEDIA_CLEANUP_FAILED"
)

// Diagnostics 收集一次调用中产生的 Warning。Client 的签名保持 (value, error)，
// 需要诊断的调用方通过 WithDiagnostics 在 ctx 中挂载收集器。
type Diagnostics struct {
	mu       sync.Mutex
	warnings []Warning
}

type diagnosticsKey struct{}

func WithDiagnostics(ctx context.Context) (context.Context, *Diagnostics) {
	d := &Diagnostics{}
	return context.WithValue(ctx, diagnosticsKey{}, d), d
}

func DiagnosticsFromContext(ctx context.Context) *Diagnostics {
	d, _ := ctx.Value(diagnosticsKey{}).(*Diagnostics)
	return d
}

// Warn 记录到 ctx 中的收集器；没有收集器时丢弃
func Warn(ctx context.Context, code, message string) {
	DiagnosticsFromContext(ctx).Add(Warning{Code: code, Message: message})
}

func (d *Diagnostics) Add(w ...Warning) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.warnings = append(d.warnings, w...)
	d.mu.Unlock()
}

func (d *Diagnostics) Warnings() []Warning {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Warning, len(d.warnings))
	copy(out, d.warnings)
	return out
}
