/*
Package revalidate 通知外部站点使缓存失效。

失败返回 TransportError，由调用方决定是否作为非致命诊断处理。
*/
package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"expoadmin/config"
	"expoadmin/domain/shared"
	"expoadmin/pkg/logger"

	"go.uber.org/zap"
)

// SecretHeader 共享密钥请求头
const SecretHeader = "X-Revalidate-Secret"

type Notifier interface {
	Notify(ctx context.Context, paths []string) error
}

// NotifierFunc 函数适配
type NotifierFunc func(ctx context.Context, paths []string) error

func (f NotifierFunc) Notify(ctx context.Context, paths []string) error { return f(ctx, paths) }

// Noop 未启用时使用
type Noop struct{}

func (Noop) Notify(context.Context, []string) error { return nil }

// New 根据配置返回 HTTPNotifier 或 Noop
func New(cfg config.RevalidationConfig) Notifier {
	if !cfg.Enabled || cfg.URL == "" {
		return Noop{}
	}
	return NewHTTPNotifier(cfg.URL, cfg.Secret, cfg.Timeout)
}

type HTTPNotifier struct {
	url    string
	secret string
	client *http.Client
}

func NewHTTPNotifier(url, secret string, timeout time.Duration) *HTTPNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPNotifier{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: timeout},
	}
}

type request struct {
	Paths []string `json:"paths"`
}

// Notify POST {"paths": [...]}，非 2xx 视为失败
func (n *HTTPNotifier) Notify(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	body, err := json.Marshal(request{Paths: paths})
	if err != nil {
		return fmt.Errorf("encode revalidation request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return shared.NewTransportError("revalidation", "invalid revalidation url", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set(SecretHeader, n.secret)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return shared.NewTransportError("revalidation", "revalidation request failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return shared.NewTransportError("revalidation",
			fmt.Sprintf("revalidation endpoint returned %d", resp.StatusCode), nil)
	}

	logger.FromContext(ctx).Debug("Cache revalidated", zap.Strings("paths", paths))
	return nil
}
