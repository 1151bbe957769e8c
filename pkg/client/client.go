/*
Package client expoadmin HTTP API 的 Go SDK。

Resource 实现 resource.Client[T]，Media 实现 application/resource.Media，
因此 application/resource 的 store 可以直接驱动远程后端。
响应中的 warnings 通过 resource.Warn 重新写入调用方 ctx 的诊断收集器。
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"expoadmin/domain/resource"
	"expoadmin/domain/shared"
	"expoadmin/infrastructure/persistence"
	"expoadmin/pkg/logger"

	"go.uber.org/zap"
)

const (
	apiPrefix       = "/api/v1"
	maxResponseSize = 32 << 20
	requestIDHeader = "X-Request-ID"
)

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New baseURL 为服务根地址，例如 http://localhost:8080
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimSuffix(u.String(), "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// envelope 服务端统一响应结构
type envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Error      string             `json:"error"`
	Message    string             `json:"message"`
	Field      string             `json:"field"`
	RequestID  string             `json:"request_id"`
	Warnings   []resource.Warning `json:"warnings"`
	Pagination *pagination        `json:"pagination"`
}

// Login 换取 token 并保存在客户端上
func (c *Client) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	var out struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	body := map[string]string{"username": username, "password": password}
	if _, err := c.doJSON(ctx, "auth", http.MethodPost, "/auth/login", body, &out); err != nil {
		return "", time.Time{}, err
	}
	c.SetToken(out.Token)
	return out.Token, out.ExpiresAt, nil
}

func (c *Client) doJSON(ctx context.Context, entity, method, path string, in, out any) (*envelope, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, shared.NewValidationError(entity, "", "request body is not serializable")
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, entity, method, path, body, "application/json", out)
}

func (c *Client) do(ctx context.Context, entity, method, path string, body io.Reader, contentType string, out any) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return nil, shared.NewTransportError(entity, "invalid request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := persistence.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, shared.NewTransportError(entity, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, shared.NewTransportError(entity, "failed to read response", err)
	}
	logger.FromContext(ctx).Debug("API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, shared.NewTransportError(entity,
			fmt.Sprintf("malformed response (status %d)", resp.StatusCode), err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return nil, errorFor(entity, resp.StatusCode, &env)
	}

	for _, w := range env.Warnings {
		resource.Warn(ctx, w.Code, w.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, shared.NewTransportError(entity, "unexpected response data", err)
		}
	}
	return &env, nil
}

// errorFor 错误码优先，缺省时按状态码归类
func errorFor(entity string, status int, env *envelope) error {
	sentinel := shared.ErrTransport
	switch env.Error {
	case "VALIDATION_ERROR", "BAD_REQUEST":
		sentinel = shared.ErrInvalidInput
	case "NOT_FOUND":
		sentinel = shared.ErrNotFound
	case "CONFLICT":
		sentinel = shared.ErrConflict
	case "UNAUTHORIZED":
		sentinel = shared.ErrUnauthorized
	case "UPLOAD_ERROR":
		sentinel = shared.ErrUpload
	default:
		switch {
		case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
			sentinel = shared.ErrInvalidInput
		case status == http.StatusNotFound:
			sentinel = shared.ErrNotFound
		case status == http.StatusConflict:
			sentinel = shared.ErrConflict
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			sentinel = shared.ErrUnauthorized
		}
	}

	msg := env.Message
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &shared.DomainError{
		Err:     sentinel,
		Entity:  entity,
		Message: msg,
		Field:   env.Field,
	}
}
