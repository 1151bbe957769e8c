/*
Package outbox 投递 outbox 事件。

Dispatcher 按事件类型路由到处理器；Worker 批量拉取待处理事件并维护状态，
同时提供 Deliver 供写入后立即投递。
*/
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"expoadmin/domain/content"
	"expoadmin/infrastructure/revalidate"
	"expoadmin/infrastructure/storage"
	"expoadmin/pkg/logger"

	"go.uber.org/zap"
)

// Publisher 投递单个事件
type Publisher interface {
	Publish(ctx context.Context, eventType, payload string) error
}

// HandlerFunc 处理某一类事件的 payload
type HandlerFunc func(ctx context.Context, payload []byte) error

// ErrNoHandler 未注册的事件类型
var ErrNoHandler = errors.New("no handler registered for event type")

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

func (d *Dispatcher) Register(eventType string, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = h
}

func (d *Dispatcher) Publish(ctx context.Context, eventType, payload string) error {
	d.mu.RLock()
	h, ok := d.handlers[eventType]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, eventType)
	}
	return h(ctx, []byte(payload))
}

type pathsPayload struct {
	Paths []string `json:"paths"`
}

// RevalidateHandler content.revalidate -> Notifier
func RevalidateHandler(notifier revalidate.Notifier) HandlerFunc {
	return func(ctx context.Context, payload []byte) error {
		var p pathsPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode revalidate payload: %w", err)
		}
		return notifier.Notify(ctx, p.Paths)
	}
}

// MediaRemoveHandler media.remove -> ObjectStore.Remove，对象已不存在视为成功
func MediaRemoveHandler(store storage.ObjectStore) HandlerFunc {
	return func(ctx context.Context, payload []byte) error {
		var p pathsPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode media payload: %w", err)
		}
		var errs []error
		for _, path := range p.Paths {
			if _, err := store.Remove(ctx, path); err != nil {
				errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
				continue
			}
			logger.FromContext(ctx).Info("Orphaned object removed", zap.String("path", path))
		}
		return errors.Join(errs...)
	}
}

// NewDefaultDispatcher 注册内置事件处理器
func NewDefaultDispatcher(notifier revalidate.Notifier, store storage.ObjectStore) *Dispatcher {
	d := NewDispatcher()
	d.Register(content.EventRevalidate, RevalidateHandler(notifier))
	d.Register(content.EventMediaRemove, MediaRemoveHandler(store))
	return d
}
