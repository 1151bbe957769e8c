/*
Package memory 内存实现，用于开发模式 (database.type=memory) 与测试。

语义与 gormstore 保持一致：排序 created_at DESC, id DESC，返回深拷贝。
*/
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"expoadmin/domain/resource"
	"expoadmin/domain/shared"

	"github.com/google/uuid"
)

type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock 注入时钟
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator 注入 ID 生成器
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// Repository 实现 resource.Client[T]
type Repository[T any, P shared.Record[T]] struct {
	mu    sync.RWMutex
	items map[string]P
	opts  options
}

func NewRepository[T any, P shared.Record[T]](opts ...Option) *Repository[T, P] {
	o := options{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return &Repository[T, P]{items: make(map[string]P), opts: o}
}

func (r *Repository[T, P]) entity() string {
	var zero T
	return shared.EntityName(P(&zero))
}

func (r *Repository[T, P]) List(ctx context.Context) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.NewTransportError(r.entity(), "request cancelled", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneAll[T, P](r.sortedLocked())
}

func (r *Repository[T, P]) ListPage(ctx context.Context, page, pageSize int) ([]*T, int64, error) {
	if err := resource.CheckPage(page, pageSize); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, shared.NewTransportError(r.entity(), "request cancelled", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedLocked()
	total := int64(len(sorted))
	start := resource.Offset(page, pageSize)
	if start > len(sorted) {
		start = len(sorted)
	}
	end := start + pageSize
	if end > len(sorted) {
		end = len(sorted)
	}

	out, err := cloneAll[T, P](sorted[start:end])
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repository[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.NewTransportError(r.entity(), "request cancelled", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, shared.NewNotFoundError(r.entity())
	}
	return cloneOne[T, P](item)
}

func (r *Repository[T, P]) Create(ctx context.Context, fields resource.Fields) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.NewTransportError(r.entity(), "request cancelled", err)
	}
	item, err := resource.Build[T, P](fields)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.opts.now().UTC()
	meta := item.Meta()
	meta.ID = r.opts.newID()
	meta.CreatedAt = now
	meta.UpdatedAt = now
	r.items[meta.ID] = item
	return cloneOne[T, P](item)
}

func (r *Repository[T, P]) Update(ctx context.Context, id string, fields resource.Fields) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.NewTransportError(r.entity(), "request cancelled", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok {
		return nil, shared.NewNotFoundError(r.entity())
	}
	next, err := resource.Apply[T, P](current, fields)
	if err != nil {
		return nil, err
	}
	next.Meta().UpdatedAt = r.opts.now().UTC()
	r.items[id] = next
	return cloneOne[T, P](next)
}

func (r *Repository[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, shared.NewTransportError(r.entity(), "request cancelled", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false, shared.NewNotFoundError(r.entity())
	}
	delete(r.items, id)
	return true, nil
}

// Len 当前记录数
func (r *Repository[T, P]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *Repository[T, P]) sortedLocked() []P {
	out := make([]P, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Meta(), out[j].Meta()
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out
}

// clone 通过 JSON 深拷贝，调用方拿到的值与内部状态互不影响
func clone[T any, P shared.Record[T]](src P) (P, error) {
	data, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("copy %s: %w", shared.EntityName(src), err)
	}
	dst := P(new(T))
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, fmt.Errorf("copy %s: %w", shared.EntityName(src), err)
	}
	*dst.Meta() = *src.Meta()
	return dst, nil
}

func cloneAll[T any, P shared.Record[T]](src []P) ([]*T, error) {
	out := make([]*T, 0, len(src))
	for _, item := range src {
		c, err := clone[T, P](item)
		if err != nil {
			return nil, err
		}
		out = append(out, (*T)(c))
	}
	return out, nil
}

func cloneOne[T any, P shared.Record[T]](src P) (*T, error) {
	c, err := clone[T, P](src)
	if err != nil {
		return nil, err
	}
	return (*T)(c), nil
}

