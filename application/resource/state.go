/*
Package resource 资源视图状态容器。

每个 store 独占一份 ViewState，只在请求完成时修改；失败统一转换为可展示的字符串。
每次 fetch 携带递增的请求序号，非最新序号的结果被丢弃；Close 之后到达的结果同样丢弃。
*/
package resource

import (
	"context"
	"sync"

	"expoadmin/domain/resource"
	"expoadmin/domain/shared"
	"expoadmin/infrastructure/storage"
	apperrors "expoadmin/pkg/errors"
)

// ViewState {data, loading, error}。Warnings 为最近一次成功写操作的非致命诊断。
type ViewState[D any] struct {
	Data     D                  `json:"data"`
	Loading  bool               `json:"loading"`
	Error    string             `json:"error,omitempty"`
	Warnings []resource.Warning `json:"warnings,omitempty"`
}

// Media 上传边界，application/media 与 pkg/client 均实现
type Media interface {
	Upload(ctx context.Context, file storage.File, folder string) (storage.Object, error)
	DeleteByURL(ctx context.Context, url string) (bool, error)
}

type Option func(*options)

type options struct {
	media Media
}

func WithMedia(m Media) Option {
	return func(o *options) { o.media = m }
}

// core 两种 store 共用的状态、序号与订阅
type core[D any] struct {
	mu          sync.Mutex
	state       ViewState[D]
	token       uint64
	inflight    bool // 最新序号的 fetch 尚未返回
	closed      bool
	subscribers map[int]func(ViewState[D])
	nextSub     int
	media       Media
	copyData    func(D) D
}

func newCore[D any](copyData func(D) D, opts []Option) *core[D] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &core[D]{
		state:       ViewState[D]{Loading: true},
		subscribers: make(map[int]func(ViewState[D])),
		media:       o.media,
		copyData:    copyData,
	}
}

// State 当前状态快照
func (c *core[D]) State() ViewState[D] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe 每次状态变化后回调，返回取消函数
func (c *core[D]) Subscribe(fn func(ViewState[D])) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// Close 解除绑定，之后到达的结果全部丢弃
func (c *core[D]) Close() {
	c.mu.Lock()
	c.closed = true
	c.subscribers = make(map[int]func(ViewState[D]))
	c.mu.Unlock()
}

func (c *core[D]) snapshotLocked() ViewState[D] {
	s := c.state
	s.Data = c.copyData(c.state.Data)
	if c.state.Warnings != nil {
		s.Warnings = append([]resource.Warning(nil), c.state.Warnings...)
	}
	return s
}

// begin 开始一次 fetch：loading=true、清空错误，返回本次序号
func (c *core[D]) begin() (uint64, bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, false
	}
	c.token++
	token := c.token
	c.inflight = true
	c.state.Loading = true
	c.state.Error = ""
	c.publishLocked()
	return token, true
}

// invalidate 使在途请求失效
func (c *core[D]) invalidate() {
	c.mu.Lock()
	c.token++
	c.inflight = false
	c.mu.Unlock()
}

// finish 仅当 token 为最新且未关闭时应用 fn
func (c *core[D]) finish(token uint64, fn func(s *ViewState[D])) bool {
	c.mu.Lock()
	if c.closed || token != c.token {
		c.mu.Unlock()
		return false
	}
	fn(&c.state)
	c.inflight = false
	c.state.Loading = false
	c.publishLocked()
	return true
}

// mutate 写操作完成后修改状态；不受 fetch 序号影响
func (c *core[D]) mutate(fn func(s *ViewState[D])) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	fn(&c.state)
	c.publishLocked()
}

// fail 记录错误，保留已有数据。有 fetch 在途时 Loading 保持不变。
func (c *core[D]) fail(err error) {
	c.mutate(func(s *ViewState[D]) {
		s.Error = describe(err)
		c.settleLocked(s)
	})
}

// settleLocked 写操作结束时清除 Loading，除非仍有 fetch 在途
func (c *core[D]) settleLocked(s *ViewState[D]) {
	if !c.inflight {
		s.Loading = false
	}
}

// cloneItem 浅拷贝，store 内外不共享同一个 *T
func cloneItem[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// publishLocked 释放锁后通知订阅者
func (c *core[D]) publishLocked() {
	snapshot := c.snapshotLocked()
	subs := make([]func(ViewState[D]), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}

func (c *core[D]) uploadImage(ctx context.Context, file storage.File, folder string) (string, error) {
	if c.media == nil {
		err := shared.NewUploadError("media storage is not configured", nil)
		c.fail(err)
		return "", err
	}
	obj, err := c.media.Upload(ctx, file, folder)
	if err != nil {
		c.fail(err)
		return "", err
	}
	return obj.URL, nil
}

func (c *core[D]) deleteImage(ctx context.Context, url string) (bool, error) {
	if c.media == nil {
		err := shared.NewUploadError("media storage is not configured", nil)
		c.fail(err)
		return false, err
	}
	ok, err := c.media.DeleteByURL(ctx, url)
	if err != nil {
		c.fail(err)
		return false, err
	}
	return ok, nil
}

func describe(err error) string {
	if msg := apperrors.Describe(err); msg != "" {
		return msg
	}
	return apperrors.UnknownMessage
}
