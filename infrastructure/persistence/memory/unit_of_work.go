package memory

import (
	"context"
	"sync"

	"expoadmin/domain/shared"
)

type batchKey struct{}

// batch 在 Execute 期间暂存 outbox 事件，fn 成功后才提交
type batch struct {
	entries []*shared.OutboxEntry
}

// UnitOfWork 串行执行业务函数。内存仓储的写入无法回滚，只有 outbox 事件具有事务语义。
type UnitOfWork struct {
	mu     sync.Mutex
	outbox *Outbox
}

func NewUnitOfWork(outbox *Outbox) *UnitOfWork {
	return &UnitOfWork{outbox: outbox}
}

func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	// 嵌套调用加入外层批次
	if batchFromContext(ctx) != nil {
		return fn(ctx)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	b := &batch{}
	if err := fn(context.WithValue(ctx, batchKey{}, b)); err != nil {
		return err
	}
	if u.outbox != nil {
		u.outbox.commit(b.entries)
	}
	return nil
}

func batchFromContext(ctx context.Context) *batch {
	b, _ := ctx.Value(batchKey{}).(*batch)
	return b
}

var _ shared.UnitOfWork = (*UnitOfWork)(nil)
