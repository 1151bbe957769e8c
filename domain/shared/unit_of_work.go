package shared

import (
	"context"
	"time"
)

// UnitOfWork 管理事务边界。fn 收到的 ctx 携带事务，仓储从中取出。
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// OutboxStatus outbox 事件状态
type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "PENDING"
	OutboxProcessing OutboxStatus = "PROCESSING"
	OutboxPublished  OutboxStatus = "PUBLISHED"
	OutboxFailed     OutboxStatus = "FAILED"
)

// OutboxEntry 已持久化的 outbox 事件
type OutboxEntry struct {
	ID          string
	AggregateID string
	EventType   string
	Payload     string
	Status      OutboxStatus
	RetryCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OutboxRepository 事务性 outbox。在 UnitOfWork.Execute 内调用 SaveEvent 时与业务写入同一事务。
type OutboxRepository interface {
	SaveEvent(ctx context.Context, event DomainEvent) (string, error)
	GetPendingEvents(ctx context.Context, limit int) ([]*OutboxEntry, error)
	MarkEventProcessing(ctx context.Context, eventID string) error
	MarkEventPublished(ctx context.Context, eventID string) error
	MarkEventFailed(ctx context.Context, eventID string, maxRetries int) error
}
