package gormstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"expoadmin/domain/shared"
	"expoadmin/infrastructure/persistence"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// outboxEventPO Outbox event persistence object
type outboxEventPO struct {
	ID          string    `gorm:"primaryKey;size:64"`
	AggregateID string    `gorm:"size:64;index;not null"`
	EventType   string    `gorm:"size:100;index;not null"`
	Payload     string    `gorm:"type:text;not null"`
	Status      string    `gorm:"size:20;default:PENDING;not null;index"`
	RetryCount  int       `gorm:"default:0;not null"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (outboxEventPO) TableName() string {
	return "outbox_events"
}

func fromDomainEvent(event shared.DomainEvent) (*outboxEventPO, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &outboxEventPO{
		ID:          uuid.NewString(),
		AggregateID: event.GetAggregateID(),
		EventType:   event.EventName(),
		Payload:     string(payload),
		Status:      string(shared.OutboxPending),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (po *outboxEventPO) toEntry() *shared.OutboxEntry {
	return &shared.OutboxEntry{
		ID:          po.ID,
		AggregateID: po.AggregateID,
		EventType:   po.EventType,
		Payload:     po.Payload,
		Status:      shared.OutboxStatus(po.Status),
		RetryCount:  po.RetryCount,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
}

// OutboxRepository 事务性 outbox
type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// SaveEvent 在 UoW.Execute 内调用时复用其事务
func (r *OutboxRepository) SaveEvent(ctx context.Context, event shared.DomainEvent) (string, error) {
	if err := shared.ValidateEvent(event); err != nil {
		return "", fmt.Errorf("invalid domain event: %w", err)
	}
	po, err := fromDomainEvent(event)
	if err != nil {
		return "", fmt.Errorf("failed to convert domain event: %w", err)
	}
	if err := r.getDB(ctx).Create(po).Error; err != nil {
		return "", fmt.Errorf("failed to save event to outbox: %w", err)
	}
	return po.ID, nil
}

func (r *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	var pos []*outboxEventPO
	err := r.getDB(ctx).
		Where("status = ?", string(shared.OutboxPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}

	entries := make([]*shared.OutboxEntry, len(pos))
	for i, po := range pos {
		entries[i] = po.toEntry()
	}
	return entries, nil
}

// MarkEventProcessing 条件更新，防止多个 worker 并发处理同一事件
func (r *OutboxRepository) MarkEventProcessing(ctx context.Context, eventID string) error {
	result := r.getDB(ctx).Model(&outboxEventPO{}).
		Where("id = ? AND status = ?", eventID, string(shared.OutboxPending)).
		Updates(map[string]interface{}{
			"status":     string(shared.OutboxProcessing),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", shared.ErrEventClaimed, eventID)
	}
	return nil
}

func (r *OutboxRepository) MarkEventPublished(ctx context.Context, eventID string) error {
	result := r.getDB(ctx).Model(&outboxEventPO{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"status":     string(shared.OutboxPublished),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event not found: %s", eventID)
	}
	return nil
}

// MarkEventFailed 重试次数未达上限时回到 PENDING
func (r *OutboxRepository) MarkEventFailed(ctx context.Context, eventID string, maxRetries int) error {
	db := r.getDB(ctx)

	var po outboxEventPO
	if err := db.First(&po, "id = ?", eventID).Error; err != nil {
		return fmt.Errorf("failed to find event: %w", err)
	}

	retries := po.RetryCount + 1
	status := string(shared.OutboxFailed)
	if retries < maxRetries {
		status = string(shared.OutboxPending)
	}

	return db.Model(&outboxEventPO{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"status":      status,
			"retry_count": retries,
			"updated_at":  time.Now().UTC(),
		}).Error
}

var _ shared.OutboxRepository = (*OutboxRepository)(nil)
