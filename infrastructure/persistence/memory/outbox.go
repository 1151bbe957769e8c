package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"expoadmin/domain/shared"

	"github.com/google/uuid"
)

// Outbox 内存 outbox，实现 shared.OutboxRepository
type Outbox struct {
	mu      sync.Mutex
	entries map[string]*shared.OutboxEntry
	seq     map[string]int64
	next    int64
}

func NewOutbox() *Outbox {
	return &Outbox{
		entries: make(map[string]*shared.OutboxEntry),
		seq:     make(map[string]int64),
	}
}

func (o *Outbox) SaveEvent(ctx context.Context, event shared.DomainEvent) (string, error) {
	if err := shared.ValidateEvent(event); err != nil {
		return "", fmt.Errorf("invalid domain event: %w", err)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to serialize event: %w", err)
	}

	now := time.Now()
	entry := &shared.OutboxEntry{
		ID:          uuid.NewString(),
		AggregateID: event.GetAggregateID(),
		EventType:   event.EventName(),
		Payload:     string(payload),
		Status:      shared.OutboxPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if b := batchFromContext(ctx); b != nil {
		b.entries = append(b.entries, entry)
		return entry.ID, nil
	}
	o.commit([]*shared.OutboxEntry{entry})
	return entry.ID, nil
}

func (o *Outbox) commit(entries []*shared.OutboxEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range entries {
		o.next++
		o.entries[e.ID] = e
		o.seq[e.ID] = o.next
	}
}

func (o *Outbox) GetPendingEvents(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var pending []*shared.OutboxEntry
	for _, e := range o.entries {
		if e.Status == shared.OutboxPending {
			pending = append(pending, e)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return o.seq[pending[i].ID] < o.seq[pending[j].ID]
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	out := make([]*shared.OutboxEntry, len(pending))
	for i, e := range pending {
		c := *e
		out[i] = &c
	}
	return out, nil
}

func (o *Outbox) MarkEventProcessing(ctx context.Context, eventID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entries[eventID]
	if !ok || e.Status != shared.OutboxPending {
		return fmt.Errorf("%w: %s", shared.ErrEventClaimed, eventID)
	}
	e.Status = shared.OutboxProcessing
	e.UpdatedAt = time.Now()
	return nil
}

func (o *Outbox) MarkEventPublished(ctx context.Context, eventID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entries[eventID]
	if !ok {
		return fmt.Errorf("event not found: %s", eventID)
	}
	e.Status = shared.OutboxPublished
	e.UpdatedAt = time.Now()
	return nil
}

func (o *Outbox) MarkEventFailed(ctx context.Context, eventID string, maxRetries int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entries[eventID]
	if !ok {
		return fmt.Errorf("failed to find event: %s", eventID)
	}
	e.RetryCount++
	e.Status = shared.OutboxFailed
	if e.RetryCount < maxRetries {
		e.Status = shared.OutboxPending
	}
	e.UpdatedAt = time.Now()
	return nil
}

// Entries 所有事件的快照，按写入顺序
func (o *Outbox) Entries() []shared.OutboxEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]shared.OutboxEntry, 0, len(o.entries))
	for _, e := range o.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return o.seq[out[i].ID] < o.seq[out[j].ID] })
	return out
}

var _ shared.OutboxRepository = (*Outbox)(nil)
