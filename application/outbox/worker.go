package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"expoadmin/domain/shared"
	"expoadmin/pkg/logger"

	"go.uber.org/zap"
)

// Stats 单批处理结果
type Stats struct {
	Fetched   int
	Published int
	Failed    int
	Skipped   int
}

type Worker struct {
	repository shared.OutboxRepository
	publisher  Publisher
	batchSize  int
	maxRetries int
}

func NewWorker(repository shared.OutboxRepository, publisher Publisher, batchSize, maxRetries int) (*Worker, error) {
	if repository == nil {
		return nil, fmt.Errorf("outbox repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher is required")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if maxRetries <= 0 {
		return nil, fmt.Errorf("max retries must be positive")
	}

	return &Worker{
		repository: repository,
		publisher:  publisher,
		batchSize:  batchSize,
		maxRetries: maxRetries,
	}, nil
}

// Run 按固定间隔轮询，直到 ctx 结束
func (w *Worker) Run(ctx context.Context, pollInterval time.Duration) error {
	if pollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessBatch(ctx); err != nil {
				logger.Error("Outbox batch processing failed", zap.Error(err))
			}
		}
	}
}

func (w *Worker) ProcessBatch(ctx context.Context) (Stats, error) {
	var stats Stats
	events, err := w.repository.GetPendingEvents(ctx, w.batchSize)
	if err != nil {
		return stats, err
	}
	stats.Fetched = len(events)

	for _, event := range events {
		switch w.process(ctx, event.ID, event.EventType, event.Payload) {
		case outcomePublished:
			stats.Published++
		case outcomeFailed:
			stats.Failed++
		default:
			stats.Skipped++
		}
	}

	if stats.Fetched > 0 {
		logger.Info("Outbox batch processed",
			zap.Int("fetched", stats.Fetched),
			zap.Int("published", stats.Published),
			zap.Int("failed", stats.Failed),
			zap.Int("skipped", stats.Skipped),
		)
	}
	return stats, nil
}

// Deliver 立即投递刚写入的事件。失败时事件保持待重试状态并返回错误；
// 事件已被其他 worker 领取时返回 nil，其他领取错误原样返回。
func (w *Worker) Deliver(ctx context.Context, eventID string, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if err := w.repository.MarkEventProcessing(ctx, eventID); err != nil {
		if errors.Is(err, shared.ErrEventClaimed) {
			return nil
		}
		return fmt.Errorf("claim outbox event: %w", err)
	}
	if err := w.publisher.Publish(ctx, event.EventName(), string(payload)); err != nil {
		if failErr := w.repository.MarkEventFailed(ctx, eventID, w.maxRetries); failErr != nil {
			logger.Error("Failed to mark outbox event as failed",
				zap.String("event_id", eventID),
				zap.Error(failErr),
			)
		}
		return err
	}
	if err := w.repository.MarkEventPublished(ctx, eventID); err != nil {
		logger.Error("Failed to mark outbox event as published",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}
	return nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomePublished
	outcomeFailed
)

func (w *Worker) process(ctx context.Context, id, eventType, payload string) outcome {
	if err := w.repository.MarkEventProcessing(ctx, id); err != nil {
		logger.Warn("Skip outbox event due to lock contention",
			zap.String("event_id", id),
			zap.Error(err),
		)
		return outcomeSkipped
	}

	if err := w.publisher.Publish(ctx, eventType, payload); err != nil {
		logger.Warn("Outbox event delivery failed",
			zap.String("event_id", id),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		if failErr := w.repository.MarkEventFailed(ctx, id, w.maxRetries); failErr != nil {
			logger.Error("Failed to mark outbox event as failed",
				zap.String("event_id", id),
				zap.Error(failErr),
			)
		}
		return outcomeFailed
	}

	if err := w.repository.MarkEventPublished(ctx, id); err != nil {
		logger.Error("Failed to mark outbox event as published",
			zap.String("event_id", id),
			zap.Error(err),
		)
	}
	return outcomePublished
}
