package shared

import (
	"errors"
	"fmt"
	"time"
)

// ErrEventClaimed outbox 事件不存在或已被其他 worker 领取
var ErrEventClaimed = errors.New("event not found or already being processed")

// DomainEvent 写入 outbox 的事件，字段通过 JSON 序列化为 payload。
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	GetAggregateID() string
}

func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	if event.EventName() == "" {
		return fmt.Errorf("event name cannot be empty")
	}

	if event.GetAggregateID() == "" {
		return fmt.Errorf("aggregate ID cannot be empty")
	}

	if event.OccurredOn().IsZero() {
		return fmt.Errorf("occurred on time cannot be zero")
	}

	return nil
}
