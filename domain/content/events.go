package content

import "time"

const (
	EventRevalidate  = "content.revalidate"
	EventMediaRemove = "media.remove"
)

// RevalidateRequested 内容更新后通知外部缓存失效
type RevalidateRequested struct {
	Entity   string    `json:"entity"`
	EntityID string    `json:"entity_id"`
	Paths    []string  `json:"paths"`
	At       time.Time `json:"occurred_on"`
}

func NewRevalidateRequested(entity, id string, paths []string) *RevalidateRequested {
	return &RevalidateRequested{Entity: entity, EntityID: id, Paths: paths, At: time.Now()}
}

func (e *RevalidateRequested) EventName() string      { return EventRevalidate }
func (e *RevalidateRequested) OccurredOn() time.Time  { return e.At }
func (e *RevalidateRequested) GetAggregateID() string { return e.EntityID }

// MediaRemoveRequested 记录已删除但存储对象删除失败，稍后重试
type MediaRemoveRequested struct {
	Entity   string    `json:"entity"`
	EntityID string    `json:"entity_id"`
	Paths    []string  `json:"paths"`
	At       time.Time `json:"occurred_on"`
}

func NewMediaRemoveRequested(entity, id string, paths []string) *MediaRemoveRequested {
	return &MediaRemoveRequested{Entity: entity, EntityID: id, Paths: paths, At: time.Now()}
}

func (e *MediaRemoveRequested) EventName() string      { return EventMediaRemove }
func (e *MediaRemoveRequested) OccurredOn() time.Time  { return e.At }
func (e *MediaRemoveRequested) GetAggregateID() string { return e.EntityID }
