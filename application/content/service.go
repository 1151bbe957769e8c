/*
Package content 内容应用服务。

Service 包装单表 resource.Client：写入前清洗富文本；对需要缓存失效的实体，
在同一工作单元中写入 outbox 事件，提交后立即尝试投递。投递失败不影响写入结果，
以 resource.Warning 的形式返回给调用方，事件留给 worker 重试。
*/
package content

import (
	"context"
	"fmt"

	"expoadmin/domain/content"
	"expoadmin/domain/resource"
	"expoadmin/domain/shared"
	apperrors "expoadmin/pkg/errors"
	"expoadmin/pkg/logger"

	"go.uber.org/zap"
)

// Deliverer 立即投递已写入 outbox 的事件
type Deliverer interface {
	Deliver(ctx context.Context, eventID string, event shared.DomainEvent) error
}

// Dependencies 各 Service 共享的依赖，Outbox / Deliverer / Sanitize 均可为空
type Dependencies struct {
	UoW       shared.UnitOfWork
	Outbox    shared.OutboxRepository
	Deliverer Deliverer
	Sanitize  func(string) string
}

type directUoW struct{}

func (directUoW) Execute(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type queued struct {
	id    string
	event shared.DomainEvent
}

// Service 实现 resource.Client[T]
type Service[T any, P shared.Record[T]] struct {
	repo resource.Client[T]
	deps Dependencies
}

func NewService[T any, P shared.Record[T]](repo resource.Client[T], deps Dependencies) *Service[T, P] {
	if deps.UoW == nil {
		deps.UoW = directUoW{}
	}
	return &Service[T, P]{repo: repo, deps: deps}
}

func (s *Service[T, P]) entity() string {
	var zero T
	return shared.EntityName(P(&zero))
}

func (s *Service[T, P]) List(ctx context.Context) ([]*T, error) {
	return s.repo.List(ctx)
}

func (s *Service[T, P]) ListPage(ctx context.Context, page, pageSize int) ([]*T, int64, error) {
	return s.repo.ListPage(ctx, page, pageSize)
}

func (s *Service[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service[T, P]) Create(ctx context.Context, fields resource.Fields) (*T, error) {
	fields, err := s.sanitizeNew(fields)
	if err != nil {
		return nil, err
	}

	var created *T
	var pending []queued
	err = s.deps.UoW.Execute(ctx, func(ctx context.Context) error {
		item, err := s.repo.Create(ctx, fields)
		if err != nil {
			return err
		}
		created = item
		pending, err = s.enqueueRevalidate(ctx, P(item))
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Resource created",
		zap.String("entity", s.entity()),
		zap.String("id", P(created).Meta().ID),
	)
	s.deliver(ctx, pending)
	return created, nil
}

func (s *Service[T, P]) Update(ctx context.Context, id string, fields resource.Fields) (*T, error) {
	var updated *T
	var pending []queued
	err := s.deps.UoW.Execute(ctx, func(ctx context.Context) error {
		changes, err := s.sanitizeChanges(ctx, id, fields)
		if err != nil {
			return err
		}
		item, err := s.repo.Update(ctx, id, changes)
		if err != nil {
			return err
		}
		updated = item
		pending, err = s.enqueueRevalidate(ctx, P(item))
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Resource updated",
		zap.String("entity", s.entity()),
		zap.String("id", id),
	)
	s.deliver(ctx, pending)
	return updated, nil
}

func (s *Service[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	var ok bool
	var pending []queued
	err := s.deps.UoW.Execute(ctx, func(ctx context.Context) error {
		var current *T
		if s.revalidates() {
			item, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			current = item
		}
		deleted, err := s.repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		ok = deleted
		if current != nil {
			pending, err = s.enqueueRevalidate(ctx, P(current))
		}
		return err
	})
	if err != nil {
		return false, err
	}

	logger.FromContext(ctx).Info("Resource deleted",
		zap.String("entity", s.entity()),
		zap.String("id", id),
	)
	s.deliver(ctx, pending)
	return ok, nil
}

func (s *Service[T, P]) revalidates() bool {
	var zero T
	_, ok := any(P(&zero)).(shared.Revalidating)
	return ok && s.deps.Outbox != nil
}

func (s *Service[T, P]) richText() bool {
	var zero T
	_, ok := any(P(&zero)).(shared.RichText)
	return ok && s.deps.Sanitize != nil
}

// sanitizeNew 通过构造完整实体清洗富文本字段，返回去掉 id/时间戳的字段
func (s *Service[T, P]) sanitizeNew(fields resource.Fields) (resource.Fields, error) {
	if !s.richText() {
		return fields, nil
	}
	item, err := resource.Build[T, P](fields)
	if err != nil {
		return nil, err
	}
	return s.sanitized(item)
}

// sanitizeChanges 在事务内读取当前记录并合并，富文本实体以完整字段更新
func (s *Service[T, P]) sanitizeChanges(ctx context.Context, id string, fields resource.Fields) (resource.Fields, error) {
	if !s.richText() {
		return fields, nil
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := resource.Apply[T, P](P(current), fields)
	if err != nil {
		return nil, err
	}
	return s.sanitized(next)
}

func (s *Service[T, P]) sanitized(item P) (resource.Fields, error) {
	any(item).(shared.RichText).SanitizeRichText(s.deps.Sanitize)
	fields, err := resource.FieldsOf(item)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.entity(), err)
	}
	return fields.Without("id", "created_at", "updated_at"), nil
}

func (s *Service[T, P]) enqueueRevalidate(ctx context.Context, item P) ([]queued, error) {
	if !s.revalidates() {
		return nil, nil
	}
	paths := any(item).(shared.Revalidating).RevalidatePaths()
	if len(paths) == 0 {
		return nil, nil
	}
	event := content.NewRevalidateRequested(s.entity(), item.Meta().ID, paths)
	id, err := s.deps.Outbox.SaveEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("enqueue revalidation: %w", err)
	}
	return []queued{{id: id, event: event}}, nil
}

// deliver 提交后的立即投递，失败记为 Warning
func (s *Service[T, P]) deliver(ctx context.Context, pending []queued) {
	if s.deps.Deliverer == nil {
		return
	}
	for _, q := range pending {
		if err := s.deps.Deliverer.Deliver(ctx, q.id, q.event); err != nil {
			logger.FromContext(ctx).Warn("Cache revalidation failed, will retry",
				zap.String("entity", s.entity()),
				zap.String("event_id", q.id),
				zap.Error(err),
			)
			resource.Warn(ctx, resource.WarningRevalidation,
				"saved, but cache revalidation failed: "+apperrors.Describe(err))
		}
	}
}
