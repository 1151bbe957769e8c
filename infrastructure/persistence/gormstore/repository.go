/*
Package gormstore 基于 GORM 的持久化实现（MySQL / Postgres / SQLite）。

仓储从 context 中取事务（persistence.TxFromContext），在 UnitOfWork.Execute 内调用时
与 outbox 写入处于同一事务；单独调用时自行开启事务。
*/
package gormstore

import (
	"context"
	"errors"
	"time"

	"expoadmin/domain/resource"
	"expoadmin/domain/shared"
	"expoadmin/infrastructure/persistence"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const listOrder = "created_at DESC, id DESC"

// Repository 泛型单表仓储，实现 resource.Client[T]
type Repository[T any, P shared.Record[T]] struct {
	db     *gorm.DB
	entity string
}

func NewRepository[T any, P shared.Record[T]](db *gorm.DB) *Repository[T, P] {
	var zero T
	return &Repository[T, P]{db: db, entity: shared.EntityName(P(&zero))}
}

// getDB returns the transaction from context if available, otherwise the default db
func (r *Repository[T, P]) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// inTx 复用上下文中的事务，否则开启新事务
func (r *Repository[T, P]) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return fn(tx)
	}
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *Repository[T, P]) List(ctx context.Context) ([]*T, error) {
	var items []*T
	if err := r.getDB(ctx).Order(listOrder).Find(&items).Error; err != nil {
		return nil, r.translate(err)
	}
	return items, nil
}

func (r *Repository[T, P]) ListPage(ctx context.Context, page, pageSize int) ([]*T, int64, error) {
	if err := resource.CheckPage(page, pageSize); err != nil {
		return nil, 0, err
	}

	db := r.getDB(ctx)
	var total int64
	if err := db.Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, r.translate(err)
	}

	var items []*T
	err := db.Order(listOrder).
		Offset(resource.Offset(page, pageSize)).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, r.translate(err)
	}
	return items, total, nil
}

func (r *Repository[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	item := new(T)
	if err := r.getDB(ctx).First(item, "id = ?", id).Error; err != nil {
		return nil, r.translate(err)
	}
	return item, nil
}

func (r *Repository[T, P]) Create(ctx context.Context, fields resource.Fields) (*T, error) {
	item, err := resource.Build[T, P](fields)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	meta := item.Meta()
	meta.ID = uuid.NewString()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	if err := r.getDB(ctx).Create((*T)(item)).Error; err != nil {
		return nil, r.translate(err)
	}
	return (*T)(item), nil
}

func (r *Repository[T, P]) Update(ctx context.Context, id string, fields resource.Fields) (*T, error) {
	var result P
	err := r.inTx(ctx, func(tx *gorm.DB) error {
		current := P(new(T))
		if err := tx.First((*T)(current), "id = ?", id).Error; err != nil {
			return err
		}
		next, err := resource.Apply[T, P](current, fields)
		if err != nil {
			return err
		}
		next.Meta().UpdatedAt = time.Now().UTC()
		if err := tx.Save((*T)(next)).Error; err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, r.translate(err)
	}
	return (*T)(result), nil
}

func (r *Repository[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	res := r.getDB(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return false, r.translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, shared.NewNotFoundError(r.entity)
	}
	return true, nil
}

// translate 驱动错误映射为领域错误
func (r *Repository[T, P]) translate(err error) error {
	var de *shared.DomainError
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError(r.entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewConflictError(r.entity, r.entity+" already exists")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return shared.NewTransportError(r.entity, "database request cancelled", err)
	default:
		return shared.NewTransportError(r.entity, "database error", err)
	}
}
