package gormstore

import (
	"context"
	"fmt"

	"expoadmin/domain/shared"
	"expoadmin/infrastructure/persistence"
	"expoadmin/infrastructure/persistence/retry"

	"gorm.io/gorm"
)

// UnitOfWork 开启事务并注入 context，提交失败或可重试错误按 retry.Config 重试
type UnitOfWork struct {
	db          *gorm.DB
	retryConfig retry.Config
}

func NewUnitOfWork(db *gorm.DB, retryConfig retry.Config) *UnitOfWork {
	return &UnitOfWork{db: db, retryConfig: retryConfig}
}

func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	// 已处于事务中则直接复用
	if persistence.TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	executeOnce := func(ctx context.Context) error {
		tx := u.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return fmt.Errorf("failed to begin transaction: %w", tx.Error)
		}

		if err := fn(persistence.ContextWithTx(ctx, tx)); err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit().Error; err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	}

	return retry.ExecuteWithRetry(ctx, u.retryConfig, executeOnce)
}

var _ shared.UnitOfWork = (*UnitOfWork)(nil)
