package cmd

import (
	"context"
	"fmt"

	"expoadmin/api/health"
	"expoadmin/config"
	"expoadmin/domain/content"
	"expoadmin/domain/shared"
	"expoadmin/infrastructure/persistence/gormstore"
	"expoadmin/infrastructure/persistence/memory"
	"expoadmin/infrastructure/persistence/retry"
	"expoadmin/infrastructure/revalidate"
	"expoadmin/infrastructure/storage"
	"expoadmin/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infrastructure API 与 worker 共用的持久化、存储与通知组件
type Infrastructure struct {
	DB       *gorm.DB // database.type=memory 时为 nil
	Repos    content.Repositories
	UoW      shared.UnitOfWork
	Outbox   shared.OutboxRepository
	Store    storage.ObjectStore
	Notifier revalidate.Notifier
}

func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	infra := &Infrastructure{Notifier: revalidate.New(cfg.Revalidation)}

	if cfg.Database.Type == "memory" {
		logger.Warn("Using in-memory persistence; data is lost on restart")
		ob := memory.NewOutbox()
		infra.Repos = memory.NewRepositories()
		infra.Outbox = ob
		infra.UoW = memory.NewUnitOfWork(ob)
	} else {
		db, err := gormstore.NewConfig(cfg.Database).Connect()
		if err != nil {
			return nil, err
		}
		if err := gormstore.Ping(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := gormstore.AutoMigrate(db, content.Models()...); err != nil {
				return nil, err
			}
		}
		infra.DB = db
		infra.Repos = gormstore.NewRepositories(db)
		infra.Outbox = gormstore.NewOutboxRepository(db)
		infra.UoW = gormstore.NewUnitOfWork(db, retry.FromAppConfig(cfg.Database.Retry))
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	infra.Store = store

	logger.Info("Infrastructure ready",
		zap.String("database", cfg.Database.Type),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("revalidation", cfg.Revalidation.Enabled),
	)
	return infra, nil
}

// Checks readiness 检查项
func (i *Infrastructure) Checks() map[string]health.Checker {
	checks := map[string]health.Checker{}
	if i.DB != nil {
		checks["database"] = func(ctx context.Context) error { return gormstore.Ping(ctx, i.DB) }
	}
	return checks
}

func (i *Infrastructure) Close() {
	if i.DB == nil {
		return
	}
	if sqlDB, err := i.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}
}
