package cmd

import (
	"context"
	"runtime/debug"
	"time"

	"expoadmin/application/outbox"
	"expoadmin/infrastructure/persistence"
	"expoadmin/pkg/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler 按 cron 表达式触发 outbox 批处理
type Scheduler struct {
	cron   *cron.Cron
	worker *outbox.Worker
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler spec 使用标准 5 段 cron 或 @every 描述符
func NewScheduler(worker *outbox.Worker, spec string) (*Scheduler, error) {
	log := logger.Get().Named("cron")
	c := cron.New(cron.WithChain(
		recoverWrapper(log),
		cron.SkipIfStillRunning(cronLogger{log}),
	))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cron: c, worker: worker, ctx: ctx, cancel: cancel}
	if _, err := c.AddFunc(spec, s.runBatch); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) runBatch() {
	executionID := uuid.NewString()
	ctx := persistence.ContextWithRequestID(s.ctx, executionID)
	start := time.Now()

	stats, err := s.worker.ProcessBatch(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("Outbox batch failed", zap.Error(err))
		return
	}
	if stats.Fetched > 0 {
		logger.FromContext(ctx).Info("Outbox batch finished",
			zap.Int("fetched", stats.Fetched),
			zap.Int("published", stats.Published),
			zap.Int("failed", stats.Failed),
			zap.Int("skipped", stats.Skipped),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func (s *Scheduler) Start() {
	logger.Info("Outbox scheduler started")
	s.cron.Start()
}

// Stop 取消进行中的批次并等待其返回
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	logger.Info("Outbox scheduler stopped")
}

func recoverWrapper(log *zap.Logger) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error("Job panicked",
						zap.Any("panic", r),
						zap.String("stack_trace", string(debug.Stack())),
					)
				}
			}()
			j.Run()
		})
	}
}

// cronLogger cron.Logger -> zap
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
