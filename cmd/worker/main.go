package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"expoadmin/application/outbox"
	"expoadmin/cmd"
	"expoadmin/config"
	"expoadmin/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Worker startup failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var once bool
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.BoolVar(&once, "once", false, "Process a single batch and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	if !cfg.Worker.Enabled && !once {
		logger.Info("Outbox worker is disabled by config; exiting")
		return nil
	}
	if cfg.Database.Type == "memory" {
		return fmt.Errorf("outbox worker needs a shared database; database.type is memory")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	infra, err := cmd.NewInfrastructure(ctx, cfg)
	if err != nil {
		return err
	}
	defer infra.Close()

	worker, err := outbox.NewWorker(infra.Outbox,
		outbox.NewDefaultDispatcher(infra.Notifier, infra.Store),
		cfg.Worker.BatchSize, cfg.Worker.MaxRetries)
	if err != nil {
		return fmt.Errorf("failed to create outbox worker: %w", err)
	}

	if once {
		stats, err := worker.ProcessBatch(ctx)
		if err != nil {
			return err
		}
		logger.Info("Outbox batch processed",
			zap.Int("fetched", stats.Fetched),
			zap.Int("published", stats.Published),
			zap.Int("failed", stats.Failed))
		return nil
	}

	scheduler, err := cmd.NewScheduler(worker, cfg.Worker.Schedule)
	if err != nil {
		return fmt.Errorf("invalid worker.schedule %q: %w", cfg.Worker.Schedule, err)
	}

	logger.Info("Outbox worker started",
		zap.String("schedule", cfg.Worker.Schedule),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
	)
	scheduler.Start()
	<-ctx.Done()
	scheduler.Stop()

	logger.Info("Outbox worker stopped")
	return nil
}
