package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"expoadmin/cmd"
	"expoadmin/config"
	"expoadmin/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if configPath != "" {
		if err := config.Watch(configPath, reloadLogLevel); err != nil {
			logger.Warn("Config hot reload disabled", zap.Error(err))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := cmd.NewBuilder(cfg).Build(ctx)
	if err != nil {
		logger.Fatal("Failed to build application", zap.Error(err))
	}
	if err := app.Run(ctx); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

// reloadLogLevel 配置文件变更后只热更新日志级别，其余字段需重启生效
func reloadLogLevel(cfg *config.Config, err error) {
	if err != nil {
		logger.Warn("Failed to reload config", zap.Error(err))
		return
	}
	logger.UpdateLevel(cfg.Log.Level)
	logger.Info("Log level reloaded", zap.String("level", cfg.Log.Level))
}
