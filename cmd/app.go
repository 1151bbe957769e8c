package cmd

import (
	"context"
	"errors"
	"net/http"

	"expoadmin/api"
	"expoadmin/config"
	"expoadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App HTTP 服务与进程内 outbox 调度
type App struct {
	config    *config.Config
	router    *api.Router
	server    *http.Server
	infra     *Infrastructure
	scheduler *Scheduler
}

// Run 阻塞直到 ctx 结束，然后在 shutdown_timeout 内优雅关闭
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server starting",
			zap.String("addr", a.server.Addr),
			zap.String("health", "/api/v1/health"))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		if a.scheduler != nil {
			a.scheduler.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	a.infra.Close()
	logger.Info("Server stopped")
	return err
}

// GetEngine 获取 gin 引擎（用于测试）
func (a *App) GetEngine() *gin.Engine {
	return a.router.GetEngine()
}
