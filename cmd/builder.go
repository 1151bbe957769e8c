package cmd

import (
	"context"
	"fmt"
	"net/http"

	"expoadmin/api"
	"expoadmin/api/auth"
	"expoadmin/api/calendar"
	"expoadmin/api/health"
	apimedia "expoadmin/api/media"
	"expoadmin/api/submission"
	appcontent "expoadmin/application/content"
	"expoadmin/application/media"
	"expoadmin/application/outbox"
	"expoadmin/config"
	"expoadmin/pkg/logger"
	"expoadmin/pkg/richtext"

	"go.uber.org/zap"
)

// AppBuilder builds an App with customizable components
type AppBuilder struct {
	cfg    *config.Config
	infra  *Infrastructure
	routes api.Routes
	worker bool
}

// NewBuilder creates a new AppBuilder
func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg, worker: cfg.Worker.Enabled}
}

// WithInfrastructure 使用已构造的基础设施（测试或共享进程）
func (b *AppBuilder) WithInfrastructure(infra *Infrastructure) *AppBuilder {
	b.infra = infra
	return b
}

// WithAdminController adds a JWT-gated controller
func (b *AppBuilder) WithAdminController(c api.Registrar) *AppBuilder {
	b.routes.Admin = append(b.routes.Admin, c)
	return b
}

// WithPublicController adds a controller under /api/v1/public
func (b *AppBuilder) WithPublicController(c api.Registrar) *AppBuilder {
	b.routes.Public = append(b.routes.Public, c)
	return b
}

// DisableWorker 不在 API 进程内调度 outbox（由 cmd/worker 独立运行）
func (b *AppBuilder) DisableWorker() *AppBuilder {
	b.worker = false
	return b
}

// Build creates the App instance
func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	logger.Info("Starting application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env))

	infra := b.infra
	if infra == nil {
		var err error
		if infra, err = NewInfrastructure(ctx, b.cfg); err != nil {
			return nil, err
		}
	}

	worker, err := outbox.NewWorker(infra.Outbox,
		outbox.NewDefaultDispatcher(infra.Notifier, infra.Store),
		b.cfg.Worker.BatchSize, b.cfg.Worker.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox worker: %w", err)
	}

	mediaService := media.NewApplicationService(infra.Store, b.cfg.Storage)
	catalog := appcontent.NewCatalog(infra.Repos, appcontent.Dependencies{
		UoW:       infra.UoW,
		Outbox:    infra.Outbox,
		Deliverer: worker,
		Sanitize:  richtext.NewSanitizer().Sanitize,
	}, mediaService)

	tokens, err := auth.NewTokenService(b.cfg.Auth)
	if err != nil {
		return nil, err
	}

	routes := api.Routes{
		Open: []api.Registrar{
			health.NewController(b.cfg, infra.Checks()),
			auth.NewController(b.cfg.Auth, tokens),
		},
		Public: append([]api.Registrar{submission.NewController(catalog.Submissions)}, b.routes.Public...),
		Admin: append(append(api.ContentControllers(catalog),
			apimedia.NewController(mediaService),
			calendar.NewController(),
		), b.routes.Admin...),
	}

	router := api.NewRouter(b.cfg, routes, tokens)
	router.SetupRoutes()

	app := &App{
		config: b.cfg,
		router: router,
		infra:  infra,
		server: &http.Server{
			Addr:         ":" + b.cfg.Server.Port,
			Handler:      router.GetEngine(),
			ReadTimeout:  b.cfg.Server.ReadTimeout,
			WriteTimeout: b.cfg.Server.WriteTimeout,
		},
	}

	if b.worker {
		if app.scheduler, err = NewScheduler(worker, b.cfg.Worker.Schedule); err != nil {
			return nil, fmt.Errorf("invalid worker.schedule %q: %w", b.cfg.Worker.Schedule, err)
		}
	}
	return app, nil
}
