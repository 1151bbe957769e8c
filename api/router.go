package api

import (
	"net/http"

	"expoadmin/api/middleware"
	"expoadmin/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registrar 控制器路由注册
type Registrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// Routes 按访问级别分组的控制器
type Routes struct {
	// Open 无需认证：健康检查、登录
	Open []Registrar
	// Public 网站公开入口，使用更严格的限流，挂载在 /api/v1/public
	Public []Registrar
	// Admin 需要 JWT
	Admin []Registrar
}

// Router Route configuration
type Router struct {
	engine   *gin.Engine
	config   *config.Config
	routes   Routes
	verifier middleware.TokenVerifier
	registry *prometheus.Registry
}

// NewRouter Create route configuration
func NewRouter(cfg *config.Config, routes Routes, verifier middleware.TokenVerifier) *Router {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.MaxMultipartMemory = 32 << 20

	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry)

	// 顺序：请求 ID 最先，恢复包住其后所有中间件
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware("/metrics", "/api/v1/health/live"))
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware("global", &cfg.Server.RateLimit))
	engine.Use(metrics.Middleware())

	return &Router{
		engine:   engine,
		config:   cfg,
		routes:   routes,
		verifier: verifier,
		registry: registry,
	}
}

// SetupRoutes Set up all routes
func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api/v1")
	{
		for _, ctrl := range r.routes.Open {
			ctrl.RegisterRoutes(apiGroup)
		}

		public := apiGroup.Group("/public", middleware.RateLimitMiddleware("public", &r.config.Server.PublicRateLimit))
		for _, ctrl := range r.routes.Public {
			ctrl.RegisterRoutes(public)
		}

		admin := apiGroup.Group("", middleware.JWTAuth(r.verifier))
		for _, ctrl := range r.routes.Admin {
			ctrl.RegisterRoutes(admin)
		}
	}

	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))

	if r.config.Storage.Driver == "local" && r.config.Storage.LocalDir != "" {
		r.engine.StaticFS("/uploads", http.Dir(r.config.Storage.LocalDir))
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
			"metrics": "/metrics",
		})
	})
}

// GetEngine Get Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
