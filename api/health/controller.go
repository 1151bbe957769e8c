package health

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"expoadmin/config"

	"github.com/gin-gonic/gin"
)

const checkTimeout = 3 * time.Second

// Checker 依赖检查，返回 nil 表示健康
type Checker func(ctx context.Context) error

// Controller Health check controller
type Controller struct {
	config    *config.Config
	checks    map[string]Checker
	startTime time.Time
}

// NewController checks 可为空（例如内存存储）
func NewController(cfg *config.Config, checks map[string]Checker) *Controller {
	if checks == nil {
		checks = map[string]Checker{}
	}
	return &Controller{
		config:    cfg,
		checks:    checks,
		startTime: time.Now(),
	}
}

// RegisterRoutes Register health check routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", c.Health)
	router.GET("/health/live", c.Liveness)
	router.GET("/health/ready", c.Readiness)
}

// HealthResponse Health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Uptime    string           `json:"uptime"`
	Timestamp string           `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check Check item
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo System information
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
}

// Health Complete health check
func (c *Controller) Health(ctx *gin.Context) {
	checks, healthy := c.runChecks(ctx.Request.Context())
	overallStatus := "healthy"
	if !healthy {
		overallStatus = "unhealthy"
	}

	response := HealthResponse{
		Status:    overallStatus,
		Version:   c.config.App.Version,
		Uptime:    time.Since(c.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	// Only expose system info in development mode
	if c.config.IsDevelopment() {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		response.System = &SystemInfo{
			GoVersion:    runtime.Version(),
			NumCPU:       runtime.NumCPU(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     memStats.Alloc,
		}
	}

	statusCode := http.StatusOK
	if !healthy {
		statusCode = http.StatusServiceUnavailable
	}
	ctx.JSON(statusCode, response)
}

// Liveness Liveness check (Kubernetes liveness probe)
func (c *Controller) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness Readiness check (Kubernetes readiness probe)
func (c *Controller) Readiness(ctx *gin.Context) {
	checks, healthy := c.runChecks(ctx.Request.Context())
	if !healthy {
		var failed []string
		for name, check := range checks {
			if check.Status != "healthy" {
				failed = append(failed, name)
			}
		}
		sort.Strings(failed)
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"failed": failed,
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (c *Controller) runChecks(ctx context.Context) (map[string]Check, bool) {
	results := make(map[string]Check, len(c.checks))
	healthy := true
	for name, check := range c.checks {
		result := runCheck(ctx, check)
		if result.Status != "healthy" {
			healthy = false
		}
		results[name] = result
	}
	return results, healthy
}

func runCheck(ctx context.Context, check Checker) Check {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency.String(),
		}
	}
	return Check{
		Status:  "healthy",
		Latency: latency.String(),
	}
}
