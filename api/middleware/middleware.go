package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"expoadmin/api/response"
	"expoadmin/config"
	"expoadmin/infrastructure/persistence"
	apperrors "expoadmin/pkg/errors"
	"expoadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 64

// RequestIDMiddleware 复用调用方合法的 X-Request-ID（SDK 与 CLI 会透传），否则生成新的。
// 请求 ID 同时写入 request context，SQL 日志与 outbox 投递日志据此关联。
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.New().String()
		}

		c.Set(response.RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(persistence.ContextWithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

// LoggingMiddleware 访问日志。quiet 中的路径（/metrics 抓取、存活探针）不记录。
func LoggingMiddleware(quiet ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if subject := c.GetString(SubjectKey); subject != "" {
			fields = append(fields, zap.String("subject", subject))
		}
		if warnings := response.GetWarnings(c); len(warnings) > 0 {
			fields = append(fields, zap.Int("warnings", len(warnings)))
		}

		log := logger.WithRequestID(response.GetRequestID(c))
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// RecoveryMiddleware panic 转为 500 INTERNAL_ERROR 信封
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			logger.WithRequestID(response.GetRequestID(c)).Error("Panic recovered",
				zap.Any("panic", recovered),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Stack("stack"),
			)
			response.HandleAppError(c, apperrors.Internal(fmt.Sprintf("panic: %v", recovered)))
		}()

		c.Next()
	}
}

// CORSMiddleware 管理后台前端跨域访问；allow_origins 含 "*" 时回显请求来源
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(cfg.AllowOrigins))
	wildcard := false
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			wildcard = true
		}
		origins[o] = struct{}{}
	}
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		_, listed := origins[origin]
		if origin != "" && (wildcard || listed) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Expose-Headers", RequestIDHeader)
			if cfg.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// limiterIdleTTL 超过该时长未出现的 IP 在下次清扫时移除
const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端 IP 的令牌桶，空闲条目定期清扫
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(r float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(r),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow 消耗 ip 的一个令牌
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	now := rl.now()
	if now.Sub(rl.lastSweep) > limiterIdleTTL {
		for key, v := range rl.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(rl.visitors, key)
			}
		}
		rl.lastSweep = now
	}
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Len 当前跟踪的 IP 数
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// retryAfter 补充一个令牌所需秒数，向上取整
func (rl *RateLimiter) retryAfter() string {
	if rl.rate <= 0 {
		return "60"
	}
	return strconv.Itoa(int(math.Ceil(1 / float64(rl.rate))))
}

// RateLimitMiddleware 全局限流与公开表单接口限流共用，scope 只用于日志区分
func RateLimitMiddleware(scope string, cfg *config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return rateLimit(scope, NewRateLimiter(cfg.Rate, cfg.Burst))
}

func rateLimit(scope string, limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if limiter.Allow(ip) {
			c.Next()
			return
		}

		logger.WithRequestID(response.GetRequestID(c)).Warn("Rate limit exceeded",
			zap.String("scope", scope),
			zap.String("client_ip", ip),
		)
		c.Header("Retry-After", limiter.retryAfter())
		response.HandleAppError(c, apperrors.TooManyRequests("too many requests, please try again later"))
	}
}
