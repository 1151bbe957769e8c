package ctxutil

import (
	"context"

	"expoadmin/api/response"
	"expoadmin/domain/resource"
	"expoadmin/infrastructure/persistence"

	"github.com/gin-gonic/gin"
)

// WithRequestID 由 gin 请求派生应用层 ctx：携带请求 ID，并挂载诊断收集器供响应读取 warnings。
func WithRequestID(c *gin.Context) context.Context {
	ctx := persistence.ContextWithRequestID(c.Request.Context(), response.GetRequestID(c))
	ctx, diag := resource.WithDiagnostics(ctx)
	c.Set(response.DiagnosticsKey, diag)
	return ctx
}

func RequestIDFromContext(ctx context.Context) string {
	return persistence.RequestIDFromContext(ctx)
}
