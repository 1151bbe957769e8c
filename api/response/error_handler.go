/*
Package response - API 层统一响应处理

错误响应不暴露内部细节，内部错误统一返回 "internal server error"，真实错误只记录日志。
所有响应携带 RequestID；写操作产生的非致命诊断放在 warnings 中。

	成功: { success: true, data: {...}, message: "...", code: 200, request_id: "...", warnings: [...] }
	失败: { success: false, error: "ERROR_CODE", message: "用户可见消息", field: "...", code: 4xx/5xx, request_id: "..." }
*/
package response

import (
	stdErrors "errors"
	"net/http"
	"runtime"

	"expoadmin/domain/resource"
	"expoadmin/domain/shared"
	"expoadmin/pkg/errors"
	"expoadmin/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

func GetRequestID(c *gin.Context) string {
	return getRequestID(c)
}

// GetWarnings 本次请求收集到的非致命诊断
func GetWarnings(c *gin.Context) []resource.Warning {
	return getWarnings(c)
}

func getWarnings(c *gin.Context) []resource.Warning {
	if v, exists := c.Get(DiagnosticsKey); exists {
		if d, ok := v.(*resource.Diagnostics); ok {
			return d.Warnings()
		}
	}
	return nil
}

func captureStack(skip int) []string {
	var pcs [16]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		frame, more := frames.Next()
		if frame.Function != "" {
			stack = append(stack, frame.Function)
		}
		if !more {
			break
		}
	}
	return stack
}

// HandleError 处理参数绑定等框架层错误。
func HandleError(c *gin.Context, err error, message string, code int) {
	requestID := getRequestID(c)

	logger.Warn(message,
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Int("status", code),
		zap.Error(err))

	c.AbortWithStatusJSON(code, &Response{
		Success:   false,
		Error:     string(errors.CodeBadRequest),
		Message:   message,
		Code:      code,
		RequestID: requestID,
	})
}

// HandleAppError 按应用错误码自动映射 HTTP 状态码。
func HandleAppError(c *gin.Context, err error) {
	requestID := getRequestID(c)
	appErr := errors.FromDomainError(err)
	httpStatus := appErr.HTTPStatusCode()

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("error_code", string(appErr.Code)),
		zap.Int("http_status", httpStatus),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}

	// 4xx 属于调用方问题，不记录堆栈
	if httpStatus >= http.StatusInternalServerError {
		fields = append(fields, zap.Strings("stack", extractStack(err)))
		logger.Error(appErr.Message, fields...)
	} else {
		logger.Warn(appErr.Message, fields...)
	}

	userMessage := appErr.Message
	if appErr.Code == errors.CodeInternal {
		userMessage = "internal server error"
	}

	c.AbortWithStatusJSON(httpStatus, &Response{
		Success:   false,
		Error:     string(appErr.Code),
		Message:   userMessage,
		Field:     appErr.Field,
		Code:      httpStatus,
		RequestID: requestID,
	})
}

func extractStack(err error) []string {
	var stacker shared.Stacker
	if stdErrors.As(err, &stacker) {
		if stack := stacker.Stack(); len(stack) > 0 {
			return stack
		}
	}
	return captureStack(4)
}
