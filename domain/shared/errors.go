/*
Package shared - 领域层共享错误定义

设计原则:
1. 领域层定义哨兵错误(sentinel errors)，用于 errors.Is() 类型安全判断
2. DomainError 在创建时捕获堆栈，但延迟格式化（按需打印）
3. 领域错误不包含 HTTP 状态码等传输层概念

堆栈捕获策略:
- 捕获时机：错误创建时（构造函数内）
- 格式化时机：日志打印时（Stack() 方法）
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ============================================================================
// 哨兵错误 (Sentinel Errors)
// ============================================================================

var (
	// ErrNotFound 资源未找到
	ErrNotFound = errors.New("not found")

	// ErrConflict 资源冲突（唯一约束冲突等）
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput 无效输入（后端拒绝字段）
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized 未授权
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransport 网络或后端不可达、响应格式错误
	ErrTransport = errors.New("transport error")

	// ErrUpload 对象存储上传/删除失败
	ErrUpload = errors.New("upload error")
)

// DomainError 领域错误 - 携带业务上下文和堆栈的结构化错误
type DomainError struct {
	// Err 底层哨兵错误，用于 errors.Is() 判断
	Err error

	// Entity 发生错误的实体名称（如 "blog_post", "city"）
	Entity string

	// Message 人类可读的错误描述
	Message string

	// Field 可选：发生错误的字段名（用于校验错误）
	Field string

	// Cause 可选：底层原因（驱动错误、网络错误等）
	Cause error

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap 同时暴露哨兵错误和底层原因
func (e *DomainError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// Stack 按需格式化堆栈
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack 捕获当前调用栈
// skip: 跳过的帧数（通常为 3：Callers, CaptureStack, NewXxxError）
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack 格式化堆栈帧为字符串切片，过滤 runtime 内部帧，最多返回 10 帧
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) > 10 {
			break
		}
	}
	return result
}

// ============================================================================
// 领域错误构造函数
// ============================================================================

// NewNotFoundError 创建"未找到"领域错误
func NewNotFoundError(entity string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: entity + " not found",
		stack:   CaptureStack(3),
	}
}

// NewConflictError 创建"冲突"领域错误
func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewValidationError 创建"校验失败"领域错误
func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

func NewUnauthorizedError(reason string) error {
	return &DomainError{
		Err:     ErrUnauthorized,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewTransportError 包装网络/后端错误
func NewTransportError(entity, message string, cause error) error {
	return &DomainError{
		Err:     ErrTransport,
		Entity:  entity,
		Message: message,
		Cause:   cause,
		stack:   CaptureStack(3),
	}
}

// NewUploadError 包装对象存储错误
func NewUploadError(message string, cause error) error {
	return &DomainError{
		Err:     ErrUpload,
		Entity:  "object",
		Message: message,
		Cause:   cause,
		stack:   CaptureStack(3),
	}
}

// Stacker 可提供堆栈的错误接口，API 层用于统一提取堆栈
type Stacker interface {
	Stack() []string
}
