package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"expoadmin/domain/shared"
)

// ErrorCode 错误码
type ErrorCode string

const (
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"
	CodeTransport      ErrorCode = "TRANSPORT_ERROR"
	CodeUpload         ErrorCode = "UPLOAD_ERROR"
	CodeUnknown        ErrorCode = "UNKNOWN_ERROR"
)

// UnknownMessage 无法描述错误时展示给用户的文本
const UnknownMessage = "unknown error"

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode 返回对应的HTTP状态码
func (e *AppError) HTTPStatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequest:
		return http.StatusTooManyRequests
	case CodeTransport, CodeUpload:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message)
}

func TooManyRequests(message string) *AppError {
	return New(CodeTooManyRequest, message)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

// Is 检查是否为特定错误码
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FromDomainError 将领域错误映射为应用错误（基于哨兵错误，不做字符串匹配）
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	msg := err.Error()
	var de *shared.DomainError
	field := ""
	if errors.As(err, &de) {
		msg = de.Message
		field = de.Field
	}

	var code ErrorCode
	switch {
	case errors.Is(err, shared.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, shared.ErrInvalidInput):
		code = CodeValidation
	case errors.Is(err, shared.ErrConflict):
		code = CodeConflict
	case errors.Is(err, shared.ErrUnauthorized):
		code = CodeUnauthorized
	case errors.Is(err, shared.ErrUpload):
		code = CodeUpload
	case errors.Is(err, shared.ErrTransport),
		errors.Is(err, context.DeadlineExceeded):
		code = CodeTransport
	default:
		return Wrap(err, CodeInternal, "internal server error")
	}
	return &AppError{Code: code, Message: msg, Field: field, Err: err}
}

// Describe 返回可直接展示给用户的错误文本，空文本回退为 "unknown error"。
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	var de *shared.DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownMessage
}
