package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

// 错误码
const (
	CodeNotFound        = "NOT_FOUND"
	CodeDuplicateName   = "DUPLICATE_NAME"
	CodeInvalidName     = "INVALID_NAME"
	CodeValidation      = "VALIDATION_ERROR"
	CodeDuplicateValue  = "DUPLICATE_VALUE"
	CodeAlreadyResolved = "ALREADY_RESOLVED"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeRateLimited     = "RATE_LIMITED"
	CodeJobRunning      = "JOB_RUNNING"
	CodeInternal        = "INTERNAL_ERROR"
)

// BusinessError 业务错误结构
type BusinessError struct {
	Code    string
	Status  int
	Message string
	Details []ErrorDetail
	cause   error
}

// ErrorDetail 错误详情（字段级）
type ErrorDetail struct {
	Path string
	Info string
}

// Error 实现 error 接口
func (e *BusinessError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap 支持 errors.Is / errors.As
func (e *BusinessError) Unwrap() error {
	return e.cause
}

// NewBusinessError 创建业务错误
func NewBusinessError(code string, status int, message string) *BusinessError {
	return &BusinessError{
		Code:    code,
		Status:  status,
		Message: message,
	}
}

// NotFound 资源不存在
func NotFound(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(CodeNotFound, http.StatusNotFound, fmt.Sprintf(format, args...))
}

// DuplicateName 名称冲突
func DuplicateName(kind, name string) *BusinessError {
	return NewBusinessError(CodeDuplicateName, http.StatusConflict, fmt.Sprintf("%s with name '%s' already exists", kind, name))
}

// InvalidName 名称格式不合法
func InvalidName(name, reason string) *BusinessError {
	e := NewBusinessError(CodeInvalidName, http.StatusBadRequest, fmt.Sprintf("invalid name '%s': %s", name, reason))
	e.Details = []ErrorDetail{{Path: "name", Info: reason}}
	return e
}

// Validation 参数校验失败
func Validation(message string, details ...ErrorDetail) *BusinessError {
	e := NewBusinessError(CodeValidation, http.StatusBadRequest, message)
	e.Details = details
	return e
}

// DuplicateValue 严格模式下写入了不允许的重复值
func DuplicateValue(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(CodeDuplicateValue, http.StatusConflict, fmt.Sprintf(format, args...))
}

// AlreadyResolved 告警已处理
func AlreadyResolved(id string) *BusinessError {
	return NewBusinessError(CodeAlreadyResolved, http.StatusBadRequest, fmt.Sprintf("warning %s is already resolved", id))
}

// Unauthorized 未认证
func Unauthorized(message string) *BusinessError {
	return NewBusinessError(CodeUnauthorized, http.StatusUnauthorized, message)
}

// Forbidden 无权限
func Forbidden(message string) *BusinessError {
	return NewBusinessError(CodeForbidden, http.StatusForbidden, message)
}

// RateLimited 限流
func RateLimited() *BusinessError {
	return NewBusinessError(CodeRateLimited, http.StatusTooManyRequests, "rate limit exceeded")
}

// JobRunning 任务正在执行（本实例或其他实例）
func JobRunning(name string) *BusinessError {
	return NewBusinessError(CodeJobRunning, http.StatusConflict, fmt.Sprintf("job '%s' is already running", name))
}

// Internal 包装存储层等未预期错误
func Internal(err error) *BusinessError {
	e := NewBusinessError(CodeInternal, http.StatusInternalServerError, "internal error")
	e.cause = err
	return e
}

// From 将任意错误转换为业务错误，未知错误视为 INTERNAL_ERROR
func From(err error) *BusinessError {
	if err == nil {
		return nil
	}
	var be *BusinessError
	if errors.As(err, &be) {
		return be
	}
	return Internal(err)
}

// IsCode 判断错误码
func IsCode(err error, code string) bool {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
