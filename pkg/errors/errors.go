// Package errors 提供统一的错误定义
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 资源错误 (2xxx)
	CodeEssayNotFound   ErrorCode = "2001"
	CodeSessionNotFound ErrorCode = "2002"
	CodeDraftNotFound   ErrorCode = "2003"

	// 协作规则错误 (3xxx)
	CodeNotYourTurn   ErrorCode = "3001"
	CodeTooLong       ErrorCode = "3002"
	CodeAlreadyJoined ErrorCode = "3003"
	CodeFull          ErrorCode = "3004"
	CodeSelfJoin      ErrorCode = "3005"
	CodeNotJoinable   ErrorCode = "3006"
	CodeNotInProgress ErrorCode = "3007"
	CodeNoOpening     ErrorCode = "3008"

	// 业务错误 (4xxx)
	CodeExportFailed ErrorCode = "4001"
	CodeNotifyFailed ErrorCode = "4002"

	// 外部服务错误 (5xxx)
	CodeDatabaseError ErrorCode = "5001"
	CodeCacheError    ErrorCode = "5002"
	CodeStorageError  ErrorCode = "5003"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeEssayNotFound, CodeSessionNotFound, CodeDraftNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeNotYourTurn, CodeAlreadyJoined, CodeFull,
		CodeSelfJoin, CodeNotJoinable, CodeNotInProgress, CodeNoOpening:
		return http.StatusConflict
	case CodeTooLong:
		return http.StatusUnprocessableEntity
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrForbidden          = New(CodeForbidden, "caller is not a party to this essay")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrEssayNotFound   = New(CodeEssayNotFound, "essay not found")
	ErrSessionNotFound = New(CodeSessionNotFound, "no active essay session")
	ErrDraftNotFound   = New(CodeDraftNotFound, "no pending contribution draft")

	ErrNotYourTurn   = New(CodeNotYourTurn, "not your turn, wait for your partner")
	ErrTooLong       = New(CodeTooLong, "contribution exceeds the word limit")
	ErrAlreadyJoined = New(CodeAlreadyJoined, "you already joined this essay")
	ErrFull          = New(CodeFull, "this essay already has a partner")
	ErrSelfJoin      = New(CodeSelfJoin, "creator cannot join their own essay")
	ErrNotJoinable   = New(CodeNotJoinable, "this essay is not accepting partners")
	ErrNotInProgress = New(CodeNotInProgress, "essay is not in progress")
	ErrNoOpening     = New(CodeNoOpening, "essay is not awaiting an opening")

	ErrExportFailed = New(CodeExportFailed, "essay export failed")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// IsCode 判断错误是否携带指定错误码
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
