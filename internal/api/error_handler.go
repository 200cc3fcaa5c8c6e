package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
)

// 错误码
const (
	CodeNotFound               = "NOT_FOUND"
	CodeActionNotPermitted     = "ACTION_NOT_PERMITTED"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeValidation             = "VALIDATION_ERROR"
	CodeStorageUnavailable     = "STORAGE_UNAVAILABLE"
	CodeBadRequest             = "BAD_REQUEST"
	CodeInternal               = "INTERNAL_ERROR"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件,恢复 panic 并输出 c.Errors
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				GetLogger().WithField("request_id", c.GetString("request_id")).
					Errorf("panic recovered: %v", r)
				writeError(c, ErrorResponse{
					Code:    http.StatusInternalServerError,
					Error:   CodeInternal,
					Message: T(c, "error.internal_error"),
				})
			}
		}()

		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
				return
			}
			HandleServiceError(c, err)
		}
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}

// HandleServiceError 将服务层错误映射为 HTTP 响应
func HandleServiceError(c *gin.Context, err error) {
	var denied *workflow.DeniedError

	switch {
	case errors.As(err, &denied):
		status := http.StatusConflict
		if denied.Reason == workflow.ReasonWrongActor {
			status = http.StatusForbidden
		}
		writeError(c, ErrorResponse{
			Code:    status,
			Error:   CodeActionNotPermitted,
			Message: T(c, "error.action_not_permitted"),
			Reason:  string(denied.Reason),
			Detail:  fmt.Sprintf("%s is not permitted while %s", denied.Action, denied.Status),
		})
	case errors.Is(err, workflow.ErrNotFound):
		writeError(c, ErrorResponse{
			Code:    http.StatusNotFound,
			Error:   CodeNotFound,
			Message: T(c, "error.not_found"),
			Detail:  err.Error(),
		})
	case errors.Is(err, workflow.ErrConcurrentModification):
		writeError(c, ErrorResponse{
			Code:    http.StatusConflict,
			Error:   CodeConcurrentModification,
			Message: T(c, "error.concurrent_modification"),
		})
	case errors.Is(err, workflow.ErrValidation):
		writeError(c, ErrorResponse{
			Code:    http.StatusBadRequest,
			Error:   CodeValidation,
			Message: T(c, "error.validation"),
			Detail:  err.Error(),
		})
	case errors.Is(err, workflow.ErrStorageUnavailable):
		GetLogger().WithError(err).WithField("request_id", c.GetString("request_id")).Error("storage unavailable")
		writeError(c, ErrorResponse{
			Code:    http.StatusServiceUnavailable,
			Error:   CodeStorageUnavailable,
			Message: T(c, "error.storage_unavailable"),
		})
	default:
		GetLogger().WithError(err).WithField("request_id", c.GetString("request_id")).Error("unhandled service error")
		writeError(c, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Error:   CodeInternal,
			Message: T(c, "error.internal_error"),
		})
	}
}

// BadRequest 请求参数错误
func BadRequest(c *gin.Context, err error) {
	writeError(c, ErrorResponse{
		Code:    http.StatusBadRequest,
		Error:   CodeBadRequest,
		Message: T(c, "error.bad_request"),
		Detail:  err.Error(),
	})
}
