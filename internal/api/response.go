package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应格式
// @Description 统一响应格式,包含状态码、消息和数据
type Response struct {
	Code    int         `json:"code" example:"0"`          // 状态码: 0 表示成功,非 0 表示失败
	Message string      `json:"message" example:"success"` // 响应消息
	Data    interface{} `json:"data"`                      // 响应数据
}

// ErrorResponse 错误响应格式
// @Description 错误响应格式,Error 为机器可读的错误码,Reason 为拒绝原因
type ErrorResponse struct {
	Code    int    `json:"code" example:"409"`                             // HTTP 状态码
	Error   string `json:"error,omitempty" example:"ACTION_NOT_PERMITTED"` // 错误码
	Message string `json:"message" example:"action not permitted"`         // 错误消息
	Reason  string `json:"reason,omitempty" example:"wrong-stage"`         // 拒绝原因
	Detail  string `json:"detail,omitempty"`                               // 错误详情(可选)
}

// PaginatedResponse 分页响应
// @Description 分页响应格式,包含数据列表和分页信息
type PaginatedResponse struct {
	Code       int            `json:"code" example:"0"`
	Message    string         `json:"message" example:"success"`
	Data       interface{}    `json:"data"`       // 数据列表
	Pagination PaginationInfo `json:"pagination"` // 分页信息
}

// PaginationInfo 分页信息
type PaginationInfo struct {
	Page      int   `json:"page" example:"1"`
	PageSize  int   `json:"page_size" example:"20"`
	Total     int64 `json:"total" example:"100"`
	TotalPage int   `json:"total_page" example:"5"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: T(c, "success.created"),
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string, detail string) {
	writeError(c, ErrorResponse{Code: code, Message: message, Detail: detail})
}

func writeError(c *gin.Context, resp ErrorResponse) {
	statusCode := http.StatusInternalServerError
	if resp.Code >= 400 && resp.Code < 600 {
		statusCode = resp.Code
	}
	c.AbortWithStatusJSON(statusCode, resp)
}

// Paginated 分页响应
func Paginated(c *gin.Context, data interface{}, pagination PaginationInfo) {
	if pagination.PageSize > 0 {
		pagination.TotalPage = int((pagination.Total + int64(pagination.PageSize) - 1) / int64(pagination.PageSize))
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Code:       0,
		Message:    "success",
		Data:       data,
		Pagination: pagination,
	})
}
