package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/utils"
)

const (
	// HeaderRequestID 请求 ID 头
	HeaderRequestID = "X-Request-ID"
	// HeaderActorID 操作人头
	HeaderActorID = "X-Actor-ID"
)

// RequestIDMiddleware 生成或透传请求 ID,并记录审计所需的请求信息
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Set("ip", c.ClientIP())
		c.Set("user_agent", c.Request.UserAgent())
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// ActorMiddleware 从 X-Actor-ID 头读取操作人
// 身份认证不在本服务范围内,由上游网关负责
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(HeaderActorID))
		if actor != "" {
			if err := utils.ValidateWorkerID(actor); err != nil {
				BadRequest(c, err)
				return
			}
			c.Set("user_id", actor)
		}
		c.Next()
	}
}
