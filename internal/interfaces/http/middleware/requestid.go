// Package middleware 提供 HTTP 中间件
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"essay-duet-api/pkg/logger"
)

// RequestIDHeader 请求 ID 头，上游传入则沿用，否则本地生成
const RequestIDHeader = "X-Request-ID"

// RequestID 为每个请求分配标识并在响应头回显
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(
			logger.WithContext(c.Request.Context(), logger.RequestIDKey, id))

		c.Next()
	}
}
