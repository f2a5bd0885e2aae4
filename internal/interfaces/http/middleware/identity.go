package middleware

import (
	"essay-duet-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader 调用方用户标识头，由上游网关注入
	UserIDHeader = "X-User-ID"
)

// Identity 用户身份中间件
// 服务信任上游网关完成认证，这里只要求标识存在
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(401, gin.H{
				"code":    401,
				"message": "missing " + UserIDHeader + " header",
			})
			return
		}

		c.Set("user_id", userID)

		ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, userID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetUserIDFromGin 从 Gin Context 获取用户 ID
func GetUserIDFromGin(c *gin.Context) string {
	return c.GetString("user_id")
}
