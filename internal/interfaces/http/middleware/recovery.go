package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"essay-duet-api/pkg/errors"
	"essay-duet-api/pkg/logger"
)

// Recovery 捕获处理器 panic，记录调用栈后返回统一的 500 响应
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error(c.Request.Context(), "handler panic",
				fmt.Errorf("%v", r),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    errors.CodeInternalError,
				"message": "internal server error",
			})
		}()
		c.Next()
	}
}
