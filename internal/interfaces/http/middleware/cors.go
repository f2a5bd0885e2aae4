package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

var (
	defaultAllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	defaultAllowedHeaders = []string{
		"Origin", "Content-Type", RequestIDHeader, UserIDHeader, "X-User-Name",
	}
)

// CORS 跨域中间件，未配置的字段使用默认值
func CORS(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     orDefault(cfg.AllowedOrigins, []string{"*"}),
		AllowMethods:     orDefault(cfg.AllowedMethods, defaultAllowedMethods),
		AllowHeaders:     orDefault(cfg.AllowedHeaders, defaultAllowedHeaders),
		ExposeHeaders:    []string{RequestIDHeader, "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
