package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLimiter 记录限流键，便于断言键的构成
type recordingLimiter struct {
	keys    []string
	allowed bool
	err     error
}

func (l *recordingLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

func newLimitedEngine(limiter RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	v1 := engine.Group("/v1")
	v1.Use(Identity())
	v1.Use(RateLimit(RateLimitConfig{Enabled: true, RequestsPerSecond: 20}, limiter))
	v1.GET("/essays/available", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func doRequest(engine *gin.Engine, userID string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/essays/available", nil)
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	engine.ServeHTTP(w, req)
	return w
}

func TestRateLimitKeyPerUser(t *testing.T) {
	limiter := &recordingLimiter{allowed: true}
	engine := newLimitedEngine(limiter)

	doRequest(engine, "user-a")
	doRequest(engine, "user-b")

	// 限流在身份之后注册，不同调用方拿到各自的桶
	require.Len(t, limiter.keys, 2)
	assert.Equal(t, "ratelimit:user-a:/v1/essays/available", limiter.keys[0])
	assert.Equal(t, "ratelimit:user-b:/v1/essays/available", limiter.keys[1])
}

func TestRateLimitRejects(t *testing.T) {
	limiter := &recordingLimiter{allowed: false}
	engine := newLimitedEngine(limiter)

	w := doRequest(engine, "user-a")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	limiter := &recordingLimiter{allowed: true}
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	// 身份中间件缺席时按来源 IP 限流，而不是所有人共享 anonymous 桶
	engine.Use(RateLimit(RateLimitConfig{Enabled: true, RequestsPerSecond: 20}, limiter))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.1.2.3:5000"
	engine.ServeHTTP(w, req)

	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "ratelimit:10.1.2.3:/ping", limiter.keys[0])
}

func TestRateLimitFailOpen(t *testing.T) {
	limiter := &recordingLimiter{allowed: false, err: assert.AnError}
	engine := newLimitedEngine(limiter)

	// 限流器故障时放行
	w := doRequest(engine, "user-a")
	assert.Equal(t, http.StatusOK, w.Code)
}
