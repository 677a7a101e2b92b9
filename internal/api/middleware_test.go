// internal/api/middleware_test.go
package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterEnforcesLimit(t *testing.T) {
	limiter := NewRateLimiter()

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("1.2.3.4", 3, time.Minute), "request %d should pass", i+1)
	}
	assert.False(t, limiter.Allow("1.2.3.4", 3, time.Minute))
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter()

	assert.True(t, limiter.Allow("a", 1, time.Minute))
	assert.False(t, limiter.Allow("a", 1, time.Minute))
	assert.True(t, limiter.Allow("b", 1, time.Minute))
}

func TestRateLimiterWindowExpires(t *testing.T) {
	limiter := NewRateLimiter()

	assert.True(t, limiter.Allow("a", 1, 10*time.Millisecond))
	assert.False(t, limiter.Allow("a", 1, 10*time.Millisecond))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, limiter.Allow("a", 1, 10*time.Millisecond))
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(1, time.Minute, func(c *gin.Context) string {
		return "fixed-key-429-test"
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	id := recorder.Header().Get("X-Request-ID")
	assert.NotEmpty(t, id)
	assert.Equal(t, id, recorder.Body.String())
}

func TestRequestIDMiddlewarePreservesIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied")

	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)

	assert.Equal(t, "client-supplied", recorder.Header().Get("X-Request-ID"))
}
