package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"brand-video-backend/internal/middleware"
)

func limitedRouter(perMinute int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/submit", middleware.RateLimit(perMinute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func post(router http.Handler, remote string) int {
	req := httptest.NewRequest("POST", "/submit", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_PerIP(t *testing.T) {
	router := limitedRouter(2)

	assert.Equal(t, http.StatusOK, post(router, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, post(router, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, post(router, "10.0.0.1:1234"))

	assert.Equal(t, http.StatusOK, post(router, "10.0.0.2:1234"), "other clients keep their budget")
}

func TestRateLimit_Disabled(t *testing.T) {
	router := limitedRouter(0)
	for range 50 {
		assert.Equal(t, http.StatusOK, post(router, "10.0.0.1:1234"))
	}
}

func TestIPRateLimiter_Allow(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(1)
	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.False(t, limiter.Allow("1.2.3.4"))
	assert.True(t, limiter.Allow("5.6.7.8"))
}
