package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brand-video-backend/internal/config"
	"brand-video-backend/internal/middleware"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func authRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(middleware.UserIDKey)})
	})
	return router
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func get(router http.Handler, auth string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/test", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	w := get(authRouter(&config.Config{SupabaseJWTSecret: testSecret}), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestAuthMiddleware_BadScheme(t *testing.T) {
	w := get(authRouter(&config.Config{SupabaseJWTSecret: testSecret}), "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid authorization header format")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	w := get(authRouter(&config.Config{SupabaseJWTSecret: testSecret}), "Bearer invalid-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "malformed")
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "user-123"})

	w := get(authRouter(&config.Config{SupabaseJWTSecret: testSecret}), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-123")
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte("another-secret"), jwt.MapClaims{"sub": "user-123"})

	w := get(authRouter(&config.Config{SupabaseJWTSecret: testSecret}), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "signature is invalid")
}

func TestAuthMiddleware_Expired(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	w := get(authRouter(&config.Config{SupabaseJWTSecret: testSecret}), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestAuthMiddleware_MissingSubject(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"role": "anon"})

	w := get(authRouter(&config.Config{SupabaseJWTSecret: testSecret}), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing user id")
}

func TestAuthMiddleware_RejectsOtherAlgorithms(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"sub": "user-123"})

	w := get(authRouter(&config.Config{SupabaseJWTSecret: testSecret}), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
