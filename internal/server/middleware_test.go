package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jkirui/shellbot-agent/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthedRouter(auth *AuthService) *gin.Engine {
	router := gin.New()
	router.Use(AuthMiddleware(auth))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestAuthMiddleware_ValidAPIKey(t *testing.T) {
	router := newAuthedRouter(NewAuthService("test-api-key"))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer test-api-key")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_ValidJWT(t *testing.T) {
	auth := NewAuthService("test-api-key")
	token, err := auth.GenerateToken("admin", time.Hour)
	require.NoError(t, err)

	router := newAuthedRouter(auth)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := newAuthedRouter(NewAuthService("test-api-key"))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := newAuthedRouter(NewAuthService("test-api-key"))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(3)

	assert.True(t, limiter.Allow("client"))
	assert.True(t, limiter.Allow("client"))
	assert.True(t, limiter.Allow("client"))
	assert.False(t, limiter.Allow("client"))

	// Other clients are tracked independently
	assert.True(t, limiter.Allow("other"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware([]string{"*"}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("OPTIONS", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthEndpointUnauthenticated(t *testing.T) {
	cfg := config.LoadWithDefaults()
	srv := New(cfg, zap.NewNop())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestInfoEndpointRequiresAuth(t *testing.T) {
	cfg := config.LoadWithDefaults()
	srv := New(cfg, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/info", nil)
	w := httptest.NewRecorder()

	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInfoEndpointWithAPIKey(t *testing.T) {
	cfg := config.LoadWithDefaults()
	srv := New(cfg, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/info", nil)
	req.Header.Set("Authorization", "Bearer "+cfg.StatusAPIKey)
	w := httptest.NewRecorder()

	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "shellbot-agent", body["agent"])
	assert.Equal(t, cfg.LLMModel, body["model"])
}

func TestCreateToken(t *testing.T) {
	cfg := config.LoadWithDefaults()
	srv := New(cfg, zap.NewNop())

	req := httptest.NewRequest("POST", "/api/auth/token", nil)
	req.Header.Set("Authorization", "Bearer "+cfg.StatusAPIKey)
	w := httptest.NewRecorder()

	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, 3600, body.ExpiresIn)

	claims, err := srv.auth.ValidateToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestDockerDisabled(t *testing.T) {
	cfg := config.LoadWithDefaults()
	cfg.DockerEnabled = false
	srv := New(cfg, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/docker/containers", nil)
	req.Header.Set("Authorization", "Bearer "+cfg.StatusAPIKey)
	w := httptest.NewRecorder()

	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
