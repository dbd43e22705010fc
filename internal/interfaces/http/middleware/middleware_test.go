package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/pkg/auth"
	"github.com/furnishop/furniture-backend/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type revocationStub struct {
	revoked map[string]bool
	err     error
}

func (r *revocationStub) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	r.revoked[id] = true
	return nil
}

func (r *revocationStub) IsRevoked(ctx context.Context, id string) (bool, error) {
	return r.revoked[id], r.err
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "furniture-backend"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-that-is-at-least-32-characters",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenExpiry: time.Hour,
		},
	}
}

func protectedRouter(cfg *config.Config, revocations auth.RevocationList) *gin.Engine {
	r := gin.New()
	authed := r.Group("/", AuthMiddleware(cfg, revocations, logger.Discard()))
	authed.GET("/me", func(c *gin.Context) {
		id, _ := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "admin": IsAdminFromContext(c)})
	})
	authed.GET("/admin", AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	jwt := auth.NewJWTManager(cfg)
	userToken, err := jwt.GenerateAccessToken("u-1", "ada@example.com", auth.RoleUser)
	require.NoError(t, err)
	adminToken, err := jwt.GenerateAccessToken("u-2", "root@example.com", auth.RoleAdmin)
	require.NoError(t, err)
	refreshToken, err := jwt.GenerateRefreshToken("u-1", "ada@example.com")
	require.NoError(t, err)

	r := protectedRouter(cfg, nil)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", refreshToken).Code)

	w := get(r, "/me", userToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"u-1","admin":false}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, get(r, "/admin", userToken).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", adminToken).Code)
}

func TestAuthMiddleware_Revocation(t *testing.T) {
	cfg := testConfig()
	token, err := auth.NewJWTManager(cfg).GenerateAccessToken("u-1", "ada@example.com", auth.RoleUser)
	require.NoError(t, err)
	claims, err := auth.NewJWTManager(cfg).ValidateAccessToken(token)
	require.NoError(t, err)

	list := &revocationStub{revoked: map[string]bool{}}
	r := protectedRouter(cfg, list)
	assert.Equal(t, http.StatusOK, get(r, "/me", token).Code)

	list.revoked[claims.ID] = true
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", token).Code)

	list.err = errors.New("redis down")
	assert.Equal(t, http.StatusServiceUnavailable, get(r, "/me", token).Code)
}

func TestAdminMiddleware_WithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AdminMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, get(r, "/admin", "").Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(contextRequestID)) })

	w := get(r, "/", "")
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(RequestSizeLimit(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	r := gin.New()
	r.Use(RateLimit(1, rdb, logger.Discard()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/", "").Code)
	}
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusGatewayTimeout, get(r, "/slow", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/fast", "").Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/", "")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCORS_Preflight(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{
		CORSAllowedOrigins: []string{"https://shop.example"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Authorization", "Content-Type"},
	}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
