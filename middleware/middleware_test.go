package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flybot/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("1.1.1.1"))
	assert.Equal(t, http.StatusOK, do("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("1.1.1.1"))
	assert.Equal(t, http.StatusOK, do("2.2.2.2"))
}

func TestRateLimiterStoreEvictsIdleIPs(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	store := newRateLimiterStore(5)
	store.now = func() time.Time { return now }

	first := store.getLimiter("1.1.1.1")
	store.getLimiter("2.2.2.2")
	assert.Len(t, store.limiters, 2)

	now = now.Add(limiterIdleTTL / 2)
	assert.Same(t, first, store.getLimiter("1.1.1.1"))

	now = now.Add(limiterIdleTTL)
	store.getLimiter("3.3.3.3")
	assert.Len(t, store.limiters, 1)
	assert.Contains(t, store.limiters, "3.3.3.3")
	assert.NotSame(t, first, store.getLimiter("1.1.1.1"))
}

func TestGetClientIP(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.168.1.5:4321"
	assert.Equal(t, "192.168.1.5", getClientIP(c))

	c.Request.Header.Set("X-Real-IP", " 8.8.8.8 ")
	assert.Equal(t, "8.8.8.8", getClientIP(c))

	c.Request.Header.Set("X-Forwarded-For", "unknown, 10.0.0.1")
	assert.Equal(t, "8.8.8.8", getClientIP(c))

	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", getClientIP(c))
}

func TestBotAuthMiddleware(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	validator := utils.NewChannelValidatorWithKeyfunc(func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }, "app-id")

	r := gin.New()
	r.POST("/api/messages", BotAuthMiddleware(validator), func(c *gin.Context) {
		_, ok := c.Get(ChannelClaimsKey)
		assert.True(t, ok)
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, utils.ChannelClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    utils.BotFrameworkIssuer,
			Audience:  jwt.ClaimStrings{"app-id"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(key)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/api/messages", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBotAuthMiddleware_Disabled(t *testing.T) {
	r := gin.New()
	r.POST("/api/messages", BotAuthMiddleware(nil), func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/messages", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Get(utils.LoggerKey)
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-Id"))
}
