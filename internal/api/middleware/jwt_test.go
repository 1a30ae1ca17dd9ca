package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWT = JWTConfig{
	SigningKey: []byte("test-signing-key-1234567890123456"),
	Issuer:     "land-registry",
	ExpiresIn:  time.Hour,
}

func serveWithJWT(t *testing.T, cfg JWTConfig, authHeader string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var actor string
	router := gin.New()
	router.Use(JWTAuth(cfg))
	router.GET("/whoami", func(c *gin.Context) {
		actor = GetActor(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, actor
}

func TestJWTAuth_ValidToken(t *testing.T) {
	token, expiresAt, err := GenerateToken(testJWT, "u-17", "registrar.kandy")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	w, actor := serveWithJWT(t, testJWT, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "registrar.kandy", actor)
}

func TestJWTAuth_SubjectFallback(t *testing.T) {
	token, _, err := GenerateToken(testJWT, "u-17", "")
	require.NoError(t, err)

	_, actor := serveWithJWT(t, testJWT, "Bearer "+token)
	assert.Equal(t, "u-17", actor)
}

func TestJWTAuth_AnonymousPassesThrough(t *testing.T) {
	w, actor := serveWithJWT(t, testJWT, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, actor)
}

func TestJWTAuth_Rejects(t *testing.T) {
	otherKey := testJWT
	otherKey.SigningKey = []byte("another-signing-key-0987654321abcd")
	forged, _, err := GenerateToken(otherKey, "u-1", "mallory")
	require.NoError(t, err)

	otherIssuer := testJWT
	otherIssuer.Issuer = "someone-else"
	wrongIssuer, _, err := GenerateToken(otherIssuer, "u-1", "alice")
	require.NoError(t, err)

	expiredCfg := testJWT
	expiredCfg.ExpiresIn = -time.Minute
	expired, _, err := GenerateToken(expiredCfg, "u-1", "alice")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "bad scheme", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "wrong key", header: "Bearer " + forged},
		{name: "wrong issuer", header: "Bearer " + wrongIssuer},
		{name: "expired", header: "Bearer " + expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, actor := serveWithJWT(t, testJWT, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Empty(t, actor)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestJWTConfig_Enabled(t *testing.T) {
	assert.True(t, testJWT.Enabled())
	assert.False(t, JWTConfig{}.Enabled())
}

func TestRequestID(t *testing.T) {
	var seen string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		seen = GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-abc", seen)
	assert.Equal(t, "req-abc", w.Header().Get(RequestIDHeader))
}
