package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/tourbook-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter(tokens *jwt.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), MetricsMiddleware(), LoggerMiddleware(zap.NewNop()))
	r.GET("/whoami", JWTAuthMiddleware(tokens, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor": Actor(c), "role": c.GetString(RoleKey)})
	})
	r.PUT("/settings", JWTAuthMiddleware(tokens, zap.NewNop()), RequireRole(jwt.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := jwt.NewTokenService("secret", time.Hour)
	admin, err := tokens.Issue("admin-1", jwt.RoleAdmin)
	require.NoError(t, err)
	operator, err := tokens.Issue("op-1", jwt.RoleOperator)
	require.NoError(t, err)
	customer, err := tokens.Issue("cust-1", "customer")
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{name: "missing header", method: http.MethodGet, path: "/whoami", want: http.StatusUnauthorized},
		{name: "wrong scheme", method: http.MethodGet, path: "/whoami", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", method: http.MethodGet, path: "/whoami", header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "customer role", method: http.MethodGet, path: "/whoami", header: "Bearer " + customer, want: http.StatusForbidden},
		{name: "operator", method: http.MethodGet, path: "/whoami", header: "Bearer " + operator, want: http.StatusOK},
		{name: "operator cannot change settings", method: http.MethodPut, path: "/settings", header: "Bearer " + operator, want: http.StatusForbidden},
		{name: "admin changes settings", method: http.MethodPut, path: "/settings", header: "Bearer " + admin, want: http.StatusNoContent},
	}
	r := newRouter(tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRequestIDMiddleware_KeepsIncomingID(t *testing.T) {
	r := newRouter(jwt.NewTokenService("secret", time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}
