package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/shopsphere-api/internal/model"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, sub string, role model.Role, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub, "role": string(role), "exp": exp.Unix(), "iat": time.Now().Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		actor := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID.String(), "role": actor.Role})
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(testSecret))
	userID := uuid.New()

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"valid", signToken(t, testSecret, userID.String(), model.RoleUser, time.Now().Add(time.Hour)), http.StatusOK},
		{"expired", signToken(t, testSecret, userID.String(), model.RoleUser, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"wrong secret", signToken(t, "other", userID.String(), model.RoleUser, time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"bad subject", signToken(t, testSecret, "nope", model.RoleUser, time.Now().Add(time.Hour)), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.token)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), userID.String())
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := newRouter(AuthMiddleware(testSecret), RequireRole(model.RoleAdmin, model.RoleSeller))
	id := uuid.New().String()
	exp := time.Now().Add(time.Hour)

	assert.Equal(t, http.StatusForbidden, do(r, signToken(t, testSecret, id, model.RoleUser, exp)).Code)
	assert.Equal(t, http.StatusOK, do(r, signToken(t, testSecret, id, model.RoleSeller, exp)).Code)
	assert.Equal(t, http.StatusOK, do(r, signToken(t, testSecret, id, model.RoleAdmin, exp)).Code)
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))

	now = now.Add(limiterIdleTTL + time.Minute)
	l.Sweep()
	assert.Empty(t, l.visitors)
}

func TestRateLimit_Middleware(t *testing.T) {
	r := newRouter(RateLimit(NewIPRateLimiter(0.001, 1)))

	assert.Equal(t, http.StatusOK, do(r, "").Code)
	w := do(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	r := newRouter(RequestLogger(logger))

	do(r, "")
	assert.Contains(t, buf.String(), `"msg":"request"`)
	assert.Contains(t, buf.String(), `"status":200`)
	assert.Contains(t, buf.String(), `"path":"/"`)
}
