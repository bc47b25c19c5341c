package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/logging"
	"github.com/Horridhunk/carmannagement/internal/metrics"
	"github.com/Horridhunk/carmannagement/internal/middleware"
	"github.com/Horridhunk/carmannagement/internal/timezone"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(issuer *auth.Issuer, roles ...auth.Role) *gin.Engine {
	r := gin.New()
	r.Use(middleware.AuthMiddleware(issuer))
	if len(roles) > 0 {
		r.Use(middleware.RequireRole(roles...))
	}
	r.GET("/whoami", func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": p.Role, "id": p.ID})
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
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	issuer := auth.NewIssuer("secret", time.Hour, timezone.Fixed(now))
	r := newRouter(issuer)

	w := get(r, "/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing_authorization_header")

	w = get(r, "/whoami", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_token")

	other, err := auth.NewIssuer("other", time.Hour, timezone.Fixed(now)).Issue(auth.Principal{Role: auth.RoleClient, ID: 3})
	require.NoError(t, err)
	w = get(r, "/whoami", other)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := issuer.Issue(auth.Principal{Role: auth.RoleWasher, ID: 7})
	require.NoError(t, err)
	w = get(r, "/whoami", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"washer","id":7}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour, nil)
	r := newRouter(issuer, auth.RoleAdmin)

	clientToken, err := issuer.Issue(auth.Principal{Role: auth.RoleClient, ID: 1})
	require.NoError(t, err)
	w := get(r, "/whoami", clientToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken, err := issuer.Issue(auth.Principal{Role: auth.RoleAdmin, ID: 1})
	require.NoError(t, err)
	w = get(r, "/whoami", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	rl := middleware.NewRateLimiter(0.001, 2, logging.Discard())
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping", "").Code)

	w := get(r, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limited")
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestObserveMiddlewares(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(middleware.LoggingMiddleware(logging.Discard()), middleware.MetricsMiddleware(m))
	r.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/orders/5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() != "carwash_http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "path" && l.GetValue() == "/orders/:id" {
					found = true
				}
			}
		}
	}
	assert.True(t, found)
}

func TestInvalidateOnWrite(t *testing.T) {
	var evictions int
	r := gin.New()
	r.Use(middleware.InvalidateOnWrite(func(context.Context) { evictions++ }))
	r.GET("/orders", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/orders", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.PATCH("/orders/:id/cancel", func(c *gin.Context) { c.Status(http.StatusConflict) })

	send := func(method, path string) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	}

	send(http.MethodGet, "/orders")
	assert.Equal(t, 0, evictions)

	send(http.MethodPost, "/orders")
	assert.Equal(t, 1, evictions)

	send(http.MethodPatch, "/orders/1/cancel")
	assert.Equal(t, 1, evictions)
}
