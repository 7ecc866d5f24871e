package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"webshop/internal/apperr"
	"webshop/internal/auth"
	"webshop/internal/config"
	"webshop/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestMiddleware() (*Middleware, *auth.Issuer) {
	issuer := auth.NewIssuer(testSecret, "webshop-test", time.Minute)
	app := &config.Application{Logger: zerolog.Nop(), Config: config.Config{RateLimit: 3}}
	return New(app, issuer), issuer
}

// echoActor reports the identity the middleware placed on the context.
func echoActor(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(config.UserIDKey).(uuid.UUID)
	roles, _ := r.Context().Value(config.RolesKey).([]string)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"user_id": userID, "roles": roles})
}

func TestJWT(t *testing.T) {
	mw, issuer := newTestMiddleware()
	handler := mw.JWT(http.HandlerFunc(echoActor))
	userID := uuid.New()
	token, _, err := issuer.Sign(userID, []string{models.RoleCustomer})
	require.NoError(t, err)

	t.Run("Bearer_Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), userID.String())
		assert.Contains(t, rec.Body.String(), models.RoleCustomer)
	})

	t.Run("Cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.AddCookie(&http.Cookie{Name: authCookieName, Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var body struct {
			Fault *apperr.Error `json:"fault"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, apperr.KindUnauthorized, body.Fault.Kind)
	})

	t.Run("Wrong_Secret", func(t *testing.T) {
		other := auth.NewIssuer("ffffffffffffffffffffffffffffffff", "webshop-test", time.Minute)
		forged, _, err := other.Sign(userID, []string{models.RoleAdmin})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Expired", func(t *testing.T) {
		short := auth.NewIssuer(testSecret, "webshop-test", -time.Minute)
		expired, _, err := short.Sign(userID, nil)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Token has expired")
	})
}

func TestOptionalJWT(t *testing.T) {
	mw, _ := newTestMiddleware()
	handler := mw.OptionalJWT(http.HandlerFunc(echoActor))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), uuid.Nil.String())
}

func TestRequireRole(t *testing.T) {
	mw, issuer := newTestMiddleware()
	handler := mw.JWT(mw.RequireRole(models.RoleAdmin)(http.HandlerFunc(echoActor)))

	customer, _, _ := issuer.Sign(uuid.New(), []string{models.RoleCustomer})
	admin, _, _ := issuer.Sign(uuid.New(), []string{models.RoleCustomer, models.RoleAdmin})

	for name, tc := range map[string]struct {
		token string
		want  int
	}{
		"Customer": {customer, http.StatusForbidden},
		"Admin":    {admin, http.StatusOK},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/x", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	mw, _ := newTestMiddleware()
	var seen string
	handler := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestRecovery(t *testing.T) {
	mw, _ := newTestMiddleware()
	handler := mw.Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mw, _ := newTestMiddleware()
	limiter := NewRedisRateLimiter(client, 3, zerolog.Nop())
	handler := mw.RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 200, http.StatusTooManyRequests}, codes)

	// Another client has its own window.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.8")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRedisRateLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	limiter := NewRedisRateLimiter(client, 1, zerolog.Nop())
	assert.True(t, limiter.Allow(context.Background(), "198.51.100.1"))
	assert.True(t, limiter.Allow(context.Background(), "198.51.100.1"))
}

func TestMemoryRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewMemoryRateLimiter(ctx, 60, 2)
	assert.True(t, limiter.Allow(ctx, "a"))
	assert.True(t, limiter.Allow(ctx, "a"))
	assert.False(t, limiter.Allow(ctx, "a"))
	assert.True(t, limiter.Allow(ctx, "b"))
}

func TestSecurityHeaders(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		name    string
		handler http.Handler
		path    string
		csp     string
	}{
		{"api", Security(ok), "/api/v1/products", "default-src 'none'; frame-ancestors 'none'"},
		{"swagger", Security(ok), "/swagger/index.html", ""},
		{"web", WebSecurity(ok), "/cart", WebContentPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			assert.Equal(t, tt.csp, rec.Header().Get("Content-Security-Policy"))
		})
	}
}
