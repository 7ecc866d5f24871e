package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"webshop/internal/auth"
	"webshop/internal/config"
	"webshop/internal/handlers"
	"webshop/internal/middleware"
	"webshop/internal/mocks"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	catalog *mocks.MockCatalogService
	issuer  *auth.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	app := &config.Application{
		Logger: zerolog.Nop(),
		Config: config.Config{
			RequestTimeout:       5,
			RateLimit:            1000,
			CORS_Allowed_Origins: []string{"http://localhost:8081"},
		},
	}
	issuer := auth.NewIssuer("0123456789abcdef0123456789abcdef", "webshop-test", time.Minute)
	catalog := new(mocks.MockCatalogService)
	h := handlers.New(app, handlers.Services{Catalog: catalog})
	mw := middleware.New(app, issuer)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &testServer{
		handler: Setup(app, h, mw, middleware.NewMemoryRateLimiter(ctx, 1000, 1000)),
		catalog: catalog,
		issuer:  issuer,
	}
}

func (s *testServer) do(t *testing.T, method, path string, roles ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if roles != nil {
		token, _, err := s.issuer.Sign(uuid.New(), roles)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestPublicCatalogRoutes(t *testing.T) {
	s := newTestServer(t)
	published := mock.MatchedBy(func(f models.ProductFilter) bool { return !f.IncludeDraft })
	drafts := mock.MatchedBy(func(f models.ProductFilter) bool { return f.IncludeDraft })

	s.catalog.On("ListProducts", mock.Anything, published, mock.Anything).
		Return([]models.Product{}, &models.PaginationMetadata{Page: 1, Limit: 10}, nil).Twice()
	s.catalog.On("ListProducts", mock.Anything, drafts, mock.Anything).
		Return([]models.Product{}, &models.PaginationMetadata{Page: 1, Limit: 10}, nil).Once()

	rec := s.do(t, http.MethodGet, "/api/v1/products?include_inactive=true")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = s.do(t, http.MethodGet, "/api/v1/products?include_inactive=true", models.RoleCustomer)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/products?include_inactive=true", models.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.catalog.AssertExpectations(t)
}

func TestProtectedRoutes(t *testing.T) {
	s := newTestServer(t)
	productID := uuid.New().String()

	tests := []struct {
		name   string
		method string
		path   string
		roles  []string
		want   int
	}{
		{"Anonymous_Write", http.MethodPost, "/api/v1/products", nil, http.StatusUnauthorized},
		{"Customer_Write", http.MethodPut, "/api/v1/products/" + productID, []string{models.RoleCustomer}, http.StatusForbidden},
		{"Customer_Roles", http.MethodGet, "/api/v1/roles", []string{models.RoleCustomer}, http.StatusForbidden},
		{"Anonymous_Orders", http.MethodGet, "/api/v1/orders", nil, http.StatusUnauthorized},
		{"Anonymous_Me", http.MethodGet, "/api/v1/me", nil, http.StatusUnauthorized},
		{"Customer_Delete_Order", http.MethodDelete, "/api/v1/orders/" + productID, []string{models.RoleCustomer}, http.StatusForbidden},
		{"Customer_DB_Stats", http.MethodGet, "/api/v1/admin/db-stats", []string{models.RoleCustomer}, http.StatusForbidden},
		{"Unknown_Route", http.MethodGet, "/api/v1/unknown", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.roles...)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	s.catalog.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	s.catalog.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
