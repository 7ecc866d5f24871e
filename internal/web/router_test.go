package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"webshop/internal/auth"
	"webshop/internal/config"
	"webshop/internal/middleware"
	"webshop/internal/models"
	"webshop/internal/web/apiclient"
	"webshop/internal/web/controllers"
	"webshop/internal/web/session"
	"webshop/internal/web/tokens"
	"webshop/internal/web/views"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeAPI serves the few API endpoints the tests touch.
type fakeAPI struct {
	t       *testing.T
	issuer  *auth.Issuer
	product models.Product
	roles   []string

	mu         sync.Mutex
	lastBearer string
}

func (f *fakeAPI) write(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(f.t, json.NewEncoder(w).Encode(map[string]interface{}{
		"success": status < 400,
		"message": "ok",
		"data":    data,
	}))
}

func (f *fakeAPI) fault(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
		"error":   message,
		"fault":   map[string]string{"type": kind, "message": message},
	})
}

func (f *fakeAPI) handler() http.Handler {
	page := &models.PaginationMetadata{Page: 1, Limit: 12, TotalCount: 1, TotalPages: 1}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "Secret123!" {
			f.fault(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
			return
		}
		userID := uuid.New()
		access, exp, err := f.issuer.Sign(userID, f.roles)
		require.NoError(f.t, err)
		f.write(w, http.StatusOK, models.TokenPair{
			AccessToken:  access,
			RefreshToken: "refresh-" + req.Username,
			ExpiresAt:    exp.Unix(),
			User:         models.UserSummary{ID: userID, Username: req.Username, Roles: f.roles},
		})
	})
	mux.HandleFunc("GET /api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		f.write(w, http.StatusOK, models.ListResponse[models.Product]{Items: []models.Product{f.product}, Pagination: page})
	})
	mux.HandleFunc("GET /api/v1/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != f.product.ID.String() {
			f.fault(w, http.StatusNotFound, "NotFound", "product not found")
			return
		}
		f.write(w, http.StatusOK, f.product)
	})
	mux.HandleFunc("GET /api/v1/categories", func(w http.ResponseWriter, r *http.Request) {
		f.write(w, http.StatusOK, models.ListResponse[models.Category]{Items: []models.Category{}, Pagination: page})
	})
	mux.HandleFunc("GET /api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastBearer = r.Header.Get("Authorization")
		f.mu.Unlock()
		f.write(w, http.StatusOK, models.ListResponse[models.Order]{Items: []models.Order{}, Pagination: page})
	})
	return mux
}

func (f *fakeAPI) bearer() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBearer
}

type testSite struct {
	url    string
	client *http.Client
	api    *fakeAPI
}

func newTestSite(t *testing.T, roles ...string) *testSite {
	t.Helper()
	fake := &fakeAPI{
		t:       t,
		issuer:  auth.NewIssuer(testSecret, "webshop-test", time.Minute),
		product: models.Product{ID: uuid.New(), Name: "Blue Mug", Price: 9.5, Stock: 4, IsActive: true},
		roles:   roles,
	}
	apiSrv := httptest.NewServer(fake.handler())
	t.Cleanup(apiSrv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	app := &config.Application{Logger: zerolog.Nop(), Config: config.Config{RequestTimeout: 5}}
	api := apiclient.New(apiSrv.URL, apiSrv.Client())
	state := session.NewStateManager(session.NewManager(rdb, time.Hour, false), api, tokens.NewValidator(tokens.DefaultSkew), zerolog.Nop())
	renderer, err := views.New(zerolog.Nop())
	require.NoError(t, err)

	site := httptest.NewServer(Router(app, controllers.New(api, state, renderer, zerolog.Nop()), state, middleware.New(app, nil)))
	t.Cleanup(site.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testSite{url: site.URL, client: client, api: fake}
}

func (s *testSite) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.Get(s.url + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (s *testSite) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := s.client.PostForm(s.url+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (s *testSite) login(t *testing.T) {
	t.Helper()
	resp, _ := s.post(t, "/login", url.Values{"username": {"alice"}, "password": {"Secret123!"}, "next": {"/orders"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/orders", resp.Header.Get("Location"))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHomeListsProducts(t *testing.T) {
	s := newTestSite(t)

	resp, body := s.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Blue Mug")
	assert.Contains(t, body, "€ 9.50")
	assert.Equal(t, middleware.WebContentPolicy, resp.Header.Get("Content-Security-Policy"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestProtectedPageRedirectsToLogin(t *testing.T) {
	s := newTestSite(t)

	resp, _ := s.get(t, "/checkout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fcheckout", resp.Header.Get("Location"))
}

func TestLoginStoresTokensInSession(t *testing.T) {
	s := newTestSite(t, models.RoleCustomer)
	s.login(t)

	resp, body := s.get(t, "/orders")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome back, alice.")
	assert.Contains(t, body, "No orders yet.")
	assert.True(t, strings.HasPrefix(s.api.bearer(), "Bearer "), "orders must be requested with the access token")

	// The flash is shown once.
	_, body = s.get(t, "/orders")
	assert.NotContains(t, body, "Welcome back")
}

func TestLoginWithWrongPassword(t *testing.T) {
	s := newTestSite(t)

	resp, body := s.post(t, "/login", url.Values{"username": {"alice"}, "password": {"wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid username or password.")
	assert.Contains(t, body, `value="alice"`)
}

func TestLoginIgnoresForeignNext(t *testing.T) {
	s := newTestSite(t)

	resp, _ := s.post(t, "/login", url.Values{"username": {"alice"}, "password": {"Secret123!"}, "next": {"//evil.example"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestCartKeepsItemsAcrossRequests(t *testing.T) {
	s := newTestSite(t)
	productID := s.api.product.ID.String()

	resp, _ := s.post(t, "/cart/add", url.Values{"product_id": {productID}, "quantity": {"2"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body := s.get(t, "/cart")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Blue Mug was added to your cart.")
	assert.Contains(t, body, "Cart (2)")
	assert.Contains(t, body, "€ 19.00")

	resp, _ = s.post(t, "/cart/update", url.Values{"product_id": {productID}, "quantity": {"0"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = s.get(t, "/cart")
	assert.Contains(t, body, "Your cart is empty.")
}

func TestAddUnknownProductToCart(t *testing.T) {
	s := newTestSite(t)

	resp, body := s.post(t, "/cart/add", url.Values{"product_id": {uuid.NewString()}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "product not found")
}

func TestAdminPagesRequireAdminRole(t *testing.T) {
	s := newTestSite(t, models.RoleCustomer)
	s.login(t)

	resp, _ := s.get(t, "/admin")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := newTestSite(t, models.RoleAdmin)
	admin.login(t)
	resp, body := admin.get(t, "/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Administration")
}

func TestLogoutForgetsUser(t *testing.T) {
	s := newTestSite(t, models.RoleCustomer)
	s.login(t)

	resp, _ := s.post(t, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, _ = s.get(t, "/orders")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestUnknownPage(t *testing.T) {
	s := newTestSite(t)

	resp, body := s.get(t, "/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "The page you requested does not exist.")
}

func TestHealth(t *testing.T) {
	s := newTestSite(t)

	resp, body := s.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"message":"Health check","data":{"status":"healthy"}}`, body)
}
