package router

import (
	"net/http"

	"webshop/internal/config"
	_ "webshop/internal/docs"
	"webshop/internal/handlers"
	"webshop/internal/middleware"
	"webshop/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

var requestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "A histogram of request latencies.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "code"},
)

func init() {
	prometheus.MustRegister(requestDuration)
}

// Setup builds the API router. The limiter is shared between requests and
// usually comes from mw.NewLimiter.
func Setup(app *config.Application, h *handlers.Handlers, mw *middleware.Middleware, limiter middleware.Limiter) http.Handler {
	router := mux.NewRouter()

	// Apply global middleware in order of execution
	router.Use(mw.RequestID) // First: Add request ID
	router.Use(otelmux.Middleware("webshop-api"))
	router.Use(mw.Recovery)                                // Second: Catch panics
	router.Use(mw.Logging)                                 // Third: Log requests
	router.Use(middleware.Security)                        // Fourth: Security headers
	router.Use(mw.Timeout(app.Config.GetRequestTimeout())) // Fifth: Request timeout
	router.Use(mw.RateLimit(limiter))                      // Sixth: Rate limiting

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   app.Config.CORS_Allowed_Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	})
	router.Use(c.Handler)

	// Health and monitoring routes (no authentication required)
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/health/detailed", h.HealthDetailed).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler).Methods("GET")

	// Public authentication routes
	auth := router.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", h.Register).Methods("POST")
	auth.HandleFunc("/login", h.Login).Methods("POST")
	auth.HandleFunc("/refresh", h.Refresh).Methods("POST")
	auth.HandleFunc("/logout", h.Logout).Methods("POST")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Access levels are attached per route since public and protected
	// endpoints share paths and differ only by method.
	public := func(f http.HandlerFunc) http.Handler { return mw.OptionalJWT(f) }
	authed := func(f http.HandlerFunc) http.Handler { return mw.JWT(f) }
	admin := func(f http.HandlerFunc) http.Handler {
		return mw.JWT(mw.RequireRole(models.RoleAdmin)(f))
	}

	// Current user
	api.Handle("/me", authed(h.Me)).Methods("GET")
	api.Handle("/me/password", authed(h.ChangePassword)).Methods("PUT")

	// Users; owners may read and update themselves
	api.Handle("/users", admin(h.GetUsers)).Methods("GET")
	api.Handle("/users", admin(h.CreateUser)).Methods("POST")
	api.Handle("/users/{id}", authed(h.GetUser)).Methods("GET")
	api.Handle("/users/{id}", authed(h.UpdateUser)).Methods("PUT")
	api.Handle("/users/{id}", admin(h.DeleteUser)).Methods("DELETE")
	api.Handle("/users/{id}/roles", admin(h.AssignRole)).Methods("POST")
	api.Handle("/users/{id}/roles/{role}", admin(h.RemoveRole)).Methods("DELETE")

	// Roles
	api.Handle("/roles", admin(h.ListRoles)).Methods("GET")
	api.Handle("/roles", admin(h.CreateRole)).Methods("POST")
	api.Handle("/roles/{id}", admin(h.GetRole)).Methods("GET")
	api.Handle("/roles/{id}", admin(h.UpdateRole)).Methods("PUT")
	api.Handle("/roles/{id}", admin(h.DeleteRole)).Methods("DELETE")

	// Addresses; ownership is checked by the service
	api.Handle("/addresses", authed(h.ListAddresses)).Methods("GET")
	api.Handle("/addresses", authed(h.CreateAddress)).Methods("POST")
	api.Handle("/addresses/{id}", authed(h.GetAddress)).Methods("GET")
	api.Handle("/addresses/{id}", authed(h.UpdateAddress)).Methods("PUT")
	api.Handle("/addresses/{id}", authed(h.DeleteAddress)).Methods("DELETE")

	// Companies
	api.Handle("/companies", authed(h.ListCompanies)).Methods("GET")
	api.Handle("/companies", admin(h.CreateCompany)).Methods("POST")
	api.Handle("/companies/{id}", authed(h.GetCompany)).Methods("GET")
	api.Handle("/companies/{id}", admin(h.UpdateCompany)).Methods("PUT")
	api.Handle("/companies/{id}", admin(h.DeleteCompany)).Methods("DELETE")

	// Catalog
	api.Handle("/categories", public(h.ListCategories)).Methods("GET")
	api.Handle("/categories", admin(h.CreateCategory)).Methods("POST")
	api.Handle("/categories/{id}", public(h.GetCategory)).Methods("GET")
	api.Handle("/categories/{id}", admin(h.UpdateCategory)).Methods("PUT")
	api.Handle("/categories/{id}", admin(h.DeleteCategory)).Methods("DELETE")

	api.Handle("/products", public(h.ListProducts)).Methods("GET")
	api.Handle("/products", admin(h.CreateProduct)).Methods("POST")
	api.Handle("/products/{id}", public(h.GetProduct)).Methods("GET")
	api.Handle("/products/{id}", admin(h.UpdateProduct)).Methods("PUT")
	api.Handle("/products/{id}", admin(h.DeleteProduct)).Methods("DELETE")

	// Images
	api.Handle("/products/{id}/images", public(h.ListProductImages)).Methods("GET")
	api.Handle("/products/{id}/images", admin(h.UploadImage)).Methods("POST")
	api.Handle("/images/{id}", public(h.GetImage)).Methods("GET")
	api.Handle("/images/{id}/content", public(h.GetImageContent)).Methods("GET")
	api.Handle("/images/{id}", admin(h.DeleteImage)).Methods("DELETE")

	// Orders; status rules per role live in the service
	api.Handle("/orders", authed(h.ListOrders)).Methods("GET")
	api.Handle("/orders", authed(h.CreateOrder)).Methods("POST")
	api.Handle("/orders/{id}", authed(h.GetOrder)).Methods("GET")
	api.Handle("/orders/{id}", admin(h.DeleteOrder)).Methods("DELETE")
	api.Handle("/orders/{id}/status", authed(h.UpdateOrderStatus)).Methods("PUT")
	api.Handle("/orders/{id}/products", authed(h.ListOrderProducts)).Methods("GET")
	api.Handle("/orders/{id}/products", authed(h.AddOrderProduct)).Methods("POST")
	api.Handle("/order-products/{id}", authed(h.GetOrderProduct)).Methods("GET")
	api.Handle("/order-products/{id}", authed(h.UpdateOrderProduct)).Methods("PUT")
	api.Handle("/order-products/{id}", authed(h.DeleteOrderProduct)).Methods("DELETE")

	// Database statistics route
	api.Handle("/admin/db-stats", admin(h.GetDatabaseStats)).Methods("GET")

	return promhttp.InstrumentHandlerDuration(requestDuration, router)
}
