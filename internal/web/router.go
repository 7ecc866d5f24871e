// Package web assembles the HTML front-end that talks to the API.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"webshop/internal/config"
	"webshop/internal/middleware"
	"webshop/internal/web/controllers"
	"webshop/internal/web/session"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// Router builds the front-end router. The session is loaded before any page
// runs, so every controller can read the cart and the signed-in user.
func Router(app *config.Application, c *controllers.Controller, state *session.StateManager, mw *middleware.Middleware) http.Handler {
	router := mux.NewRouter()
	sessions := state.Sessions()

	router.Use(mw.RequestID)
	router.Use(otelmux.Middleware("webshop-web"))
	router.Use(mw.Recovery)
	router.Use(mw.Logging)
	router.Use(middleware.WebSecurity)
	router.Use(mw.Timeout(app.Config.GetRequestTimeout()))
	router.Use(sessions.LoadAndSave)

	router.HandleFunc("/health", health(app)).Methods("GET")

	public := func(f http.HandlerFunc) http.Handler { return state.OptionalLogin(f) }
	authed := func(f http.HandlerFunc) http.Handler { return state.RequireLogin(f) }
	admin := func(f http.HandlerFunc) http.Handler {
		return state.RequireLogin(state.RequireAdmin(f))
	}

	// Shop
	router.Handle("/", public(c.Home)).Methods("GET")
	router.Handle("/products/{id}", public(c.Product)).Methods("GET")
	router.Handle("/images/{id}", public(c.Image)).Methods("GET")
	router.Handle("/cart", public(c.Cart)).Methods("GET")
	router.Handle("/cart/add", public(c.AddToCart)).Methods("POST")
	router.Handle("/cart/update", public(c.UpdateCart)).Methods("POST")
	router.Handle("/checkout", authed(c.Checkout)).Methods("GET")
	router.Handle("/checkout", authed(c.PlaceOrder)).Methods("POST")

	// Account
	router.HandleFunc("/login", c.LoginForm).Methods("GET")
	router.HandleFunc("/login", c.Login).Methods("POST")
	router.HandleFunc("/register", c.RegisterForm).Methods("GET")
	router.HandleFunc("/register", c.Register).Methods("POST")
	router.Handle("/logout", public(c.Logout)).Methods("POST")
	router.Handle("/account", authed(c.Account)).Methods("GET")
	router.Handle("/account/password", authed(c.ChangePassword)).Methods("POST")

	router.Handle("/orders", authed(c.Orders)).Methods("GET")
	router.Handle("/orders/{id}", authed(c.Order)).Methods("GET")
	router.Handle("/orders/{id}/cancel", authed(c.CancelOrder)).Methods("POST")

	router.Handle("/addresses", authed(c.Addresses)).Methods("GET")
	router.Handle("/addresses", authed(c.CreateAddress)).Methods("POST")
	router.Handle("/addresses/new", authed(c.NewAddress)).Methods("GET")
	router.Handle("/addresses/{id}/edit", authed(c.EditAddress)).Methods("GET")
	router.Handle("/addresses/{id}", authed(c.UpdateAddress)).Methods("POST")
	router.Handle("/addresses/{id}/delete", authed(c.DeleteAddress)).Methods("POST")

	// Administration
	router.Handle("/admin", admin(c.AdminHome)).Methods("GET")

	router.Handle("/admin/categories", admin(c.AdminCategories)).Methods("GET")
	router.Handle("/admin/categories", admin(c.CreateCategory)).Methods("POST")
	router.Handle("/admin/categories/{id}", admin(c.UpdateCategory)).Methods("POST")
	router.Handle("/admin/categories/{id}/delete", admin(c.DeleteCategory)).Methods("POST")

	router.Handle("/admin/companies", admin(c.AdminCompanies)).Methods("GET")
	router.Handle("/admin/companies", admin(c.CreateCompany)).Methods("POST")
	router.Handle("/admin/companies/{id}", admin(c.UpdateCompany)).Methods("POST")
	router.Handle("/admin/companies/{id}/delete", admin(c.DeleteCompany)).Methods("POST")

	router.Handle("/admin/products", admin(c.AdminProducts)).Methods("GET")
	router.Handle("/admin/products", admin(c.CreateProduct)).Methods("POST")
	router.Handle("/admin/products/new", admin(c.NewProduct)).Methods("GET")
	router.Handle("/admin/products/{id}/edit", admin(c.EditProduct)).Methods("GET")
	router.Handle("/admin/products/{id}", admin(c.UpdateProduct)).Methods("POST")
	router.Handle("/admin/products/{id}/delete", admin(c.DeleteProduct)).Methods("POST")
	router.Handle("/admin/products/{id}/images", admin(c.UploadImage)).Methods("POST")
	router.Handle("/admin/images/{id}/delete", admin(c.DeleteImage)).Methods("POST")

	router.Handle("/admin/orders", admin(c.AdminOrders)).Methods("GET")
	router.Handle("/admin/orders/{id}/status", admin(c.UpdateOrderStatus)).Methods("POST")
	router.Handle("/admin/orders/{id}/delete", admin(c.DeleteOrder)).Methods("POST")

	router.Handle("/admin/users", admin(c.AdminUsers)).Methods("GET")
	router.Handle("/admin/users/{id}", admin(c.AdminUser)).Methods("GET")
	router.Handle("/admin/users/{id}/roles", admin(c.AssignRole)).Methods("POST")
	router.Handle("/admin/users/{id}/roles/remove", admin(c.RemoveRole)).Methods("POST")
	router.Handle("/admin/users/{id}/delete", admin(c.DeactivateUser)).Methods("POST")
	router.Handle("/admin/roles", admin(c.CreateRole)).Methods("POST")
	router.Handle("/admin/roles/{id}/delete", admin(c.DeleteRole)).Methods("POST")

	// mux skips router middleware for unmatched routes.
	router.NotFoundHandler = mw.RequestID(middleware.WebSecurity(sessions.LoadAndSave(public(c.NotFound))))

	return router
}

// health reports whether the session store is reachable, in the API's envelope.
func health(app *config.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "healthy", http.StatusOK
		if app.Redis != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := app.Redis.Ping(ctx).Err(); err != nil {
				app.Logger.Error().Err(err).Msg("Session store health check failed")
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": code == http.StatusOK,
			"message": "Health check",
			"data":    map[string]string{"status": status},
		})
	}
}
