package session

import (
	"net/http"
	"net/url"

	"webshop/internal/web/apiclient"
)

// RequireLogin redirects to the login page unless the session yields an
// access token, which is then attached to the request context for API calls.
func (sm *StateManager) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := sm.AccessToken(r.Context())
		if err != nil {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(apiclient.WithAccessToken(r.Context(), token)))
	})
}

// OptionalLogin attaches the access token when there is one and serves
// anonymous visitors otherwise.
func (sm *StateManager) OptionalLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, err := sm.AccessToken(r.Context()); err == nil {
			r = r.WithContext(apiclient.WithAccessToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 403 unless the signed-in user is an administrator. It runs after RequireLogin.
func (sm *StateManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sm.User(r.Context()).IsAdmin() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
