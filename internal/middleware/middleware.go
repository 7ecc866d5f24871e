// File: internal/middleware/middleware.go
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"webshop/internal/apperr"
	"webshop/internal/auth"
	"webshop/internal/config"

	"github.com/google/uuid"
)

const authCookieName = "jwt_token"

type Middleware struct {
	app    *config.Application
	issuer *auth.Issuer
}

func New(app *config.Application, issuer *auth.Issuer) *Middleware {
	return &Middleware{app: app, issuer: issuer}
}

// --- RESPONSE WRITER for logging ---
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// Flush lets streamed image responses pass through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// --- REQUEST ID MIDDLEWARE ---
func (mw *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), config.RequestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// --- LOGGING MIDDLEWARE ---
func (mw *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := getRequestID(r.Context())

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)

		logEvent := mw.app.Logger.Info()
		if wrapped.statusCode >= 400 {
			if wrapped.statusCode >= 500 {
				logEvent = mw.app.Logger.Error()
			} else {
				logEvent = mw.app.Logger.Warn()
			}
		}

		logEvent.
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", wrapped.statusCode).
			Dur("duration", duration).
			Str("ip", getClientIP(r)).
			Str("user_agent", r.UserAgent()).
			Int64("content_length", r.ContentLength).
			Int("response_size", wrapped.size).
			Msg("HTTP request processed")
	})
}

// --- RECOVERY MIDDLEWARE ---
func (mw *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				requestID := getRequestID(r.Context())

				mw.app.Logger.Error().
					Str("request_id", requestID).
					Str("panic", fmt.Sprintf("%v", err)).
					Bytes("stack", debug.Stack()).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("Panic recovered")

				writeJSONError(w, requestID, apperr.New(apperr.KindInternal, "Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// --- JWT MIDDLEWARE ---

// JWT requires a valid access token, read from the Authorization header or the
// jwt_token cookie, and puts the caller's id and roles on the context.
func (mw *Middleware) JWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := getRequestID(r.Context())

		tokenString := bearerToken(r)
		if tokenString == "" {
			mw.app.Logger.Warn().
				Str("request_id", requestID).
				Msg("Missing access token")
			writeJSONError(w, requestID, apperr.Unauthorized("Authentication required"))
			return
		}

		ctx, err := mw.authenticate(r.Context(), tokenString)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "Token has expired"
			}
			mw.app.Logger.Warn().
				Str("request_id", requestID).
				Err(err).
				Msg("Token validation failed")
			writeJSONError(w, requestID, apperr.Unauthorized(msg))
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalJWT identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (mw *Middleware) OptionalJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenString := bearerToken(r); tokenString != "" {
			if ctx, err := mw.authenticate(r.Context(), tokenString); err == nil {
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (mw *Middleware) authenticate(ctx context.Context, tokenString string) (context.Context, error) {
	claims, err := mw.issuer.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", auth.ErrTokenInvalid)
	}

	ctx = context.WithValue(ctx, config.UserIDKey, userID)
	ctx = context.WithValue(ctx, config.RolesKey, claims.Roles)
	return ctx, nil
}

// RequireRole answers 403 unless the authenticated caller has role. It must run after JWT.
func (mw *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles, _ := r.Context().Value(config.RolesKey).([]string)
			if !slices.Contains(roles, role) {
				requestID := getRequestID(r.Context())
				mw.app.Logger.Warn().
					Str("request_id", requestID).
					Str("path", r.URL.Path).
					Str("required_role", role).
					Msg("Access denied")
				writeJSONError(w, requestID, apperr.Forbidden("this action requires the "+role+" role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(authCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// --- SECURITY MIDDLEWARE ---

// WebContentPolicy lets the shop pages use their inline stylesheet, images
// served from the same origin and forms posting back to it.
const WebContentPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self'; form-action 'self'; frame-ancestors 'none'"

func Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w.Header())
		// The swagger UI needs inline scripts; everything else is JSON.
		if !strings.HasPrefix(r.URL.Path, "/swagger/") {
			w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		}

		next.ServeHTTP(w, r)
	})
}

// WebSecurity sets the security headers for the HTML front-end.
func WebSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w.Header())
		w.Header().Set("Content-Security-Policy", WebContentPolicy)

		next.ServeHTTP(w, r)
	})
}

func setSecurityHeaders(h http.Header) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
	h.Set("Server", "")
}

// --- TIMEOUT MIDDLEWARE ---

// Timeout puts a deadline on the request context; the database and storage
// calls made by the handlers give up when it passes.
func (mw *Middleware) Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				mw.app.Logger.Warn().
					Str("request_id", getRequestID(r.Context())).
					Dur("timeout", timeout).
					Msg("Request timeout")
			}
		})
	}
}

// --- HELPER FUNCTIONS ---

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(config.RequestIDKey).(string); ok {
		return requestID
	}
	return "unknown"
}

func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if colon := strings.LastIndex(ip, ":"); colon != -1 {
		ip = ip[:colon]
	}
	return ip
}

// writeJSONError writes the same envelope as the handlers.
func writeJSONError(w http.ResponseWriter, requestID string, appErr *apperr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    false,
		"message":    appErr.Message,
		"error":      appErr.Message,
		"fault":      appErr,
		"request_id": requestID,
	})
}
