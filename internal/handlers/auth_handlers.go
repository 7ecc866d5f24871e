package handlers

import (
	"net/http"
	"time"

	"webshop/internal/models"
)

const authCookieName = "jwt_token"

// Register handles user registration
// @Summary      Register
// @Description  Create a customer account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "Account"
// @Success      201   {object}  models.RegisterResponse
// @Failure      400   {object}  apperr.Error
// @Failure      409   {object}  apperr.Error
// @Router       /auth/register [post]
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())

	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.app.Logger.Warn().
			Str("request_id", requestID).
			Err(err).
			Msg("Registration validation failed")
		writeAppError(w, r, h.app, err)
		return
	}

	resp, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	h.app.Logger.Info().
		Str("request_id", requestID).
		Str("user_id", resp.UserID.String()).
		Str("username", resp.Username).
		Msg("User registered successfully")

	writeCreated(w, h.app, resp, "User registered successfully")
}

// Login authenticates a user and issues a token pair
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.LoginRequest  true  "Credentials"
// @Success      200   {object}  models.TokenPair
// @Failure      401   {object}  apperr.Error
// @Router       /auth/login [post]
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r.Context())

	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	pair, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		h.app.Logger.Warn().
			Str("request_id", requestID).
			Str("username", req.Username).
			Err(err).
			Msg("Login failed")
		writeAppError(w, r, h.app, err)
		return
	}

	h.app.Logger.Info().
		Str("request_id", requestID).
		Str("user_id", pair.User.ID.String()).
		Str("username", pair.User.Username).
		Msg("User authenticated successfully")

	h.setAuthCookie(w, pair)
	writeSuccess(w, h.app, pair, "Authentication successful")
}

// Refresh rotates a refresh token
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RefreshRequest  true  "Refresh token"
// @Success      200   {object}  models.TokenPair
// @Failure      401   {object}  apperr.Error
// @Router       /auth/refresh [post]
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	pair, err := h.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	h.setAuthCookie(w, pair)
	writeSuccess(w, h.app, pair, "Tokens refreshed")
}

// Logout revokes the refresh token and clears the auth cookie
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Param        body  body  models.RefreshRequest  true  "Refresh token"
// @Success      200
// @Router       /auth/logout [post]
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	if err := h.Auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HttpOnly: true,
		Secure:   h.app.Config.CookieSecure,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})

	writeSuccess(w, h.app, nil, "Logout successful")
}

func (h *Handlers) setAuthCookie(w http.ResponseWriter, pair *models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    pair.AccessToken,
		Expires:  time.Unix(pair.ExpiresAt, 0),
		HttpOnly: true,
		Secure:   h.app.Config.CookieSecure,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}

// Me handles GET /api/v1/me
// @Summary      Current user
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  models.User
// @Router       /api/v1/me [get]
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	user, err := h.Users.GetProfile(r.Context(), actor.UserID)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	writeSuccess(w, h.app, user, "Profile retrieved successfully")
}

// ChangePassword handles PUT /api/v1/me/password
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	var req models.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	if err := h.Users.ChangePassword(r.Context(), actor.UserID, req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	writeSuccess(w, h.app, nil, "Password updated successfully")
}
