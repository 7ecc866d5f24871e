package controllers

import (
	"net/http"
	"strings"

	"webshop/internal/apperr"
	"webshop/internal/models"
	"webshop/internal/web/apiclient"
	"webshop/internal/web/views"
)

func (c *Controller) LoginForm(w http.ResponseWriter, r *http.Request) {
	if c.state.User(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	c.render(w, r, http.StatusOK, "login", "Sign in", views.AuthFormData{Next: r.URL.Query().Get("next")})
}

func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	form := views.AuthFormData{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Next:     r.PostFormValue("next"),
	}

	pair, err := c.api.Login(r.Context(), models.LoginRequest{Username: form.Username, Password: r.PostFormValue("password")})
	if err != nil {
		if apiclient.IsKind(err, apperr.KindUnauthorized) {
			c.renderForm(w, r, http.StatusUnauthorized, "login", "Sign in", "Invalid username or password.", form)
			return
		}
		if msg, status, ok := formError(err); ok {
			c.renderForm(w, r, status, "login", "Sign in", msg, form)
			return
		}
		c.fail(w, r, err)
		return
	}

	if err := c.state.SignIn(r.Context(), pair); err != nil {
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, safeNext(form.Next), "Welcome back, "+pair.User.Username+".")
}

func (c *Controller) RegisterForm(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "register", "Register", views.AuthFormData{})
}

// Register creates the account and signs the new customer in.
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	form := views.AuthFormData{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
	}
	password := r.PostFormValue("password")

	_, err := c.api.Register(r.Context(), models.RegisterRequest{
		Username:  form.Username,
		Email:     form.Email,
		Password:  password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
	})
	if err != nil {
		if msg, status, ok := formError(err); ok {
			c.renderForm(w, r, status, "register", "Register", msg, form)
			return
		}
		c.fail(w, r, err)
		return
	}

	pair, err := c.api.Login(r.Context(), models.LoginRequest{Username: form.Username, Password: password})
	if err != nil {
		c.redirect(w, r, "/login", "Your account was created. Please sign in.")
		return
	}
	if err := c.state.SignIn(r.Context(), pair); err != nil {
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/", "Welcome, "+pair.User.Username+"!")
}

// Logout revokes the refresh token at the API and forgets the session.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	if refreshToken := c.state.RefreshToken(r.Context()); refreshToken != "" {
		if err := c.api.Logout(r.Context(), refreshToken); err != nil {
			c.logger.Warn().Err(err).Msg("API logout failed")
		}
	}
	if err := c.state.SignOut(r.Context()); err != nil {
		c.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (c *Controller) Account(w http.ResponseWriter, r *http.Request) {
	user, err := c.api.Me(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}

	data := views.AccountData{User: user}
	if user.CompanyID != nil {
		if company, err := c.api.GetCompany(r.Context(), *user.CompanyID); err == nil {
			data.Company = company
		}
	}
	c.render(w, r, http.StatusOK, "account", user.Username, data)
}

// ChangePassword signs the user out afterwards because the API revokes every
// refresh token of the account.
func (c *Controller) ChangePassword(w http.ResponseWriter, r *http.Request) {
	err := c.api.ChangePassword(r.Context(), models.ChangePasswordRequest{
		CurrentPassword: r.PostFormValue("current_password"),
		NewPassword:     r.PostFormValue("new_password"),
	})
	if err != nil {
		message, status, ok := formError(err)
		if apiclient.IsKind(err, apperr.KindUnauthorized) {
			message, status, ok = "Your current password is incorrect.", http.StatusUnauthorized, true
		}
		if !ok {
			c.fail(w, r, err)
			return
		}
		user, meErr := c.api.Me(r.Context())
		if meErr != nil {
			c.fail(w, r, meErr)
			return
		}
		c.renderForm(w, r, status, "account", user.Username, message, views.AccountData{User: user})
		return
	}

	if err := c.state.SignOut(r.Context()); err != nil {
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/login", "Your password was changed. Please sign in again.")
}
