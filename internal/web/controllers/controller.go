// Package controllers implements the front-end pages on top of the API client.
package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"webshop/internal/apperr"
	"webshop/internal/web/apiclient"
	"webshop/internal/web/session"
	"webshop/internal/web/views"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type Controller struct {
	api    *apiclient.Client
	state  *session.StateManager
	views  *views.Renderer
	logger zerolog.Logger
}

func New(api *apiclient.Client, state *session.StateManager, renderer *views.Renderer, logger zerolog.Logger) *Controller {
	return &Controller{api: api, state: state, views: renderer, logger: logger}
}

func (c *Controller) page(r *http.Request, title string, data interface{}) *views.Page {
	ctx := r.Context()
	count := 0
	for _, item := range c.state.Cart(ctx) {
		count += item.Quantity
	}
	return &views.Page{
		Title:     title,
		User:      c.state.User(ctx),
		Flash:     c.state.PopFlash(ctx),
		CartCount: count,
		Data:      data,
	}
}

func (c *Controller) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data interface{}) {
	c.views.Render(w, status, name, c.page(r, title, data))
}

// renderForm shows a form again together with the reason it was rejected.
func (c *Controller) renderForm(w http.ResponseWriter, r *http.Request, status int, name, title, message string, data interface{}) {
	p := c.page(r, title, data)
	p.Error = message
	c.views.Render(w, status, name, p)
}

// formError returns the message of errors a user can fix by editing the form.
func formError(err error) (string, int, bool) {
	appErr, ok := apperr.As(err)
	if !ok {
		return "", 0, false
	}
	switch appErr.Kind {
	case apperr.KindValidation, apperr.KindBadRequest, apperr.KindConflict:
		return appErr.Message, appErr.HTTPStatus(), true
	}
	return "", 0, false
}

// fail turns an API error into the matching page: sign in again for
// Unauthorized, the not-found page for NotFound and the error page otherwise.
func (c *Controller) fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal("web", err)
	}

	logEvent := c.logger.Warn()
	if appErr.HTTPStatus() >= 500 {
		logEvent = c.logger.Error()
	}
	logEvent.
		Err(err).
		Str("kind", appErr.Kind.String()).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Page request failed")

	switch appErr.Kind {
	case apperr.KindUnauthorized:
		if err := c.state.SignOut(r.Context()); err != nil {
			c.logger.Error().Err(err).Msg("Failed to clear session")
		}
		http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
	case apperr.KindNotFound:
		c.render(w, r, http.StatusNotFound, "error", "Not found", views.ErrorData{Status: http.StatusNotFound, Message: appErr.Message})
	default:
		message := appErr.Message
		if appErr.HTTPStatus() >= 500 {
			message = "We could not complete your request. Please try again later."
		}
		c.render(w, r, appErr.HTTPStatus(), "error", "Error", views.ErrorData{Status: appErr.HTTPStatus(), Message: message})
	}
}

// NotFound renders the 404 page for unknown routes.
func (c *Controller) NotFound(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusNotFound, "error", "Not found", views.ErrorData{Status: http.StatusNotFound, Message: "The page you requested does not exist."})
}

func (c *Controller) redirect(w http.ResponseWriter, r *http.Request, to, flash string) {
	if flash != "" {
		c.state.Flash(r.Context(), flash)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, apperr.NotFound("page not found")
	}
	return id, nil
}

func formUUID(r *http.Request, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(r.PostFormValue(field)))
	if err != nil {
		return uuid.Nil, apperr.Validation(field + " is invalid")
	}
	return id, nil
}

// safeNext only allows redirects to local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
