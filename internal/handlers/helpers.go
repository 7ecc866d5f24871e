package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"webshop/internal/apperr"
	"webshop/internal/config"
	"webshop/internal/models"
	"webshop/internal/validation"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// maxBodyBytes caps JSON request bodies; image uploads have their own limit.
const maxBodyBytes = 1 << 20

// --- Helper Functions ---

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(config.RequestIDKey).(string); ok {
		return requestID
	}
	return "unknown"
}

// actorFrom returns the authenticated caller placed on the context by the JWT middleware.
func actorFrom(ctx context.Context) (models.Actor, error) {
	userID, ok := ctx.Value(config.UserIDKey).(uuid.UUID)
	if !ok {
		return models.Actor{}, apperr.Unauthorized("authentication required")
	}
	roles, _ := ctx.Value(config.RolesKey).([]string)
	return models.Actor{UserID: userID, Roles: roles}, nil
}

func writeJSON(w http.ResponseWriter, app *config.Application, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.Logger.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func writeResponse(w http.ResponseWriter, app *config.Application, status int, success bool, data interface{}, message string) {
	response := map[string]interface{}{
		"success": success,
		"message": message,
	}

	if data != nil {
		response["data"] = data
	}

	if !success {
		response["error"] = message
	}

	writeJSON(w, app, status, response)
}

func writeSuccess(w http.ResponseWriter, app *config.Application, data interface{}, message string) {
	writeResponse(w, app, http.StatusOK, true, data, message)
}

func writeCreated(w http.ResponseWriter, app *config.Application, data interface{}, message string) {
	writeResponse(w, app, http.StatusCreated, true, data, message)
}

func writeList[T any](w http.ResponseWriter, app *config.Application, items []T, meta *models.PaginationMetadata, message string) {
	if items == nil {
		items = []T{}
	}
	writeSuccess(w, app, models.ListResponse[T]{Items: items, Pagination: meta}, message)
}

// writeAppError maps err onto the error envelope. The fault carries the typed
// error so that clients can rebuild it.
func writeAppError(w http.ResponseWriter, r *http.Request, app *config.Application, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal("handlers", err)
	}
	status := appErr.HTTPStatus()
	requestID := getRequestID(r.Context())

	if status >= http.StatusInternalServerError {
		app.Logger.Error().
			Str("request_id", requestID).
			Str("path", r.URL.Path).
			Err(err).
			Msg("Request failed")
	} else {
		app.Logger.Debug().
			Str("request_id", requestID).
			Str("kind", appErr.Kind.String()).
			Str("error", appErr.Error()).
			Msg("Request rejected")
	}

	writeJSON(w, app, status, map[string]interface{}{
		"success": false,
		"message": appErr.Message,
		"error":   appErr.Message,
		"fault":   appErr,
	})
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.BadRequest("request body is empty")
		}
		return apperr.Wrap(apperr.KindBadRequest, "Invalid request format", err)
	}
	return validation.ValidateStruct(dst)
}

// pathUUID parses a UUID route variable.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, apperr.BadRequest("invalid " + name)
	}
	return id, nil
}

// queryUUID parses an optional UUID query parameter.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.BadRequest("invalid " + name)
	}
	return &id, nil
}

// queryFloat parses an optional float query parameter.
func queryFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.BadRequest(name + " must be a number")
	}
	return &v, nil
}

// pageFrom reads page and limit; the services normalize them.
func pageFrom(r *http.Request) models.PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return models.PageRequest{Page: page, Limit: limit}
}
