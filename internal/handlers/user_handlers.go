package handlers

import (
	"net/http"

	"webshop/internal/models"
	"webshop/internal/validation"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// GetUsers handles GET /api/v1/users with pagination
// @Summary      List users
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        page        query  int     false  "Page"
// @Param        limit       query  int     false  "Page size"
// @Param        search      query  string  false  "Username, email or name"
// @Param        company_id  query  string  false  "Company"
// @Success      200  {object}  models.ListResponse[models.User]
// @Router       /api/v1/users [get]
func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	companyID, err := queryUUID(r, "company_id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	filter := models.UserFilter{Search: r.URL.Query().Get("search"), CompanyID: companyID}

	users, meta, err := h.Users.List(r.Context(), filter, pageFrom(r))
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	writeList(w, h.app, users, meta, "Users retrieved successfully")
}

// GetUser handles GET /api/v1/users/{id}
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	tracer := otel.Tracer("handlers")
	ctx, span := tracer.Start(r.Context(), "Handlers.GetUser")
	defer span.End()

	actor, err := actorFrom(ctx)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	span.SetAttributes(attribute.String("user.id", id.String()))

	user, err := h.Users.Get(ctx, actor, id)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	writeSuccess(w, h.app, user, "User retrieved successfully")
}

// CreateUser handles POST /api/v1/users
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	user, err := h.Users.Create(r.Context(), req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	h.app.Logger.Info().
		Str("request_id", getRequestID(r.Context())).
		Str("user_id", user.ID.String()).
		Msg("User created")
	writeCreated(w, h.app, user, "User created successfully")
}

// UpdateUser handles PUT /api/v1/users/{id}
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	var req models.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	user, err := h.Users.Update(r.Context(), actor, id, req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	writeSuccess(w, h.app, user, "User updated successfully")
}

// DeleteUser handles DELETE /api/v1/users/{id}; the account is deactivated.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	if err := h.Users.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	writeSuccess(w, h.app, nil, "User deactivated successfully")
}

// AssignRole handles POST /api/v1/users/{id}/roles
func (h *Handlers) AssignRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	var req models.AssignRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	if err := h.Users.AssignRole(r.Context(), id, req.Role); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	writeSuccess(w, h.app, nil, "Role assigned successfully")
}

// RemoveRole handles DELETE /api/v1/users/{id}/roles/{role}
func (h *Handlers) RemoveRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	role := validation.SanitizeString(mux.Vars(r)["role"])

	if err := h.Users.RemoveRole(r.Context(), id, role); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	writeSuccess(w, h.app, nil, "Role removed successfully")
}
