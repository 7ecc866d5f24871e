package handlers

import (
	"net/http"

	"webshop/internal/models"
)

// ListRoles handles GET /api/v1/roles
// @Summary      List roles
// @Tags         roles
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  models.Role
// @Router       /api/v1/roles [get]
func (h *Handlers) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Roles.List(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, roles, "Roles retrieved successfully")
}

func (h *Handlers) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	role, err := h.Roles.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, role, "Role retrieved successfully")
}

func (h *Handlers) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req models.RoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	role, err := h.Roles.Create(r.Context(), req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeCreated(w, h.app, role, "Role created successfully")
}

func (h *Handlers) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	var req models.RoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	role, err := h.Roles.Update(r.Context(), id, req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, role, "Role updated successfully")
}

func (h *Handlers) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	if err := h.Roles.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, nil, "Role deleted successfully")
}
