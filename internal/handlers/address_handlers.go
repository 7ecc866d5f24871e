package handlers

import (
	"net/http"

	"webshop/internal/models"
)

// ListAddresses handles GET /api/v1/addresses. Administrators may filter by user_id.
// @Summary      List addresses
// @Tags         addresses
// @Security     Bearer
// @Produce      json
// @Param        user_id  query  string  false  "Owner (admin only)"
// @Success      200  {object}  models.ListResponse[models.Address]
// @Router       /api/v1/addresses [get]
func (h *Handlers) ListAddresses(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	userID, err := queryUUID(r, "user_id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	addresses, meta, err := h.Addresses.List(r.Context(), actor, models.AddressFilter{UserID: userID}, pageFrom(r))
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeList(w, h.app, addresses, meta, "Addresses retrieved successfully")
}

func (h *Handlers) GetAddress(w http.ResponseWriter, r *http.Request) {
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

	address, err := h.Addresses.Get(r.Context(), actor, id)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, address, "Address retrieved successfully")
}

func (h *Handlers) CreateAddress(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	var req models.AddressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	address, err := h.Addresses.Create(r.Context(), actor, req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeCreated(w, h.app, address, "Address created successfully")
}

func (h *Handlers) UpdateAddress(w http.ResponseWriter, r *http.Request) {
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
	var req models.AddressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	address, err := h.Addresses.Update(r.Context(), actor, id, req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, address, "Address updated successfully")
}

func (h *Handlers) DeleteAddress(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Addresses.Delete(r.Context(), actor, id); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, nil, "Address deleted successfully")
}
