package handlers

import (
	"net/http"

	"webshop/internal/models"
)

func (h *Handlers) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, meta, err := h.Companies.List(r.Context(), pageFrom(r))
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeList(w, h.app, companies, meta, "Companies retrieved successfully")
}

func (h *Handlers) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	company, err := h.Companies.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, company, "Company retrieved successfully")
}

func (h *Handlers) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req models.CompanyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	company, err := h.Companies.Create(r.Context(), req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeCreated(w, h.app, company, "Company created successfully")
}

func (h *Handlers) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	var req models.CompanyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	company, err := h.Companies.Update(r.Context(), id, req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, company, "Company updated successfully")
}

// DeleteCompany answers 409 while users still belong to the company.
func (h *Handlers) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	if err := h.Companies.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, nil, "Company deleted successfully")
}
