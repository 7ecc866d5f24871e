package controllers

import (
	"net/http"
	"strings"

	"webshop/internal/models"
	"webshop/internal/web/apiclient"
	"webshop/internal/web/views"
)

func (c *Controller) Addresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := c.api.ListAddresses(r.Context(), apiclient.PageQuery{Limit: 100})
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "addresses", "Addresses", views.AddressesData{Addresses: addresses.Items})
}

func (c *Controller) NewAddress(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "address_form", "New address", views.AddressFormData{})
}

func (c *Controller) EditAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	address, err := c.api.GetAddress(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "address_form", "Edit address", views.AddressFormData{
		ID: id.String(),
		Form: models.AddressRequest{
			Street:      address.Street,
			HouseNumber: address.HouseNumber,
			PostalCode:  address.PostalCode,
			City:        address.City,
			Country:     address.Country,
			IsDefault:   address.IsDefault,
		},
	})
}

func addressForm(r *http.Request) models.AddressRequest {
	return models.AddressRequest{
		Street:      strings.TrimSpace(r.PostFormValue("street")),
		HouseNumber: strings.TrimSpace(r.PostFormValue("house_number")),
		PostalCode:  strings.TrimSpace(r.PostFormValue("postal_code")),
		City:        strings.TrimSpace(r.PostFormValue("city")),
		Country:     strings.TrimSpace(r.PostFormValue("country")),
		IsDefault:   r.PostFormValue("is_default") == "true",
	}
}

func (c *Controller) CreateAddress(w http.ResponseWriter, r *http.Request) {
	form := addressForm(r)
	if _, err := c.api.CreateAddress(r.Context(), form); err != nil {
		if msg, status, ok := formError(err); ok {
			c.renderForm(w, r, status, "address_form", "New address", msg, views.AddressFormData{Form: form})
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/addresses", "Address saved.")
}

func (c *Controller) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	form := addressForm(r)
	if _, err := c.api.UpdateAddress(r.Context(), id, form); err != nil {
		if msg, status, ok := formError(err); ok {
			c.renderForm(w, r, status, "address_form", "Edit address", msg, views.AddressFormData{ID: id.String(), Form: form})
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/addresses", "Address saved.")
}

// DeleteAddress fails with a Conflict while orders still reference the address.
func (c *Controller) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if err := c.api.DeleteAddress(r.Context(), id); err != nil {
		if msg, _, ok := formError(err); ok {
			c.redirect(w, r, "/addresses", msg)
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/addresses", "Address deleted.")
}
