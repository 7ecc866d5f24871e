package models

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Street      string    `json:"street"`
	HouseNumber string    `json:"house_number"`
	PostalCode  string    `json:"postal_code"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
}

// AddressRequest creates or replaces an address. UserID is only honoured for
// administrators; customers always write their own addresses.
type AddressRequest struct {
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Street      string     `json:"street" validate:"required,max=200"`
	HouseNumber string     `json:"house_number" validate:"required,max=20"`
	PostalCode  string     `json:"postal_code" validate:"required,max=20"`
	City        string     `json:"city" validate:"required,max=100"`
	Country     string     `json:"country" validate:"required,max=100"`
	IsDefault   bool       `json:"is_default"`
}

type AddressFilter struct {
	UserID *uuid.UUID
}
