package models

import (
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	VatNumber   string    `json:"vat_number"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Website     string    `json:"website"`
	CreatedAt   time.Time `json:"created_at"`
}

type CompanyRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=150"`
	VatNumber   string `json:"vat_number" validate:"omitempty,max=30"`
	Email       string `json:"email" validate:"omitempty,email,max=100"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=30"`
	Website     string `json:"website" validate:"omitempty,url,max=200"`
}
