package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	PhoneNumber  string     `json:"phone_number" db:"phone_number"`
	CompanyID    *uuid.UUID `json:"company_id,omitempty" db:"company_id"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never serialize to JSON
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	Roles        []string   `json:"roles"`
}

// UserFilter narrows a user listing.
type UserFilter struct {
	Search    string
	CompanyID *uuid.UUID
}

// CreateUserRequest is used by administrators to create accounts.
type CreateUserRequest struct {
	Username    string     `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email       string     `json:"email" validate:"required,email,max=100"`
	Password    string     `json:"password" validate:"required,min=8,max=128,password"`
	FirstName   string     `json:"first_name" validate:"max=100"`
	LastName    string     `json:"last_name" validate:"max=100"`
	PhoneNumber string     `json:"phone_number" validate:"omitempty,max=30"`
	CompanyID   *uuid.UUID `json:"company_id,omitempty"`
	Roles       []string   `json:"roles" validate:"omitempty,dive,min=2,max=50"`
}

// UpdateUserRequest represents a user update request
type UpdateUserRequest struct {
	Username    *string    `json:"username,omitempty" validate:"omitempty,min=3,max=50,alphanum"`
	Email       *string    `json:"email,omitempty" validate:"omitempty,email,max=100"`
	FirstName   *string    `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName    *string    `json:"last_name,omitempty" validate:"omitempty,max=100"`
	PhoneNumber *string    `json:"phone_number,omitempty" validate:"omitempty,max=30"`
	CompanyID   *uuid.UUID `json:"company_id,omitempty"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128,password"`
}

// AssignRoleRequest adds a role to a user.
type AssignRoleRequest struct {
	Role string `json:"role" validate:"required,min=2,max=50"`
}

// UserSummary is the user part of a login response.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Roles    []string  `json:"roles"`
}
