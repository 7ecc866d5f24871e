package models

import (
	"slices"

	"github.com/google/uuid"
)

// Role names seeded on startup.
const (
	RoleAdmin    = "Admin"
	RoleCustomer = "Customer"
)

// Actor is the authenticated caller of a service method.
type Actor struct {
	UserID uuid.UUID
	Roles  []string
}

// IsAdmin reports whether the actor carries the Admin role.
func (a Actor) IsAdmin() bool {
	return slices.Contains(a.Roles, RoleAdmin)
}

// CanAccess reports whether the actor may touch a resource owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.UserID == ownerID
}

// PageRequest holds the page/limit query parameters of a list endpoint.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit to sane values.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 10
	}
	return p
}

// Offset returns the SQL offset of the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PaginationMetadata describes where a page sits in the full result.
type PaginationMetadata struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewPaginationMetadata computes the metadata for a normalized page.
func NewPaginationMetadata(p PageRequest, totalCount int) *PaginationMetadata {
	totalPages := (totalCount + p.Limit - 1) / p.Limit
	return &PaginationMetadata{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}

// ListResponse is the body of every list endpoint.
type ListResponse[T any] struct {
	Items      []T                 `json:"items"`
	Pagination *PaginationMetadata `json:"pagination"`
}
