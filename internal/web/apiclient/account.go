package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"webshop/internal/models"

	"github.com/google/uuid"
)

// --- Addresses ---

func (c *Client) ListAddresses(ctx context.Context, page PageQuery) (*Page[models.Address], error) {
	var out Page[models.Address]
	if err := c.do(ctx, http.MethodGet, "/api/v1/addresses", page.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAddress(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var out models.Address
	if err := c.do(ctx, http.MethodGet, idPath("/api/v1/addresses/%s", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAddress(ctx context.Context, req models.AddressRequest) (*models.Address, error) {
	var out models.Address
	if err := c.do(ctx, http.MethodPost, "/api/v1/addresses", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAddress(ctx context.Context, id uuid.UUID, req models.AddressRequest) (*models.Address, error) {
	var out models.Address
	if err := c.do(ctx, http.MethodPut, idPath("/api/v1/addresses/%s", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/v1/addresses/%s", id), nil, nil, nil)
}

// --- Companies ---

func (c *Client) ListCompanies(ctx context.Context, page PageQuery) (*Page[models.Company], error) {
	var out Page[models.Company]
	if err := c.do(ctx, http.MethodGet, "/api/v1/companies", page.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var out models.Company
	if err := c.do(ctx, http.MethodGet, idPath("/api/v1/companies/%s", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCompany(ctx context.Context, req models.CompanyRequest) (*models.Company, error) {
	var out models.Company
	if err := c.do(ctx, http.MethodPost, "/api/v1/companies", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCompany(ctx context.Context, id uuid.UUID, req models.CompanyRequest) (*models.Company, error) {
	var out models.Company
	if err := c.do(ctx, http.MethodPut, idPath("/api/v1/companies/%s", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/v1/companies/%s", id), nil, nil, nil)
}

// --- Users and roles ---

func (c *Client) ListUsers(ctx context.Context, search string, page PageQuery) (*Page[models.User], error) {
	v := page.values()
	if search != "" {
		v.Set("search", search)
	}
	var out Page[models.User]
	if err := c.do(ctx, http.MethodGet, "/api/v1/users", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, idPath("/api/v1/users/%s", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id uuid.UUID, req models.UpdateUserRequest) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPut, idPath("/api/v1/users/%s", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/v1/users/%s", id), nil, nil, nil)
}

func (c *Client) AssignRole(ctx context.Context, userID uuid.UUID, role string) error {
	return c.do(ctx, http.MethodPost, idPath("/api/v1/users/%s/roles", userID), nil, models.AssignRoleRequest{Role: role}, nil)
}

func (c *Client) RemoveRole(ctx context.Context, userID uuid.UUID, role string) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/v1/users/%s/roles/", userID)+url.PathEscape(role), nil, nil, nil)
}

func (c *Client) ListRoles(ctx context.Context) ([]models.Role, error) {
	var out []models.Role
	if err := c.do(ctx, http.MethodGet, "/api/v1/roles", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	var out models.Role
	if err := c.do(ctx, http.MethodPost, "/api/v1/roles", nil, models.RoleRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRole(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/v1/roles/%s", id), nil, nil, nil)
}
