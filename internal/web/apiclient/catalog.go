package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"webshop/internal/models"

	"github.com/google/uuid"
)

// ProductQuery holds the list filters of GET /api/v1/products.
type ProductQuery struct {
	PageQuery
	CategoryID      *uuid.UUID
	Search          string
	MinPrice        *float64
	MaxPrice        *float64
	Sort            string
	Order           string
	IncludeInactive bool
}

func (c *Client) ListCategories(ctx context.Context, page PageQuery) (*Page[models.Category], error) {
	var out Page[models.Category]
	if err := c.do(ctx, http.MethodGet, "/api/v1/categories", page.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var out models.Category
	if err := c.do(ctx, http.MethodGet, idPath("/api/v1/categories/%s", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	var out models.Category
	if err := c.do(ctx, http.MethodPost, "/api/v1/categories", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id uuid.UUID, req models.CategoryRequest) (*models.Category, error) {
	var out models.Category
	if err := c.do(ctx, http.MethodPut, idPath("/api/v1/categories/%s", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/v1/categories/%s", id), nil, nil, nil)
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*Page[models.Product], error) {
	v := q.values()
	if q.CategoryID != nil {
		v.Set("category_id", q.CategoryID.String())
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.MinPrice != nil {
		v.Set("min_price", strconv.FormatFloat(*q.MinPrice, 'f', 2, 64))
	}
	if q.MaxPrice != nil {
		v.Set("max_price", strconv.FormatFloat(*q.MaxPrice, 'f', 2, 64))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.IncludeInactive {
		v.Set("include_inactive", "true")
	}

	var out Page[models.Product]
	if err := c.do(ctx, http.MethodGet, "/api/v1/products", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodGet, idPath("/api/v1/products/%s", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPost, "/api/v1/products", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uuid.UUID, req models.ProductRequest) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodPut, idPath("/api/v1/products/%s", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/v1/products/%s", id), nil, nil, nil)
}
