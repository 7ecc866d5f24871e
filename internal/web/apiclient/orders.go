package apiclient

import (
	"context"
	"net/http"

	"webshop/internal/models"

	"github.com/google/uuid"
)

// OrderQuery holds the list filters of GET /api/v1/orders.
type OrderQuery struct {
	PageQuery
	UserID *uuid.UUID
	Status models.OrderStatus
}

func (c *Client) ListOrders(ctx context.Context, q OrderQuery) (*Page[models.Order], error) {
	v := q.values()
	if q.UserID != nil {
		v.Set("user_id", q.UserID.String())
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	var out Page[models.Order]
	if err := c.do(ctx, http.MethodGet, "/api/v1/orders", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodGet, idPath("/api/v1/orders/%s", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodPost, "/api/v1/orders", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodPut, idPath("/api/v1/orders/%s/status", id), nil, models.UpdateOrderStatusRequest{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/v1/orders/%s", id), nil, nil, nil)
}

// --- Order products ---

func (c *Client) ListOrderProducts(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error) {
	var out []models.OrderProduct
	if err := c.do(ctx, http.MethodGet, idPath("/api/v1/orders/%s/products", orderID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddOrderProduct(ctx context.Context, orderID uuid.UUID, req models.OrderItemRequest) (*models.OrderProduct, error) {
	var out models.OrderProduct
	if err := c.do(ctx, http.MethodPost, idPath("/api/v1/orders/%s/products", orderID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderProduct(ctx context.Context, id uuid.UUID, quantity int) (*models.OrderProduct, error) {
	var out models.OrderProduct
	if err := c.do(ctx, http.MethodPut, idPath("/api/v1/order-products/%s", id), nil, models.UpdateOrderProductRequest{Quantity: quantity}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteOrderProduct(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/v1/order-products/%s", id), nil, nil, nil)
}
