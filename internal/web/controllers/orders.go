package controllers

import (
	"net/http"

	"webshop/internal/models"
	"webshop/internal/web/apiclient"
	"webshop/internal/web/views"

	"github.com/google/uuid"
)

func (c *Controller) Orders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")

	orders, err := c.api.ListOrders(r.Context(), apiclient.OrderQuery{
		PageQuery: apiclient.PageQuery{Page: atoi(q.Get("page")), Limit: pageSize},
		UserID:    c.ownID(r),
		Status:    models.OrderStatus(status),
	})
	if err != nil {
		c.fail(w, r, err)
		return
	}

	c.render(w, r, http.StatusOK, "orders", "My orders", views.OrdersData{
		Orders:     orders.Items,
		Pagination: orders.Pagination,
		Status:     status,
		BaseQuery:  baseQuery(q),
	})
}

// ownID limits administrators to their own orders on the customer pages.
func (c *Controller) ownID(r *http.Request) *uuid.UUID {
	user := c.state.User(r.Context())
	if user == nil || !user.IsAdmin() {
		return nil
	}
	return &user.ID
}

func (c *Controller) Order(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	order, err := c.api.GetOrder(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	data := views.OrderData{Order: order}
	if address, err := c.api.GetAddress(r.Context(), order.AddressID); err == nil {
		data.Address = address
	}
	c.render(w, r, http.StatusOK, "order", "Order", data)
}

// CancelOrder cancels a Pending order of the signed-in customer.
func (c *Controller) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	if _, err := c.api.UpdateOrderStatus(r.Context(), id, models.OrderCancelled); err != nil {
		if msg, _, ok := formError(err); ok {
			c.redirect(w, r, "/orders/"+id.String(), msg)
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/orders/"+id.String(), "Your order was cancelled.")
}
