package handlers

import (
	"net/http"

	"webshop/internal/models"
)

// CreateOrder handles POST /api/v1/orders
// @Summary      Place an order
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      models.CreateOrderRequest  true  "Order"
// @Success      201   {object}  models.Order
// @Failure      409   {object}  apperr.Error  "Insufficient stock"
// @Router       /api/v1/orders [post]
func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	var req models.CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	order, err := h.Orders.Create(r.Context(), actor, req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	h.app.Logger.Info().
		Str("request_id", getRequestID(r.Context())).
		Str("order_id", order.ID.String()).
		Str("user_id", actor.UserID.String()).
		Float64("total", order.TotalPrice).
		Msg("Order placed")
	writeCreated(w, h.app, order, "Order created successfully")
}

// ListOrders handles GET /api/v1/orders. Filters: user_id (admin), status.
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	userID, err := queryUUID(r, "user_id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	filter := models.OrderFilter{UserID: userID}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.OrderStatus(raw)
		filter.Status = &status
	}

	orders, meta, err := h.Orders.List(r.Context(), actor, filter, pageFrom(r))
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeList(w, h.app, orders, meta, "Orders retrieved successfully")
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	order, err := h.Orders.Get(r.Context(), actor, id)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, order, "Order retrieved successfully")
}

// UpdateOrderStatus handles PUT /api/v1/orders/{id}/status
// @Summary      Change order status
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                           true  "Order ID"
// @Param        body  body      models.UpdateOrderStatusRequest  true  "New status"
// @Success      200   {object}  models.Order
// @Failure      409   {object}  apperr.Error  "Transition not allowed"
// @Router       /api/v1/orders/{id}/status [put]
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	var req models.UpdateOrderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	order, err := h.Orders.UpdateStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, order, "Order status updated successfully")
}

func (h *Handlers) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	if err := h.Orders.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, nil, "Order deleted successfully")
}

// --- Order products ---

func (h *Handlers) ListOrderProducts(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	orderID, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	lines, err := h.Orders.ListProducts(r.Context(), actor, orderID)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, lines, "Order products retrieved successfully")
}

func (h *Handlers) GetOrderProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	line, err := h.Orders.GetProduct(r.Context(), actor, id)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, line, "Order product retrieved successfully")
}

// AddOrderProduct handles POST /api/v1/orders/{id}/products; the order must be Pending.
func (h *Handlers) AddOrderProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	orderID, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	var req models.OrderItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	line, err := h.Orders.AddProduct(r.Context(), actor, orderID, req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeCreated(w, h.app, line, "Order product added successfully")
}

func (h *Handlers) UpdateOrderProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	var req models.UpdateOrderProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	line, err := h.Orders.UpdateProduct(r.Context(), actor, id, req.Quantity)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, line, "Order product updated successfully")
}

func (h *Handlers) DeleteOrderProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r.Context())
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	if err := h.Orders.RemoveProduct(r.Context(), actor, id); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, nil, "Order product removed successfully")
}
