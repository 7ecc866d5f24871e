package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"webshop/internal/apperr"
	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const notificationTimeout = 30 * time.Second

type OrderService struct {
	orders    core.OrderRepository
	addresses core.AddressRepository
	users     core.UserRepository
	notifier  core.OrderNotifier
	logger    zerolog.Logger

	// stockChanged is told about every product whose stock moved.
	stockChanged func(productID uuid.UUID)
}

func NewOrderService(orders core.OrderRepository, addresses core.AddressRepository, users core.UserRepository, notifier core.OrderNotifier, logger zerolog.Logger) *OrderService {
	return &OrderService{
		orders:       orders,
		addresses:    addresses,
		users:        users,
		notifier:     notifier,
		logger:       logger,
		stockChanged: func(uuid.UUID) {},
	}
}

// OnStockChange registers fn to be called after a committed stock change.
func (s *OrderService) OnStockChange(fn func(productID uuid.UUID)) {
	s.stockChanged = fn
}

// Create places an order for the actor. Stock is checked and decremented under
// row locks in the same transaction that writes the order.
func (s *OrderService) Create(ctx context.Context, actor models.Actor, req models.CreateOrderRequest) (*models.Order, error) {
	items := mergeItems(req.Items)

	address, err := s.addresses.GetByID(ctx, req.AddressID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Validation("address does not exist").WithOp("orders.create")
		}
		return nil, err
	}
	if address.UserID != actor.UserID {
		return nil, apperr.Forbidden("address does not belong to you").WithOp("orders.create")
	}

	order := &models.Order{
		ID:        uuid.New(),
		UserID:    actor.UserID,
		AddressID: address.ID,
		Status:    models.OrderPending,
	}

	err = s.orders.InTx(ctx, func(store core.OrderStore) error {
		ids := make([]uuid.UUID, len(items))
		for i, item := range items {
			ids[i] = item.ProductID
		}
		products, err := store.LockProducts(ctx, ids)
		if err != nil {
			return err
		}

		lines := make([]models.OrderProduct, 0, len(items))
		var total float64
		for _, item := range items {
			product, err := reserve(products, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			line := models.OrderProduct{
				ID:          uuid.New(),
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   product.Price,
				LineTotal:   roundMoney(product.Price * float64(item.Quantity)),
			}
			total += line.LineTotal
			lines = append(lines, line)
		}
		order.TotalPrice = roundMoney(total)

		if err := store.InsertOrder(ctx, order); err != nil {
			return err
		}
		for i := range lines {
			if err := store.AdjustStock(ctx, lines[i].ProductID, -lines[i].Quantity); err != nil {
				return err
			}
			if err := store.InsertLine(ctx, &lines[i]); err != nil {
				return err
			}
		}
		order.Products = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, line := range order.Products {
		s.stockChanged(line.ProductID)
	}
	s.notify(ctx, order)

	return order, nil
}

func (s *OrderService) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(order.UserID) {
		return nil, apperr.Forbidden("you can only access your own orders").WithOp("orders.get")
	}

	order.Products, err = s.orders.ListLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// List returns the actor's orders; administrators see every order.
func (s *OrderService) List(ctx context.Context, actor models.Actor, filter models.OrderFilter, page models.PageRequest) ([]models.Order, *models.PaginationMetadata, error) {
	page = page.Normalize()
	if !actor.IsAdmin() {
		filter.UserID = &actor.UserID
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, nil, apperr.Validation("unknown order status " + string(*filter.Status)).WithOp("orders.list")
	}

	orders, err := s.orders.ListOrders(ctx, filter, page)
	if err != nil {
		return nil, nil, err
	}
	totalCount, err := s.orders.CountOrders(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return orders, models.NewPaginationMetadata(page, totalCount), nil
}

// UpdateStatus moves the order along its lifecycle. Customers may only cancel
// their own pending orders. Cancelling returns the reserved stock.
func (s *OrderService) UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.Validation("unknown order status " + string(status)).WithOp("orders.update_status")
	}

	var updated *models.Order
	var restored []models.OrderProduct
	err := s.orders.InTx(ctx, func(store core.OrderStore) error {
		order, err := store.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(order.UserID) {
			return apperr.Forbidden("you can only access your own orders").WithOp("orders.update_status")
		}
		if !actor.IsAdmin() && (status != models.OrderCancelled || order.Status != models.OrderPending) {
			return apperr.Forbidden("customers can only cancel pending orders").WithOp("orders.update_status")
		}
		if !order.Status.CanTransitionTo(status) {
			return apperr.Conflict(fmt.Sprintf("cannot change order status from %s to %s", order.Status, status)).
				WithOp("orders.update_status")
		}

		lines, err := store.ListLines(ctx, id)
		if err != nil {
			return err
		}
		if status == models.OrderCancelled {
			if err := restoreStock(ctx, store, lines); err != nil {
				return err
			}
			restored = lines
		}
		if err := store.UpdateOrderStatus(ctx, id, status); err != nil {
			return err
		}

		updated, err = store.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		updated.Products = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, line := range restored {
		s.stockChanged(line.ProductID)
	}
	s.logger.Info().Str("order_id", id.String()).Str("status", string(status)).Msg("Order status changed")
	return updated, nil
}

// Delete removes a pending or cancelled order; a pending order returns its stock.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	var restored []models.OrderProduct
	err := s.orders.InTx(ctx, func(store core.OrderStore) error {
		order, err := store.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		switch order.Status {
		case models.OrderPending:
			lines, err := store.ListLines(ctx, id)
			if err != nil {
				return err
			}
			if err := restoreStock(ctx, store, lines); err != nil {
				return err
			}
			restored = lines
		case models.OrderCancelled:
		default:
			return apperr.Conflict("only pending or cancelled orders can be deleted").WithOp("orders.delete")
		}
		return store.DeleteOrder(ctx, id)
	})
	if err != nil {
		return err
	}

	for _, line := range restored {
		s.stockChanged(line.ProductID)
	}
	return nil
}

// --- Order products ---

func (s *OrderService) ListProducts(ctx context.Context, actor models.Actor, orderID uuid.UUID) ([]models.OrderProduct, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(order.UserID) {
		return nil, apperr.Forbidden("you can only access your own orders").WithOp("order_products.list")
	}
	return s.orders.ListLines(ctx, orderID)
}

func (s *OrderService) GetProduct(ctx context.Context, actor models.Actor, lineID uuid.UUID) (*models.OrderProduct, error) {
	line, err := s.orders.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetOrder(ctx, line.OrderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(order.UserID) {
		return nil, apperr.Forbidden("you can only access your own orders").WithOp("order_products.get")
	}
	return line, nil
}

// AddProduct adds a line to a pending order and reserves its stock.
func (s *OrderService) AddProduct(ctx context.Context, actor models.Actor, orderID uuid.UUID, item models.OrderItemRequest) (*models.OrderProduct, error) {
	var line *models.OrderProduct
	err := s.orders.InTx(ctx, func(store core.OrderStore) error {
		if _, err := lockPendingOrder(ctx, store, actor, orderID); err != nil {
			return err
		}

		products, err := store.LockProducts(ctx, []uuid.UUID{item.ProductID})
		if err != nil {
			return err
		}
		product, err := reserve(products, item.ProductID, item.Quantity)
		if err != nil {
			return err
		}

		line = &models.OrderProduct{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			LineTotal:   roundMoney(product.Price * float64(item.Quantity)),
		}
		if err := store.InsertLine(ctx, line); err != nil {
			return err
		}
		if err := store.AdjustStock(ctx, product.ID, -item.Quantity); err != nil {
			return err
		}
		return recalculateTotal(ctx, store, orderID)
	})
	if err != nil {
		return nil, err
	}

	s.stockChanged(line.ProductID)
	return line, nil
}

// UpdateProduct changes the quantity of a line; only the difference touches stock.
func (s *OrderService) UpdateProduct(ctx context.Context, actor models.Actor, lineID uuid.UUID, quantity int) (*models.OrderProduct, error) {
	if quantity < 1 {
		return nil, apperr.Validation("quantity must be at least 1").WithOp("order_products.update")
	}

	var line *models.OrderProduct
	err := s.orders.InTx(ctx, func(store core.OrderStore) error {
		var err error
		line, err = lockPendingLine(ctx, store, actor, lineID)
		if err != nil {
			return err
		}

		delta := quantity - line.Quantity
		if delta > 0 {
			products, err := store.LockProducts(ctx, []uuid.UUID{line.ProductID})
			if err != nil {
				return err
			}
			if _, err := reserve(products, line.ProductID, delta); err != nil {
				return err
			}
		}
		if delta != 0 {
			if err := store.AdjustStock(ctx, line.ProductID, -delta); err != nil {
				return err
			}
		}

		line.Quantity = quantity
		line.LineTotal = roundMoney(line.UnitPrice * float64(quantity))
		if err := store.UpdateLine(ctx, line); err != nil {
			return err
		}
		return recalculateTotal(ctx, store, line.OrderID)
	})
	if err != nil {
		return nil, err
	}

	s.stockChanged(line.ProductID)
	return line, nil
}

// RemoveProduct deletes a line from a pending order and returns its stock.
func (s *OrderService) RemoveProduct(ctx context.Context, actor models.Actor, lineID uuid.UUID) error {
	var productID uuid.UUID
	err := s.orders.InTx(ctx, func(store core.OrderStore) error {
		line, err := lockPendingLine(ctx, store, actor, lineID)
		if err != nil {
			return err
		}

		if err := store.DeleteLine(ctx, lineID); err != nil {
			return err
		}
		if err := store.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
			return err
		}
		productID = line.ProductID
		return recalculateTotal(ctx, store, line.OrderID)
	})
	if err != nil {
		return err
	}

	s.stockChanged(productID)
	return nil
}

// notify sends the confirmation in the background; failures are only logged.
func (s *OrderService) notify(ctx context.Context, order *models.Order) {
	snapshot := *order
	ctx = context.WithoutCancel(ctx)

	go func() {
		ctx, cancel := context.WithTimeout(ctx, notificationTimeout)
		defer cancel()

		user, err := s.users.GetByID(ctx, snapshot.UserID)
		if err != nil {
			s.logger.Warn().Err(err).Str("order_id", snapshot.ID.String()).Msg("Order confirmation skipped, user lookup failed")
			return
		}
		if err := s.notifier.SendOrderConfirmation(ctx, user.Email, &snapshot); err != nil {
			s.logger.Error().Err(err).Str("order_id", snapshot.ID.String()).Msg("Failed to send order confirmation")
		}
	}()
}

func lockPendingOrder(ctx context.Context, store core.OrderStore, actor models.Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := store.LockOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(order.UserID) {
		return nil, apperr.Forbidden("you can only access your own orders").WithOp("order_products")
	}
	if order.Status != models.OrderPending {
		return nil, apperr.Conflict("order products can only be changed while the order is Pending").WithOp("order_products")
	}
	return order, nil
}

// lockPendingLine locks the line's order, then re-reads the line under a row
// lock so quantity changes are computed against committed state.
func lockPendingLine(ctx context.Context, store core.OrderStore, actor models.Actor, lineID uuid.UUID) (*models.OrderProduct, error) {
	line, err := store.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if _, err := lockPendingOrder(ctx, store, actor, line.OrderID); err != nil {
		return nil, err
	}
	return store.LockLine(ctx, lineID)
}

// reserve checks that quantity units of the locked product can be sold.
func reserve(products map[uuid.UUID]models.Product, productID uuid.UUID, quantity int) (models.Product, error) {
	product, ok := products[productID]
	if !ok {
		return product, apperr.Validation(fmt.Sprintf("product %s does not exist", productID)).WithOp("orders.reserve")
	}
	if !product.IsActive {
		return product, apperr.Conflict(fmt.Sprintf("product %s is not available", product.Name)).WithOp("orders.reserve")
	}
	if product.Stock < quantity {
		return product, apperr.Conflict(fmt.Sprintf("insufficient stock for %s: %d available", product.Name, product.Stock)).
			WithOp("orders.reserve")
	}
	return product, nil
}

func restoreStock(ctx context.Context, store core.OrderStore, lines []models.OrderProduct) error {
	for _, line := range lines {
		if err := store.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func recalculateTotal(ctx context.Context, store core.OrderStore, orderID uuid.UUID) error {
	lines, err := store.ListLines(ctx, orderID)
	if err != nil {
		return err
	}
	var total float64
	for _, line := range lines {
		total += line.LineTotal
	}
	return store.UpdateOrderTotal(ctx, orderID, roundMoney(total))
}

// mergeItems folds repeated products into one line, keeping first-seen order.
func mergeItems(items []models.OrderItemRequest) []models.OrderItemRequest {
	merged := make([]models.OrderItemRequest, 0, len(items))
	for _, item := range items {
		i := slices.IndexFunc(merged, func(m models.OrderItemRequest) bool { return m.ProductID == item.ProductID })
		if i >= 0 {
			merged[i].Quantity += item.Quantity
			continue
		}
		merged = append(merged, item)
	}
	return merged
}
