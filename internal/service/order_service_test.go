package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"webshop/internal/apperr"
	"webshop/internal/mocks"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	service   *OrderService
	orders    *mocks.MockOrderRepository
	addresses *mocks.MockAddressRepository
	users     *mocks.MockUserRepository
	notifier  *mocks.MockOrderNotifier
	changed   []uuid.UUID
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    new(mocks.MockOrderRepository),
		addresses: new(mocks.MockAddressRepository),
		users:     new(mocks.MockUserRepository),
		notifier:  new(mocks.MockOrderNotifier),
	}
	f.service = NewOrderService(f.orders, f.addresses, f.users, f.notifier, zerolog.Nop())
	f.service.OnStockChange(func(id uuid.UUID) { f.changed = append(f.changed, id) })
	return f
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	me := uuid.New()
	actor := models.Actor{UserID: me, Roles: []string{models.RoleCustomer}}
	address := &models.Address{ID: uuid.New(), UserID: me}
	mug := models.Product{ID: uuid.New(), Name: "Mug", Price: 9.99, Stock: 10, IsActive: true}
	tee := models.Product{ID: uuid.New(), Name: "Tee", Price: 15, Stock: 1, IsActive: true}

	t.Run("Success", func(t *testing.T) {
		f := newOrderFixture()
		sent := make(chan string, 1)

		f.addresses.On("GetByID", ctx, address.ID).Return(address, nil).Once()
		f.orders.On("LockProducts", ctx, []uuid.UUID{mug.ID, tee.ID}).
			Return(map[uuid.UUID]models.Product{mug.ID: mug, tee.ID: tee}, nil).Once()
		f.orders.On("InsertOrder", ctx, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		f.orders.On("AdjustStock", ctx, mug.ID, -3).Return(nil).Once()
		f.orders.On("AdjustStock", ctx, tee.ID, -1).Return(nil).Once()
		f.orders.On("InsertLine", ctx, mock.AnythingOfType("*models.OrderProduct")).Return(nil).Twice()
		f.users.On("GetByID", mock.Anything, me).Return(&models.User{ID: me, Email: "me@example.com"}, nil).Once()
		f.notifier.On("SendOrderConfirmation", mock.Anything, "me@example.com", mock.AnythingOfType("*models.Order")).
			Run(func(args mock.Arguments) { sent <- args.String(1) }).
			Return(nil).Once()

		order, err := f.service.Create(ctx, actor, models.CreateOrderRequest{
			AddressID: address.ID,
			Items: []models.OrderItemRequest{
				{ProductID: mug.ID, Quantity: 2},
				{ProductID: tee.ID, Quantity: 1},
				{ProductID: mug.ID, Quantity: 1},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, models.OrderPending, order.Status)
		assert.Len(t, order.Products, 2)
		assert.Equal(t, 3, order.Products[0].Quantity)
		assert.InDelta(t, 44.97, order.TotalPrice, 0.001)
		assert.ElementsMatch(t, []uuid.UUID{mug.ID, tee.ID}, f.changed)

		select {
		case to := <-sent:
			assert.Equal(t, "me@example.com", to)
		case <-time.After(2 * time.Second):
			t.Fatal("confirmation was not sent")
		}
		f.orders.AssertExpectations(t)
	})

	t.Run("Insufficient_Stock", func(t *testing.T) {
		f := newOrderFixture()
		f.addresses.On("GetByID", ctx, address.ID).Return(address, nil).Once()
		f.orders.On("LockProducts", ctx, []uuid.UUID{tee.ID}).
			Return(map[uuid.UUID]models.Product{tee.ID: tee}, nil).Once()

		_, err := f.service.Create(ctx, actor, models.CreateOrderRequest{
			AddressID: address.ID,
			Items:     []models.OrderItemRequest{{ProductID: tee.ID, Quantity: 2}},
		})
		assert.True(t, apperr.Is(err, apperr.KindConflict))
		f.orders.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything)
		assert.Empty(t, f.changed)
	})

	t.Run("Unknown_Product", func(t *testing.T) {
		f := newOrderFixture()
		missing := uuid.New()
		f.addresses.On("GetByID", ctx, address.ID).Return(address, nil).Once()
		f.orders.On("LockProducts", ctx, []uuid.UUID{missing}).Return(map[uuid.UUID]models.Product{}, nil).Once()

		_, err := f.service.Create(ctx, actor, models.CreateOrderRequest{
			AddressID: address.ID,
			Items:     []models.OrderItemRequest{{ProductID: missing, Quantity: 1}},
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("Inactive_Product", func(t *testing.T) {
		f := newOrderFixture()
		draft := models.Product{ID: uuid.New(), Name: "Draft", Price: 1, Stock: 5}
		f.addresses.On("GetByID", ctx, address.ID).Return(address, nil).Once()
		f.orders.On("LockProducts", ctx, []uuid.UUID{draft.ID}).
			Return(map[uuid.UUID]models.Product{draft.ID: draft}, nil).Once()

		_, err := f.service.Create(ctx, actor, models.CreateOrderRequest{
			AddressID: address.ID,
			Items:     []models.OrderItemRequest{{ProductID: draft.ID, Quantity: 1}},
		})
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("Foreign_Address", func(t *testing.T) {
		f := newOrderFixture()
		foreign := &models.Address{ID: uuid.New(), UserID: uuid.New()}
		f.addresses.On("GetByID", ctx, foreign.ID).Return(foreign, nil).Once()

		_, err := f.service.Create(ctx, actor, models.CreateOrderRequest{
			AddressID: foreign.ID,
			Items:     []models.OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
		})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		f.orders.AssertNotCalled(t, "LockProducts", mock.Anything, mock.Anything)
	})

	t.Run("Missing_Address", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()
		f.addresses.On("GetByID", ctx, id).Return(nil, apperr.NotFound("address not found")).Once()

		_, err := f.service.Create(ctx, actor, models.CreateOrderRequest{
			AddressID: id,
			Items:     []models.OrderItemRequest{{ProductID: mug.ID, Quantity: 1}},
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	customer := models.Actor{UserID: owner, Roles: []string{models.RoleCustomer}}
	admin := models.Actor{UserID: uuid.New(), Roles: []string{models.RoleAdmin}}
	productID := uuid.New()
	lines := []models.OrderProduct{{ID: uuid.New(), ProductID: productID, Quantity: 2, UnitPrice: 5, LineTotal: 10}}

	t.Run("Customer_Cancels_Pending_Restores_Stock", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()
		f.orders.On("LockOrder", ctx, id).Return(&models.Order{ID: id, UserID: owner, Status: models.OrderPending}, nil).Once()
		f.orders.On("ListLines", ctx, id).Return(lines, nil).Once()
		f.orders.On("AdjustStock", ctx, productID, 2).Return(nil).Once()
		f.orders.On("UpdateOrderStatus", ctx, id, models.OrderCancelled).Return(nil).Once()
		f.orders.On("GetOrder", ctx, id).Return(&models.Order{ID: id, UserID: owner, Status: models.OrderCancelled}, nil).Once()

		order, err := f.service.UpdateStatus(ctx, customer, id, models.OrderCancelled)
		require.NoError(t, err)
		assert.Equal(t, models.OrderCancelled, order.Status)
		assert.Equal(t, []uuid.UUID{productID}, f.changed)
		f.orders.AssertExpectations(t)
	})

	t.Run("Customer_Cannot_Mark_Paid", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()
		f.orders.On("LockOrder", ctx, id).Return(&models.Order{ID: id, UserID: owner, Status: models.OrderPending}, nil).Once()

		_, err := f.service.UpdateStatus(ctx, customer, id, models.OrderPaid)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("Invalid_Transition", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()
		f.orders.On("LockOrder", ctx, id).Return(&models.Order{ID: id, UserID: owner, Status: models.OrderDelivered}, nil).Once()

		_, err := f.service.UpdateStatus(ctx, admin, id, models.OrderCancelled)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
		f.orders.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown_Status", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.service.UpdateStatus(ctx, admin, uuid.New(), models.OrderStatus("Lost"))
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("Admin_Ships_Paid", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()
		f.orders.On("LockOrder", ctx, id).Return(&models.Order{ID: id, UserID: owner, Status: models.OrderPaid}, nil).Once()
		f.orders.On("ListLines", ctx, id).Return(lines, nil).Once()
		f.orders.On("UpdateOrderStatus", ctx, id, models.OrderShipped).Return(nil).Once()
		f.orders.On("GetOrder", ctx, id).Return(&models.Order{ID: id, Status: models.OrderShipped}, nil).Once()

		order, err := f.service.UpdateStatus(ctx, admin, id, models.OrderShipped)
		require.NoError(t, err)
		assert.Equal(t, models.OrderShipped, order.Status)
		assert.Empty(t, f.changed)
	})
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Shipped_Is_Kept", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()
		f.orders.On("LockOrder", ctx, id).Return(&models.Order{ID: id, Status: models.OrderShipped}, nil).Once()

		err := f.service.Delete(ctx, id)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
		f.orders.AssertNotCalled(t, "DeleteOrder", mock.Anything, mock.Anything)
	})

	t.Run("Cancelled_Is_Deleted", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()
		f.orders.On("LockOrder", ctx, id).Return(&models.Order{ID: id, Status: models.OrderCancelled}, nil).Once()
		f.orders.On("DeleteOrder", ctx, id).Return(nil).Once()

		require.NoError(t, f.service.Delete(ctx, id))
		f.orders.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderProducts(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	actor := models.Actor{UserID: owner, Roles: []string{models.RoleCustomer}}
	orderID := uuid.New()
	product := models.Product{ID: uuid.New(), Name: "Mug", Price: 4.5, Stock: 3, IsActive: true}

	t.Run("Update_Reserves_Only_Delta", func(t *testing.T) {
		f := newOrderFixture()
		line := &models.OrderProduct{ID: uuid.New(), OrderID: orderID, ProductID: product.ID, Quantity: 2, UnitPrice: 4.5, LineTotal: 9}
		f.orders.On("GetLine", ctx, line.ID).Return(line, nil).Once()
		f.orders.On("LockOrder", ctx, orderID).Return(&models.Order{ID: orderID, UserID: owner, Status: models.OrderPending}, nil).Once()
		f.orders.On("LockLine", ctx, line.ID).Return(line, nil).Once()
		f.orders.On("LockProducts", ctx, []uuid.UUID{product.ID}).Return(map[uuid.UUID]models.Product{product.ID: product}, nil).Once()
		f.orders.On("AdjustStock", ctx, product.ID, -3).Return(nil).Once()
		f.orders.On("UpdateLine", ctx, line).Return(nil).Once()
		f.orders.On("ListLines", ctx, orderID).Return([]models.OrderProduct{{LineTotal: 22.5}}, nil).Once()
		f.orders.On("UpdateOrderTotal", ctx, orderID, 22.5).Return(nil).Once()

		updated, err := f.service.UpdateProduct(ctx, actor, line.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Quantity)
		assert.Equal(t, 22.5, updated.LineTotal)
		f.orders.AssertExpectations(t)
	})

	t.Run("Update_Uses_Locked_Quantity", func(t *testing.T) {
		f := newOrderFixture()
		stale := &models.OrderProduct{ID: uuid.New(), OrderID: orderID, ProductID: product.ID, Quantity: 2, UnitPrice: 4.5}
		current := &models.OrderProduct{ID: stale.ID, OrderID: orderID, ProductID: product.ID, Quantity: 5, UnitPrice: 4.5}
		f.orders.On("GetLine", ctx, stale.ID).Return(stale, nil).Once()
		f.orders.On("LockOrder", ctx, orderID).Return(&models.Order{ID: orderID, UserID: owner, Status: models.OrderPending}, nil).Once()
		f.orders.On("LockLine", ctx, stale.ID).Return(current, nil).Once()
		f.orders.On("UpdateLine", ctx, current).Return(nil).Once()
		f.orders.On("ListLines", ctx, orderID).Return([]models.OrderProduct{{LineTotal: 22.5}}, nil).Once()
		f.orders.On("UpdateOrderTotal", ctx, orderID, 22.5).Return(nil).Once()

		updated, err := f.service.UpdateProduct(ctx, actor, stale.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Quantity)
		f.orders.AssertNotCalled(t, "LockProducts", mock.Anything, mock.Anything)
		f.orders.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
		f.orders.AssertExpectations(t)
	})

	t.Run("Update_Over_Stock", func(t *testing.T) {
		f := newOrderFixture()
		line := &models.OrderProduct{ID: uuid.New(), OrderID: orderID, ProductID: product.ID, Quantity: 1, UnitPrice: 4.5}
		f.orders.On("GetLine", ctx, line.ID).Return(line, nil).Once()
		f.orders.On("LockOrder", ctx, orderID).Return(&models.Order{ID: orderID, UserID: owner, Status: models.OrderPending}, nil).Once()
		f.orders.On("LockLine", ctx, line.ID).Return(line, nil).Once()
		f.orders.On("LockProducts", ctx, []uuid.UUID{product.ID}).Return(map[uuid.UUID]models.Product{product.ID: product}, nil).Once()

		_, err := f.service.UpdateProduct(ctx, actor, line.ID, 10)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("Zero_Quantity", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.service.UpdateProduct(ctx, actor, uuid.New(), 0)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("Add_To_Paid_Order", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("LockOrder", ctx, orderID).Return(&models.Order{ID: orderID, UserID: owner, Status: models.OrderPaid}, nil).Once()

		_, err := f.service.AddProduct(ctx, actor, orderID, models.OrderItemRequest{ProductID: product.ID, Quantity: 1})
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("Remove_Restores_Stock", func(t *testing.T) {
		f := newOrderFixture()
		line := &models.OrderProduct{ID: uuid.New(), OrderID: orderID, ProductID: product.ID, Quantity: 2}
		f.orders.On("GetLine", ctx, line.ID).Return(line, nil).Once()
		f.orders.On("LockOrder", ctx, orderID).Return(&models.Order{ID: orderID, UserID: owner, Status: models.OrderPending}, nil).Once()
		f.orders.On("LockLine", ctx, line.ID).Return(line, nil).Once()
		f.orders.On("DeleteLine", ctx, line.ID).Return(nil).Once()
		f.orders.On("AdjustStock", ctx, product.ID, 2).Return(nil).Once()
		f.orders.On("ListLines", ctx, orderID).Return([]models.OrderProduct{}, nil).Once()
		f.orders.On("UpdateOrderTotal", ctx, orderID, 0.0).Return(nil).Once()

		require.NoError(t, f.service.RemoveProduct(ctx, actor, line.ID))
		assert.Equal(t, []uuid.UUID{product.ID}, f.changed)
	})

	t.Run("Foreign_Order", func(t *testing.T) {
		f := newOrderFixture()
		line := &models.OrderProduct{ID: uuid.New(), OrderID: orderID}
		f.orders.On("GetLine", ctx, line.ID).Return(line, nil).Once()
		f.orders.On("GetOrder", ctx, orderID).Return(&models.Order{ID: orderID, UserID: uuid.New()}, nil).Once()

		_, err := f.service.GetProduct(ctx, actor, line.ID)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("Store_Error_Propagates", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetLine", ctx, mock.Anything).Return(nil, errors.New("boom")).Once()

		err := f.service.RemoveProduct(ctx, actor, uuid.New())
		assert.EqualError(t, err, "boom")
	})
}

func TestMergeItems(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	merged := mergeItems([]models.OrderItemRequest{
		{ProductID: a, Quantity: 1},
		{ProductID: b, Quantity: 2},
		{ProductID: a, Quantity: 4},
	})
	assert.Equal(t, []models.OrderItemRequest{{ProductID: a, Quantity: 5}, {ProductID: b, Quantity: 2}}, merged)
}
