package mocks

import (
	"context"
	"io"

	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of core.OrderRepository.
// InTx runs the callback against the mock itself, so expectations set on the
// store methods apply inside and outside transactions alike.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) InTx(ctx context.Context, fn func(store core.OrderStore) error) error {
	return fn(m)
}

func (m *MockOrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, filter models.OrderFilter, page models.PageRequest) ([]models.Order, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) CountOrders(ctx context.Context, filter models.OrderFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) InsertOrder(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOrderRepository) UpdateOrderTotal(ctx context.Context, id uuid.UUID, total float64) error {
	return m.Called(ctx, id, total).Error(0)
}

func (m *MockOrderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderRepository) LockProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]models.Product), args.Error(1)
}

func (m *MockOrderRepository) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) error {
	return m.Called(ctx, productID, delta).Error(0)
}

func (m *MockOrderRepository) ListLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderProduct), args.Error(1)
}

func (m *MockOrderRepository) GetLine(ctx context.Context, id uuid.UUID) (*models.OrderProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderProduct), args.Error(1)
}

func (m *MockOrderRepository) LockLine(ctx context.Context, id uuid.UUID) (*models.OrderProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderProduct), args.Error(1)
}

func (m *MockOrderRepository) InsertLine(ctx context.Context, line *models.OrderProduct) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockOrderRepository) UpdateLine(ctx context.Context, line *models.OrderProduct) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockOrderRepository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockObjectStorage is a mock implementation of core.ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

// Upload drains r so that callers observe a completed upload.
func (m *MockObjectStorage) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	_, _ = io.Copy(io.Discard, r)
	return m.Called(ctx, key, contentType, size).Error(0)
}

func (m *MockObjectStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockObjectStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// MockOrderNotifier is a mock implementation of core.OrderNotifier
type MockOrderNotifier struct {
	mock.Mock
}

func (m *MockOrderNotifier) SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error {
	return m.Called(ctx, to, order).Error(0)
}
