package core

import (
	"context"
	"io"

	"webshop/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines direct database operations on accounts.
type UserRepository interface {
	// Create inserts the user together with its roles; nothing is kept when a role fails.
	Create(ctx context.Context, user *models.User, roles []string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetByEmailOrUsername returns nil, nil when no active user matches.
	GetByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)

	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	Deactivate(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context, filter models.UserFilter, page models.PageRequest) ([]models.User, error)
	Count(ctx context.Context, filter models.UserFilter) (int, error)
}

// RoleRepository manages roles and their assignment to users.
type RoleRepository interface {
	List(ctx context.Context) ([]models.Role, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id uuid.UUID) error

	AssignToUser(ctx context.Context, userID uuid.UUID, roleName string) error
	RemoveFromUser(ctx context.Context, userID uuid.UUID, roleName string) error
	RolesForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// TokenRepository stores hashed refresh tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, hash string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

type AddressRepository interface {
	Create(ctx context.Context, address *models.Address) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
	Update(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.AddressFilter, page models.PageRequest) ([]models.Address, error)
	Count(ctx context.Context, filter models.AddressFilter) (int, error)
}

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page models.PageRequest) ([]models.Company, error)
	Count(ctx context.Context) (int, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page models.PageRequest) ([]models.Category, error)
	Count(ctx context.Context) (int, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.ProductFilter, page models.PageRequest) ([]models.Product, error)
	Count(ctx context.Context, filter models.ProductFilter) (int, error)
}

type ImageRepository interface {
	// Create inserts the image; a primary image demotes the product's previous one.
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Image, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Image, error)
	// Delete removes the image; deleting the primary promotes the oldest remaining one.
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderStore is the set of order operations available inside a transaction.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// LockOrder reads the order with a row lock held until the transaction ends.
	LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filter models.OrderFilter, page models.PageRequest) ([]models.Order, error)
	CountOrders(ctx context.Context, filter models.OrderFilter) (int, error)
	InsertOrder(ctx context.Context, order *models.Order) error
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	UpdateOrderTotal(ctx context.Context, id uuid.UUID, total float64) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	// LockProducts reads the given products with row locks; missing IDs are absent from the map.
	LockProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int) error

	ListLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error)
	GetLine(ctx context.Context, id uuid.UUID) (*models.OrderProduct, error)
	// LockLine re-reads a line with a row lock; call it after LockOrder.
	LockLine(ctx context.Context, id uuid.UUID) (*models.OrderProduct, error)
	InsertLine(ctx context.Context, line *models.OrderProduct) error
	UpdateLine(ctx context.Context, line *models.OrderProduct) error
	DeleteLine(ctx context.Context, id uuid.UUID) error
}

// OrderRepository runs OrderStore operations, optionally within one transaction.
type OrderRepository interface {
	OrderStore
	InTx(ctx context.Context, fn func(store OrderStore) error) error
}

// ObjectStorage keeps image binaries.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string) (string, error)
}

// OrderNotifier tells customers about their orders.
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error
}

// AuthService issues and rotates credentials.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// UserService defines the account business logic.
type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter, page models.PageRequest) ([]models.User, *models.PaginationMetadata, error)
	Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, actor models.Actor, id uuid.UUID, req models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req models.ChangePasswordRequest) error
	AssignRole(ctx context.Context, userID uuid.UUID, role string) error
	RemoveRole(ctx context.Context, userID uuid.UUID, role string) error
}

type RoleService interface {
	List(ctx context.Context) ([]models.Role, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Role, error)
	Create(ctx context.Context, req models.RoleRequest) (*models.Role, error)
	Update(ctx context.Context, id uuid.UUID, req models.RoleRequest) (*models.Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AddressService interface {
	List(ctx context.Context, actor models.Actor, filter models.AddressFilter, page models.PageRequest) ([]models.Address, *models.PaginationMetadata, error)
	Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, actor models.Actor, req models.AddressRequest) (*models.Address, error)
	Update(ctx context.Context, actor models.Actor, id uuid.UUID, req models.AddressRequest) (*models.Address, error)
	Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error
}

type CompanyService interface {
	List(ctx context.Context, page models.PageRequest) ([]models.Company, *models.PaginationMetadata, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Create(ctx context.Context, req models.CompanyRequest) (*models.Company, error)
	Update(ctx context.Context, id uuid.UUID, req models.CompanyRequest) (*models.Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CatalogService covers categories and products.
type CatalogService interface {
	ListCategories(ctx context.Context, page models.PageRequest) ([]models.Category, *models.PaginationMetadata, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req models.CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, filter models.ProductFilter, page models.PageRequest) ([]models.Product, *models.PaginationMetadata, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req models.ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type ImageService interface {
	Upload(ctx context.Context, productID uuid.UUID, fileName string, r io.Reader, size int64, isPrimary bool) (*models.Image, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Image, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Image, error)
	Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, *models.Image, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// RemoveObjects deletes stored binaries whose rows are already gone.
	RemoveObjects(ctx context.Context, images []models.Image)
}

// OrderService covers orders and their order products.
type OrderService interface {
	Create(ctx context.Context, actor models.Actor, req models.CreateOrderRequest) (*models.Order, error)
	Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, actor models.Actor, filter models.OrderFilter, page models.PageRequest) ([]models.Order, *models.PaginationMetadata, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, actor models.Actor, orderID uuid.UUID) ([]models.OrderProduct, error)
	GetProduct(ctx context.Context, actor models.Actor, lineID uuid.UUID) (*models.OrderProduct, error)
	AddProduct(ctx context.Context, actor models.Actor, orderID uuid.UUID, item models.OrderItemRequest) (*models.OrderProduct, error)
	UpdateProduct(ctx context.Context, actor models.Actor, lineID uuid.UUID, quantity int) (*models.OrderProduct, error)
	RemoveProduct(ctx context.Context, actor models.Actor, lineID uuid.UUID) error
}
