package views

import (
	"html/template"

	"webshop/internal/models"
)

type ProductFilterForm struct {
	CategoryID string
	Search     string
	MinPrice   string
	MaxPrice   string
	Sort       string
	Order      string
}

type ProductListData struct {
	Products   []models.Product
	Pagination *models.PaginationMetadata
	Categories []models.Category
	Filter     ProductFilterForm
	// BaseQuery is the encoded filter without the page parameter.
	BaseQuery template.URL
}

type ProductDetailData struct {
	Product  *models.Product
	Images   []models.Image
	Category *models.Category
}

type CartLine struct {
	Product   models.Product
	Quantity  int
	LineTotal float64
}

type CartData struct {
	Lines []CartLine
	Total float64
}

type CheckoutData struct {
	Cart      CartData
	Addresses []models.Address
}

type OrdersData struct {
	Orders     []models.Order
	Pagination *models.PaginationMetadata
	Status     string
	BaseQuery  template.URL
}

type OrderData struct {
	Order   *models.Order
	Address *models.Address
}

type AddressesData struct {
	Addresses []models.Address
}

type AddressFormData struct {
	ID   string
	Form models.AddressRequest
}

type AuthFormData struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Next      string
}

type AccountData struct {
	User    *models.User
	Company *models.Company
}

type ErrorData struct {
	Status  int
	Message string
}

type AdminCategoriesData struct {
	Categories []models.Category
	Form       models.CategoryRequest
}

type AdminCompaniesData struct {
	Companies []models.Company
	Form      models.CompanyRequest
}

type AdminProductsData struct {
	Products   []models.Product
	Pagination *models.PaginationMetadata
	Search     string
	BaseQuery  template.URL
}

type ProductForm struct {
	Name        string
	Description string
	Price       string
	Stock       string
	CategoryID  string
	IsActive    bool
}

type AdminProductFormData struct {
	ID         string
	Form       ProductForm
	Categories []models.Category
	Images     []models.Image
}

type AdminOrdersData struct {
	Orders     []models.Order
	Pagination *models.PaginationMetadata
	Status     string
	BaseQuery  template.URL
}

type AdminUsersData struct {
	Users      []models.User
	Pagination *models.PaginationMetadata
	Search     string
	BaseQuery  template.URL
	Roles      []models.Role
}

type AdminUserData struct {
	User  *models.User
	Roles []models.Role
}
