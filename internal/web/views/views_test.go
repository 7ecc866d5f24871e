package views

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"webshop/internal/models"
	"webshop/internal/web/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAllPages(t *testing.T) {
	rd, err := New(zerolog.Nop())
	require.NoError(t, err)

	category := models.Category{ID: uuid.New(), Name: "Kitchen"}
	product := models.Product{ID: uuid.New(), Name: "Mug", Price: 9.5, Stock: 3, CategoryID: category.ID, IsActive: true}
	image := models.Image{ID: uuid.New(), ProductID: product.ID, FileName: "mug.png", IsPrimary: true}
	address := models.Address{ID: uuid.New(), Street: "Main Street", HouseNumber: "1", PostalCode: "1000", City: "Brussels", Country: "Belgium", IsDefault: true}
	order := models.Order{
		ID: uuid.New(), Status: models.OrderPending, TotalPrice: 19, OrderDate: time.Now(),
		Products: []models.OrderProduct{{ProductName: "Mug", Quantity: 2, UnitPrice: 9.5, LineTotal: 19}},
	}
	user := &models.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", IsActive: true, Roles: []string{models.RoleCustomer}}
	pagination := &models.PaginationMetadata{Page: 2, Limit: 10, TotalCount: 25, TotalPages: 3, HasNext: true, HasPrev: true}
	cart := CartData{Lines: []CartLine{{Product: product, Quantity: 2, LineTotal: 19}}, Total: 19}
	roles := []models.Role{{ID: uuid.New(), Name: models.RoleAdmin}, {ID: uuid.New(), Name: models.RoleCustomer}}

	pages := map[string]interface{}{
		"home": ProductListData{
			Products: []models.Product{product}, Pagination: pagination, Categories: []models.Category{category},
			Filter: ProductFilterForm{CategoryID: category.ID.String(), Sort: "price"}, BaseQuery: "sort=price",
		},
		"product":            ProductDetailData{Product: &product, Images: []models.Image{image}, Category: &category},
		"cart":               cart,
		"checkout":           CheckoutData{Cart: cart, Addresses: []models.Address{address}},
		"orders":             OrdersData{Orders: []models.Order{order}, Pagination: pagination, Status: "Pending"},
		"order":              OrderData{Order: &order, Address: &address},
		"addresses":          AddressesData{Addresses: []models.Address{address}},
		"address_form":       AddressFormData{ID: address.ID.String(), Form: models.AddressRequest{Street: "Main Street"}},
		"login":              AuthFormData{Next: "/orders"},
		"register":           AuthFormData{Username: "alice"},
		"account":            AccountData{User: user, Company: &models.Company{Name: "Acme"}},
		"error":              ErrorData{Status: http.StatusNotFound, Message: "product not found"},
		"admin":              nil,
		"admin_categories":   AdminCategoriesData{Categories: []models.Category{category}},
		"admin_companies":    AdminCompaniesData{Companies: []models.Company{{ID: uuid.New(), Name: "Acme"}}},
		"admin_products":     AdminProductsData{Products: []models.Product{product}, Pagination: pagination},
		"admin_product_form": AdminProductFormData{ID: product.ID.String(), Form: ProductForm{Name: "Mug", CategoryID: category.ID.String(), IsActive: true}, Categories: []models.Category{category}, Images: []models.Image{image}},
		"admin_orders":       AdminOrdersData{Orders: []models.Order{order}, Pagination: pagination},
		"admin_users":        AdminUsersData{Users: []models.User{*user}, Pagination: pagination, Roles: roles},
		"admin_user":         AdminUserData{User: user, Roles: roles},
	}

	current := &session.CurrentUser{ID: user.ID, Username: "alice", Roles: []string{models.RoleAdmin}}
	for name, data := range pages {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rd.Render(rec, http.StatusOK, name, &Page{Title: name, User: current, Flash: "Saved", CartCount: 2, Data: data})

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), "Saved")
			assert.Contains(t, rec.Body.String(), `href="/admin"`)
		})
	}
}

func TestRenderEscapesUserInput(t *testing.T) {
	rd, err := New(zerolog.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rd.Render(rec, http.StatusBadRequest, "login", &Page{
		Title: "Sign in",
		Error: "<script>alert(1)</script>",
		Data:  AuthFormData{Username: `"><b>`},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
	assert.Contains(t, rec.Body.String(), "Sign in")
}

func TestRenderUnknownPage(t *testing.T) {
	rd, err := New(zerolog.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rd.Render(rec, http.StatusOK, "missing", &Page{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMoney(t *testing.T) {
	money := funcs["money"].(func(float64) string)
	assert.Equal(t, "€ 9.50", money(9.5))
	assert.Equal(t, "€ 0.10", money(0.1))
}

func TestPaginationKeepsFilter(t *testing.T) {
	rd, err := New(zerolog.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rd.Render(rec, http.StatusOK, "home", &Page{Data: ProductListData{
		Pagination: &models.PaginationMetadata{Page: 2, TotalPages: 3, HasNext: true, HasPrev: true},
		BaseQuery:  "search=mug&sort=price",
	}})

	body := rec.Body.String()
	assert.Contains(t, body, `href="?search=mug&amp;sort=price&page=1"`)
	assert.Contains(t, body, `href="?search=mug&amp;sort=price&page=3"`)
	assert.Contains(t, body, "No products match your filters.")
}
