package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"webshop/internal/apperr"
	"webshop/internal/models"
	"webshop/internal/web/apiclient"
	"webshop/internal/web/views"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxUploadMemory is the part of a multipart upload kept in memory; the rest
// spills to temporary files.
const maxUploadMemory = 8 << 20

func (c *Controller) AdminHome(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "admin", "Administration", nil)
}

// --- categories ---

func (c *Controller) AdminCategories(w http.ResponseWriter, r *http.Request) {
	c.renderCategories(w, r, http.StatusOK, "", models.CategoryRequest{})
}

func (c *Controller) renderCategories(w http.ResponseWriter, r *http.Request, status int, message string, form models.CategoryRequest) {
	categories, err := c.api.ListCategories(r.Context(), apiclient.PageQuery{Limit: 100})
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.renderForm(w, r, status, "admin_categories", "Categories", message, views.AdminCategoriesData{Categories: categories.Items, Form: form})
}

func categoryForm(r *http.Request) models.CategoryRequest {
	return models.CategoryRequest{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
}

func (c *Controller) CreateCategory(w http.ResponseWriter, r *http.Request) {
	form := categoryForm(r)
	if _, err := c.api.CreateCategory(r.Context(), form); err != nil {
		if msg, status, ok := formError(err); ok {
			c.renderCategories(w, r, status, msg, form)
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/admin/categories", "Category "+form.Name+" created.")
}

func (c *Controller) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if _, err := c.api.UpdateCategory(r.Context(), id, categoryForm(r)); err != nil {
		if msg, status, ok := formError(err); ok {
			c.renderCategories(w, r, status, msg, models.CategoryRequest{})
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/admin/categories", "Category saved.")
}

func (c *Controller) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	c.deleteAndReturn(w, r, "/admin/categories", "Category deleted.", c.api.DeleteCategory)
}

// deleteAndReturn runs a delete call for the id in the path and goes back to
// the list, flashing Conflict messages such as "still in use".
func (c *Controller) deleteAndReturn(w http.ResponseWriter, r *http.Request, list, done string, del func(ctx context.Context, id uuid.UUID) error) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		if msg, _, ok := formError(err); ok {
			c.redirect(w, r, list, msg)
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, list, done)
}

// --- companies ---

func (c *Controller) AdminCompanies(w http.ResponseWriter, r *http.Request) {
	c.renderCompanies(w, r, http.StatusOK, "", models.CompanyRequest{})
}

func (c *Controller) renderCompanies(w http.ResponseWriter, r *http.Request, status int, message string, form models.CompanyRequest) {
	companies, err := c.api.ListCompanies(r.Context(), apiclient.PageQuery{Limit: 100})
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.renderForm(w, r, status, "admin_companies", "Companies", message, views.AdminCompaniesData{Companies: companies.Items, Form: form})
}

func companyForm(r *http.Request) models.CompanyRequest {
	return models.CompanyRequest{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		VatNumber:   strings.TrimSpace(r.PostFormValue("vat_number")),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		PhoneNumber: strings.TrimSpace(r.PostFormValue("phone_number")),
		Website:     strings.TrimSpace(r.PostFormValue("website")),
	}
}

func (c *Controller) CreateCompany(w http.ResponseWriter, r *http.Request) {
	form := companyForm(r)
	if _, err := c.api.CreateCompany(r.Context(), form); err != nil {
		if msg, status, ok := formError(err); ok {
			c.renderCompanies(w, r, status, msg, form)
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/admin/companies", "Company "+form.Name+" created.")
}

func (c *Controller) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if _, err := c.api.UpdateCompany(r.Context(), id, companyForm(r)); err != nil {
		if msg, status, ok := formError(err); ok {
			c.renderCompanies(w, r, status, msg, models.CompanyRequest{})
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/admin/companies", "Company saved.")
}

func (c *Controller) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	c.deleteAndReturn(w, r, "/admin/companies", "Company deleted.", c.api.DeleteCompany)
}

// --- products ---

func (c *Controller) AdminProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))

	products, err := c.api.ListProducts(r.Context(), apiclient.ProductQuery{
		PageQuery:       apiclient.PageQuery{Page: atoi(q.Get("page")), Limit: 25},
		Search:          search,
		Sort:            "name",
		IncludeInactive: true,
	})
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "admin_products", "Products", views.AdminProductsData{
		Products:   products.Items,
		Pagination: products.Pagination,
		Search:     search,
		BaseQuery:  baseQuery(q),
	})
}

func (c *Controller) NewProduct(w http.ResponseWriter, r *http.Request) {
	categories, err := c.api.ListCategories(r.Context(), apiclient.PageQuery{Limit: 100})
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "admin_product_form", "New product", views.AdminProductFormData{
		Form:       views.ProductForm{IsActive: true},
		Categories: categories.Items,
	})
}

// productFormData loads what the product form needs besides the form values.
func (c *Controller) productFormData(r *http.Request, id uuid.UUID, form views.ProductForm) (views.AdminProductFormData, error) {
	data := views.AdminProductFormData{Form: form}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		categories, err := c.api.ListCategories(ctx, apiclient.PageQuery{Limit: 100})
		if err != nil {
			return err
		}
		data.Categories = categories.Items
		return nil
	})
	if id != uuid.Nil {
		data.ID = id.String()
		g.Go(func() (err error) {
			data.Images, err = c.api.ListProductImages(ctx, id)
			return err
		})
	}
	return data, g.Wait()
}

func (c *Controller) EditProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	product, err := c.api.GetProduct(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	data, err := c.productFormData(r, id, views.ProductForm{
		Name:        product.Name,
		Description: product.Description,
		Price:       strconv.FormatFloat(product.Price, 'f', 2, 64),
		Stock:       strconv.Itoa(product.Stock),
		CategoryID:  product.CategoryID.String(),
		IsActive:    product.IsActive,
	})
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "admin_product_form", product.Name, data)
}

func productForm(r *http.Request) views.ProductForm {
	return views.ProductForm{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Price:       strings.TrimSpace(r.PostFormValue("price")),
		Stock:       strings.TrimSpace(r.PostFormValue("stock")),
		CategoryID:  r.PostFormValue("category_id"),
		IsActive:    r.PostFormValue("is_active") == "true",
	}
}

// productRequest converts the raw form into an API request.
func productRequest(f views.ProductForm) (models.ProductRequest, error) {
	price, err := strconv.ParseFloat(f.Price, 64)
	if err != nil {
		return models.ProductRequest{}, apperr.Validation("price must be a number")
	}
	stock, err := strconv.Atoi(f.Stock)
	if err != nil {
		return models.ProductRequest{}, apperr.Validation("stock must be a whole number")
	}
	categoryID, err := uuid.Parse(f.CategoryID)
	if err != nil {
		return models.ProductRequest{}, apperr.Validation("choose a category")
	}
	active := f.IsActive
	return models.ProductRequest{
		Name:        f.Name,
		Description: f.Description,
		Price:       price,
		Stock:       stock,
		CategoryID:  categoryID,
		IsActive:    &active,
	}, nil
}

// saveProduct creates the product when id is uuid.Nil and updates it otherwise.
func (c *Controller) saveProduct(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	form := productForm(r)
	req, err := productRequest(form)

	var product *models.Product
	if err == nil {
		if id == uuid.Nil {
			product, err = c.api.CreateProduct(r.Context(), req)
		} else {
			product, err = c.api.UpdateProduct(r.Context(), id, req)
		}
	}
	if err != nil {
		msg, status, ok := formError(err)
		if !ok {
			c.fail(w, r, err)
			return
		}
		data, loadErr := c.productFormData(r, id, form)
		if loadErr != nil {
			c.fail(w, r, loadErr)
			return
		}
		c.renderForm(w, r, status, "admin_product_form", "Product", msg, data)
		return
	}
	c.redirect(w, r, "/admin/products/"+product.ID.String()+"/edit", "Product "+product.Name+" saved.")
}

func (c *Controller) CreateProduct(w http.ResponseWriter, r *http.Request) {
	c.saveProduct(w, r, uuid.Nil)
}

func (c *Controller) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.saveProduct(w, r, id)
}

func (c *Controller) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	c.deleteAndReturn(w, r, "/admin/products", "Product deleted.", c.api.DeleteProduct)
}

// UploadImage forwards the multipart file to the API without buffering it whole.
func (c *Controller) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	back := "/admin/products/" + id.String() + "/edit"

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		c.redirect(w, r, back, "The upload could not be read.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		c.redirect(w, r, back, "Choose a file to upload.")
		return
	}
	defer file.Close()

	if _, err := c.api.UploadImage(r.Context(), id, header.Filename, file, r.FormValue("is_primary") == "true"); err != nil {
		if msg, _, ok := formError(err); ok {
			c.redirect(w, r, back, msg)
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, back, "Image uploaded.")
}

func (c *Controller) DeleteImage(w http.ResponseWriter, r *http.Request) {
	back := "/admin/products"
	if productID, err := uuid.Parse(r.PostFormValue("product_id")); err == nil {
		back = "/admin/products/" + productID.String() + "/edit"
	}
	c.deleteAndReturn(w, r, back, "Image deleted.", c.api.DeleteImage)
}

// --- orders ---

func (c *Controller) AdminOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")

	orders, err := c.api.ListOrders(r.Context(), apiclient.OrderQuery{
		PageQuery: apiclient.PageQuery{Page: atoi(q.Get("page")), Limit: 25},
		Status:    models.OrderStatus(status),
	})
	if err != nil {
		if msg, code, ok := formError(err); ok {
			c.renderForm(w, r, code, "admin_orders", "Orders", msg, views.AdminOrdersData{Status: status})
			return
		}
		c.fail(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "admin_orders", "Orders", views.AdminOrdersData{
		Orders:     orders.Items,
		Pagination: orders.Pagination,
		Status:     status,
		BaseQuery:  baseQuery(q),
	})
}

func (c *Controller) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	status := models.OrderStatus(r.PostFormValue("status"))
	if _, err := c.api.UpdateOrderStatus(r.Context(), id, status); err != nil {
		if msg, _, ok := formError(err); ok {
			c.redirect(w, r, "/admin/orders", msg)
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/admin/orders", "Order is now "+string(status)+".")
}

func (c *Controller) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	c.deleteAndReturn(w, r, "/admin/orders", "Order deleted.", c.api.DeleteOrder)
}

// --- users and roles ---

func (c *Controller) AdminUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))

	data := views.AdminUsersData{Search: search, BaseQuery: baseQuery(q)}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		users, err := c.api.ListUsers(ctx, search, apiclient.PageQuery{Page: atoi(q.Get("page")), Limit: 25})
		if err != nil {
			return err
		}
		data.Users, data.Pagination = users.Items, users.Pagination
		return nil
	})
	g.Go(func() (err error) {
		data.Roles, err = c.api.ListRoles(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.fail(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "admin_users", "Users", data)
}

func (c *Controller) AdminUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	var data views.AdminUserData
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		data.User, err = c.api.GetUser(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		data.Roles, err = c.api.ListRoles(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.fail(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "admin_user", data.User.Username, data)
}

// changeRole assigns or removes the posted role and returns to the user page.
func (c *Controller) changeRole(w http.ResponseWriter, r *http.Request, change func(context.Context, uuid.UUID, string) error, done string) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	back := "/admin/users/" + id.String()
	role := strings.TrimSpace(r.PostFormValue("role"))
	if role == "" {
		c.redirect(w, r, back, "Choose a role.")
		return
	}
	if err := change(r.Context(), id, role); err != nil {
		if msg, _, ok := formError(err); ok {
			c.redirect(w, r, back, msg)
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, back, role+" "+done)
}

func (c *Controller) AssignRole(w http.ResponseWriter, r *http.Request) {
	c.changeRole(w, r, c.api.AssignRole, "assigned.")
}

func (c *Controller) RemoveRole(w http.ResponseWriter, r *http.Request) {
	c.changeRole(w, r, c.api.RemoveRole, "removed.")
}

// DeactivateUser soft-deletes the account; its orders stay intact.
func (c *Controller) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if user := c.state.User(r.Context()); user != nil && user.ID == id {
		c.redirect(w, r, "/admin/users/"+id.String(), "You cannot deactivate your own account.")
		return
	}
	if err := c.api.DeleteUser(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/admin/users/"+id.String(), "Account deactivated.")
}

func (c *Controller) CreateRole(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PostFormValue("name"))
	if _, err := c.api.CreateRole(r.Context(), name); err != nil {
		if msg, _, ok := formError(err); ok {
			c.redirect(w, r, "/admin/users", msg)
			return
		}
		c.fail(w, r, err)
		return
	}
	c.redirect(w, r, "/admin/users", "Role "+name+" created.")
}

func (c *Controller) DeleteRole(w http.ResponseWriter, r *http.Request) {
	c.deleteAndReturn(w, r, "/admin/users", "Role deleted.", c.api.DeleteRole)
}
