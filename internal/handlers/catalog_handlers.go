package handlers

import (
	"net/http"

	"webshop/internal/models"
)

// --- Categories ---

// ListCategories handles GET /api/v1/categories
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  models.ListResponse[models.Category]
// @Router       /api/v1/categories [get]
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, meta, err := h.Catalog.ListCategories(r.Context(), pageFrom(r))
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeList(w, h.app, categories, meta, "Categories retrieved successfully")
}

func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	category, err := h.Catalog.GetCategory(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, category, "Category retrieved successfully")
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	category, err := h.Catalog.CreateCategory(r.Context(), req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeCreated(w, h.app, category, "Category created successfully")
}

func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	var req models.CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	category, err := h.Catalog.UpdateCategory(r.Context(), id, req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, category, "Category updated successfully")
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	if err := h.Catalog.DeleteCategory(r.Context(), id); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, nil, "Category deleted successfully")
}

// --- Products ---

// ListProducts handles GET /api/v1/products
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Param        category_id  query  string  false  "Category"
// @Param        search       query  string  false  "Name or description"
// @Param        min_price    query  number  false  "Lowest price"
// @Param        max_price    query  number  false  "Highest price"
// @Param        sort         query  string  false  "name, price or created_at"
// @Param        order        query  string  false  "asc or desc"
// @Success      200  {object}  models.ListResponse[models.Product]
// @Router       /api/v1/products [get]
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilterFrom(r)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	// Inactive products are only listed for administrators.
	if actor, err := actorFrom(r.Context()); err == nil && actor.IsAdmin() {
		filter.IncludeDraft = r.URL.Query().Get("include_inactive") == "true"
	}

	products, meta, err := h.Catalog.ListProducts(r.Context(), filter, pageFrom(r))
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeList(w, h.app, products, meta, "Products retrieved successfully")
}

func productFilterFrom(r *http.Request) (models.ProductFilter, error) {
	q := r.URL.Query()
	filter := models.ProductFilter{
		Search: q.Get("search"),
		SortBy: q.Get("sort"),
		Order:  q.Get("order"),
	}

	var err error
	if filter.CategoryID, err = queryUUID(r, "category_id"); err != nil {
		return filter, err
	}
	if filter.MinPrice, err = queryFloat(r, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryFloat(r, "max_price"); err != nil {
		return filter, err
	}
	return filter, nil
}

// GetProduct handles GET /api/v1/products/{id}; the product comes with its images.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	product, err := h.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, product, "Product retrieved successfully")
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	product, err := h.Catalog.CreateProduct(r.Context(), req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}

	h.app.Logger.Info().
		Str("request_id", getRequestID(r.Context())).
		Str("product_id", product.ID.String()).
		Msg("Product created")
	writeCreated(w, h.app, product, "Product created successfully")
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	var req models.ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	product, err := h.Catalog.UpdateProduct(r.Context(), id, req)
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, product, "Product updated successfully")
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	if err := h.Catalog.DeleteProduct(r.Context(), id); err != nil {
		writeAppError(w, r, h.app, err)
		return
	}
	writeSuccess(w, h.app, nil, "Product deleted successfully")
}
