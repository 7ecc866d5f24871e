package controllers

import (
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"webshop/internal/apperr"
	"webshop/internal/models"
	"webshop/internal/web/apiclient"
	"webshop/internal/web/views"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const pageSize = 12

// Home lists the catalog with the filter form.
func (c *Controller) Home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := views.ProductFilterForm{
		CategoryID: q.Get("category_id"),
		Search:     strings.TrimSpace(q.Get("search")),
		MinPrice:   q.Get("min_price"),
		MaxPrice:   q.Get("max_price"),
		Sort:       q.Get("sort"),
		Order:      q.Get("order"),
	}

	query, err := productQuery(filter)
	if err != nil {
		c.renderForm(w, r, http.StatusBadRequest, "home", "Products", err.Error(), views.ProductListData{Filter: filter})
		return
	}
	query.PageQuery = apiclient.PageQuery{Page: atoi(q.Get("page")), Limit: pageSize}

	var (
		products   *apiclient.Page[models.Product]
		categories *apiclient.Page[models.Category]
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		products, err = c.api.ListProducts(ctx, query)
		return err
	})
	g.Go(func() (err error) {
		categories, err = c.api.ListCategories(ctx, apiclient.PageQuery{Limit: 100})
		return err
	})
	if err := g.Wait(); err != nil {
		if msg, status, ok := formError(err); ok {
			c.renderForm(w, r, status, "home", "Products", msg, views.ProductListData{Filter: filter})
			return
		}
		c.fail(w, r, err)
		return
	}

	c.render(w, r, http.StatusOK, "home", "Products", views.ProductListData{
		Products:   products.Items,
		Pagination: products.Pagination,
		Categories: categories.Items,
		Filter:     filter,
		BaseQuery:  baseQuery(q),
	})
}

func productQuery(f views.ProductFilterForm) (apiclient.ProductQuery, error) {
	query := apiclient.ProductQuery{Search: f.Search, Sort: f.Sort, Order: f.Order}
	if f.CategoryID != "" {
		id, err := uuid.Parse(f.CategoryID)
		if err != nil {
			return query, apperr.Validation("unknown category")
		}
		query.CategoryID = &id
	}
	var err error
	if query.MinPrice, err = optionalPrice(f.MinPrice); err != nil {
		return query, err
	}
	if query.MaxPrice, err = optionalPrice(f.MaxPrice); err != nil {
		return query, err
	}
	return query, nil
}

func optionalPrice(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, apperr.Validation("prices must be positive numbers")
	}
	return &v, nil
}

// baseQuery re-encodes the current query without its page parameter.
func baseQuery(q url.Values) template.URL {
	rest := url.Values{}
	for key, values := range q {
		if key == "page" {
			continue
		}
		for _, v := range values {
			if v != "" {
				rest.Add(key, v)
			}
		}
	}
	return template.URL(rest.Encode())
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Product shows one product with its images and category, fetched concurrently.
func (c *Controller) Product(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	var (
		product    *models.Product
		images     []models.Image
		categories *apiclient.Page[models.Category]
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		product, err = c.api.GetProduct(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		images, err = c.api.ListProductImages(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		categories, err = c.api.ListCategories(ctx, apiclient.PageQuery{Limit: 100})
		return err
	})
	if err := g.Wait(); err != nil {
		c.fail(w, r, err)
		return
	}

	data := views.ProductDetailData{Product: product, Images: images}
	for i := range categories.Items {
		if categories.Items[i].ID == product.CategoryID {
			data.Category = &categories.Items[i]
		}
	}
	c.render(w, r, http.StatusOK, "product", product.Name, data)
}

// Image proxies stored image content so pages never link to the object store.
func (c *Controller) Image(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	body, contentType, err := c.api.ImageContent(r.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		if appErr, ok := apperr.As(err); ok {
			status = appErr.HTTPStatus()
		}
		http.Error(w, http.StatusText(status), status)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, body); err != nil {
		c.logger.Warn().Err(err).Str("image_id", id.String()).Msg("Failed to stream image")
	}
}
