package controllers

import (
	"net/url"
	"testing"

	"webshop/internal/apperr"
	"webshop/internal/web/views"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                  "/",
		"/orders?page=2":    "/orders?page=2",
		"https://evil.test": "/",
		"//evil.test":       "/",
		"/\\evil.test":      "/",
		"orders":            "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), "next=%q", in)
	}
}

func TestBaseQueryDropsPage(t *testing.T) {
	q := url.Values{"page": {"3"}, "search": {"mug"}, "sort": {""}}
	assert.Equal(t, "search=mug", string(baseQuery(q)))
}

func TestProductQuery(t *testing.T) {
	categoryID := uuid.New()
	q, err := productQuery(views.ProductFilterForm{CategoryID: categoryID.String(), MinPrice: "2.5", Search: "mug"})
	require.NoError(t, err)
	require.NotNil(t, q.CategoryID)
	assert.Equal(t, categoryID, *q.CategoryID)
	require.NotNil(t, q.MinPrice)
	assert.Equal(t, 2.5, *q.MinPrice)
	assert.Nil(t, q.MaxPrice)

	_, err = productQuery(views.ProductFilterForm{MaxPrice: "-1"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = productQuery(views.ProductFilterForm{CategoryID: "nope"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestProductRequest(t *testing.T) {
	categoryID := uuid.New()
	req, err := productRequest(views.ProductForm{
		Name:       "Mug",
		Price:      "12.99",
		Stock:      "7",
		CategoryID: categoryID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, 12.99, req.Price)
	assert.Equal(t, 7, req.Stock)
	assert.Equal(t, categoryID, req.CategoryID)
	require.NotNil(t, req.IsActive)
	assert.False(t, *req.IsActive)

	for name, form := range map[string]views.ProductForm{
		"price":    {Price: "cheap", Stock: "1", CategoryID: categoryID.String()},
		"stock":    {Price: "1", Stock: "1.5", CategoryID: categoryID.String()},
		"category": {Price: "1", Stock: "1"},
	} {
		_, err := productRequest(form)
		assert.True(t, apperr.Is(err, apperr.KindValidation), name)
	}
}

func TestFormError(t *testing.T) {
	msg, status, ok := formError(apperr.Conflict("name already taken"))
	assert.True(t, ok)
	assert.Equal(t, "name already taken", msg)
	assert.Equal(t, 409, status)

	_, _, ok = formError(apperr.Internal("x", assert.AnError))
	assert.False(t, ok)
}
